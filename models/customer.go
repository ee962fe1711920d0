package models

import (
	"time"

	"gorm.io/gorm"
)

type Customer struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	StoreID uint `gorm:"index;not null;uniqueIndex:idx_store_phone,priority:1" json:"storeId"`

	Name          string     `gorm:"not null" json:"name"`
	Phone         string     `gorm:"not null;uniqueIndex:idx_store_phone,priority:2" json:"phone"`
	Email         string     `json:"email"`
	Notes         string     `json:"notes"`
	LastVisitDate *time.Time `json:"lastVisitDate,omitempty"`
	IsActive      bool       `gorm:"default:true" json:"isActive"`

	Invoices []Invoice `gorm:"foreignKey:CustomerID" json:"-"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
