package models

import "time"

type Store struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"not null" json:"name"`
	Address  string `json:"address"`
	Phone    string `json:"phone"`
	IsActive bool   `gorm:"default:true" json:"isActive"`

	Customers []Customer `gorm:"foreignKey:StoreID" json:"-"`
	Services  []Service  `gorm:"foreignKey:StoreID" json:"-"`
	Invoices  []Invoice  `gorm:"foreignKey:StoreID" json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
