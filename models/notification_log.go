package models

import "time"

type NotificationLog struct {
	ID           uint   `gorm:"primaryKey"`
	StoreID      uint   `gorm:"index;not null"`
	CustomerID   uint   `gorm:"index;not null"`
	InvoiceID    *uint  `gorm:"index"`
	Type         string `gorm:"type:varchar(20)"` // invoice_receipt
	Message      string `gorm:"type:text"`
	Status       string `gorm:"type:varchar(20)"` // sent, failed
	ErrorMessage string `gorm:"type:text"`
	Channel      string `gorm:"type:varchar(20)"` // sms, log
	SentAt       time.Time
	CreatedAt    time.Time
}
