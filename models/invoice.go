package models

import (
	"time"

	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	// PaymentPartiallyPaid and PaymentCancelled are accepted when reading
	// rows but never written; status is derived from paid vs total.
	PaymentPartiallyPaid PaymentStatus = "partially_paid"
	PaymentCancelled     PaymentStatus = "cancelled"
)

type DiscountType string

const (
	DiscountAmount  DiscountType = "amount"
	DiscountPercent DiscountType = "percent"
)

func (d DiscountType) Valid() bool {
	return d == DiscountAmount || d == DiscountPercent
}

type ItemType string

const (
	ItemService ItemType = "service"
	ItemProduct ItemType = "product"
	ItemPackage ItemType = "package"
)

func (t ItemType) Valid() bool {
	switch t {
	case ItemService, ItemProduct, ItemPackage:
		return true
	}
	return false
}

// VoucherMaxLength bounds the voucher column.
const VoucherMaxLength = 32

type Invoice struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Voucher string `gorm:"type:varchar(32);uniqueIndex;not null" json:"voucher"`

	BookingID  *uint `gorm:"uniqueIndex" json:"bookingId,omitempty"`
	CustomerID uint  `gorm:"index;not null" json:"customerId"`
	StoreID    uint  `gorm:"index;not null" json:"storeId"`

	Subtotal       float64       `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	DiscountAmount float64       `gorm:"type:decimal(12,2);not null;default:0" json:"discountAmount"`
	DiscountType   *DiscountType `gorm:"type:varchar(10)" json:"discountType,omitempty"`
	TaxAmount      float64       `gorm:"type:decimal(12,2);not null;default:0" json:"taxAmount"`
	TotalAmount    float64       `gorm:"type:decimal(12,2);not null" json:"totalAmount"`
	PaidAmount     float64       `gorm:"type:decimal(12,2);not null;default:0" json:"paidAmount"`
	PaymentStatus  PaymentStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"paymentStatus"`
	Notes          string        `gorm:"type:text" json:"notes"`

	CreatedBy *uuid.UUID `gorm:"type:uuid" json:"createdBy,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`

	Items []InvoiceItem `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"items"`
}

type InvoiceItem struct {
	ID        uint     `gorm:"primaryKey" json:"id"`
	InvoiceID uint     `gorm:"index;not null" json:"invoiceId"`
	ItemType  ItemType `gorm:"type:varchar(10);not null" json:"itemType"`
	ItemID    uint     `gorm:"not null" json:"itemId"`
	ItemName  *string  `json:"itemName,omitempty"`
	StaffID   *uint    `gorm:"index" json:"staffId,omitempty"`

	Quantity   int     `gorm:"not null;default:1" json:"quantity"`
	UnitPrice  float64 `gorm:"type:decimal(12,2);not null" json:"unitPrice"`
	Discount   float64 `gorm:"type:decimal(12,2);not null;default:0" json:"discount"`
	TotalPrice float64 `gorm:"type:decimal(12,2);not null" json:"totalPrice"`

	CreatedAt time.Time `json:"createdAt"`
}
