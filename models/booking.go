package models

import (
	"time"

	"gorm.io/datatypes"
)

type BookingStatus string

const (
	BookingPending    BookingStatus = "pending"
	BookingConfirmed  BookingStatus = "confirmed"
	BookingInProgress BookingStatus = "in_progress"
	BookingCompleted  BookingStatus = "completed"
	BookingCancelled  BookingStatus = "cancelled"
	BookingNoShow     BookingStatus = "no_show"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingInProgress,
		BookingCompleted, BookingCancelled, BookingNoShow:
		return true
	}
	return false
}

// Terminal statuses cannot be left once reached.
func (s BookingStatus) Terminal() bool {
	return s == BookingCompleted || s == BookingCancelled || s == BookingNoShow
}

// Invoiceable statuses trigger automatic invoicing.
func (s BookingStatus) Invoiceable() bool {
	return s == BookingInProgress || s == BookingCompleted
}

// PendingInvoiceItem is a line drafted when the booking is made, before any
// invoice exists.
type PendingInvoiceItem struct {
	ItemType   ItemType `json:"itemType"`
	ItemID     uint     `json:"itemId"`
	ItemName   *string  `json:"itemName,omitempty"`
	StaffID    *uint    `json:"staffId,omitempty"`
	Quantity   int      `json:"quantity"`
	UnitPrice  float64  `json:"unitPrice"`
	Discount   float64  `json:"discount"`
	TotalPrice *float64 `json:"totalPrice,omitempty"`
}

type Booking struct {
	ID      uint  `gorm:"primaryKey" json:"id"`
	StoreID uint  `gorm:"index;not null" json:"storeId"`
	StaffID *uint `gorm:"index" json:"staffId,omitempty"`

	CustomerID    *uint  `gorm:"index" json:"customerId,omitempty"`
	CustomerName  string `json:"customerName"`
	CustomerPhone string `json:"customerPhone"`
	CustomerEmail string `json:"customerEmail"`

	BookingDate string        `gorm:"type:varchar(10)" json:"bookingDate"` // YYYY-MM-DD
	StartTime   string        `gorm:"type:varchar(8)" json:"startTime"`    // HH:mm or HH:mm:ss
	Status      BookingStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`

	PendingInvoiceItems datatypes.JSONSlice[PendingInvoiceItem] `json:"pendingInvoiceItems"`
	OrderDiscount       *float64                                `gorm:"type:decimal(12,2)" json:"orderDiscount,omitempty"`
	OrderDiscountType   *string                                 `gorm:"type:varchar(10)" json:"orderDiscountType,omitempty"`
	DiscountReason      string                                  `json:"discountReason"`
	Notes               string                                  `gorm:"type:text" json:"notes"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
