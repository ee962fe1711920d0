package models

import "time"

// Product is a retail item sold alongside services. Invoicing only touches
// QuantityStock.
type Product struct {
	ID            uint    `gorm:"primaryKey" json:"id"`
	StoreID       uint    `gorm:"index;not null" json:"storeId"`
	Name          string  `gorm:"not null" json:"name"`
	SKU           string  `gorm:"index" json:"sku"`
	Price         float64 `gorm:"type:decimal(12,2);not null" json:"price"`
	QuantityStock int     `gorm:"column:quantity_stock;not null;default:0;check:chk_products_quantity_stock,quantity_stock >= 0" json:"quantityStock"`
	IsActive      bool    `gorm:"default:true" json:"isActive"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

const (
	StockReasonInvoice       = "invoice"
	StockReasonInvoiceDelete = "invoice_delete"
	StockReasonInvoiceEdit   = "invoice_edit"
)

// StockMovement records one adjustment of a product's stock.
type StockMovement struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	ProductID   uint   `gorm:"index;not null" json:"productId"`
	Quantity    int    `gorm:"not null" json:"quantity"` // negative = out
	PreviousQty int    `gorm:"not null" json:"previousQty"`
	NewQty      int    `gorm:"not null" json:"newQty"`
	Reason      string `gorm:"type:varchar(20);not null" json:"reason"`
	InvoiceID   *uint  `gorm:"index" json:"invoiceId,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}
