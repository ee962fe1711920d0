package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"salonspa-backend/models"
	"salonspa-backend/services"
	"salonspa-backend/utils"
)

// InvoiceItemRequest defines one invoice line in a request body
type InvoiceItemRequest struct {
	ItemType   string   `json:"itemType" binding:"required,oneof=service product package"`
	ItemID     uint     `json:"itemId" binding:"required"`
	ItemName   *string  `json:"itemName"`
	StaffID    *uint    `json:"staffId"`
	Quantity   int      `json:"quantity" binding:"omitempty,min=1"`
	UnitPrice  float64  `json:"unitPrice" binding:"min=0"`
	Discount   float64  `json:"discount" binding:"min=0"`
	TotalPrice *float64 `json:"totalPrice"`
}

// CreateInvoiceRequest defines the expected JSON structure for creating an invoice
type CreateInvoiceRequest struct {
	Voucher        string               `json:"voucher" binding:"required"`
	BookingID      *uint                `json:"bookingId"`
	CustomerID     uint                 `json:"customerId" binding:"required"`
	StoreID        uint                 `json:"storeId"`
	Subtotal       float64              `json:"subtotal" binding:"min=0"`
	DiscountAmount float64              `json:"discountAmount" binding:"min=0"`
	DiscountType   *string              `json:"discountType"`
	TaxAmount      float64              `json:"taxAmount" binding:"min=0"`
	TotalAmount    float64              `json:"totalAmount" binding:"min=0"`
	PaidAmount     float64              `json:"paidAmount" binding:"min=0"`
	Notes          string               `json:"notes"`
	Items          []InvoiceItemRequest `json:"items" binding:"dive"`
}

// UpdateInvoiceRequest defines the expected JSON structure for updating an invoice
type UpdateInvoiceRequest struct {
	Voucher        *string  `json:"voucher"`
	CustomerID     *uint    `json:"customerId"`
	StoreID        *uint    `json:"storeId"`
	Subtotal       *float64 `json:"subtotal" binding:"omitempty,min=0"`
	DiscountAmount *float64 `json:"discountAmount" binding:"omitempty,min=0"`
	DiscountType   *string  `json:"discountType"`
	TaxAmount      *float64 `json:"taxAmount" binding:"omitempty,min=0"`
	TotalAmount    *float64 `json:"totalAmount" binding:"omitempty,min=0"`
	PaidAmount     *float64 `json:"paidAmount" binding:"omitempty,min=0"`
	Notes          *string  `json:"notes"`
}

// ReplaceInvoiceRequest updates fields and swaps the item list at once
type ReplaceInvoiceRequest struct {
	UpdateInvoiceRequest
	Items []InvoiceItemRequest `json:"items" binding:"dive"`
}

type UpdatePaymentRequest struct {
	PaidAmount *float64 `json:"paidAmount" binding:"required,min=0"`
	Notes      *string  `json:"notes"`
}

type ListInvoicesQuery struct {
	StoreID       uint   `form:"storeId"`
	CustomerID    uint   `form:"customerId"`
	BookingID     uint   `form:"bookingId"`
	PaymentStatus string `form:"paymentStatus"`
}

type InvoiceController struct {
	invoices *services.InvoiceService
	log      *zap.Logger
}

func NewInvoiceController(invoices *services.InvoiceService, log *zap.Logger) *InvoiceController {
	return &InvoiceController{invoices: invoices, log: log.Named("invoice.controller")}
}

// CreateInvoice creates an invoice and reserves stock for its product lines
func (ic *InvoiceController) CreateInvoice(c *gin.Context) {
	var req CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	discountType, err := services.ParseDiscountType(req.DiscountType)
	if err != nil {
		respondServiceError(c, ic.log, err)
		return
	}

	storeID := req.StoreID
	if storeID == 0 {
		storeID = storeFromContext(c)
	}

	invoice, err := ic.invoices.Create(c.Request.Context(), services.CreateInvoiceInput{
		Voucher:        req.Voucher,
		BookingID:      req.BookingID,
		CustomerID:     req.CustomerID,
		StoreID:        storeID,
		Subtotal:       req.Subtotal,
		DiscountAmount: req.DiscountAmount,
		DiscountType:   discountType,
		TaxAmount:      req.TaxAmount,
		TotalAmount:    req.TotalAmount,
		PaidAmount:     req.PaidAmount,
		Notes:          req.Notes,
		CreatedBy:      utils.CurrentUserID(c),
		Items:          itemInputs(req.Items),
	})
	if err != nil {
		respondServiceError(c, ic.log, err)
		return
	}
	c.JSON(http.StatusCreated, invoice)
}

// GetInvoices lists invoices, newest first
func (ic *InvoiceController) GetInvoices(c *gin.Context) {
	var q ListInvoicesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid query: "+err.Error())
		return
	}
	if q.StoreID == 0 {
		q.StoreID = storeFromContext(c)
	}

	invoices, err := ic.invoices.List(c.Request.Context(), services.InvoiceFilter{
		StoreID:       q.StoreID,
		CustomerID:    q.CustomerID,
		BookingID:     q.BookingID,
		PaymentStatus: models.PaymentStatus(q.PaymentStatus),
	})
	if err != nil {
		respondServiceError(c, ic.log, err)
		return
	}
	c.JSON(http.StatusOK, invoices)
}

func (ic *InvoiceController) GetInvoice(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	invoice, err := ic.invoices.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, ic.log, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

// UpdateInvoice applies a partial update; items are left as they are
func (ic *InvoiceController) UpdateInvoice(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	patch, err := req.patch()
	if err != nil {
		respondServiceError(c, ic.log, err)
		return
	}

	invoice, err := ic.invoices.Update(c.Request.Context(), id, patch)
	if err != nil {
		respondServiceError(c, ic.log, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

// ReplaceInvoice updates fields and replaces all items in one transaction
func (ic *InvoiceController) ReplaceInvoice(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req ReplaceInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	patch, err := req.patch()
	if err != nil {
		respondServiceError(c, ic.log, err)
		return
	}

	invoice, err := ic.invoices.ReplaceInvoice(c.Request.Context(), id, patch, itemInputs(req.Items))
	if err != nil {
		respondServiceError(c, ic.log, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

func (ic *InvoiceController) UpdatePayment(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req UpdatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	invoice, err := ic.invoices.UpdatePayment(c.Request.Context(), id, *req.PaidAmount, req.Notes)
	if err != nil {
		respondServiceError(c, ic.log, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

// DeleteInvoice removes an invoice and returns its products to stock
func (ic *InvoiceController) DeleteInvoice(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := ic.invoices.Remove(c.Request.Context(), id); err != nil {
		respondServiceError(c, ic.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Invoice deleted successfully"})
}

func (r UpdateInvoiceRequest) patch() (services.InvoicePatch, error) {
	discountType, err := services.ParseDiscountType(r.DiscountType)
	if err != nil {
		return services.InvoicePatch{}, err
	}
	return services.InvoicePatch{
		Voucher:        r.Voucher,
		CustomerID:     r.CustomerID,
		StoreID:        r.StoreID,
		Subtotal:       r.Subtotal,
		DiscountAmount: r.DiscountAmount,
		DiscountType:   discountType,
		TaxAmount:      r.TaxAmount,
		TotalAmount:    r.TotalAmount,
		PaidAmount:     r.PaidAmount,
		Notes:          r.Notes,
	}, nil
}

func itemInputs(reqs []InvoiceItemRequest) []services.InvoiceItemInput {
	if reqs == nil {
		return nil
	}
	items := make([]services.InvoiceItemInput, 0, len(reqs))
	for _, r := range reqs {
		items = append(items, services.InvoiceItemInput{
			ItemType:   models.ItemType(r.ItemType),
			ItemID:     r.ItemID,
			ItemName:   r.ItemName,
			StaffID:    r.StaffID,
			Quantity:   r.Quantity,
			UnitPrice:  r.UnitPrice,
			Discount:   r.Discount,
			TotalPrice: r.TotalPrice,
		})
	}
	return items
}
