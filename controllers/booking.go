package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"salonspa-backend/models"
	"salonspa-backend/services"
	"salonspa-backend/utils"
)

type UpdateBookingStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// InvoiceBookingRequest overrides values derived from the booking. Every
// field is optional.
type InvoiceBookingRequest struct {
	Voucher        *string              `json:"voucher"`
	Subtotal       *float64             `json:"subtotal" binding:"omitempty,min=0"`
	DiscountAmount *float64             `json:"discountAmount" binding:"omitempty,min=0"`
	DiscountType   *string              `json:"discountType"`
	TaxAmount      *float64             `json:"taxAmount" binding:"omitempty,min=0"`
	TotalAmount    *float64             `json:"totalAmount" binding:"omitempty,min=0"`
	PaidAmount     *float64             `json:"paidAmount" binding:"omitempty,min=0"`
	Notes          *string              `json:"notes"`
	Items          []InvoiceItemRequest `json:"items" binding:"omitempty,dive"`
}

type BookingController struct {
	bookings *services.BookingService
	log      *zap.Logger
}

func NewBookingController(bookings *services.BookingService, log *zap.Logger) *BookingController {
	return &BookingController{bookings: bookings, log: log.Named("booking.controller")}
}

// UpdateStatus changes a booking's status. Starting or completing a booking
// invoices it; an invoicing problem does not fail the request.
func (bc *BookingController) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req UpdateBookingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	booking, invoice, err := bc.bookings.UpdateStatus(c.Request.Context(), id, models.BookingStatus(req.Status))
	if err != nil {
		respondServiceError(c, bc.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking, "invoice": invoice})
}

// InvoiceBooking derives the booking's invoice on demand
func (bc *BookingController) InvoiceBooking(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req InvoiceBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	discountType, err := services.ParseDiscountType(req.DiscountType)
	if err != nil {
		respondServiceError(c, bc.log, err)
		return
	}

	invoice, err := bc.bookings.InvoiceNow(c.Request.Context(), id, &services.InvoiceOverrides{
		Voucher:        req.Voucher,
		Subtotal:       req.Subtotal,
		DiscountAmount: req.DiscountAmount,
		DiscountType:   discountType,
		TaxAmount:      req.TaxAmount,
		TotalAmount:    req.TotalAmount,
		PaidAmount:     req.PaidAmount,
		Notes:          req.Notes,
		Items:          itemInputs(req.Items),
		CreatedBy:      utils.CurrentUserID(c),
	})
	if err != nil {
		respondServiceError(c, bc.log, err)
		return
	}
	c.JSON(http.StatusCreated, invoice)
}
