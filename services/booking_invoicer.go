package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"salonspa-backend/metrics"
	"salonspa-backend/models"
	"salonspa-backend/utils"
)

const fallbackVoucherStamp = "000000000000"

var (
	ErrBookingAlreadyInvoiced = fmt.Errorf("%w: booking already invoiced", ErrConflict)
	ErrBookingNotInvoiceable  = fmt.Errorf("%w: booking cannot be invoiced yet", ErrInvalidArgument)
)

// InvoiceOverrides replaces individual derived values. Nil fields keep the
// value derived from the booking.
type InvoiceOverrides struct {
	Voucher        *string
	Subtotal       *float64
	DiscountAmount *float64
	DiscountType   *models.DiscountType
	TaxAmount      *float64
	TotalAmount    *float64
	PaidAmount     *float64
	Notes          *string
	Items          []InvoiceItemInput
	CreatedBy      *uuid.UUID
}

// BookingInvoicer turns a booking's drafted lines into an invoice.
type BookingInvoicer struct {
	invoices  *InvoiceService
	customers CustomerResolver
	notifier  Notifier
	log       *zap.Logger
	metrics   *metrics.Metrics
	taxRate   float64
	now       func() time.Time
}

func NewBookingInvoicer(invoices *InvoiceService, customers CustomerResolver, notifier Notifier,
	log *zap.Logger, m *metrics.Metrics, taxRate float64) *BookingInvoicer {
	return &BookingInvoicer{
		invoices:  invoices,
		customers: customers,
		notifier:  notifier,
		log:       log.Named("booking.invoicer"),
		metrics:   m,
		taxRate:   taxRate,
		now:       time.Now,
	}
}

// InvoiceBooking derives the invoice and never fails the caller. Errors are
// logged and counted; nil is returned when no invoice was created.
func (b *BookingInvoicer) InvoiceBooking(ctx context.Context, booking *models.Booking, overrides *InvoiceOverrides) *models.Invoice {
	invoice, err := b.Derive(ctx, booking, overrides)
	if err == nil {
		return invoice
	}

	bookingID := uint(0)
	if booking != nil {
		bookingID = booking.ID
	}
	if errors.Is(err, ErrBookingAlreadyInvoiced) || errors.Is(err, ErrBookingNotInvoiceable) {
		b.log.Debug("booking not invoiced", zap.Uint("booking_id", bookingID), zap.Error(err))
		return nil
	}

	b.metrics.RecordBookingInvoiceFailure(ctx, ErrorKind(err))
	b.log.Error("failed to invoice booking",
		zap.Uint("booking_id", bookingID),
		zap.String("kind", ErrorKind(err)),
		zap.Error(err),
	)
	return nil
}

// Derive builds the invoice for booking and creates it. Errors from the
// invoice service are returned unchanged.
func (b *BookingInvoicer) Derive(ctx context.Context, booking *models.Booking, overrides *InvoiceOverrides) (*models.Invoice, error) {
	if booking == nil {
		return nil, invalidArgument("booking is required")
	}
	if len(booking.PendingInvoiceItems) == 0 {
		return nil, fmt.Errorf("%w: booking %d has no pending items", ErrBookingNotInvoiceable, booking.ID)
	}
	if booking.CustomerID == nil || *booking.CustomerID == 0 {
		return nil, fmt.Errorf("%w: booking %d has no customer", ErrBookingNotInvoiceable, booking.ID)
	}
	exists, err := b.invoices.ExistsForBooking(ctx, booking.ID)
	if err != nil {
		return nil, fmt.Errorf("check invoice of booking %d: %w", booking.ID, err)
	}
	if exists {
		return nil, fmt.Errorf("%w: booking %d", ErrBookingAlreadyInvoiced, booking.ID)
	}

	input, err := b.BuildInvoiceInput(ctx, booking, overrides)
	if err != nil {
		return nil, err
	}
	invoice, err := b.invoices.Create(ctx, input)
	if err != nil {
		return nil, err
	}

	customer, err := b.customers.TouchLastVisit(ctx, invoice.CustomerID, b.now())
	if err != nil {
		b.log.Warn("failed to update customer last visit",
			zap.Uint("customer_id", invoice.CustomerID),
			zap.Error(err),
		)
	} else if b.notifier != nil {
		b.notifier.InvoiceIssued(ctx, *customer, invoice)
	}

	b.log.Info("booking invoiced",
		zap.Uint("booking_id", booking.ID),
		zap.Uint("invoice_id", invoice.ID),
		zap.String("voucher", invoice.Voucher),
	)
	return invoice, nil
}

// BuildInvoiceInput applies the derivation defaults to every field the
// overrides leave unset.
func (b *BookingInvoicer) BuildInvoiceInput(ctx context.Context, booking *models.Booking, overrides *InvoiceOverrides) (CreateInvoiceInput, error) {
	if overrides == nil {
		overrides = &InvoiceOverrides{}
	}

	items := overrides.Items
	if items == nil {
		items = pendingItemInputs(booking.PendingInvoiceItems)
	}

	subtotal := GrossSubtotal(items)
	if overrides.Subtotal != nil {
		subtotal = *overrides.Subtotal
	}

	discount := 0.0
	if booking.OrderDiscount != nil {
		discount = *booking.OrderDiscount
	}
	if overrides.DiscountAmount != nil {
		discount = *overrides.DiscountAmount
	}

	discountType := overrides.DiscountType
	if discountType == nil {
		parsed, err := ParseDiscountType(booking.OrderDiscountType)
		if err != nil {
			return CreateInvoiceInput{}, err
		}
		discountType = parsed
	}

	taxable := decimal.NewFromFloat(subtotal).Sub(decimal.NewFromFloat(discount))
	tax := ComputeTax(taxable.InexactFloat64(), b.taxRate)
	if overrides.TaxAmount != nil {
		tax = *overrides.TaxAmount
	}

	total := taxable.Add(decimal.NewFromFloat(tax)).Round(2).InexactFloat64()
	if overrides.TotalAmount != nil {
		total = *overrides.TotalAmount
	}

	paid := 0.0
	if overrides.PaidAmount != nil {
		paid = *overrides.PaidAmount
	}

	var voucher string
	if overrides.Voucher != nil {
		voucher = *overrides.Voucher
	} else {
		voucher = b.voucherFor(ctx, booking)
	}

	notes := booking.DiscountReason
	if notes == "" {
		notes = fmt.Sprintf("Invoice automatically generated from booking #%d", booking.ID)
	}
	if overrides.Notes != nil {
		notes = *overrides.Notes
	}

	bookingID := booking.ID
	return CreateInvoiceInput{
		Voucher:        voucher,
		BookingID:      &bookingID,
		CustomerID:     *booking.CustomerID,
		StoreID:        booking.StoreID,
		Subtotal:       subtotal,
		DiscountAmount: discount,
		DiscountType:   discountType,
		TaxAmount:      tax,
		TotalAmount:    total,
		PaidAmount:     paid,
		Notes:          notes,
		CreatedBy:      overrides.CreatedBy,
		Items:          items,
	}, nil
}

// voucherFor encodes the booking's date and start time as
// INV-{id}-{MMDDYYYYHHmm}.
func (b *BookingInvoicer) voucherFor(ctx context.Context, booking *models.Booking) string {
	at, err := utils.CombineDateTime(booking.BookingDate, booking.StartTime)
	if err == nil {
		return fmt.Sprintf("INV-%d-%s", booking.ID, utils.CompactStamp(at))
	}

	stamp, reason := fallbackVoucherStamp, "missing_datetime"
	if errors.Is(err, utils.ErrInvalidDateTime) {
		stamp, reason = strconv.FormatInt(b.now().UnixMilli(), 10), "unparseable_datetime"
	}
	b.metrics.RecordVoucherFallback(ctx, reason)
	b.log.Warn("booking date/time unusable for voucher",
		zap.Uint("booking_id", booking.ID),
		zap.String("booking_date", booking.BookingDate),
		zap.String("start_time", booking.StartTime),
		zap.String("reason", reason),
	)
	return fmt.Sprintf("INV-%d-%s", booking.ID, stamp)
}

func pendingItemInputs(pending []models.PendingInvoiceItem) []InvoiceItemInput {
	items := make([]InvoiceItemInput, 0, len(pending))
	for _, p := range pending {
		items = append(items, InvoiceItemInput{
			ItemType:   p.ItemType,
			ItemID:     p.ItemID,
			ItemName:   p.ItemName,
			StaffID:    p.StaffID,
			Quantity:   p.Quantity,
			UnitPrice:  p.UnitPrice,
			Discount:   p.Discount,
			TotalPrice: p.TotalPrice,
		})
	}
	return items
}
