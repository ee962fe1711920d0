package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"salonspa-backend/models"
)

// BookingService applies booking status transitions and invoices bookings
// once service has started.
type BookingService struct {
	db        *gorm.DB
	log       *zap.Logger
	customers CustomerResolver
	invoicer  *BookingInvoicer
}

func NewBookingService(db *gorm.DB, log *zap.Logger, customers CustomerResolver, invoicer *BookingInvoicer) *BookingService {
	return &BookingService{
		db:        db,
		log:       log.Named("booking.service"),
		customers: customers,
		invoicer:  invoicer,
	}
}

func (s *BookingService) Get(ctx context.Context, id uint) (*models.Booking, error) {
	var booking models.Booking
	if err := s.db.WithContext(ctx).First(&booking, id).Error; err != nil {
		return nil, translateDBError(err, fmt.Sprintf("booking %d", id))
	}
	return &booking, nil
}

// UpdateStatus moves the booking to status. Entering in_progress or
// completed invoices the booking on a best-effort basis: the returned
// invoice is nil when invoicing was skipped or failed, and the status change
// stands either way.
func (s *BookingService) UpdateStatus(ctx context.Context, id uint, status models.BookingStatus) (*models.Booking, *models.Invoice, error) {
	if !status.Valid() {
		return nil, nil, invalidArgument("unknown booking status %q", status)
	}
	booking, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if booking.Status == status {
		return booking, nil, nil
	}
	if booking.Status.Terminal() {
		return nil, nil, invalidArgument("booking %d is %s and cannot become %s", id, booking.Status, status)
	}

	if err := s.db.WithContext(ctx).Model(booking).Update("status", status).Error; err != nil {
		return nil, nil, fmt.Errorf("update status of booking %d: %w", id, err)
	}
	booking.Status = status
	s.log.Info("booking status changed", zap.Uint("booking_id", id), zap.String("status", string(status)))

	if !status.Invoiceable() {
		return booking, nil, nil
	}
	if err := s.ensureCustomer(ctx, booking); err != nil {
		s.log.Warn("booking customer unresolved, invoice skipped", zap.Uint("booking_id", id), zap.Error(err))
		return booking, nil, nil
	}
	return booking, s.invoicer.InvoiceBooking(ctx, booking, nil), nil
}

// InvoiceNow derives the booking's invoice immediately. Unlike status
// transitions, every failure is returned to the caller.
func (s *BookingService) InvoiceNow(ctx context.Context, id uint, overrides *InvoiceOverrides) (*models.Invoice, error) {
	booking, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureCustomer(ctx, booking); err != nil {
		return nil, err
	}
	return s.invoicer.Derive(ctx, booking, overrides)
}

// ensureCustomer links a guest booking to a customer record.
func (s *BookingService) ensureCustomer(ctx context.Context, booking *models.Booking) error {
	if booking.CustomerID != nil && *booking.CustomerID != 0 {
		return nil
	}
	customer, err := s.customers.ResolveOrCreate(ctx, booking.StoreID,
		booking.CustomerName, booking.CustomerPhone, booking.CustomerEmail)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Model(booking).Update("customer_id", customer.ID).Error; err != nil {
		return fmt.Errorf("link customer to booking %d: %w", booking.ID, err)
	}
	booking.CustomerID = &customer.ID
	return nil
}
