package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"salonspa-backend/models"
	"salonspa-backend/utils"
)

const (
	sweepLookbackDays = 7
	sweepBatchSize    = 200
)

// InvoiceSweeper retries invoicing for started bookings that still have no
// invoice, e.g. because stock was short when their status changed.
type InvoiceSweeper struct {
	db       *gorm.DB
	log      *zap.Logger
	invoicer *BookingInvoicer
	schedule string
	cron     *cron.Cron
	now      func() time.Time
}

func NewInvoiceSweeper(db *gorm.DB, log *zap.Logger, invoicer *BookingInvoicer, schedule string) *InvoiceSweeper {
	return &InvoiceSweeper{
		db:       db,
		log:      log.Named("invoice.sweeper"),
		invoicer: invoicer,
		schedule: schedule,
		now:      time.Now,
	}
}

// Start schedules the sweep. An empty schedule disables it.
func (s *InvoiceSweeper) Start() error {
	if s.schedule == "" {
		s.log.Info("invoice sweep disabled")
		return nil
	}
	c := cron.New()
	if _, err := c.AddFunc(s.schedule, func() { s.Sweep(context.Background()) }); err != nil {
		return fmt.Errorf("invalid invoice sweep schedule %q: %w", s.schedule, err)
	}
	c.Start()
	s.cron = c
	s.log.Info("invoice sweep scheduled", zap.String("schedule", s.schedule))
	return nil
}

// Stop waits for a running sweep to finish or ctx to expire.
func (s *InvoiceSweeper) Stop(ctx context.Context) error {
	if s.cron == nil {
		return nil
	}
	select {
	case <-s.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Sweep invoices every eligible booking from the lookback window and
// returns how many invoices were created.
func (s *InvoiceSweeper) Sweep(ctx context.Context) int {
	cutoff := utils.BeginningOfDay(s.now().UTC()).AddDate(0, 0, -sweepLookbackDays)

	var bookings []models.Booking
	err := s.db.WithContext(ctx).
		Where("status IN ?", []models.BookingStatus{models.BookingInProgress, models.BookingCompleted}).
		Where("customer_id IS NOT NULL").
		Where("(booking_date >= ? OR booking_date = '')", cutoff.Format("2006-01-02")).
		Where("NOT EXISTS (SELECT 1 FROM invoices WHERE invoices.booking_id = bookings.id)").
		Order("id").
		Limit(sweepBatchSize).
		Find(&bookings).Error
	if err != nil {
		s.log.Error("failed to load bookings to invoice", zap.Error(err))
		return 0
	}

	created := 0
	for i := range bookings {
		if len(bookings[i].PendingInvoiceItems) == 0 {
			continue
		}
		if s.invoicer.InvoiceBooking(ctx, &bookings[i], nil) != nil {
			created++
		}
	}
	if created > 0 || len(bookings) > 0 {
		s.log.Info("invoice sweep finished",
			zap.Int("candidates", len(bookings)),
			zap.Int("created", created),
		)
	}
	return created
}
