package services

import (
	"context"
	"fmt"
	"time"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"salonspa-backend/config"
	"salonspa-backend/models"
)

const (
	notificationInvoiceReceipt = "invoice_receipt"
	notificationSent           = "sent"
	notificationFailed         = "failed"
)

// Notifier tells a customer that an invoice was issued. Implementations
// must not fail the caller; problems are logged.
type Notifier interface {
	InvoiceIssued(ctx context.Context, customer models.Customer, invoice *models.Invoice)
}

// NewNotifier returns an SMS notifier when Twilio is configured and a
// log-only notifier otherwise.
func NewNotifier(cfg config.Config, db *gorm.DB, log *zap.Logger) Notifier {
	if !cfg.Twilio.Enabled() {
		log.Info("twilio not configured, invoice receipts are logged only")
		return NewLogNotifier(db, log)
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.Twilio.AccountSID,
		Password: cfg.Twilio.AuthToken,
	})
	return NewTwilioNotifier(db, log, client.Api, cfg.Twilio.PhoneNumber)
}

// messageSender is the part of the Twilio API used here.
type messageSender interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

type TwilioNotifier struct {
	db     *gorm.DB
	log    *zap.Logger
	sender messageSender
	from   string
}

func NewTwilioNotifier(db *gorm.DB, log *zap.Logger, sender messageSender, from string) *TwilioNotifier {
	return &TwilioNotifier{
		db:     db,
		log:    log.Named("notifier.twilio"),
		sender: sender,
		from:   from,
	}
}

func (n *TwilioNotifier) InvoiceIssued(ctx context.Context, customer models.Customer, invoice *models.Invoice) {
	if customer.Phone == "" {
		n.log.Debug("customer has no phone, receipt skipped", zap.Uint("customer_id", customer.ID))
		return
	}
	message := receiptMessage(customer, invoice)

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(customer.Phone)
	params.SetFrom(n.from)
	params.SetBody(message)

	status, errorMsg := notificationSent, ""
	resp, err := n.sender.CreateMessage(params)
	if err != nil {
		status, errorMsg = notificationFailed, err.Error()
		n.log.Warn("failed to send invoice receipt",
			zap.Uint("invoice_id", invoice.ID),
			zap.Uint("customer_id", customer.ID),
			zap.Error(err),
		)
	} else if resp != nil && resp.Sid != nil {
		n.log.Info("invoice receipt sent", zap.Uint("invoice_id", invoice.ID), zap.String("sid", *resp.Sid))
	}

	writeNotificationLog(ctx, n.db, n.log, customer, invoice, message, "sms", status, errorMsg)
}

// LogNotifier records receipts without sending them anywhere.
type LogNotifier struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewLogNotifier(db *gorm.DB, log *zap.Logger) *LogNotifier {
	return &LogNotifier{db: db, log: log.Named("notifier.log")}
}

func (n *LogNotifier) InvoiceIssued(ctx context.Context, customer models.Customer, invoice *models.Invoice) {
	message := receiptMessage(customer, invoice)
	n.log.Info("invoice receipt",
		zap.Uint("invoice_id", invoice.ID),
		zap.Uint("customer_id", customer.ID),
		zap.String("message", message),
	)
	writeNotificationLog(ctx, n.db, n.log, customer, invoice, message, "log", notificationSent, "")
}

func receiptMessage(customer models.Customer, invoice *models.Invoice) string {
	return fmt.Sprintf("Hi %s, your invoice %s for %.2f has been issued. Paid: %.2f. Thank you for visiting!",
		customer.Name, invoice.Voucher, invoice.TotalAmount, invoice.PaidAmount)
}

func writeNotificationLog(ctx context.Context, db *gorm.DB, log *zap.Logger, customer models.Customer,
	invoice *models.Invoice, message, channel, status, errorMsg string) {
	invoiceID := invoice.ID
	entry := models.NotificationLog{
		StoreID:      invoice.StoreID,
		CustomerID:   customer.ID,
		InvoiceID:    &invoiceID,
		Type:         notificationInvoiceReceipt,
		Message:      message,
		Status:       status,
		ErrorMessage: errorMsg,
		Channel:      channel,
		SentAt:       time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(&entry).Error; err != nil {
		log.Warn("failed to record notification", zap.Uint("invoice_id", invoiceID), zap.Error(err))
	}
}
