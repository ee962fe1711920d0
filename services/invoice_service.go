package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"salonspa-backend/metrics"
	"salonspa-backend/models"
)

// CreateInvoiceInput is a complete invoice payload.
type CreateInvoiceInput struct {
	Voucher        string
	BookingID      *uint
	CustomerID     uint
	StoreID        uint
	Subtotal       float64
	DiscountAmount float64
	DiscountType   *models.DiscountType
	TaxAmount      float64
	TotalAmount    float64
	PaidAmount     float64
	Notes          string
	CreatedBy      *uuid.UUID
	Items          []InvoiceItemInput
}

// InvoicePatch carries a partial update; nil fields are left unchanged.
type InvoicePatch struct {
	Voucher        *string
	CustomerID     *uint
	StoreID        *uint
	Subtotal       *float64
	DiscountAmount *float64
	DiscountType   *models.DiscountType
	TaxAmount      *float64
	TotalAmount    *float64
	PaidAmount     *float64
	Notes          *string
}

// InvoiceFilter narrows List. Zero values are ignored.
type InvoiceFilter struct {
	StoreID       uint
	CustomerID    uint
	BookingID     uint
	PaymentStatus models.PaymentStatus
}

// InvoiceService creates, changes and removes invoices together with the
// stock their product lines consume. Each call is one transaction.
type InvoiceService struct {
	db      *gorm.DB
	log     *zap.Logger
	stock   *StockLedger
	metrics *metrics.Metrics
}

func NewInvoiceService(db *gorm.DB, log *zap.Logger, stock *StockLedger, m *metrics.Metrics) *InvoiceService {
	return &InvoiceService{
		db:      db,
		log:     log.Named("invoice.service"),
		stock:   stock,
		metrics: m,
	}
}

// Create persists the invoice and its items, reserving stock for product
// lines in item order. On any failure nothing is persisted.
func (s *InvoiceService) Create(ctx context.Context, in CreateInvoiceInput) (*models.Invoice, error) {
	voucher, err := normalizeVoucher(in.Voucher)
	if err != nil {
		s.metrics.RecordInvoiceFailure(ctx, "create", ErrorKind(err))
		return nil, err
	}

	invoice := &models.Invoice{
		Voucher:        voucher,
		BookingID:      in.BookingID,
		CustomerID:     in.CustomerID,
		StoreID:        in.StoreID,
		Subtotal:       in.Subtotal,
		DiscountAmount: in.DiscountAmount,
		DiscountType:   in.DiscountType,
		TaxAmount:      in.TaxAmount,
		TotalAmount:    in.TotalAmount,
		PaidAmount:     in.PaidAmount,
		Notes:          in.Notes,
		CreatedBy:      in.CreatedBy,
	}

	err = runInUnitOfWork(ctx, s.db, func(uow *UnitOfWork) error {
		if err := s.ensureVoucherAvailable(uow, voucher, 0); err != nil {
			return err
		}
		if err := validateInvoiceAmounts(invoice); err != nil {
			return err
		}
		items, err := buildInvoiceItems(in.Items)
		if err != nil {
			return err
		}
		if err := s.ensureParties(uow, invoice.CustomerID, invoice.StoreID); err != nil {
			return err
		}

		invoice.PaymentStatus = DerivePaymentStatus(invoice.PaidAmount, invoice.TotalAmount)
		if err := uow.tx.Omit(clause.Associations).Create(invoice).Error; err != nil {
			return translateDBError(err, "invoice "+voucher)
		}
		return s.addItems(uow, invoice, items, models.StockReasonInvoice)
	})
	if err != nil {
		s.metrics.RecordInvoiceFailure(ctx, "create", ErrorKind(err))
		s.log.Info("invoice create rolled back",
			zap.String("voucher", voucher),
			zap.String("kind", ErrorKind(err)),
			zap.Error(err),
		)
		return nil, err
	}

	source := "direct"
	if invoice.BookingID != nil {
		source = "booking"
	}
	s.metrics.RecordInvoiceCreated(ctx, source)
	s.log.Info("invoice created",
		zap.Uint("invoice_id", invoice.ID),
		zap.String("voucher", invoice.Voucher),
		zap.Int("items", len(invoice.Items)),
		zap.Float64("total", invoice.TotalAmount),
	)
	return invoice, nil
}

// Remove deletes the invoice and its items and puts product stock back.
// Products that no longer exist are skipped.
func (s *InvoiceService) Remove(ctx context.Context, id uint) error {
	err := runInUnitOfWork(ctx, s.db, func(uow *UnitOfWork) error {
		invoice, err := s.lockInvoice(uow, id)
		if err != nil {
			return err
		}
		items, err := s.loadItems(uow, invoice.ID)
		if err != nil {
			return err
		}
		if err := s.restoreStock(uow, invoice.ID, items, models.StockReasonInvoiceDelete); err != nil {
			return err
		}
		if err := uow.tx.Where("invoice_id = ?", invoice.ID).Delete(&models.InvoiceItem{}).Error; err != nil {
			return fmt.Errorf("delete items of invoice %d: %w", invoice.ID, err)
		}
		if err := uow.tx.Delete(invoice).Error; err != nil {
			return fmt.Errorf("delete invoice %d: %w", invoice.ID, err)
		}
		return nil
	})
	if err != nil {
		s.metrics.RecordInvoiceFailure(ctx, "remove", ErrorKind(err))
		return err
	}
	s.log.Info("invoice removed", zap.Uint("invoice_id", id))
	return nil
}

// Update merges patch into the invoice and recomputes the payment status.
// Items are not touched; use ReplaceInvoice for that.
func (s *InvoiceService) Update(ctx context.Context, id uint, patch InvoicePatch) (*models.Invoice, error) {
	var invoice *models.Invoice
	err := runInUnitOfWork(ctx, s.db, func(uow *UnitOfWork) error {
		var err error
		if invoice, err = s.lockInvoice(uow, id); err != nil {
			return err
		}
		if err := s.applyPatch(uow, invoice, patch); err != nil {
			return err
		}
		if err := s.save(uow, invoice); err != nil {
			return err
		}
		invoice.Items, err = s.loadItems(uow, invoice.ID)
		return err
	})
	if err != nil {
		s.metrics.RecordInvoiceFailure(ctx, "update", ErrorKind(err))
		return nil, err
	}
	return invoice, nil
}

// UpdatePayment records the amount paid so far.
func (s *InvoiceService) UpdatePayment(ctx context.Context, id uint, paidAmount float64, notes *string) (*models.Invoice, error) {
	var invoice *models.Invoice
	err := runInUnitOfWork(ctx, s.db, func(uow *UnitOfWork) error {
		var err error
		if invoice, err = s.lockInvoice(uow, id); err != nil {
			return err
		}
		if paidAmount < 0 {
			return invalidArgument("paidAmount must not be negative")
		}
		if paidAmount > invoice.TotalAmount {
			return invalidArgument("paidAmount %.2f exceeds totalAmount %.2f", paidAmount, invoice.TotalAmount)
		}
		invoice.PaidAmount = paidAmount
		if notes != nil {
			invoice.Notes = *notes
		}
		if err := s.save(uow, invoice); err != nil {
			return err
		}
		invoice.Items, err = s.loadItems(uow, invoice.ID)
		return err
	})
	if err != nil {
		s.metrics.RecordInvoiceFailure(ctx, "update_payment", ErrorKind(err))
		return nil, err
	}
	s.log.Info("invoice payment updated",
		zap.Uint("invoice_id", id),
		zap.Float64("paid", invoice.PaidAmount),
		zap.String("status", string(invoice.PaymentStatus)),
	)
	return invoice, nil
}

// ReplaceInvoice merges fields and swaps the whole item list in one
// transaction. Stock held by the old product lines is returned before the
// new lines reserve theirs.
func (s *InvoiceService) ReplaceInvoice(ctx context.Context, id uint, fields InvoicePatch, items []InvoiceItemInput) (*models.Invoice, error) {
	var invoice *models.Invoice
	err := runInUnitOfWork(ctx, s.db, func(uow *UnitOfWork) error {
		var err error
		if invoice, err = s.lockInvoice(uow, id); err != nil {
			return err
		}
		if err := s.applyPatch(uow, invoice, fields); err != nil {
			return err
		}
		newItems, err := buildInvoiceItems(items)
		if err != nil {
			return err
		}

		oldItems, err := s.loadItems(uow, invoice.ID)
		if err != nil {
			return err
		}
		if err := s.restoreStock(uow, invoice.ID, oldItems, models.StockReasonInvoiceEdit); err != nil {
			return err
		}
		if err := uow.tx.Where("invoice_id = ?", invoice.ID).Delete(&models.InvoiceItem{}).Error; err != nil {
			return fmt.Errorf("delete items of invoice %d: %w", invoice.ID, err)
		}

		if err := s.save(uow, invoice); err != nil {
			return err
		}
		return s.addItems(uow, invoice, newItems, models.StockReasonInvoiceEdit)
	})
	if err != nil {
		s.metrics.RecordInvoiceFailure(ctx, "replace", ErrorKind(err))
		return nil, err
	}
	s.log.Info("invoice replaced", zap.Uint("invoice_id", id), zap.Int("items", len(invoice.Items)))
	return invoice, nil
}

// Get returns the invoice with its items.
func (s *InvoiceService) Get(ctx context.Context, id uint) (*models.Invoice, error) {
	var invoice models.Invoice
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&invoice, id).Error
	if err != nil {
		return nil, translateDBError(err, fmt.Sprintf("invoice %d", id))
	}
	return &invoice, nil
}

// List returns invoices matching filter, newest first.
func (s *InvoiceService) List(ctx context.Context, filter InvoiceFilter) ([]models.Invoice, error) {
	query := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Order("created_at DESC, id DESC")
	if filter.StoreID != 0 {
		query = query.Where("store_id = ?", filter.StoreID)
	}
	if filter.CustomerID != 0 {
		query = query.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.BookingID != 0 {
		query = query.Where("booking_id = ?", filter.BookingID)
	}
	if filter.PaymentStatus != "" {
		query = query.Where("payment_status = ?", filter.PaymentStatus)
	}

	var invoices []models.Invoice
	if err := query.Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// ExistsForBooking reports whether an invoice already references the booking.
func (s *InvoiceService) ExistsForBooking(ctx context.Context, bookingID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Invoice{}).
		Where("booking_id = ?", bookingID).
		Count(&count).Error
	return count > 0, err
}

func (s *InvoiceService) lockInvoice(uow *UnitOfWork, id uint) (*models.Invoice, error) {
	var invoice models.Invoice
	if err := uow.tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&invoice, id).Error; err != nil {
		return nil, translateDBError(err, fmt.Sprintf("invoice %d", id))
	}
	return &invoice, nil
}

func (s *InvoiceService) loadItems(uow *UnitOfWork, invoiceID uint) ([]models.InvoiceItem, error) {
	var items []models.InvoiceItem
	if err := uow.tx.Where("invoice_id = ?", invoiceID).Order("id").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("load items of invoice %d: %w", invoiceID, err)
	}
	return items, nil
}

func (s *InvoiceService) ensureVoucherAvailable(uow *UnitOfWork, voucher string, ownID uint) error {
	var count int64
	query := uow.tx.Model(&models.Invoice{}).Where("voucher = ?", voucher)
	if ownID != 0 {
		query = query.Where("id <> ?", ownID)
	}
	if err := query.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return conflict("invoice with voucher %q already exists", voucher)
	}
	return nil
}

func (s *InvoiceService) ensureParties(uow *UnitOfWork, customerID, storeID uint) error {
	var count int64
	if err := uow.tx.Model(&models.Customer{}).Where("id = ?", customerID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return notFound("customer %d not found", customerID)
	}
	if err := uow.tx.Model(&models.Store{}).Where("id = ?", storeID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return notFound("store %d not found", storeID)
	}
	return nil
}

func (s *InvoiceService) applyPatch(uow *UnitOfWork, invoice *models.Invoice, patch InvoicePatch) error {
	if patch.Voucher != nil {
		voucher, err := normalizeVoucher(*patch.Voucher)
		if err != nil {
			return err
		}
		if voucher != invoice.Voucher {
			if err := s.ensureVoucherAvailable(uow, voucher, invoice.ID); err != nil {
				return err
			}
			invoice.Voucher = voucher
		}
	}
	if patch.CustomerID != nil {
		invoice.CustomerID = *patch.CustomerID
	}
	if patch.StoreID != nil {
		invoice.StoreID = *patch.StoreID
	}
	if patch.Subtotal != nil {
		invoice.Subtotal = *patch.Subtotal
	}
	if patch.DiscountAmount != nil {
		invoice.DiscountAmount = *patch.DiscountAmount
	}
	if patch.DiscountType != nil {
		invoice.DiscountType = patch.DiscountType
	}
	if patch.TaxAmount != nil {
		invoice.TaxAmount = *patch.TaxAmount
	}
	if patch.TotalAmount != nil {
		invoice.TotalAmount = *patch.TotalAmount
	}
	if patch.PaidAmount != nil {
		invoice.PaidAmount = *patch.PaidAmount
	}
	if patch.Notes != nil {
		invoice.Notes = *patch.Notes
	}

	if err := validateInvoiceAmounts(invoice); err != nil {
		return err
	}
	if patch.CustomerID != nil || patch.StoreID != nil {
		return s.ensureParties(uow, invoice.CustomerID, invoice.StoreID)
	}
	return nil
}

// save writes the invoice row with a freshly derived payment status.
func (s *InvoiceService) save(uow *UnitOfWork, invoice *models.Invoice) error {
	invoice.PaymentStatus = DerivePaymentStatus(invoice.PaidAmount, invoice.TotalAmount)
	if err := uow.tx.Omit(clause.Associations).Save(invoice).Error; err != nil {
		return translateDBError(err, "invoice "+invoice.Voucher)
	}
	return nil
}

func (s *InvoiceService) addItems(uow *UnitOfWork, invoice *models.Invoice, items []models.InvoiceItem, reason string) error {
	invoiceID := invoice.ID
	for i := range items {
		item := &items[i]
		if item.ItemType == models.ItemProduct {
			product, err := s.stock.LockProduct(uow, item.ItemID)
			if err != nil {
				return err
			}
			if err := s.stock.Decrement(uow, product, item.Quantity, StockRef{Reason: reason, InvoiceID: &invoiceID}); err != nil {
				return err
			}
			if item.ItemName == nil {
				name := product.Name
				item.ItemName = &name
			}
		}
		item.InvoiceID = invoiceID
		if err := uow.tx.Create(item).Error; err != nil {
			return fmt.Errorf("create item %d of invoice %d: %w", i, invoiceID, err)
		}
	}
	invoice.Items = items
	return nil
}

func (s *InvoiceService) restoreStock(uow *UnitOfWork, invoiceID uint, items []models.InvoiceItem, reason string) error {
	for _, item := range items {
		if item.ItemType != models.ItemProduct {
			continue
		}
		product, err := s.stock.LockProduct(uow, item.ItemID)
		if errors.Is(err, ErrNotFound) {
			s.log.Debug("product gone, skipping restock",
				zap.Uint("invoice_id", invoiceID),
				zap.Uint("product_id", item.ItemID),
			)
			continue
		}
		if err != nil {
			return err
		}
		if err := s.stock.Increment(uow, product, item.Quantity, StockRef{Reason: reason, InvoiceID: &invoiceID}); err != nil {
			return err
		}
	}
	return nil
}
