package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm/clause"

	"salonspa-backend/metrics"
	"salonspa-backend/models"
)

// StockRef ties a stock adjustment to what caused it.
type StockRef struct {
	Reason    string
	InvoiceID *uint
}

// StockLedger adjusts product stock. Every method requires an open unit of
// work; LockProduct must be called before Decrement or Increment.
type StockLedger struct {
	log     *zap.Logger
	metrics *metrics.Metrics
}

func NewStockLedger(log *zap.Logger, m *metrics.Metrics) *StockLedger {
	return &StockLedger{
		log:     log.Named("stock.ledger"),
		metrics: m,
	}
}

// LockProduct loads the product row with an exclusive lock held until the
// unit of work ends.
func (l *StockLedger) LockProduct(uow *UnitOfWork, id uint) (*models.Product, error) {
	var product models.Product
	if err := uow.tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&product, id).Error; err != nil {
		return nil, translateDBError(err, fmt.Sprintf("product %d", id))
	}
	return &product, nil
}

// Decrement takes qty units out of stock or fails with InsufficientStockError.
func (l *StockLedger) Decrement(uow *UnitOfWork, product *models.Product, qty int, ref StockRef) error {
	if qty <= 0 {
		return invalidArgument("stock decrement must be positive, got %d", qty)
	}
	if product.QuantityStock < qty {
		return &InsufficientStockError{
			ProductID:   product.ID,
			ProductName: product.Name,
			Available:   product.QuantityStock,
			Requested:   qty,
		}
	}
	return l.apply(uow, product, -qty, ref)
}

// Increment puts qty units back into stock.
func (l *StockLedger) Increment(uow *UnitOfWork, product *models.Product, qty int, ref StockRef) error {
	if qty <= 0 {
		return invalidArgument("stock increment must be positive, got %d", qty)
	}
	return l.apply(uow, product, qty, ref)
}

func (l *StockLedger) apply(uow *UnitOfWork, product *models.Product, delta int, ref StockRef) error {
	previous := product.QuantityStock
	next := previous + delta

	if err := uow.tx.Model(product).Update("quantity_stock", next).Error; err != nil {
		return fmt.Errorf("update stock of product %d: %w", product.ID, err)
	}
	product.QuantityStock = next

	movement := models.StockMovement{
		ProductID:   product.ID,
		Quantity:    delta,
		PreviousQty: previous,
		NewQty:      next,
		Reason:      ref.Reason,
		InvoiceID:   ref.InvoiceID,
	}
	if err := uow.tx.Create(&movement).Error; err != nil {
		return fmt.Errorf("record stock movement of product %d: %w", product.ID, err)
	}

	productID := product.ID
	uow.AfterCommit(func(ctx context.Context) {
		direction, qty := "in", delta
		if delta < 0 {
			direction, qty = "out", -delta
		}
		l.metrics.RecordStockMovement(ctx, direction, qty)
		l.log.Debug("stock adjusted",
			zap.Uint("product_id", productID),
			zap.Int("previous", previous),
			zap.Int("new", next),
			zap.String("reason", ref.Reason),
		)
	})
	return nil
}
