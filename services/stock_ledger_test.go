package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salonspa-backend/models"
)

func TestStockLedger_DecrementAndIncrement(t *testing.T) {
	f := newFixture(t)
	wax := f.product(t, "Wax", 3)

	err := runInUnitOfWork(context.Background(), f.db, func(uow *UnitOfWork) error {
		p, err := f.stock.LockProduct(uow, wax.ID)
		if err != nil {
			return err
		}
		if err := f.stock.Decrement(uow, p, 3, StockRef{Reason: models.StockReasonInvoice}); err != nil {
			return err
		}
		return f.stock.Increment(uow, p, 1, StockRef{Reason: models.StockReasonInvoiceDelete})
	})
	require.NoError(t, err)

	assert.Equal(t, 1, f.stockOf(t, wax.ID))
	assert.Equal(t, int64(2), f.count(t, &models.StockMovement{}))
	assert.Equal(t, int64(4), f.counterTotal(t, "salon_stock_movements_total"))
}

func TestStockLedger_RollbackSkipsAfterCommitHooks(t *testing.T) {
	f := newFixture(t)
	wax := f.product(t, "Wax", 3)
	errBoom := errors.New("boom")

	err := runInUnitOfWork(context.Background(), f.db, func(uow *UnitOfWork) error {
		p, err := f.stock.LockProduct(uow, wax.ID)
		if err != nil {
			return err
		}
		if err := f.stock.Decrement(uow, p, 2, StockRef{Reason: models.StockReasonInvoice}); err != nil {
			return err
		}
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)

	assert.Equal(t, 3, f.stockOf(t, wax.ID))
	assert.Equal(t, int64(0), f.count(t, &models.StockMovement{}))
	assert.Equal(t, int64(0), f.counterTotal(t, "salon_stock_movements_total"))
}

func TestStockLedger_Errors(t *testing.T) {
	f := newFixture(t)
	wax := f.product(t, "Wax", 1)

	err := runInUnitOfWork(context.Background(), f.db, func(uow *UnitOfWork) error {
		_, err := f.stock.LockProduct(uow, 404)
		assert.ErrorIs(t, err, ErrNotFound)

		p, err := f.stock.LockProduct(uow, wax.ID)
		require.NoError(t, err)
		assert.ErrorIs(t, f.stock.Decrement(uow, p, 0, StockRef{}), ErrInvalidArgument)
		assert.ErrorIs(t, f.stock.Increment(uow, p, -1, StockRef{}), ErrInvalidArgument)
		assert.ErrorIs(t, f.stock.Decrement(uow, p, 2, StockRef{}), ErrInsufficientStock)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, f.stockOf(t, wax.ID))
}
