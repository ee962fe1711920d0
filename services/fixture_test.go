package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"salonspa-backend/config"
	"salonspa-backend/metrics"
	"salonspa-backend/models"
)

type fixture struct {
	db       *gorm.DB
	log      *zap.Logger
	reader   *sdkmetric.ManualReader
	metrics  *metrics.Metrics
	stock    *StockLedger
	invoices *InvoiceService
	store    models.Store
	customer models.Customer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := config.OpenSQLite("file::memory:")
	require.NoError(t, err)
	require.NoError(t, config.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	reader := sdkmetric.NewManualReader()
	m, err := metrics.New(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))
	require.NoError(t, err)

	log := zap.NewNop()
	stock := NewStockLedger(log, m)
	f := &fixture{
		db:       db,
		log:      log,
		reader:   reader,
		metrics:  m,
		stock:    stock,
		invoices: NewInvoiceService(db, log, stock, m),
		store:    models.Store{Name: "Downtown", IsActive: true},
	}
	require.NoError(t, db.Create(&f.store).Error)

	f.customer = models.Customer{StoreID: f.store.ID, Name: "Ana", Phone: "+15550001111", IsActive: true}
	require.NoError(t, db.Create(&f.customer).Error)
	return f
}

func (f *fixture) product(t *testing.T, name string, stock int) models.Product {
	t.Helper()
	p := models.Product{StoreID: f.store.ID, Name: name, Price: 25, QuantityStock: stock, IsActive: true}
	require.NoError(t, f.db.Create(&p).Error)
	return p
}

func (f *fixture) stockOf(t *testing.T, productID uint) int {
	t.Helper()
	var p models.Product
	require.NoError(t, f.db.First(&p, productID).Error)
	return p.QuantityStock
}

func (f *fixture) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Count(&n).Error)
	return n
}

// input returns a valid direct invoice for the fixture customer.
func (f *fixture) input(voucher string, items ...InvoiceItemInput) CreateInvoiceInput {
	return CreateInvoiceInput{
		Voucher:     voucher,
		CustomerID:  f.customer.ID,
		StoreID:     f.store.ID,
		Subtotal:    100,
		TotalAmount: 100,
		Items:       items,
	}
}

func productLine(id uint, qty int, unitPrice float64) InvoiceItemInput {
	return InvoiceItemInput{ItemType: models.ItemProduct, ItemID: id, Quantity: qty, UnitPrice: unitPrice}
}

func serviceLine(id uint, qty int, unitPrice float64) InvoiceItemInput {
	return InvoiceItemInput{ItemType: models.ItemService, ItemID: id, Quantity: qty, UnitPrice: unitPrice}
}

// counterTotal sums every data point of the named int64 counter.
func (f *fixture) counterTotal(t *testing.T, name string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, f.reader.Collect(context.Background(), &rm))

	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "metric %s is not an int64 sum", name)
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	return total
}

func ptr[T any](v T) *T {
	return &v
}
