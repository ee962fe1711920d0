package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSalesReport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	wax := f.product(t, "Wax", 10)

	paid := f.input("INV-S1", productLine(wax.ID, 2, 50))
	paid.PaidAmount = 100
	_, err := f.invoices.Create(ctx, paid)
	require.NoError(t, err)

	open := f.input("INV-S2", serviceLine(3, 1, 100))
	open.PaidAmount = 40
	_, err = f.invoices.Create(ctx, open)
	require.NoError(t, err)

	report, err := NewReportService(f.db).Sales(ctx, f.store.ID, time.Now().UTC())
	require.NoError(t, err)

	assert.Equal(t, 200.0, report.Month.Invoiced)
	assert.Equal(t, 140.0, report.Month.Paid)
	assert.Equal(t, 100.0, report.Month.Growth)
	assert.Equal(t, 200.0, report.Quarter.Invoiced)

	assert.Equal(t, 2, report.QuickStats.TotalInvoices)
	assert.Equal(t, 1, report.QuickStats.PendingInvoices)
	assert.Equal(t, 60.0, report.QuickStats.Outstanding)
	assert.Equal(t, 100.0, report.QuickStats.AvgOrderValue)

	require.Len(t, report.TopItems, 2)
	var waxLine *ItemSummary
	for i := range report.TopItems {
		if report.TopItems[i].ItemID == wax.ID {
			waxLine = &report.TopItems[i]
		}
	}
	require.NotNil(t, waxLine)
	assert.Equal(t, "Wax", waxLine.Name)
	assert.Equal(t, 2, waxLine.Quantity)
}

func TestSalesReport_EmptyStore(t *testing.T) {
	f := newFixture(t)
	report, err := NewReportService(f.db).Sales(context.Background(), f.store.ID, time.Now().UTC())
	require.NoError(t, err)
	assert.Zero(t, report.Month.Invoiced)
	assert.Zero(t, report.Month.Growth)
	assert.Zero(t, report.QuickStats.TotalInvoices)
	assert.Empty(t, report.TopItems)
}

func TestGrowthPercentage(t *testing.T) {
	assert.Equal(t, 0.0, growthPercentage(0, 0))
	assert.Equal(t, 100.0, growthPercentage(50, 0))
	assert.Equal(t, 50.0, growthPercentage(150, 100))
	assert.Equal(t, -25.0, growthPercentage(75, 100))
}
