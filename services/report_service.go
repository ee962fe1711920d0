package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"salonspa-backend/models"
)

// RevenueWindow is invoiced revenue over one period and its change against
// the period before.
type RevenueWindow struct {
	Invoiced float64 `json:"invoiced"`
	Paid     float64 `json:"paid"`
	Growth   float64 `json:"growth"`
}

type ItemSummary struct {
	ItemType models.ItemType `json:"itemType"`
	ItemID   uint            `json:"itemId"`
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Revenue  float64         `json:"revenue"`
}

type QuickStatistics struct {
	TotalInvoices   int     `json:"totalInvoices"`
	PendingInvoices int     `json:"pendingInvoices"`
	Outstanding     float64 `json:"outstanding"`
	AvgOrderValue   float64 `json:"avgOrderValue"`
}

type SalesReport struct {
	Month      RevenueWindow   `json:"month"`
	Quarter    RevenueWindow   `json:"quarter"`
	TopItems   []ItemSummary   `json:"topItems"`
	QuickStats QuickStatistics `json:"quickStats"`
}

// ReportService aggregates invoice data for a store.
type ReportService struct {
	db *gorm.DB
}

func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{db: db}
}

// Sales builds the report for the month and quarter containing now.
func (s *ReportService) Sales(ctx context.Context, storeID uint, now time.Time) (*SalesReport, error) {
	db := s.db.WithContext(ctx)
	year, month, _ := now.Date()
	firstOfMonth := time.Date(year, month, 1, 0, 0, 0, 0, now.Location())

	monthWindow, err := s.window(db, storeID, firstOfMonth, firstOfMonth.AddDate(0, 1, 0), firstOfMonth.AddDate(0, -1, 0))
	if err != nil {
		return nil, err
	}
	firstOfQuarter := quarterStart(now)
	quarterWindow, err := s.window(db, storeID, firstOfQuarter, firstOfQuarter.AddDate(0, 3, 0), firstOfQuarter.AddDate(0, -3, 0))
	if err != nil {
		return nil, err
	}

	topItems, err := s.topItems(db, storeID, firstOfMonth, firstOfMonth.AddDate(0, 1, 0), 5)
	if err != nil {
		return nil, err
	}
	stats, err := s.quickStatistics(db, storeID)
	if err != nil {
		return nil, err
	}

	return &SalesReport{
		Month:      monthWindow,
		Quarter:    quarterWindow,
		TopItems:   topItems,
		QuickStats: stats,
	}, nil
}

// window sums [start, end) and compares it with [prevStart, start).
func (s *ReportService) window(db *gorm.DB, storeID uint, start, end, prevStart time.Time) (RevenueWindow, error) {
	current, err := s.revenue(db, storeID, start, end)
	if err != nil {
		return RevenueWindow{}, err
	}
	previous, err := s.revenue(db, storeID, prevStart, start)
	if err != nil {
		return RevenueWindow{}, err
	}
	current.Growth = growthPercentage(current.Invoiced, previous.Invoiced)
	return current, nil
}

func (s *ReportService) revenue(db *gorm.DB, storeID uint, start, end time.Time) (RevenueWindow, error) {
	var w RevenueWindow
	err := db.Model(&models.Invoice{}).
		Select("COALESCE(SUM(total_amount), 0) AS invoiced, COALESCE(SUM(paid_amount), 0) AS paid").
		Where("store_id = ? AND created_at >= ? AND created_at < ?", storeID, start.UTC(), end.UTC()).
		Scan(&w).Error
	return w, err
}

func (s *ReportService) topItems(db *gorm.DB, storeID uint, start, end time.Time, limit int) ([]ItemSummary, error) {
	var items []ItemSummary
	err := db.Table("invoice_items").
		Select("invoice_items.item_type, invoice_items.item_id, COALESCE(MAX(invoice_items.item_name), '') AS name, " +
			"SUM(invoice_items.quantity) AS quantity, SUM(invoice_items.total_price) AS revenue").
		Joins("JOIN invoices ON invoices.id = invoice_items.invoice_id").
		Where("invoices.store_id = ? AND invoices.created_at >= ? AND invoices.created_at < ?", storeID, start.UTC(), end.UTC()).
		Group("invoice_items.item_type, invoice_items.item_id").
		Order("revenue DESC").
		Limit(limit).
		Scan(&items).Error
	return items, err
}

func (s *ReportService) quickStatistics(db *gorm.DB, storeID uint) (QuickStatistics, error) {
	var stats QuickStatistics

	var row struct {
		Total       int64
		Pending     int64
		Revenue     float64
		Outstanding float64
	}
	err := db.Model(&models.Invoice{}).
		Select("COUNT(*) AS total, "+
			"COALESCE(SUM(CASE WHEN payment_status = ? THEN 1 ELSE 0 END), 0) AS pending, "+
			"COALESCE(SUM(total_amount), 0) AS revenue, "+
			"COALESCE(SUM(total_amount - paid_amount), 0) AS outstanding", models.PaymentPending).
		Where("store_id = ?", storeID).
		Scan(&row).Error
	if err != nil {
		return stats, err
	}

	stats.TotalInvoices = int(row.Total)
	stats.PendingInvoices = int(row.Pending)
	stats.Outstanding = row.Outstanding
	if row.Total > 0 {
		stats.AvgOrderValue = row.Revenue / float64(row.Total)
	}
	return stats, nil
}

func quarterStart(date time.Time) time.Time {
	quarter := (int(date.Month()) - 1) / 3
	return time.Date(date.Year(), time.Month(quarter*3+1), 1, 0, 0, 0, 0, date.Location())
}

func growthPercentage(current, previous float64) float64 {
	if previous == 0 {
		if current == 0 {
			return 0
		}
		return 100
	}
	return ((current - previous) / previous) * 100
}
