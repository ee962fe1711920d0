package services

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"salonspa-backend/models"
)

// lineTotalTolerance is the largest accepted gap between a supplied line
// total and unitPrice*quantity-discount.
var lineTotalTolerance = decimal.RequireFromString("0.01")

// InvoiceItemInput is one priced line as supplied by a caller.
type InvoiceItemInput struct {
	ItemType   models.ItemType
	ItemID     uint
	ItemName   *string
	StaffID    *uint
	Quantity   int
	UnitPrice  float64
	Discount   float64
	TotalPrice *float64 // computed when nil
}

// LineTotal returns unitPrice*quantity - discount rounded to cents.
func LineTotal(unitPrice float64, quantity int, discount float64) float64 {
	return lineGross(unitPrice, quantity).
		Sub(decimal.NewFromFloat(discount)).
		Round(2).
		InexactFloat64()
}

func lineGross(unitPrice float64, quantity int) decimal.Decimal {
	return decimal.NewFromFloat(unitPrice).Mul(decimal.NewFromInt(int64(quantity)))
}

// GrossSubtotal sums unitPrice*quantity over items, ignoring line discounts.
func GrossSubtotal(items []InvoiceItemInput) float64 {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(lineGross(item.UnitPrice, normalizedQuantity(item.Quantity)))
	}
	return sum.Round(2).InexactFloat64()
}

// ComputeTax applies rate to base and rounds to a whole unit.
func ComputeTax(base, rate float64) float64 {
	return decimal.NewFromFloat(base).Mul(decimal.NewFromFloat(rate)).Round(0).InexactFloat64()
}

// DerivePaymentStatus is the only source of an invoice's payment status.
func DerivePaymentStatus(paidAmount, totalAmount float64) models.PaymentStatus {
	if decimal.NewFromFloat(paidAmount).GreaterThanOrEqual(decimal.NewFromFloat(totalAmount)) {
		return models.PaymentPaid
	}
	return models.PaymentPending
}

// ParseDiscountType resolves a raw discount type. Empty means none.
func ParseDiscountType(raw *string) (*models.DiscountType, error) {
	if raw == nil {
		return nil, nil
	}
	value := strings.ToLower(strings.TrimSpace(*raw))
	if value == "" {
		return nil, nil
	}
	dt := models.DiscountType(value)
	if !dt.Valid() {
		return nil, invalidArgument("unknown discount type %q", *raw)
	}
	return &dt, nil
}

func normalizedQuantity(q int) int {
	if q == 0 {
		return 1
	}
	return q
}

func normalizeVoucher(raw string) (string, error) {
	voucher := strings.TrimSpace(raw)
	if voucher == "" {
		return "", invalidArgument("voucher is required")
	}
	if len(voucher) > models.VoucherMaxLength {
		return "", invalidArgument("voucher %q longer than %d characters", voucher, models.VoucherMaxLength)
	}
	return voucher, nil
}

// buildInvoiceItems validates every line before anything is persisted.
func buildInvoiceItems(inputs []InvoiceItemInput) ([]models.InvoiceItem, error) {
	items := make([]models.InvoiceItem, 0, len(inputs))
	for i, in := range inputs {
		item, err := buildInvoiceItem(in)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		items = append(items, item)
	}
	return items, nil
}

func buildInvoiceItem(in InvoiceItemInput) (models.InvoiceItem, error) {
	if !in.ItemType.Valid() {
		return models.InvoiceItem{}, invalidArgument("unknown item type %q", in.ItemType)
	}
	if in.ItemID == 0 {
		return models.InvoiceItem{}, invalidArgument("itemId is required")
	}
	quantity := normalizedQuantity(in.Quantity)
	if quantity < 1 {
		return models.InvoiceItem{}, invalidArgument("quantity must be at least 1")
	}
	if in.UnitPrice < 0 {
		return models.InvoiceItem{}, invalidArgument("unitPrice must not be negative")
	}
	if in.Discount < 0 {
		return models.InvoiceItem{}, invalidArgument("discount must not be negative")
	}

	expected := lineGross(in.UnitPrice, quantity).Sub(decimal.NewFromFloat(in.Discount))
	if expected.IsNegative() {
		return models.InvoiceItem{}, invalidArgument("discount %.2f exceeds line amount", in.Discount)
	}

	total := expected.Round(2)
	if in.TotalPrice != nil {
		supplied := decimal.NewFromFloat(*in.TotalPrice)
		if supplied.Sub(expected).Abs().GreaterThan(lineTotalTolerance) {
			return models.InvoiceItem{}, invalidArgument("totalPrice %.2f does not match unitPrice*quantity-discount %s",
				*in.TotalPrice, expected.StringFixed(2))
		}
		total = supplied
	}

	return models.InvoiceItem{
		ItemType:   in.ItemType,
		ItemID:     in.ItemID,
		ItemName:   in.ItemName,
		StaffID:    in.StaffID,
		Quantity:   quantity,
		UnitPrice:  in.UnitPrice,
		Discount:   in.Discount,
		TotalPrice: total.InexactFloat64(),
	}, nil
}

// validateInvoiceAmounts checks the aggregate before every write.
func validateInvoiceAmounts(inv *models.Invoice) error {
	if inv.CustomerID == 0 {
		return invalidArgument("customerId is required")
	}
	if inv.StoreID == 0 {
		return invalidArgument("storeId is required")
	}
	amounts := []struct {
		name  string
		value float64
	}{
		{"subtotal", inv.Subtotal},
		{"discountAmount", inv.DiscountAmount},
		{"taxAmount", inv.TaxAmount},
		{"totalAmount", inv.TotalAmount},
		{"paidAmount", inv.PaidAmount},
	}
	for _, a := range amounts {
		if a.value < 0 {
			return invalidArgument("%s must not be negative", a.name)
		}
	}
	if decimal.NewFromFloat(inv.PaidAmount).GreaterThan(decimal.NewFromFloat(inv.TotalAmount)) {
		return invalidArgument("paidAmount %.2f exceeds totalAmount %.2f", inv.PaidAmount, inv.TotalAmount)
	}
	if inv.DiscountType != nil && !inv.DiscountType.Valid() {
		return invalidArgument("unknown discount type %q", *inv.DiscountType)
	}
	return nil
}
