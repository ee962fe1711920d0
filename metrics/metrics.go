package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"

	"salonspa-backend/config"
)

const meterName = "salonspa-backend"

// Metrics exposes invoicing instruments. A nil *Metrics records nothing.
type Metrics struct {
	invoicesCreated        metric.Int64Counter
	invoiceFailures        metric.Int64Counter
	bookingInvoiceFailures metric.Int64Counter
	voucherFallbacks       metric.Int64Counter
	stockMovements         metric.Int64Counter
}

// NewProvider returns a noop provider unless metrics are enabled, in which
// case measurements are pushed over OTLP/gRPC.
func NewProvider(cfg config.Config, log *zap.Logger) (metric.MeterProvider, func(context.Context) error, error) {
	if !cfg.Metrics.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, func(context.Context) error { return nil }, nil
	}

	if cfg.Metrics.Protocol != "grpc" && cfg.Metrics.Protocol != "" {
		return nil, nil, fmt.Errorf("unsupported OTLP protocol %q", cfg.Metrics.Protocol)
	}
	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
	if cfg.Metrics.Endpoint != "" {
		opts = append(opts, otlpmetricgrpc.WithEndpoint(cfg.Metrics.Endpoint))
	}
	exporter, err := otlpmetricgrpc.New(context.Background(), opts...)
	if err != nil {
		return nil, nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	log.Info("metrics initialized", zap.String("endpoint", cfg.Metrics.Endpoint))
	return provider, provider.Shutdown, nil
}

// New creates the instruments on the given provider.
func New(provider metric.MeterProvider) (*Metrics, error) {
	meter := provider.Meter(meterName)

	invoicesCreated, err := meter.Int64Counter("salon_invoices_created_total")
	if err != nil {
		return nil, err
	}
	invoiceFailures, err := meter.Int64Counter("salon_invoice_failures_total")
	if err != nil {
		return nil, err
	}
	bookingInvoiceFailures, err := meter.Int64Counter("salon_booking_invoice_failures_total")
	if err != nil {
		return nil, err
	}
	voucherFallbacks, err := meter.Int64Counter("salon_voucher_fallback_total")
	if err != nil {
		return nil, err
	}
	stockMovements, err := meter.Int64Counter("salon_stock_movements_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		invoicesCreated:        invoicesCreated,
		invoiceFailures:        invoiceFailures,
		bookingInvoiceFailures: bookingInvoiceFailures,
		voucherFallbacks:       voucherFallbacks,
		stockMovements:         stockMovements,
	}, nil
}

// RecordInvoiceCreated counts a committed invoice; source is "direct" or "booking".
func (m *Metrics) RecordInvoiceCreated(ctx context.Context, source string) {
	if m == nil {
		return
	}
	m.invoicesCreated.Add(ctx, 1, metric.WithAttributes(attribute.String("source", strings.TrimSpace(source))))
}

// RecordInvoiceFailure counts a rolled-back invoice operation.
func (m *Metrics) RecordInvoiceFailure(ctx context.Context, op, reason string) {
	if m == nil {
		return
	}
	m.invoiceFailures.Add(ctx, 1, metric.WithAttributes(
		attribute.String("op", op),
		attribute.String("reason", reason),
	))
}

// RecordBookingInvoiceFailure counts a swallowed booking invoicing failure.
func (m *Metrics) RecordBookingInvoiceFailure(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	m.bookingInvoiceFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

// RecordVoucherFallback counts vouchers built without a usable booking date/time.
func (m *Metrics) RecordVoucherFallback(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	m.voucherFallbacks.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

// RecordStockMovement counts a stock adjustment; direction is "in" or "out".
func (m *Metrics) RecordStockMovement(ctx context.Context, direction string, qty int) {
	if m == nil {
		return
	}
	m.stockMovements.Add(ctx, int64(qty), metric.WithAttributes(attribute.String("direction", direction)))
}
