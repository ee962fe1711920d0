package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"salonspa-backend/config"
	"salonspa-backend/controllers"
	"salonspa-backend/metrics"
	"salonspa-backend/routes"
	"salonspa-backend/services"
)

func main() {
	app := fx.New(
		fx.Provide(
			config.Load,
			config.NewLogger,
			provideDB,
			provideMetrics,

			services.NewStockLedger,
			services.NewInvoiceService,
			services.NewCustomerService,
			func(s *services.CustomerService) services.CustomerResolver { return s },
			services.NewNotifier,
			provideBookingInvoicer,
			services.NewBookingService,
			provideInvoiceSweeper,
			services.NewReportService,

			controllers.NewInvoiceController,
			controllers.NewBookingController,
			controllers.NewReportController,
			provideRouter,
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),
		fx.Invoke(runServer, runSweeper),
	)
	app.Run()
}

func provideDB(cfg config.Config, log *zap.Logger) (*gorm.DB, error) {
	db, err := config.ConnectDB(cfg, log)
	if err != nil {
		return nil, err
	}
	if err := config.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return db, nil
}

func provideMetrics(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) (*metrics.Metrics, error) {
	provider, shutdown, err := metrics.NewProvider(cfg, log)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{OnStop: shutdown})
	return metrics.New(provider)
}

func provideBookingInvoicer(cfg config.Config, invoices *services.InvoiceService, customers services.CustomerResolver,
	notifier services.Notifier, log *zap.Logger, m *metrics.Metrics) *services.BookingInvoicer {
	return services.NewBookingInvoicer(invoices, customers, notifier, log, m, cfg.TaxRate)
}

func provideInvoiceSweeper(cfg config.Config, db *gorm.DB, log *zap.Logger, invoicer *services.BookingInvoicer) *services.InvoiceSweeper {
	return services.NewInvoiceSweeper(db, log, invoicer, cfg.InvoiceSweepCron)
}

func provideRouter(cfg config.Config, log *zap.Logger, invoices *controllers.InvoiceController,
	bookings *controllers.BookingController, reports *controllers.ReportController) *gin.Engine {
	return routes.SetupRouter(cfg, log, routes.Controllers{
		Invoices: invoices,
		Bookings: bookings,
		Reports:  reports,
	})
}

func runServer(lc fx.Lifecycle, cfg config.Config, log *zap.Logger, r *gin.Engine) {
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			printRoutes(log, r)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", srv.Addr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

func runSweeper(lc fx.Lifecycle, sweeper *services.InvoiceSweeper) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error { return sweeper.Start() },
		OnStop:  sweeper.Stop,
	})
}

func printRoutes(log *zap.Logger, r *gin.Engine) {
	for _, route := range r.Routes() {
		log.Debug("route", zap.String("method", route.Method), zap.String("path", route.Path))
	}
}
