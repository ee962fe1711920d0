package routes

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"salonspa-backend/config"
	"salonspa-backend/controllers"
	"salonspa-backend/utils"
)

// Controllers groups the handlers mounted by SetupRouter.
type Controllers struct {
	Invoices *controllers.InvoiceController
	Bookings *controllers.BookingController
	Reports  *controllers.ReportController
}

func SetupRouter(cfg config.Config, log *zap.Logger, h Controllers) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
	}))

	r.Use(config.RequestLogger(log))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.Use(utils.AuthMiddleware(cfg.JWTSecret))
	{
		// Invoice routes
		invoices := api.Group("/invoices")
		{
			invoices.POST("", h.Invoices.CreateInvoice)
			invoices.GET("", h.Invoices.GetInvoices)
			invoices.GET("/:id", h.Invoices.GetInvoice)
			invoices.PATCH("/:id", h.Invoices.UpdateInvoice)
			invoices.PUT("/:id", h.Invoices.ReplaceInvoice)
			invoices.PATCH("/:id/payment", h.Invoices.UpdatePayment)
			invoices.DELETE("/:id", h.Invoices.DeleteInvoice)
		}

		// Booking routes
		bookings := api.Group("/bookings")
		{
			bookings.PATCH("/:id/status", h.Bookings.UpdateStatus)
			bookings.POST("/:id/invoice", h.Bookings.InvoiceBooking)
		}

		// Reports routes
		api.GET("/reports/sales", h.Reports.GetSalesReport)
	}

	return r
}
