package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"salonspa-backend/config"
	"salonspa-backend/controllers"
	"salonspa-backend/models"
	"salonspa-backend/routes"
	"salonspa-backend/services"
	"salonspa-backend/utils"
)

const testSecret = "test-secret"

type apiFixture struct {
	db       *gorm.DB
	router   *gin.Engine
	token    string
	userID   uuid.UUID
	store    models.Store
	customer models.Customer
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := config.OpenSQLite("file::memory:")
	require.NoError(t, err)
	require.NoError(t, config.AutoMigrate(db))

	log := zap.NewNop()
	stock := services.NewStockLedger(log, nil)
	invoices := services.NewInvoiceService(db, log, stock, nil)
	customers := services.NewCustomerService(db, log)
	invoicer := services.NewBookingInvoicer(invoices, customers, services.NewLogNotifier(db, log), log, nil, 0.08)
	bookings := services.NewBookingService(db, log, customers, invoicer)

	cfg := config.Config{JWTSecret: testSecret, CORSOrigins: []string{"http://localhost:3000"}}
	router := routes.SetupRouter(cfg, log, routes.Controllers{
		Invoices: controllers.NewInvoiceController(invoices, log),
		Bookings: controllers.NewBookingController(bookings, log),
		Reports:  controllers.NewReportController(services.NewReportService(db), log),
	})

	f := &apiFixture{db: db, router: router, userID: uuid.New()}
	f.store = models.Store{Name: "Uptown"}
	require.NoError(t, db.Create(&f.store).Error)
	f.customer = models.Customer{StoreID: f.store.ID, Name: "Bea", Phone: "+15550002222"}
	require.NoError(t, db.Create(&f.customer).Error)

	f.token, err = utils.GenerateToken(testSecret, f.userID.String(), f.store.ID, time.Hour)
	require.NoError(t, err)
	return f
}

func (f *apiFixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+f.token)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *apiFixture) product(t *testing.T, stock int) models.Product {
	t.Helper()
	p := models.Product{StoreID: f.store.ID, Name: "Conditioner", Price: 20, QuantityStock: stock}
	require.NoError(t, f.db.Create(&p).Error)
	return p
}

func (f *apiFixture) stockOf(t *testing.T, id uint) int {
	t.Helper()
	var p models.Product
	require.NoError(t, f.db.First(&p, id).Error)
	return p.QuantityStock
}

func (f *apiFixture) invoiceBody(voucher string, productID uint, qty int) gin.H {
	return gin.H{
		"voucher":     voucher,
		"customerId":  f.customer.ID,
		"subtotal":    float64(qty) * 20,
		"totalAmount": float64(qty) * 20,
		"items": []gin.H{
			{"itemType": "product", "itemId": productID, "quantity": qty, "unitPrice": 20},
		},
	}
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error
}

func TestInvoiceAPI_CreateAndDelete(t *testing.T) {
	f := newAPIFixture(t)
	p := f.product(t, 5)

	w := f.do(t, http.MethodPost, "/api/invoices", f.invoiceBody("INV-100", p.ID, 5))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var invoice models.Invoice
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &invoice))
	assert.Equal(t, f.store.ID, invoice.StoreID)
	require.NotNil(t, invoice.CreatedBy)
	assert.Equal(t, f.userID, *invoice.CreatedBy)
	assert.Equal(t, 0, f.stockOf(t, p.ID))

	w = f.do(t, http.MethodGet, fmt.Sprintf("/api/invoices/%d", invoice.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodDelete, fmt.Sprintf("/api/invoices/%d", invoice.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, f.stockOf(t, p.ID))

	w = f.do(t, http.MethodGet, fmt.Sprintf("/api/invoices/%d", invoice.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInvoiceAPI_ErrorMapping(t *testing.T) {
	f := newAPIFixture(t)
	p := f.product(t, 1)

	w := f.do(t, http.MethodPost, "/api/invoices", f.invoiceBody("INV-200", p.ID, 1))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = f.do(t, http.MethodPost, "/api/invoices", f.invoiceBody("INV-200", p.ID, 1))
	assert.Equal(t, http.StatusConflict, w.Code)

	w = f.do(t, http.MethodPost, "/api/invoices", f.invoiceBody("INV-201", p.ID, 1))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeError(t, w), "insufficient stock")

	body := f.invoiceBody("INV-202", p.ID, 1)
	body["discountType"] = "coupon"
	w = f.do(t, http.MethodPost, "/api/invoices", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPost, "/api/invoices", gin.H{"voucher": "INV-203"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodDelete, "/api/invoices/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInvoiceAPI_Payment(t *testing.T) {
	f := newAPIFixture(t)
	p := f.product(t, 3)

	w := f.do(t, http.MethodPost, "/api/invoices", f.invoiceBody("INV-300", p.ID, 2))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var invoice models.Invoice
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &invoice))
	path := fmt.Sprintf("/api/invoices/%d/payment", invoice.ID)

	w = f.do(t, http.MethodPatch, path, gin.H{"paidAmount": 41})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPatch, path, gin.H{"paidAmount": 40, "notes": "cash"})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &invoice))
	assert.Equal(t, models.PaymentPaid, invoice.PaymentStatus)
	assert.Equal(t, "cash", invoice.Notes)

	w = f.do(t, http.MethodPatch, path, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInvoiceAPI_UpdateAndReplace(t *testing.T) {
	f := newAPIFixture(t)
	p := f.product(t, 5)

	w := f.do(t, http.MethodPost, "/api/invoices", f.invoiceBody("INV-400", p.ID, 2))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var invoice models.Invoice
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &invoice))
	path := fmt.Sprintf("/api/invoices/%d", invoice.ID)

	w = f.do(t, http.MethodPatch, path, gin.H{"notes": "vip", "discountType": "percent"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &invoice))
	assert.Equal(t, "vip", invoice.Notes)
	require.NotNil(t, invoice.DiscountType)
	assert.Equal(t, models.DiscountPercent, *invoice.DiscountType)

	w = f.do(t, http.MethodPut, path, gin.H{
		"subtotal":    100,
		"totalAmount": 100,
		"items": []gin.H{
			{"itemType": "product", "itemId": p.ID, "quantity": 5, "unitPrice": 20},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &invoice))
	require.Len(t, invoice.Items, 1)
	assert.Equal(t, 5, invoice.Items[0].Quantity)
	assert.Equal(t, 0, f.stockOf(t, p.ID))

	w = f.do(t, http.MethodGet, fmt.Sprintf("/api/invoices?customerId=%d", f.customer.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []models.Invoice
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 1)
}

func TestBookingAPI_StatusAndInvoice(t *testing.T) {
	f := newAPIFixture(t)
	customerID := f.customer.ID
	newBooking := func() models.Booking {
		b := models.Booking{
			StoreID:     f.store.ID,
			CustomerID:  &customerID,
			BookingDate: "2025-06-01",
			StartTime:   "09:30",
			Status:      models.BookingConfirmed,
			PendingInvoiceItems: []models.PendingInvoiceItem{
				{ItemType: models.ItemService, ItemID: 1, Quantity: 2, UnitPrice: 100000},
			},
		}
		require.NoError(t, f.db.Create(&b).Error)
		return b
	}

	first := newBooking()
	w := f.do(t, http.MethodPatch, fmt.Sprintf("/api/bookings/%d/status", first.ID), gin.H{"status": "completed"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Booking models.Booking  `json:"booking"`
		Invoice *models.Invoice `json:"invoice"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, models.BookingCompleted, resp.Booking.Status)
	require.NotNil(t, resp.Invoice)
	assert.Equal(t, 216000.0, resp.Invoice.TotalAmount)
	assert.Equal(t, fmt.Sprintf("INV-%d-060120250930", first.ID), resp.Invoice.Voucher)

	w = f.do(t, http.MethodPatch, fmt.Sprintf("/api/bookings/%d/status", first.ID), gin.H{"status": "pending"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	second := newBooking()
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/bookings/%d/invoice", second.ID), http.NoBody)
	req.Header.Set("Authorization", "Bearer "+f.token)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	w = f.do(t, http.MethodPost, fmt.Sprintf("/api/bookings/%d/invoice", second.ID), gin.H{"notes": "again"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAPI_AuthAndHealth(t *testing.T) {
	f := newAPIFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/invoices", nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/invoices", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w = httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	w = httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = f.do(t, http.MethodGet, "/api/reports/sales", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
