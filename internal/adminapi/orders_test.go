package adminapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pawshop/pawshop/internal/app"
	"github.com/pawshop/pawshop/internal/domain"
	"github.com/pawshop/pawshop/internal/order"
)

type fakeAppCtx struct {
	app.AppContext
	history *order.History
}

func (f *fakeAppCtx) Orders() *order.History { return f.history }
func (f *fakeAppCtx) DB() *gorm.DB           { return nil }

func seedOrder(h *order.History, id int64, status domain.OrderStatus, createdAt time.Time) domain.Order {
	o := domain.Order{
		ID:            id,
		OrderNumber:   h.NextOrderNumber(createdAt),
		Status:        status,
		PaymentMethod: domain.PaymentCOD,
		ShippingAddress: domain.Address{
			Recipient: "Budi Santoso",
			City:      "Jakarta",
		},
		Items: []domain.CartItem{
			{Product: domain.Product{ID: 1, Name: "Dog Food", Price: 100000}, Quantity: 2},
		},
		Subtotal:  200000,
		Shipping:  25000,
		Total:     225000,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	h.Append(o)
	return o
}

func newAdminRequest(ctx *fakeAppCtx, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("appctx", ctx)
	return c, rec
}

func TestListOrdersFilterByStatus(t *testing.T) {
	ctx := &fakeAppCtx{history: order.NewHistory(nil)}
	seedOrder(ctx.history, 1, domain.OrderPending, time.Now())
	seedOrder(ctx.history, 2, domain.OrderShipped, time.Now())
	seedOrder(ctx.history, 3, domain.OrderPending, time.Now())

	c, rec := newAdminRequest(ctx, http.MethodGet, "/api/shop/orders?status=pending", "")
	require.NoError(t, listOrders(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total":2`)
	assert.NotContains(t, rec.Body.String(), "shipped")
}

func TestListOrdersDateRange(t *testing.T) {
	ctx := &fakeAppCtx{history: order.NewHistory(nil)}
	seedOrder(ctx.history, 1, domain.OrderPending, time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))
	seedOrder(ctx.history, 2, domain.OrderPending, time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC))

	c, rec := newAdminRequest(ctx, http.MethodGet,
		"/api/shop/orders?start=2026-08-10&end=2026-08-25", "")
	require.NoError(t, listOrders(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total":1`)
}

func TestListOrdersRejectsBadDate(t *testing.T) {
	ctx := &fakeAppCtx{history: order.NewHistory(nil)}

	c, rec := newAdminRequest(ctx, http.MethodGet, "/api/shop/orders?start=notadate", "")
	require.NoError(t, listOrders(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateOrderStatus(t *testing.T) {
	ctx := &fakeAppCtx{history: order.NewHistory(nil)}
	o := seedOrder(ctx.history, 1, domain.OrderPending, time.Now())

	c, rec := newAdminRequest(ctx, http.MethodPatch, "/api/shop/orders/1/status",
		`{"status":"shipped"}`)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, updateOrderStatus(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	got, found := ctx.history.ByID(o.ID)
	require.True(t, found)
	assert.Equal(t, domain.OrderShipped, got.Status)
}

func TestUpdateOrderStatusUnknownStatus(t *testing.T) {
	ctx := &fakeAppCtx{history: order.NewHistory(nil)}
	seedOrder(ctx.history, 1, domain.OrderPending, time.Now())

	c, rec := newAdminRequest(ctx, http.MethodPatch, "/api/shop/orders/1/status",
		`{"status":"lost"}`)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, updateOrderStatus(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	got, _ := ctx.history.ByID(1)
	assert.Equal(t, domain.OrderPending, got.Status)
}

func TestUpdateOrderStatusUnknownOrder(t *testing.T) {
	ctx := &fakeAppCtx{history: order.NewHistory(nil)}

	c, rec := newAdminRequest(ctx, http.MethodPatch, "/api/shop/orders/99/status",
		`{"status":"shipped"}`)
	c.SetParamNames("id")
	c.SetParamValues("99")
	require.NoError(t, updateOrderStatus(c))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExportOrdersCSV(t *testing.T) {
	ctx := &fakeAppCtx{history: order.NewHistory(nil)}
	o := seedOrder(ctx.history, 1, domain.OrderPending, time.Now())

	c, rec := newAdminRequest(ctx, http.MethodGet, "/api/shop/orders/export", "")
	require.NoError(t, exportOrders(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "text/csv")

	body := rec.Body.String()
	assert.Contains(t, body, "order_number")
	assert.Contains(t, body, o.OrderNumber)
	assert.Contains(t, body, "Jakarta")
	assert.Contains(t, body, "225000")
}

func TestGetOrderByID(t *testing.T) {
	ctx := &fakeAppCtx{history: order.NewHistory(nil)}
	o := seedOrder(ctx.history, 5, domain.OrderConfirmed, time.Now())

	c, rec := newAdminRequest(ctx, http.MethodGet, "/api/shop/orders/5", "")
	c.SetParamNames("id")
	c.SetParamValues("5")
	require.NoError(t, getOrder(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), o.OrderNumber)
}
