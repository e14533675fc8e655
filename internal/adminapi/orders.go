package adminapi

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/gocarina/gocsv"
	"github.com/labstack/echo/v4"

	"github.com/pawshop/pawshop/internal/domain"
	"github.com/pawshop/pawshop/internal/webserver"
)

func registerOrderRoutes() {
	webserver.ApiGET("/shop/orders", listOrders)
	webserver.ApiGET("/shop/orders/export", exportOrders)
	webserver.ApiGET("/shop/orders/:id", getOrder)
	webserver.ApiPATCH("/shop/orders/:id/status", updateOrderStatus)
}

// filterOrders applies the shared status / date-range query params. Date
// values accept anything dateparse understands (2026-08-28, 08/28/2026, unix).
func filterOrders(c echo.Context) ([]domain.Order, error) {
	orders := GetApp(c).Orders().All()

	status := strings.TrimSpace(c.QueryParam("status"))
	var from, to time.Time
	if raw := strings.TrimSpace(c.QueryParam("start")); raw != "" {
		t, err := dateparse.ParseAny(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid start date %q", raw)
		}
		from = t
	}
	if raw := strings.TrimSpace(c.QueryParam("end")); raw != "" {
		t, err := dateparse.ParseAny(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid end date %q", raw)
		}
		// end date is inclusive
		to = t.Add(24 * time.Hour)
	}

	out := orders[:0]
	for _, o := range orders {
		if status != "" && string(o.Status) != status {
			continue
		}
		if !from.IsZero() && o.CreatedAt.Before(from) {
			continue
		}
		if !to.IsZero() && !o.CreatedAt.Before(to) {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func listOrders(c echo.Context) error {
	page, pageSize := parsePagination(c)

	orders, err := filterOrders(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
	}

	// newest first for the admin table
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})

	total := int64(len(orders))
	start := (page - 1) * pageSize
	if start > len(orders) {
		start = len(orders)
	}
	end := start + pageSize
	if end > len(orders) {
		end = len(orders)
	}
	return paged(c, orders[start:end], total, page, pageSize)
}

func getOrder(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID", nil)
	}
	o, found := GetApp(c).Orders().ByID(id)
	if !found {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Order not found", nil)
	}
	return ok(c, o)
}

type orderStatusPayload struct {
	Status string `json:"status" form:"status"`
}

func updateOrderStatus(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID", nil)
	}
	var payload orderStatusPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse status", err.Error())
	}
	status := domain.OrderStatus(strings.TrimSpace(payload.Status))
	if !status.Valid() {
		return fail(c, http.StatusBadRequest, "INVALID_STATUS", "Unknown order status", payload.Status)
	}

	o, found := GetApp(c).Orders().UpdateStatus(id, status)
	if !found {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Order not found", nil)
	}
	oprLog(c, "order_status", fmt.Sprintf("%s -> %s", o.OrderNumber, status))
	return ok(c, o)
}

type orderCSVRow struct {
	OrderNumber   string  `csv:"order_number"`
	CreatedAt     string  `csv:"created_at"`
	Status        string  `csv:"status"`
	PaymentMethod string  `csv:"payment_method"`
	Recipient     string  `csv:"recipient"`
	City          string  `csv:"city"`
	ItemCount     int     `csv:"item_count"`
	Subtotal      float64 `csv:"subtotal"`
	Shipping      float64 `csv:"shipping"`
	Tax           float64 `csv:"tax"`
	Total         float64 `csv:"total"`
}

// exportOrders streams the filtered order list as CSV.
func exportOrders(c echo.Context) error {
	orders, err := filterOrders(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.Before(orders[j].CreatedAt)
	})

	rows := make([]orderCSVRow, 0, len(orders))
	for _, o := range orders {
		count := 0
		for _, item := range o.Items {
			count += item.Quantity
		}
		rows = append(rows, orderCSVRow{
			OrderNumber:   o.OrderNumber,
			CreatedAt:     o.CreatedAt.Format(time.RFC3339),
			Status:        string(o.Status),
			PaymentMethod: string(o.PaymentMethod),
			Recipient:     o.ShippingAddress.Recipient,
			City:          o.ShippingAddress.City,
			ItemCount:     count,
			Subtotal:      o.Subtotal,
			Shipping:      o.Shipping,
			Tax:           o.Tax,
			Total:         o.Total,
		})
	}

	data, err := gocsv.MarshalString(&rows)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "EXPORT_ERROR", "Failed to build CSV", err.Error())
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="orders.csv"`)
	return c.Blob(http.StatusOK, "text/csv", []byte(data))
}
