package adminapi

import (
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/montanaflynn/stats"

	"github.com/pawshop/pawshop/internal/app"
	"github.com/pawshop/pawshop/internal/domain"
	"github.com/pawshop/pawshop/internal/webserver"
	"github.com/pawshop/pawshop/pkg/metrics"
)

func registerDashboardRoutes() {
	webserver.ApiGET("/shop/dashboard", getDashboard)
	webserver.ApiGET("/shop/dashboard/metrics/:name", getMetricRange)
}

// getDashboard assembles the admin landing page numbers in one response.
func getDashboard(c echo.Context) error {
	ctx := GetApp(c)
	db := GetDB(c)

	var totalProducts, totalUsers int64
	if err := db.Model(&domain.Product{}).Count(&totalProducts).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}
	if err := db.Model(&domain.ShopUser{}).Count(&totalUsers).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query users", err.Error())
	}

	orders := ctx.Orders().All()
	var pending int64
	var revenue float64
	totals := make([]float64, 0, len(orders))
	for _, o := range orders {
		if o.Status == domain.OrderPending {
			pending++
		}
		if o.Status != domain.OrderCancelled {
			revenue += o.Total
			totals = append(totals, o.Total)
		}
	}

	// mean/median over non-cancelled order totals; zero when no orders yet
	meanTotal, _ := stats.Mean(totals)
	medianTotal, _ := stats.Median(totals)

	threshold := int(ctx.GetSettingsInt64Value(app.SettingsShop, app.CfgLowStockThreshold))
	if threshold <= 0 {
		threshold = 10
	}
	lowStock, err := ctx.Catalog().LowStockProducts(c.Request().Context(), threshold)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query low stock products", err.Error())
	}

	recent := orders
	sort.Slice(recent, func(i, j int) bool {
		return recent[i].CreatedAt.After(recent[j].CreatedAt)
	})
	if len(recent) > 5 {
		recent = recent[:5]
	}

	return ok(c, map[string]interface{}{
		"total_products":     totalProducts,
		"total_users":        totalUsers,
		"total_orders":       len(orders),
		"pending_orders":     pending,
		"revenue":            revenue,
		"mean_order_total":   meanTotal,
		"median_order_total": medianTotal,
		"low_stock_products": lowStock,
		"recent_orders":      recent,
	})
}

// getMetricRange returns the stored gauge samples for one metric, for the
// dashboard charts. Known names include system_cpuuse, system_memuse,
// shop_orders_total, shop_orders_pending and shop_revenue. Defaults to the
// last 24 hours when no range is given.
func getMetricRange(c echo.Context) error {
	name := c.Param("name")

	end := time.Now().Unix()
	start := end - 86400
	if v, err := strconv.ParseInt(c.QueryParam("start"), 10, 64); err == nil && v > 0 {
		start = v
	}
	if v, err := strconv.ParseInt(c.QueryParam("end"), 10, 64); err == nil && v > 0 {
		end = v
	}

	points, err := metrics.QueryRange(name, start, end)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "METRICS_ERROR", "Failed to query metric", err.Error())
	}
	return ok(c, points)
}
