package shopapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/pawshop/pawshop/internal/domain"
	"github.com/pawshop/pawshop/internal/webserver"
)

func registerCatalogRoutes() {
	webserver.ShopGET("/products", browseProducts)
	webserver.ShopGET("/products/:slug", getProductBySlug)
	webserver.ShopGET("/categories", browseCategories)
}

// browseProducts lists catalog products for the storefront with category,
// featured and free-text filters. Out-of-stock items are included.
func browseProducts(c echo.Context) error {
	db := GetDB(c).Model(&domain.Product{})

	if q := strings.TrimSpace(c.QueryParam("q")); q != "" {
		db = db.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(q)+"%")
	}
	if raw := strings.TrimSpace(c.QueryParam("category_id")); raw != "" {
		if cid, err := strconv.ParseInt(raw, 10, 64); err == nil {
			db = db.Where("category_id = ?", cid)
		}
	}
	if c.QueryParam("featured") == "true" {
		db = db.Where("is_featured = ?", true)
	}
	if c.QueryParam("new") == "true" {
		db = db.Where("is_new = ?", true)
	}

	var rows []domain.Product
	if err := db.Order("created_at DESC").Limit(200).Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products")
	}
	return ok(c, rows)
}

func getProductBySlug(c echo.Context) error {
	slug := c.Param("slug")
	var p domain.Product
	if err := GetDB(c).Where("slug = ?", slug).First(&p).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found")
	}
	return ok(c, p)
}

func browseCategories(c echo.Context) error {
	var rows []domain.Category
	if err := GetDB(c).Order("name ASC").Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query categories")
	}
	return ok(c, rows)
}
