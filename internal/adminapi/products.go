package adminapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/pawshop/pawshop/internal/domain"
	"github.com/pawshop/pawshop/internal/webserver"
)

type productPayload struct {
	Name          string   `json:"name"`
	Slug          string   `json:"slug"`
	Description   string   `json:"description"`
	Price         float64  `json:"price"`
	OriginalPrice *float64 `json:"original_price"`
	CategoryID    int64    `json:"category_id,string"`
	Image         string   `json:"image"`
	Stock         int      `json:"stock"`
	Tags          string   `json:"tags"`
	IsFeatured    bool     `json:"is_featured"`
	IsNew         bool     `json:"is_new"`
}

func (p *productPayload) validate() (string, bool) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return "Name is required", false
	}
	if p.Price < 0 {
		return "Price must not be negative", false
	}
	if p.Stock < 0 {
		return "Stock must not be negative", false
	}
	return "", true
}

// registerProductRoutes registers catalog product CRUD endpoints
func registerProductRoutes() {
	webserver.ApiGET("/shop/products", listProducts)
	webserver.ApiGET("/shop/products/:id", getProduct)
	webserver.ApiPOST("/shop/products", createProduct)
	webserver.ApiPUT("/shop/products/:id", updateProduct)
	webserver.ApiDELETE("/shop/products/:id", deleteProduct)
}

func listProducts(c echo.Context) error {
	page, pageSize := parsePagination(c)

	q := strings.TrimSpace(c.QueryParam("q"))
	categoryID := strings.TrimSpace(c.QueryParam("category_id"))

	// whitelist allowed sort columns to avoid SQL injection
	allowed := map[string]string{
		"id":         "id",
		"name":       "name",
		"price":      "price",
		"stock":      "stock",
		"created_at": "created_at",
		"updated_at": "updated_at",
	}
	sortCol, okCol := allowed[strings.TrimSpace(c.QueryParam("sort"))]
	if !okCol {
		sortCol = "id"
	}
	order := strings.ToUpper(strings.TrimSpace(c.QueryParam("order")))
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}

	db := GetDB(c).Model(&domain.Product{})
	if q != "" {
		if strings.EqualFold(db.Name(), "postgres") {
			db = db.Where("name ILIKE ?", "%"+q+"%")
		} else {
			db = db.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(q)+"%")
		}
	}
	if categoryID != "" {
		if cid, err := strconv.ParseInt(categoryID, 10, 64); err == nil {
			db = db.Where("category_id = ?", cid)
		}
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}

	var rows []domain.Product
	if err := db.Order(sortCol + " " + order).Offset((page - 1) * pageSize).Limit(pageSize).Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}
	return paged(c, rows, total, page, pageSize)
}

func getProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	p, err := GetApp(c).Catalog().GetProduct(c.Request().Context(), id)
	if err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	}
	return ok(c, p)
}

func createProduct(c echo.Context) error {
	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", err.Error())
	}
	if msg, valid := payload.validate(); !valid {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", msg, nil)
	}

	p := domain.Product{
		Name:          payload.Name,
		Slug:          strings.TrimSpace(payload.Slug),
		Description:   payload.Description,
		Price:         payload.Price,
		OriginalPrice: payload.OriginalPrice,
		CategoryID:    payload.CategoryID,
		Image:         strings.TrimSpace(payload.Image),
		Stock:         payload.Stock,
		Tags:          payload.Tags,
		IsFeatured:    payload.IsFeatured,
		IsNew:         payload.IsNew,
	}
	if err := GetApp(c).Catalog().CreateProduct(c.Request().Context(), &p); err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create product", err.Error())
	}
	oprLog(c, "product_create", p.Name)
	return ok(c, p)
}

func updateProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	var existing domain.Product
	if err := GetDB(c).Where("id = ?", id).First(&existing).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	}

	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", err.Error())
	}
	if msg, valid := payload.validate(); !valid {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", msg, nil)
	}

	existing.Name = payload.Name
	existing.Slug = strings.TrimSpace(payload.Slug)
	existing.Description = payload.Description
	existing.Price = payload.Price
	existing.OriginalPrice = payload.OriginalPrice
	existing.CategoryID = payload.CategoryID
	existing.Image = strings.TrimSpace(payload.Image)
	existing.Stock = payload.Stock
	existing.Tags = payload.Tags
	existing.IsFeatured = payload.IsFeatured
	existing.IsNew = payload.IsNew

	if err := GetApp(c).Catalog().UpdateProduct(c.Request().Context(), &existing); err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update product", err.Error())
	}
	oprLog(c, "product_update", existing.Name)
	return ok(c, existing)
}

func deleteProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	if err := GetApp(c).Catalog().DeleteProduct(c.Request().Context(), id); err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	}
	oprLog(c, "product_delete", strconv.FormatInt(id, 10))
	return ok(c, map[string]interface{}{"id": id})
}
