package adminapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/pawshop/pawshop/internal/catalog"
	"github.com/pawshop/pawshop/internal/domain"
	"github.com/pawshop/pawshop/internal/webserver"
)

type categoryPayload struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Icon        string `json:"icon"`
}

func registerCategoryRoutes() {
	webserver.ApiGET("/shop/categories", listCategories)
	webserver.ApiPOST("/shop/categories", createCategory)
	webserver.ApiPUT("/shop/categories/:id", updateCategory)
	webserver.ApiDELETE("/shop/categories/:id", deleteCategory)
}

func listCategories(c echo.Context) error {
	var rows []domain.Category
	if err := GetDB(c).Order("name ASC").Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query categories", err.Error())
	}
	return ok(c, rows)
}

func createCategory(c echo.Context) error {
	var payload categoryPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse category", err.Error())
	}
	payload.Name = strings.TrimSpace(payload.Name)
	if payload.Name == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Name is required", nil)
	}

	cat := domain.Category{
		Name:        payload.Name,
		Slug:        strings.TrimSpace(payload.Slug),
		Description: payload.Description,
		Image:       strings.TrimSpace(payload.Image),
		Icon:        strings.TrimSpace(payload.Icon),
	}
	if err := GetApp(c).Catalog().CreateCategory(c.Request().Context(), &cat); err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create category", err.Error())
	}
	oprLog(c, "category_create", cat.Name)
	return ok(c, cat)
}

func updateCategory(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid category ID", nil)
	}
	var payload categoryPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse category", err.Error())
	}
	payload.Name = strings.TrimSpace(payload.Name)
	if payload.Name == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Name is required", nil)
	}

	cat := domain.Category{
		ID:          id,
		Name:        payload.Name,
		Slug:        strings.TrimSpace(payload.Slug),
		Description: payload.Description,
		Image:       strings.TrimSpace(payload.Image),
		Icon:        strings.TrimSpace(payload.Icon),
	}
	if err := GetApp(c).Catalog().UpdateCategory(c.Request().Context(), &cat); err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Category not found", err.Error())
	}
	oprLog(c, "category_update", cat.Name)
	return ok(c, cat)
}

// deleteCategory refuses to remove a category that still has products; the
// service returns a ValidationError with a user-facing message.
func deleteCategory(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid category ID", nil)
	}
	if err := GetApp(c).Catalog().DeleteCategory(c.Request().Context(), id); err != nil {
		if verr, isValidation := err.(*catalog.ValidationError); isValidation {
			return fail(c, http.StatusConflict, "CATEGORY_NOT_EMPTY", verr.Message, nil)
		}
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete category", err.Error())
	}
	oprLog(c, "category_delete", strconv.FormatInt(id, 10))
	return ok(c, map[string]interface{}{"id": id})
}
