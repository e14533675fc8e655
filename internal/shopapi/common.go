// Package shopapi exposes the customer-facing storefront REST surface. Routes
// live under /shop and work for guests; a shopper JWT attributes orders to an
// account.
package shopapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/pawshop/pawshop/internal/app"
	"github.com/pawshop/pawshop/internal/webserver"
)

// InitRouter registers every storefront route.
func InitRouter() {
	registerAuthRoutes()
	registerCatalogRoutes()
	registerCartRoutes()
	registerOrderRoutes()
}

func GetApp(c echo.Context) app.AppContext {
	return webserver.GetAppCtx(c)
}

func GetDB(c echo.Context) *gorm.DB {
	return webserver.GetAppCtx(c).DB()
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"code": 0,
		"data": data,
	})
}

func fail(c echo.Context, status int, code, message string) error {
	return c.JSON(status, map[string]interface{}{
		"code":    code,
		"message": message,
	})
}

func parseIDParam(c echo.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}
