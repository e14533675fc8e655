// Package adminapi exposes the operator REST surface. Handlers follow one
// shape: bind, validate, act, respond with ok/fail/paged envelopes.
package adminapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/pawshop/pawshop/internal/app"
	"github.com/pawshop/pawshop/internal/domain"
	"github.com/pawshop/pawshop/internal/webserver"
	"github.com/pawshop/pawshop/pkg/common"
)

// InitRouter registers every admin API route.
func InitRouter() {
	registerProductRoutes()
	registerCategoryRoutes()
	registerOrderRoutes()
	registerDashboardRoutes()
	registerSettingsRoutes()
}

// GetApp returns the application context bound to the request
func GetApp(c echo.Context) app.AppContext {
	return webserver.GetAppCtx(c)
}

// GetDB returns the request-scoped database handle
func GetDB(c echo.Context) *gorm.DB {
	return webserver.GetAppCtx(c).DB()
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"code": 0,
		"data": data,
	})
}

func fail(c echo.Context, status int, code, message string, detail interface{}) error {
	return c.JSON(status, map[string]interface{}{
		"code":    code,
		"message": message,
		"detail":  detail,
	})
}

func paged(c echo.Context, rows interface{}, total int64, page, pageSize int) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"code":      0,
		"data":      rows,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

func parsePagination(c echo.Context) (page, pageSize int) {
	page = 1
	pageSize = 20
	if p, err := strconv.Atoi(c.QueryParam("page")); err == nil && p > 0 {
		page = p
	}
	if ps, err := strconv.Atoi(c.QueryParam("pageSize")); err == nil && ps > 0 && ps <= 500 {
		pageSize = ps
	}
	if ps, err := strconv.Atoi(c.QueryParam("perPage")); err == nil && ps > 0 && ps <= 500 {
		pageSize = ps
	}
	return page, pageSize
}

func parseIDParam(c echo.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}

// oprLog writes an operator audit entry; failures only get logged.
func oprLog(c echo.Context, action, desc string) {
	db := GetDB(c)
	if db == nil {
		return
	}
	op := webserver.GetOperator(c)
	name := "unknown"
	if op != nil {
		name = op.Username
	}
	db.Create(&domain.SysOprLog{
		ID:        common.UUIDint64(),
		OprName:   name,
		OprIp:     c.RealIP(),
		OptAction: action,
		OptDesc:   desc,
		OptTime:   time.Now(),
	})
}
