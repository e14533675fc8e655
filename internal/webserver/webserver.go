// Package webserver owns the Echo instance and its middleware chain. Route
// handlers live in adminapi (operator surface, JWT protected) and shopapi
// (storefront surface, optional shopper identity).
package webserver

import (
	"fmt"
	"net/http"

	"github.com/golang-jwt/jwt/v4"
	"github.com/gorilla/sessions"
	echosession "github.com/labstack/echo-contrib/session"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/pawshop/pawshop/internal/app"
)

const appCtxKey = "appctx"

var server *WebServer

type WebServer struct {
	root   *echo.Echo
	appctx app.AppContext
	api    *echo.Group
	shop   *echo.Group
}

// Init builds the web server around the application context. Call once at
// startup, before route registration.
func Init(ctx app.AppContext) *WebServer {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(requestLogger())
	e.Use(echosession.Middleware(sessions.NewCookieStore([]byte(ctx.Config().Web.JwtSecret))))
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(appCtxKey, ctx)
			return next(c)
		}
	})

	server = &WebServer{root: e, appctx: ctx}

	// operator surface: JWT required
	server.api = e.Group("/api", echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(ctx.Config().Web.JwtSecret),
	}))

	// storefront surface: shopper identity is optional
	server.shop = e.Group("/shop", shopperIdentity(ctx.Config().Web.JwtSecret))

	e.POST("/auth/login", operatorLogin)

	e.GET("/status", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{"status": "ok"})
	})

	return server
}

// Listen blocks serving HTTP on the configured address.
func Listen() error {
	cfg := server.appctx.Config().Web
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	zap.S().Infof("web server listening on %s", addr)
	return server.root.Start(addr)
}

func Shutdown() {
	if server != nil {
		_ = server.root.Close()
	}
}

// Instance exposes the echo engine (tests drive it with httptest).
func Instance() *echo.Echo {
	return server.root
}

func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			zap.L().Debug("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
			)
			return nil
		},
	})
}

// GetAppCtx returns the application context bound to the request.
func GetAppCtx(c echo.Context) app.AppContext {
	return c.Get(appCtxKey).(app.AppContext)
}

// ApiGET registers an operator API route
func ApiGET(path string, h echo.HandlerFunc) {
	server.api.GET(path, h)
}

func ApiPOST(path string, h echo.HandlerFunc) {
	server.api.POST(path, h)
}

func ApiPUT(path string, h echo.HandlerFunc) {
	server.api.PUT(path, h)
}

func ApiPATCH(path string, h echo.HandlerFunc) {
	server.api.PATCH(path, h)
}

func ApiDELETE(path string, h echo.HandlerFunc) {
	server.api.DELETE(path, h)
}

// ShopGET registers a storefront route
func ShopGET(path string, h echo.HandlerFunc) {
	server.shop.GET(path, h)
}

func ShopPOST(path string, h echo.HandlerFunc) {
	server.shop.POST(path, h)
}

func ShopPATCH(path string, h echo.HandlerFunc) {
	server.shop.PATCH(path, h)
}

func ShopDELETE(path string, h echo.HandlerFunc) {
	server.shop.DELETE(path, h)
}

// OperatorClaims are the JWT claims issued to admin operators.
type OperatorClaims struct {
	Uid      int64  `json:"uid"`
	Username string `json:"usr"`
	Level    string `json:"lvl"`
	jwt.RegisteredClaims
}

// GetOperator extracts the authenticated operator claims on /api routes.
func GetOperator(c echo.Context) *OperatorClaims {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return nil
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil
	}
	op := &OperatorClaims{}
	if v, ok := claims["uid"].(float64); ok {
		op.Uid = int64(v)
	}
	op.Username, _ = claims["usr"].(string)
	op.Level, _ = claims["lvl"].(string)
	return op
}
