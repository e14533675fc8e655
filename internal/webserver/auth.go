package webserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pawshop/pawshop/internal/domain"
	"github.com/pawshop/pawshop/pkg/common"
)

const shopUserIDKey = "shop_user_id"

type loginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// operatorLogin authenticates an admin operator and issues a JWT for the
// /api surface.
func operatorLogin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{"code": "INVALID_REQUEST", "message": "Unable to parse login request"})
	}

	ctx := GetAppCtx(c)
	var operator domain.SysOpr
	err := ctx.DB().Where("username = ?", strings.TrimSpace(req.Username)).First(&operator).Error
	if status, code, message := checkOperatorLogin(err, operator, req.Password); code != "" {
		return c.JSON(status, map[string]interface{}{"code": code, "message": message})
	}

	expires := time.Now().Add(24 * time.Hour)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"uid": operator.ID,
		"usr": operator.Username,
		"lvl": operator.Level,
		"exp": expires.Unix(),
	})
	signed, err := token.SignedString([]byte(ctx.Config().Web.JwtSecret))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{"code": "TOKEN_ERROR", "message": "Failed to sign token"})
	}

	ctx.DB().Model(&domain.SysOpr{}).Where("id = ?", operator.ID).Update("last_login", time.Now())
	ctx.DB().Create(&domain.SysOprLog{
		ID:        common.UUIDint64(),
		OprName:   operator.Username,
		OprIp:     c.RealIP(),
		OptAction: "login",
		OptDesc:   "operator login",
		OptTime:   time.Now(),
	})

	zap.L().Info("operator login", zap.String("username", operator.Username), zap.String("ip", c.RealIP()))
	return c.JSON(http.StatusOK, map[string]interface{}{
		"token":   signed,
		"expires": expires.Unix(),
	})
}

// checkOperatorLogin maps the account lookup result onto a login outcome.
// The password comparison only runs on a clean lookup, so a database failure
// surfaces as DATABASE_ERROR instead of being mistaken for bad credentials.
func checkOperatorLogin(err error, operator domain.SysOpr, password string) (status int, code, message string) {
	switch {
	case err == gorm.ErrRecordNotFound,
		err == nil && operator.Password != common.Sha256HashWithSalt(password, common.GetSecretSalt()):
		return http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password"
	case err != nil:
		return http.StatusInternalServerError, "DATABASE_ERROR", "Login failed"
	case !strings.EqualFold(operator.Status, common.ENABLED):
		return http.StatusForbidden, "ACCOUNT_DISABLED", "Account is disabled"
	}
	return http.StatusOK, "", ""
}

// IssueShopperToken signs a storefront JWT for a shop user.
func IssueShopperToken(secret string, userID int64) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"uid":  userID,
		"kind": "shopper",
		"exp":  time.Now().Add(30 * 24 * time.Hour).Unix(),
	})
	return token.SignedString([]byte(secret))
}

// shopperIdentity resolves an optional Bearer token on storefront routes.
// Requests without a valid token proceed as guests.
func shopperIdentity(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if strings.HasPrefix(header, "Bearer ") {
				raw := strings.TrimPrefix(header, "Bearer ")
				token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
					if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
						return nil, jwt.ErrSignatureInvalid
					}
					return []byte(secret), nil
				})
				if err == nil && token.Valid {
					if claims, ok := token.Claims.(jwt.MapClaims); ok {
						if kind, _ := claims["kind"].(string); kind == "shopper" {
							if uid, ok := claims["uid"].(float64); ok {
								c.Set(shopUserIDKey, int64(uid))
							}
						}
					}
				}
			}
			return next(c)
		}
	}
}

// CurrentShopUserID returns the authenticated shopper id, or 0 for guests.
func CurrentShopUserID(c echo.Context) int64 {
	if v, ok := c.Get(shopUserIDKey).(int64); ok {
		return v
	}
	return 0
}
