package shopapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pawshop/pawshop/internal/domain"
	"github.com/pawshop/pawshop/internal/webserver"
	"github.com/pawshop/pawshop/pkg/common"
)

func registerAuthRoutes() {
	webserver.ShopPOST("/auth/register", registerShopper)
	webserver.ShopPOST("/auth/login", loginShopper)
	webserver.ShopGET("/profile", getProfile)
	webserver.ShopPOST("/profile/addresses", addAddress)
}

type registerPayload struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	Name     string `json:"name" form:"name"`
	Phone    string `json:"phone" form:"phone"`
}

func registerShopper(c echo.Context) error {
	var payload registerPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse registration")
	}
	payload.Email = strings.ToLower(strings.TrimSpace(payload.Email))
	if payload.Email == "" || !strings.Contains(payload.Email, "@") {
		return fail(c, http.StatusBadRequest, "INVALID_EMAIL", "A valid email is required")
	}
	if len(payload.Password) < 8 {
		return fail(c, http.StatusBadRequest, "WEAK_PASSWORD", "Password must be at least 8 characters")
	}

	db := GetDB(c)
	var existing domain.ShopUser
	if err := db.Where("email = ?", payload.Email).First(&existing).Error; err == nil {
		return fail(c, http.StatusConflict, "EMAIL_TAKEN", "An account with this email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "HASH_ERROR", "Failed to create account")
	}

	user := domain.ShopUser{
		ID:       common.UUIDint64(),
		Email:    payload.Email,
		Password: string(hash),
		Name:     strings.TrimSpace(payload.Name),
		Phone:    strings.TrimSpace(payload.Phone),
	}
	if err := db.Create(&user).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create account")
	}

	token, err := webserver.IssueShopperToken(GetApp(c).Config().Web.JwtSecret, user.ID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "TOKEN_ERROR", "Failed to sign token")
	}
	return ok(c, map[string]interface{}{"user": user, "token": token})
}

type shopperLoginPayload struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

func loginShopper(c echo.Context) error {
	var payload shopperLoginPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse login request")
	}

	var user domain.ShopUser
	err := GetDB(c).Where("email = ?", strings.ToLower(strings.TrimSpace(payload.Email))).First(&user).Error
	if err == gorm.ErrRecordNotFound ||
		(err == nil && bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(payload.Password)) != nil) {
		return fail(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
	}
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Login failed")
	}

	token, err := webserver.IssueShopperToken(GetApp(c).Config().Web.JwtSecret, user.ID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "TOKEN_ERROR", "Failed to sign token")
	}
	return ok(c, map[string]interface{}{"user": user, "token": token})
}

func getProfile(c echo.Context) error {
	userID := webserver.CurrentShopUserID(c)
	if userID == 0 {
		return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Sign in required")
	}
	var user domain.ShopUser
	if err := GetDB(c).Where("id = ?", userID).First(&user).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Account not found")
	}
	return ok(c, user)
}

// addAddress appends a shipping address to the profile. The first address, or
// one marked default, becomes the default used at checkout.
func addAddress(c echo.Context) error {
	userID := webserver.CurrentShopUserID(c)
	if userID == 0 {
		return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Sign in required")
	}

	var addr domain.Address
	if err := c.Bind(&addr); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse address")
	}
	if strings.TrimSpace(addr.Recipient) == "" || strings.TrimSpace(addr.Street) == "" {
		return fail(c, http.StatusBadRequest, "INVALID_ADDRESS", "Recipient and street are required")
	}

	db := GetDB(c)
	var user domain.ShopUser
	if err := db.Where("id = ?", userID).First(&user).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Account not found")
	}

	addr.ID = common.UUIDint64()
	if len(user.Addresses) == 0 {
		addr.IsDefault = true
	}
	if addr.IsDefault {
		for i := range user.Addresses {
			user.Addresses[i].IsDefault = false
		}
	}
	user.Addresses = append(user.Addresses, addr)
	user.UpdatedAt = time.Now()

	if err := db.Save(&user).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to save address")
	}
	return ok(c, user)
}
