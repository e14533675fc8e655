package shopapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/pawshop/pawshop/internal/domain"
	"github.com/pawshop/pawshop/internal/order"
	"github.com/pawshop/pawshop/internal/webserver"
)

func registerOrderRoutes() {
	webserver.ShopPOST("/orders", createOrder)
	webserver.ShopGET("/orders", listOrders)
	webserver.ShopGET("/orders/:number", getOrder)
}

type checkoutPayload struct {
	PaymentMethod string          `json:"payment_method" form:"payment_method"`
	Notes         string          `json:"notes" form:"notes"`
	Address       *domain.Address `json:"address"`
	AddressID     int64           `json:"address_id,string" form:"address_id"`
}

// createOrder turns the current cart into an order. Signed-in shoppers may
// reference a saved address by id or omit the address to use their default;
// guests must supply one inline.
func createOrder(c echo.Context) error {
	var payload checkoutPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse checkout request")
	}

	method := domain.PaymentMethod(strings.TrimSpace(payload.PaymentMethod))
	if !method.Valid() {
		return fail(c, http.StatusBadRequest, "INVALID_PAYMENT_METHOD", "Unknown payment method")
	}

	ctx := GetApp(c)
	userID := webserver.CurrentShopUserID(c)

	address, err := resolveAddress(c, userID, &payload)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ADDRESS", err.Error())
	}

	o, err := ctx.OrderFactory().CreateOrder(userID, *address, method, strings.TrimSpace(payload.Notes))
	if err != nil {
		if errors.Is(err, order.ErrEmptyCart) {
			return fail(c, http.StatusBadRequest, "EMPTY_CART", "Cannot place an order with an empty cart")
		}
		return fail(c, http.StatusInternalServerError, "ORDER_ERROR", "Failed to create order")
	}
	return ok(c, o)
}

func resolveAddress(c echo.Context, userID int64, payload *checkoutPayload) (*domain.Address, error) {
	if payload.Address != nil {
		addr := *payload.Address
		if strings.TrimSpace(addr.Recipient) == "" || strings.TrimSpace(addr.Street) == "" {
			return nil, errors.New("recipient and street are required")
		}
		return &addr, nil
	}

	if userID == 0 {
		return nil, errors.New("a shipping address is required")
	}

	var user domain.ShopUser
	if err := GetDB(c).Where("id = ?", userID).First(&user).Error; err != nil {
		return nil, errors.New("account not found")
	}
	if payload.AddressID != 0 {
		for i := range user.Addresses {
			if user.Addresses[i].ID == payload.AddressID {
				return &user.Addresses[i], nil
			}
		}
		return nil, errors.New("address not found")
	}
	if addr := user.DefaultAddress(); addr != nil {
		return addr, nil
	}
	return nil, errors.New("no saved address; supply one in the request")
}

// listOrders returns the caller's order history, newest last. Guests see the
// guest orders of this session store.
func listOrders(c echo.Context) error {
	ctx := GetApp(c)
	userID := webserver.CurrentShopUserID(c)
	return ok(c, ctx.Orders().ByUser(userID))
}

func getOrder(c echo.Context) error {
	number := c.Param("number")
	ctx := GetApp(c)
	o, found := ctx.Orders().ByNumber(number)
	if !found {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Order not found")
	}
	// an order is visible to its owner; guest orders are visible to guests
	if o.UserID != webserver.CurrentShopUserID(c) {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Order not found")
	}
	return ok(c, o)
}
