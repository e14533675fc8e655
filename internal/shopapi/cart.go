package shopapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pawshop/pawshop/internal/webserver"
)

func registerCartRoutes() {
	webserver.ShopGET("/cart", getCart)
	webserver.ShopPOST("/cart/items", addCartItem)
	webserver.ShopPATCH("/cart/items/:id", updateCartItem)
	webserver.ShopDELETE("/cart/items/:id", removeCartItem)
	webserver.ShopDELETE("/cart", clearCart)
}

// getCart returns the cart snapshot with derived totals.
func getCart(c echo.Context) error {
	return ok(c, GetApp(c).Cart().Snapshot())
}

type addItemPayload struct {
	ProductID int64 `json:"product_id,string" form:"product_id"`
	Quantity  int   `json:"quantity" form:"quantity"`
}

// addCartItem loads the product fresh from the catalog so stock clamping and
// the snapshotted price reflect the current state, then merges it into the
// cart.
func addCartItem(c echo.Context) error {
	var payload addItemPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse cart item")
	}
	if payload.ProductID == 0 {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "product_id is required")
	}
	if payload.Quantity < 1 {
		payload.Quantity = 1
	}

	ctx := GetApp(c)
	product, err := ctx.Catalog().GetProduct(c.Request().Context(), payload.ProductID)
	if err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found")
	}

	ctx.Cart().AddItem(*product, payload.Quantity)
	return ok(c, ctx.Cart().Snapshot())
}

type updateItemPayload struct {
	Quantity int `json:"quantity" form:"quantity"`
}

// updateCartItem sets a line item's quantity. Zero or negative removes the
// item; ids not in the cart are a no-op, matching the store semantics.
func updateCartItem(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID")
	}
	var payload updateItemPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse quantity")
	}

	ctx := GetApp(c)
	ctx.Cart().UpdateQuantity(id, payload.Quantity)
	return ok(c, ctx.Cart().Snapshot())
}

func removeCartItem(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID")
	}
	ctx := GetApp(c)
	ctx.Cart().RemoveItem(id)
	return ok(c, ctx.Cart().Snapshot())
}

func clearCart(c echo.Context) error {
	ctx := GetApp(c)
	ctx.Cart().Clear()
	return ok(c, ctx.Cart().Snapshot())
}
