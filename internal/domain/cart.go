package domain

// CartItem pairs a product snapshot with a quantity. The quantity is always
// kept within [1, Product.Stock] by the cart store.
type CartItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// Clone returns a value copy independent of the source, so catalog edits
// never reach items already captured in a cart or order.
func (i CartItem) Clone() CartItem {
	return CartItem{Product: i.Product.Clone(), Quantity: i.Quantity}
}

// CloneItems deep-copies a line-item slice.
func CloneItems(items []CartItem) []CartItem {
	out := make([]CartItem, len(items))
	for n, item := range items {
		out[n] = item.Clone()
	}
	return out
}

// Cart is an immutable snapshot of the session cart with its derived totals.
type Cart struct {
	Items    []CartItem `json:"items"`
	Subtotal float64    `json:"subtotal"`
	Shipping float64    `json:"shipping"`
	Tax      float64    `json:"tax"`
	Total    float64    `json:"total"`
}

// ItemCount is the sum of quantities across all line items.
func (c Cart) ItemCount() int {
	var n int
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}
