package order

import (
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/pkg/errors"

	"github.com/pawshop/pawshop/internal/cart"
	"github.com/pawshop/pawshop/internal/domain"
	"github.com/pawshop/pawshop/pkg/common"
)

// TopicCreated carries the domain.Order after a successful checkout.
const TopicCreated = "order.created"

// ErrEmptyCart is returned when checkout is attempted with no line items.
// The UI gates this too, but the factory must still guard it.
var ErrEmptyCart = errors.New("cannot create an order from an empty cart")

// Factory converts the session cart into immutable orders.
type Factory struct {
	cart    *cart.Store
	history *History
	bus     EventBus.Bus
}

func NewFactory(cartStore *cart.Store, history *History, bus EventBus.Bus) *Factory {
	return &Factory{cart: cartStore, history: history, bus: bus}
}

// CreateOrder snapshots the current cart plus the shipping address and
// payment method into a new order. userID 0 marks a guest order. The order
// is durably appended to the history before the cart is cleared.
func (f *Factory) CreateOrder(userID int64, address domain.Address, method domain.PaymentMethod, notes string) (*domain.Order, error) {
	snap := f.cart.Snapshot()
	if snap.IsEmpty() {
		return nil, ErrEmptyCart
	}

	now := time.Now()
	status := domain.OrderPending
	if method == domain.PaymentCOD {
		// cash on delivery needs no payment confirmation
		status = domain.OrderConfirmed
	}

	o := domain.Order{
		ID:              common.UUIDint64(),
		UserID:          userID,
		Items:           domain.CloneItems(snap.Items),
		ShippingAddress: address,
		PaymentMethod:   method,
		Status:          status,
		Subtotal:        snap.Subtotal,
		Shipping:        snap.Shipping,
		Tax:             snap.Tax,
		Total:           snap.Total,
		Notes:           notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	// record first, clear second: a crash in between leaves both the order
	// and the cart, never neither. AppendNext assigns the order number under
	// the history lock so concurrent checkouts get distinct numbers.
	o = f.history.AppendNext(o)
	f.cart.Clear()

	if f.bus != nil {
		f.bus.Publish(TopicCreated, cloneOrder(o))
	}
	return &o, nil
}
