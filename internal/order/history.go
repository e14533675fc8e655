// Package order turns carts into immutable orders and tracks their status
// lifecycle. The history is append-only: orders are never deleted, and only
// Status/UpdatedAt ever change after creation.
package order

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pawshop/pawshop/internal/domain"
	"github.com/pawshop/pawshop/internal/storage"
)

// StorageKey is the blob key holding the persisted order list.
const StorageKey = "shop_orders"

const orderNumberPrefix = "PW"

// History is the persisted order log. All reads return value copies.
type History struct {
	mu     sync.Mutex
	blob   *storage.BlobStore
	orders []domain.Order
}

// NewHistory restores the persisted order list; absent or corrupt data yields
// an empty history.
func NewHistory(blob *storage.BlobStore) *History {
	h := &History{blob: blob}
	if blob != nil {
		var orders []domain.Order
		if blob.Load(StorageKey, &orders) {
			h.orders = orders
		}
	}
	return h
}

// Append durably records the order. Called by the factory before the cart is
// cleared, so a failure between the two never loses cart contents without a
// recorded order.
func (h *History) Append(o domain.Order) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.orders = append(h.orders, o)
	h.persistLocked()
}

// AppendNext assigns the next per-day order number and appends under a single
// lock acquisition, so two concurrent checkouts can never observe the same
// sequence value. Returns the order with its number filled in.
func (h *History) AppendNext(o domain.Order) domain.Order {
	h.mu.Lock()
	defer h.mu.Unlock()
	o.OrderNumber = h.nextNumberLocked(o.CreatedAt)
	h.orders = append(h.orders, o)
	h.persistLocked()
	return o
}

func (h *History) persistLocked() {
	if h.blob != nil {
		h.blob.Save(StorageKey, h.orders)
	}
}

func cloneOrder(o domain.Order) domain.Order {
	cp := o
	cp.Items = domain.CloneItems(o.Items)
	return cp
}

// All returns every order, oldest first.
func (h *History) All() []domain.Order {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]domain.Order, len(h.orders))
	for i, o := range h.orders {
		out[i] = cloneOrder(o)
	}
	return out
}

func (h *History) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.orders)
}

// ByID returns the order with the given id.
func (h *History) ByID(id int64) (domain.Order, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, o := range h.orders {
		if o.ID == id {
			return cloneOrder(o), true
		}
	}
	return domain.Order{}, false
}

// ByNumber returns the order with the given human-readable number.
func (h *History) ByNumber(number string) (domain.Order, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, o := range h.orders {
		if o.OrderNumber == number {
			return cloneOrder(o), true
		}
	}
	return domain.Order{}, false
}

// ByUser returns the orders placed by userID, oldest first.
func (h *History) ByUser(userID int64) []domain.Order {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []domain.Order
	for _, o := range h.orders {
		if o.UserID == userID {
			out = append(out, cloneOrder(o))
		}
	}
	return out
}

// UpdateStatus overwrites the order's status and stamps UpdatedAt, then
// persists. No transition table is enforced: any status may follow any other,
// which keeps administrative corrections possible. Unknown ids are a no-op.
func (h *History) UpdateStatus(id int64, status domain.OrderStatus) (domain.Order, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i := range h.orders {
		if h.orders[i].ID == id {
			h.orders[i].Status = status
			h.orders[i].UpdatedAt = time.Now()
			h.persistLocked()
			return cloneOrder(h.orders[i]), true
		}
	}
	return domain.Order{}, false
}

// NextOrderNumber derives the customer-facing number for an order created at
// t: a date prefix plus a per-day sequence over the persisted history.
// Uniqueness within this store is sufficient; this is a single-tenant log.
// Checkout goes through AppendNext instead, which holds the lock across
// number derivation and append.
func (h *History) NextOrderNumber(t time.Time) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.nextNumberLocked(t)
}

func (h *History) nextNumberLocked(t time.Time) string {
	prefix := fmt.Sprintf("%s-%s-", orderNumberPrefix, t.Format("20060102"))
	seq := 1
	for _, o := range h.orders {
		if strings.HasPrefix(o.OrderNumber, prefix) {
			seq++
		}
	}
	return fmt.Sprintf("%s%03d", prefix, seq)
}
