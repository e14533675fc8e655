// Package cart owns the session cart. All mutations funnel through Store;
// every change is persisted to the blob store and announced on the event bus
// so consumers (metrics, UI pushes) react without the store knowing them.
package cart

import (
	"sync"

	"github.com/asaskevich/EventBus"
	"github.com/pawshop/pawshop/internal/domain"
	"github.com/pawshop/pawshop/internal/pricing"
	"github.com/pawshop/pawshop/internal/storage"
)

const (
	// StorageKey is the blob key holding the persisted line-item list.
	StorageKey = "shop_cart"

	// TopicChanged carries a domain.Cart snapshot after every mutation.
	TopicChanged = "cart.changed"
)

// RatesFunc supplies the pricing constants for derived totals. Reading them
// per computation keeps admin settings changes live.
type RatesFunc func() pricing.Rates

type Store struct {
	mu    sync.Mutex
	items []domain.CartItem
	blob  *storage.BlobStore
	bus   EventBus.Bus
	rates RatesFunc
}

// NewStore restores the persisted cart, falling back to empty on absence or
// corruption. blob and bus may be nil (tests, ephemeral sessions).
func NewStore(blob *storage.BlobStore, bus EventBus.Bus, rates RatesFunc) *Store {
	if rates == nil {
		rates = pricing.DefaultRates
	}
	s := &Store{blob: blob, bus: bus, rates: rates}
	if blob != nil {
		var items []domain.CartItem
		if blob.Load(StorageKey, &items) {
			for _, item := range items {
				if item.Quantity >= 1 {
					s.items = append(s.items, item)
				}
			}
		}
	}
	return s
}

func clampQuantity(quantity, stock int) int {
	if quantity < 1 {
		quantity = 1
	}
	if quantity > stock {
		quantity = stock
	}
	return quantity
}

// AddItem merges quantity into an existing line item for the product or
// appends a new one, clamped to [1, stock]. It never fails; a requested
// quantity beyond stock is silently clamped. Products with zero stock are
// not added, and an existing line item whose product ran out of stock is
// removed rather than kept at quantity zero.
func (s *Store) AddItem(product domain.Product, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity < 1 {
		quantity = 1
	}
	for i := range s.items {
		if s.items[i].Product.ID == product.ID {
			// clamp against the stock of the product as passed in, which is
			// fresher than the stored snapshot
			q := clampQuantity(s.items[i].Quantity+quantity, product.Stock)
			if q < 1 {
				s.items = append(s.items[:i], s.items[i+1:]...)
				s.commit()
				return
			}
			s.items[i].Quantity = q
			s.commit()
			return
		}
	}
	if product.Stock < 1 {
		return
	}
	s.items = append(s.items, domain.CartItem{
		Product:  product.Clone(),
		Quantity: clampQuantity(quantity, product.Stock),
	})
	s.commit()
}

// RemoveItem deletes the line item for productID; absent ids are a no-op.
func (s *Store) RemoveItem(productID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(productID)
}

func (s *Store) removeLocked(productID int64) {
	for i := range s.items {
		if s.items[i].Product.ID == productID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			s.commit()
			return
		}
	}
}

// UpdateQuantity sets the quantity for an existing line item, clamped to
// [1, stock]. A quantity of zero or less removes the item. Ids not in the
// cart are a no-op; UpdateQuantity never creates line items.
func (s *Store) UpdateQuantity(productID int64, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity <= 0 {
		s.removeLocked(productID)
		return
	}
	for i := range s.items {
		if s.items[i].Product.ID == productID {
			s.items[i].Quantity = clampQuantity(quantity, s.items[i].Product.Stock)
			s.commit()
			return
		}
	}
}

// Clear empties the cart unconditionally. The cart itself survives and can
// be repopulated.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.commit()
}

// commit persists the item list and publishes the new snapshot. Callers hold
// the lock. Persistence failures never surface here; the blob store logs and
// swallows them.
func (s *Store) commit() {
	if s.blob != nil {
		s.blob.Save(StorageKey, s.items)
	}
	if s.bus != nil {
		s.bus.Publish(TopicChanged, s.snapshotLocked())
	}
}

func (s *Store) snapshotLocked() domain.Cart {
	return s.rates().Quote(domain.CloneItems(s.items))
}

// Snapshot returns an immutable cart value with derived totals.
func (s *Store) Snapshot() domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Items returns a deep copy of the line items in insertion order.
func (s *Store) Items() []domain.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.CloneItems(s.items)
}

// ItemCount is the sum of quantities across line items.
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int
	for _, item := range s.items {
		n += item.Quantity
	}
	return n
}

func (s *Store) Subtotal() float64 {
	return s.Snapshot().Subtotal
}

func (s *Store) Shipping() float64 {
	return s.Snapshot().Shipping
}

func (s *Store) Tax() float64 {
	return s.Snapshot().Tax
}

func (s *Store) Total() float64 {
	return s.Snapshot().Total
}

func (s *Store) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items) == 0
}

func (s *Store) IsInCart(productID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.items {
		if item.Product.ID == productID {
			return true
		}
	}
	return false
}

// GetItem returns a copy of the line item for productID.
func (s *Store) GetItem(productID int64) (domain.CartItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.items {
		if item.Product.ID == productID {
			return item.Clone(), true
		}
	}
	return domain.CartItem{}, false
}
