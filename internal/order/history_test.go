package order

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/pawshop/pawshop/internal/domain"
	"github.com/pawshop/pawshop/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleOrder(id int64, userID int64) domain.Order {
	now := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	return domain.Order{
		ID:          id,
		OrderNumber: "PW-20260828-001",
		UserID:      userID,
		Items: []domain.CartItem{{
			Product:  domain.Product{ID: 1, Name: "kibble", Price: 100000, Stock: 5},
			Quantity: 2,
		}},
		ShippingAddress: domain.Address{City: "Jakarta Pusat"},
		PaymentMethod:   domain.PaymentCOD,
		Status:          domain.OrderConfirmed,
		Subtotal:        200000,
		Shipping:        25000,
		Total:           225000,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func TestHistory_LookupByIDAndNumber(t *testing.T) {
	h := NewHistory(nil)
	h.Append(sampleOrder(1, 7))

	byID, ok := h.ByID(1)
	require.True(t, ok)
	assert.Equal(t, "PW-20260828-001", byID.OrderNumber)

	byNum, ok := h.ByNumber("PW-20260828-001")
	require.True(t, ok)
	assert.Equal(t, int64(1), byNum.ID)

	_, ok = h.ByID(42)
	assert.False(t, ok)
	_, ok = h.ByNumber("PW-00000000-000")
	assert.False(t, ok)
}

func TestHistory_ByUser(t *testing.T) {
	h := NewHistory(nil)
	h.Append(sampleOrder(1, 7))
	h.Append(sampleOrder(2, 8))
	h.Append(sampleOrder(3, 7))

	mine := h.ByUser(7)
	require.Len(t, mine, 2)
	assert.Equal(t, int64(1), mine[0].ID)
	assert.Equal(t, int64(3), mine[1].ID)

	assert.Empty(t, h.ByUser(99))
}

func TestAppendNext_AssignsSequentialNumbers(t *testing.T) {
	h := NewHistory(nil)
	day := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)

	first := h.AppendNext(domain.Order{ID: 1, CreatedAt: day})
	second := h.AppendNext(domain.Order{ID: 2, CreatedAt: day})

	assert.Equal(t, "PW-20260828-001", first.OrderNumber)
	assert.Equal(t, "PW-20260828-002", second.OrderNumber)

	stored, ok := h.ByID(1)
	require.True(t, ok)
	assert.Equal(t, first.OrderNumber, stored.OrderNumber)
}

func TestAppendNext_ConcurrentAppendsGetDistinctNumbers(t *testing.T) {
	h := NewHistory(nil)
	day := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)

	const n = 32
	results := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			o := h.AppendNext(domain.Order{ID: id, CreatedAt: day})
			results <- o.OrderNumber
		}(int64(i + 1))
	}
	wg.Wait()
	close(results)

	seen := map[string]bool{}
	for number := range results {
		assert.False(t, seen[number], "order number %s assigned twice", number)
		seen[number] = true
	}
	assert.Len(t, seen, n)
	assert.Equal(t, n, h.Count())
}

func TestUpdateStatus_ChangesOnlyStatusAndUpdatedAt(t *testing.T) {
	h := NewHistory(nil)
	original := sampleOrder(1, 7)
	h.Append(original)

	updated, ok := h.UpdateStatus(1, domain.OrderShipped)
	require.True(t, ok)

	assert.Equal(t, domain.OrderShipped, updated.Status)
	assert.True(t, updated.UpdatedAt.After(original.UpdatedAt))

	// everything else is untouched
	updated.Status = original.Status
	updated.UpdatedAt = original.UpdatedAt
	assert.Equal(t, original, updated)
}

func TestUpdateStatus_UnknownOrderIsNoop(t *testing.T) {
	h := NewHistory(nil)
	h.Append(sampleOrder(1, 7))

	_, ok := h.UpdateStatus(42, domain.OrderShipped)
	assert.False(t, ok)

	o, _ := h.ByID(1)
	assert.Equal(t, domain.OrderConfirmed, o.Status)
}

func TestUpdateStatus_NoTransitionValidation(t *testing.T) {
	h := NewHistory(nil)
	o := sampleOrder(1, 7)
	o.Status = domain.OrderDelivered
	h.Append(o)

	// the data layer deliberately allows any status to follow any other,
	// terminal states included
	updated, ok := h.UpdateStatus(1, domain.OrderPending)
	require.True(t, ok)
	assert.Equal(t, domain.OrderPending, updated.Status)
}

func TestHistory_PersistenceRoundTrip(t *testing.T) {
	blob, err := storage.Open(filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = blob.Close() })

	h := NewHistory(blob)
	h.Append(sampleOrder(1, 7))
	_, ok := h.UpdateStatus(1, domain.OrderShipped)
	require.True(t, ok)

	restored := NewHistory(blob)
	o, ok := restored.ByID(1)
	require.True(t, ok)
	assert.Equal(t, domain.OrderShipped, o.Status)
	assert.Equal(t, 1, restored.Count())
}

func TestStatusMetadata(t *testing.T) {
	assert.Equal(t, "Pending Payment", domain.OrderPending.Label())
	assert.Equal(t, "Delivered", domain.OrderDelivered.Label())

	assert.Equal(t, domain.StatusClassActive, domain.OrderPending.Class())
	assert.Equal(t, domain.StatusClassActive, domain.OrderConfirmed.Class())
	assert.Equal(t, domain.StatusClassActive, domain.OrderProcessing.Class())
	assert.Equal(t, domain.StatusClassActive, domain.OrderShipped.Class())
	assert.Equal(t, domain.StatusClassCompleted, domain.OrderDelivered.Class())
	assert.Equal(t, domain.StatusClassCancelled, domain.OrderCancelled.Class())

	assert.True(t, domain.OrderDelivered.Terminal())
	assert.True(t, domain.OrderCancelled.Terminal())
	assert.False(t, domain.OrderShipped.Terminal())

	assert.True(t, domain.OrderStatus("shipped").Valid())
	assert.False(t, domain.OrderStatus("teleported").Valid())
}
