package engine

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cartwheel/internal/cart"
)

func TestActionQueue_EnqueueDequeue(t *testing.T) {
	q := newActionQueue()

	ok := q.Enqueue(dispatchEvent{action: cart.RemoveItem{VariantKey: "k1"}})
	require.True(t, ok, "enqueue should succeed")

	got, ok := q.TryDequeue()
	require.True(t, ok, "dequeue should succeed")
	assert.Equal(t, "REMOVE_ITEM", got.action.Kind())
}

func TestActionQueue_FIFO(t *testing.T) {
	q := newActionQueue()

	q.Enqueue(dispatchEvent{action: cart.Reset{}})
	q.Enqueue(dispatchEvent{action: cart.RemoveItem{VariantKey: "a"}})
	q.Enqueue(dispatchEvent{action: cart.SetDeliveryCharge{Amount: 0}})

	e1, ok := q.TryDequeue()
	require.True(t, ok)
	assert.Equal(t, "RESET", e1.action.Kind())

	e2, ok := q.TryDequeue()
	require.True(t, ok)
	assert.Equal(t, "REMOVE_ITEM", e2.action.Kind())

	e3, ok := q.TryDequeue()
	require.True(t, ok)
	assert.Equal(t, "SET_DELIVERY_CHARGE", e3.action.Kind())
}

func TestActionQueue_TryDequeue_Empty(t *testing.T) {
	q := newActionQueue()

	_, ok := q.TryDequeue()
	assert.False(t, ok, "dequeue from empty queue should return false")
}

func TestActionQueue_Enqueue_AfterClose(t *testing.T) {
	q := newActionQueue()
	q.Close()

	ok := q.Enqueue(dispatchEvent{action: cart.Reset{}})
	assert.False(t, ok, "enqueue after close should return false")
}

func TestActionQueue_Close_Idempotent(t *testing.T) {
	q := newActionQueue()
	q.Close()
	q.Close() // must not panic
}

func TestActionQueue_WaitSignalsOnEnqueue(t *testing.T) {
	q := newActionQueue()

	q.Enqueue(dispatchEvent{action: cart.Reset{}})

	select {
	case <-q.Wait():
	default:
		t.Fatal("expected signal after enqueue")
	}
}

func TestActionQueue_ConcurrentEnqueue(t *testing.T) {
	q := newActionQueue()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.Enqueue(dispatchEvent{action: cart.Reset{}})
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, q.Len())
}
