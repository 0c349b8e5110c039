package publisher

import (
	"context"
	"sync"
	"testing"
	"time"

	audit "onboard-gateway/pkg/platform/audit"
	"onboard-gateway/pkg/platform/audit/store/memory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublisher_SyncMode(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	clientID := uuid.NewString()
	err := pub.Emit(context.Background(), audit.Event{
		Subject: clientID,
		Action:  string(audit.EventEntryChosen),
	})
	require.NoError(t, err)

	events, err := store.ListBySubject(context.Background(), clientID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, string(audit.EventEntryChosen), events[0].Action)
}

func TestPublisher_AsyncDrainsOnClose(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(100))

	clientID := uuid.NewString()
	for range 10 {
		err := pub.Emit(context.Background(), audit.Event{
			Subject: clientID,
			Action:  string(audit.EventStepCompleted),
		})
		require.NoError(t, err)
	}

	pub.Close()

	events, err := store.ListBySubject(context.Background(), clientID)
	require.NoError(t, err)
	assert.Len(t, events, 10, "all events should be drained on close")
}

func TestPublisher_BufferFull_DropsEvent(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(1))
	defer pub.Close()

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = pub.Emit(context.Background(), audit.Event{Action: string(audit.EventStepCompleted)})
		}()
	}
	wg.Wait()

	// Emitted plus dropped never exceeds what was sent; the point is no panic
	// and no blocking.
	assert.GreaterOrEqual(t, pub.Dropped(), int64(0))
}

func TestPublisher_EmitAfterClose(t *testing.T) {
	pub := NewPublisher(memory.NewInMemoryStore(), WithAsyncBuffer(1))
	pub.Close()
	pub.Close()

	err := pub.Emit(context.Background(), audit.Event{Action: "x"})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestPublisher_CancelledContextAsync(t *testing.T) {
	pub := NewPublisher(memory.NewInMemoryStore(), WithAsyncBuffer(1))
	defer pub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := pub.Emit(ctx, audit.Event{Action: "x"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPublisher_FillsDefaults(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)

	before := time.Now()
	require.NoError(t, pub.Emit(context.Background(), audit.Event{
		Action: string(audit.EventPendingRegistrationCreated),
	}))
	after := time.Now()

	events, err := store.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)

	got := events[0]
	assert.NotEqual(t, uuid.Nil, got.ID)
	assert.Equal(t, audit.CategoryCompliance, got.Category)
	assert.False(t, got.Timestamp.Before(before), "timestamp should be >= before")
	assert.False(t, got.Timestamp.After(after), "timestamp should be <= after")
}

func TestPublisher_PreservesExistingTimestamp(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)

	customTime := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, pub.Emit(context.Background(), audit.Event{
		Action:    string(audit.EventStepCompleted),
		Timestamp: customTime,
	}))

	events, err := store.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, customTime, events[0].Timestamp)
}
