package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestEventDeliveryIntegration tests the complete event flow from TransactionalBus to main Bus
func TestEventDeliveryIntegration(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	eventReceived := make(chan RunPersistedEvent, 1)
	mainBus.Subscribe(EventTypeRunPersisted, func(ctx context.Context, event Event) {
		if persisted, ok := event.(RunPersistedEvent); ok {
			eventReceived <- persisted
		} else {
			t.Errorf("Expected RunPersistedEvent, got %T", event)
		}
	})

	testEvent := RunPersistedEvent{RunID: "run-1", Solutions: 10, Weights: 2500}
	transactionalBus.Publish(testEvent)

	err := transactionalBus.Flush(context.Background())
	assert.NoError(t, err)

	select {
	case received := <-eventReceived:
		assert.Equal(t, testEvent, received)
	case <-time.After(2 * time.Second):
		t.Fatal("Event was not received within timeout")
	}
}

// TestSubscribeAll tests that wildcard handlers receive every event type
func TestSubscribeAll(t *testing.T) {
	bus := NewBus()

	var mu sync.Mutex
	var wg sync.WaitGroup
	received := make(map[EventType]int)
	wg.Add(3)
	bus.SubscribeAll(func(ctx context.Context, event Event) {
		defer wg.Done()
		mu.Lock()
		received[event.Type()]++
		mu.Unlock()
	})

	bus.Emit(context.Background(), FenceStartedEvent{Fence: "basegame", Workers: 4, PopulationTarget: 100})
	bus.Emit(context.Background(), ConvergenceHintEvent{Fence: "basegame", Direction: "RTP too low"})
	bus.Emit(context.Background(), SearchProgressEvent{Worker: 1, Done: 50, Total: 100})

	wg.Wait()
	assert.Equal(t, 1, received[EventTypeFenceStarted])
	assert.Equal(t, 1, received[EventTypeConvergenceHint])
	assert.Equal(t, 1, received[EventTypeSearchProgress])
}

// TestHandlerPanicIsRecovered tests that a panicking handler does not affect others
func TestHandlerPanicIsRecovered(t *testing.T) {
	bus := NewBus()

	done := make(chan struct{})
	bus.Subscribe(EventTypeRunFailed, func(ctx context.Context, event Event) {
		panic("boom")
	})
	bus.Subscribe(EventTypeRunFailed, func(ctx context.Context, event Event) {
		close(done)
	})

	bus.Emit(context.Background(), RunFailedEvent{RunID: "run-2", Error: "failed"})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Second handler was not called")
	}
}

// TestTransactionalBusDiscard tests that discarded events are not delivered
func TestTransactionalBusDiscard(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	eventReceived := make(chan bool, 1)
	mainBus.Subscribe(EventTypeRunPersisted, func(ctx context.Context, event Event) {
		eventReceived <- true
	})

	transactionalBus.Publish(RunPersistedEvent{RunID: "run-3"})

	// Discard instead of flush (simulating transaction rollback)
	transactionalBus.Discard()

	select {
	case <-eventReceived:
		t.Fatal("Event was received despite being discarded")
	case <-time.After(100 * time.Millisecond):
		// Expected - no event should be received
	}
}

func TestDiscardEmitter(t *testing.T) {
	assert.NotPanics(t, func() {
		Discard.Emit(context.Background(), RunCompletedEvent{RunID: "x"})
	})
}
