package events

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeFenceStarted         EventType = "fence_started"
	EventTypeConvergenceHint      EventType = "convergence_hint"
	EventTypeMeanToMedianProgress EventType = "mean_to_median_progress"
	EventTypePopulationReady      EventType = "population_ready"
	EventTypeSearchProgress       EventType = "search_progress"
	EventTypeRunCompleted         EventType = "run_completed"
	EventTypeRunFailed            EventType = "run_failed"
	EventTypeRunPersisted         EventType = "run_persisted"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// Emitter accepts events
type Emitter interface {
	Emit(ctx context.Context, event Event)
}

type discard struct{}

func (discard) Emit(context.Context, Event) {}

// Discard is an emitter that drops every event
var Discard Emitter = discard{}

// FenceStartedEvent is emitted when population construction begins for a fence
type FenceStartedEvent struct {
	Fence            string
	Workers          int
	PopulationTarget int
}

func (e FenceStartedEvent) Type() EventType {
	return EventTypeFenceStarted
}

// ConvergenceHintEvent reports a generation loop running long. Direction is
// "RTP too low" when the below-target pool fills faster, otherwise "RTP too high".
type ConvergenceHintEvent struct {
	Fence      string
	Worker     int
	Iterations int
	Direction  string
}

func (e ConvergenceHintEvent) Type() EventType {
	return EventTypeConvergenceHint
}

// MeanToMedianProgressEvent reports repeated mean-to-median rejections
type MeanToMedianProgressEvent struct {
	Fence    string
	Worker   int
	Attempts int
	Ratio    float64
	Min      float64
	Max      float64
}

func (e MeanToMedianProgressEvent) Type() EventType {
	return EventTypeMeanToMedianProgress
}

// PopulationReadyEvent is emitted when a fence's candidate population is complete
type PopulationReadyEvent struct {
	Fence string
	Size  int
}

func (e PopulationReadyEvent) Type() EventType {
	return EventTypePopulationReady
}

// SearchProgressEvent reports full-solution search progress of one worker
type SearchProgressEvent struct {
	Worker   int
	Done     int
	Total    int
	Retained int
}

func (e SearchProgressEvent) Type() EventType {
	return EventTypeSearchProgress
}

// RunCompletedEvent is emitted after reports have been written
type RunCompletedEvent struct {
	RunID     string
	Game      string
	BetMode   string
	BestScore float64
	RTP       float64
	Retained  int
	Duration  time.Duration
}

func (e RunCompletedEvent) Type() EventType {
	return EventTypeRunCompleted
}

// RunFailedEvent is emitted when a run aborts
type RunFailedEvent struct {
	RunID   string
	Game    string
	BetMode string
	Error   string
}

func (e RunFailedEvent) Type() EventType {
	return EventTypeRunFailed
}

// RunPersistedEvent is emitted after a run's results are committed
type RunPersistedEvent struct {
	RunID     string
	Solutions int
	Weights   int
}

func (e RunPersistedEvent) Type() EventType {
	return EventTypeRunPersisted
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
	all      []Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// SubscribeAll adds a handler that receives every event
func (b *Bus) SubscribeAll(handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.all = append(b.all, handler)

	log.WithField("handlerCount", len(b.all)).Debug("Subscribed handler to all events")
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.handlers[event.Type()])+len(b.all))
	handlers = append(handlers, b.handlers[event.Type()]...)
	handlers = append(handlers, b.all...)
	b.mu.RUnlock()

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"handlerCount": len(handlers),
	}).Debug("Emitting event to handlers")

	// Call handlers asynchronously to avoid blocking the farm workers
	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// A transactional event bus for holding pending events coupled to the Unit of Work.
// Flushes to the underlying event bus.
type TransactionalBus struct {
	real    *Bus
	pending []Event // stashed until Flush
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	log.WithFields(log.Fields{
		"eventType":    e.Type(),
		"pendingCount": len(b.pending),
	}).Debug("Adding event to transactional bus pending queue")
	b.pending = append(b.pending, e)
}

// called after successful DB commit
func (b *TransactionalBus) Flush(ctx context.Context) error {
	log.WithField("pendingEventCount", len(b.pending)).Debug("Flushing pending events to main event bus")

	// Events are processed independently of the transaction lifecycle
	eventCtx := context.Background()

	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
	return nil
}

// called after db rollback or to clear state.
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
