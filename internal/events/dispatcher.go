package events

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// EventHandler handles a published event.
type EventHandler func(context.Context, Event) error

// Dispatcher interface allows event publication/subscription. Publish never
// returns a handler error to the caller; delivery is best-effort.
type Dispatcher interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType EventType, handler EventHandler)
}

// inMemoryDispatcher invokes handlers synchronously. Used in tests and as
// the base for the async variant.
type inMemoryDispatcher struct {
	mu        sync.RWMutex
	listeners map[EventType][]EventHandler
	logger    *zap.Logger
}

// NewInMemoryDispatcher creates a synchronous dispatcher.
func NewInMemoryDispatcher(logger *zap.Logger) Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &inMemoryDispatcher{
		listeners: make(map[EventType][]EventHandler),
		logger:    logger,
	}
}

// Publish invokes handlers for the given event. Handler errors are logged
// and swallowed; remaining handlers still run.
func (d *inMemoryDispatcher) Publish(ctx context.Context, event Event) error {
	for _, handler := range d.handlers(event.Type) {
		d.run(ctx, handler, event)
	}
	return nil
}

// Subscribe registers a handler for the given event type.
func (d *inMemoryDispatcher) Subscribe(eventType EventType, handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[eventType] = append(d.listeners[eventType], handler)
}

func (d *inMemoryDispatcher) handlers(eventType EventType) []EventHandler {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]EventHandler{}, d.listeners[eventType]...)
}

func (d *inMemoryDispatcher) run(ctx context.Context, handler EventHandler, event Event) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("event handler panic",
				zap.String("event_type", string(event.Type)),
				zap.Any("panic", r))
		}
	}()
	if err := handler(ctx, event); err != nil {
		d.logger.Warn("event handler failed",
			zap.String("event_type", string(event.Type)),
			zap.String("booking_id", event.BookingID),
			zap.Error(err))
	}
}

// asyncDispatcher detaches delivery onto a goroutine so publishers never
// block on or observe handler outcomes.
type asyncDispatcher struct {
	inner *inMemoryDispatcher
}

// NewAsyncDispatcher creates a fire-and-forget dispatcher.
func NewAsyncDispatcher(logger *zap.Logger) Dispatcher {
	return &asyncDispatcher{
		inner: NewInMemoryDispatcher(logger).(*inMemoryDispatcher),
	}
}

// Publish schedules handler invocation and returns immediately. The request
// context may be cancelled once the response is written, so delivery runs
// against a detached context.
func (d *asyncDispatcher) Publish(_ context.Context, event Event) error {
	go func() {
		_ = d.inner.Publish(context.Background(), event)
	}()
	return nil
}

func (d *asyncDispatcher) Subscribe(eventType EventType, handler EventHandler) {
	d.inner.Subscribe(eventType, handler)
}
