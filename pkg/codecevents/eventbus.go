package codecevents

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/oarkflow/smpp-codec/internal/obslog"
	"github.com/oarkflow/smpp-codec/internal/slidingwindow"
)

// Handler reacts to a published Event. GetHandlerID distinguishes
// handlers for Subscribe/Unsubscribe bookkeeping.
type Handler interface {
	HandleEvent(ctx context.Context, event Event) error
	GetHandlerID() string
}

// BurstConfig bounds how many times, within Window, the same descriptor
// may publish the same EventType before further occurrences are
// suppressed. A batch run that keeps failing the same malformed
// descriptor would otherwise invoke every failure handler once per job;
// that's signal for the first few occurrences and noise after that.
type BurstConfig struct {
	Window           time.Duration
	MaxPerDescriptor int
}

// DefaultBurstConfig allows 5 occurrences of the same descriptor/event
// type pair per 10-second window before suppressing further dispatch.
func DefaultBurstConfig() BurstConfig {
	return BurstConfig{Window: 10 * time.Second, MaxPerDescriptor: 5}
}

// Bus is a thread-safe pub/sub event bus.
//
// Dispatch mode is decided per event, not only per bus: failure events
// (EventDecodeFailed, EventEncodeFailed) always dispatch synchronously,
// even on a bus built async for its higher-volume started/succeeded
// traffic, so a caller that publishes a failure and immediately checks
// a metrics counter or log sink sees it already updated when Publish
// returns. async only governs the lower-severity events.
//
// Once BurstConfig.MaxPerDescriptor is positive, a descriptor that
// republishes the same EventType more than that many times within
// BurstConfig.Window has further occurrences suppressed — the handlers
// simply aren't invoked — until the window rolls forward.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[EventType][]Handler
	logger      obslog.Logger
	async       bool
	burst       BurstConfig
	seen        map[string]*slidingwindow.Window
}

// NewBus builds an event bus with burst suppression disabled. A nil
// logger is replaced with a no-op.
func NewBus(logger obslog.Logger, async bool) *Bus {
	return NewBusWithBurstLimit(logger, async, BurstConfig{})
}

// NewBusWithBurstLimit builds an event bus that also suppresses handler
// dispatch for a descriptor/event-type pair once it recurs more than
// burst.MaxPerDescriptor times within burst.Window. A zero BurstConfig
// (MaxPerDescriptor <= 0) disables suppression entirely.
func NewBusWithBurstLimit(logger obslog.Logger, async bool, burst BurstConfig) *Bus {
	if logger == nil {
		logger = obslog.NoOp{}
	}
	return &Bus{
		subscribers: make(map[EventType][]Handler),
		logger:      logger,
		async:       async,
		burst:       burst,
		seen:        make(map[string]*slidingwindow.Window),
	}
}

// isFailureEvent reports whether t carries enough severity that its
// handlers must run before Publish returns, regardless of the bus's
// async setting.
func isFailureEvent(t EventType) bool {
	return t == EventDecodeFailed || t == EventEncodeFailed
}

// Subscribe registers handler for eventType. It is an error to subscribe
// the same handler ID twice for the same event type.
func (b *Bus) Subscribe(eventType EventType, handler Handler) error {
	if handler == nil {
		return fmt.Errorf("codecevents: handler cannot be nil")
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, h := range b.subscribers[eventType] {
		if h.GetHandlerID() == handler.GetHandlerID() {
			return fmt.Errorf("codecevents: handler %s already subscribed to %s", handler.GetHandlerID(), eventType)
		}
	}
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
	b.logger.Debug("handler subscribed", "handler_id", handler.GetHandlerID(), "event_type", eventType)
	return nil
}

// Unsubscribe removes handler from eventType's subscriber list.
func (b *Bus) Unsubscribe(eventType EventType, handler Handler) error {
	if handler == nil {
		return fmt.Errorf("codecevents: handler cannot be nil")
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	handlers := b.subscribers[eventType]
	for i, h := range handlers {
		if h.GetHandlerID() == handler.GetHandlerID() {
			b.subscribers[eventType] = append(handlers[:i], handlers[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("codecevents: handler %s not found for %s", handler.GetHandlerID(), eventType)
}

// Publish delivers event to every handler subscribed to its type,
// unless burst suppression has tripped for its descriptor.
func (b *Bus) Publish(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := append([]Handler(nil), b.subscribers[event.EventType()]...)
	b.mu.RUnlock()

	if len(handlers) == 0 {
		return
	}

	if b.suppressed(event) {
		b.logger.Debug("event suppressed by burst limit", "event_type", event.EventType())
		return
	}

	if b.async && !isFailureEvent(event.EventType()) {
		for _, h := range handlers {
			go b.dispatchSafely(ctx, h, event)
		}
		return
	}
	for _, h := range handlers {
		if err := b.dispatchSafely(ctx, h, event); err != nil {
			b.logger.Error("event handler failed", "handler_id", h.GetHandlerID(), "event_type", event.EventType(), "error", err)
		}
	}
}

// suppressed reports whether event's descriptor has already published
// its EventType burst.MaxPerDescriptor times within burst.Window, and
// records this occurrence if not.
func (b *Bus) suppressed(event Event) bool {
	if b.burst.MaxPerDescriptor <= 0 {
		return false
	}
	ce, ok := event.(*CodecEvent)
	if !ok || ce.DescriptorName == "" {
		return false
	}
	key := string(event.EventType()) + "|" + ce.DescriptorName

	b.mu.Lock()
	w, exists := b.seen[key]
	if !exists {
		w = slidingwindow.New(b.burst.Window)
		b.seen[key] = w
	}
	b.mu.Unlock()

	return !w.TryAdmit(b.burst.MaxPerDescriptor)
}

func (b *Bus) dispatchSafely(ctx context.Context, h Handler, event Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("panic in event handler", "handler_id", h.GetHandlerID(), "event_type", event.EventType(), "panic", r)
			err = fmt.Errorf("codecevents: handler %s panicked: %v", h.GetHandlerID(), r)
		}
	}()
	return h.HandleEvent(ctx, event)
}

// SubscriberCount reports how many handlers are subscribed to eventType.
func (b *Bus) SubscriberCount(eventType EventType) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers[eventType])
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc struct {
	ID string
	Fn func(ctx context.Context, event Event) error
}

func (f *HandlerFunc) HandleEvent(ctx context.Context, event Event) error { return f.Fn(ctx, event) }
func (f *HandlerFunc) GetHandlerID() string                               { return f.ID }

// LoggingHandler logs every event it receives at info level.
type LoggingHandler struct {
	ID     string
	Logger obslog.Logger
}

func (h *LoggingHandler) HandleEvent(_ context.Context, event Event) error {
	ce, ok := event.(*CodecEvent)
	if !ok {
		h.Logger.Info("event received", "event_type", event.EventType())
		return nil
	}
	h.Logger.Info("codec event",
		"event_type", ce.Type,
		"descriptor", ce.DescriptorName,
		"job_id", ce.JobID,
		"duration_ms", ce.Duration.Milliseconds(),
		"error", ce.Err,
	)
	return nil
}

func (h *LoggingHandler) GetHandlerID() string { return h.ID }
