package events

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Handler reacts to a published event. The context is detached from the
// publisher's request scope.
type Handler func(ctx context.Context, ev Event)

// Bus dispatches events to subscribed handlers. Each delivery runs on its own
// goroutine so Publish never blocks on handler work.
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
	closed   bool

	inflight sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	logger   *zap.Logger
}

// NewBus creates an empty bus. A nil logger is replaced with a no-op logger.
func NewBus(logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Bus{
		handlers: make(map[EventType][]Handler),
		ctx:      ctx,
		cancel:   cancel,
		logger:   logger.Named("events"),
	}
}

// Subscribe registers h for events of type t.
func (b *Bus) Subscribe(t EventType, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[t] = append(b.handlers[t], h)
}

// Publish delivers ev to every handler subscribed to its type and returns
// without waiting for them. Events published after Close are dropped.
func (b *Bus) Publish(ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		b.logger.Debug("dropping event on closed bus", zap.String("type", string(ev.Type())))
		return
	}
	hs := b.handlers[ev.Type()]
	b.logger.Debug("publish", zap.String("type", string(ev.Type())), zap.Int("handlers", len(hs)))
	for _, h := range hs {
		b.inflight.Add(1)
		go func(h Handler) {
			defer b.inflight.Done()
			defer func() {
				if r := recover(); r != nil {
					b.logger.Error("event handler panicked", zap.String("type", string(ev.Type())), zap.Any("panic", r))
				}
			}()
			h(b.ctx, ev)
		}(h)
	}
}

// Wait blocks until every handler started so far has returned.
func (b *Bus) Wait() {
	b.inflight.Wait()
}

// Close stops accepting events, cancels the handler context and waits for
// in-flight handlers.
func (b *Bus) Close() {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	b.cancel()
	b.inflight.Wait()
}
