package events

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sqlpilot/cli/internal/models"
)

func TestBus_DeliversToSubscribers(t *testing.T) {
	b := NewBus(nil)
	defer b.Close()

	var mu sync.Mutex
	var got []models.ConnectionID
	for i := 0; i < 2; i++ {
		b.Subscribe(EventSelectionChanged, func(_ context.Context, ev Event) {
			sc, ok := ev.(SelectionChanged)
			require.True(t, ok)
			mu.Lock()
			got = append(got, sc.ID)
			mu.Unlock()
		})
	}

	b.Publish(SelectionChanged{ID: "7"})
	b.Wait()

	assert.Equal(t, []models.ConnectionID{"7", "7"}, got)
}

func TestBus_PublishDoesNotBlockOnHandler(t *testing.T) {
	b := NewBus(nil)
	release := make(chan struct{})
	var done atomic.Bool
	b.Subscribe(EventSelectionChanged, func(context.Context, Event) {
		<-release
		done.Store(true)
	})

	b.Publish(SelectionChanged{ID: "1"})
	assert.False(t, done.Load())

	close(release)
	b.Close()
	assert.True(t, done.Load())
}

func TestBus_PanickingHandlerIsContained(t *testing.T) {
	b := NewBus(nil)
	var calls atomic.Int32
	b.Subscribe(EventSelectionChanged, func(context.Context, Event) { panic("boom") })
	b.Subscribe(EventSelectionChanged, func(context.Context, Event) { calls.Add(1) })

	b.Publish(SelectionChanged{ID: "1"})
	b.Close()
	assert.Equal(t, int32(1), calls.Load())
}

func TestBus_DropsAfterClose(t *testing.T) {
	b := NewBus(nil)
	var calls atomic.Int32
	b.Subscribe(EventSelectionChanged, func(context.Context, Event) { calls.Add(1) })
	b.Close()

	b.Publish(SelectionChanged{ID: "1"})
	b.Wait()
	assert.Zero(t, calls.Load())
}

func TestBus_CloseCancelsHandlerContext(t *testing.T) {
	b := NewBus(nil)
	started := make(chan struct{})
	var ctxErr atomic.Value
	b.Subscribe(EventSelectionChanged, func(ctx context.Context, _ Event) {
		close(started)
		<-ctx.Done()
		ctxErr.Store(ctx.Err())
	})

	b.Publish(SelectionChanged{ID: "1"})
	<-started
	b.Close()
	assert.ErrorIs(t, ctxErr.Load().(error), context.Canceled)
}
