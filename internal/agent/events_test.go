// internal/agent/events_test.go
package agent

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ZevCorp/iu-screenagent/internal/schemas"
)

func TestEventBusDeliversToSubscribers(t *testing.T) {
	bus := NewEventBus(zap.NewNop(), 4)
	defer bus.Shutdown()

	ch, cancel := bus.Subscribe()
	defer cancel()

	bus.Publish(Event{Phase: schemas.PhaseStarting, Fields: map[string]any{"goal": "g"}})

	select {
	case evt := <-ch:
		assert.Equal(t, schemas.PhaseStarting, evt.Phase)
		assert.NotEmpty(t, evt.ID)
		assert.False(t, evt.Timestamp.IsZero())
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

func TestEventBusNeverBlocksOnSlowSubscriber(t *testing.T) {
	bus := NewEventBus(zap.NewNop(), 1)
	defer bus.Shutdown()

	_, cancel := bus.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		// Nobody drains the channel; extra events must be dropped.
		for i := 0; i < 100; i++ {
			bus.Publish(Event{Phase: schemas.PhaseAnalyzing})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber buffer")
	}
}

func TestEventBusCancelUnsubscribes(t *testing.T) {
	bus := NewEventBus(zap.NewNop(), 4)
	defer bus.Shutdown()

	ch, cancel := bus.Subscribe()
	cancel()

	_, open := <-ch
	assert.False(t, open, "cancel must close the subscriber channel")

	// Publishing after cancel must not panic.
	bus.Publish(Event{Phase: schemas.PhaseCompleted})
}

func TestEventBusShutdownClosesSubscribers(t *testing.T) {
	bus := NewEventBus(zap.NewNop(), 4)
	ch, cancel := bus.Subscribe()
	defer cancel()

	bus.Shutdown()

	_, open := <-ch
	require.False(t, open)

	// Publish and Subscribe after shutdown are no-ops.
	bus.Publish(Event{Phase: schemas.PhaseError})
	ch2, cancel2 := bus.Subscribe()
	defer cancel2()
	_, open = <-ch2
	assert.False(t, open)
}
