// internal/agent/events.go
package agent

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ZevCorp/iu-screenagent/internal/schemas"
)

// Event is one lifecycle notification published to UI collaborators.
type Event struct {
	ID        string
	Timestamp time.Time
	Phase     schemas.Phase
	Fields    map[string]any
}

// EventBus fans lifecycle events out to subscribers. Delivery is
// fire-and-forget: a subscriber whose buffer is full misses the event rather
// than stalling the action loop.
type EventBus struct {
	logger *zap.Logger

	mu          sync.RWMutex
	subscribers []chan Event
	bufferSize  int
	isShutdown  bool
}

// NewEventBus initializes the bus.
func NewEventBus(logger *zap.Logger, bufferSize int) *EventBus {
	if bufferSize <= 0 {
		bufferSize = 16
	}
	return &EventBus{
		logger:     logger.Named("event_bus"),
		bufferSize: bufferSize,
	}
}

// Publish delivers the event to every subscriber that has buffer room.
func (b *EventBus) Publish(evt Event) {
	if evt.ID == "" {
		evt.ID = uuid.New().String()
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.isShutdown {
		return
	}
	for _, ch := range b.subscribers {
		select {
		case ch <- evt:
		default:
			b.logger.Debug("Dropping event for slow subscriber",
				zap.String("phase", string(evt.Phase)))
		}
	}
}

// Subscribe returns a buffered event channel and a cancel function that
// removes the subscription and closes the channel.
func (b *EventBus) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, b.bufferSize)
	if b.isShutdown {
		close(ch)
		return ch, func() {}
	}
	b.subscribers = append(b.subscribers, ch)

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			for i, sub := range b.subscribers {
				if sub == ch {
					b.subscribers = append(b.subscribers[:i], b.subscribers[i+1:]...)
					break
				}
			}
			close(ch)
		})
	}
	return ch, cancel
}

// Shutdown closes every subscriber channel. Publish becomes a no-op.
func (b *EventBus) Shutdown() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.isShutdown {
		return
	}
	b.isShutdown = true
	for _, ch := range b.subscribers {
		close(ch)
	}
	b.subscribers = nil
}
