package marketplace

import (
	"context"
	"errors"
	"sync"
)

// MockNotifier records delivered events for tests.
type MockNotifier struct {
	// SimulateErrors makes every delivery fail.
	SimulateErrors bool

	// OnNotify overrides the default behaviour when set.
	OnNotify func(ctx context.Context, event ShipmentEvent) error

	mu     sync.Mutex
	events []ShipmentEvent
}

func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

func (n *MockNotifier) Notify(ctx context.Context, event ShipmentEvent) error {
	if n.OnNotify != nil {
		return n.OnNotify(ctx, event)
	}
	if n.SimulateErrors {
		return errors.New("simulated notification failure")
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return nil
}

// Events returns a copy of everything delivered so far.
func (n *MockNotifier) Events() []ShipmentEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]ShipmentEvent(nil), n.events...)
}

var _ Notifier = (*MockNotifier)(nil)
