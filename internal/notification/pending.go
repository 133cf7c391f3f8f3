package notification

import (
	"context"
	"sync"
)

// PendingStore holds notifications for users with no live connection.
// Drain must return messages in append order and leave the queue empty
// in one step, so a reconnect never replays or races a concurrent
// append into a half-drained queue.
type PendingStore interface {
	Append(ctx context.Context, userID string, msg Message) error
	Drain(ctx context.Context, userID string) ([]Message, error)
}

// MemoryPending is the single-instance default.
type MemoryPending struct {
	mu     sync.Mutex
	queues map[string][]Message
}

func NewMemoryPending() *MemoryPending {
	return &MemoryPending{queues: make(map[string][]Message)}
}

func (m *MemoryPending) Append(_ context.Context, userID string, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queues[userID] = append(m.queues[userID], msg)
	return nil
}

func (m *MemoryPending) Drain(_ context.Context, userID string) ([]Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msgs := m.queues[userID]
	delete(m.queues, userID)
	return msgs, nil
}
