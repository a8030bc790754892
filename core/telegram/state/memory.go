package state

import (
	"context"
	"sync"
	"time"
)

// Manager stores per-user conversation state.
type Manager interface {
	// Get returns the user's conversation, creating an idle one when
	// absent. The returned value is live; mutate it under the flow
	// handler and it stays visible to subsequent updates.
	Get(userID int64) *Conversation
	// StartFlow replaces the user's conversation with a fresh one for
	// the given flow, abandoning any flow in progress.
	StartFlow(userID int64, flow Flow, step Step) *Conversation
	// End resets the user's conversation to idle, keeping the screen
	// history so "back" still works after a flow finishes.
	End(userID int64)
	// Drop removes the user's state entirely.
	Drop(userID int64)
}

// MemoryManager is the in-process Manager with TTL-based cleanup of
// abandoned conversations.
type MemoryManager struct {
	mu    sync.Mutex
	users map[int64]*Conversation
	ttl   time.Duration
}

// NewMemoryManager creates a manager that forgets conversations idle
// for longer than ttl (default 2h when ttl <= 0).
func NewMemoryManager(ttl time.Duration) *MemoryManager {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &MemoryManager{
		users: make(map[int64]*Conversation),
		ttl:   ttl,
	}
}

// Run sweeps expired conversations until ctx is cancelled.
func (m *MemoryManager) Run(ctx context.Context) {
	ticker := time.NewTicker(m.ttl / 4)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.sweep(time.Now())
		}
	}
}

func (m *MemoryManager) sweep(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, conv := range m.users {
		if now.Sub(conv.UpdatedAt) > m.ttl {
			delete(m.users, id)
		}
	}
}

func (m *MemoryManager) Get(userID int64) *Conversation {
	m.mu.Lock()
	defer m.mu.Unlock()
	if conv, ok := m.users[userID]; ok {
		return conv
	}
	conv := newConversation(FlowNone, StepNone)
	conv.FlowID = ""
	m.users[userID] = conv
	return conv
}

func (m *MemoryManager) StartFlow(userID int64, flow Flow, step Step) *Conversation {
	m.mu.Lock()
	defer m.mu.Unlock()
	conv := newConversation(flow, step)
	if prev, ok := m.users[userID]; ok {
		conv.history = prev.history
	}
	m.users[userID] = conv
	return conv
}

func (m *MemoryManager) End(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev, ok := m.users[userID]
	if !ok {
		return
	}
	conv := newConversation(FlowNone, StepNone)
	conv.FlowID = ""
	conv.history = prev.history
	m.users[userID] = conv
}

func (m *MemoryManager) Drop(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, userID)
}

// Len reports the number of tracked users, for metrics.
func (m *MemoryManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}
