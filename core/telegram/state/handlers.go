package state

import (
	"fmt"
	"sync"

	tele "gopkg.in/telebot.v4"
)

// Handler processes one update addressed to a flow step.
type Handler func(c tele.Context, conv *Conversation) error

type stepKey struct {
	flow Flow
	step Step
}

// Registry routes incoming text, photo and contact updates to the
// handler registered for the user's current flow position.
type Registry struct {
	mu       sync.RWMutex
	handlers map[stepKey]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[stepKey]Handler)}
}

// Register binds a handler to a flow step. Registering the same step
// twice is a wiring bug and panics at startup.
func (r *Registry) Register(flow Flow, step Step, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := stepKey{flow: flow, step: step}
	if _, dup := r.handlers[key]; dup {
		panic(fmt.Sprintf("state: duplicate handler for %s/%s", flow, step))
	}
	r.handlers[key] = h
}

// Lookup returns the handler for the conversation's current position.
func (r *Registry) Lookup(conv *Conversation) (Handler, bool) {
	if conv == nil || conv.Flow == FlowNone {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[stepKey{flow: conv.Flow, step: conv.Step}]
	return h, ok
}

// Dispatch routes the update to the registered step handler. It
// reports whether a handler consumed the update.
func (r *Registry) Dispatch(c tele.Context, conv *Conversation) (bool, error) {
	h, ok := r.Lookup(conv)
	if !ok {
		return false, nil
	}
	return true, h(c, conv)
}
