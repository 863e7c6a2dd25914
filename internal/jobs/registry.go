package jobs

import (
	"context"
	"fmt"
	"sync"
)

// Handler executes one delivered job. Handlers must be idempotent: delivery
// is at-least-once and the fallback sweep can enact the same outcome first.
type Handler func(ctx context.Context, entityID uint) error

// Registry maps job kinds to handlers. Construct it once in the composition
// root and inject it into the queue; registering after consumers start is a
// programming error, as is registering a kind twice.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

func (r *Registry) Register(kind string, handler Handler) error {
	if kind == "" || handler == nil {
		return fmt.Errorf("jobs: invalid registration for kind %q", kind)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.handlers[kind]; ok {
		return fmt.Errorf("jobs: handler already registered for kind %q", kind)
	}
	r.handlers[kind] = handler
	return nil
}

func (r *Registry) handler(kind string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[kind]
	return h, ok
}
