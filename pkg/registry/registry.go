package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/lathe/pkg/domain"
	"github.com/aretw0/lathe/pkg/host"
)

// Handler implements one command action against the execution context.
// The result envelope (id, success/error folding) is the dispatcher's
// concern: handlers return a payload or an error and never see the id.
type Handler func(ctx context.Context, ec *host.Context, params map[string]any) (any, error)

// Registry is the action table the dispatcher routes through.
// It is assembled once at startup and read-only afterwards.
type Registry struct {
	mu      sync.RWMutex
	actions map[string]Handler
}

// New creates a new empty registry.
func New() *Registry {
	return &Registry{
		actions: make(map[string]Handler),
	}
}

// Register adds an action to the registry. Registering the same name twice
// is a startup configuration error, never a silent override.
func (r *Registry) Register(name string, h Handler) error {
	if name == "" {
		return fmt.Errorf("action name cannot be empty")
	}
	if h == nil {
		return fmt.Errorf("handler for %q cannot be nil", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.actions[name]; exists {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateAction, name)
	}
	r.actions[name] = h
	return nil
}

// Resolve looks up an action by name. Safe to call from the dispatch loop.
func (r *Registry) Resolve(name string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.actions[name]
	return h, ok
}

// Names returns all registered action names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.actions))
	for name := range r.actions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered actions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.actions)
}
