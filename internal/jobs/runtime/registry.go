package runtime

import (
	"fmt"
	"sync"
)

// Handler is one background pipeline. Type is the job_type it claims;
// Run owns the full lifecycle of the passed Context and reports its outcome
// through it rather than the returned error (the worker treats a non-nil
// error as a missed Fail and applies it as a safety net).
type Handler interface {
	Type() string
	Run(ctx *Context) error
}

// Registry maps job_type to the handler that executes it.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register rejects duplicates; two handlers claiming one job_type is a wiring
// bug, not a runtime condition.
func (r *Registry) Register(h Handler) error {
	if h == nil {
		return fmt.Errorf("nil handler")
	}
	t := h.Type()
	if t == "" {
		return fmt.Errorf("handler Type() is empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.handlers[t]; exists {
		return fmt.Errorf("handler already registered for job_type=%s", t)
	}
	r.handlers[t] = h
	return nil
}

func (r *Registry) Get(jobType string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[jobType]
	return h, ok
}
