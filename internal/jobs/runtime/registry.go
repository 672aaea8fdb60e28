package runtime

import (
	"fmt"
	"sort"
	"sync"
)

// Handler executes one job type. Run reports its outcome through the
// Context (Progress, Fail, Succeed); a returned error is treated as a
// failure the handler did not record itself.
type Handler interface {
	Type() string
	Run(ctx *Context) error
}

// Registry maps job types to handlers. Registration happens during
// wiring, lookups happen from worker goroutines.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register rejects nil handlers, empty types and double registration.
func (r *Registry) Register(h Handler) error {
	if h == nil {
		return fmt.Errorf("nil handler")
	}
	jobType := h.Type()
	if jobType == "" {
		return fmt.Errorf("handler Type() is empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.handlers[jobType]; exists {
		return fmt.Errorf("handler already registered for job_type=%s", jobType)
	}
	r.handlers[jobType] = h
	return nil
}

func (r *Registry) Get(jobType string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[jobType]
	return h, ok
}

// Types lists the registered job types in sorted order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.handlers))
	for t := range r.handlers {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
