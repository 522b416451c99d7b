// Package navigation tracks where the app currently is.
package navigation

import (
	"sync"

	"go.uber.org/zap"
)

// Hook observes each navigation after it is recorded.
type Hook func(route string)

// Router records the current route and the navigation history.
type Router struct {
	mu      sync.Mutex
	current string
	history []string
	hook    Hook
	log     *zap.Logger
}

func NewRouter(log *zap.Logger) *Router {
	return &Router{log: log.Named("navigation")}
}

// OnNavigate replaces the hook. A nil hook disables it.
func (r *Router) OnNavigate(h Hook) {
	r.mu.Lock()
	r.hook = h
	r.mu.Unlock()
}

// NavigateTo moves to route. It never fails.
func (r *Router) NavigateTo(route string) {
	r.mu.Lock()
	from := r.current
	r.current = route
	r.history = append(r.history, route)
	hook := r.hook
	r.mu.Unlock()

	r.log.Info("navigate", zap.String("from", from), zap.String("to", route))
	if hook != nil {
		hook(route)
	}
}

func (r *Router) Current() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// History returns a copy of every route visited, oldest first.
func (r *Router) History() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.history))
	copy(out, r.history)
	return out
}
