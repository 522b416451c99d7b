// Package events fans platform events out to attached handlers.
package events

import (
	"sort"
	"sync"

	"github.com/smallbiznis/telematch/internal/notification/domain"
)

// Listeners holds the handlers attached to each event kind.
type Listeners struct {
	mu       sync.RWMutex
	handlers map[domain.EventKind]map[uint64]domain.Handler
	nextID   uint64
}

func NewListeners() *Listeners {
	return &Listeners{handlers: make(map[domain.EventKind]map[uint64]domain.Handler)}
}

// Add attaches h to kind until the returned subscription is removed.
func (l *Listeners) Add(kind domain.EventKind, h domain.Handler) (domain.Subscription, error) {
	if !kind.Valid() {
		return nil, domain.ErrUnknownEventKind
	}
	if h == nil {
		return nil, domain.ErrNilHandler
	}

	l.mu.Lock()
	set := l.handlers[kind]
	if set == nil {
		set = make(map[uint64]domain.Handler)
		l.handlers[kind] = set
	}
	id := l.nextID
	l.nextID++
	set[id] = h
	l.mu.Unlock()

	return &subscription{listeners: l, kind: kind, id: id}, nil
}

// Dispatch calls every handler attached to ev.Kind when Dispatch began,
// in attach order, and reports how many ran.
func (l *Listeners) Dispatch(ev domain.Event) int {
	if l == nil {
		return 0
	}
	l.mu.RLock()
	set := l.handlers[ev.Kind]
	ids := make([]uint64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	handlers := make([]domain.Handler, 0, len(ids))
	for _, id := range ids {
		handlers = append(handlers, set[id])
	}
	l.mu.RUnlock()

	for _, h := range handlers {
		h(ev)
	}
	return len(handlers)
}

// Count returns the number of handlers attached to kind.
func (l *Listeners) Count(kind domain.EventKind) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.handlers[kind])
}

func (l *Listeners) remove(kind domain.EventKind, id uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	set := l.handlers[kind]
	if set == nil {
		return
	}
	delete(set, id)
	if len(set) == 0 {
		delete(l.handlers, kind)
	}
}

type subscription struct {
	listeners *Listeners
	kind      domain.EventKind
	id        uint64
	once      sync.Once
}

func (s *subscription) Remove() {
	if s == nil || s.listeners == nil {
		return
	}
	s.once.Do(func() {
		s.listeners.remove(s.kind, s.id)
	})
}
