// Package bootstrap wires push notifications up once per app lifetime:
// permission, listeners, then registration.
package bootstrap

import (
	"context"
	"fmt"
	"sync"

	"github.com/smallbiznis/telematch/internal/notification/domain"
	"github.com/smallbiznis/telematch/internal/observability/metrics"
	"github.com/smallbiznis/telematch/pkg/telemetry"
	"go.uber.org/zap"
)

type state int

const (
	stateUninitialized state = iota
	stateStarting
	stateInitialized
)

func (s state) String() string {
	switch s {
	case stateStarting:
		return "starting"
	case stateInitialized:
		return "initialized"
	default:
		return "uninitialized"
	}
}

// Bootstrapper owns the single live set of notification listeners.
type Bootstrapper struct {
	platform  domain.Platform
	presenter domain.Presenter
	log       *zap.Logger
	metrics   *metrics.Metrics
	telemetry *telemetry.Metrics

	mu    sync.Mutex
	state state
	live  *Handle
}

func New(
	log *zap.Logger,
	platform domain.Platform,
	presenter domain.Presenter,
	m *metrics.Metrics,
	tm *telemetry.Metrics,
) *Bootstrapper {
	return &Bootstrapper{
		platform:  platform,
		presenter: presenter,
		log:       log.Named("notification.bootstrap"),
		metrics:   m,
		telemetry: tm,
	}
}

// Start requests permission, attaches the four listeners and, when
// permission was granted, asks the platform to register. Registration runs
// in the background; its result arrives through the listeners.
func (b *Bootstrapper) Start(ctx context.Context) (*Handle, error) {
	b.mu.Lock()
	if b.state != stateUninitialized {
		b.mu.Unlock()
		return nil, domain.ErrAlreadyStarted
	}
	b.state = stateStarting
	b.mu.Unlock()

	perm, permErr := b.platform.RequestPermission(ctx)
	if permErr != nil {
		b.log.Warn("permission request failed; continuing without registration", zap.Error(permErr))
		perm = domain.Permission{}
	}

	eventCtx := context.WithoutCancel(ctx)
	h := &Handle{
		owner:      b,
		permission: perm,
		done:       make(chan struct{}),
	}
	for _, kind := range domain.Kinds() {
		sub, err := b.platform.AddListener(kind, func(ev domain.Event) {
			b.handle(eventCtx, ev)
		})
		if err != nil {
			h.removeAll()
			b.reset()
			return nil, fmt.Errorf("attach %s listener: %w", kind, err)
		}
		h.subs = append(h.subs, sub)
	}

	label := perm.Receive
	if permErr != nil {
		label = "error"
	}
	b.telemetry.ObserveBootstrap(label)

	b.mu.Lock()
	b.state = stateInitialized
	b.live = h
	b.mu.Unlock()

	if !perm.Granted() {
		b.log.Info("push permission not granted; skipping registration",
			zap.String("permission", perm.Receive),
		)
		close(h.done)
		return h, nil
	}

	go func() {
		defer close(h.done)
		if err := b.platform.Register(eventCtx); err != nil {
			b.log.Error("push registration request failed", zap.Error(err))
		}
	}()
	return h, nil
}

func (b *Bootstrapper) handle(ctx context.Context, ev domain.Event) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("notification presenter panicked",
				zap.String("event_type", string(ev.Kind)),
				zap.Any("panic", r),
			)
		}
	}()

	b.metrics.RecordNotificationEvent(ctx, string(ev.Kind))
	b.telemetry.ObserveNotificationEvent(string(ev.Kind))
	b.presenter.Present(ctx, ev)
}

func (b *Bootstrapper) release(h *Handle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.live != h {
		return
	}
	b.live = nil
	b.state = stateUninitialized
}

func (b *Bootstrapper) reset() {
	b.mu.Lock()
	b.state = stateUninitialized
	b.live = nil
	b.mu.Unlock()
}

// Started reports whether a handle is live.
func (b *Bootstrapper) Started() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state == stateInitialized
}

// Handle is the disposal token for one Start.
type Handle struct {
	owner      *Bootstrapper
	permission domain.Permission
	subs       []domain.Subscription
	done       chan struct{}
	once       sync.Once
}

func (h *Handle) Permission() domain.Permission {
	return h.permission
}

// Registered is closed once the registration request has been issued, or
// immediately when permission was not granted.
func (h *Handle) Registered() <-chan struct{} {
	return h.done
}

// Close removes every listener attached by Start. It is safe to call more
// than once.
func (h *Handle) Close() {
	if h == nil {
		return
	}
	h.once.Do(func() {
		h.removeAll()
		h.owner.release(h)
		h.owner.log.Info("notification listeners removed")
	})
}

func (h *Handle) removeAll() {
	for _, sub := range h.subs {
		sub.Remove()
	}
	h.subs = nil
}
