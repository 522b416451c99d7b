// Package local is an in-process push platform. Permission answers come
// from configuration and device tokens are generated locally.
package local

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/smallbiznis/telematch/internal/config"
	"github.com/smallbiznis/telematch/internal/notification/domain"
	"github.com/smallbiznis/telematch/internal/notification/events"
	"go.uber.org/zap"
)

const errPermissionNotGranted = "push notification permission not granted"

// Platform implements domain.Platform without any remote service.
type Platform struct {
	permission string
	listeners  *events.Listeners
	log        *zap.Logger

	mu     sync.Mutex
	token  string
	closed bool
	wg     sync.WaitGroup
}

func NewFromConfig(log *zap.Logger, cfg config.Config) *Platform {
	return New(log, cfg.Notification.Permission)
}

func New(log *zap.Logger, permission string) *Platform {
	permission = strings.TrimSpace(permission)
	if permission == "" {
		permission = domain.PermissionPrompt
	}
	return &Platform{
		permission: permission,
		listeners:  events.NewListeners(),
		log:        log.Named("notification.local"),
	}
}

func (p *Platform) RequestPermission(ctx context.Context) (domain.Permission, error) {
	if err := ctx.Err(); err != nil {
		return domain.Permission{}, err
	}
	if p.isClosed() {
		return domain.Permission{}, domain.ErrPlatformClosed
	}
	return domain.Permission{Receive: p.permission}, nil
}

// Register issues a device token. The outcome arrives later as a
// registration or registrationError event.
func (p *Platform) Register(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return domain.ErrPlatformClosed
	}
	var ev domain.Event
	if p.permission != domain.PermissionGranted {
		ev = domain.Event{
			Kind:  domain.EventRegistrationError,
			Error: &domain.RegistrationError{Error: errPermissionNotGranted},
		}
	} else {
		if p.token == "" {
			p.token = uuid.NewString()
		}
		ev = domain.Event{
			Kind:  domain.EventRegistration,
			Token: &domain.Token{Value: p.token},
		}
	}
	p.wg.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.wg.Done()
		p.Deliver(ev)
	}()
	return nil
}

func (p *Platform) AddListener(kind domain.EventKind, h domain.Handler) (domain.Subscription, error) {
	return p.listeners.Add(kind, h)
}

// Deliver hands ev to the attached handlers and reports how many ran.
func (p *Platform) Deliver(ev domain.Event) int {
	n := p.listeners.Dispatch(ev)
	p.log.Debug("event delivered",
		zap.String("event_type", string(ev.Kind)),
		zap.Int("handlers", n),
	)
	return n
}

// Token returns the issued device token, if any.
func (p *Platform) Token() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.token
}

// Close stops accepting registrations and waits for pending deliveries.
func (p *Platform) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.wg.Wait()
	return nil
}

func (p *Platform) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}
