// Package socketio talks to a push gateway over Socket.IO.
package socketio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/smallbiznis/telematch/internal/notification/domain"
	"github.com/smallbiznis/telematch/internal/notification/events"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
	"go.uber.org/zap"
)

const (
	eventRequestPermissions = "requestPermissions"
	eventPermissions        = "permissions"
	eventRegister           = "register"

	defaultTimeout = 15 * time.Second
)

var ErrNotConnected = errors.New("push gateway not connected")

// Platform implements domain.Platform against a remote gateway. Every event
// channel is bound once on the socket and fanned out locally.
type Platform struct {
	io        *socket.Socket
	listeners *events.Listeners
	timeout   time.Duration
	log       *zap.Logger

	permMu sync.Mutex
	mu     sync.Mutex
	closed bool
}

// Dial connects to gatewayURL and waits for the handshake.
func Dial(ctx context.Context, log *zap.Logger, gatewayURL, namespace string, timeout time.Duration) (*Platform, error) {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	log = log.Named("notification.socketio").With(zap.String("url", gatewayURL))

	parsed, err := url.Parse(gatewayURL)
	if err != nil {
		return nil, fmt.Errorf("parse gateway url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("parse gateway url: missing scheme or host in %q", gatewayURL)
	}
	if namespace == "" {
		namespace = "/"
	}

	opts := socket.DefaultOptions()
	if parsed.Path != "" {
		opts.SetPath(parsed.Path)
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	manager := socket.NewManager(fmt.Sprintf("%s://%s", parsed.Scheme, parsed.Host), opts)
	io := manager.Socket(namespace, opts)

	p := &Platform{
		io:        io,
		listeners: events.NewListeners(),
		timeout:   timeout,
		log:       log,
	}
	p.bind()

	connected := make(chan error, 1)
	io.Once(types.EventName("connect"), func(...any) {
		select {
		case connected <- nil:
		default:
		}
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		select {
		case connected <- connectError(errs):
		default:
		}
	})
	io.Connect()

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	select {
	case err := <-connected:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
	case <-waitCtx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("waiting for socket.io connection: %w", waitCtx.Err())
	}

	log.Info("connected to push gateway", zap.String("sid", io.Id()))
	return p, nil
}

func (p *Platform) bind() {
	for _, kind := range domain.Kinds() {
		kind := kind
		p.io.On(types.EventName(kind), func(args ...any) {
			var payload any
			if len(args) > 0 {
				payload = args[0]
			}
			ev, err := decodePayload(kind, payload)
			if err != nil {
				p.log.Warn("dropping malformed gateway event",
					zap.String("event_type", string(kind)),
					zap.Error(err),
				)
				return
			}
			p.listeners.Dispatch(ev)
		})
	}
}

// RequestPermission asks the gateway and waits for its permissions reply.
func (p *Platform) RequestPermission(ctx context.Context) (domain.Permission, error) {
	if err := p.ready(); err != nil {
		return domain.Permission{}, err
	}

	p.permMu.Lock()
	defer p.permMu.Unlock()

	reply := make(chan any, 1)
	p.io.Once(types.EventName(eventPermissions), func(args ...any) {
		var payload any
		if len(args) > 0 {
			payload = args[0]
		}
		select {
		case reply <- payload:
		default:
		}
	})
	if err := p.io.Emit(eventRequestPermissions); err != nil {
		return domain.Permission{}, fmt.Errorf("emit %s: %w", eventRequestPermissions, err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	select {
	case payload := <-reply:
		return decodePermission(payload)
	case <-waitCtx.Done():
		if errors.Is(waitCtx.Err(), context.DeadlineExceeded) {
			return domain.Permission{}, domain.ErrPermissionTimeout
		}
		return domain.Permission{}, waitCtx.Err()
	}
}

// Register asks the gateway for a device token. The result arrives on the
// registration channels.
func (p *Platform) Register(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.ready(); err != nil {
		return err
	}
	if err := p.io.Emit(eventRegister); err != nil {
		return fmt.Errorf("emit %s: %w", eventRegister, err)
	}
	return nil
}

func (p *Platform) AddListener(kind domain.EventKind, h domain.Handler) (domain.Subscription, error) {
	return p.listeners.Add(kind, h)
}

// Close disconnects from the gateway.
func (p *Platform) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	p.io.Disconnect()
	p.log.Info("disconnected from push gateway")
	return nil
}

func (p *Platform) ready() error {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return domain.ErrPlatformClosed
	}
	if !p.io.Connected() {
		return ErrNotConnected
	}
	return nil
}

func connectError(errs []any) error {
	if len(errs) == 0 {
		return errors.New("connect_error")
	}
	if err, ok := errs[0].(error); ok {
		return err
	}
	return fmt.Errorf("%v", errs[0])
}

// decodePayload converts a decoded socket argument into an Event. Bare
// strings are accepted for the two registration channels.
func decodePayload(kind domain.EventKind, payload any) (domain.Event, error) {
	switch v := payload.(type) {
	case nil:
		return domain.Event{}, fmt.Errorf("%s: empty payload", kind)
	case string:
		switch kind {
		case domain.EventRegistration:
			return domain.Event{Kind: kind, Token: &domain.Token{Value: v}}, nil
		case domain.EventRegistrationError:
			return domain.Event{Kind: kind, Error: &domain.RegistrationError{Error: v}}, nil
		}
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return domain.Event{}, err
	}
	return domain.DecodeEvent(kind, raw)
}

func decodePermission(payload any) (domain.Permission, error) {
	switch v := payload.(type) {
	case string:
		return domain.Permission{Receive: v}, nil
	case nil:
		return domain.Permission{}, errors.New("empty permissions reply")
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return domain.Permission{}, err
	}
	var perm domain.Permission
	if err := json.Unmarshal(raw, &perm); err != nil {
		return domain.Permission{}, fmt.Errorf("decode permissions reply: %w", err)
	}
	return perm, nil
}
