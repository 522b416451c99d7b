// Package presenter turns notification events into something a person sees.
package presenter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/smallbiznis/telematch/internal/notification/domain"
	"go.uber.org/zap"
)

const (
	prefixRegistered = "Push registration success, token: "
	prefixRegError   = "Error on registration: "
	prefixReceived   = "Push received: "
	prefixAction     = "Push action performed: "
)

// Line renders ev as the alert text shown to the user.
func Line(ev domain.Event) string {
	switch ev.Kind {
	case domain.EventRegistration:
		token := ""
		if ev.Token != nil {
			token = ev.Token.Value
		}
		return prefixRegistered + token
	case domain.EventRegistrationError:
		return prefixRegError + payloadJSON(ev)
	case domain.EventNotificationReceived:
		return prefixReceived + payloadJSON(ev)
	case domain.EventActionPerformed:
		return prefixAction + payloadJSON(ev)
	default:
		return fmt.Sprintf("Unknown push event %q: %s", ev.Kind, payloadJSON(ev))
	}
}

func payloadJSON(ev domain.Event) string {
	if len(ev.Raw) > 0 {
		return string(ev.Raw)
	}
	payload := ev.Payload()
	if payload == nil {
		return "null"
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return "null"
	}
	return string(b)
}

// Console writes one alert line per event.
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

func (c *Console) Present(_ context.Context, ev domain.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.w, Line(ev))
}

// Log records events with zap.
type Log struct {
	log *zap.Logger
}

func NewLog(log *zap.Logger) *Log {
	return &Log{log: log.Named("notification.presenter")}
}

func (l *Log) Present(_ context.Context, ev domain.Event) {
	fields := []zap.Field{zap.String("event_type", string(ev.Kind))}
	switch ev.Kind {
	case domain.EventRegistration:
		if ev.Token != nil {
			fields = append(fields, zap.String("token", ev.Token.Value))
		}
		l.log.Info("push registration success", fields...)
	case domain.EventRegistrationError:
		fields = append(fields, zap.String("payload", payloadJSON(ev)))
		l.log.Warn("push registration error", fields...)
	default:
		fields = append(fields, zap.String("payload", payloadJSON(ev)))
		l.log.Info("push event", fields...)
	}
}

// Multi fans each event out to every presenter in order.
type Multi []domain.Presenter

func (m Multi) Present(ctx context.Context, ev domain.Event) {
	for _, p := range m {
		if p != nil {
			p.Present(ctx, ev)
		}
	}
}
