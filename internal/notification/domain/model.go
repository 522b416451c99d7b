// Package domain contains core types for push notification handling.
package domain

import "encoding/json"

// EventKind names a platform event channel.
type EventKind string

const (
	EventRegistration         EventKind = "registration"
	EventRegistrationError    EventKind = "registrationError"
	EventNotificationReceived EventKind = "pushNotificationReceived"
	EventActionPerformed      EventKind = "pushNotificationActionPerformed"
)

// Kinds lists every channel in attach order.
func Kinds() []EventKind {
	return []EventKind{
		EventRegistration,
		EventRegistrationError,
		EventNotificationReceived,
		EventActionPerformed,
	}
}

func (k EventKind) Valid() bool {
	switch k {
	case EventRegistration, EventRegistrationError, EventNotificationReceived, EventActionPerformed:
		return true
	}
	return false
}

const (
	PermissionGranted             = "granted"
	PermissionDenied              = "denied"
	PermissionPrompt              = "prompt"
	PermissionPromptWithRationale = "prompt-with-rationale"
)

// Permission is the platform's answer to a permission request.
type Permission struct {
	Receive string `json:"receive"`
}

func (p Permission) Granted() bool {
	return p.Receive == PermissionGranted
}

// Token identifies this device to the push service.
type Token struct {
	Value string `json:"value"`
}

type RegistrationError struct {
	Error string `json:"error"`
}

type Notification struct {
	ID       string         `json:"id"`
	Title    string         `json:"title,omitempty"`
	Subtitle string         `json:"subtitle,omitempty"`
	Body     string         `json:"body,omitempty"`
	Badge    *int           `json:"badge,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}

type ActionPerformed struct {
	ActionID     string       `json:"actionId"`
	InputValue   string       `json:"inputValue,omitempty"`
	Notification Notification `json:"notification"`
}

// Event is one delivery from the platform. Exactly one payload field is set,
// matching Kind. Raw keeps the wire payload when the platform had one.
type Event struct {
	Kind         EventKind
	Token        *Token
	Error        *RegistrationError
	Notification *Notification
	Action       *ActionPerformed
	Raw          json.RawMessage
}

// Payload returns the populated payload for Kind, or nil.
func (e Event) Payload() any {
	switch e.Kind {
	case EventRegistration:
		if e.Token != nil {
			return e.Token
		}
	case EventRegistrationError:
		if e.Error != nil {
			return e.Error
		}
	case EventNotificationReceived:
		if e.Notification != nil {
			return e.Notification
		}
	case EventActionPerformed:
		if e.Action != nil {
			return e.Action
		}
	}
	return nil
}

// DecodeEvent builds an Event of the given kind from a JSON payload.
func DecodeEvent(kind EventKind, raw []byte) (Event, error) {
	if !kind.Valid() {
		return Event{}, ErrUnknownEventKind
	}
	ev := Event{Kind: kind, Raw: append(json.RawMessage(nil), raw...)}
	var err error
	switch kind {
	case EventRegistration:
		ev.Token = &Token{}
		err = json.Unmarshal(raw, ev.Token)
	case EventRegistrationError:
		ev.Error = &RegistrationError{}
		err = json.Unmarshal(raw, ev.Error)
	case EventNotificationReceived:
		ev.Notification = &Notification{}
		err = json.Unmarshal(raw, ev.Notification)
	case EventActionPerformed:
		ev.Action = &ActionPerformed{}
		err = json.Unmarshal(raw, ev.Action)
	}
	if err != nil {
		return Event{}, err
	}
	return ev, nil
}
