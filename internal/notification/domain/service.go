package domain

import "context"

//go:generate mockgen -source=service.go -destination=../mocks/mock_platform.go -package=mocks

// Handler receives platform events for one channel.
type Handler func(Event)

// Subscription detaches one handler. Remove is safe to call more than once.
type Subscription interface {
	Remove()
}

// Platform is the native push capability.
type Platform interface {
	RequestPermission(ctx context.Context) (Permission, error)
	Register(ctx context.Context) error
	AddListener(kind EventKind, h Handler) (Subscription, error)
}

// Presenter is the sink notification events are reported to.
type Presenter interface {
	Present(ctx context.Context, ev Event)
}
