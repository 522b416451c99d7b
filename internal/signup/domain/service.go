package domain

import "context"

//go:generate mockgen -source=service.go -destination=../mocks/mock_service.go -package=mocks

// RegistrationService creates accounts. Terms acceptance is never forwarded.
type RegistrationService interface {
	Register(ctx context.Context, req Request) (*Response, error)
}

type Request struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Response struct {
	UserID string `json:"userId"`
}

// SessionStore persists session values. The registration flow only writes.
type SessionStore interface {
	Set(ctx context.Context, key, value string) error
}

// Navigator moves the host to another route. Fire-and-forget.
type Navigator interface {
	NavigateTo(route string)
}
