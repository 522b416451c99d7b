package domain

import "errors"

var (
	ErrAlreadyStarted    = errors.New("notification bootstrap already started")
	ErrUnknownEventKind  = errors.New("unknown notification event kind")
	ErrNilHandler        = errors.New("notification handler is nil")
	ErrPlatformClosed    = errors.New("notification platform closed")
	ErrPermissionTimeout = errors.New("timed out waiting for permission reply")
)
