package domain

import (
	"errors"
	"fmt"
)

var (
	ErrServerNotFound = errors.New("server not found")
	ErrServerNotReady = errors.New("server not ready")
	ErrToolNotFound   = errors.New("tool not found")
)

// NotFoundError reports an execute call against a server name that never
// made it into the ready set.
type NotFoundError struct {
	Server string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("server %q not found", e.Server)
}

func (e *NotFoundError) Unwrap() error { return ErrServerNotFound }

// NotReadyError reports an execute call against a server that exists but is
// not in the ready state. The current status is carried for the caller.
type NotReadyError struct {
	Server string
	Status ConnectionStatus
}

func (e *NotReadyError) Error() string {
	return fmt.Sprintf("server %q not ready (status %s)", e.Server, e.Status)
}

func (e *NotReadyError) Unwrap() error { return ErrServerNotReady }

// ToolNotFoundError reports a tool name outside the server's discovered
// catalog.
type ToolNotFoundError struct {
	Server string
	Tool   string
}

func (e *ToolNotFoundError) Error() string {
	return fmt.Sprintf("tool %q not found on server %q", e.Tool, e.Server)
}

func (e *ToolNotFoundError) Unwrap() error { return ErrToolNotFound }
