package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrFetchFailed marks a failed read from storage. Callers must not treat it as an empty result.
	ErrFetchFailed = errors.New("could not load data from storage")
	// ErrWriteFailed marks a failed write to storage.
	ErrWriteFailed = errors.New("could not save changes to storage")
)

type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, "; ")
}

func fetchFailed(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrFetchFailed, err)
}

func writeFailed(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrWriteFailed, err)
}

// Caller describes who issued a request, for audit entries and logs.
type Caller struct {
	Actor     string
	IPAddress string
	RequestID string
}

type callerKey struct{}

func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, c)
}

// CallerFrom returns the caller stored in ctx, or an anonymous one.
func CallerFrom(ctx context.Context) Caller {
	if c, ok := ctx.Value(callerKey{}).(Caller); ok {
		return c
	}
	return Caller{Actor: "anonymous"}
}

type AuditEntry struct {
	Action       string
	ResourceType string
	ResourceID   string
	// Changes is marshalled to JSON; nil writes no changes column.
	Changes any
}
