package catalog

import (
	"errors"
	"fmt"
)

// Sentinel errors for provider requests.
var (
	ErrRateLimited = errors.New("catalog: rate limited by provider")
	ErrUpstream    = errors.New("catalog: provider server error")
	ErrBadStatus   = errors.New("catalog: unexpected provider status")
)

// Error wraps a provider failure with the operation that produced it.
type Error struct {
	Provider string
	Op       string // "discover movie", "discover tv", "anime by genre"
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
