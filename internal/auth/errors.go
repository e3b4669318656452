package auth

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrNotAuthenticated = errors.New("auth: not authenticated")
	ErrInvalidInput     = errors.New("auth: invalid input")
)

// FieldErrors maps form field names to user-facing messages. Validation runs
// before any network call; a non-empty result blocks the flow without ever
// entering the Loading state.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	parts := make([]string, 0, len(f))
	for field, msg := range f {
		parts = append(parts, field+": "+msg)
	}
	sort.Strings(parts)
	return strings.Join(parts, "; ")
}

// Is lets callers match FieldErrors with errors.Is(err, ErrInvalidInput).
func (f FieldErrors) Is(target error) bool { return target == ErrInvalidInput }
