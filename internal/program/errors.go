package program

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an exercise or training does not exist or is
// not visible to the user.
var ErrNotFound = errors.New("not found")

// ValidationError reports an exercise or performance the service refuses.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
