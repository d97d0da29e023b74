package runner

import (
	"errors"
	"fmt"
)

// ExitError is returned when a plan exits with a code outside its success
// codes.
type ExitError struct {
	Plan string
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("plan %s failed with exit code %d", e.Plan, e.Code)
}

// IsExitError checks if an error is or wraps an ExitError.
func IsExitError(err error) bool {
	var exitErr *ExitError
	return errors.As(err, &exitErr)
}
