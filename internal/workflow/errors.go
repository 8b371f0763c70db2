package workflow

import (
    "errors"
    "fmt"
)

// ValidationError reports input that failed a workflow rule before any
// storage work happened.  Handlers translate it to a 400 response.
type ValidationError struct {
    Field  string
    Reason string
}

func (e *ValidationError) Error() string {
    return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) error {
    return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err carries a ValidationError anywhere in
// its chain.
func IsValidation(err error) bool {
    var ve *ValidationError
    return errors.As(err, &ve)
}
