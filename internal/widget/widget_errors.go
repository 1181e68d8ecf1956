package widget

import (
	"errors"
	"fmt"
)

var (
	ErrSubmitInProgress = errors.New("widget: submission in progress")
	ErrTooFewFiles      = errors.New("widget: not enough files staged")
	ErrNoResult         = errors.New("widget: no result available")
	ErrInvalidIndex     = errors.New("widget: invalid index")
	ErrUseServer        = errors.New("widget: transform must run on the server")
	ErrClosed           = errors.New("widget: closed")
)

// Reason classifies a validation failure.
type Reason string

const (
	ReasonType    Reason = "type"
	ReasonSize    Reason = "size"
	ReasonTotal   Reason = "total"
	ReasonCount   Reason = "count"
	ReasonNoFiles Reason = "no_files"
	ReasonOption  Reason = "option"
)

// ValidationError is a local, user-recoverable rejection. It never leaves the
// widget as anything but a notification, status text and this value.
type ValidationError struct {
	Reason  Reason
	File    string
	Message string
}

func (e *ValidationError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("validation: %s: %s", e.Reason, e.Message)
	}
	return fmt.Sprintf("validation: %s: %s: %s", e.Reason, e.File, e.Message)
}

// IsValidation reports whether err carries a *ValidationError with the given reason.
// An empty reason matches any validation error.
func IsValidation(err error, reason Reason) bool {
	var ve *ValidationError
	if !errors.As(err, &ve) {
		return false
	}
	return reason == "" || ve.Reason == reason
}
