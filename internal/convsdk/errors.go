package convsdk

import (
	"errors"
	"fmt"
)

var (
	ErrNoServerURL   = errors.New("convsdk: server url missing")
	ErrNoEndpoint    = errors.New("convsdk: endpoint missing")
	ErrFieldNotFound = errors.New("convsdk: field not found in response")
)

// RequestError wraps a failure to send the request or read its reply.
// No response was received when this error is returned.
type RequestError struct {
	Endpoint string
	Err      error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("convsdk: post %s: %v", e.Endpoint, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}
