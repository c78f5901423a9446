package godbolt

import "fmt"

// RemoteServiceError is returned for every failed call to the compiler
// service: transport errors, non-2xx statuses, malformed JSON and
// responses that do not match the expected schema.
type RemoteServiceError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *RemoteServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("godbolt: %s: HTTP %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("godbolt: %s: %v", e.Op, e.Err)
}

func (e *RemoteServiceError) Unwrap() error {
	return e.Err
}
