package boltbot

import "fmt"

// APIError is returned when the boltbot API responds with a non-success status.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("boltbot: HTTP %d: %s", e.StatusCode, e.Message)
}
