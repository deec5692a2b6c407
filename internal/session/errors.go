package session

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInputDisabled is returned when the user tries to chat after the interview finished.
var ErrInputDisabled = errors.New("chat input is disabled")

// MissingFieldsError lists the labels of required fields left blank for an export.
type MissingFieldsError struct {
	Labels []string
}

func (e *MissingFieldsError) Error() string {
	return "missing required fields: " + strings.Join(e.Labels, ", ")
}

// ValidationError is a client-side check that stopped a request from being sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ServerError is a logical error reported in an otherwise successful response.
type ServerError struct {
	Endpoint string
	Message  string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("%s: server error: %s", e.Endpoint, e.Message)
}
