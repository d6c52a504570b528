// Package apperr defines the user-facing error carried through the API
// envelope: a short title plus a human-readable message.
package apperr

import "fmt"

// Error is an error with a user-facing title and message.
type Error struct {
	Title   string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Title, e.Message)
}

// New builds an Error with a formatted message.
func New(title, format string, args ...any) *Error {
	return &Error{Title: title, Message: fmt.Sprintf(format, args...)}
}
