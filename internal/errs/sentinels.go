// Package errs contains sentinel errors shared by the client layers.
package errs

import "errors"

var (
	// ErrNotFound indicates the referenced contact is not in the local mirror.
	ErrNotFound = errors.New("not found")

	// ErrEmptyMessage is returned when a send is attempted with no text.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrRecipientOffline is returned when the target contact is not online.
	// Messages are not cached for offline contacts.
	ErrRecipientOffline = errors.New("recipient is offline")

	// ErrTransportUnavailable indicates the push channel cannot be used at all.
	// It is never retried.
	ErrTransportUnavailable = errors.New("push channel unavailable")

	// ErrUnauthorized indicates the service rejected the credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrSessionLocked indicates another process of the same binary already
	// runs against the session.
	ErrSessionLocked = errors.New("session locked")
)
