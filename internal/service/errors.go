// Package service implements the reservation engine and the catalog
// service on top of the repository store.  This file defines the typed
// failures every operation can surface.  Each kind is distinguishable
// with errors.Is / errors.As so the HTTP layer can map it to a status
// code; nothing else escapes except genuine infrastructure errors.
package service

import (
	"errors"
	"fmt"
)

// ErrInvalidQuantity rejects a reservation request whose quantity is
// below one.  Checked before any lock is taken.
var ErrInvalidQuantity = errors.New("quantity must be at least 1")

// ErrShowExpired rejects a reservation for a show whose scheduled time
// has already passed.
var ErrShowExpired = errors.New("cannot reserve a past show")

// ErrShowAlreadyStarted rejects a cancellation once the show's
// scheduled time has passed; tickets for past shows are not released
// back into inventory.  Subject to the AllowPastCancel policy.
var ErrShowAlreadyStarted = errors.New("cannot cancel a reservation for a past show")

// ErrNotOwner is returned when a caller addresses a reservation owned
// by a different user.  The message deliberately reveals nothing about
// the reservation beyond "not yours".
var ErrNotOwner = errors.New("reservation does not belong to this user")

// ErrConcurrencyConflict is reserved for Store implementations that use
// optimistic concurrency for the show update.  The MySQL store locks
// pessimistically and never produces it; an optimistic store should
// return it after its bounded retries are exhausted.
var ErrConcurrencyConflict = errors.New("concurrent modification conflict")

// InsufficientTicketsError reports that a show's remaining capacity
// cannot satisfy the requested quantity.  It carries both values so the
// caller can decide whether to retry with fewer tickets; the engine
// itself never retries.
type InsufficientTicketsError struct {
	Available int
	Requested int
}

func (e *InsufficientTicketsError) Error() string {
	return fmt.Sprintf("not enough tickets available: available=%d requested=%d", e.Available, e.Requested)
}
