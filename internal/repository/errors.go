// Package repository contains the MySQL data access layer.  This file
// defines sentinel errors shared across repositories so that higher
// layers can distinguish failure scenarios with errors.Is without
// depending on database/sql internals.
package repository

import "errors"

// ErrShowNotFound indicates that no show with the requested id exists.
// Non-retryable; handlers translate it into a 404 response.
var ErrShowNotFound = errors.New("show not found")

// ErrReservationNotFound indicates that no reservation with the
// requested id exists.  Handlers translate it into a 404 response.
var ErrReservationNotFound = errors.New("reservation not found")
