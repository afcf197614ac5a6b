// Package repository implements the data-access layer over MySQL.  This
// file defines sentinel error values reused across repositories so that
// higher layers can distinguish failure scenarios with errors.Is instead
// of inspecting driver errors.
package repository

import "errors"

// ErrReservationNotFound is returned when a reservation lookup by id or
// reference misses.
var ErrReservationNotFound = errors.New("reservation not found")

// ErrTableNotFound is returned when a table id does not resolve in the
// catalog.
var ErrTableNotFound = errors.New("table not found")

// ErrDuplicateReference is returned when an insert collides on the
// unique reference_id column.  The service retries with a fresh token;
// the error is never surfaced to callers.
var ErrDuplicateReference = errors.New("duplicate reference id")

// ErrStatusChanged is returned when a guarded status write matches no
// row: the reservation's status moved between the caller's read and its
// write.  Callers map it to the state error of the operation they lost
// the race on.
var ErrStatusChanged = errors.New("reservation status changed concurrently")

// ErrClosedDay is returned when no business hours are configured for a
// day of week.  Validation treats the day as closed.
var ErrClosedDay = errors.New("no business hours for day")

// ErrPolicyNotFound is returned when a cutoff policy row is missing.
// Callers treat a missing policy as disallowing the operation.
var ErrPolicyNotFound = errors.New("policy not configured")

// ErrEmailExists is returned when account creation collides on the
// unique email column.
var ErrEmailExists = errors.New("email already exists")
