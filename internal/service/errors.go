// Package service implements the reservation use cases on top of the
// validator and the stores.  This file defines the tagged error kinds
// every operation returns; handlers map them to HTTP responses and
// user-visible strings, the service itself never converts one kind into
// another.
package service

import "errors"

// ErrNotFound is returned when a reservation or table lookup misses.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the actor may not operate on the entity,
// e.g. a customer touching someone else's booking or calling a
// staff-only operation.
var ErrForbidden = errors.New("forbidden")

// ErrPastTime is returned when the scheduled instant is not in the future.
var ErrPastTime = errors.New("scheduled time is in the past")

// ErrOutsideHours is returned when the scheduled instant falls outside
// business hours for its day, or the restaurant is closed that day.
var ErrOutsideHours = errors.New("outside business hours")

// ErrCapacityExceeded is returned when the party size is below 1 or
// above the table's capacity.
var ErrCapacityExceeded = errors.New("party size exceeds table capacity")

// ErrUnknownTable is returned when the table id does not resolve in the
// catalog.
var ErrUnknownTable = errors.New("unknown table")

// ErrTableConflict is returned when another active reservation already
// occupies the requested slot.
var ErrTableConflict = errors.New("table already reserved for that time")

// ErrCutoffPassed is returned when a modification or cancellation comes
// too close to the reservation time.
var ErrCutoffPassed = errors.New("policy cutoff has passed")

// ErrNotModifiable is returned when a reservation is no longer in the
// confirmed state and therefore cannot be modified.
var ErrNotModifiable = errors.New("reservation can no longer be modified")

// ErrNotCancelable is returned when a reservation is no longer in the
// confirmed state and therefore cannot be cancelled.
var ErrNotCancelable = errors.New("reservation can no longer be cancelled")

// ErrInvalidTransition is returned when a staff status change does not
// follow the reservation lifecycle.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrInternal wraps store failures, timeouts and any fault the caller
// cannot act on.  The cause travels in the wrapped chain for logs.
var ErrInternal = errors.New("internal error")

func internal(err error) error {
    return errors.Join(ErrInternal, err)
}
