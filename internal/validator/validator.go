// Package validator holds the pure booking predicates: business hours,
// capacity, past-time, conflict and cutoff checks.  Each predicate
// answers yes/no; infrastructure failures from the backing stores are
// returned separately so the service can distinguish "invalid" from
// "could not check".
package validator

import (
    "context"
    "errors"
    "time"

    "github.com/pizzas505/table-reservation/internal/clock"
    "github.com/pizzas505/table-reservation/internal/model"
    "github.com/pizzas505/table-reservation/internal/repository"
)

// PolicyStore supplies business hours and cutoff configuration.
type PolicyStore interface {
    BusinessHours(ctx context.Context, dayOfWeek int) (model.BusinessHours, error)
    CutoffHours(ctx context.Context, kind model.PolicyKind) (int, error)
}

// TableCatalog resolves tables for the capacity check.
type TableCatalog interface {
    Get(ctx context.Context, id model.TableID) (model.Table, error)
}

// ConflictCounter counts active reservations occupying a slot.
type ConflictCounter interface {
    CountActiveAt(ctx context.Context, tableID model.TableID, at time.Time, exclude model.ReservationID) (int, error)
}

// Validator bundles the injected dependencies the predicates read from.
type Validator struct {
    Clock        clock.Clock
    Policies     PolicyStore
    Tables       TableCatalog
    Reservations ConflictCounter
}

// New returns a Validator over the given dependencies.
func New(clk clock.Clock, policies PolicyStore, tables TableCatalog, reservations ConflictCounter) *Validator {
    return &Validator{Clock: clk, Policies: policies, Tables: tables, Reservations: reservations}
}

// InFuture reports whether at is strictly after the current time.
func (v *Validator) InFuture(at time.Time) bool {
    return at.After(v.Clock.Now())
}

// WithinBusinessHours reports whether at falls inside the open interval
// for its day of week.  A day without configured hours is closed, so
// the predicate is false without error.
func (v *Validator) WithinBusinessHours(ctx context.Context, at time.Time) (bool, error) {
    hours, err := v.Policies.BusinessHours(ctx, model.ISOWeekday(at))
    if errors.Is(err, repository.ErrClosedDay) {
        return false, nil
    }
    if err != nil {
        return false, err
    }
    return hours.Contains(at), nil
}

// PartySizeValid reports whether 1 <= partySize <= capacity(tableID).
// An unresolvable table surfaces the catalog error so the caller can
// report UnknownTable rather than CapacityExceeded.
func (v *Validator) PartySizeValid(ctx context.Context, tableID model.TableID, partySize int) (bool, error) {
    table, err := v.Tables.Get(ctx, tableID)
    if err != nil {
        return false, err
    }
    return partySize >= 1 && partySize <= table.Capacity, nil
}

// HasConflict reports whether another active reservation already
// occupies the exact slot (tableID, at).  exclude removes one
// reservation from the count; pass model.NoReservation for new
// bookings.
func (v *Validator) HasConflict(ctx context.Context, tableID model.TableID, at time.Time, exclude model.ReservationID) (bool, error) {
    n, err := v.Reservations.CountActiveAt(ctx, tableID, at, exclude)
    if err != nil {
        return false, err
    }
    return n > 0, nil
}

// WithinCutoff reports whether at is still far enough in the future for
// a customer change of the given kind: at > now + cutoff.  A missing
// policy row disallows the change, so the predicate is false without
// error.
func (v *Validator) WithinCutoff(ctx context.Context, at time.Time, kind model.PolicyKind) (bool, error) {
    hours, err := v.Policies.CutoffHours(ctx, kind)
    if errors.Is(err, repository.ErrPolicyNotFound) {
        return false, nil
    }
    if err != nil {
        return false, err
    }
    cutoff := v.Clock.Now().Add(time.Duration(hours) * time.Hour)
    return at.After(cutoff), nil
}
