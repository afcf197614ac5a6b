package service

import (
    "context"
    "errors"
    "log"
    "time"

    "github.com/pizzas505/table-reservation/internal/clock"
    "github.com/pizzas505/table-reservation/internal/model"
    "github.com/pizzas505/table-reservation/internal/queue"
    "github.com/pizzas505/table-reservation/internal/repository"
    "github.com/pizzas505/table-reservation/internal/validator"
)

// ReservationStore is the persistence surface the service mutates and
// queries.  *repository.ReservationRepo implements it; tests substitute
// an in-memory store.
type ReservationStore interface {
    Insert(ctx context.Context, res *model.Reservation) error
    UpdateAll(ctx context.Context, res *model.Reservation) error
    UpdateStatus(ctx context.Context, id model.ReservationID, from, to model.Status) error
    Reassign(ctx context.Context, id model.ReservationID, tableID model.TableID, at time.Time) error
    GetByID(ctx context.Context, id model.ReservationID) (*model.Reservation, error)
    GetByReference(ctx context.Context, ref model.ReferenceID) (*model.Reservation, error)
    ListByCustomer(ctx context.Context, customerID model.CustomerID) ([]model.Reservation, error)
    ListByDate(ctx context.Context, day time.Time) ([]model.Reservation, error)
    ListAll(ctx context.Context) ([]model.Reservation, error)
    CountActiveAt(ctx context.Context, tableID model.TableID, at time.Time, exclude model.ReservationID) (int, error)
}

// TableCatalog is the read-only view of tables.
type TableCatalog interface {
    Get(ctx context.Context, id model.TableID) (model.Table, error)
    List(ctx context.Context) ([]model.Table, error)
}

// PolicyStore supplies business hours and cutoff configuration.
type PolicyStore interface {
    BusinessHours(ctx context.Context, dayOfWeek int) (model.BusinessHours, error)
    CutoffHours(ctx context.Context, kind model.PolicyKind) (int, error)
}

// Notifier receives domain events.  Delivery is best-effort: the
// service logs and drops notifier errors, they never fail an operation.
type Notifier interface {
    ReservationConfirmed(ctx context.Context, ev queue.ReservationConfirmedEvent) error
    ReservationCancelled(ctx context.Context, ev queue.ReservationCancelledEvent) error
}

// ReservationService is the only mutator of reservations.  It composes
// the validator with the stores to execute the booking use cases and
// emits domain events to the notifier.  Safe for concurrent use: the
// conflict check and the subsequent write are serialized per slot.
type ReservationService struct {
    clock    clock.Clock
    store    ReservationStore
    tables   TableCatalog
    policies PolicyStore
    notifier Notifier
    validate *validator.Validator
    slots    *slotLocks
}

// maxReferenceRetries bounds duplicate-reference retries on insert.
const maxReferenceRetries = 3

// New wires a ReservationService from its injected dependencies.
func New(clk clock.Clock, store ReservationStore, tables TableCatalog, policies PolicyStore, notifier Notifier) *ReservationService {
    return &ReservationService{
        clock:    clk,
        store:    store,
        tables:   tables,
        policies: policies,
        notifier: notifier,
        validate: validator.New(clk, policies, tables, store),
        slots:    newSlotLocks(),
    }
}

// CreateInput carries the parsed fields for a new booking.
type CreateInput struct {
    CustomerName string
    Contact      string
    TableID      model.TableID
    DateTime     time.Time
    PartySize    int
    Notes        string
}

// Changes carries the mutable fields of a modification request.
type Changes struct {
    TableID   model.TableID
    DateTime  time.Time
    PartySize int
    Notes     string
}

// atMinute normalizes an instant to the restaurant zone at minute
// precision.  Every comparison in the core happens on these values.
func (s *ReservationService) atMinute(t time.Time) time.Time {
    lt := t.In(s.clock.Location())
    return time.Date(lt.Year(), lt.Month(), lt.Day(), lt.Hour(), lt.Minute(), 0, 0, s.clock.Location())
}

// checkBooking runs the validator chain in the documented order:
// in-future, business hours, party size, conflict.  Cheap local checks
// come before the conflict query.  The first failing predicate decides
// the returned kind.
func (s *ReservationService) checkBooking(ctx context.Context, tableID model.TableID, at time.Time, partySize int, exclude model.ReservationID) error {
    if !s.validate.InFuture(at) {
        return ErrPastTime
    }
    ok, err := s.validate.WithinBusinessHours(ctx, at)
    if err != nil {
        return internal(err)
    }
    if !ok {
        return ErrOutsideHours
    }
    ok, err = s.validate.PartySizeValid(ctx, tableID, partySize)
    if errors.Is(err, repository.ErrTableNotFound) {
        return ErrUnknownTable
    }
    if err != nil {
        return internal(err)
    }
    if !ok {
        return ErrCapacityExceeded
    }
    conflict, err := s.validate.HasConflict(ctx, tableID, at, exclude)
    if err != nil {
        return internal(err)
    }
    if conflict {
        return ErrTableConflict
    }
    return nil
}

// Create books a table.  Customers become the owner of the reservation;
// staff-created bookings are walk-ins with no owning account.  On
// success the persisted reservation is returned, including its assigned
// id and reference token, and a confirmation event is emitted.
func (s *ReservationService) Create(ctx context.Context, in CreateInput, actor model.Actor) (*model.Reservation, error) {
    at := s.atMinute(in.DateTime)

    // Serialize check-then-insert per slot so two concurrent creators
    // cannot both observe "no conflict".
    unlock := s.slots.lock(in.TableID, at)
    defer unlock()

    if err := s.checkBooking(ctx, in.TableID, at, in.PartySize, model.NoReservation); err != nil {
        return nil, err
    }
    if err := ctx.Err(); err != nil {
        return nil, internal(err)
    }

    res := &model.Reservation{
        CustomerName: in.CustomerName,
        Contact:      in.Contact,
        TableID:      in.TableID,
        DateTime:     at,
        PartySize:    in.PartySize,
        Status:       model.StatusConfirmed,
        Notes:        in.Notes,
    }
    if actor.Role == model.RoleCustomer && actor.ID != 0 {
        id := actor.ID
        res.CustomerID = &id
    }

    // Insert, retrying with a fresh reference token on the (unlikely)
    // duplicate collision.  The duplicate error never leaves the service.
    var err error
    for attempt := 0; attempt < maxReferenceRetries; attempt++ {
        res.ReferenceID, err = NewReferenceID()
        if err != nil {
            return nil, internal(err)
        }
        err = s.store.Insert(ctx, res)
        if !errors.Is(err, repository.ErrDuplicateReference) {
            break
        }
    }
    if err != nil {
        return nil, internal(err)
    }

    s.emitConfirmed(ctx, res)
    return res, nil
}

// Modify changes table, time, party size and notes of a confirmed
// reservation.  Customers may only modify their own bookings and only
// outside the modification cutoff.  Status, reference, owner and
// creation time are never touched.
func (s *ReservationService) Modify(ctx context.Context, ref model.ReferenceID, ch Changes, actor model.Actor) (*model.Reservation, error) {
    existing, err := s.store.GetByReference(ctx, ref)
    if err != nil {
        return nil, notFoundOr(err)
    }
    if err := s.authorizeOwner(existing, actor); err != nil {
        return nil, err
    }
    if existing.Status != model.StatusConfirmed {
        return nil, ErrNotModifiable
    }
    ok, err := s.validate.WithinCutoff(ctx, existing.DateTime, model.PolicyModification)
    if err != nil {
        return nil, internal(err)
    }
    if !ok {
        return nil, ErrCutoffPassed
    }

    at := s.atMinute(ch.DateTime)
    unlock := s.slots.lock(ch.TableID, at)
    defer unlock()

    // excluding the reservation itself means an unchanged slot is not
    // a self-conflict
    if err := s.checkBooking(ctx, ch.TableID, at, ch.PartySize, existing.ID); err != nil {
        return nil, err
    }
    if err := ctx.Err(); err != nil {
        return nil, internal(err)
    }

    updated := *existing
    updated.TableID = ch.TableID
    updated.DateTime = at
    updated.PartySize = ch.PartySize
    updated.Notes = ch.Notes
    updated.ModifiedAt = s.clock.Now()
    // The store's write is guarded on the confirmed status; if a cancel
    // or seating landed since the read above, this modify loses.
    if err := s.store.UpdateAll(ctx, &updated); err != nil {
        if errors.Is(err, repository.ErrStatusChanged) {
            return nil, ErrNotModifiable
        }
        return nil, notFoundOr(err)
    }
    return &updated, nil
}

// Cancel moves a confirmed reservation to cancelled, freeing its slot,
// and emits a cancellation event.  Customers may only cancel their own
// bookings and only outside the cancellation cutoff.
func (s *ReservationService) Cancel(ctx context.Context, ref model.ReferenceID, actor model.Actor) error {
    existing, err := s.store.GetByReference(ctx, ref)
    if err != nil {
        return notFoundOr(err)
    }
    if err := s.authorizeOwner(existing, actor); err != nil {
        return err
    }
    if existing.Status != model.StatusConfirmed {
        return ErrNotCancelable
    }
    ok, err := s.validate.WithinCutoff(ctx, existing.DateTime, model.PolicyCancellation)
    if err != nil {
        return internal(err)
    }
    if !ok {
        return ErrCutoffPassed
    }
    if err := ctx.Err(); err != nil {
        return internal(err)
    }
    // Guarded on confirmed: a transition committed since the read above
    // wins and this cancel is rejected rather than overwriting it.
    if err := s.store.UpdateStatus(ctx, existing.ID, model.StatusConfirmed, model.StatusCancelled); err != nil {
        if errors.Is(err, repository.ErrStatusChanged) {
            return ErrNotCancelable
        }
        return notFoundOr(err)
    }

    ev := queue.ReservationCancelledEvent{
        ReferenceID:      string(existing.ReferenceID),
        CustomerName:     existing.CustomerName,
        Contact:          existing.Contact,
        OriginalDateTime: existing.DateTime.Format(localMinuteLayout),
    }
    if err := s.notifier.ReservationCancelled(ctx, ev); err != nil {
        log.Printf("service: cancellation event dropped for %s: %v", existing.ReferenceID, err)
    }
    return nil
}

// Reassign is the staff override: move a reservation to another table
// and/or time without re-running business-hours or capacity checks.
// The conflict check still applies; staff cannot double-book a slot.
func (s *ReservationService) Reassign(ctx context.Context, id model.ReservationID, tableID model.TableID, at time.Time, actor model.Actor) error {
    if !actor.Role.Staff() {
        return ErrForbidden
    }
    existing, err := s.store.GetByID(ctx, id)
    if err != nil {
        return notFoundOr(err)
    }

    slot := s.atMinute(at)
    unlock := s.slots.lock(tableID, slot)
    defer unlock()

    conflict, err := s.validate.HasConflict(ctx, tableID, slot, existing.ID)
    if err != nil {
        return internal(err)
    }
    if conflict {
        return ErrTableConflict
    }
    if err := ctx.Err(); err != nil {
        return internal(err)
    }
    if err := s.store.Reassign(ctx, existing.ID, tableID, slot); err != nil {
        return notFoundOr(err)
    }
    return nil
}

// MarkSeated records the party's arrival.  Staff-only, confirmed -> seated.
func (s *ReservationService) MarkSeated(ctx context.Context, id model.ReservationID, actor model.Actor) error {
    return s.transition(ctx, id, model.StatusSeated, actor)
}

// MarkNoShow records that the party never arrived.  Staff-only,
// confirmed -> no-show; the slot becomes free again.
func (s *ReservationService) MarkNoShow(ctx context.Context, id model.ReservationID, actor model.Actor) error {
    return s.transition(ctx, id, model.StatusNoShow, actor)
}

// Complete closes out a seated reservation.  Staff-only, seated -> completed.
func (s *ReservationService) Complete(ctx context.Context, id model.ReservationID, actor model.Actor) error {
    return s.transition(ctx, id, model.StatusCompleted, actor)
}

func (s *ReservationService) transition(ctx context.Context, id model.ReservationID, next model.Status, actor model.Actor) error {
    if !actor.Role.Staff() {
        return ErrForbidden
    }
    existing, err := s.store.GetByID(ctx, id)
    if err != nil {
        return notFoundOr(err)
    }
    if !existing.Status.CanTransitionTo(next) {
        return ErrInvalidTransition
    }
    // Conditional on the status just read; a concurrent writer that got
    // there first invalidates this transition.
    if err := s.store.UpdateStatus(ctx, id, existing.Status, next); err != nil {
        if errors.Is(err, repository.ErrStatusChanged) {
            return ErrInvalidTransition
        }
        return notFoundOr(err)
    }
    return nil
}

// ListForCustomer returns a customer's reservations, newest first.
// Customers may only list their own; staff may list anyone's.
func (s *ReservationService) ListForCustomer(ctx context.Context, customerID model.CustomerID, actor model.Actor) ([]model.Reservation, error) {
    if actor.Role == model.RoleCustomer && actor.ID != customerID {
        return nil, ErrForbidden
    }
    out, err := s.store.ListByCustomer(ctx, customerID)
    if err != nil {
        return nil, internal(err)
    }
    return out, nil
}

// ListAll returns every reservation, scheduled time ascending. Staff-only.
func (s *ReservationService) ListAll(ctx context.Context, actor model.Actor) ([]model.Reservation, error) {
    if !actor.Role.Staff() {
        return nil, ErrForbidden
    }
    out, err := s.store.ListAll(ctx)
    if err != nil {
        return nil, internal(err)
    }
    return out, nil
}

// ListByDate returns the reservations of one local calendar day,
// scheduled time ascending.  Staff-only.
func (s *ReservationService) ListByDate(ctx context.Context, day time.Time, actor model.Actor) ([]model.Reservation, error) {
    if !actor.Role.Staff() {
        return nil, ErrForbidden
    }
    out, err := s.store.ListByDate(ctx, day)
    if err != nil {
        return nil, internal(err)
    }
    return out, nil
}

// GetByReference loads one reservation for an authenticated actor.
// Customers may only read their own.
func (s *ReservationService) GetByReference(ctx context.Context, ref model.ReferenceID, actor model.Actor) (*model.Reservation, error) {
    res, err := s.store.GetByReference(ctx, ref)
    if err != nil {
        return nil, notFoundOr(err)
    }
    if err := s.authorizeOwner(res, actor); err != nil {
        return nil, err
    }
    return res, nil
}

// Lookup loads a reservation by reference without authentication.  The
// reference token itself is the capability: it is random, unguessable
// and only ever shown to the booking party.
func (s *ReservationService) Lookup(ctx context.Context, ref model.ReferenceID) (*model.Reservation, error) {
    res, err := s.store.GetByReference(ctx, ref)
    if err != nil {
        return nil, notFoundOr(err)
    }
    return res, nil
}

// authorizeOwner enforces the ownership rule: customers may only touch
// reservations tied to their own account; staff roles may touch all.
func (s *ReservationService) authorizeOwner(res *model.Reservation, actor model.Actor) error {
    switch actor.Role {
    case model.RoleCustomer:
        if !res.OwnedBy(actor.ID) {
            return ErrForbidden
        }
        return nil
    case model.RoleStaff, model.RoleManager, model.RoleAdmin:
        return nil
    }
    return ErrForbidden
}

const localMinuteLayout = "2006-01-02T15:04"

// emitConfirmed sends the confirmation event.  Failures are logged and
// swallowed; the booking has already committed.
func (s *ReservationService) emitConfirmed(ctx context.Context, res *model.Reservation) {
    table, err := s.tables.Get(ctx, res.TableID)
    if err != nil {
        log.Printf("service: confirmation event dropped for %s: table lookup: %v", res.ReferenceID, err)
        return
    }
    ev := queue.ReservationConfirmedEvent{
        ReferenceID:  string(res.ReferenceID),
        CustomerName: res.CustomerName,
        Contact:      res.Contact,
        DateTime:     res.DateTime.Format(localMinuteLayout),
        TableID:      uint64(res.TableID),
        TableNumber:  table.TableNumber,
        PartySize:    res.PartySize,
        PriceCents:   table.TotalPriceCents(),
        Notes:        res.Notes,
    }
    if err := s.notifier.ReservationConfirmed(ctx, ev); err != nil {
        log.Printf("service: confirmation event dropped for %s: %v", res.ReferenceID, err)
    }
}

// notFoundOr maps the store's miss sentinel to the service kind and
// wraps anything else as internal.
func notFoundOr(err error) error {
    if errors.Is(err, repository.ErrReservationNotFound) {
        return ErrNotFound
    }
    return internal(err)
}
