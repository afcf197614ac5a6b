package service

import (
    "context"
    "errors"
    "sort"
    "sync"
    "testing"
    "time"

    "github.com/pizzas505/table-reservation/internal/clock"
    "github.com/pizzas505/table-reservation/internal/model"
    "github.com/pizzas505/table-reservation/internal/queue"
    "github.com/pizzas505/table-reservation/internal/repository"
)

// Fixed scenario clock: Monday 2025-10-20 12:00 local.
var (
    testZone = time.FixedZone("MDT", -6*3600)
    testNow  = time.Date(2025, 10, 20, 12, 0, 0, 0, testZone)
)

// ----- in-memory fakes -----

type memStore struct {
    mu     sync.Mutex
    nextID uint64
    rows   map[model.ReservationID]model.Reservation
    refs   map[model.ReferenceID]bool

    forceDuplicates int   // fail this many inserts with ErrDuplicateReference
    insertErr       error // unconditional insert failure
}

func newMemStore() *memStore {
    return &memStore{
        rows: make(map[model.ReservationID]model.Reservation),
        refs: make(map[model.ReferenceID]bool),
    }
}

func (s *memStore) Insert(_ context.Context, res *model.Reservation) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    if s.insertErr != nil {
        return s.insertErr
    }
    if s.forceDuplicates > 0 {
        s.forceDuplicates--
        return repository.ErrDuplicateReference
    }
    if s.refs[res.ReferenceID] {
        return repository.ErrDuplicateReference
    }
    s.nextID++
    res.ID = model.ReservationID(s.nextID)
    res.CreatedAt = testNow
    res.ModifiedAt = testNow
    s.refs[res.ReferenceID] = true
    s.rows[res.ID] = *res
    return nil
}

func (s *memStore) UpdateAll(_ context.Context, res *model.Reservation) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    row, ok := s.rows[res.ID]
    if !ok || row.Status != model.StatusConfirmed {
        return repository.ErrStatusChanged
    }
    row.CustomerName = res.CustomerName
    row.Contact = res.Contact
    row.TableID = res.TableID
    row.DateTime = res.DateTime
    row.PartySize = res.PartySize
    row.Notes = res.Notes
    row.ModifiedAt = res.ModifiedAt
    s.rows[res.ID] = row
    return nil
}

func (s *memStore) UpdateStatus(_ context.Context, id model.ReservationID, from, to model.Status) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    row, ok := s.rows[id]
    if !ok || row.Status != from {
        return repository.ErrStatusChanged
    }
    row.Status = to
    s.rows[id] = row
    return nil
}

func (s *memStore) Reassign(_ context.Context, id model.ReservationID, tableID model.TableID, at time.Time) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    row, ok := s.rows[id]
    if !ok {
        return repository.ErrReservationNotFound
    }
    row.TableID = tableID
    row.DateTime = at
    s.rows[id] = row
    return nil
}

func (s *memStore) GetByID(_ context.Context, id model.ReservationID) (*model.Reservation, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    row, ok := s.rows[id]
    if !ok {
        return nil, repository.ErrReservationNotFound
    }
    cp := row
    return &cp, nil
}

func (s *memStore) GetByReference(_ context.Context, ref model.ReferenceID) (*model.Reservation, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    for _, row := range s.rows {
        if row.ReferenceID == ref {
            cp := row
            return &cp, nil
        }
    }
    return nil, repository.ErrReservationNotFound
}

func (s *memStore) ListByCustomer(_ context.Context, customerID model.CustomerID) ([]model.Reservation, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    var out []model.Reservation
    for _, row := range s.rows {
        if row.CustomerID != nil && *row.CustomerID == customerID {
            out = append(out, row)
        }
    }
    sort.Slice(out, func(i, j int) bool { return out[i].DateTime.After(out[j].DateTime) })
    return out, nil
}

func (s *memStore) ListByDate(_ context.Context, day time.Time) ([]model.Reservation, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    want := day.Format("2006-01-02")
    var out []model.Reservation
    for _, row := range s.rows {
        if row.DateTime.Format("2006-01-02") == want {
            out = append(out, row)
        }
    }
    sort.Slice(out, func(i, j int) bool { return out[i].DateTime.Before(out[j].DateTime) })
    return out, nil
}

func (s *memStore) ListAll(_ context.Context) ([]model.Reservation, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    var out []model.Reservation
    for _, row := range s.rows {
        out = append(out, row)
    }
    sort.Slice(out, func(i, j int) bool { return out[i].DateTime.Before(out[j].DateTime) })
    return out, nil
}

func (s *memStore) CountActiveAt(_ context.Context, tableID model.TableID, at time.Time, exclude model.ReservationID) (int, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    n := 0
    for _, row := range s.rows {
        if row.ID == exclude {
            continue
        }
        if row.TableID == tableID && row.DateTime.Equal(at) && row.Status.Active() {
            n++
        }
    }
    return n, nil
}

type memTables struct {
    tables map[model.TableID]model.Table
}

func (f *memTables) Get(_ context.Context, id model.TableID) (model.Table, error) {
    t, ok := f.tables[id]
    if !ok {
        return model.Table{}, repository.ErrTableNotFound
    }
    return t, nil
}

func (f *memTables) List(_ context.Context) ([]model.Table, error) {
    out := make([]model.Table, 0, len(f.tables))
    for _, t := range f.tables {
        out = append(out, t)
    }
    sort.Slice(out, func(i, j int) bool {
        if out[i].Zone != out[j].Zone {
            return out[i].Zone < out[j].Zone
        }
        return out[i].TableNumber < out[j].TableNumber
    })
    return out, nil
}

type memPolicies struct {
    hours  map[int]model.BusinessHours
    cutoff map[model.PolicyKind]int
}

func (f *memPolicies) BusinessHours(_ context.Context, day int) (model.BusinessHours, error) {
    h, ok := f.hours[day]
    if !ok {
        return model.BusinessHours{}, repository.ErrClosedDay
    }
    return h, nil
}

func (f *memPolicies) CutoffHours(_ context.Context, kind model.PolicyKind) (int, error) {
    h, ok := f.cutoff[kind]
    if !ok {
        return 0, repository.ErrPolicyNotFound
    }
    return h, nil
}

type memNotifier struct {
    mu        sync.Mutex
    confirmed []queue.ReservationConfirmedEvent
    cancelled []queue.ReservationCancelledEvent
    err       error
}

func (n *memNotifier) ReservationConfirmed(_ context.Context, ev queue.ReservationConfirmedEvent) error {
    n.mu.Lock()
    defer n.mu.Unlock()
    if n.err != nil {
        return n.err
    }
    n.confirmed = append(n.confirmed, ev)
    return nil
}

func (n *memNotifier) ReservationCancelled(_ context.Context, ev queue.ReservationCancelledEvent) error {
    n.mu.Lock()
    defer n.mu.Unlock()
    if n.err != nil {
        return n.err
    }
    n.cancelled = append(n.cancelled, ev)
    return nil
}

// ----- fixture -----

type fixture struct {
    svc      *ReservationService
    store    *memStore
    notifier *memNotifier
    clk      *clock.Fake
}

func testTables() *memTables {
    return &memTables{tables: map[model.TableID]model.Table{
        4: {ID: 4, TableNumber: "T4", Capacity: 4, Zone: "main", BasePriceCents: 2500},
        7: {ID: 7, TableNumber: "T7", Capacity: 2, Zone: "patio", BasePriceCents: 3000, SurchargeCents: 1000},
    }}
}

func testPolicies() *memPolicies {
    hours := make(map[int]model.BusinessHours, 7)
    for d := 1; d <= 7; d++ {
        hours[d] = model.BusinessHours{DayOfWeek: d, Open: model.DayTime{Hour: 11}, Close: model.DayTime{Hour: 22}}
    }
    return &memPolicies{
        hours: hours,
        cutoff: map[model.PolicyKind]int{
            model.PolicyCancellation: 2,
            model.PolicyModification: 2,
        },
    }
}

func newFixture() *fixture {
    store := newMemStore()
    notifier := &memNotifier{}
    clk := clock.NewFake(testNow)
    return &fixture{
        svc:      New(clk, store, testTables(), testPolicies(), notifier),
        store:    store,
        notifier: notifier,
        clk:      clk,
    }
}

var (
    alice = model.Actor{ID: 1, Role: model.RoleCustomer}
    bob   = model.Actor{ID: 2, Role: model.RoleCustomer}
    host  = model.Actor{ID: 10, Role: model.RoleStaff}
)

func tomorrowAt(h, m int) time.Time {
    return time.Date(2025, 10, 21, h, m, 0, 0, testZone)
}

func makeInput(at time.Time) CreateInput {
    return CreateInput{
        CustomerName: "Alice Moreno",
        Contact:      "alice@example.com",
        TableID:      4,
        DateTime:     at,
        PartySize:    3,
        Notes:        "window seat",
    }
}

// ----- create -----

func TestCreateReservation(t *testing.T) {
    f := newFixture()
    res, err := f.svc.Create(context.Background(), makeInput(tomorrowAt(18, 0)), alice)
    if err != nil {
        t.Fatal(err)
    }
    if res.ID == 0 {
        t.Error("id not assigned")
    }
    if len(res.ReferenceID) != 16 {
        t.Errorf("reference %q: want 16 chars", res.ReferenceID)
    }
    if res.Status != model.StatusConfirmed {
        t.Errorf("status = %s, want confirmed", res.Status)
    }
    if res.CustomerID == nil || *res.CustomerID != alice.ID {
        t.Error("reservation not owned by creating customer")
    }
    if !res.DateTime.Equal(tomorrowAt(18, 0)) {
        t.Errorf("date_time = %s", res.DateTime)
    }

    if len(f.notifier.confirmed) != 1 {
        t.Fatalf("confirmed events = %d, want 1", len(f.notifier.confirmed))
    }
    ev := f.notifier.confirmed[0]
    if ev.ReferenceID != string(res.ReferenceID) || ev.TableNumber != "T4" || ev.PriceCents != 2500 {
        t.Errorf("unexpected event %+v", ev)
    }
}

func TestCreateWalkInHasNoOwner(t *testing.T) {
    f := newFixture()
    res, err := f.svc.Create(context.Background(), makeInput(tomorrowAt(18, 0)), host)
    if err != nil {
        t.Fatal(err)
    }
    if res.CustomerID != nil {
        t.Error("staff walk-in must not carry a customer id")
    }
}

func TestCreateSecondsTruncated(t *testing.T) {
    f := newFixture()
    in := makeInput(tomorrowAt(18, 0).Add(42 * time.Second))
    res, err := f.svc.Create(context.Background(), in, alice)
    if err != nil {
        t.Fatal(err)
    }
    if !res.DateTime.Equal(tomorrowAt(18, 0)) {
        t.Errorf("seconds survived truncation: %s", res.DateTime)
    }
}

func TestCreateValidationOrder(t *testing.T) {
    f := newFixture()
    // Occupy the 18:00 slot on table 4 for the conflict case.
    if _, err := f.svc.Create(context.Background(), makeInput(tomorrowAt(18, 0)), alice); err != nil {
        t.Fatal(err)
    }

    cases := []struct {
        name string
        in   CreateInput
        want error
    }{
        {
            // past trumps everything else wrong with the request
            name: "past time first",
            in:   CreateInput{CustomerName: "x", Contact: "x", TableID: 99, DateTime: testNow.Add(-time.Hour), PartySize: 50},
            want: ErrPastTime,
        },
        {
            name: "outside hours before capacity",
            in:   CreateInput{CustomerName: "x", Contact: "x", TableID: 4, DateTime: tomorrowAt(23, 30), PartySize: 50},
            want: ErrOutsideHours,
        },
        {
            name: "unknown table",
            in:   CreateInput{CustomerName: "x", Contact: "x", TableID: 99, DateTime: tomorrowAt(19, 0), PartySize: 2},
            want: ErrUnknownTable,
        },
        {
            name: "capacity before conflict",
            in:   CreateInput{CustomerName: "x", Contact: "x", TableID: 4, DateTime: tomorrowAt(18, 0), PartySize: 5},
            want: ErrCapacityExceeded,
        },
        {
            name: "conflict last",
            in:   CreateInput{CustomerName: "x", Contact: "x", TableID: 4, DateTime: tomorrowAt(18, 0), PartySize: 2},
            want: ErrTableConflict,
        },
    }
    for _, c := range cases {
        _, err := f.svc.Create(context.Background(), c.in, alice)
        if !errors.Is(err, c.want) {
            t.Errorf("%s: got %v, want %v", c.name, err, c.want)
        }
    }
}

func TestCreateSameTableDifferentMinuteNoConflict(t *testing.T) {
    f := newFixture()
    if _, err := f.svc.Create(context.Background(), makeInput(tomorrowAt(18, 0)), alice); err != nil {
        t.Fatal(err)
    }
    if _, err := f.svc.Create(context.Background(), makeInput(tomorrowAt(18, 1)), bob); err != nil {
        t.Fatalf("adjacent minute rejected: %v", err)
    }
}

func TestCreateCancelledSlotReusable(t *testing.T) {
    f := newFixture()
    res, err := f.svc.Create(context.Background(), makeInput(tomorrowAt(18, 0)), alice)
    if err != nil {
        t.Fatal(err)
    }
    if err := f.svc.Cancel(context.Background(), res.ReferenceID, alice); err != nil {
        t.Fatal(err)
    }
    if _, err := f.svc.Create(context.Background(), makeInput(tomorrowAt(18, 0)), bob); err != nil {
        t.Fatalf("cancelled slot not freed: %v", err)
    }
}

func TestCreateDuplicateReferenceRetry(t *testing.T) {
    f := newFixture()
    f.store.forceDuplicates = 2
    if _, err := f.svc.Create(context.Background(), makeInput(tomorrowAt(18, 0)), alice); err != nil {
        t.Fatalf("two collisions should be retried away: %v", err)
    }

    f = newFixture()
    f.store.forceDuplicates = 3
    _, err := f.svc.Create(context.Background(), makeInput(tomorrowAt(18, 0)), alice)
    if !errors.Is(err, ErrInternal) {
        t.Fatalf("exhausted retries: got %v, want ErrInternal", err)
    }
}

func TestCreateNotifierFailureIsSwallowed(t *testing.T) {
    f := newFixture()
    f.notifier.err = errors.New("broker down")
    res, err := f.svc.Create(context.Background(), makeInput(tomorrowAt(18, 0)), alice)
    if err != nil {
        t.Fatalf("notifier failure must not fail the booking: %v", err)
    }
    if _, err := f.svc.Lookup(context.Background(), res.ReferenceID); err != nil {
        t.Fatalf("booking not persisted: %v", err)
    }
}

func TestConcurrentCreateSingleWinner(t *testing.T) {
    f := newFixture()
    const attempts = 8
    errs := make([]error, attempts)
    var wg sync.WaitGroup
    for i := 0; i < attempts; i++ {
        wg.Add(1)
        go func(i int) {
            defer wg.Done()
            _, errs[i] = f.svc.Create(context.Background(), makeInput(tomorrowAt(18, 0)), alice)
        }(i)
    }
    wg.Wait()

    wins, conflicts := 0, 0
    for _, err := range errs {
        switch {
        case err == nil:
            wins++
        case errors.Is(err, ErrTableConflict):
            conflicts++
        default:
            t.Errorf("unexpected error: %v", err)
        }
    }
    if wins != 1 || conflicts != attempts-1 {
        t.Errorf("wins=%d conflicts=%d, want 1/%d", wins, conflicts, attempts-1)
    }
}

// ----- modify -----

func TestModifyReservation(t *testing.T) {
    f := newFixture()
    res, err := f.svc.Create(context.Background(), makeInput(tomorrowAt(18, 0)), alice)
    if err != nil {
        t.Fatal(err)
    }
    updated, err := f.svc.Modify(context.Background(), res.ReferenceID, Changes{
        TableID:   7,
        DateTime:  tomorrowAt(19, 30),
        PartySize: 2,
        Notes:     "anniversary",
    }, alice)
    if err != nil {
        t.Fatal(err)
    }
    if updated.TableID != 7 || updated.PartySize != 2 || updated.Notes != "anniversary" {
        t.Errorf("changes not applied: %+v", updated)
    }
    if !updated.DateTime.Equal(tomorrowAt(19, 30)) {
        t.Errorf("date_time = %s", updated.DateTime)
    }
    if updated.ReferenceID != res.ReferenceID || updated.Status != model.StatusConfirmed {
        t.Error("reference or status changed on modify")
    }
}

func TestModifySameSlotNotSelfConflict(t *testing.T) {
    f := newFixture()
    res, err := f.svc.Create(context.Background(), makeInput(tomorrowAt(18, 0)), alice)
    if err != nil {
        t.Fatal(err)
    }
    // Same table, same minute: only the party size changes.
    if _, err := f.svc.Modify(context.Background(), res.ReferenceID, Changes{
        TableID:   4,
        DateTime:  tomorrowAt(18, 0),
        PartySize: 2,
    }, alice); err != nil {
        t.Fatalf("reservation conflicts with itself: %v", err)
    }
}

func TestModifyCutoff(t *testing.T) {
    f := newFixture()
    // 13:30 today: inside hours, in the future, but within the 2h cutoff.
    at := time.Date(2025, 10, 20, 13, 30, 0, 0, testZone)
    res, err := f.svc.Create(context.Background(), makeInput(at), alice)
    if err != nil {
        t.Fatal(err)
    }
    _, err = f.svc.Modify(context.Background(), res.ReferenceID, Changes{
        TableID: 4, DateTime: tomorrowAt(18, 0), PartySize: 2,
    }, alice)
    if !errors.Is(err, ErrCutoffPassed) {
        t.Fatalf("got %v, want ErrCutoffPassed", err)
    }
}

func TestModifyOwnership(t *testing.T) {
    f := newFixture()
    res, err := f.svc.Create(context.Background(), makeInput(tomorrowAt(18, 0)), alice)
    if err != nil {
        t.Fatal(err)
    }
    _, err = f.svc.Modify(context.Background(), res.ReferenceID, Changes{
        TableID: 4, DateTime: tomorrowAt(19, 0), PartySize: 2,
    }, bob)
    if !errors.Is(err, ErrForbidden) {
        t.Fatalf("got %v, want ErrForbidden", err)
    }
    // Staff may modify anyone's booking.
    if _, err := f.svc.Modify(context.Background(), res.ReferenceID, Changes{
        TableID: 4, DateTime: tomorrowAt(19, 0), PartySize: 2,
    }, host); err != nil {
        t.Fatalf("staff modify: %v", err)
    }
}

func TestModifyNonConfirmed(t *testing.T) {
    f := newFixture()
    res, err := f.svc.Create(context.Background(), makeInput(tomorrowAt(18, 0)), alice)
    if err != nil {
        t.Fatal(err)
    }
    if err := f.svc.MarkSeated(context.Background(), res.ID, host); err != nil {
        t.Fatal(err)
    }
    _, err = f.svc.Modify(context.Background(), res.ReferenceID, Changes{
        TableID: 4, DateTime: tomorrowAt(19, 0), PartySize: 2,
    }, alice)
    if !errors.Is(err, ErrNotModifiable) {
        t.Fatalf("got %v, want ErrNotModifiable", err)
    }
}

// ----- cancel -----

func TestCancelReservation(t *testing.T) {
    f := newFixture()
    res, err := f.svc.Create(context.Background(), makeInput(tomorrowAt(18, 0)), alice)
    if err != nil {
        t.Fatal(err)
    }
    if err := f.svc.Cancel(context.Background(), res.ReferenceID, alice); err != nil {
        t.Fatal(err)
    }
    got, err := f.svc.Lookup(context.Background(), res.ReferenceID)
    if err != nil {
        t.Fatal(err)
    }
    if got.Status != model.StatusCancelled {
        t.Errorf("status = %s, want cancelled", got.Status)
    }
    if len(f.notifier.cancelled) != 1 {
        t.Fatalf("cancelled events = %d, want 1", len(f.notifier.cancelled))
    }
    if err := f.svc.Cancel(context.Background(), res.ReferenceID, alice); !errors.Is(err, ErrNotCancelable) {
        t.Fatalf("second cancel: got %v, want ErrNotCancelable", err)
    }
}

func TestCancelCutoff(t *testing.T) {
    f := newFixture()
    at := time.Date(2025, 10, 20, 13, 30, 0, 0, testZone)
    res, err := f.svc.Create(context.Background(), makeInput(at), alice)
    if err != nil {
        t.Fatal(err)
    }
    if err := f.svc.Cancel(context.Background(), res.ReferenceID, alice); !errors.Is(err, ErrCutoffPassed) {
        t.Fatalf("got %v, want ErrCutoffPassed", err)
    }
    // Staff are bound by the same customer-facing rule through this path.
    if err := f.svc.Cancel(context.Background(), res.ReferenceID, host); !errors.Is(err, ErrCutoffPassed) {
        t.Fatalf("staff cancel inside cutoff: got %v, want ErrCutoffPassed", err)
    }
}

// ----- lifecycle -----

func TestLifecycleTransitions(t *testing.T) {
    f := newFixture()
    res, err := f.svc.Create(context.Background(), makeInput(tomorrowAt(18, 0)), alice)
    if err != nil {
        t.Fatal(err)
    }

    if err := f.svc.Complete(context.Background(), res.ID, host); !errors.Is(err, ErrInvalidTransition) {
        t.Fatalf("confirmed->completed: got %v, want ErrInvalidTransition", err)
    }
    if err := f.svc.MarkSeated(context.Background(), res.ID, alice); !errors.Is(err, ErrForbidden) {
        t.Fatalf("customer transition: got %v, want ErrForbidden", err)
    }
    if err := f.svc.MarkSeated(context.Background(), res.ID, host); err != nil {
        t.Fatal(err)
    }
    if err := f.svc.MarkNoShow(context.Background(), res.ID, host); !errors.Is(err, ErrInvalidTransition) {
        t.Fatalf("seated->no-show: got %v, want ErrInvalidTransition", err)
    }
    if err := f.svc.Complete(context.Background(), res.ID, host); err != nil {
        t.Fatal(err)
    }
    if err := f.svc.MarkSeated(context.Background(), res.ID, host); !errors.Is(err, ErrInvalidTransition) {
        t.Fatalf("completed->seated: got %v, want ErrInvalidTransition", err)
    }
}

func TestNoShowFreesSlot(t *testing.T) {
    f := newFixture()
    res, err := f.svc.Create(context.Background(), makeInput(tomorrowAt(18, 0)), alice)
    if err != nil {
        t.Fatal(err)
    }
    if err := f.svc.MarkNoShow(context.Background(), res.ID, host); err != nil {
        t.Fatal(err)
    }
    if _, err := f.svc.Create(context.Background(), makeInput(tomorrowAt(18, 0)), bob); err != nil {
        t.Fatalf("no-show slot not freed: %v", err)
    }
}

// ----- interleaved writers -----

// hookedStore interposes one-shot callbacks on reads so a test can
// commit a competing write exactly between another operation's status
// check and its write.
type hookedStore struct {
    *memStore
    beforeCount func() // runs before CountActiveAt
    afterGet    func() // runs after GetByReference
    afterGetID  func() // runs after GetByID
}

func (s *hookedStore) CountActiveAt(ctx context.Context, tableID model.TableID, at time.Time, exclude model.ReservationID) (int, error) {
    if f := s.beforeCount; f != nil {
        s.beforeCount = nil
        f()
    }
    return s.memStore.CountActiveAt(ctx, tableID, at, exclude)
}

func (s *hookedStore) GetByReference(ctx context.Context, ref model.ReferenceID) (*model.Reservation, error) {
    res, err := s.memStore.GetByReference(ctx, ref)
    if f := s.afterGet; f != nil {
        s.afterGet = nil
        f()
    }
    return res, err
}

func (s *hookedStore) GetByID(ctx context.Context, id model.ReservationID) (*model.Reservation, error) {
    res, err := s.memStore.GetByID(ctx, id)
    if f := s.afterGetID; f != nil {
        s.afterGetID = nil
        f()
    }
    return res, err
}

func newHookedFixture() (*hookedStore, *memNotifier, *ReservationService) {
    store := &hookedStore{memStore: newMemStore()}
    notifier := &memNotifier{}
    svc := New(clock.NewFake(testNow), store, testTables(), testPolicies(), notifier)
    return store, notifier, svc
}

func TestModifyDoesNotResurrectCancelled(t *testing.T) {
    store, notifier, svc := newHookedFixture()
    res, err := svc.Create(context.Background(), makeInput(tomorrowAt(18, 0)), alice)
    if err != nil {
        t.Fatal(err)
    }

    // A cancel commits after Modify's status check, while it is still
    // counting conflicts.  The guarded write must reject the modify
    // instead of writing confirmed back over cancelled.
    store.beforeCount = func() {
        if err := svc.Cancel(context.Background(), res.ReferenceID, alice); err != nil {
            t.Errorf("interleaved cancel: %v", err)
        }
    }
    _, err = svc.Modify(context.Background(), res.ReferenceID, Changes{
        TableID: 4, DateTime: tomorrowAt(19, 0), PartySize: 2,
    }, alice)
    if !errors.Is(err, ErrNotModifiable) {
        t.Fatalf("got %v, want ErrNotModifiable", err)
    }

    got, err := svc.Lookup(context.Background(), res.ReferenceID)
    if err != nil {
        t.Fatal(err)
    }
    if got.Status != model.StatusCancelled {
        t.Fatalf("status = %s, want cancelled to stick", got.Status)
    }
    if len(notifier.cancelled) != 1 {
        t.Errorf("cancelled events = %d, want 1", len(notifier.cancelled))
    }
}

func TestCancelLosesToConcurrentSeating(t *testing.T) {
    store, notifier, svc := newHookedFixture()
    res, err := svc.Create(context.Background(), makeInput(tomorrowAt(18, 0)), alice)
    if err != nil {
        t.Fatal(err)
    }

    // The host seats the party right after Cancel reads the row.
    store.afterGet = func() {
        if err := svc.MarkSeated(context.Background(), res.ID, host); err != nil {
            t.Errorf("interleaved seating: %v", err)
        }
    }
    if err := svc.Cancel(context.Background(), res.ReferenceID, alice); !errors.Is(err, ErrNotCancelable) {
        t.Fatalf("got %v, want ErrNotCancelable", err)
    }

    got, err := svc.Lookup(context.Background(), res.ReferenceID)
    if err != nil {
        t.Fatal(err)
    }
    if got.Status != model.StatusSeated {
        t.Fatalf("status = %s, want seated to stick", got.Status)
    }
    if len(notifier.cancelled) != 0 {
        t.Errorf("cancelled events = %d, want none for a rejected cancel", len(notifier.cancelled))
    }
}

func TestTransitionLosesToConcurrentCancel(t *testing.T) {
    store, _, svc := newHookedFixture()
    res, err := svc.Create(context.Background(), makeInput(tomorrowAt(18, 0)), alice)
    if err != nil {
        t.Fatal(err)
    }

    store.afterGetID = func() {
        if err := svc.Cancel(context.Background(), res.ReferenceID, alice); err != nil {
            t.Errorf("interleaved cancel: %v", err)
        }
    }
    if err := svc.MarkSeated(context.Background(), res.ID, host); !errors.Is(err, ErrInvalidTransition) {
        t.Fatalf("got %v, want ErrInvalidTransition", err)
    }

    got, err := svc.Lookup(context.Background(), res.ReferenceID)
    if err != nil {
        t.Fatal(err)
    }
    if got.Status != model.StatusCancelled {
        t.Fatalf("status = %s, want cancelled to stick", got.Status)
    }
}

// ----- reassign -----

func TestReassign(t *testing.T) {
    f := newFixture()
    res, err := f.svc.Create(context.Background(), makeInput(tomorrowAt(18, 0)), alice)
    if err != nil {
        t.Fatal(err)
    }
    // Staff override skips hours and capacity rules: 23:30 is after close.
    if err := f.svc.Reassign(context.Background(), res.ID, 7, tomorrowAt(23, 30), host); err != nil {
        t.Fatal(err)
    }
    got, err := f.svc.Lookup(context.Background(), res.ReferenceID)
    if err != nil {
        t.Fatal(err)
    }
    if got.TableID != 7 || !got.DateTime.Equal(tomorrowAt(23, 30)) {
        t.Errorf("reassign not applied: %+v", got)
    }

    if err := f.svc.Reassign(context.Background(), res.ID, 4, tomorrowAt(18, 0), alice); !errors.Is(err, ErrForbidden) {
        t.Fatalf("customer reassign: got %v, want ErrForbidden", err)
    }
}

func TestReassignConflictBlocked(t *testing.T) {
    f := newFixture()
    first, err := f.svc.Create(context.Background(), makeInput(tomorrowAt(18, 0)), alice)
    if err != nil {
        t.Fatal(err)
    }
    in := makeInput(tomorrowAt(19, 0))
    second, err := f.svc.Create(context.Background(), in, bob)
    if err != nil {
        t.Fatal(err)
    }
    err = f.svc.Reassign(context.Background(), second.ID, first.TableID, first.DateTime, host)
    if !errors.Is(err, ErrTableConflict) {
        t.Fatalf("got %v, want ErrTableConflict", err)
    }
}

// ----- queries -----

func TestListForCustomerIsolation(t *testing.T) {
    f := newFixture()
    if _, err := f.svc.Create(context.Background(), makeInput(tomorrowAt(18, 0)), alice); err != nil {
        t.Fatal(err)
    }
    in := makeInput(tomorrowAt(19, 0))
    in.CustomerName = "Bob Tran"
    if _, err := f.svc.Create(context.Background(), in, bob); err != nil {
        t.Fatal(err)
    }

    mine, err := f.svc.ListForCustomer(context.Background(), alice.ID, alice)
    if err != nil {
        t.Fatal(err)
    }
    if len(mine) != 1 || mine[0].CustomerName != "Alice Moreno" {
        t.Errorf("unexpected listing: %+v", mine)
    }

    if _, err := f.svc.ListForCustomer(context.Background(), alice.ID, bob); !errors.Is(err, ErrForbidden) {
        t.Fatalf("cross-customer listing: got %v, want ErrForbidden", err)
    }
    if _, err := f.svc.ListForCustomer(context.Background(), alice.ID, host); err != nil {
        t.Fatalf("staff listing a customer: %v", err)
    }
}

func TestGetByReferenceOwnership(t *testing.T) {
    f := newFixture()
    res, err := f.svc.Create(context.Background(), makeInput(tomorrowAt(18, 0)), alice)
    if err != nil {
        t.Fatal(err)
    }
    if _, err := f.svc.GetByReference(context.Background(), res.ReferenceID, bob); !errors.Is(err, ErrForbidden) {
        t.Fatalf("got %v, want ErrForbidden", err)
    }
    if _, err := f.svc.GetByReference(context.Background(), res.ReferenceID, host); err != nil {
        t.Fatal(err)
    }
    // The unauthenticated lookup works with the token alone.
    if _, err := f.svc.Lookup(context.Background(), res.ReferenceID); err != nil {
        t.Fatal(err)
    }
    if _, err := f.svc.Lookup(context.Background(), "NOSUCHREFERENCE1"); !errors.Is(err, ErrNotFound) {
        t.Fatalf("got %v, want ErrNotFound", err)
    }
}

func TestStaffListings(t *testing.T) {
    f := newFixture()
    if _, err := f.svc.Create(context.Background(), makeInput(tomorrowAt(19, 0)), alice); err != nil {
        t.Fatal(err)
    }
    if _, err := f.svc.Create(context.Background(), makeInput(tomorrowAt(18, 0)), bob); err != nil {
        t.Fatal(err)
    }

    all, err := f.svc.ListAll(context.Background(), host)
    if err != nil {
        t.Fatal(err)
    }
    if len(all) != 2 || !all[0].DateTime.Before(all[1].DateTime) {
        t.Errorf("expected 2 rows in seating order, got %+v", all)
    }

    day, err := f.svc.ListByDate(context.Background(), tomorrowAt(0, 0), host)
    if err != nil {
        t.Fatal(err)
    }
    if len(day) != 2 {
        t.Errorf("day listing = %d rows, want 2", len(day))
    }

    if _, err := f.svc.ListAll(context.Background(), alice); !errors.Is(err, ErrForbidden) {
        t.Fatalf("customer ListAll: got %v, want ErrForbidden", err)
    }
}
