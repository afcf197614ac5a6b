package repository

import (
    "context"
    "database/sql"
    "errors"
    "strings"
    "time"

    "github.com/pizzas505/table-reservation/internal/model"
)

// ReservationRepo persists reservations and provides the query paths
// used by the service layer.  All timestamp columns are DATETIME values
// in the restaurant's configured zone (the connection DSN pins loc).
// Every mutation is a single committed unit: either the statement
// applies fully or the store is left untouched.
type ReservationRepo struct {
    db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// DB exposes the underlying pool for handlers that need to open a
// transaction spanning multiple repositories.
func (r *ReservationRepo) DB() *sql.DB { return r.db }

const reservationColumns = `id, customer_name, contact, table_id, date_time,
       party_size, status, reference_id, notes, customer_id, created_at, modified_at`

// scanReservation reads one reservations row from any row scanner.
func scanReservation(scan func(dest ...any) error) (*model.Reservation, error) {
    var (
        res        model.Reservation
        status     string
        reference  string
        notes      sql.NullString
        customerID sql.NullInt64
    )
    err := scan(
        &res.ID, &res.CustomerName, &res.Contact, &res.TableID, &res.DateTime,
        &res.PartySize, &status, &reference, &notes, &customerID,
        &res.CreatedAt, &res.ModifiedAt,
    )
    if err != nil {
        return nil, err
    }
    res.Status = model.Status(status)
    res.ReferenceID = model.ReferenceID(reference)
    if notes.Valid {
        res.Notes = notes.String
    }
    if customerID.Valid {
        cid := model.CustomerID(customerID.Int64)
        res.CustomerID = &cid
    }
    return &res, nil
}

// Insert persists a draft reservation.  It assigns the generated id and
// the created_at/modified_at timestamps onto the provided record.  A
// collision on the unique reference_id column yields
// ErrDuplicateReference so the caller can retry with a fresh token.
func (r *ReservationRepo) Insert(ctx context.Context, res *model.Reservation) error {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    const q = `INSERT INTO reservations
        (customer_name, contact, table_id, date_time, party_size, status, reference_id, notes, customer_id)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
    var customerID any
    if res.CustomerID != nil {
        customerID = uint64(*res.CustomerID)
    }
    var notes any
    if res.Notes != "" {
        notes = res.Notes
    }
    result, err := tx.ExecContext(ctx, q,
        res.CustomerName, res.Contact, uint64(res.TableID), res.DateTime,
        res.PartySize, string(res.Status), string(res.ReferenceID), notes, customerID,
    )
    if err != nil {
        if isDuplicateKey(err) {
            return ErrDuplicateReference
        }
        return err
    }
    id, err := result.LastInsertId()
    if err != nil {
        return err
    }
    res.ID = model.ReservationID(id)

    // Query back the row to populate the DB-assigned timestamps.
    const sel = `SELECT created_at, modified_at FROM reservations WHERE id = ?`
    if err := tx.QueryRowContext(ctx, sel, id).Scan(&res.CreatedAt, &res.ModifiedAt); err != nil {
        return err
    }
    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}

// UpdateAll replaces the mutable fields of a reservation: name, contact,
// table, time, party size and notes.  Status, reference_id, customer_id
// and created_at are never touched; modified_at is bumped by the store.
// The write is guarded on status = 'confirmed': only confirmed bookings
// are modifiable, and a reservation that was cancelled or seated since
// the caller's read must not be rewritten.  A guard miss yields
// ErrStatusChanged (rows are never deleted, so a zero-row match means
// the status moved).
func (r *ReservationRepo) UpdateAll(ctx context.Context, res *model.Reservation) error {
    const q = `UPDATE reservations
        SET customer_name = ?, contact = ?, table_id = ?, date_time = ?,
            party_size = ?, notes = ?, modified_at = CURRENT_TIMESTAMP
        WHERE id = ? AND status = 'confirmed'`
    var notes any
    if res.Notes != "" {
        notes = res.Notes
    }
    result, err := r.db.ExecContext(ctx, q,
        res.CustomerName, res.Contact, uint64(res.TableID), res.DateTime,
        res.PartySize, notes, uint64(res.ID),
    )
    if err != nil {
        return err
    }
    n, err := result.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrStatusChanged
    }
    return nil
}

// UpdateStatus moves a reservation from one status to another, touching
// status and modified_at only.  The write is conditional on the row
// still holding the from status, so two racing writers cannot both
// apply: the loser sees ErrStatusChanged instead of silently
// overwriting the winner's transition.
func (r *ReservationRepo) UpdateStatus(ctx context.Context, id model.ReservationID, from, to model.Status) error {
    const q = `UPDATE reservations SET status = ?, modified_at = CURRENT_TIMESTAMP WHERE id = ? AND status = ?`
    result, err := r.db.ExecContext(ctx, q, string(to), uint64(id), string(from))
    if err != nil {
        return err
    }
    n, err := result.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrStatusChanged
    }
    return nil
}

// Reassign moves a reservation to a new table and/or time, touching
// table_id, date_time and modified_at only.
func (r *ReservationRepo) Reassign(ctx context.Context, id model.ReservationID, tableID model.TableID, at time.Time) error {
    const q = `UPDATE reservations SET table_id = ?, date_time = ?, modified_at = CURRENT_TIMESTAMP WHERE id = ?`
    result, err := r.db.ExecContext(ctx, q, uint64(tableID), at, uint64(id))
    if err != nil {
        return err
    }
    return requireRow(result)
}

// GetByID loads one reservation by surrogate id.
func (r *ReservationRepo) GetByID(ctx context.Context, id model.ReservationID) (*model.Reservation, error) {
    const q = `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
    row := r.db.QueryRowContext(ctx, q, uint64(id))
    res, err := scanReservation(row.Scan)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrReservationNotFound
    }
    return res, err
}

// GetByReference loads one reservation by its unique reference token.
func (r *ReservationRepo) GetByReference(ctx context.Context, ref model.ReferenceID) (*model.Reservation, error) {
    const q = `SELECT ` + reservationColumns + ` FROM reservations WHERE reference_id = ?`
    row := r.db.QueryRowContext(ctx, q, string(ref))
    res, err := scanReservation(row.Scan)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrReservationNotFound
    }
    return res, err
}

// ListByCustomer returns a customer's reservations, newest scheduled
// time first.
func (r *ReservationRepo) ListByCustomer(ctx context.Context, customerID model.CustomerID) ([]model.Reservation, error) {
    const q = `SELECT ` + reservationColumns + ` FROM reservations
        WHERE customer_id = ? ORDER BY date_time DESC`
    return r.queryMany(ctx, q, uint64(customerID))
}

// ListByDate returns all reservations scheduled on the given local
// calendar day, ordered by time ascending.
func (r *ReservationRepo) ListByDate(ctx context.Context, day time.Time) ([]model.Reservation, error) {
    const q = `SELECT ` + reservationColumns + ` FROM reservations
        WHERE DATE(date_time) = ? ORDER BY date_time ASC`
    return r.queryMany(ctx, q, day.Format("2006-01-02"))
}

// ListAll returns every reservation ordered by scheduled time ascending.
func (r *ReservationRepo) ListAll(ctx context.Context) ([]model.Reservation, error) {
    const q = `SELECT ` + reservationColumns + ` FROM reservations ORDER BY date_time ASC`
    return r.queryMany(ctx, q)
}

// CountActiveAt counts reservations occupying the exact slot
// (tableID, at), ignoring cancelled and no-show rows.  exclude removes
// one reservation from consideration so that modifying a booking within
// its own slot is not a self-conflict; pass model.NoReservation to
// disable exclusion.
func (r *ReservationRepo) CountActiveAt(ctx context.Context, tableID model.TableID, at time.Time, exclude model.ReservationID) (int, error) {
    const q = `SELECT COUNT(*) FROM reservations
        WHERE table_id = ? AND date_time = ?
          AND status NOT IN ('cancelled', 'no-show')
          AND id <> ?`
    var n int
    err := r.db.QueryRowContext(ctx, q, uint64(tableID), at, uint64(exclude)).Scan(&n)
    return n, err
}

func (r *ReservationRepo) queryMany(ctx context.Context, q string, args ...any) ([]model.Reservation, error) {
    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.Reservation, 0)
    for rows.Next() {
        res, err := scanReservation(rows.Scan)
        if err != nil {
            return nil, err
        }
        out = append(out, *res)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}

// requireRow converts a zero-row update into ErrReservationNotFound.
func requireRow(result sql.Result) error {
    n, err := result.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrReservationNotFound
    }
    return nil
}

// isDuplicateKey detects MySQL error 1062 (duplicate entry).
func isDuplicateKey(err error) bool {
    return err != nil && strings.Contains(err.Error(), "1062")
}
