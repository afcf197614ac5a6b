package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/pizzas505/table-reservation/internal/model"
)

// TableRepo is the read-only catalog of dining tables.  Writes go
// through the admin surface, which enforces capacity >= 1, non-negative
// prices and unique table numbers; the reservation core only reads.
type TableRepo struct {
    db *sql.DB
}

// NewTableRepo returns a new TableRepo bound to the given database.
func NewTableRepo(db *sql.DB) *TableRepo { return &TableRepo{db: db} }

const tableColumns = `id, table_number, capacity, zone, base_price_cents, surcharge_cents`

// Get loads one table by id.  A miss yields ErrTableNotFound.
func (r *TableRepo) Get(ctx context.Context, id model.TableID) (model.Table, error) {
    const q = `SELECT ` + tableColumns + ` FROM tables WHERE id = ?`
    var t model.Table
    err := r.db.QueryRowContext(ctx, q, uint64(id)).Scan(
        &t.ID, &t.TableNumber, &t.Capacity, &t.Zone, &t.BasePriceCents, &t.SurchargeCents,
    )
    if errors.Is(err, sql.ErrNoRows) {
        return model.Table{}, ErrTableNotFound
    }
    return t, err
}

// List returns every table ordered by zone then table number, the order
// the floor-plan view renders them in.
func (r *TableRepo) List(ctx context.Context) ([]model.Table, error) {
    const q = `SELECT ` + tableColumns + ` FROM tables ORDER BY zone, table_number`
    rows, err := r.db.QueryContext(ctx, q)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.Table, 0)
    for rows.Next() {
        var t model.Table
        if err := rows.Scan(&t.ID, &t.TableNumber, &t.Capacity, &t.Zone, &t.BasePriceCents, &t.SurchargeCents); err != nil {
            return nil, err
        }
        out = append(out, t)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}

// Capacity returns the seat count for a table.
func (r *TableRepo) Capacity(ctx context.Context, id model.TableID) (int, error) {
    t, err := r.Get(ctx, id)
    if err != nil {
        return 0, err
    }
    return t.Capacity, nil
}

// Price returns the total reservation price for a table in cents:
// base price plus surcharge.
func (r *TableRepo) Price(ctx context.Context, id model.TableID) (int64, error) {
    t, err := r.Get(ctx, id)
    if err != nil {
        return 0, err
    }
    return t.TotalPriceCents(), nil
}
