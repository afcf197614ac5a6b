package service

import (
    "context"
    "time"

    "github.com/pizzas505/table-reservation/internal/model"
)

// TableAvailability is one row of the availability projection: a table,
// its price for the slot, and whether it is free at the asked instant.
type TableAvailability struct {
    Table      model.Table
    PriceCents int64
    Available  bool
}

// Availability projects which tables could host a party at an instant.
// It is a read-only view: a table shown as available can still be lost
// to a concurrent booking, the create path re-checks under the slot
// lock.  Tables smaller than the party are filtered out entirely;
// occupied tables of sufficient size are listed as unavailable.
func (s *ReservationService) Availability(ctx context.Context, at time.Time, partySize int) ([]TableAvailability, error) {
    slot := s.atMinute(at)

    tables, err := s.tables.List(ctx)
    if err != nil {
        return nil, internal(err)
    }

    out := make([]TableAvailability, 0, len(tables))
    for _, t := range tables {
        if partySize > 0 && t.Capacity < partySize {
            continue
        }
        n, err := s.store.CountActiveAt(ctx, t.ID, slot, model.NoReservation)
        if err != nil {
            return nil, internal(err)
        }
        out = append(out, TableAvailability{
            Table:      t,
            PriceCents: t.TotalPriceCents(),
            Available:  n == 0,
        })
    }
    return out, nil
}

// Tables exposes the catalog for the floor-plan listing endpoints.
func (s *ReservationService) Tables(ctx context.Context) ([]model.Table, error) {
    tables, err := s.tables.List(ctx)
    if err != nil {
        return nil, internal(err)
    }
    return tables, nil
}
