package model

// Table describes a physical table in the dining room.  Tables are
// read-only as far as the reservation core is concerned; the catalog
// enforces capacity >= 1, non-negative prices and unique table numbers
// on its own write path.
//
// Fields:
//  ID             – primary key identifier.
//  TableNumber    – unique label printed on the floor plan (e.g. "T4").
//  Capacity       – maximum party size the table seats.
//  Zone           – area of the dining room (main, patio, vip ...).
//  BasePriceCents – standard reservation fee in cents.
//  SurchargeCents – additional fee for premium zones, in cents.
type Table struct {
    ID             TableID // tables.id
    TableNumber    string  // tables.table_number
    Capacity       int     // tables.capacity
    Zone           string  // tables.zone
    BasePriceCents int64   // tables.base_price_cents
    SurchargeCents int64   // tables.surcharge_cents
}

// TotalPriceCents is the reservation price for the table: base price
// plus zone surcharge.
func (t Table) TotalPriceCents() int64 {
    return t.BasePriceCents + t.SurchargeCents
}
