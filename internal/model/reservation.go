package model

import "time"

// Reservation is a booking of one table at a specific instant for a
// party of guests.  It is the central entity of the system and is owned
// by the reservation store; every field except ID, ReferenceID and
// CreatedAt is mutable through the service layer.
//
// Fields:
//  ID           – surrogate key assigned on insert.
//  ReferenceID  – unique human-readable token, stable for the life of
//                 the reservation.
//  CustomerID   – owning account; nil for walk-ins created by staff.
//  CustomerName – free-text guest name.
//  Contact      – email address or phone string.
//  TableID      – the reserved table; must resolve in the catalog.
//  DateTime     – scheduled instant in the restaurant's zone, minute
//                 precision.
//  PartySize    – number of guests, at least 1.
//  Status       – lifecycle state (see Status).
//  Notes        – optional free-text.
//  CreatedAt    – set once on insert.
//  ModifiedAt   – bumped on every mutation.
type Reservation struct {
    ID           ReservationID // reservations.id
    ReferenceID  ReferenceID   // reservations.reference_id
    CustomerID   *CustomerID   // reservations.customer_id (nullable)
    CustomerName string        // reservations.customer_name
    Contact      string        // reservations.contact
    TableID      TableID       // reservations.table_id
    DateTime     time.Time     // reservations.date_time
    PartySize    int           // reservations.party_size
    Status       Status        // reservations.status
    Notes        string        // reservations.notes
    CreatedAt    time.Time     // reservations.created_at
    ModifiedAt   time.Time     // reservations.modified_at
}

// OwnedBy reports whether the reservation belongs to the given customer
// account.  Walk-in reservations belong to nobody.
func (r *Reservation) OwnedBy(id CustomerID) bool {
    return r.CustomerID != nil && *r.CustomerID == id
}
