// Package queue defines message payloads exchanged over the message broker.
package queue

// ReservationConfirmedEvent is published when a booking is successfully
// created.  It carries enough information for downstream consumers to
// notify the guest or feed analytics without querying the primary
// database.
type ReservationConfirmedEvent struct {
    ReferenceID  string `json:"reference_id"`
    CustomerName string `json:"customer_name"`
    Contact      string `json:"contact"`
    DateTime     string `json:"date_time"` // local time, ISO-8601 minute precision
    TableID      uint64 `json:"table_id"`
    TableNumber  string `json:"table_number"`
    PartySize    int    `json:"party_size"`
    PriceCents   int64  `json:"price_cents"`
    Notes        string `json:"notes,omitempty"`
}

// ReservationCancelledEvent is published when a booking is cancelled.
type ReservationCancelledEvent struct {
    ReferenceID      string `json:"reference_id"`
    CustomerName     string `json:"customer_name"`
    Contact          string `json:"contact"`
    OriginalDateTime string `json:"original_date_time"`
}
