package model

import "strings"

// Status enumerates the lifecycle states of a single bookable seat.
// Exactly one status applies to a seat at any instant.  Seats that are
// absent from the seat-state store are implicitly StatusAvailable, which
// keeps the store small and guarantees that a fully released seat leaves
// no residual record behind.
type Status string

const (
    StatusAvailable Status = "available" // seat can be acquired by a new hold
    StatusHolding   Status = "holding"   // seat belongs to exactly one live hold
    StatusReserved  Status = "reserved"  // seat belongs to a confirmed reservation
)

// Valid reports whether s is one of the known seat statuses.
func (s Status) Valid() bool {
    switch s {
    case StatusAvailable, StatusHolding, StatusReserved:
        return true
    }
    return false
}

// PerformanceKey addresses a single sellable performance: a performance
// identifier plus the calendar date and curtain time of the showing.
// All seat mutations are scoped to one performance key so that unrelated
// performances never contend on the same partition.
type PerformanceKey struct {
    PerformanceID string // e.g. "perf-1"
    Date          string // e.g. "2024-12-25"
    Time          string // e.g. "19:00"
}

// String renders the key in a stable, collision-free form suitable for
// use as a map key or a database partition discriminator.  The pipe
// separator never appears in performance IDs, dates or times.
func (k PerformanceKey) String() string {
    return k.PerformanceID + "|" + k.Date + "|" + k.Time
}

// IsZero reports whether any component of the key is missing.
func (k PerformanceKey) IsZero() bool {
    return strings.TrimSpace(k.PerformanceID) == "" ||
        strings.TrimSpace(k.Date) == "" ||
        strings.TrimSpace(k.Time) == ""
}

// Seat carries the client-facing attributes of one seat as they appear in
// hold and reservation payloads.  Only SeatID participates in seat-state
// tracking; the remaining fields are pass-through metadata (grade, price,
// physical position) preserved from the booking request.
type Seat struct {
    SeatID     string `json:"seatId"`
    Row        string `json:"row,omitempty"`
    SeatNumber uint32 `json:"seatNumber,omitempty"`
    Grade      string `json:"grade,omitempty"`
    Price      uint32 `json:"price,omitempty"`
}

// SeatIDs extracts the IDs from a seat slice preserving order.
func SeatIDs(seats []Seat) []string {
    ids := make([]string, 0, len(seats))
    for _, s := range seats {
        ids = append(ids, s.SeatID)
    }
    return ids
}
