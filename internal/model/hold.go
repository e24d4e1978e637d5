package model

import "time"

// HoldState tracks where a hold sits in its lifecycle.  A hold is created
// active and ends in exactly one terminal state.  Terminal holds are kept
// in the registry for a retention window so that duplicate release or
// promote requests can be answered deterministically instead of being
// mistaken for unknown identifiers.
type HoldState string

const (
    HoldActive   HoldState = "active"   // seats are holding, TTL running
    HoldReleased HoldState = "released" // explicitly released by the caller
    HoldExpired  HoldState = "expired"  // reclaimed by the expiry sweeper
    HoldPromoted HoldState = "promoted" // converted into a reservation
)

// Terminal reports whether the state is one of the end states.
func (s HoldState) Terminal() bool { return s != HoldActive }

// Hold is a time-limited exclusive claim over a set of seats for one
// performance.  The seat set is fixed at creation; release and promotion
// always act on the whole set.  A seat belongs to at most one live hold,
// and every hold is addressed strictly by its identifier so that a stale
// release can never affect a newer hold over the same seats.
//
// Fields:
//  ID            – monotonically assigned identifier, e.g. "hold-42-a1b2…".
//  Key           – performance the seats belong to.
//  UserID        – requesting user.
//  Seats         – full seat payloads as submitted by the client.
//  State         – lifecycle state, see HoldState.
//  ReservationID – set once the hold has been promoted.
//  CreatedAt     – creation timestamp (UTC).
//  ExpiresAt     – CreatedAt + TTL (UTC).
type Hold struct {
    ID            string         `json:"holdingId"`
    Key           PerformanceKey `json:"-"`
    UserID        string         `json:"userId"`
    Seats         []Seat         `json:"seats"`
    State         HoldState      `json:"-"`
    ReservationID string         `json:"-"`
    CreatedAt     time.Time      `json:"createdAt"`
    ExpiresAt     time.Time      `json:"expiresAt"`
}

// SeatIDs returns the IDs of the held seats.
func (h *Hold) SeatIDs() []string { return SeatIDs(h.Seats) }

// ExpiredAt reports whether the hold's TTL has elapsed at the given instant.
func (h *Hold) ExpiredAt(now time.Time) bool { return now.After(h.ExpiresAt) }

// TotalPrice sums the per-seat prices of the hold.
func (h *Hold) TotalPrice() uint32 {
    var total uint32
    for _, s := range h.Seats {
        total += s.Price
    }
    return total
}
