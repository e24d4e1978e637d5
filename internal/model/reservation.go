package model

import "time"

// Reservation statuses.  A reservation is created confirmed and can only
// move to cancelled through the explicit cancellation path; there is no
// pending state because promotion is a single atomic step.
const (
    ReservationConfirmed = "confirmed"
    ReservationCancelled = "cancelled"
)

// Reservation is the durable record produced by promoting a live hold.
// It references the same seat set as the originating hold; once it
// exists, that hold is terminal and the seats are reserved.
//
// Fields:
//  ID         – monotonically assigned identifier, e.g. "res-7-c3d4…".
//  HoldingID  – identifier of the hold this reservation was promoted from.
//  Key        – performance the seats belong to.
//  UserID     – owning user.
//  Seats      – seat payloads carried over from the hold.
//  Status     – confirmed or cancelled.
//  TotalPrice – sum of per-seat prices.
//  CreatedAt  – promotion timestamp (UTC).
//  UpdatedAt  – last status change (UTC).
type Reservation struct {
    ID         string         `json:"reservationId"`
    HoldingID  string         `json:"holdingId"`
    Key        PerformanceKey `json:"-"`
    UserID     string         `json:"userId"`
    Seats      []Seat         `json:"seats"`
    Status     string         `json:"status"`
    TotalPrice uint32         `json:"totalPrice"`
    CreatedAt  time.Time      `json:"createdAt"`
    UpdatedAt  time.Time      `json:"updatedAt"`
}

// SeatIDs returns the IDs of the reserved seats.
func (r *Reservation) SeatIDs() []string { return SeatIDs(r.Seats) }
