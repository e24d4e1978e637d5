// Package queue defines message payloads exchanged over the message broker.
package queue

// ReservationConfirmedEvent is published when a hold is promoted into a
// confirmed reservation.  It carries enough information for downstream
// consumers to log, notify or feed analytics without querying the engine.
type ReservationConfirmedEvent struct {
    ReservationID string   `json:"reservation_id"`
    HoldingID     string   `json:"holding_id"`
    PerformanceID string   `json:"performance_id"`
    Date          string   `json:"date"`
    Time          string   `json:"time"`
    UserID        string   `json:"user_id"`
    SeatIDs       []string `json:"seats"`
    TotalPrice    uint32   `json:"total_price"`
    ConfirmedAt   string   `json:"confirmed_at"`
}
