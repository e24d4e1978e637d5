package booking

import (
    "context"
    "fmt"
    "strings"

    "github.com/iliyamo/venue-seat-booking/internal/model"
)

// Facade is the single entry point external callers use.  It validates
// request shape, sequences the hold manager and the promoter, and holds
// no state of its own beyond that validation.  Retry policy after a
// conflict deliberately stays with the caller: the facade reports the
// conflict and does nothing else.
type Facade struct {
    holds    *HoldManager
    promoter *Promoter
}

// NewFacade wires a facade over the hold manager and promoter.  Both
// dependencies must be non-nil.
func NewFacade(holds *HoldManager, promoter *Promoter) *Facade {
    if holds == nil || promoter == nil {
        panic("nil dependency passed to NewFacade")
    }
    return &Facade{holds: holds, promoter: promoter}
}

// HoldRequest is the create-holding input.
type HoldRequest struct {
    PerformanceID string       `json:"performanceId"`
    Date          string       `json:"date"`
    Time          string       `json:"time"`
    Seats         []model.Seat `json:"seats"`
    UserID        string       `json:"userId"`
}

// Key assembles the performance key of the request.
func (r HoldRequest) Key() model.PerformanceKey {
    return model.PerformanceKey{PerformanceID: r.PerformanceID, Date: r.Date, Time: r.Time}
}

// ConfirmRequest is the promote-to-reservation input.
type ConfirmRequest struct {
    HoldingID string `json:"holdingId"`
    UserID    string `json:"userId"`
}

// CreateHolding validates the request and acquires a hold over its seat
// set.  Validation failures return ErrInvalidRequest; seat contention
// returns ErrSeatConflict with the unavailable seats attached.
func (f *Facade) CreateHolding(ctx context.Context, req HoldRequest) (*model.Hold, error) {
    key := req.Key()
    if key.IsZero() {
        return nil, fmt.Errorf("%w: performanceId, date and time are required", ErrInvalidRequest)
    }
    if strings.TrimSpace(req.UserID) == "" {
        return nil, fmt.Errorf("%w: userId is required", ErrInvalidRequest)
    }
    seats := dedupeSeats(req.Seats)
    if len(seats) == 0 {
        return nil, fmt.Errorf("%w: at least one seat is required", ErrInvalidRequest)
    }
    return f.holds.Acquire(ctx, key, seats, req.UserID)
}

// ReleaseHolding releases the identified hold.
func (f *Facade) ReleaseHolding(ctx context.Context, holdingID string) error {
    if strings.TrimSpace(holdingID) == "" {
        return fmt.Errorf("%w: holdingId is required", ErrInvalidRequest)
    }
    return f.holds.Release(ctx, holdingID)
}

// GetHolding returns the identified hold, including terminal ones still
// inside the retention window.
func (f *Facade) GetHolding(ctx context.Context, holdingID string) (*model.Hold, error) {
    if strings.TrimSpace(holdingID) == "" {
        return nil, fmt.Errorf("%w: holdingId is required", ErrInvalidRequest)
    }
    return f.holds.Get(holdingID)
}

// SeatStatuses returns the non-available seats of a performance.  Seats
// absent from the result are available.  Expired holds are reaped first
// so their seats read back as available even between sweeper ticks.
func (f *Facade) SeatStatuses(ctx context.Context, key model.PerformanceKey) (map[string]model.Status, error) {
    if key.IsZero() {
        return nil, fmt.Errorf("%w: performanceId, date and time are required", ErrInvalidRequest)
    }
    f.holds.reapExpired(ctx, key)
    return f.holds.store.GetStatuses(ctx, key, nil)
}

// ConfirmReservation promotes the identified hold into a reservation.
func (f *Facade) ConfirmReservation(ctx context.Context, req ConfirmRequest) (*model.Reservation, error) {
    if strings.TrimSpace(req.HoldingID) == "" {
        return nil, fmt.Errorf("%w: holdingId is required", ErrInvalidRequest)
    }
    return f.promoter.Promote(ctx, req.HoldingID, ReservationMeta{UserID: req.UserID})
}

// GetReservation returns the identified reservation.
func (f *Facade) GetReservation(ctx context.Context, reservationID string) (*model.Reservation, error) {
    if strings.TrimSpace(reservationID) == "" {
        return nil, fmt.Errorf("%w: reservationId is required", ErrInvalidRequest)
    }
    return f.promoter.Get(ctx, reservationID)
}

// ListReservations returns a user's reservations, newest first.
func (f *Facade) ListReservations(ctx context.Context, userID string) ([]*model.Reservation, error) {
    if strings.TrimSpace(userID) == "" {
        return nil, fmt.Errorf("%w: userId is required", ErrInvalidRequest)
    }
    return f.promoter.ListByUser(ctx, userID), nil
}

// CancelReservation voids a confirmed reservation on behalf of its owner.
func (f *Facade) CancelReservation(ctx context.Context, reservationID, userID string) error {
    if strings.TrimSpace(reservationID) == "" {
        return fmt.Errorf("%w: reservationId is required", ErrInvalidRequest)
    }
    return f.promoter.Cancel(ctx, reservationID, userID)
}
