package booking

import (
    "context"
    "fmt"
    "log"
    "sort"
    "sync"

    "github.com/iliyamo/venue-seat-booking/internal/model"
    "github.com/iliyamo/venue-seat-booking/internal/store"
)

// ReservationArchiver persists confirmed reservations outside the
// engine's own registry.  Archiving is best-effort: a failing archiver
// is logged and never rolls back a promotion, because the seat-state
// transition has already committed by the time it runs.
type ReservationArchiver interface {
    Archive(ctx context.Context, res *model.Reservation) error
    UpdateStatus(ctx context.Context, reservationID, status string) error
}

// Promoter converts live holds into confirmed reservations and owns the
// reservation registry.  Promotion is a single atomic step from the
// seat-state perspective: the hold is claimed by identifier, the seats
// move holding→reserved in one batch compare-and-set, and only then is
// the reservation visible.  No observer ever sees the seats available or
// unowned in between.
type Promoter struct {
    store    store.SeatStore
    holds    *HoldManager
    archiver ReservationArchiver // optional

    mu           sync.Mutex
    reservations map[string]*model.Reservation
    nextID       uint64
}

// NewPromoter returns a Promoter sharing the hold manager's store.  The
// archiver may be nil when no durable backend is configured.
func NewPromoter(st store.SeatStore, holds *HoldManager, archiver ReservationArchiver) *Promoter {
    return &Promoter{
        store:        st,
        holds:        holds,
        archiver:     archiver,
        reservations: make(map[string]*model.Reservation),
    }
}

// ReservationMeta carries caller-supplied metadata for a promotion.  The
// user ID, when present, must match the hold's owner.
type ReservationMeta struct {
    UserID string
}

// Promote converts the identified hold into a confirmed reservation.
// Outcomes: the new reservation; the existing reservation when the same
// hold is promoted twice (idempotent); ErrHoldExpired when the TTL has
// elapsed; ErrHoldNotFound for unknown identifiers; ErrAlreadyTerminal
// when the hold was released or expired before promotion.
func (p *Promoter) Promote(ctx context.Context, holdID string, meta ReservationMeta) (*model.Reservation, error) {
    h, err := p.holds.claimPromotion(holdID)
    if err != nil {
        if h != nil && h.ReservationID != "" {
            // Duplicate promotion of an already-promoted hold: hand back
            // the reservation it produced.
            if res, getErr := p.Get(ctx, h.ReservationID); getErr == nil {
                return res, nil
            }
        }
        return nil, err
    }
    if meta.UserID != "" && meta.UserID != h.UserID {
        p.holds.reopen(holdID)
        return nil, fmt.Errorf("%w: hold belongs to a different user", ErrForbidden)
    }

    expected := make(map[string]model.Status, len(h.Seats))
    next := make(map[string]model.Status, len(h.Seats))
    for _, id := range h.SeatIDs() {
        expected[id] = model.StatusHolding
        next[id] = model.StatusReserved
    }
    if err := p.store.CompareAndSetAll(ctx, h.Key, expected, next); err != nil {
        p.holds.reopen(holdID)
        return nil, err
    }

    now := p.holds.now().UTC()
    p.mu.Lock()
    p.nextID++
    token, tokErr := randomToken(8)
    if tokErr != nil {
        token = "00000000"
    }
    res := &model.Reservation{
        ID:         fmt.Sprintf("res-%d-%s", p.nextID, token),
        HoldingID:  h.ID,
        Key:        h.Key,
        UserID:     h.UserID,
        Seats:      append([]model.Seat(nil), h.Seats...),
        Status:     model.ReservationConfirmed,
        TotalPrice: h.TotalPrice(),
        CreatedAt:  now,
        UpdatedAt:  now,
    }
    p.reservations[res.ID] = res
    p.mu.Unlock()
    p.holds.completePromotion(holdID, res.ID)

    if p.archiver != nil {
        if err := p.archiver.Archive(ctx, res); err != nil {
            log.Printf("booking: archive reservation %s failed: %v", res.ID, err)
        }
    }
    return cloneReservation(res), nil
}

// Get returns a copy of the reservation with the given identifier.
func (p *Promoter) Get(ctx context.Context, reservationID string) (*model.Reservation, error) {
    p.mu.Lock()
    defer p.mu.Unlock()
    res, ok := p.reservations[reservationID]
    if !ok {
        return nil, ErrReservationNotFound
    }
    return cloneReservation(res), nil
}

// ListByUser returns the user's reservations, newest first.
func (p *Promoter) ListByUser(ctx context.Context, userID string) []*model.Reservation {
    p.mu.Lock()
    defer p.mu.Unlock()
    out := make([]*model.Reservation, 0)
    for _, res := range p.reservations {
        if res.UserID == userID {
            out = append(out, cloneReservation(res))
        }
    }
    sort.Slice(out, func(i, j int) bool {
        if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
            return out[i].CreatedAt.After(out[j].CreatedAt)
        }
        return out[i].ID > out[j].ID
    })
    return out
}

// Cancel voids a confirmed reservation and returns its seats to
// available.  Only the owning user may cancel.  Cancelling an already
// cancelled reservation reports ErrAlreadyTerminal.
func (p *Promoter) Cancel(ctx context.Context, reservationID, userID string) error {
    p.mu.Lock()
    res, ok := p.reservations[reservationID]
    if !ok {
        p.mu.Unlock()
        return ErrReservationNotFound
    }
    if userID != "" && res.UserID != userID {
        p.mu.Unlock()
        return ErrForbidden
    }
    if res.Status != model.ReservationConfirmed {
        p.mu.Unlock()
        return ErrAlreadyTerminal
    }
    res.Status = model.ReservationCancelled
    claimed := cloneReservation(res)
    p.mu.Unlock()

    expected := make(map[string]model.Status, len(claimed.Seats))
    next := make(map[string]model.Status, len(claimed.Seats))
    for _, id := range claimed.SeatIDs() {
        expected[id] = model.StatusReserved
        next[id] = model.StatusAvailable
    }
    if err := p.store.CompareAndSetAll(ctx, claimed.Key, expected, next); err != nil {
        p.mu.Lock()
        res.Status = model.ReservationConfirmed
        p.mu.Unlock()
        return err
    }
    p.mu.Lock()
    res.UpdatedAt = p.holds.now().UTC()
    p.mu.Unlock()

    if p.archiver != nil {
        if err := p.archiver.UpdateStatus(ctx, reservationID, model.ReservationCancelled); err != nil {
            log.Printf("booking: archive cancel %s failed: %v", reservationID, err)
        }
    }
    return nil
}

// cloneReservation returns a caller-owned copy of a registry reservation.
func cloneReservation(r *model.Reservation) *model.Reservation {
    c := *r
    c.Seats = append([]model.Seat(nil), r.Seats...)
    return &c
}
