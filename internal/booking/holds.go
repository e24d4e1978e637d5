package booking

import (
    "context"
    "crypto/rand"
    "encoding/hex"
    "errors"
    "fmt"
    "sync"
    "time"

    "github.com/iliyamo/venue-seat-booking/internal/model"
    "github.com/iliyamo/venue-seat-booking/internal/store"
)

// DefaultHoldTTL matches the production holding window of ten minutes.
const DefaultHoldTTL = 10 * time.Minute

// HoldManager grants, releases and expires holds.  It owns the hold
// registry and funnels every seat mutation through the store's atomic
// batch compare-and-set, so the store, not the registry, decides the
// winner when two acquires race for the same seats.  The registry mutex
// is never held across a store call for an acquire; for release paths
// the hold is first claimed (moved to a terminal state) under the mutex
// and the seat transition is applied afterwards, which keeps a stale
// release from ever touching seats that a newer hold now owns.
type HoldManager struct {
    store store.SeatStore
    ttl   time.Duration
    now   func() time.Time // injectable clock, defaults to time.Now

    mu     sync.Mutex
    holds  map[string]*model.Hold
    nextID uint64
}

// NewHoldManager returns a HoldManager backed by the given store.  A
// non-positive ttl falls back to DefaultHoldTTL.
func NewHoldManager(st store.SeatStore, ttl time.Duration) *HoldManager {
    if ttl <= 0 {
        ttl = DefaultHoldTTL
    }
    return &HoldManager{
        store: st,
        ttl:   ttl,
        now:   time.Now,
        holds: make(map[string]*model.Hold),
    }
}

// TTL returns the configured hold time-to-live.
func (m *HoldManager) TTL() time.Duration { return m.ttl }

// randomToken returns n cryptographically random bytes hex-encoded.  It
// is appended to hold and reservation IDs so identifiers are not
// guessable even though they are assigned monotonically.
func randomToken(n int) (string, error) {
    b := make([]byte, n)
    if _, err := rand.Read(b); err != nil {
        return "", err
    }
    return hex.EncodeToString(b), nil
}

// Acquire claims every seat in seats for userID in one atomic step.  If
// any seat is not currently available the whole acquire fails with
// ErrSeatConflict (the wrapped *store.ConflictError lists the seats) and
// no seat changes state.  Expired holds on the same performance are
// reclaimed first, so a seat whose hold has timed out is immediately
// re-acquirable even if the sweeper has not run yet.
func (m *HoldManager) Acquire(ctx context.Context, key model.PerformanceKey, seats []model.Seat, userID string) (*model.Hold, error) {
    seats = dedupeSeats(seats)
    if len(seats) == 0 {
        return nil, fmt.Errorf("%w: empty seat set", ErrInvalidRequest)
    }
    m.reapExpired(ctx, key)

    expected := make(map[string]model.Status, len(seats))
    next := make(map[string]model.Status, len(seats))
    for _, s := range seats {
        expected[s.SeatID] = model.StatusAvailable
        next[s.SeatID] = model.StatusHolding
    }
    if err := m.store.CompareAndSetAll(ctx, key, expected, next); err != nil {
        var conflict *store.ConflictError
        if errors.As(err, &conflict) {
            return nil, fmt.Errorf("%w: %w", ErrSeatConflict, err)
        }
        return nil, err
    }

    now := m.now().UTC()
    m.mu.Lock()
    defer m.mu.Unlock()
    m.nextID++
    token, err := randomToken(8)
    if err != nil {
        // The seats are already holding; the hold must still be
        // registered, so fall back to a zero token rather than leak them.
        token = "00000000"
    }
    h := &model.Hold{
        ID:        fmt.Sprintf("hold-%d-%s", m.nextID, token),
        Key:       key,
        UserID:    userID,
        Seats:     seats,
        State:     model.HoldActive,
        CreatedAt: now,
        ExpiresAt: now.Add(m.ttl),
    }
    m.holds[h.ID] = h
    return cloneHold(h), nil
}

// Release frees the seats of the identified hold, transitioning them
// back to available.  The hold is claimed by identifier before the store
// transition is applied, and success is only reported once the
// transition is store-visible, so an immediate re-acquire of the same
// seats is guaranteed to observe them available.  Releasing an unknown
// hold reports ErrHoldNotFound; releasing one that already ended reports
// ErrAlreadyTerminal.  An active hold past its TTL is still releasable;
// the outcome is identical to what the sweeper would have done.
func (m *HoldManager) Release(ctx context.Context, holdID string) error {
    h, err := m.claimTerminal(holdID, model.HoldReleased)
    if err != nil {
        return err
    }
    return m.freeSeats(ctx, h)
}

// expire reclaims a single hold on behalf of the sweeper.  The claim
// re-checks both liveness and expiry under the registry lock, so a hold
// promoted or released a moment earlier is left alone.
func (m *HoldManager) expire(ctx context.Context, holdID string) error {
    m.mu.Lock()
    h, ok := m.holds[holdID]
    if !ok {
        m.mu.Unlock()
        return ErrHoldNotFound
    }
    if h.State.Terminal() {
        m.mu.Unlock()
        return ErrAlreadyTerminal
    }
    if !h.ExpiredAt(m.now()) {
        m.mu.Unlock()
        return nil // renewed view of the clock says it is still live
    }
    h.State = model.HoldExpired
    claimed := cloneHold(h)
    m.mu.Unlock()
    return m.freeSeats(ctx, claimed)
}

// freeSeats applies the holding→available transition for a claimed hold.
// On a store failure the claim is rolled back so the caller can retry.
func (m *HoldManager) freeSeats(ctx context.Context, h *model.Hold) error {
    expected := make(map[string]model.Status, len(h.Seats))
    next := make(map[string]model.Status, len(h.Seats))
    for _, id := range h.SeatIDs() {
        expected[id] = model.StatusHolding
        next[id] = model.StatusAvailable
    }
    if err := m.store.CompareAndSetAll(ctx, h.Key, expected, next); err != nil {
        m.reopen(h.ID)
        return err
    }
    return nil
}

// claimTerminal atomically moves an active hold into the given terminal
// state and returns a copy of it.
func (m *HoldManager) claimTerminal(holdID string, to model.HoldState) (*model.Hold, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    h, ok := m.holds[holdID]
    if !ok {
        return nil, ErrHoldNotFound
    }
    if h.State.Terminal() {
        return nil, ErrAlreadyTerminal
    }
    h.State = to
    return cloneHold(h), nil
}

// claimPromotion claims an active, unexpired hold for promotion.  For a
// hold that was already promoted it returns the terminal copy (carrying
// the reservation ID) alongside ErrAlreadyTerminal so the promoter can
// answer the duplicate idempotently.
func (m *HoldManager) claimPromotion(holdID string) (*model.Hold, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    h, ok := m.holds[holdID]
    if !ok {
        return nil, ErrHoldNotFound
    }
    switch h.State {
    case model.HoldPromoted:
        return cloneHold(h), ErrAlreadyTerminal
    case model.HoldReleased, model.HoldExpired:
        return nil, ErrAlreadyTerminal
    }
    if h.ExpiredAt(m.now()) {
        // Leave the hold for the sweeper; promotion of an expired hold
        // must fail without side effects.
        return nil, ErrHoldExpired
    }
    h.State = model.HoldPromoted
    return cloneHold(h), nil
}

// completePromotion records the reservation produced from a promoted hold.
func (m *HoldManager) completePromotion(holdID, reservationID string) {
    m.mu.Lock()
    defer m.mu.Unlock()
    if h, ok := m.holds[holdID]; ok {
        h.ReservationID = reservationID
    }
}

// reopen rolls a claimed hold back to active after a failed store write.
func (m *HoldManager) reopen(holdID string) {
    m.mu.Lock()
    defer m.mu.Unlock()
    if h, ok := m.holds[holdID]; ok {
        h.State = model.HoldActive
        h.ReservationID = ""
    }
}

// IsLive reports whether the hold exists, is active and has not expired.
func (m *HoldManager) IsLive(holdID string) bool {
    m.mu.Lock()
    defer m.mu.Unlock()
    h, ok := m.holds[holdID]
    return ok && h.State == model.HoldActive && !h.ExpiredAt(m.now())
}

// Get returns a copy of the hold with the given identifier.
func (m *HoldManager) Get(holdID string) (*model.Hold, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    h, ok := m.holds[holdID]
    if !ok {
        return nil, ErrHoldNotFound
    }
    return cloneHold(h), nil
}

// SweepExpired reclaims every active hold whose TTL has elapsed and
// returns how many were released.  It is the sweeper's unit of work but
// is also safe to call directly.
func (m *HoldManager) SweepExpired(ctx context.Context) int {
    now := m.now()
    m.mu.Lock()
    var due []string
    for id, h := range m.holds {
        if h.State == model.HoldActive && h.ExpiredAt(now) {
            due = append(due, id)
        }
    }
    m.mu.Unlock()

    released := 0
    for _, id := range due {
        if err := m.expire(ctx, id); err == nil {
            released++
        }
    }
    return released
}

// reapExpired releases expired holds scoped to one performance before a
// status read or a new acquire, so expired seats never block a caller
// between sweeper ticks.
func (m *HoldManager) reapExpired(ctx context.Context, key model.PerformanceKey) {
    now := m.now()
    m.mu.Lock()
    var due []string
    for id, h := range m.holds {
        if h.Key == key && h.State == model.HoldActive && h.ExpiredAt(now) {
            due = append(due, id)
        }
    }
    m.mu.Unlock()
    for _, id := range due {
        _ = m.expire(ctx, id)
    }
}

// Prune drops terminal holds whose expiry lies before the cutoff.  Using
// the expiry timestamp as the age marker is deliberate: by the time a
// retention window past expiry has elapsed, every terminal hold created
// before it qualifies regardless of how it ended.
func (m *HoldManager) Prune(cutoff time.Time) int {
    m.mu.Lock()
    defer m.mu.Unlock()
    removed := 0
    for id, h := range m.holds {
        if h.State.Terminal() && h.ExpiresAt.Before(cutoff) {
            delete(m.holds, id)
            removed++
        }
    }
    return removed
}

// dedupeSeats drops blank and repeated seat IDs while preserving order.
func dedupeSeats(seats []model.Seat) []model.Seat {
    out := make([]model.Seat, 0, len(seats))
    seen := make(map[string]struct{}, len(seats))
    for _, s := range seats {
        if s.SeatID == "" {
            continue
        }
        if _, ok := seen[s.SeatID]; ok {
            continue
        }
        seen[s.SeatID] = struct{}{}
        out = append(out, s)
    }
    return out
}

// cloneHold returns a caller-owned copy of a registry hold.
func cloneHold(h *model.Hold) *model.Hold {
    c := *h
    c.Seats = append([]model.Seat(nil), h.Seats...)
    return &c
}
