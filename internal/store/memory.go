package store

import (
    "context"
    "sync"

    "github.com/iliyamo/venue-seat-booking/internal/model"
)

// MemoryStore keeps seat states in process memory, partitioned by
// performance key.  Each partition carries its own mutex, so concurrent
// mutations against different performances never contend and mutations
// within one performance are serialized, which makes every batch
// compare-and-set linearizable for that key.  The partition lock is held
// only for the duration of the in-memory check-and-write, never across
// any I/O.
type MemoryStore struct {
    mu         sync.RWMutex
    partitions map[string]*partition
}

// partition holds the non-available seats of a single performance.
type partition struct {
    mu    sync.Mutex
    seats map[string]model.Status
}

// NewMemoryStore returns an empty in-memory seat store.
func NewMemoryStore() *MemoryStore {
    return &MemoryStore{partitions: make(map[string]*partition)}
}

// part returns the partition for key, creating it on first use.
func (s *MemoryStore) part(key model.PerformanceKey) *partition {
    k := key.String()
    s.mu.RLock()
    p, ok := s.partitions[k]
    s.mu.RUnlock()
    if ok {
        return p
    }
    s.mu.Lock()
    defer s.mu.Unlock()
    if p, ok = s.partitions[k]; ok {
        return p
    }
    p = &partition{seats: make(map[string]model.Status)}
    s.partitions[k] = p
    return p
}

// GetStatuses implements SeatStore.  With an empty seatIDs slice it
// snapshots every non-available seat of the performance.
func (s *MemoryStore) GetStatuses(ctx context.Context, key model.PerformanceKey, seatIDs []string) (map[string]model.Status, error) {
    if err := ctx.Err(); err != nil {
        return nil, err
    }
    p := s.part(key)
    p.mu.Lock()
    defer p.mu.Unlock()

    out := make(map[string]model.Status)
    if len(seatIDs) == 0 {
        for id, st := range p.seats {
            out[id] = st
        }
        return out, nil
    }
    for _, id := range seatIDs {
        if st, ok := p.seats[id]; ok {
            out[id] = st
        }
    }
    return out, nil
}

// CompareAndSetAll implements SeatStore.  The whole batch is verified
// against expected before anything is written; a single mismatch aborts
// the call with a *ConflictError and leaves the partition untouched.
func (s *MemoryStore) CompareAndSetAll(ctx context.Context, key model.PerformanceKey, expected, next map[string]model.Status) error {
    if err := ctx.Err(); err != nil {
        return err
    }
    if len(expected) == 0 {
        return nil
    }
    p := s.part(key)
    p.mu.Lock()
    defer p.mu.Unlock()

    var mismatched []string
    for id, want := range expected {
        actual, ok := p.seats[id]
        if !ok {
            actual = model.StatusAvailable
        }
        if actual != want {
            mismatched = append(mismatched, id)
        }
    }
    if len(mismatched) > 0 {
        return conflictError(key, mismatched)
    }
    for id := range expected {
        st := next[id]
        if st == model.StatusAvailable {
            delete(p.seats, id)
            continue
        }
        p.seats[id] = st
    }
    return nil
}
