// Package store defines the seat-state store contract and its
// implementations.  The store is the single authority for seat statuses;
// every mutation goes through CompareAndSetAll, which is atomic across
// the whole requested batch.  This is what closes the race window between
// reading seat availability and claiming the seats: the read and the
// write happen as one step, scoped to a single performance key.
package store

import (
    "context"
    "errors"
    "fmt"
    "sort"
    "strings"

    "github.com/iliyamo/venue-seat-booking/internal/model"
)

// ErrConflict is returned by CompareAndSetAll when at least one seat in
// the batch does not match its expected status.  When it is returned, no
// seat in the batch has been modified.  Callers that need the offending
// seats should errors.As into *ConflictError.
var ErrConflict = errors.New("seat state conflict")

// ConflictError reports which seats failed their precondition.  It wraps
// ErrConflict so call sites can use errors.Is for classification and
// errors.As to recover the seat list.
type ConflictError struct {
    Key     model.PerformanceKey
    SeatIDs []string
}

func (e *ConflictError) Error() string {
    return fmt.Sprintf("seat state conflict for %s: %s", e.Key, strings.Join(e.SeatIDs, ","))
}

// Unwrap lets errors.Is(err, ErrConflict) match.
func (e *ConflictError) Unwrap() error { return ErrConflict }

// SeatStore is the durable mapping from (performance, date, time, seat)
// to a status.  Seats absent from the store are implicitly available.
//
// GetStatuses returns the status of the requested seats; passing a nil
// or empty seatIDs slice returns every seat with a non-available status
// for the performance.  Returned maps never contain StatusAvailable
// entries.
//
// CompareAndSetAll transitions every seat in expected/next in one atomic
// step: either all seats move to their next status, or none do and a
// *ConflictError identifies the seats that did not match.  Setting a
// seat to StatusAvailable removes its record entirely, so repeated
// hold/release cycles leave no residue.  Both maps must cover the same
// seat IDs.
type SeatStore interface {
    GetStatuses(ctx context.Context, key model.PerformanceKey, seatIDs []string) (map[string]model.Status, error)
    CompareAndSetAll(ctx context.Context, key model.PerformanceKey, expected, next map[string]model.Status) error
}

// conflictError builds a ConflictError with a deterministic seat order.
func conflictError(key model.PerformanceKey, seatIDs []string) error {
    sort.Strings(seatIDs)
    return &ConflictError{Key: key, SeatIDs: seatIDs}
}
