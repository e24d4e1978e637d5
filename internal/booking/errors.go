// Package booking implements the seat hold and reservation engine: the
// hold manager, the reservation promoter, the expiry sweeper and the
// facade that callers go through.  The sentinel errors below form the
// caller-facing outcome taxonomy; handlers translate them into HTTP
// responses with errors.Is.
package booking

import "errors"

// ErrSeatConflict is returned by acquire when one or more requested
// seats are not available.  The attached store.ConflictError carries the
// offending seat IDs; no seat in the request has changed state.
var ErrSeatConflict = errors.New("seats unavailable")

// ErrHoldNotFound is returned when a hold identifier is unknown.  The
// registry keeps terminal holds for a retention window, so this usually
// indicates a mistyped or long-pruned identifier.
var ErrHoldNotFound = errors.New("hold not found")

// ErrHoldExpired is returned by promote when the hold's TTL has elapsed;
// the caller must acquire a fresh hold.
var ErrHoldExpired = errors.New("hold expired")

// ErrAlreadyTerminal is returned when a release or promote targets a
// hold that has already been released, expired or promoted.  It makes
// duplicate requests a reported, non-fatal outcome rather than a silent
// no-op or a state corruption.
var ErrAlreadyTerminal = errors.New("hold already terminal")

// ErrReservationNotFound is returned when a reservation identifier is
// unknown.
var ErrReservationNotFound = errors.New("reservation not found")

// ErrForbidden is returned when a caller acts on a reservation owned by
// a different user.
var ErrForbidden = errors.New("forbidden")

// ErrInvalidRequest is returned by the facade when the request shape is
// malformed: empty seat set, blank identifiers or an incomplete
// performance key.
var ErrInvalidRequest = errors.New("invalid request")
