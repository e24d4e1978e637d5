// Package repository provides the durable MySQL archive for confirmed
// reservations.  The booking engine's registries are the source of truth
// while the process runs; the archive exists so reservations survive a
// restart and can be inspected out of band.
package repository

import (
    "context"
    "database/sql"

    "github.com/iliyamo/venue-seat-booking/internal/model"
)

// ReservationRepo persists reservations and their seats.  Expected schema:
//
//   CREATE TABLE reservations (
//       id             VARCHAR(64)  NOT NULL PRIMARY KEY,
//       holding_id     VARCHAR(64)  NOT NULL,
//       performance_id VARCHAR(64)  NOT NULL,
//       show_date      VARCHAR(10)  NOT NULL,
//       show_time      VARCHAR(5)   NOT NULL,
//       user_id        VARCHAR(64)  NOT NULL,
//       status         ENUM('confirmed','cancelled') NOT NULL,
//       total_price    INT UNSIGNED NOT NULL,
//       created_at     DATETIME NOT NULL,
//       updated_at     DATETIME NOT NULL
//   );
//
//   CREATE TABLE reservation_seats (
//       reservation_id VARCHAR(64) NOT NULL,
//       seat_id        VARCHAR(32) NOT NULL,
//       row_label      VARCHAR(8),
//       seat_number    INT UNSIGNED,
//       grade          VARCHAR(8),
//       price          INT UNSIGNED NOT NULL DEFAULT 0,
//       PRIMARY KEY (reservation_id, seat_id)
//   );
type ReservationRepo struct {
    db *sql.DB
}

// NewReservationRepo returns a ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// Archive inserts the reservation and all of its seats in one
// transaction.  The caller has already committed the seat-state
// transition, so a failure here must not undo the promotion; the error
// is reported and the caller decides how loudly to log it.
func (r *ReservationRepo) Archive(ctx context.Context, res *model.Reservation) error {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    const insRes = `INSERT INTO reservations
        (id, holding_id, performance_id, show_date, show_time, user_id, status, total_price, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
    if _, err = tx.ExecContext(ctx, insRes,
        res.ID, res.HoldingID, res.Key.PerformanceID, res.Key.Date, res.Key.Time,
        res.UserID, res.Status, res.TotalPrice,
        res.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
        res.UpdatedAt.UTC().Format("2006-01-02 15:04:05"),
    ); err != nil {
        return err
    }

    if len(res.Seats) > 0 {
        query := `INSERT INTO reservation_seats (reservation_id, seat_id, row_label, seat_number, grade, price) VALUES `
        args := make([]interface{}, 0, len(res.Seats)*6)
        for i, s := range res.Seats {
            if i > 0 {
                query += ","
            }
            query += "(?, ?, ?, ?, ?, ?)"
            args = append(args, res.ID, s.SeatID, s.Row, s.SeatNumber, s.Grade, s.Price)
        }
        if _, err = tx.ExecContext(ctx, query, args...); err != nil {
            return err
        }
    }

    if err = tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}

// UpdateStatus records a status change (cancellation) for an archived
// reservation.  A missing row is not an error: the archive may have been
// disabled when the reservation was created.
func (r *ReservationRepo) UpdateStatus(ctx context.Context, reservationID, status string) error {
    const q = `UPDATE reservations SET status = ?, updated_at = UTC_TIMESTAMP() WHERE id = ?`
    _, err := r.db.ExecContext(ctx, q, status, reservationID)
    return err
}
