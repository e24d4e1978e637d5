package store

import (
    "context"
    "database/sql"
    "strings"

    "github.com/iliyamo/venue-seat-booking/internal/model"
)

// MySQLStore persists seat states in the seat_states table.  Rows exist
// only for seats that are holding or reserved; deleting the row returns
// the seat to available.  Batch atomicity is provided by a transaction
// that locks the affected rows with SELECT ... FOR UPDATE, verifies the
// expected statuses and then applies every write before committing.
// Because all rows of one performance share the same partition columns,
// transitions per performance are serialized by InnoDB row locks while
// unrelated performances proceed independently.
//
// Expected schema:
//
//   CREATE TABLE seat_states (
//       performance_id VARCHAR(64)  NOT NULL,
//       show_date      VARCHAR(10)  NOT NULL,
//       show_time      VARCHAR(5)   NOT NULL,
//       seat_id        VARCHAR(32)  NOT NULL,
//       status         ENUM('holding','reserved') NOT NULL,
//       updated_at     TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
//                      ON UPDATE CURRENT_TIMESTAMP,
//       PRIMARY KEY (performance_id, show_date, show_time, seat_id)
//   );
type MySQLStore struct {
    db *sql.DB
}

// NewMySQLStore returns a MySQLStore bound to the provided database.
func NewMySQLStore(db *sql.DB) *MySQLStore { return &MySQLStore{db: db} }

// GetStatuses implements SeatStore.
func (s *MySQLStore) GetStatuses(ctx context.Context, key model.PerformanceKey, seatIDs []string) (map[string]model.Status, error) {
    query := `SELECT seat_id, status FROM seat_states
              WHERE performance_id = ? AND show_date = ? AND show_time = ?`
    args := []interface{}{key.PerformanceID, key.Date, key.Time}
    if len(seatIDs) > 0 {
        placeholders := make([]string, len(seatIDs))
        for i, id := range seatIDs {
            placeholders[i] = "?"
            args = append(args, id)
        }
        query += ` AND seat_id IN (` + strings.Join(placeholders, ",") + `)`
    }
    rows, err := s.db.QueryContext(ctx, query, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    out := make(map[string]model.Status)
    for rows.Next() {
        var id, st string
        if err := rows.Scan(&id, &st); err != nil {
            return nil, err
        }
        out[id] = model.Status(st)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}

// CompareAndSetAll implements SeatStore.  The caller-supplied maps must
// cover the same seat IDs; the transaction is rolled back on any
// precondition mismatch so no partial batch is ever visible.
func (s *MySQLStore) CompareAndSetAll(ctx context.Context, key model.PerformanceKey, expected, next map[string]model.Status) error {
    if len(expected) == 0 {
        return nil
    }
    tx, err := s.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    ids := make([]string, 0, len(expected))
    for id := range expected {
        ids = append(ids, id)
    }

    // Lock the rows that exist for the batch.  Absent rows mean the seat
    // is available; the primary key range is still gap-locked by InnoDB,
    // which is what prevents two transactions from inserting holds for
    // the same seat concurrently.
    placeholders := make([]string, len(ids))
    args := []interface{}{key.PerformanceID, key.Date, key.Time}
    for i, id := range ids {
        placeholders[i] = "?"
        args = append(args, id)
    }
    lockQ := `SELECT seat_id, status FROM seat_states
              WHERE performance_id = ? AND show_date = ? AND show_time = ?
                AND seat_id IN (` + strings.Join(placeholders, ",") + `) FOR UPDATE`
    rows, err := tx.QueryContext(ctx, lockQ, args...)
    if err != nil {
        return err
    }
    current := make(map[string]model.Status, len(ids))
    for rows.Next() {
        var id, st string
        if scanErr := rows.Scan(&id, &st); scanErr != nil {
            rows.Close()
            return scanErr
        }
        current[id] = model.Status(st)
    }
    if err = rows.Err(); err != nil {
        rows.Close()
        return err
    }
    if err = rows.Close(); err != nil {
        return err
    }

    var mismatched []string
    for id, want := range expected {
        actual, ok := current[id]
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

    var deletes []string
    for _, id := range ids {
        st := next[id]
        if st == model.StatusAvailable {
            deletes = append(deletes, id)
            continue
        }
        const upsert = `INSERT INTO seat_states (performance_id, show_date, show_time, seat_id, status)
                        VALUES (?, ?, ?, ?, ?)
                        ON DUPLICATE KEY UPDATE status = VALUES(status)`
        if _, err = tx.ExecContext(ctx, upsert, key.PerformanceID, key.Date, key.Time, id, string(st)); err != nil {
            return err
        }
    }
    if len(deletes) > 0 {
        delPlaceholders := make([]string, len(deletes))
        delArgs := []interface{}{key.PerformanceID, key.Date, key.Time}
        for i, id := range deletes {
            delPlaceholders[i] = "?"
            delArgs = append(delArgs, id)
        }
        delQ := `DELETE FROM seat_states
                 WHERE performance_id = ? AND show_date = ? AND show_time = ?
                   AND seat_id IN (` + strings.Join(delPlaceholders, ",") + `)`
        if _, err = tx.ExecContext(ctx, delQ, delArgs...); err != nil {
            return err
        }
    }
    if err = tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}
