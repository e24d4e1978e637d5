package store

import (
    "context"
    "errors"
    "sync"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/venue-seat-booking/internal/model"
)

var perfKey = model.PerformanceKey{PerformanceID: "perf-1", Date: "2024-12-25", Time: "19:00"}

func statuses(ids []string, st model.Status) map[string]model.Status {
    m := make(map[string]model.Status, len(ids))
    for _, id := range ids {
        m[id] = st
    }
    return m
}

func TestCompareAndSetAllAppliesWholeBatch(t *testing.T) {
    s := NewMemoryStore()
    ctx := context.Background()
    ids := []string{"C-8", "C-9", "C-10"}

    err := s.CompareAndSetAll(ctx, perfKey, statuses(ids, model.StatusAvailable), statuses(ids, model.StatusHolding))
    require.NoError(t, err)

    got, err := s.GetStatuses(ctx, perfKey, ids)
    require.NoError(t, err)
    for _, id := range ids {
        assert.Equal(t, model.StatusHolding, got[id])
    }
}

func TestCompareAndSetAllAbortsOnAnyMismatch(t *testing.T) {
    s := NewMemoryStore()
    ctx := context.Background()

    // C-9 is already holding; a batch expecting all three available must
    // fail and leave every seat untouched.
    require.NoError(t, s.CompareAndSetAll(ctx, perfKey,
        statuses([]string{"C-9"}, model.StatusAvailable),
        statuses([]string{"C-9"}, model.StatusHolding)))

    ids := []string{"C-8", "C-9", "C-10"}
    err := s.CompareAndSetAll(ctx, perfKey, statuses(ids, model.StatusAvailable), statuses(ids, model.StatusHolding))
    require.Error(t, err)
    assert.True(t, errors.Is(err, ErrConflict))

    var conflict *ConflictError
    require.True(t, errors.As(err, &conflict))
    assert.Equal(t, []string{"C-9"}, conflict.SeatIDs)

    got, err := s.GetStatuses(ctx, perfKey, ids)
    require.NoError(t, err)
    assert.Len(t, got, 1, "only the pre-existing hold should be recorded")
    assert.Equal(t, model.StatusHolding, got["C-9"])
}

func TestSettingAvailableRemovesRecord(t *testing.T) {
    s := NewMemoryStore()
    ctx := context.Background()
    ids := []string{"D-8"}

    require.NoError(t, s.CompareAndSetAll(ctx, perfKey, statuses(ids, model.StatusAvailable), statuses(ids, model.StatusHolding)))
    require.NoError(t, s.CompareAndSetAll(ctx, perfKey, statuses(ids, model.StatusHolding), statuses(ids, model.StatusAvailable)))

    got, err := s.GetStatuses(ctx, perfKey, nil)
    require.NoError(t, err)
    assert.Empty(t, got, "a released seat must leave no residual record")
}

func TestPartitionsAreIndependent(t *testing.T) {
    s := NewMemoryStore()
    ctx := context.Background()
    other := model.PerformanceKey{PerformanceID: "perf-1", Date: "2024-12-26", Time: "19:00"}

    require.NoError(t, s.CompareAndSetAll(ctx, perfKey,
        statuses([]string{"D-8"}, model.StatusAvailable),
        statuses([]string{"D-8"}, model.StatusHolding)))

    // The same seat ID on a different date is a different bookable unit.
    require.NoError(t, s.CompareAndSetAll(ctx, other,
        statuses([]string{"D-8"}, model.StatusAvailable),
        statuses([]string{"D-8"}, model.StatusReserved)))

    got, err := s.GetStatuses(ctx, perfKey, nil)
    require.NoError(t, err)
    assert.Equal(t, model.StatusHolding, got["D-8"])

    got, err = s.GetStatuses(ctx, other, nil)
    require.NoError(t, err)
    assert.Equal(t, model.StatusReserved, got["D-8"])
}

func TestConcurrentCASExactlyOneWinner(t *testing.T) {
    s := NewMemoryStore()
    ctx := context.Background()
    const racers = 16

    var wg sync.WaitGroup
    results := make([]error, racers)
    for i := 0; i < racers; i++ {
        wg.Add(1)
        go func(i int) {
            defer wg.Done()
            results[i] = s.CompareAndSetAll(ctx, perfKey,
                statuses([]string{"C-8", "C-9"}, model.StatusAvailable),
                statuses([]string{"C-8", "C-9"}, model.StatusHolding))
        }(i)
    }
    wg.Wait()

    wins := 0
    for _, err := range results {
        if err == nil {
            wins++
        } else {
            assert.True(t, errors.Is(err, ErrConflict))
        }
    }
    assert.Equal(t, 1, wins, "exactly one racer may claim the batch")
}
