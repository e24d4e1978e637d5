package booking

import (
    "context"
    "errors"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/venue-seat-booking/internal/model"
)

func newTestFacade(t *testing.T) (*Facade, *fakeClock) {
    t.Helper()
    hm, pr, _, clk := newTestEngine(t, 10*time.Minute)
    return NewFacade(hm, pr), clk
}

func TestCreateHoldingValidation(t *testing.T) {
    f, _ := newTestFacade(t)
    ctx := context.Background()

    cases := []struct {
        name string
        req  HoldRequest
    }{
        {"missing performance", HoldRequest{Date: "2024-12-25", Time: "19:00", Seats: seatSet("D-8"), UserID: "u"}},
        {"missing date", HoldRequest{PerformanceID: "perf-1", Time: "19:00", Seats: seatSet("D-8"), UserID: "u"}},
        {"missing time", HoldRequest{PerformanceID: "perf-1", Date: "2024-12-25", Seats: seatSet("D-8"), UserID: "u"}},
        {"missing user", HoldRequest{PerformanceID: "perf-1", Date: "2024-12-25", Time: "19:00", Seats: seatSet("D-8")}},
        {"empty seats", HoldRequest{PerformanceID: "perf-1", Date: "2024-12-25", Time: "19:00", UserID: "u"}},
        {"blank seat ids", HoldRequest{PerformanceID: "perf-1", Date: "2024-12-25", Time: "19:00", Seats: []model.Seat{{SeatID: ""}}, UserID: "u"}},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            _, err := f.CreateHolding(ctx, tc.req)
            assert.True(t, errors.Is(err, ErrInvalidRequest))
        })
    }
}

func TestFullCycleThroughFacade(t *testing.T) {
    f, _ := newTestFacade(t)
    ctx := context.Background()
    req := HoldRequest{
        PerformanceID: "perf-1",
        Date:          "2024-12-25",
        Time:          "19:00",
        Seats:         seatSet("C-8", "C-9", "C-10"),
        UserID:        "user-test-cycle",
    }

    // Hold all three seats.
    first, err := f.CreateHolding(ctx, req)
    require.NoError(t, err)
    statuses, err := f.SeatStatuses(ctx, req.Key())
    require.NoError(t, err)
    for _, id := range []string{"C-8", "C-9", "C-10"} {
        assert.Equal(t, model.StatusHolding, statuses[id])
    }

    // Release and verify everything reads available again.
    require.NoError(t, f.ReleaseHolding(ctx, first.ID))
    statuses, err = f.SeatStatuses(ctx, req.Key())
    require.NoError(t, err)
    assert.Empty(t, statuses)

    // Re-hold the identical set; no seat may be stuck in a prior state.
    second, err := f.CreateHolding(ctx, req)
    require.NoError(t, err)
    assert.NotEqual(t, first.ID, second.ID)
    statuses, err = f.SeatStatuses(ctx, req.Key())
    require.NoError(t, err)
    for _, id := range []string{"C-8", "C-9", "C-10"} {
        assert.Equal(t, model.StatusHolding, statuses[id])
    }
}

func TestSeatStatusesReapExpiredHolds(t *testing.T) {
    f, clk := newTestFacade(t)
    ctx := context.Background()
    req := HoldRequest{
        PerformanceID: "perf-1", Date: "2024-12-25", Time: "19:00",
        Seats: seatSet("D-8"), UserID: "user-a",
    }

    _, err := f.CreateHolding(ctx, req)
    require.NoError(t, err)
    clk.Advance(11 * time.Minute)

    // Reads between sweeper ticks must not show an expired hold.
    statuses, err := f.SeatStatuses(ctx, req.Key())
    require.NoError(t, err)
    assert.Empty(t, statuses)
}

func TestConfirmAndCancelThroughFacade(t *testing.T) {
    f, _ := newTestFacade(t)
    ctx := context.Background()
    req := HoldRequest{
        PerformanceID: "perf-1", Date: "2024-12-25", Time: "19:00",
        Seats: seatSet("F-9", "F-10", "F-11"), UserID: "mock-user-01",
    }

    h, err := f.CreateHolding(ctx, req)
    require.NoError(t, err)

    res, err := f.ConfirmReservation(ctx, ConfirmRequest{HoldingID: h.ID, UserID: "mock-user-01"})
    require.NoError(t, err)
    assert.Equal(t, model.ReservationConfirmed, res.Status)

    list, err := f.ListReservations(ctx, "mock-user-01")
    require.NoError(t, err)
    require.Len(t, list, 1)
    assert.Equal(t, res.ID, list[0].ID)

    require.NoError(t, f.CancelReservation(ctx, res.ID, "mock-user-01"))
    statuses, err := f.SeatStatuses(ctx, req.Key())
    require.NoError(t, err)
    assert.Empty(t, statuses)
}

func TestConfirmValidation(t *testing.T) {
    f, _ := newTestFacade(t)
    _, err := f.ConfirmReservation(context.Background(), ConfirmRequest{})
    assert.True(t, errors.Is(err, ErrInvalidRequest))
}
