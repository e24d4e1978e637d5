package handler_test

import (
    "encoding/json"
    "fmt"
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/venue-seat-booking/internal/booking"
    "github.com/iliyamo/venue-seat-booking/internal/config"
    "github.com/iliyamo/venue-seat-booking/internal/handler"
    "github.com/iliyamo/venue-seat-booking/internal/router"
    "github.com/iliyamo/venue-seat-booking/internal/store"
)

func newTestServer(t *testing.T) *echo.Echo {
    t.Helper()
    st := store.NewMemoryStore()
    hm := booking.NewHoldManager(st, booking.DefaultHoldTTL)
    pr := booking.NewPromoter(st, hm, nil)
    bh := handler.NewBookingHandler(booking.NewFacade(hm, pr), false)

    e := echo.New()
    router.RegisterRoutes(e, bh, nil, config.Config{})
    return e
}

func doJSON(t *testing.T, e *echo.Echo, method, path, body string) (int, map[string]any) {
    t.Helper()
    req := httptest.NewRequest(method, path, strings.NewReader(body))
    if body != "" {
        req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    }
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)

    out := map[string]any{}
    if rec.Body.Len() > 0 {
        require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
    }
    return rec.Code, out
}

func holdBody(userID string, seatIDs ...string) string {
    seats := make([]string, 0, len(seatIDs))
    for i, id := range seatIDs {
        parts := strings.SplitN(id, "-", 2)
        seats = append(seats, fmt.Sprintf(
            `{"seatId":%q,"grade":"R","price":120000,"row":%q,"seatNumber":%d}`,
            id, parts[0], i+1,
        ))
    }
    return fmt.Sprintf(
        `{"performanceId":"perf-1","date":"2024-12-25","time":"19:00","seats":[%s],"userId":%q}`,
        strings.Join(seats, ","), userID,
    )
}

const seatsPath = "/api/seats/perf-1?date=2024-12-25&time=19:00"

func TestCreateAndReleaseHoldingOverHTTP(t *testing.T) {
    e := newTestServer(t)

    code, body := doJSON(t, e, http.MethodPost, "/api/holdings", holdBody("user-a", "D-8"))
    require.Equal(t, http.StatusOK, code)
    holdingID, _ := body["holdingId"].(string)
    require.NotEmpty(t, holdingID)
    assert.Equal(t, "perf-1", body["performanceId"])
    assert.Equal(t, float64(120000), body["totalPrice"])
    assert.NotEmpty(t, body["expiresAt"])

    code, body = doJSON(t, e, http.MethodGet, seatsPath, "")
    require.Equal(t, http.StatusOK, code)
    seats := body["seats"].(map[string]any)
    assert.Equal(t, "holding", seats["D-8"])

    code, body = doJSON(t, e, http.MethodDelete, "/api/holdings/"+holdingID, "")
    require.Equal(t, http.StatusOK, code)
    assert.Equal(t, true, body["success"])

    code, body = doJSON(t, e, http.MethodGet, seatsPath, "")
    require.Equal(t, http.StatusOK, code)
    assert.Empty(t, body["seats"])
}

// Hold, release and immediately re-hold the same seat three times in a
// row; every cycle must succeed with a fresh holding identifier.
func TestRepeatedHoldReleaseCycles(t *testing.T) {
    e := newTestServer(t)
    seen := map[string]bool{}

    for cycle := 0; cycle < 3; cycle++ {
        code, body := doJSON(t, e, http.MethodPost, "/api/holdings", holdBody("user-a", "D-8"))
        require.Equal(t, http.StatusOK, code, "cycle %d create", cycle)
        id := body["holdingId"].(string)
        assert.False(t, seen[id], "cycle %d reused holding id %s", cycle, id)
        seen[id] = true

        code, _ = doJSON(t, e, http.MethodDelete, "/api/holdings/"+id, "")
        require.Equal(t, http.StatusOK, code, "cycle %d release", cycle)
    }
}

func TestHoldingConflictListsUnavailableSeats(t *testing.T) {
    e := newTestServer(t)

    code, _ := doJSON(t, e, http.MethodPost, "/api/holdings", holdBody("user-a", "C-8", "C-9"))
    require.Equal(t, http.StatusOK, code)

    code, body := doJSON(t, e, http.MethodPost, "/api/holdings", holdBody("user-b", "C-9", "C-10"))
    require.Equal(t, http.StatusConflict, code)
    unavailable := body["unavailable"].([]any)
    require.Len(t, unavailable, 1)
    assert.Equal(t, "C-9", unavailable[0])

    // The rejected request must not have touched C-10.
    code, body = doJSON(t, e, http.MethodGet, seatsPath, "")
    require.Equal(t, http.StatusOK, code)
    seats := body["seats"].(map[string]any)
    assert.NotContains(t, seats, "C-10")
    assert.Equal(t, "holding", seats["C-8"])
}

func TestGetHoldingAfterReleaseIsNotFound(t *testing.T) {
    e := newTestServer(t)

    code, body := doJSON(t, e, http.MethodPost, "/api/holdings", holdBody("user-a", "D-8"))
    require.Equal(t, http.StatusOK, code)
    id := body["holdingId"].(string)

    code, _ = doJSON(t, e, http.MethodGet, "/api/holdings/"+id, "")
    assert.Equal(t, http.StatusOK, code)

    code, _ = doJSON(t, e, http.MethodDelete, "/api/holdings/"+id, "")
    require.Equal(t, http.StatusOK, code)

    code, _ = doJSON(t, e, http.MethodGet, "/api/holdings/"+id, "")
    assert.Equal(t, http.StatusNotFound, code)
}

func TestReleaseUnknownHoldingIsNotFound(t *testing.T) {
    e := newTestServer(t)
    code, _ := doJSON(t, e, http.MethodDelete, "/api/holdings/hold-404-deadbeef", "")
    assert.Equal(t, http.StatusNotFound, code)
}

func TestDoubleReleaseIsGone(t *testing.T) {
    e := newTestServer(t)

    code, body := doJSON(t, e, http.MethodPost, "/api/holdings", holdBody("user-a", "D-8"))
    require.Equal(t, http.StatusOK, code)
    id := body["holdingId"].(string)

    code, _ = doJSON(t, e, http.MethodDelete, "/api/holdings/"+id, "")
    require.Equal(t, http.StatusOK, code)
    code, _ = doJSON(t, e, http.MethodDelete, "/api/holdings/"+id, "")
    assert.Equal(t, http.StatusGone, code)
}

func TestConfirmReservationFlow(t *testing.T) {
    e := newTestServer(t)

    code, body := doJSON(t, e, http.MethodPost, "/api/holdings", holdBody("mock-user-01", "F-9", "F-10"))
    require.Equal(t, http.StatusOK, code)
    holdingID := body["holdingId"].(string)

    confirm := fmt.Sprintf(`{"holdingId":%q,"userId":"mock-user-01"}`, holdingID)
    code, body = doJSON(t, e, http.MethodPost, "/api/reservations", confirm)
    require.Equal(t, http.StatusOK, code)
    resID := body["reservationId"].(string)
    require.NotEmpty(t, resID)
    assert.Equal(t, "confirmed", body["status"])
    assert.Equal(t, float64(240000), body["totalPrice"])

    // Confirming the same holding again answers with the reservation it
    // already produced.
    code, body = doJSON(t, e, http.MethodPost, "/api/reservations", confirm)
    require.Equal(t, http.StatusOK, code)
    assert.Equal(t, resID, body["reservationId"])

    code, body = doJSON(t, e, http.MethodGet, seatsPath, "")
    require.Equal(t, http.StatusOK, code)
    seats := body["seats"].(map[string]any)
    assert.Equal(t, "reserved", seats["F-9"])
    assert.Equal(t, "reserved", seats["F-10"])

    code, body = doJSON(t, e, http.MethodGet, "/api/users/mock-user-01/reservations", "")
    require.Equal(t, http.StatusOK, code)
    list := body["reservations"].([]any)
    require.Len(t, list, 1)
    assert.Equal(t, resID, list[0].(map[string]any)["reservationId"])
}

func TestConfirmWrongUserIsForbidden(t *testing.T) {
    e := newTestServer(t)

    code, body := doJSON(t, e, http.MethodPost, "/api/holdings", holdBody("user-a", "D-8"))
    require.Equal(t, http.StatusOK, code)
    holdingID := body["holdingId"].(string)

    confirm := fmt.Sprintf(`{"holdingId":%q,"userId":"user-b"}`, holdingID)
    code, _ = doJSON(t, e, http.MethodPost, "/api/reservations", confirm)
    assert.Equal(t, http.StatusForbidden, code)

    // The holding survives the rejected confirmation.
    code, _ = doJSON(t, e, http.MethodGet, "/api/holdings/"+holdingID, "")
    assert.Equal(t, http.StatusOK, code)
}

func TestCancelReservationFreesSeats(t *testing.T) {
    e := newTestServer(t)

    code, body := doJSON(t, e, http.MethodPost, "/api/holdings", holdBody("user-a", "D-8"))
    require.Equal(t, http.StatusOK, code)
    holdingID := body["holdingId"].(string)

    code, body = doJSON(t, e, http.MethodPost, "/api/reservations",
        fmt.Sprintf(`{"holdingId":%q,"userId":"user-a"}`, holdingID))
    require.Equal(t, http.StatusOK, code)
    resID := body["reservationId"].(string)

    code, body = doJSON(t, e, http.MethodDelete, "/api/reservations/"+resID, `{"userId":"user-a"}`)
    require.Equal(t, http.StatusOK, code)
    assert.Equal(t, true, body["success"])

    code, body = doJSON(t, e, http.MethodGet, seatsPath, "")
    require.Equal(t, http.StatusOK, code)
    assert.Empty(t, body["seats"])
}

func TestCreateHoldingValidationErrors(t *testing.T) {
    e := newTestServer(t)

    cases := []struct {
        name string
        body string
    }{
        {"malformed json", `{"performanceId":`},
        {"missing date", `{"performanceId":"perf-1","time":"19:00","seats":[{"seatId":"D-8"}],"userId":"u"}`},
        {"empty seats", `{"performanceId":"perf-1","date":"2024-12-25","time":"19:00","seats":[],"userId":"u"}`},
        {"missing user", `{"performanceId":"perf-1","date":"2024-12-25","time":"19:00","seats":[{"seatId":"D-8"}]}`},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            code, _ := doJSON(t, e, http.MethodPost, "/api/holdings", tc.body)
            assert.Equal(t, http.StatusBadRequest, code)
        })
    }
}

func TestSeatStatusesRequireDateAndTime(t *testing.T) {
    e := newTestServer(t)
    code, _ := doJSON(t, e, http.MethodGet, "/api/seats/perf-1", "")
    assert.Equal(t, http.StatusBadRequest, code)
}

func TestHealthEndpoint(t *testing.T) {
    e := newTestServer(t)
    req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)
    assert.Equal(t, http.StatusOK, rec.Code)
}
