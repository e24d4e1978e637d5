package handler

import (
    "context"
    "errors"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/venue-seat-booking/internal/booking"
    "github.com/iliyamo/venue-seat-booking/internal/model"
    "github.com/iliyamo/venue-seat-booking/internal/queue"
    queue_publisher "github.com/iliyamo/venue-seat-booking/internal/service"
    "github.com/iliyamo/venue-seat-booking/internal/store"
)

// BookingHandler exposes the booking facade over HTTP.  All seat-state
// decisions happen inside the engine; the handler only binds requests,
// resolves the effective user and translates engine outcomes into HTTP
// responses.
type BookingHandler struct {
    Facade        *booking.Facade
    PublishEvents bool // emit reservation.confirmed to RabbitMQ

    publish func(context.Context, queue.ReservationConfirmedEvent) error
}

// publishTimeout bounds the detached confirm-event publish, dial included.
const publishTimeout = 10 * time.Second

// NewBookingHandler constructs a BookingHandler.  The facade must be
// non-nil.
func NewBookingHandler(f *booking.Facade, publishEvents bool) *BookingHandler {
    if f == nil {
        panic("nil facade passed to NewBookingHandler")
    }
    return &BookingHandler{
        Facade:        f,
        PublishEvents: publishEvents,
        publish:       queue_publisher.PublishReservationConfirmed,
    }
}

// effectiveUser prefers the authenticated identity over the body-supplied
// user ID; the reference clients are unauthenticated and send the ID in
// the body.
func effectiveUser(c echo.Context, bodyUserID string) string {
    if v := c.Get("user_id"); v != nil {
        if s, ok := v.(string); ok && s != "" {
            return s
        }
    }
    return bodyUserID
}

// CreateHolding handles POST /api/holdings.  On success it returns 200
// with the holding identifier and expiry; if any requested seat is not
// available it returns 409 listing the unavailable seats and no seat
// changes state.
func (h *BookingHandler) CreateHolding(c echo.Context) error {
    var req booking.HoldRequest
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    req.UserID = effectiveUser(c, req.UserID)

    hold, err := h.Facade.CreateHolding(c.Request().Context(), req)
    if err != nil {
        return writeBookingError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{
        "holdingId":     hold.ID,
        "performanceId": hold.Key.PerformanceID,
        "date":          hold.Key.Date,
        "time":          hold.Key.Time,
        "userId":        hold.UserID,
        "seats":         hold.Seats,
        "totalPrice":    hold.TotalPrice(),
        "createdAt":     hold.CreatedAt.Format(time.RFC3339),
        "expiresAt":     hold.ExpiresAt.Format(time.RFC3339),
    })
}

// GetHolding handles GET /api/holdings/:holdingId.  Terminal and expired
// holdings answer 404, mirroring the behavior the booking front end
// depends on to detect a lapsed checkout.
func (h *BookingHandler) GetHolding(c echo.Context) error {
    hold, err := h.Facade.GetHolding(c.Request().Context(), c.Param("holdingId"))
    if err != nil {
        return writeBookingError(c, err)
    }
    if hold.State.Terminal() || hold.ExpiredAt(time.Now()) {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "holding not found or expired"})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "holdingId":     hold.ID,
        "performanceId": hold.Key.PerformanceID,
        "date":          hold.Key.Date,
        "time":          hold.Key.Time,
        "userId":        hold.UserID,
        "seats":         hold.Seats,
        "totalPrice":    hold.TotalPrice(),
        "createdAt":     hold.CreatedAt.Format(time.RFC3339),
        "expiresAt":     hold.ExpiresAt.Format(time.RFC3339),
    })
}

// ReleaseHolding handles DELETE /api/holdings/:holdingId.  Releasing an
// unknown holding reports 404; one that already ended reports 410.  A
// successful release is store-visible before the response is written, so
// an immediate re-hold of the same seats succeeds.
func (h *BookingHandler) ReleaseHolding(c echo.Context) error {
    if err := h.Facade.ReleaseHolding(c.Request().Context(), c.Param("holdingId")); err != nil {
        return writeBookingError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// GetSeatStatuses handles GET /api/seats/:performanceId?date=&time=.
// The response maps seat IDs to their status; seats absent from the map
// are available.
func (h *BookingHandler) GetSeatStatuses(c echo.Context) error {
    key := model.PerformanceKey{
        PerformanceID: c.Param("performanceId"),
        Date:          c.QueryParam("date"),
        Time:          c.QueryParam("time"),
    }
    statuses, err := h.Facade.SeatStatuses(c.Request().Context(), key)
    if err != nil {
        return writeBookingError(c, err)
    }
    seats := make(map[string]string, len(statuses))
    for id, st := range statuses {
        seats[id] = string(st)
    }
    return c.JSON(http.StatusOK, echo.Map{
        "performanceId": key.PerformanceID,
        "date":          key.Date,
        "time":          key.Time,
        "seats":         seats,
    })
}

// ConfirmReservation handles POST /api/reservations.  It promotes a live
// holding into a confirmed reservation; a duplicate confirmation of the
// same holding returns the reservation it already produced.
func (h *BookingHandler) ConfirmReservation(c echo.Context) error {
    var req booking.ConfirmRequest
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    req.UserID = effectiveUser(c, req.UserID)

    res, err := h.Facade.ConfirmReservation(c.Request().Context(), req)
    if err != nil {
        return writeBookingError(c, err)
    }

    if h.PublishEvents {
        ev := queue.ReservationConfirmedEvent{
            ReservationID: res.ID,
            HoldingID:     res.HoldingID,
            PerformanceID: res.Key.PerformanceID,
            Date:          res.Key.Date,
            Time:          res.Key.Time,
            UserID:        res.UserID,
            SeatIDs:       res.SeatIDs(),
            TotalPrice:    res.TotalPrice,
            ConfirmedAt:   res.CreatedAt.Format(time.RFC3339),
        }
        // Best-effort; a broker outage must not fail the confirmation.
        // The request context is cancelled once this handler returns, so
        // the detached publish runs on its own deadline instead.
        go func() {
            ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
            defer cancel()
            _ = h.publish(ctx, ev)
        }()
    }
    return c.JSON(http.StatusOK, reservationJSON(res))
}

// GetReservation handles GET /api/reservations/:id.
func (h *BookingHandler) GetReservation(c echo.Context) error {
    res, err := h.Facade.GetReservation(c.Request().Context(), c.Param("id"))
    if err != nil {
        return writeBookingError(c, err)
    }
    return c.JSON(http.StatusOK, reservationJSON(res))
}

// MyReservations handles GET /api/users/:userId/reservations, newest
// first.
func (h *BookingHandler) MyReservations(c echo.Context) error {
    userID := effectiveUser(c, c.Param("userId"))
    list, err := h.Facade.ListReservations(c.Request().Context(), userID)
    if err != nil {
        return writeBookingError(c, err)
    }
    out := make([]echo.Map, 0, len(list))
    for _, res := range list {
        out = append(out, reservationJSON(res))
    }
    return c.JSON(http.StatusOK, echo.Map{"reservations": out})
}

// CancelReservation handles DELETE /api/reservations/:id.  Only the
// owning user may cancel; the seats return to available.
func (h *BookingHandler) CancelReservation(c echo.Context) error {
    var body struct {
        UserID string `json:"userId"`
    }
    _ = c.Bind(&body) // body optional; userId may come from token or query
    userID := effectiveUser(c, body.UserID)
    if userID == "" {
        userID = c.QueryParam("userId")
    }
    if err := h.Facade.CancelReservation(c.Request().Context(), c.Param("id"), userID); err != nil {
        return writeBookingError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// reservationJSON flattens a reservation for the wire.
func reservationJSON(res *model.Reservation) echo.Map {
    return echo.Map{
        "reservationId": res.ID,
        "holdingId":     res.HoldingID,
        "performanceId": res.Key.PerformanceID,
        "date":          res.Key.Date,
        "time":          res.Key.Time,
        "userId":        res.UserID,
        "seats":         res.Seats,
        "status":        res.Status,
        "totalPrice":    res.TotalPrice,
        "createdAt":     res.CreatedAt.Format(time.RFC3339),
        "updatedAt":     res.UpdatedAt.Format(time.RFC3339),
    }
}

// writeBookingError maps engine outcomes onto HTTP responses.
func writeBookingError(c echo.Context, err error) error {
    switch {
    case errors.Is(err, booking.ErrInvalidRequest):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    case errors.Is(err, booking.ErrSeatConflict):
        var conflict *store.ConflictError
        if errors.As(err, &conflict) {
            return c.JSON(http.StatusConflict, echo.Map{
                "error":       "some seats are unavailable",
                "unavailable": conflict.SeatIDs,
            })
        }
        return c.JSON(http.StatusConflict, echo.Map{"error": "some seats are unavailable"})
    case errors.Is(err, booking.ErrHoldNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "holding not found"})
    case errors.Is(err, booking.ErrReservationNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
    case errors.Is(err, booking.ErrHoldExpired):
        return c.JSON(http.StatusGone, echo.Map{"error": "holding expired"})
    case errors.Is(err, booking.ErrAlreadyTerminal):
        return c.JSON(http.StatusGone, echo.Map{"error": "holding already released or confirmed"})
    case errors.Is(err, booking.ErrForbidden):
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    default:
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
    }
}
