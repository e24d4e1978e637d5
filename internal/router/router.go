package router // package router defines how HTTP routes are registered for the API

import (
    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/venue-seat-booking/internal/config"
    "github.com/iliyamo/venue-seat-booking/internal/handler"
    "github.com/iliyamo/venue-seat-booking/internal/middleware"
)

// RegisterRoutes wires the booking API onto the provided Echo instance.
// All booking endpoints live under /api and share the optional JWT
// identity middleware plus the Redis token-bucket rate limiter.  The
// seat-status read additionally goes through the short-TTL response
// cache; mutating endpoints are never cached.  rdb may be nil, in which
// case both Redis middlewares degrade to pass-through.
func RegisterRoutes(e *echo.Echo, b *handler.BookingHandler, rdb *redis.Client, cfg config.Config) {
    // Health check for load balancers and monitoring.
    e.GET("/healthz", handler.Health)

    api := e.Group("/api")
    api.Use(middleware.OptionalJWT(cfg.JWTSecret))
    api.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

    // Holding lifecycle.
    api.POST("/holdings", b.CreateHolding)
    api.GET("/holdings/:holdingId", b.GetHolding)
    api.DELETE("/holdings/:holdingId", b.ReleaseHolding)

    // Seat statuses; optionally cached briefly for deployments whose
    // clients poll the seat map aggressively while users pick seats.
    // Off by default so a read right after a release never sees the
    // pre-release map.
    api.GET("/seats/:performanceId", b.GetSeatStatuses,
        middleware.NewRedisCache(config.LoadCacheConfig(), rdb))

    // Reservation lifecycle.
    api.POST("/reservations", b.ConfirmReservation)
    api.GET("/reservations/:id", b.GetReservation)
    api.DELETE("/reservations/:id", b.CancelReservation)
    api.GET("/users/:userId/reservations", b.MyReservations)
}
