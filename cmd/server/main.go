package main // Entry point package

import (
    "context"
    "log"

    "github.com/joho/godotenv"
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/venue-seat-booking/internal/booking"
    "github.com/iliyamo/venue-seat-booking/internal/config"
    "github.com/iliyamo/venue-seat-booking/internal/database"
    "github.com/iliyamo/venue-seat-booking/internal/handler"
    "github.com/iliyamo/venue-seat-booking/internal/queue"
    "github.com/iliyamo/venue-seat-booking/internal/repository"
    "github.com/iliyamo/venue-seat-booking/internal/router"
    "github.com/iliyamo/venue-seat-booking/internal/store"
)

func main() {
    _ = godotenv.Load() // .env is optional; real env vars win
    cfg := config.Load()

    // Seat store: in-memory by default, MySQL when configured.  The
    // reservation archive piggybacks on the same database handle.
    var seatStore store.SeatStore = store.NewMemoryStore()
    var archiver booking.ReservationArchiver
    if cfg.DBHost != "" {
        db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
        if err != nil {
            log.Fatalf("mysql: %v", err)
        }
        if cfg.StoreBackend == "mysql" {
            seatStore = store.NewMySQLStore(db)
        }
        archiver = repository.NewReservationRepo(db)
    }

    holds := booking.NewHoldManager(seatStore, cfg.HoldTTL)
    promoter := booking.NewPromoter(seatStore, holds, archiver)
    facade := booking.NewFacade(holds, promoter)

    sweeper := booking.NewSweeper(holds, cfg.SweepInterval, cfg.HoldRetention)
    sweeper.Start(context.Background())
    defer sweeper.Stop()

    if cfg.QueueEnabled {
        go func() {
            if err := queue.StartReservationConsumer(); err != nil {
                log.Printf("reservation consumer stopped: %v", err)
            }
        }()
    }

    rdb := config.NewRedisClient()
    if rdb == nil {
        log.Printf("redis unavailable; rate limiting and response cache disabled")
    }

    e := echo.New()
    e.HideBanner = true
    router.RegisterRoutes(e, handler.NewBookingHandler(facade, cfg.QueueEnabled), rdb, cfg)

    addr := ":" + cfg.Port
    log.Printf("listening on %s (env=%s store=%s ttl=%s)", addr, cfg.Env, cfg.StoreBackend, cfg.HoldTTL)
    if err := e.Start(addr); err != nil {
        log.Fatal(err)
    }
}
