package main // HTTP server entry point

import (
    "log"

    "github.com/joho/godotenv"
    "github.com/labstack/echo/v4"

    "github.com/houseshow/houseshow/internal/config"
    "github.com/houseshow/houseshow/internal/database"
    "github.com/houseshow/houseshow/internal/handler"
    "github.com/houseshow/houseshow/internal/middleware"
    "github.com/houseshow/houseshow/internal/queue"
    "github.com/houseshow/houseshow/internal/repository"
    "github.com/houseshow/houseshow/internal/router"
    "github.com/houseshow/houseshow/internal/service"
    "github.com/houseshow/houseshow/internal/workflow"
)

func main() {
    _ = godotenv.Load() // .env is optional; real env vars win
    cfg := config.Load()

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        log.Fatalf("database: %v", err)
    }
    defer db.Close()

    users := repository.NewUserRepo(db)
    sessions := repository.NewSessionRepo(db)
    bookings := repository.NewBookingRepo(db)
    concerts := repository.NewConcertRepo(db)
    ledger := repository.NewCapacityLedger(db)
    rsvps := repository.NewRSVPRepo(db, ledger)

    notifier := service.NewAMQPNotifier(cfg.AMQPURL)
    bookingFlow := workflow.NewBookingWorkflow(bookings, users, notifier)
    rsvpFlow := workflow.NewRSVPWorkflow(rsvps, concerts, users, ledger, notifier)

    // Background consumer turns published intents into notify.log lines.
    // It reconnects forever and never takes the server down.
    go func() {
        if err := queue.StartNotifyConsumer(cfg.AMQPURL); err != nil {
            log.Printf("notify consumer stopped: %v", err)
        }
    }()

    e := echo.New()
    e.Validator = handler.NewValidator()

    // Redis is optional: without it the rate limiter and response cache
    // become pass-through middleware.
    rdb := config.NewRedisClient()
    limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
    cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

    concertHandler := handler.NewConcertHandler(concerts, rsvpFlow)
    router.RegisterRoutes(e)
    router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, sessions), cfg.JWTSecret)
    router.RegisterPublic(e, concertHandler, cache)
    router.RegisterBookings(e, handler.NewBookingHandler(bookingFlow), cfg.JWTSecret)
    router.RegisterRSVPs(e, handler.NewRSVPHandler(rsvpFlow), concertHandler, cfg.JWTSecret, limiter)

    addr := ":" + cfg.Port
    log.Printf("listening on %s (env=%s)", addr, cfg.Env)
    if err := e.Start(addr); err != nil {
        log.Fatal(err)
    }
}
