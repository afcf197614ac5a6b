package main

import (
    "log"

    "github.com/joho/godotenv"
    "github.com/labstack/echo/v4"

    "github.com/pizzas505/table-reservation/internal/clock"
    "github.com/pizzas505/table-reservation/internal/config"
    "github.com/pizzas505/table-reservation/internal/database"
    "github.com/pizzas505/table-reservation/internal/handler"
    "github.com/pizzas505/table-reservation/internal/middleware"
    "github.com/pizzas505/table-reservation/internal/queue"
    "github.com/pizzas505/table-reservation/internal/repository"
    "github.com/pizzas505/table-reservation/internal/router"
    "github.com/pizzas505/table-reservation/internal/service"
)

func main() {
    // .env is optional; real deployments set the environment directly.
    if err := godotenv.Load(); err != nil {
        log.Printf("no .env file loaded: %v", err)
    }
    cfg := config.Load()

    clk, err := clock.NewSystem(cfg.TimeZone)
    if err != nil {
        log.Fatalf("load time zone %q: %v", cfg.TimeZone, err)
    }

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.TimeZone)
    if err != nil {
        log.Fatalf("open database: %v", err)
    }
    defer db.Close()

    rdb := config.NewRedisClient()

    reservations := repository.NewReservationRepo(db)
    tables := repository.NewTableRepo(db)
    policies := repository.NewPolicyRepo(db, rdb)
    users := repository.NewUserRepo(db)

    notifier := queue.NewPublisher()
    svc := service.New(clk, reservations, tables, policies, notifier)

    // Background worker: drains the reservation queues into the
    // notification log.  Runs its own reconnect loop forever.
    go func() {
        if err := queue.StartNotificationConsumer(); err != nil {
            log.Printf("notification consumer stopped: %v", err)
        }
    }()

    e := echo.New()
    e.HideBanner = true
    e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

    authH := handler.NewAuthHandler(cfg, users)
    resH := handler.NewReservationHandler(svc, clk)
    staffH := handler.NewStaffHandler(svc, clk)
    availH := handler.NewAvailabilityHandler(svc, clk)
    policyH := handler.NewPolicyHandler(policies)

    router.RegisterRoutes(e, availH, resH, policyH)
    router.RegisterAuth(e, authH)
    router.RegisterCustomer(e, resH, cfg.JWTSecret)
    router.RegisterStaff(e, staffH, cfg.JWTSecret)

    addr := ":" + cfg.Port
    log.Printf("listening on %s (env=%s, zone=%s)", addr, cfg.Env, cfg.TimeZone)
    if err := e.Start(addr); err != nil {
        log.Fatal(err)
    }
}
