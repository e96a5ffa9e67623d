package main // Entry point package

import (
	"log"

	"github.com/labstack/echo/v4"

	"github.com/archiapp/ticket-reservation/internal/cache"
	"github.com/archiapp/ticket-reservation/internal/config"
	"github.com/archiapp/ticket-reservation/internal/database"
	"github.com/archiapp/ticket-reservation/internal/handler"
	"github.com/archiapp/ticket-reservation/internal/middleware"
	"github.com/archiapp/ticket-reservation/internal/queue"
	"github.com/archiapp/ticket-reservation/internal/repository"
	"github.com/archiapp/ticket-reservation/internal/router"
	"github.com/archiapp/ticket-reservation/internal/service"
)

func main() {
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer func() { _ = db.Close() }()

	store := repository.NewStore(db)

	// Redis is optional: with no client the cache middleware, the
	// invalidator and the rate limiter all degrade to pass-throughs.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable, running without response cache and rate limiting")
	}
	cacheCfg := config.LoadCacheConfig()
	rlCfg := config.LoadRateLimitConfig()
	invalidator := cache.NewInvalidator(rdb, cacheCfg.Prefix)

	publisher := queue.NewPublisher(queue.URLFromEnv())

	reservations := service.NewReservationService(store, invalidator, publisher, cfg.AllowPastCancel)
	catalog := service.NewCatalogService(store, invalidator)

	// Background consumer mirrors reservation events into logs/reservation.log.
	go func() {
		if err := queue.StartReservationConsumer(); err != nil {
			log.Printf("rabbitmq consumer stopped: %v", err)
		}
	}()

	e := echo.New()

	// Registered per route group rather than globally: on the
	// authenticated groups the limiter runs after JWTAuth and keys its
	// buckets by user id, while the public browse routes fall back to
	// the client IP.  The health check is never throttled.
	limiter := middleware.RateLimit(rlCfg, rdb)

	shows := handler.NewShowHandler(catalog)
	router.RegisterRoutes(e)
	router.RegisterPublic(e, shows, cacheCfg, rdb, limiter)
	router.RegisterReservations(e, handler.NewReservationHandler(reservations), cfg.JWTSecret, limiter)
	router.RegisterAdmin(e, shows, handler.NewAdminHandler(reservations, invalidator), cfg.JWTSecret, cacheCfg, rdb, limiter)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
