package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/cinebook/booking-api/internal/booking"
	"github.com/cinebook/booking-api/internal/cache"
	"github.com/cinebook/booking-api/internal/config"
	"github.com/cinebook/booking-api/internal/database"
	"github.com/cinebook/booking-api/internal/handler"
	"github.com/cinebook/booking-api/internal/middleware"
	"github.com/cinebook/booking-api/internal/queue"
	"github.com/cinebook/booking-api/internal/repository"
	"github.com/cinebook/booking-api/internal/router"
)

func main() {
	// .env is optional; real deployments set variables directly.
	if err := godotenv.Load(); err != nil {
		log.Printf("[main] no .env file loaded: %v", err)
	}
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("[main] database connection failed: %v", err)
	}
	defer db.Close()

	migCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.Migrate(migCtx, db); err != nil {
		cancel()
		log.Fatalf("[main] migration failed: %v", err)
	}
	cancel()

	// Redis is optional. Without it the seat-map cache and the rate
	// limiter degrade to passthrough.
	rdb := config.NewRedisClient()
	cacheCfg := config.LoadCacheConfig()
	var seatMaps *cache.SeatMaps
	if cacheCfg.Enabled && rdb != nil {
		seatMaps = cache.NewSeatMaps(rdb, cacheCfg.Prefix, cacheCfg.TTL)
	}

	publisher := queue.NewPublisher(cfg.AMQPURL)
	if cfg.AMQPURL != "" {
		go func() {
			if err := queue.StartTicketConsumer(cfg.AMQPURL); err != nil {
				log.Printf("[main] ticket consumer stopped: %v", err)
			}
		}()
	}

	movies := repository.NewMovieRepo(db)
	sessions := repository.NewSessionRepo(db)
	tickets := repository.NewTicketRepo(db)

	svc := booking.NewService(tickets, sessions, seatMaps, publisher)

	h := router.Handlers{
		Auth: &handler.AuthHandler{
			Username:  cfg.AdminUser,
			PassHash:  cfg.AdminPassHash,
			JWTSecret: cfg.JWTSecret,
			TTLMin:    cfg.AccessTTLMin,
		},
		Movies:   handler.NewMovieHandler(movies),
		Sessions: handler.NewSessionHandler(sessions, movies, svc),
		Tickets:  handler.NewTicketHandler(svc, tickets),
	}

	e := echo.New()
	e.HideBanner = true
	rateLimit := middleware.NewRateLimiter(config.LoadRateLimitConfig(), rdb)
	router.RegisterRoutes(e, h, cfg.JWTSecret, rateLimit)

	addr := ":" + cfg.Port
	log.Printf("[main] listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
