package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/seatgrid/venue-reservation/internal/config"
	"github.com/seatgrid/venue-reservation/internal/database"
	"github.com/seatgrid/venue-reservation/internal/handler"
	"github.com/seatgrid/venue-reservation/internal/middleware"
	"github.com/seatgrid/venue-reservation/internal/queue"
	"github.com/seatgrid/venue-reservation/internal/repository"
	"github.com/seatgrid/venue-reservation/internal/router"
	"github.com/seatgrid/venue-reservation/internal/service"
)

func main() {
	// .env is optional; real deployments inject environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	venues := repository.NewVenueRepo(db)
	seats := repository.NewSeatRepo(db)
	reservations := repository.NewReservationRepo(db)

	publisher := queue.NewPublisher()
	svc := service.NewReservationService(reservations, seats, venues, publisher)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())

	rdb := config.NewRedisClient()
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens), cfg.JWTSecret)
	router.RegisterPublic(e, handler.NewPublicHandler(venues, svc), cache)
	router.RegisterReservations(e, handler.NewReservationHandler(svc), cfg.JWTSecret)
	router.RegisterAdmin(e, handler.NewAdminHandler(cfg, venues, seats, reservations, svc), cfg.JWTSecret)
	e.Static("/uploads", cfg.UploadDir)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	go service.RunSweeper(ctx, svc, cfg.SweepInterval)
	go func() {
		if err := queue.StartReservationConsumer(); err != nil {
			log.Printf("queue consumer: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
