package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/selvawasi/selvawasi-api/internal/config"
	"github.com/selvawasi/selvawasi-api/internal/database"
	"github.com/selvawasi/selvawasi-api/internal/handler"
	"github.com/selvawasi/selvawasi-api/internal/logger"
	"github.com/selvawasi/selvawasi-api/internal/repository"
	"github.com/selvawasi/selvawasi-api/internal/router"
	"github.com/selvawasi/selvawasi-api/internal/service"
)

func main() {
	cfg := config.Load()
	logger.Setup(cfg.LogLevel, cfg.LogFile)

	db, err := database.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		logrus.WithError(err).Fatal("database connection failed")
	}
	defer db.Close()
	if err := database.Migrate(context.Background(), db); err != nil {
		logrus.WithError(err).Fatal("database migration failed")
	}

	rdb, err := config.NewRedisClient()
	if err != nil {
		logrus.WithError(err).Warn("redis unavailable, cache and rate limit disabled")
	} else {
		defer rdb.Close()
	}

	var events service.EventPublisher = service.NopPublisher{}
	if cfg.EventsEnabled {
		events = service.NewAMQPPublisher(cfg.RabbitMQURL)
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	operators := repository.NewOperatorRepo(db)
	boats := repository.NewBoatRepo(db)
	routes := repository.NewRouteRepo(db)
	schedules := repository.NewScheduleRepo(db)
	bookings := repository.NewBookingRepo(db)
	restaurants := repository.NewRestaurantRepo(db)
	reservations := repository.NewReservationRepo(db)
	experiences := repository.NewExperienceRepo(db)
	stats := repository.NewStatsRepo(db)

	bookingSvc := service.NewBookingService(bookings, experiences, events)
	reservationSvc := service.NewReservationService(reservations, restaurants, events)
	seeder := service.NewSeeder(service.Repos{
		Users:       users,
		Operators:   operators,
		Boats:       boats,
		Routes:      routes,
		Schedules:   schedules,
		Restaurants: restaurants,
		Experiences: experiences,
	}, cfg.BcryptCost)

	e := router.New(db, router.Handlers{
		Auth:         handler.NewAuthHandler(cfg, users, tokens),
		Operators:    handler.NewOperatorHandler(operators, users, boats),
		Boats:        handler.NewBoatHandler(boats, operators),
		Routes:       handler.NewRouteHandler(routes),
		Schedules:    handler.NewScheduleHandler(schedules, boats, routes),
		Experiences:  handler.NewExperienceHandler(experiences, operators),
		Restaurants:  handler.NewRestaurantHandler(restaurants, users),
		Bookings:     handler.NewBookingHandler(bookings, bookingSvc),
		Reservations: handler.NewReservationHandler(reservations, reservationSvc),
		Admin:        handler.NewAdminHandler(stats),
		Debug:        handler.NewDebugHandler(seeder, cfg.SeedEnabled),
	}, router.Options{
		JWTSecret: cfg.JWTSecret,
		Redis:     rdb,
		Cache:     config.LoadCacheConfig(),
		RateLimit: config.LoadRateLimitConfig(),
	})

	addr := ":" + cfg.Port
	go func() {
		logrus.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env, "db": cfg.DBDriver}).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logrus.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("graceful shutdown failed")
	}
}
