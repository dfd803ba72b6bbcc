package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"

	"ms-park-access/internal/config"
	"ms-park-access/internal/database"
	"ms-park-access/internal/identity"
	"ms-park-access/internal/kafka"
	"ms-park-access/internal/logger"
	"ms-park-access/internal/models"
	"ms-park-access/internal/tickets/db"
	ticketsredis "ms-park-access/internal/tickets/redis"
	tickets "ms-park-access/internal/tickets/service"
	"ms-park-access/internal/tickets/ticket_api"
)

func main() {
	_ = godotenv.Load() // Loads .env file if present

	cfg := config.Load()
	log := logger.NewLogger()
	defer log.Close()

	ctx := context.Background()

	bunDB, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to open SQLite: %v", err))
	}
	defer bunDB.Close()

	if err := database.CreateSchema(ctx, bunDB, (*models.Ticket)(nil)); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to create schema: %v", err))
	}
	log.Info("DATABASE", "SQLite connection successful")

	store := &db.DB{Bun: bunDB}
	verifier := identity.NewVerifier(cfg.Identity.GatewayURL, cfg.Identity.Timeout, log)
	service := tickets.NewTicketService(store, verifier, log)

	if cfg.Kafka.Enabled {
		topics := []string{cfg.Kafka.Topics.TicketIssued, cfg.Kafka.Topics.AccessEvents}
		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, topics, log); err != nil {
			log.Warn("KAFKA", fmt.Sprintf("Topic bootstrap failed: %v", err))
		}
		publisher := kafka.NewEventPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topics.TicketIssued, cfg.Kafka.Topics.AccessEvents, log)
		defer publisher.Close()
		service.Publisher = publisher
		log.Info("KAFKA", fmt.Sprintf("Publishing events to %v", topics))
	}

	var guard *ticketsredis.ScanGuard
	if cfg.ScanGuard.TTL > 0 {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn("REDIS", fmt.Sprintf("Redis unreachable, scan guard disabled: %v", err))
		} else {
			guard = ticketsredis.NewScanGuard(rdb, cfg.ScanGuard.TTL, log)
			log.Info("REDIS", fmt.Sprintf("Scan guard enabled with TTL %s", cfg.ScanGuard.TTL))
		}
	}

	handler := ticket_api.NewHandler(service, guard, log)

	r := chi.NewRouter()
	r.Mount("/", handler.Routes())

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("SERVER", fmt.Sprintf("🚀 Ticket service on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("SERVER", fmt.Sprintf("HTTP error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctxShutdown, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_ = server.Shutdown(ctxShutdown)
	log.Info("SERVER", "✅ Ticket service shutdown complete")
}
