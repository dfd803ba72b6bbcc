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
	"github.com/joho/godotenv"

	"ms-park-access/internal/attractions/attraction_api"
	"ms-park-access/internal/attractions/db"
	attractions "ms-park-access/internal/attractions/service"
	"ms-park-access/internal/config"
	"ms-park-access/internal/database"
	"ms-park-access/internal/logger"
	"ms-park-access/internal/models"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.NewLogger()
	defer log.Close()

	ctx := context.Background()

	path := os.Getenv("SQLITE_PATH")
	if path == "" {
		path = "./attractions.db"
	}

	bunDB, err := database.Open(path)
	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to open SQLite: %v", err))
	}
	defer bunDB.Close()

	if err := database.CreateSchema(ctx, bunDB, (*models.Attraction)(nil)); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to create schema: %v", err))
	}
	log.Info("DATABASE", "SQLite connection successful")

	service := attractions.NewAttractionService(&db.DB{Bun: bunDB}, log)
	handler := attraction_api.NewHandler(service, log)

	port := os.Getenv("PORT")
	if port == "" {
		port = ":8082"
	}

	r := chi.NewRouter()
	r.Mount("/", handler.Routes())

	server := &http.Server{
		Addr:         port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("SERVER", fmt.Sprintf("🚀 Attraction service on %s", port))
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
	log.Info("SERVER", "✅ Attraction service shutdown complete")
}
