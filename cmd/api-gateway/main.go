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
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"ms-park-access/internal/config"
	"ms-park-access/internal/gateway"
	"ms-park-access/internal/logger"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.NewLogger()
	defer log.Close()

	gw := gateway.New(log)
	routes := map[string]string{
		"/registry":    cfg.Gateway.RegistryURL,
		"/attractions": cfg.Gateway.AttractionURL,
		"/tickets":     cfg.Gateway.TicketURL,
		"/validate":    cfg.Gateway.TicketURL,
	}
	for _, prefix := range []string{"/registry", "/attractions", "/tickets", "/validate"} {
		if err := gw.Register(prefix, routes[prefix]); err != nil {
			log.Fatal("GATEWAY", fmt.Sprintf("Failed to register %s: %v", prefix, err))
		}
		log.Info("GATEWAY", fmt.Sprintf("%s -> %s", prefix, routes[prefix]))
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = ":8000"
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Handle("/*", gw)

	server := &http.Server{
		Addr:         port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("SERVER", fmt.Sprintf("🚀 API gateway on %s", port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("SERVER", fmt.Sprintf("HTTP error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(ctxShutdown)
	log.Info("SERVER", "✅ API gateway shutdown complete")
}
