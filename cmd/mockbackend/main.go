// Package main runs the in-process storefront backend over HTTP. It backs
// local development and demos so the client stack can be exercised without
// the hosted deployment.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/clovermart/storefront/internal/app/storage/postgres"
	"github.com/clovermart/storefront/internal/backendtest"
	"github.com/clovermart/storefront/internal/middleware"
	"github.com/clovermart/storefront/pkg/logger"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	seed := flag.Bool("seed", true, "seed demo catalog and accounts")
	rps := flag.Int("rate", 50, "sustained requests per second per client")
	burst := flag.Int("burst", 100, "request burst per client")
	dsn := flag.String("dsn", "", "postgres DSN; empty runs on the in-memory store")
	flag.Parse()

	// A missing .env is fine; explicit environment wins either way.
	_ = godotenv.Load()
	if v := os.Getenv("MOCKBACKEND_ADDR"); v != "" {
		*addr = v
	}
	if v := os.Getenv("MOCKBACKEND_POSTGRES_DSN"); v != "" {
		*dsn = v
	}

	log := logger.NewDefault("mockbackend")

	backend, err := buildBackend(*dsn, log)
	if err != nil {
		log.WithError(err).Error("failed to build backend")
		os.Exit(1)
	}

	if *seed {
		if err := seedDemoData(backend); err != nil {
			log.WithError(err).Error("failed to seed demo data")
			os.Exit(1)
		}
	}

	limiter := middleware.NewRateLimiter(*rps, *burst, log)

	srv := &http.Server{
		Addr:         *addr,
		Handler:      limiter.Handler(backend.Handler()),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.WithField("addr", *addr).Info("backend listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("server failed")
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("shutdown failed")
	}
}

func buildBackend(dsn string, log *logger.Logger) (*backendtest.Server, error) {
	if dsn == "" {
		return backendtest.New(log), nil
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	store := postgres.New(db)
	if err := store.EnsureSchema(context.Background()); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	log.Info("running on postgres storage")
	return backendtest.NewWithStores(backendtest.Stores{
		Users:    store,
		Products: store,
		Carts:    store,
		Orders:   store,
	}, log), nil
}
