/**
 * @description
 * Main entry point for the holder-service. It wires the PostgreSQL pool, the
 * holder repository, the application service, the outbox dispatcher that
 * publishes holder_created events and the HTTP server, then waits for a
 * termination signal and shuts down gracefully.
 */
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/xinton/desafio-dev-api-rest/internal/holders/api"
	"github.com/xinton/desafio-dev-api-rest/internal/holders/app"
	"github.com/xinton/desafio-dev-api-rest/internal/holders/config"
	"github.com/xinton/desafio-dev-api-rest/internal/holders/store"
)

func main() {
	// Load .env file for local development.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("cannot load config: %v", err)
	}

	dbConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Unable to parse database URL: %v", err)
	}
	dbConfig.MaxConns = 25
	dbConfig.MaxConnLifetime = 30 * time.Minute

	dbpool, err := pgxpool.NewWithConfig(context.Background(), dbConfig)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer dbpool.Close()
	log.Println("Database connection established")

	repo := store.NewPostgresHolderRepository(dbpool)
	service := app.NewService(repo)

	// Start the outbox dispatcher with its own lifecycle, stopped on shutdown.
	dispatcherCtx, stopDispatcher := context.WithCancel(context.Background())
	defer stopDispatcher()
	dispatcher := app.NewOutboxDispatcher(repo, cfg.RabbitMQURL)
	go dispatcher.Run(dispatcherCtx)
	log.Println("Outbox dispatcher started")

	router := api.NewRouter(api.NewHolderHandlers(service))
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not start server: %s", err)
		}
	}()

	log.Println("Holder service is running.")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down holder-service...")
	stopDispatcher()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server gracefully stopped")
}
