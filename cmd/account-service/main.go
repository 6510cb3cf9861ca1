/**
 * @description
 * Main entry point for the account-service. It wires every component
 * explicitly: config, the PostgreSQL pool, the Redis cache, the holder
 * lookup client, the application service, the holder_created consumer and
 * the HTTP server, then waits for a termination signal and shuts down
 * gracefully.
 *
 * @dependencies
 * - pgxpool for database connections, go-redis for the cache, godotenv for
 *   local config, and the shared rabbitmq package for messaging.
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
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/xinton/desafio-dev-api-rest/internal/accounts/api"
	"github.com/xinton/desafio-dev-api-rest/internal/accounts/app"
	"github.com/xinton/desafio-dev-api-rest/internal/accounts/cache"
	"github.com/xinton/desafio-dev-api-rest/internal/accounts/config"
	"github.com/xinton/desafio-dev-api-rest/internal/accounts/store"
	"github.com/xinton/desafio-dev-api-rest/pkg/holderclient"
	"github.com/xinton/desafio-dev-api-rest/pkg/rabbitmq"
)

const (
	holderEventsExchange = "holder_events"
	holderCreatedKey     = "holder_created"
	holderCreatedQueue   = "account_service_holder_created"
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

	// Establish database connection pool.
	dbConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Unable to parse database URL: %v", err)
	}
	dbConfig.MaxConns = 50
	dbConfig.MinConns = 5
	dbConfig.MaxConnLifetime = 30 * time.Minute
	dbConfig.MaxConnIdleTime = 5 * time.Minute

	dbpool, err := pgxpool.NewWithConfig(context.Background(), dbConfig)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer dbpool.Close()
	log.Println("Database connection established")

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()

	// Set up dependencies.
	repo := store.NewPostgresRepository(dbpool)
	balanceCache := cache.New(redisClient)
	holders := holderclient.NewClient(cfg.HolderAPIURL)
	dailyLimit, err := decimal.NewFromString(cfg.DailyWithdrawalLimit)
	if err != nil {
		log.Fatalf("Invalid DAILY_WITHDRAWAL_LIMIT %q: %v", cfg.DailyWithdrawalLimit, err)
	}

	service := app.NewService(repo, balanceCache, holders, dailyLimit, cfg.DefaultBranch)
	eventHandler := app.NewAccountEventHandler(service)

	// Setup RabbitMQ consumer for holder provisioning.
	consumer, err := rabbitmq.NewConsumer(cfg.RabbitMQURL)
	if err != nil {
		log.Fatalf("Failed to connect to RabbitMQ: %v", err)
	}
	defer consumer.Close()

	go func() {
		log.Printf("Starting consumer for event '%s'...", holderCreatedKey)
		err := consumer.Consume(holderEventsExchange, holderCreatedQueue, holderCreatedKey, eventHandler.HandleHolderCreatedEvent)
		if err != nil {
			log.Printf("Consumer error: %v", err)
		}
	}()

	// Setup and start HTTP server.
	router := api.NewRouter(api.NewAccountHandlers(service))
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

	log.Println("Account service is running with API and event consumer.")

	// Wait for termination signal for graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down account-service...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server gracefully stopped")
}
