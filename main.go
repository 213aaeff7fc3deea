package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"barbuddy/config"
	"barbuddy/db"
	infraredis "barbuddy/infrastructure/redis"
	"barbuddy/server"
	"barbuddy/server/realtime"
	"barbuddy/server/routes"
	"barbuddy/services/achievements"
	"barbuddy/services/chat"
	"barbuddy/services/friends"
	"barbuddy/services/groups"
	"barbuddy/services/lifts"
	"barbuddy/services/programs"
	"barbuddy/services/tokens"
	"barbuddy/services/users"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application failed: %v", err)
	}
}

func run() error {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	log.Println("✓ Configuration loaded and validated")
	cfg.PrintSummary()

	// Postgres
	sdb, err := sql.Open("postgres", cfg.Database.ConnectionString)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}
	defer sdb.Close()
	sdb.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sdb.SetMaxIdleConns(cfg.Database.MaxIdleConns)

	if err := db.Migrate(sdb); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	queries := db.New(sdb)
	log.Println("✓ Connected to Postgres, migrations applied")

	// Redis
	rdb, err := infraredis.NewClient(cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to initialize Redis client: %w", err)
	}
	defer rdb.Close()
	log.Println("✓ Connected to Redis")

	// Kafka producer for chat archival, disabled when unconfigured
	var producer *kafka.Producer
	if cfg.Kafka.Address != "" {
		producer, err = kafka.NewProducer(&kafka.ConfigMap{
			"bootstrap.servers": cfg.Kafka.Address,
			"client.id":         "barbuddy-server",
			"acks":              "all",
			"retries":           3,
			"retry.backoff.ms":  100,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize Kafka producer: %w", err)
		}
		log.Println("✓ Connected to Kafka")
	}

	tsvc := tokens.NewService(cfg.JWT.Secret, cfg.JWT.TTL)

	hub := realtime.NewHub()
	defer hub.Close()

	csvc := chat.NewChatService(chat.Config{
		Store:    queries,
		Delivery: hub,
		Redis:    rdb,
		Producer: producer,
		Topic:    cfg.Kafka.Topic,
	})
	defer csvc.Close()
	log.Println("✓ Initialized chat service")

	deps := routes.Deps{
		SQL:          sdb,
		Redis:        rdb,
		Tokens:       tsvc,
		Hub:          hub,
		Users:        users.NewUserService(queries, tsvc),
		Lifts:        lifts.NewLiftService(queries),
		Friends:      friends.NewFriendService(queries),
		Groups:       groups.NewGroupService(queries),
		Programs:     programs.NewProgramService(queries),
		Achievements: achievements.NewAchievementService(queries),
		Chat:         csvc,
		WebsocketOptions: realtime.Options{
			WriteWait:    cfg.Websocket.WriteWait,
			PongWait:     cfg.Websocket.PongWait,
			PingInterval: cfg.Websocket.PingInterval,
			SendBuffer:   cfg.Websocket.SendBuffer,
		},
	}

	srv, err := server.NewServer(cfg, deps)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			errChan <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		log.Printf("Received signal: %v. Shutting down gracefully...", sig)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Println("✓ Server shutdown complete")
	return nil
}
