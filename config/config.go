package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
	Websocket WebsocketConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	LogFile      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	ConnectionString string
	MaxOpenConns     int
	MaxIdleConns     int
}

type RedisConfig struct {
	Address  string
	Username string
	Password string
	DB       int
}

// KafkaConfig configures the optional chat archival producer. An empty
// Address disables it.
type KafkaConfig struct {
	Address string
	Topic   string
}

type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

type RateLimitConfig struct {
	Capacity     int64
	RefillRate   int64
	RefillPeriod time.Duration
}

type WebsocketConfig struct {
	PingInterval time.Duration
	PongWait     time.Duration
	WriteWait    time.Duration
	SendBuffer   int
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         getEnvAsInt("SERVER_PORT", 3000),
			LogFile:      getEnv("LOG_FILE", "./log/server.log"),
			ReadTimeout:  getEnvAsDuration("READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getEnvAsDuration("WRITE_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			ConnectionString: getEnv("DATABASE_URL", ""),
			MaxOpenConns:     getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:     getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
		},
		Redis: RedisConfig{
			Address:  getEnv("REDIS_ADDR", "localhost:6379"),
			Username: getEnv("REDIS_USERNAME", "default"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Address: getEnv("KAFKA_ADDR", ""),
			Topic:   getEnv("KAFKA_TOPIC", "chat-history"),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
			TTL:    getEnvAsDuration("JWT_TTL", 24*time.Hour),
		},
		RateLimit: RateLimitConfig{
			Capacity:     getEnvAsInt64("RATE_LIMIT_CAPACITY", 200),
			RefillRate:   getEnvAsInt64("RATE_LIMIT_REFILL", 10),
			RefillPeriod: getEnvAsDuration("RATE_LIMIT_PERIOD", time.Second),
		},
		Websocket: WebsocketConfig{
			PingInterval: getEnvAsDuration("WS_PING_INTERVAL", 30*time.Second),
			PongWait:     getEnvAsDuration("WS_PONG_WAIT", 60*time.Second),
			WriteWait:    getEnvAsDuration("WS_WRITE_WAIT", 10*time.Second),
			SendBuffer:   getEnvAsInt("WS_SEND_BUFFER", 256),
		},
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	var errors []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid server port: %d (must be 1-65535)", c.Server.Port))
	}

	if c.Database.ConnectionString == "" {
		errors = append(errors, "database connection string (DATABASE_URL) is required")
	}

	if c.Redis.Address == "" {
		errors = append(errors, "redis address (REDIS_ADDR) is required")
	}

	if c.JWT.Secret == "" {
		errors = append(errors, "JWT signing secret (JWT_SECRET) is required")
	}
	if c.JWT.TTL <= 0 {
		errors = append(errors, "JWT TTL must be > 0")
	}

	if c.Kafka.Address != "" && c.Kafka.Topic == "" {
		errors = append(errors, "kafka topic (KAFKA_TOPIC) is required when KAFKA_ADDR is set")
	}

	if c.RateLimit.Capacity <= 0 {
		errors = append(errors, "rate limit capacity must be > 0")
	}
	if c.RateLimit.RefillRate <= 0 {
		errors = append(errors, "rate limit refill rate must be > 0")
	}
	if c.RateLimit.RefillPeriod <= 0 {
		errors = append(errors, "rate limit refill period must be > 0")
	}

	if c.Websocket.PongWait <= c.Websocket.PingInterval {
		errors = append(errors, "websocket pong wait must be longer than the ping interval")
	}
	if c.Websocket.SendBuffer <= 0 {
		errors = append(errors, "websocket send buffer must be > 0")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", joinErrors(errors))
	}

	return nil
}

func joinErrors(errors []string) string {
	result := ""
	for i, err := range errors {
		if i > 0 {
			result += "\n  - "
		}
		result += err
	}
	return result
}

func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// PrintSummary logs a summary of the loaded configuration
func (c *Config) PrintSummary() {
	fmt.Println("Configuration Summary:")
	fmt.Printf("  Server: %s\n", c.ServerAddress())
	fmt.Printf("  Database: %s\n", maskConnectionString(c.Database.ConnectionString))
	fmt.Printf("  Redis: %s (DB: %d)\n", c.Redis.Address, c.Redis.DB)
	if c.Kafka.Address != "" {
		fmt.Printf("  Kafka: %s (Topic: %s)\n", c.Kafka.Address, c.Kafka.Topic)
	} else {
		fmt.Println("  Kafka: disabled")
	}
	fmt.Printf("  Token TTL: %s\n", c.JWT.TTL)
	fmt.Printf("  Rate Limit: %d requests/%s (capacity: %d)\n",
		c.RateLimit.RefillRate, c.RateLimit.RefillPeriod, c.RateLimit.Capacity)
}

// maskConnectionString masks sensitive parts of the connection string
func maskConnectionString(connStr string) string {
	if len(connStr) < 20 {
		return "***"
	}
	return connStr[:20] + "..." + connStr[len(connStr)-10:]
}

// Helper functions to read environment variables with defaults
func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	valStr := os.Getenv(key)
	if val, err := strconv.Atoi(valStr); err == nil {
		return val
	}
	return defaultVal
}

func getEnvAsInt64(key string, defaultVal int64) int64 {
	valStr := os.Getenv(key)
	if val, err := strconv.ParseInt(valStr, 10, 64); err == nil {
		return val
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	valStr := os.Getenv(key)
	if val, err := time.ParseDuration(valStr); err == nil {
		return val
	}
	return defaultVal
}
