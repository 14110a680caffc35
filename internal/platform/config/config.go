package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backends selectable with CASETRIAGE_STORE.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
	StoreSQLite   = "sqlite"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr        string
	Store       string
	DatabaseURL string
	SQLitePath  string
	PolicyFile  string
	LogLevel    string
	LogFormat   string
	HTTP        HTTPConfig
	Redis       RedisConfig
	Kafka       KafkaConfig
}

// HTTPConfig bounds request handling and graceful shutdown.
type HTTPConfig struct {
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// RedisConfig configures the Redis case store client.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures the audit outbox relay. An empty broker list
// disables the relay.
type KafkaConfig struct {
	Brokers       string
	Topic         string
	RelayInterval time.Duration
	RelayBatch    int
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	return Server{
		Addr:        getEnv("CASETRIAGE_ADDR", ":8080"),
		Store:       strings.ToLower(getEnv("CASETRIAGE_STORE", StoreMemory)),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		SQLitePath:  getEnv("SQLITE_PATH", "casetriage.db"),
		PolicyFile:  os.Getenv("CASETRIAGE_POLICY_FILE"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "json"),
		HTTP: HTTPConfig{
			ReadTimeout:     getDuration("HTTP_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getDuration("HTTP_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getDuration("HTTP_IDLE_TIMEOUT", time.Minute),
			ShutdownTimeout: getDuration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:       os.Getenv("KAFKA_BROKERS"),
			Topic:         getEnv("KAFKA_TOPIC", "casetriage.audit"),
			RelayInterval: getDuration("OUTBOX_RELAY_INTERVAL", time.Second),
			RelayBatch:    getInt("OUTBOX_RELAY_BATCH", 100),
		},
	}
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
