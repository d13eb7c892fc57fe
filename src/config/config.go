package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Server struct {
	Port            string
	ShutdownTimeout time.Duration
}

type Engine struct {
	Symbol        string
	IngressMode   string // sync | async
	QueueCapacity int    // 0 = unbounded
	PriceScale    int32  // decimal places per price tick
}

type Log struct {
	Level  string
	File   string
	Format string // json | pretty
}

type RateLimit struct {
	Disabled    bool
	MaxRequests int
	Window      time.Duration
}

type Availability struct {
	MaintenanceMode       bool
	MaxConcurrentRequests int64
	RequestLoggingOff     bool
}

type API struct {
	DefaultDepth int
	MaxDepth     int
	MaxLatencies int
	TradesLimit  int
}

type Config struct {
	Server       Server
	Engine       Engine
	Log          Log
	RateLimit    RateLimit
	Availability Availability
	API          API
}

func Default() Config {
	return Config{
		Server: Server{
			Port:            "8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Engine: Engine{
			Symbol:      "BOOK",
			IngressMode: "async",
			PriceScale:  2,
		},
		Log: Log{
			Level:  "info",
			Format: "json",
		},
		RateLimit: RateLimit{
			MaxRequests: 100,
			Window:      time.Second,
		},
		API: API{
			DefaultDepth: 10,
			MaxDepth:     1000,
			MaxLatencies: 10000,
			TradesLimit:  100,
		},
	}
}

// Load reads envPath (or ./.env when empty) if present, then lets the
// process environment override it. Priority: ENV > .env file > defaults.
func Load(envPath string) Config {
	if envPath != "" {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	cfg := Default()

	cfg.Server.Port = getEnv("PORT", cfg.Server.Port)
	cfg.Server.ShutdownTimeout = getDuration("SHUTDOWN_TIMEOUT", cfg.Server.ShutdownTimeout)

	cfg.Engine.Symbol = getEnv("SYMBOL", cfg.Engine.Symbol)
	cfg.Engine.IngressMode = getEnv("INGRESS_MODE", cfg.Engine.IngressMode)
	if v := os.Getenv("QUEUE_CAPACITY"); v != "" {
		// edge case: zero is a valid setting (unbounded)
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			cfg.Engine.QueueCapacity = parsed
		}
	}
	if v := os.Getenv("PRICE_SCALE"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 && parsed <= 8 {
			cfg.Engine.PriceScale = int32(parsed)
		}
	}

	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.File = os.Getenv("LOG_FILE")
	cfg.Log.Format = getEnv("LOG_FORMAT", cfg.Log.Format)

	cfg.RateLimit.Disabled = os.Getenv("RATE_LIMIT_DISABLED") == "1"
	cfg.RateLimit.MaxRequests = getPositiveInt("RATE_LIMIT_MAX", cfg.RateLimit.MaxRequests)
	cfg.RateLimit.Window = getDuration("RATE_LIMIT_WINDOW", cfg.RateLimit.Window)

	cfg.Availability.MaintenanceMode = os.Getenv("MAINTENANCE_MODE") == "1"
	if v := os.Getenv("MAX_CONCURRENT_REQUESTS"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil && parsed > 0 {
			cfg.Availability.MaxConcurrentRequests = parsed
		}
	}
	cfg.Availability.RequestLoggingOff = os.Getenv("REQUEST_LOGGING_DISABLED") == "1"

	cfg.API.DefaultDepth = getPositiveInt("ORDERBOOK_DEFAULT_DEPTH", cfg.API.DefaultDepth)
	cfg.API.MaxDepth = getPositiveInt("ORDERBOOK_MAX_DEPTH", cfg.API.MaxDepth)
	cfg.API.MaxLatencies = getPositiveInt("METRICS_MAX_LATENCIES", cfg.API.MaxLatencies)
	cfg.API.TradesLimit = getPositiveInt("TRADES_DEFAULT_LIMIT", cfg.API.TradesLimit)

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getPositiveInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}
