package params

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Store struct {
	// Backend selects the key-value implementation: memory, pebble, redis or sqlite.
	Backend string
	// Path is the pebble directory or sqlite file.
	Path string
	// Key is the single slot the snapshot lives under.
	Key string

	RedisAddr string
	RedisDB   int
}

type Format struct {
	// StableSymbols render with a "$" prefix instead of a symbol suffix.
	StableSymbols []string
	// Precision is the fractional digit budget of the subscript renderer.
	Precision int
	// Digits is the default significant-digit count for ordinary values.
	Digits int
}

type API struct {
	Addr           string
	AllowedOrigins []string
}

type Log struct {
	// File tees JSON logs to this path in addition to stdout. Empty disables it.
	File  string
	Level string
}

type Config struct {
	Store  Store
	Format Format
	API    API
	Log    Log
}

func Default() Config {
	return Config{
		Store: Store{
			Backend:   "pebble",
			Path:      "data/spark.db",
			Key:       "spark-store",
			RedisAddr: "localhost:6379",
		},
		Format: Format{
			StableSymbols: []string{"USD", "USDC", "USDT", "DAI", "USDE", "FDUSD"},
			Precision:     10,
			Digits:        6,
		},
		API: API{
			Addr:           ":8080",
			AllowedOrigins: []string{"http://localhost:3000", "http://localhost:3001"},
		},
		Log: Log{
			Level: "info",
		},
	}
}

// LoadFromEnv loads configuration from .env file (if exists) and environment variables
// Priority: ENV > .env file > defaults
func LoadFromEnv(envPath string) Config {
	cfg := Default()

	if envPath != "" {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	cfg.Store.Backend = getEnv("STORE_BACKEND", cfg.Store.Backend)
	cfg.Store.Path = getEnv("STORE_PATH", cfg.Store.Path)
	cfg.Store.Key = getEnv("STORE_KEY", cfg.Store.Key)
	cfg.Store.RedisAddr = getEnv("REDIS_ADDR", cfg.Store.RedisAddr)
	if db := os.Getenv("REDIS_DB"); db != "" {
		if n, err := strconv.Atoi(db); err == nil {
			cfg.Store.RedisDB = n
		}
	}

	if syms := os.Getenv("STABLE_SYMBOLS"); syms != "" {
		cfg.Format.StableSymbols = splitList(syms)
	}
	if p := os.Getenv("FORMAT_PRECISION"); p != "" {
		if n, err := strconv.Atoi(p); err == nil && n > 0 {
			cfg.Format.Precision = n
		}
	}
	if d := os.Getenv("FORMAT_DIGITS"); d != "" {
		if n, err := strconv.Atoi(d); err == nil && n > 0 {
			cfg.Format.Digits = n
		}
	}

	cfg.API.Addr = getEnv("API_ADDR", cfg.API.Addr)
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		cfg.API.AllowedOrigins = splitList(origins)
	}

	cfg.Log.File = getEnv("LOG_FILE", cfg.Log.File)
	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)

	return cfg
}

// getEnv returns environment variable value or default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// splitList parses "a, b,c" into [a b c], dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
