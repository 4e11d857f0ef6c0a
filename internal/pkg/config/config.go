package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreSQLite = "sqlite"
	StoreMongo  = "mongo"
)

type Config struct {
	Port     string
	AppEnv   string
	LogLevel string

	Upstream Upstream

	PlaceholderImageURL string
	CORSAllowedOrigins  []string
	CORSAllowedMethods  []string

	CartStore     string
	RedisAddr     string
	CartTTL       time.Duration
	SQLitePath    string
	MongoURI      string
	MongoDatabase string

	ServiceName  string
	OTLPEndpoint string

	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

type Upstream struct {
	BaseURL   string
	APIKey    string
	Username  string
	Password  string
	UserAgent string
	Timeout   time.Duration
}

// Load reads .env files (if any) and then the process environment. Values
// already present in the environment win over .env entries.
func Load(files ...string) Config {
	if err := godotenv.Load(files...); err != nil {
		slog.Debug("no .env file loaded, using process environment", "error", err)
	}

	return Config{
		Port:     getEnv("PORT", "3000"),
		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		Upstream: Upstream{
			BaseURL:   getEnv("UPSTREAM_BASE_URL", "https://aliphia.com/v1/api_public"),
			APIKey:    os.Getenv("ALIBIA_API_KEY"),
			Username:  os.Getenv("ALIBIA_USERNAME"),
			Password:  os.Getenv("ALIBIA_PASSWORD"),
			UserAgent: os.Getenv("UPSTREAM_USER_AGENT"),
			Timeout:   getEnvDuration("UPSTREAM_TIMEOUT", 0),
		},

		PlaceholderImageURL: getEnv("PLACEHOLDER_IMAGE_URL", "https://via.placeholder.com/150"),
		CORSAllowedOrigins:  getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		CORSAllowedMethods:  getEnvList("CORS_ALLOWED_METHODS", []string{"GET"}),

		CartStore:     strings.ToLower(getEnv("CART_STORE", StoreMemory)),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		CartTTL:       getEnvDuration("CART_TTL", 0),
		SQLitePath:    getEnv("SQLITE_PATH", "./data/carts.db"),
		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGO_DATABASE", "storefront"),

		ServiceName:  getEnv("OTEL_SERVICE_NAME", "storefront-gateway"),
		OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),

		RequestTimeout:  getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func (c Config) Validate() error {
	var errs []error
	if c.Upstream.APIKey == "" {
		errs = append(errs, errors.New("ALIBIA_API_KEY is required"))
	}
	if c.Upstream.Username == "" || c.Upstream.Password == "" {
		errs = append(errs, errors.New("ALIBIA_USERNAME and ALIBIA_PASSWORD are required"))
	}
	switch c.CartStore {
	case StoreMemory, StoreRedis, StoreSQLite, StoreMongo:
	default:
		errs = append(errs, fmt.Errorf("unknown CART_STORE %q", c.CartStore))
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Errorf("invalid PORT %q", c.Port))
	}
	return errors.Join(errs...)
}

func (c Config) TracingEnabled() bool {
	return c.OTLPEndpoint != ""
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("invalid duration, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return d
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
