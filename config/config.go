package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port    string
	GinMode string

	StoreDriver       string
	MongoURI          string
	MongoDatabase     string
	MongoTransactions bool
	DatabaseDSN       string

	AuthProvider        string
	JWTSecret           string
	FirebaseCredentials string

	PaymentGatewayKey string
	PaymentCurrency   string
	VerifyPayments    bool

	RedisURL     string
	RoleCacheTTL time.Duration

	CORSOrigin string
	LogLevel   string
	LogFormat  string
}

// Load reads an optional .env file and then the environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	ttl, err := time.ParseDuration(getEnv("ROLE_CACHE_TTL", "60s"))
	if err != nil {
		return nil, fmt.Errorf("ROLE_CACHE_TTL: %w", err)
	}

	cfg := &Config{
		Port:    getEnv("PORT", "5000"),
		GinMode: os.Getenv("GIN_MODE"),

		StoreDriver:       strings.ToLower(getEnv("STORE_DRIVER", "mongo")),
		MongoURI:          mongoURI(),
		MongoDatabase:     getEnv("MONGO_DATABASE", "parcelDB"),
		MongoTransactions: getEnvAsBool("MONGO_TRANSACTIONS", true),
		DatabaseDSN:       getEnv("DATABASE_DSN", "parcel_delivery.db"),

		AuthProvider:        strings.ToLower(getEnv("AUTH_PROVIDER", "firebase")),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		FirebaseCredentials: getEnv("FIREBASE_CREDENTIALS", "firebase-adminsdk.json"),

		PaymentGatewayKey: os.Getenv("PAYMENT_GATEWAY_KEY"),
		PaymentCurrency:   strings.ToLower(getEnv("PAYMENT_CURRENCY", "usd")),
		VerifyPayments:    getEnvAsBool("VERIFY_PAYMENTS", true),

		RedisURL:     os.Getenv("REDIS_URL"),
		RoleCacheTTL: ttl,

		CORSOrigin: getEnv("CORS_ORIGIN", "*"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		LogFormat:  getEnv("LOG_FORMAT", "text"),
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with
func (c *Config) Validate() error {
	var errs []error
	switch c.StoreDriver {
	case "mongo":
		if c.MongoURI == "" {
			errs = append(errs, errors.New("MONGODB_URI or DB_USER/DB_PASS/DB_HOST is required for the mongo store"))
		}
	case "sqlite", "postgres":
		if c.DatabaseDSN == "" {
			errs = append(errs, fmt.Errorf("DATABASE_DSN is required for the %s store", c.StoreDriver))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver))
	}

	switch c.AuthProvider {
	case "jwt":
		if c.JWTSecret == "" {
			errs = append(errs, errors.New("JWT_SECRET is required when AUTH_PROVIDER=jwt"))
		}
	case "firebase":
		if c.FirebaseCredentials == "" {
			errs = append(errs, errors.New("FIREBASE_CREDENTIALS is required when AUTH_PROVIDER=firebase"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown AUTH_PROVIDER %q", c.AuthProvider))
	}

	if c.VerifyPayments && c.PaymentGatewayKey == "" {
		errs = append(errs, errors.New("PAYMENT_GATEWAY_KEY is required when VERIFY_PAYMENTS is on"))
	}
	if c.RoleCacheTTL <= 0 {
		errs = append(errs, errors.New("ROLE_CACHE_TTL must be positive"))
	}
	return errors.Join(errs...)
}

// Logger builds the process logger from LOG_LEVEL and LOG_FORMAT
func (c *Config) Logger() *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

// mongoURI prefers MONGODB_URI and otherwise builds an Atlas SRV address
// from DB_USER, DB_PASS and DB_HOST
func mongoURI() string {
	if uri := os.Getenv("MONGODB_URI"); uri != "" {
		return uri
	}
	user, pass, host := os.Getenv("DB_USER"), os.Getenv("DB_PASS"), os.Getenv("DB_HOST")
	if user == "" || host == "" {
		return ""
	}
	u := url.URL{
		Scheme:   "mongodb+srv",
		User:     url.UserPassword(user, pass),
		Host:     host,
		Path:     "/",
		RawQuery: "retryWrites=true&w=majority",
	}
	return u.String()
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
