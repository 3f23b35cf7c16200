package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress         string
	DatabaseURI        string
	RateServiceAddress string
	RateCurrency       string
	JWTSecret          string
	RatePollInterval   time.Duration
	ShutdownTimeout    time.Duration
	TokenTTL           time.Duration
	BcryptCost         int
	MaxCartQuantity    int
	LogLevel           string
	NodeID             int64
	AdminLogin         string
	AdminPassword      string
}

const (
	defaultRunAddress       = ":8080"
	defaultJWTSecret        = "change-me-in-production"
	defaultRateCurrency     = "VES"
	defaultRatePollInterval = 10 * time.Minute
	defaultShutdownTimeout  = 10 * time.Second
	defaultTokenTTL         = 24 * time.Hour
	defaultMaxCartQuantity  = 10
	defaultLogLevel         = "info"
	maxNodeID               = 1023
)

// Load parses configuration from flags and environment variables.
func Load() (*Config, error) {
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:         getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:        getString(lookup, "DATABASE_URI", ""),
		RateServiceAddress: getString(lookup, "RATE_SERVICE_ADDRESS", ""),
		RateCurrency:       getString(lookup, "RATE_CURRENCY", defaultRateCurrency),
		JWTSecret:          getString(lookup, "JWT_SECRET", defaultJWTSecret),
		RatePollInterval:   getDuration(lookup, "RATE_POLL_INTERVAL", defaultRatePollInterval),
		ShutdownTimeout:    getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		TokenTTL:           getDuration(lookup, "TOKEN_TTL", defaultTokenTTL),
		BcryptCost:         getInt(lookup, "BCRYPT_COST", 0),
		MaxCartQuantity:    getInt(lookup, "MAX_CART_QUANTITY", defaultMaxCartQuantity),
		LogLevel:           getString(lookup, "LOG_LEVEL", defaultLogLevel),
		NodeID:             int64(getInt(lookup, "NODE_ID", 1)),
		AdminLogin:         getString(lookup, "ADMIN_LOGIN", ""),
		AdminPassword:      getString(lookup, "ADMIN_PASSWORD", ""),
	}

	fs := flag.NewFlagSet("autoparts", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		pollIntervalStr    = cfg.RatePollInterval.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
		tokenTTLStr        = cfg.TokenTTL.String()
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.RateServiceAddress, "r", cfg.RateServiceAddress, "Exchange rate service base URL")
	fs.StringVar(&cfg.RateCurrency, "currency", cfg.RateCurrency, "Display currency code")
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", cfg.JWTSecret, "Secret for signing auth tokens")
	fs.StringVar(&pollIntervalStr, "rate-interval", pollIntervalStr, "Interval between exchange rate polls")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")
	fs.StringVar(&tokenTTLStr, "token-ttl", tokenTTLStr, "Lifetime of issued auth tokens")
	fs.IntVar(&cfg.MaxCartQuantity, "max-quantity", cfg.MaxCartQuantity, "Storefront per-line quantity limit")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.Int64Var(&cfg.NodeID, "node", cfg.NodeID, "Snowflake node identifier for invoice numbers")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.RatePollInterval, err = time.ParseDuration(pollIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid rate poll interval: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if cfg.TokenTTL, err = time.ParseDuration(tokenTTLStr); err != nil {
		return nil, fmt.Errorf("invalid token ttl: %w", err)
	}

	if secretFile, ok := lookup("JWT_SECRET_FILE"); ok && secretFile != "" {
		content, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, fmt.Errorf("read jwt secret file: %w", err)
		}
		cfg.JWTSecret = strings.TrimSpace(string(content))
	}

	cfg.RateCurrency = strings.ToUpper(strings.TrimSpace(cfg.RateCurrency))
	cfg.RateServiceAddress = strings.TrimRight(cfg.RateServiceAddress, "/")

	if cfg.MaxCartQuantity <= 0 {
		cfg.MaxCartQuantity = defaultMaxCartQuantity
	}

	if cfg.RatePollInterval <= 0 {
		cfg.RatePollInterval = defaultRatePollInterval
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaultTokenTTL
	}

	if cfg.NodeID < 0 || cfg.NodeID > maxNodeID {
		return nil, fmt.Errorf("node id must be between 0 and %d", maxNodeID)
	}

	if (cfg.AdminLogin == "") != (cfg.AdminPassword == "") {
		return nil, fmt.Errorf("admin login and password must be provided together")
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	return cfg, nil
}

// RatesEnabled reports whether display conversion is configured.
func (c *Config) RatesEnabled() bool {
	return c.RateServiceAddress != "" && c.RateCurrency != ""
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
