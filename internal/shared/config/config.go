package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	JWT        JWTConfig
	Encryption EncryptionConfig
	Plaid      PlaidConfig
	Banking    BankingConfig
	TLS        TLSConfig
	Telemetry  TelemetryConfig
}

type ServerConfig struct {
	Port            string
	Host            string
	AllowedHosts    []string
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	DBName       string
	SSLMode      string
	MaxOpenConns int
}

type JWTConfig struct {
	Secret string
	Issuer string
}

type EncryptionConfig struct {
	Key string
}

// PlaidConfig holds the banking provider credentials
type PlaidConfig struct {
	ClientID     string
	Secret       string
	Environment  string
	CountryCodes []string
	Timeout      time.Duration
}

// BankingConfig tunes account aggregation
type BankingConfig struct {
	MaxConcurrency   int
	InstitutionCache int
	InstitutionTTL   time.Duration
}

type TLSConfig struct {
	Enabled      bool
	CertPath     string
	KeyPath      string
	RedirectHTTP bool
}

type TelemetryConfig struct {
	Enabled      bool
	ServiceName  string
	OTLPEndpoint string
	MetricsPort  string
	SampleRatio  float64
}

var plaidEnvironments = map[string]bool{
	"sandbox":     true,
	"development": true,
	"production":  true,
}

func Load() (*Config, error) {
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	dbMaxOpen, err := strconv.Atoi(getEnv("DB_MAX_OPEN_CONNS", "25"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_OPEN_CONNS: %w", err)
	}

	shutdownTimeout, err := time.ParseDuration(getEnv("SHUTDOWN_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}

	plaidTimeout, err := time.ParseDuration(getEnv("PLAID_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid PLAID_TIMEOUT: %w", err)
	}

	maxConcurrency, err := strconv.Atoi(getEnv("BANKING_MAX_CONCURRENCY", "4"))
	if err != nil {
		return nil, fmt.Errorf("invalid BANKING_MAX_CONCURRENCY: %w", err)
	}
	institutionCache, err := strconv.Atoi(getEnv("INSTITUTION_CACHE_SIZE", "256"))
	if err != nil {
		return nil, fmt.Errorf("invalid INSTITUTION_CACHE_SIZE: %w", err)
	}
	institutionTTL, err := time.ParseDuration(getEnv("INSTITUTION_CACHE_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid INSTITUTION_CACHE_TTL: %w", err)
	}
	sampleRatio, err := strconv.ParseFloat(getEnv("OTEL_TRACE_SAMPLE_RATIO", "1"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid OTEL_TRACE_SAMPLE_RATIO: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			Host:            getEnv("HOST", "0.0.0.0"),
			AllowedHosts:    getListEnv("ALLOWED_HOSTS"),
			ShutdownTimeout: shutdownTimeout,
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         dbPort,
			User:         getEnv("DB_USER", "horizon"),
			Password:     getEnv("DB_PASSWORD", ""),
			DBName:       getEnv("DB_NAME", "horizon"),
			SSLMode:      getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns: dbMaxOpen,
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
			Issuer: getEnv("JWT_ISSUER", "horizon"),
		},
		Encryption: EncryptionConfig{
			Key: getEnv("ENCRYPTION_KEY", ""),
		},
		Plaid: PlaidConfig{
			ClientID:     getEnv("PLAID_CLIENT_ID", ""),
			Secret:       getEnv("PLAID_SECRET", ""),
			Environment:  strings.ToLower(getEnv("PLAID_ENV", "sandbox")),
			CountryCodes: getListEnv("PLAID_COUNTRY_CODES"),
			Timeout:      plaidTimeout,
		},
		Banking: BankingConfig{
			MaxConcurrency:   maxConcurrency,
			InstitutionCache: institutionCache,
			InstitutionTTL:   institutionTTL,
		},
		TLS: TLSConfig{
			Enabled:      getBoolEnv("TLS_ENABLED", false),
			CertPath:     getEnv("TLS_CERT_PATH", ""),
			KeyPath:      getEnv("TLS_KEY_PATH", ""),
			RedirectHTTP: getBoolEnv("TLS_REDIRECT_HTTP", false),
		},
		Telemetry: TelemetryConfig{
			Enabled:      getBoolEnv("OTEL_ENABLED", false),
			ServiceName:  getEnv("OTEL_SERVICE_NAME", "horizon-api"),
			OTLPEndpoint: getEnv("OTEL_EXPORTER_ENDPOINT", "localhost:4317"),
			MetricsPort:  getEnv("OTEL_METRICS_PORT", ""),
			SampleRatio:  sampleRatio,
		},
	}
	if len(cfg.Plaid.CountryCodes) == 0 {
		cfg.Plaid.CountryCodes = []string{"US"}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Encryption.Key == "" {
		return fmt.Errorf("ENCRYPTION_KEY is required")
	}
	if len(c.Encryption.Key) != 32 {
		return fmt.Errorf("ENCRYPTION_KEY must be exactly 32 bytes")
	}

	if c.Plaid.ClientID == "" {
		return fmt.Errorf("PLAID_CLIENT_ID is required")
	}
	if c.Plaid.Secret == "" {
		return fmt.Errorf("PLAID_SECRET is required")
	}
	if !plaidEnvironments[c.Plaid.Environment] {
		return fmt.Errorf("PLAID_ENV must be one of sandbox, development, production (got %q)", c.Plaid.Environment)
	}

	if c.Banking.MaxConcurrency < 1 {
		return fmt.Errorf("BANKING_MAX_CONCURRENCY must be at least 1")
	}
	if c.Banking.InstitutionCache < 1 {
		return fmt.Errorf("INSTITUTION_CACHE_SIZE must be at least 1")
	}

	if c.TLS.Enabled {
		if c.TLS.CertPath == "" {
			return fmt.Errorf("TLS_CERT_PATH is required when TLS_ENABLED=true")
		}
		if c.TLS.KeyPath == "" {
			return fmt.Errorf("TLS_KEY_PATH is required when TLS_ENABLED=true")
		}
	}
	return nil
}

func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	// Accept: true, false, 1, 0, yes, no (case-insensitive)
	switch strings.ToLower(value) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	default:
		return defaultValue
	}
}

// getListEnv splits a comma-separated variable, dropping blanks
func getListEnv(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
