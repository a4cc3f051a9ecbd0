// File: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Approval policies for newly created profiles.
const (
	ApprovalPolicyManual = "manual"
	ApprovalPolicyAuto   = "auto"
)

// Identity provider backends.
const (
	IdentityProviderFirebase = "firebase"
	IdentityProviderMemory   = "memory"
)

// Config holds all configuration for the application.
type Config struct {
	// Server Configuration
	GinMode       string        `mapstructure:"GIN_MODE"`
	ServerHost    string        `mapstructure:"SERVER_HOST"`
	ServerPort    string        `mapstructure:"SERVER_PORT"`
	ServerTimeout time.Duration `mapstructure:"SERVER_TIMEOUT_SECONDS"`

	// Database Configuration
	DBHost            string        `mapstructure:"DB_HOST"`
	DBPort            string        `mapstructure:"DB_PORT"`
	DBUser            string        `mapstructure:"DB_USER"`
	DBPassword        string        `mapstructure:"DB_PASSWORD"`
	DBName            string        `mapstructure:"DB_NAME"`
	DBSSLMode         string        `mapstructure:"DB_SSL_MODE"`
	DBTimezone        string        `mapstructure:"DB_TIMEZONE"`
	DBMaxIdleConns    int           `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBMaxOpenConns    int           `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBConnMaxLifetime time.Duration `mapstructure:"DB_CONN_MAX_LIFETIME_MINUTES"`
	DBSource          string        `mapstructure:"DB_SOURCE"`

	// Logging Configuration
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	// Identity Provider Configuration
	// IdentityEndpoint and IdentityAPIKey are the two required secrets for
	// talking to the external identity service. Missing either is fatal.
	IdentityProvider string `mapstructure:"IDENTITY_PROVIDER"`
	IdentityEndpoint string `mapstructure:"IDENTITY_ENDPOINT"`
	IdentityAPIKey   string `mapstructure:"IDENTITY_API_KEY"`

	// Firebase Admin SDK (used when IDENTITY_PROVIDER=firebase)
	FirebaseServiceAccountKeyPath string `mapstructure:"FIREBASE_SERVICE_ACCOUNT_KEY_PATH"`
	FirebaseProjectID             string `mapstructure:"FIREBASE_PROJECT_ID"`

	// Session & Approval Gate
	ApprovalPolicy      string        `mapstructure:"APPROVAL_POLICY"`
	GateFetchTimeout    time.Duration `mapstructure:"GATE_FETCH_TIMEOUT_SECONDS"`
	GateRefreshInterval time.Duration `mapstructure:"GATE_REFRESH_INTERVAL_SECONDS"`

	// Application Specific Configuration
	ReporterCompletionPoints int `mapstructure:"REPORTER_COMPLETION_POINTS"`
	VolunteerEventPoints     int `mapstructure:"VOLUNTEER_EVENT_POINTS"`
	DefaultEventCapacity     int `mapstructure:"DEFAULT_EVENT_CAPACITY"`

	// File Storage (report photos)
	FileStoragePath string `mapstructure:"FILE_STORAGE_PATH"`
	MaxUploadSizeMB int64  `mapstructure:"MAX_UPLOAD_SIZE_MB"`

	// Cron Jobs
	EventReminderJobSchedule string `mapstructure:"EVENT_REMINDER_JOB_SCHEDULE"`

	// Elasticsearch Configuration
	ElasticsearchURL string `mapstructure:"ELASTICSEARCH_URL"`
}

// Load attempts to load configuration from a .env file (if present) and environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	v := viper.New()

	// Set default values
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_TIMEOUT_SECONDS", 30)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "password")
	v.SetDefault("DB_NAME", "riverrevive_db")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_TIMEZONE", "UTC")
	v.SetDefault("DB_MAX_IDLE_CONNS", 10)
	v.SetDefault("DB_MAX_OPEN_CONNS", 100)
	v.SetDefault("DB_CONN_MAX_LIFETIME_MINUTES", 60)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")

	v.SetDefault("IDENTITY_PROVIDER", IdentityProviderFirebase)
	v.SetDefault("IDENTITY_ENDPOINT", "")
	v.SetDefault("IDENTITY_API_KEY", "")
	v.SetDefault("FIREBASE_PROJECT_ID", "") // Optional
	v.SetDefault("FIREBASE_SERVICE_ACCOUNT_KEY_PATH", "")

	v.SetDefault("APPROVAL_POLICY", ApprovalPolicyManual)
	v.SetDefault("GATE_FETCH_TIMEOUT_SECONDS", 10)
	v.SetDefault("GATE_REFRESH_INTERVAL_SECONDS", 15)

	v.SetDefault("REPORTER_COMPLETION_POINTS", 50)
	v.SetDefault("VOLUNTEER_EVENT_POINTS", 30)
	v.SetDefault("DEFAULT_EVENT_CAPACITY", 25)

	v.SetDefault("FILE_STORAGE_PATH", "./uploads")
	v.SetDefault("MAX_UPLOAD_SIZE_MB", 5)

	v.SetDefault("EVENT_REMINDER_JOB_SCHEDULE", "@daily")

	v.SetDefault("ELASTICSEARCH_URL", "")

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling configuration: %w", err)
	}

	// Convert duration fields
	cfg.ServerTimeout = time.Duration(v.GetInt("SERVER_TIMEOUT_SECONDS")) * time.Second
	cfg.DBConnMaxLifetime = time.Duration(v.GetInt("DB_CONN_MAX_LIFETIME_MINUTES")) * time.Minute
	cfg.GateFetchTimeout = time.Duration(v.GetInt("GATE_FETCH_TIMEOUT_SECONDS")) * time.Second
	cfg.GateRefreshInterval = time.Duration(v.GetInt("GATE_REFRESH_INTERVAL_SECONDS")) * time.Second

	// GORM DSN constructed from the individual DB_* params. The DB_SOURCE env
	// var, when set, is meant for golang-migrate and is read from the Makefile.
	cfg.DBSource = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode, cfg.DBTimezone)

	// Basic validation for critical configs. No degraded mode: a missing
	// identity secret aborts startup.
	if strings.TrimSpace(cfg.IdentityEndpoint) == "" {
		return nil, fmt.Errorf("FATAL: IDENTITY_ENDPOINT is not set. The identity service endpoint URL is required")
	}
	if strings.TrimSpace(cfg.IdentityAPIKey) == "" {
		return nil, fmt.Errorf("FATAL: IDENTITY_API_KEY is not set. The identity service public API key is required")
	}

	switch cfg.IdentityProvider {
	case IdentityProviderFirebase:
		if strings.TrimSpace(cfg.FirebaseServiceAccountKeyPath) == "" {
			return nil, fmt.Errorf("FATAL: FIREBASE_SERVICE_ACCOUNT_KEY_PATH is not set. This is required for Firebase Admin SDK initialization")
		}
		if _, err := os.Stat(cfg.FirebaseServiceAccountKeyPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("FATAL: Firebase service account key file specified in FIREBASE_SERVICE_ACCOUNT_KEY_PATH (%s) not found", cfg.FirebaseServiceAccountKeyPath)
		}
	case IdentityProviderMemory:
		// Demo/test provider, no credentials beyond the endpoint/key pair.
	default:
		return nil, fmt.Errorf("FATAL: unknown IDENTITY_PROVIDER %q (expected %q or %q)", cfg.IdentityProvider, IdentityProviderFirebase, IdentityProviderMemory)
	}

	if cfg.ApprovalPolicy != ApprovalPolicyManual && cfg.ApprovalPolicy != ApprovalPolicyAuto {
		return nil, fmt.Errorf("FATAL: invalid APPROVAL_POLICY %q (expected %q or %q)", cfg.ApprovalPolicy, ApprovalPolicyManual, ApprovalPolicyAuto)
	}

	return &cfg, nil
}
