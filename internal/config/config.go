package config

import (
	"time"

	"github.com/spf13/viper"
)

// Environment selects development vs. production settings. Production
// tightens cookie security and refuses to run with the default secret.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"
)

type (
	Config struct {
		HTTP
		Global
		Database
		Auth
		OpenLibrary
		Tasks
		EnrichmentSync
	}

	HTTP struct {
		Port int32
		Host string
	}

	Global struct {
		Environment              Environment
		ShutdownTimeoutInSeconds int
	}

	Database struct {
		Path string
	}

	Auth struct {
		SessionSecret   string
		SessionLifetime time.Duration
		BcryptCost      int
		SecureCookies   bool // forced on in production
	}

	OpenLibrary struct {
		BaseURL   string
		CoversURL string
		Timeout   time.Duration
	}

	Tasks struct {
		Enabled           bool
		Workers           int
		ReleaseAfter      time.Duration
		CleanupInterval   time.Duration
		RetentionDuration time.Duration
	}

	EnrichmentSync struct {
		Enabled  bool
		Schedule string // cron format: "0 3 * * *" = daily at 03:00
	}
)

// IsProduction reports whether the app runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Global.Environment == EnvProduction
}

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8080)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("environment", string(EnvDevelopment))
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)

	// Auth defaults
	v.SetDefault("auth_session_secret", "") // auto-generated if empty
	v.SetDefault("auth_session_lifetime", "24h")
	v.SetDefault("auth_bcrypt_cost", 12)
	v.SetDefault("auth_secure_cookies", false)

	// OpenLibrary defaults
	v.SetDefault("open_library_base_url", DefaultOpenLibraryBaseURL)
	v.SetDefault("open_library_covers_url", DefaultOpenLibraryCoversURL)
	v.SetDefault("open_library_timeout", "10s")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "24h")

	// Enrichment sync defaults
	v.SetDefault("enrichment_sync_enabled", false)
	v.SetDefault("enrichment_sync_schedule", "0 3 * * *")

	env := Environment(v.GetString("ENVIRONMENT"))

	cfg := &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			Environment:              env,
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Auth: Auth{
			SessionSecret:   v.GetString("AUTH_SESSION_SECRET"),
			SessionLifetime: v.GetDuration("AUTH_SESSION_LIFETIME"),
			BcryptCost:      v.GetInt("AUTH_BCRYPT_COST"),
			SecureCookies:   v.GetBool("AUTH_SECURE_COOKIES"),
		},
		OpenLibrary: OpenLibrary{
			BaseURL:   v.GetString("OPEN_LIBRARY_BASE_URL"),
			CoversURL: v.GetString("OPEN_LIBRARY_COVERS_URL"),
			Timeout:   v.GetDuration("OPEN_LIBRARY_TIMEOUT"),
		},
		Tasks: Tasks{
			Enabled:           v.GetBool("TASKS_ENABLED"),
			Workers:           v.GetInt("TASK_WORKERS"),
			ReleaseAfter:      v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:   v.GetDuration("TASK_CLEANUP_INTERVAL"),
			RetentionDuration: v.GetDuration("TASK_RETENTION_DURATION"),
		},
		EnrichmentSync: EnrichmentSync{
			Enabled:  v.GetBool("ENRICHMENT_SYNC_ENABLED"),
			Schedule: v.GetString("ENRICHMENT_SYNC_SCHEDULE"),
		},
	}

	// Session cookies are always secure in production.
	if cfg.IsProduction() {
		cfg.Auth.SecureCookies = true
	}

	return cfg
}
