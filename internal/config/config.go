package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Database
		Circulation
		Audit
		Tasks
		Notifications
		Auth
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path             string
		OperationTimeout time.Duration // Bound on every read and transaction
		BusyTimeout      time.Duration // How long SQLite waits for the write lock
	}
	Circulation struct {
		LoanPeriodDays int
		FineRatePerDay int64
	}
	Audit struct {
		RetentionDays int // Days to keep audit events (default: 90)
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
	Notifications struct {
		Enabled  bool
		Schedule string // Cron format: "0 8 * * *" = daily at 08:00
	}
	Auth struct {
		SessionSecret   string // Enables CSRF protection when set
		SessionLifetime time.Duration
		BcryptCost      int
		SecureCookies   bool // Set to false for local dev without HTTPS
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)

	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("database_operation_timeout", "5s")
	v.SetDefault("database_busy_timeout_ms", 5000)

	v.SetDefault("loan_period_days", DefaultLoanPeriodDays)
	v.SetDefault("fine_rate_per_day", DefaultFineRatePerDay)
	v.SetDefault("audit_retention_days", 90)

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	v.SetDefault("notifications_enabled", true)
	v.SetDefault("notifications_schedule", "0 8 * * *")

	// Auth defaults
	v.SetDefault("auth_session_secret", "")
	v.SetDefault("auth_session_lifetime", "24h")
	v.SetDefault("auth_bcrypt_cost", 12)
	v.SetDefault("auth_secure_cookies", true)

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path:             v.GetString("DATABASE_PATH"),
			OperationTimeout: v.GetDuration("DATABASE_OPERATION_TIMEOUT"),
			BusyTimeout:      time.Duration(v.GetInt("DATABASE_BUSY_TIMEOUT_MS")) * time.Millisecond,
		},
		Circulation: Circulation{
			LoanPeriodDays: v.GetInt("LOAN_PERIOD_DAYS"),
			FineRatePerDay: v.GetInt64("FINE_RATE_PER_DAY"),
		},
		Audit: Audit{
			RetentionDays: v.GetInt("AUDIT_RETENTION_DAYS"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		Notifications: Notifications{
			Enabled:  v.GetBool("NOTIFICATIONS_ENABLED"),
			Schedule: v.GetString("NOTIFICATIONS_SCHEDULE"),
		},
		Auth: Auth{
			SessionSecret:   v.GetString("AUTH_SESSION_SECRET"),
			SessionLifetime: v.GetDuration("AUTH_SESSION_LIFETIME"),
			BcryptCost:      v.GetInt("AUTH_BCRYPT_COST"),
			SecureCookies:   v.GetBool("AUTH_SECURE_COOKIES"),
		},
	}
}
