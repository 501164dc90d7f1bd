package tasks

import (
	"time"

	"github.com/mrlokans/circulation/internal/config"
)

// Config holds configuration for the task queue system.
type Config struct {
	// Workers is the number of concurrent task workers. Default: 2
	Workers int

	// ReleaseAfter is when stuck tasks are released back to queue. Default: 15m
	ReleaseAfter time.Duration

	// CleanupInterval is how often to clean up completed tasks. Default: 1h
	CleanupInterval time.Duration

	// AuditRetentionDays is passed to cleanup_audit_events tasks enqueued
	// without an explicit retention. Default: 90
	AuditRetentionDays int
}

func DefaultConfig() Config {
	return Config{
		Workers:            2,
		ReleaseAfter:       15 * time.Minute,
		CleanupInterval:    time.Hour,
		AuditRetentionDays: 90,
	}
}

// FromConfig fills the queue settings from the application config, keeping
// defaults for unset values.
func FromConfig(tasks config.Tasks, audit config.Audit) Config {
	cfg := DefaultConfig()
	if tasks.Workers > 0 {
		cfg.Workers = tasks.Workers
	}
	if tasks.ReleaseAfter > 0 {
		cfg.ReleaseAfter = tasks.ReleaseAfter
	}
	if tasks.CleanupInterval > 0 {
		cfg.CleanupInterval = tasks.CleanupInterval
	}
	if audit.RetentionDays > 0 {
		cfg.AuditRetentionDays = audit.RetentionDays
	}
	return cfg
}
