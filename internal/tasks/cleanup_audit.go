package tasks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// AuditEventCleaner deletes audit events older than a retention period.
type AuditEventCleaner interface {
	DeleteOldEvents(ctx context.Context, retention time.Duration) (int64, error)
}

// CleanupAuditEventsTask trims the audit trail. It is enqueued once at
// startup and can be run on demand.
type CleanupAuditEventsTask struct {
	RetentionDays int `json:"retention_days,omitempty"`
}

func (t CleanupAuditEventsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "cleanup_audit_events",
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration: 24 * time.Hour,
			Data:     &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// days resolves the retention: the task's own, then fallback, then the
// package default.
func (t CleanupAuditEventsTask) days(fallback int) int {
	for _, d := range []int{t.RetentionDays, fallback} {
		if d > 0 {
			return d
		}
	}
	return DefaultConfig().AuditRetentionDays
}

// CleanupAuditEventsProcessor deletes events older than the task's retention,
// or defaultDays when the task has none.
func CleanupAuditEventsProcessor(cleaner AuditEventCleaner, defaultDays int) backlite.QueueProcessor[CleanupAuditEventsTask] {
	return func(ctx context.Context, task CleanupAuditEventsTask) error {
		if cleaner == nil {
			return errors.New("cleanup_audit_events: audit trail not configured")
		}

		days := task.days(defaultDays)
		deleted, err := cleaner.DeleteOldEvents(ctx, time.Duration(days)*24*time.Hour)
		if err != nil {
			return fmt.Errorf("cleanup_audit_events: %w", err)
		}

		if deleted > 0 {
			log.Printf("[TASK] cleanup_audit_events: removed %d events older than %d days", deleted, days)
		}
		return nil
	}
}

func NewCleanupAuditEventsQueue(cleaner AuditEventCleaner, defaultDays int) backlite.Queue {
	return backlite.NewQueue(CleanupAuditEventsProcessor(cleaner, defaultDays))
}
