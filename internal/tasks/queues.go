package tasks

import (
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
)

// Deps are the services the circulation queues run against. Nil services
// leave their queue failing with a "not configured" error.
type Deps struct {
	Reporter OverdueReporter
	Scanner  WishlistScanner
	Cleaner  AuditEventCleaner
	Notes    NotificationLogger
}

// RegisterCirculationQueues registers overdue_scan, wishlist_scan and
// cleanup_audit_events. Must be called before Start.
func (c *Client) RegisterCirculationQueues(deps Deps) {
	c.register(OverdueScanTask{}, NewOverdueScanQueue(deps.Reporter, deps.Notes))
	c.register(WishlistScanTask{}, NewWishlistScanQueue(deps.Scanner, deps.Notes))
	c.register(CleanupAuditEventsTask{}, NewCleanupAuditEventsQueue(deps.Cleaner, c.config.AuditRetentionDays))
}

// TaskType describes a task that can be enqueued by name.
type TaskType struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

var taskTypes = []TaskType{
	{Type: "overdue_scan", Description: "Log every open loan past its due date"},
	{Type: "wishlist_scan", Description: "Log wishlisted books that are available again"},
	{Type: "cleanup_audit_events", Description: "Delete audit events older than the retention period"},
}

// TaskTypes lists the tasks NewTask can build.
func TaskTypes() []TaskType {
	return append([]TaskType(nil), taskTypes...)
}

// NewTask builds a task by queue name. asOf only applies to overdue_scan.
func NewTask(name string, asOf time.Time) (backlite.Task, error) {
	switch name {
	case "overdue_scan":
		t := OverdueScanTask{}
		if !asOf.IsZero() {
			t.AsOf = asOf.Format(time.DateOnly)
		}
		return t, nil
	case "wishlist_scan":
		return WishlistScanTask{}, nil
	case "cleanup_audit_events":
		return CleanupAuditEventsTask{}, nil
	default:
		return nil, fmt.Errorf("unknown task type: %s", name)
	}
}
