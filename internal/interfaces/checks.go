package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/circulation/internal/audit"
	"github.com/mrlokans/circulation/internal/circulation"
	"github.com/mrlokans/circulation/internal/scheduler"
	"github.com/mrlokans/circulation/internal/tasks"
)

// =============================================================================
// Background Scans
// =============================================================================

var _ tasks.OverdueReporter = (*circulation.Service)(nil)
var _ tasks.WishlistScanner = (*circulation.Service)(nil)

var _ tasks.AuditEventCleaner = (*audit.Service)(nil)
var _ tasks.NotificationLogger = (*audit.Service)(nil)

// =============================================================================
// Task Queue
// =============================================================================

var _ scheduler.Enqueuer = (*tasks.Client)(nil)

var _ backlite.Task = tasks.OverdueScanTask{}
var _ backlite.Task = tasks.WishlistScanTask{}
var _ backlite.Task = tasks.CleanupAuditEventsTask{}
