// Package interfaces holds compile-time checks for the seams between the
// circulation packages.
//
// # Background Scans
//
// The task queue never imports concrete services. Each queue takes a narrow
// interface declared next to its processor:
//
//   - OverdueReporter: Today and OverdueReport (internal/tasks/overdue_scan.go)
//   - WishlistScanner: wishlist holders and their notifications (internal/tasks/wishlist_scan.go)
//   - AuditEventCleaner: retention cleanup (internal/tasks/cleanup_audit.go)
//   - NotificationLogger: records each scan in the audit trail (internal/tasks/overdue_scan.go)
//
// circulation.Service provides the first two and audit.Service the others.
//
// # Scheduling
//
//   - Enqueuer: puts a task on the queue (internal/scheduler/notifications.go),
//     implemented by tasks.Client
//
// # Adding a Scan
//
//  1. Declare the task type and its Config in internal/tasks
//  2. Accept the services it needs as a small interface
//  3. Register the queue in RegisterCirculationQueues
//  4. Add a check to checks.go for each implementation
package interfaces
