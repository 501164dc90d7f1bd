// Package audit records who changed what in the circulation system.
//
// Events are written in the background so that a slow audit insert never
// delays a loan. Call Wait before closing the database.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mrlokans/circulation/internal/database/audit"
	"github.com/mrlokans/circulation/internal/entities"
)

const maxMessageLength = 500

// Service provides high-level audit logging functionality.
type Service struct {
	repo    *audit.Repository
	pending sync.WaitGroup
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository) *Service {
	return &Service{repo: repo}
}

// Log records an audit event synchronously.
func (s *Service) Log(ctx context.Context, event *entities.AuditEvent) error {
	return s.repo.LogEvent(ctx, event)
}

// LogAsync records an audit event in the background. A nil Service drops it.
func (s *Service) LogAsync(event *entities.AuditEvent) {
	if s == nil {
		return
	}
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.repo.LogEvent(context.Background(), event); err != nil {
			log.Printf("Failed to log audit event %s/%s: %v", event.EventType, event.Action, err)
		}
	}()
}

// Wait blocks until every event passed to LogAsync has been written.
func (s *Service) Wait() {
	if s == nil {
		return
	}
	s.pending.Wait()
}

// LogLoan records an issue, return or renewal of loan by actorID.
func (s *Service) LogLoan(actorID uint, action string, loan *entities.Loan) {
	metadata := map[string]any{
		"borrower_id": loan.BorrowerID,
		"book_id":     loan.BookID,
		"due_date":    loan.DueDate.Format(time.DateOnly),
	}
	if loan.ReturnDate != nil {
		metadata["return_date"] = loan.ReturnDate.Format(time.DateOnly)
		metadata["fine"] = loan.Fine
	}

	event := &entities.AuditEvent{
		ActorID:     actorID,
		EventType:   entities.AuditEventLoan,
		Action:      action,
		Description: fmt.Sprintf("%s: book %d, borrower %d", action, loan.BookID, loan.BorrowerID),
		EntityType:  entities.AuditEntityLoan,
		EntityID:    &loan.ID,
		Metadata:    encode(metadata),
		Status:      entities.AuditStatusSuccess,
	}
	s.LogAsync(event)
}

// LogCatalog records a catalog change.
func (s *Service) LogCatalog(actorID uint, action string, bookID uint, description string) {
	s.LogAsync(&entities.AuditEvent{
		ActorID:     actorID,
		EventType:   entities.AuditEventCatalog,
		Action:      action,
		Description: truncate(description, maxMessageLength),
		EntityType:  entities.AuditEntityBook,
		EntityID:    &bookID,
		Status:      entities.AuditStatusSuccess,
	})
}

// LogMembership records a registration or activation change.
func (s *Service) LogMembership(actorID uint, action string, borrowerID uint, description string) {
	s.LogAsync(&entities.AuditEvent{
		ActorID:     actorID,
		EventType:   entities.AuditEventMembership,
		Action:      action,
		Description: truncate(description, maxMessageLength),
		EntityType:  entities.AuditEntityBorrower,
		EntityID:    &borrowerID,
		Status:      entities.AuditStatusSuccess,
	})
}

// LogWishlist records a wishlist change made by the borrower.
func (s *Service) LogWishlist(borrowerID uint, action string, bookID uint) {
	s.LogAsync(&entities.AuditEvent{
		ActorID:     borrowerID,
		EventType:   entities.AuditEventWishlist,
		Action:      action,
		Description: fmt.Sprintf("%s: book %d", action, bookID),
		EntityType:  entities.AuditEntityBook,
		EntityID:    &bookID,
		Status:      entities.AuditStatusSuccess,
	})
}

// LogNotification records a derived notification batch. A non-nil err marks
// the batch as failed.
func (s *Service) LogNotification(action, description string, count int, err error) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventNotification,
		Action:      action,
		Description: truncate(description, maxMessageLength),
		Metadata:    encode(map[string]any{"count": count}),
		Status:      entities.AuditStatusSuccess,
	}
	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), maxMessageLength)
	}
	s.LogAsync(event)
}

// LogAuth records a login or logout attempt.
func (s *Service) LogAuth(actorID uint, action, username string, success bool) {
	event := &entities.AuditEvent{
		ActorID:     actorID,
		EventType:   entities.AuditEventAuth,
		Action:      action,
		Description: truncate(username, maxMessageLength),
		Status:      entities.AuditStatusSuccess,
	}
	if !success {
		event.Status = entities.AuditStatusFailed
	}
	s.LogAsync(event)
}

// GetEvents retrieves paginated audit events.
func (s *Service) GetEvents(ctx context.Context, actorID uint, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEvents(ctx, actorID, limit, offset)
}

// GetEventsByType retrieves audit events filtered by type.
func (s *Service) GetEventsByType(ctx context.Context, eventType entities.AuditEventType, actorID uint, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEventsByType(ctx, eventType, actorID, limit, offset)
}

// DeleteOldEvents removes events older than retention.
func (s *Service) DeleteOldEvents(ctx context.Context, retention time.Duration) (int64, error) {
	return s.repo.DeleteOldEvents(ctx, time.Now().Add(-retention))
}

func encode(metadata map[string]any) string {
	b, err := json.Marshal(metadata)
	if err != nil {
		return ""
	}
	return string(b)
}

// truncate shortens a string to max length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
