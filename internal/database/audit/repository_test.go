package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/circulation/internal/entities"
	"github.com/mrlokans/circulation/internal/testutil"
)

func setupRepository(t *testing.T) (*Repository, context.Context) {
	t.Helper()
	return NewRepository(testutil.NewDatabase(t).DB), context.Background()
}

func TestRepository_LogEvent(t *testing.T) {
	repo, ctx := setupRepository(t)

	event := &entities.AuditEvent{
		ActorID:     1,
		EventType:   entities.AuditEventLoan,
		Action:      "issue",
		Description: "Issued book 3 to borrower 1",
		Status:      entities.AuditStatusSuccess,
	}

	err := repo.LogEvent(ctx, event)
	require.NoError(t, err)
	assert.NotZero(t, event.ID)
	assert.False(t, event.CreatedAt.IsZero())
}

func TestRepository_GetEvents(t *testing.T) {
	repo, ctx := setupRepository(t)

	for i := 0; i < 15; i++ {
		event := &entities.AuditEvent{
			ActorID:   1,
			EventType: entities.AuditEventLoan,
			Action:    "issue",
			Status:    entities.AuditStatusSuccess,
			CreatedAt: time.Now().Add(time.Duration(-i) * time.Hour),
		}
		require.NoError(t, repo.LogEvent(ctx, event))
	}
	for i := 0; i < 5; i++ {
		event := &entities.AuditEvent{
			ActorID:   2,
			EventType: entities.AuditEventCatalog,
			Action:    "book_remove",
			Status:    entities.AuditStatusSuccess,
		}
		require.NoError(t, repo.LogEvent(ctx, event))
	}

	t.Run("get all events", func(t *testing.T) {
		events, total, err := repo.GetEvents(ctx, 0, 50, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(20), total)
		assert.Len(t, events, 20)
	})

	t.Run("get actor events", func(t *testing.T) {
		events, total, err := repo.GetEvents(ctx, 1, 50, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(15), total)
		assert.Len(t, events, 15)
	})

	t.Run("pagination", func(t *testing.T) {
		events, total, err := repo.GetEvents(ctx, 1, 5, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(15), total)
		assert.Len(t, events, 5)

		events2, _, err := repo.GetEvents(ctx, 1, 5, 5)
		require.NoError(t, err)
		assert.Len(t, events2, 5)
		assert.NotEqual(t, events[0].ID, events2[0].ID)
	})

	t.Run("order by created_at desc", func(t *testing.T) {
		events, _, err := repo.GetEvents(ctx, 1, 10, 0)
		require.NoError(t, err)
		for i := 1; i < len(events); i++ {
			assert.False(t, events[i-1].CreatedAt.Before(events[i].CreatedAt))
		}
	})
}

func TestRepository_GetEventsByType(t *testing.T) {
	repo, ctx := setupRepository(t)

	require.NoError(t, repo.LogEvent(ctx, &entities.AuditEvent{ActorID: 1, EventType: entities.AuditEventLoan, Action: "issue"}))
	require.NoError(t, repo.LogEvent(ctx, &entities.AuditEvent{ActorID: 1, EventType: entities.AuditEventCatalog, Action: "book_add"}))
	require.NoError(t, repo.LogEvent(ctx, &entities.AuditEvent{ActorID: 1, EventType: entities.AuditEventLoan, Action: "return"}))

	events, total, err := repo.GetEventsByType(ctx, entities.AuditEventLoan, 1, 50, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	for _, e := range events {
		assert.Equal(t, entities.AuditEventLoan, e.EventType)
	}
}

func TestRepository_DeleteOldEvents(t *testing.T) {
	repo, ctx := setupRepository(t)
	now := time.Now()

	require.NoError(t, repo.LogEvent(ctx, &entities.AuditEvent{
		EventType: entities.AuditEventLoan,
		Action:    "old_issue",
		CreatedAt: now.Add(-48 * time.Hour),
	}))
	require.NoError(t, repo.LogEvent(ctx, &entities.AuditEvent{
		EventType: entities.AuditEventLoan,
		Action:    "new_return",
		CreatedAt: now.Add(-1 * time.Hour),
	}))

	deleted, err := repo.DeleteOldEvents(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	events, total, err := repo.GetEvents(ctx, 0, 50, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, events, 1)
	assert.Equal(t, "new_return", events[0].Action)
}
