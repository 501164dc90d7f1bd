// Package testutil holds helpers shared by package tests.
package testutil

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/circulation/internal/database"
)

// NewDatabase opens a migrated SQLite database in a per-test directory and
// closes it when the test ends.
func NewDatabase(t *testing.T) *database.Database {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dbPath := filepath.Join(t.TempDir(), "test_"+name+".db")

	db, err := database.Open(database.Options{
		Path:             dbPath,
		OperationTimeout: 10 * time.Second,
		LogLevel:         logger.Silent,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

// Day returns the calendar date y-m-d at UTC midnight.
func Day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
