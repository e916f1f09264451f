// Package testutil opens throwaway SQLite databases for tests.
package testutil

import (
	"strings"
	"testing"
	"unicode"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/fropcore/bmiwidget/internal/database"
)

type setupLevel int

const (
	setupNone setupLevel = iota
	setupSchema
	setupSeeded
)

// TestDBOption selects how much of the schema MustOpenTestDB prepares.
type TestDBOption func(*setupLevel)

// WithAutoMigrate creates the tables but leaves them empty.
func WithAutoMigrate() TestDBOption {
	return func(level *setupLevel) { *level = max(*level, setupSchema) }
}

// WithSeedData creates the tables and writes the default widget options.
func WithSeedData() TestDBOption {
	return func(level *setupLevel) { *level = setupSeeded }
}

// MustOpenTestDB opens an in-memory SQLite database private to t. The
// connection is closed, and the database discarded, when t finishes.
func MustOpenTestDB(t *testing.T, opts ...TestDBOption) *gorm.DB {
	t.Helper()

	level := setupNone
	for _, opt := range opts {
		opt(&level)
	}

	db, err := database.Open(database.Config{
		Driver: "sqlite",
		DSN:    "file:" + memoryName(t) + "?mode=memory&cache=shared&_foreign_keys=1",
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	switch level {
	case setupSeeded:
		require.NoError(t, database.AutoMigrateAndSeed(db))
	case setupSchema:
		require.NoError(t, database.AutoMigrate(db))
	}
	return db
}

func memoryName(t *testing.T) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return '_'
	}, t.Name())
}
