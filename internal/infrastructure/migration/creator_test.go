package migration

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/signage/backend/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add entities table", "add_entities_table"},
		{"Add-Entities-Table", "add_entities_table"},
		{"ADD_ENTITIES_TABLE", "add_entities_table"},
		{"add__entities__table", "add_entities_table"},
		{"Add Options 123", "add_options_123"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"_leading", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

	t.Run("writes an up and down pair", func(t *testing.T) {
		mf, err := CreateMigration(dir, "add sync log", "Track sync runs", now)
		require.NoError(t, err)

		assert.Equal(t, "20260304050607", mf.Version)
		assert.Equal(t, filepath.Join(dir, "20260304050607_add_sync_log.up.sql"), mf.UpPath)
		assert.Equal(t, filepath.Join(dir, "20260304050607_add_sync_log.down.sql"), mf.DownPath)

		up, err := os.ReadFile(mf.UpPath)
		require.NoError(t, err)
		assert.Contains(t, string(up), "-- Migration: add_sync_log")
		assert.Contains(t, string(up), "-- Description: Track sync runs")

		down, err := os.ReadFile(mf.DownPath)
		require.NoError(t, err)
		assert.Contains(t, string(down), "(Rollback)")
	})

	t.Run("refuses to overwrite an existing pair", func(t *testing.T) {
		_, err := CreateMigration(dir, "add sync log", "", now)
		assert.Error(t, err)
	})

	t.Run("rejects a name without usable characters", func(t *testing.T) {
		_, err := CreateMigration(dir, "!!!", "", now)
		assert.ErrorIs(t, err, ErrInvalidMigrationName)
	})
}

func TestListMigrations(t *testing.T) {
	t.Run("lists up migrations in version order", func(t *testing.T) {
		fsys := fstest.MapFS{
			"20260302000000_b.up.sql":   {},
			"20260302000000_b.down.sql": {},
			"20260301000000_a.up.sql":   {},
			"20260301000000_a.down.sql": {},
			"README.md":                 {},
		}

		names, err := ListMigrations(fsys)
		require.NoError(t, err)
		assert.Equal(t, []string{"20260301000000_a", "20260302000000_b"}, names)
	})

	t.Run("embedded migrations are paired", func(t *testing.T) {
		names, err := ListMigrations(migrations.FS)
		require.NoError(t, err)
		require.NotEmpty(t, names)
		for _, name := range names {
			_, err := migrations.FS.Open(name + ".down.sql")
			assert.NoError(t, err, "missing down migration for %s", name)
		}
	})

	t.Run("empty directory", func(t *testing.T) {
		names, err := ListMigrations(os.DirFS(t.TempDir()))
		require.NoError(t, err)
		assert.Empty(t, names)
	})
}
