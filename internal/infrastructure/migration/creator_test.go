package migration

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add readings index", "add_readings_index"},
		{"Add-Readings-Index", "add_readings_index"},
		{"ADD_READINGS_INDEX", "add_readings_index"},
		{"add__readings__index", "add_readings_index"},
		{"Tariff 2025", "tariff_2025"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"trailing_", "trailing"},
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
	dir := filepath.Join(t.TempDir(), "nested", "migrations")
	now := time.Date(2025, 5, 6, 7, 8, 9, 0, time.UTC)

	mf, err := createMigrationAt(dir, "add sector to properties", "Sector column for route planning", now)
	require.NoError(t, err)

	assert.Equal(t, "20250506070809", mf.Version)
	assert.Equal(t, filepath.Join(dir, "20250506070809_add_sector_to_properties.up.sql"), mf.UpPath)
	assert.Equal(t, filepath.Join(dir, "20250506070809_add_sector_to_properties.down.sql"), mf.DownPath)

	up, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "add sector to properties")
	assert.Contains(t, string(up), "Sector column for route planning")
	assert.Contains(t, string(up), "Write your UP migration SQL here")

	down, err := os.ReadFile(mf.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "Rollback")
	assert.Contains(t, string(down), "Write your DOWN migration SQL here")

	_, err = createMigrationAt(dir, "add sector to properties", "", now)
	assert.Error(t, err, "an existing pair is never overwritten")
}

func TestListMigrations(t *testing.T) {
	dir := t.TempDir()
	for _, f := range []string{
		"20250302000000_add_audit.up.sql",
		"20250302000000_add_audit.down.sql",
		"20250301000000_create_billing_schema.up.sql",
		"20250301000000_create_billing_schema.down.sql",
		"README.md",
		".up.sql",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, f), []byte("-- test"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir.up.sql"), 0o755))

	migrations, err := ListMigrations(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"20250301000000_create_billing_schema",
		"20250302000000_add_audit",
	}, migrations)
}

func TestListMigrations_NonexistentDirectory(t *testing.T) {
	migrations, err := ListMigrations(filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)
	assert.Empty(t, migrations)
}

func TestMissingRollbacks(t *testing.T) {
	dir := t.TempDir()
	for _, f := range []string{
		"20250301000000_create_billing_schema.up.sql",
		"20250301000000_create_billing_schema.down.sql",
		"20250302000000_add_audit.up.sql",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, f), []byte("-- test"), 0o644))
	}

	missing, err := MissingRollbacks(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"20250302000000_add_audit"}, missing)
}

func TestRepositoryMigrationsArePaired(t *testing.T) {
	migrations, err := ListMigrations(schemaDir)
	require.NoError(t, err)
	require.NotEmpty(t, migrations)

	missing, err := MissingRollbacks(schemaDir)
	require.NoError(t, err)
	assert.Empty(t, missing)
}
