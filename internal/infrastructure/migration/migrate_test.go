package migration

import (
	"database/sql"
	"testing"

	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const schemaDir = "../../../migrations"

func newSQLiteMigrator(t *testing.T) (*Migrator, *sql.DB) {
	t.Helper()
	db, err := sql.Open("sqlite3", "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	require.NoError(t, err)

	m, err := NewWithDriver(driver, "sqlite3", schemaDir, nil)
	require.NoError(t, err)
	return m, db
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(&count)
	require.NoError(t, err)
	return count == 1
}

func TestMigrator_UpAndDown(t *testing.T) {
	m, db := newSQLiteMigrator(t)

	version, dirty, err := m.Version()
	require.NoError(t, err)
	assert.Zero(t, version)
	assert.False(t, dirty)

	require.NoError(t, m.Up())
	for _, table := range []string{"members", "properties", "readings", "tariff_configs", "invoices"} {
		assert.True(t, tableExists(t, db, table), table)
	}

	version, dirty, err = m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(20250301000000), version)
	assert.False(t, dirty)

	// a second run is a no-op
	require.NoError(t, m.Up())

	require.NoError(t, m.Down())
	assert.False(t, tableExists(t, db, "invoices"))
	assert.False(t, tableExists(t, db, "members"))
}

func TestMigrator_OneActiveInvoicePerReading(t *testing.T) {
	m, db := newSQLiteMigrator(t)
	require.NoError(t, m.Up())

	insert := `INSERT INTO invoices (id, reading_id, property_id, number, total, status, retired_at, created_at, updated_at)
		VALUES (?, 'r-1', 'p-1', ?, 27500, 'PENDING', ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`

	_, err := db.Exec(insert, "i-1", "FAC-2025-A-001-1", "2025-04-01T00:00:00Z")
	require.NoError(t, err, "a retired invoice does not count")
	_, err = db.Exec(insert, "i-2", "FAC-2025-A-001-1b", nil)
	require.NoError(t, err)
	_, err = db.Exec(insert, "i-3", "FAC-2025-A-001-1c", nil)
	assert.Error(t, err, "a second active invoice for the same reading is rejected")
	_, err = db.Exec(insert, "i-4", "FAC-2025-A-001-1", "2025-04-02T00:00:00Z")
	assert.Error(t, err, "invoice numbers are unique")
}
