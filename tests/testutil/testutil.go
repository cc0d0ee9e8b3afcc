// Package testutil provides shared fixtures for the billing tests: database
// handles (sqlmock and in-memory SQLite), HTTP envelope helpers and a
// recording event publisher.
package testutil

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// MockDB is a Postgres-dialect GORM handle whose SQL is scripted with
// sqlmock. The connection is closed when the test ends.
type MockDB struct {
	DB   *gorm.DB
	Mock sqlmock.Sqlmock
}

func NewMockDB(t *testing.T) *MockDB {
	t.Helper()

	conn, mock, err := sqlmock.New()
	require.NoError(t, err, "sqlmock")
	t.Cleanup(func() { _ = conn.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: conn}), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err, "open gorm on sqlmock")

	return &MockDB{DB: db, Mock: mock}
}

// ExpectationsWereMet fails the test when a scripted statement never ran
func (m *MockDB) ExpectationsWereMet(t *testing.T) {
	t.Helper()
	require.NoError(t, m.Mock.ExpectationsWereMet(), "unmet database expectations")
}
