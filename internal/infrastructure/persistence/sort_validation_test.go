package persistence

import (
	"testing"

	"github.com/aqueduct/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
)

func TestOrderBy(t *testing.T) {
	tests := []struct {
		name       string
		orderBy    string
		orderDir   string
		wantColumn string
		wantDesc   bool
	}{
		{"allowed column ascending", "name", "asc", "name", false},
		{"direction is case insensitive", "name", "  ASC ", "name", false},
		{"empty direction is descending", "name", "", "name", true},
		{"unknown direction is descending", "name", "sideways", "name", true},
		{"common columns are allowed", "created_at", "desc", "created_at", true},
		{"unknown column falls back", "password", "asc", "account_number", false},
		{"injection attempt falls back", "name; DROP TABLE members;--", "asc", "account_number", false},
		{"empty column falls back", "", "asc", "account_number", false},
	}

	allowed := newSortColumns("name")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := orderBy("members", shared.Filter{OrderBy: tt.orderBy, OrderDir: tt.orderDir}, allowed, "account_number")
			assert.Equal(t, "members", got.Column.Table)
			assert.Equal(t, tt.wantColumn, got.Column.Name)
			assert.Equal(t, tt.wantDesc, got.Desc)
		})
	}
}

func TestSortColumnSets(t *testing.T) {
	for _, c := range []string{"name", "national_id", "id", "created_at"} {
		assert.Contains(t, memberSortColumns, c)
	}
	for _, c := range []string{"account_number", "meter_serial", "sector", "status", "updated_at"} {
		assert.Contains(t, propertySortColumns, c)
	}
	assert.NotContains(t, memberSortColumns, "account_number")
}
