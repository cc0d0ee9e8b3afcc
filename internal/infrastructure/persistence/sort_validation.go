package persistence

import (
	"strings"

	"github.com/aqueduct/backend/internal/domain/shared"
	"gorm.io/gorm/clause"
)

// sortColumns whitelists the columns a list query may order by. Anything
// else falls back to the default column, so user input never reaches SQL.
type sortColumns map[string]struct{}

func newSortColumns(columns ...string) sortColumns {
	set := make(sortColumns, len(columns)+3)
	for _, c := range append(columns, "id", "created_at", "updated_at") {
		set[c] = struct{}{}
	}
	return set
}

var (
	memberSortColumns   = newSortColumns("name", "national_id")
	propertySortColumns = newSortColumns("account_number", "meter_serial", "sector", "status")
)

// orderBy resolves the filter ordering against allowed. Direction is
// descending unless "asc" is requested.
func orderBy(table string, filter shared.Filter, allowed sortColumns, fallback string) clause.OrderByColumn {
	column := strings.TrimSpace(filter.OrderBy)
	if _, ok := allowed[column]; !ok {
		column = fallback
	}
	return clause.OrderByColumn{
		Column: clause.Column{Table: table, Name: column},
		Desc:   !strings.EqualFold(strings.TrimSpace(filter.OrderDir), "asc"),
	}
}
