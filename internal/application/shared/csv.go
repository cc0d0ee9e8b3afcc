package shared

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aqueduct/backend/internal/domain/shared"
	csvimport "github.com/aqueduct/backend/internal/infrastructure/import"
)

// OpenCSV prepares an uploaded spreadsheet for row-by-row import. File-level
// problems (empty file, no header, missing columns) are reported as
// validation errors so nothing is imported.
func OpenCSV(r io.Reader, required ...string) (*csvimport.CSVParser, error) {
	parser, err := csvimport.NewCSVParser(r)
	if err != nil {
		return nil, fileError(err)
	}
	if err := parser.ParseHeader(); err != nil {
		return nil, fileError(err)
	}
	if missing := parser.ValidateHeaders(required); len(missing) > 0 {
		return nil, shared.NewValidationError(
			(&csvimport.MissingColumnsError{Columns: missing}).Error())
	}
	return parser, nil
}

func fileError(err error) error {
	switch {
	case errors.Is(err, csvimport.ErrEmptyFile), errors.Is(err, csvimport.ErrMissingHeader):
		return shared.NewValidationError(err.Error())
	}
	return shared.NewValidationError(fmt.Sprintf("Unreadable CSV file: %s", strings.TrimSpace(err.Error())))
}
