package csvimport

import (
	"encoding/csv"
	"errors"
	"fmt"
	"strings"
)

// Code classifies a rejected row
type Code string

const (
	CodeMalformed  Code = "ERR_IMPORT_MALFORMED_ROW"
	CodeInvalid    Code = "ERR_IMPORT_VALIDATION"
	CodeRequired   Code = "ERR_IMPORT_REQUIRED_FIELD"
	CodeType       Code = "ERR_IMPORT_INVALID_TYPE"
	CodeRange      Code = "ERR_IMPORT_INVALID_RANGE"
	CodeDuplicate  Code = "ERR_IMPORT_DUPLICATE_IN_FILE"
	CodeExists     Code = "ERR_IMPORT_DUPLICATE_IN_DB"
	CodeUnknownRef Code = "ERR_IMPORT_REFERENCE_NOT_FOUND"
	CodeRejected   Code = "ERR_IMPORT_REJECTED"
)

const defaultMaxErrors = 100

var (
	ErrEmptyFile     = errors.New("CSV file is empty")
	ErrMissingHeader = errors.New("CSV file missing header row")
)

// MissingColumnsError reports required headers absent from a file
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return "CSV file is missing required columns: " + strings.Join(e.Columns, ", ")
}

// IsMalformedRow reports whether an error from ReadRow concerns a single
// record, so reading can continue with the next one
func IsMalformedRow(err error) bool {
	var pe *csv.ParseError
	return errors.As(err, &pe)
}

// RowError is one rejected row. Message is the operator-facing text of the
// import summary; Error() is the log form.
type RowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column,omitempty"`
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

func (e RowError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("row %d: %s", e.Row, e.Message)
	}
	return fmt.Sprintf("row %d, column '%s': %s", e.Row, e.Column, e.Message)
}

// ErrorCollection keeps the first maxErrors row errors and counts the rest
type ErrorCollection struct {
	kept  []RowError
	limit int
	total int
}

// NewErrorCollection caps kept errors at maxErrors; non-positive means 100
func NewErrorCollection(maxErrors int) *ErrorCollection {
	if maxErrors <= 0 {
		maxErrors = defaultMaxErrors
	}
	return &ErrorCollection{limit: maxErrors}
}

func (ec *ErrorCollection) Add(err RowError) {
	ec.total++
	if len(ec.kept) < ec.limit {
		ec.kept = append(ec.kept, err)
	}
}

func (ec *ErrorCollection) add(row int, column string, code Code, value, message string) {
	ec.Add(RowError{Row: row, Column: column, Code: code, Message: message, Value: value})
}

// Reject records a row with a ready-made message and no column
func (ec *ErrorCollection) Reject(row int, message string) {
	ec.add(row, "", CodeRejected, "", message)
}

// Invalid records a column value that broke a length or custom rule
func (ec *ErrorCollection) Invalid(row int, column, value, message string) {
	ec.add(row, column, CodeInvalid, value, message)
}

func (ec *ErrorCollection) Required(row int, column string) {
	ec.add(row, column, CodeRequired, "",
		fmt.Sprintf("Fila %d: la columna %s está vacía", row, column))
}

// InvalidType records a value that does not parse as expected, e.g. "un número"
func (ec *ErrorCollection) InvalidType(row int, column, expected, value string) {
	ec.add(row, column, CodeType, value,
		fmt.Sprintf("Fila %d: valor '%s' inválido en %s (se esperaba %s)", row, value, column, expected))
}

// OutOfRange records a value outside bound, phrased as "mayor o igual a 0"
func (ec *ErrorCollection) OutOfRange(row int, column, bound, value string) {
	ec.add(row, column, CodeRange, value,
		fmt.Sprintf("Fila %d: %s debe ser %s", row, column, bound))
}

// OutOfRangeMessage records a range violation with a caller-built message
func (ec *ErrorCollection) OutOfRangeMessage(row int, column, value, message string) {
	ec.add(row, column, CodeRange, value, message)
}

// Duplicate records a key repeated within the same file
func (ec *ErrorCollection) Duplicate(row int, column, value string, firstRow int) {
	ec.add(row, column, CodeDuplicate, value,
		fmt.Sprintf("Fila %d: %s %s repetido (ya aparece en la fila %d)", row, column, value, firstRow))
}

// Exists records a key that is already stored
func (ec *ErrorCollection) Exists(row int, column, value, message string) {
	ec.add(row, column, CodeExists, value, message)
}

// UnknownReference records a row pointing at a record that does not exist
func (ec *ErrorCollection) UnknownReference(row int, column, value, message string) {
	ec.add(row, column, CodeUnknownRef, value, message)
}

// Malformed records a row the CSV reader could not parse
func (ec *ErrorCollection) Malformed(row int, err error) {
	ec.add(row, "", CodeMalformed, "", fmt.Sprintf("Fila %d: formato inválido (%v)", row, err))
}

func (ec *ErrorCollection) Errors() []RowError { return ec.kept }

// Len is the number of kept errors, at most the limit
func (ec *ErrorCollection) Len() int { return len(ec.kept) }

// Total counts every recorded error, kept or not
func (ec *ErrorCollection) Total() int { return ec.total }

func (ec *ErrorCollection) Truncated() bool { return ec.total > ec.limit }

func (ec *ErrorCollection) Messages() []string {
	out := make([]string, len(ec.kept))
	for i, e := range ec.kept {
		out[i] = e.Message
	}
	return out
}

// CountByCode tallies the kept errors per code
func (ec *ErrorCollection) CountByCode() map[Code]int {
	counts := make(map[Code]int)
	for _, e := range ec.kept {
		counts[e.Code]++
	}
	return counts
}

// Result is the outcome of a bulk import: how many rows were stored and the
// messages of the rows that were not
type Result struct {
	SuccessCount int        `json:"success_count"`
	Errors       []string   `json:"errors"`
	RowErrors    []RowError `json:"row_errors,omitempty"`
	TotalErrors  int        `json:"total_errors"`
	IsTruncated  bool       `json:"is_truncated,omitempty"`
}

func NewResult(successCount int, ec *ErrorCollection) *Result {
	return &Result{
		SuccessCount: successCount,
		Errors:       ec.Messages(),
		RowErrors:    ec.Errors(),
		TotalErrors:  ec.Total(),
		IsTruncated:  ec.Truncated(),
	}
}
