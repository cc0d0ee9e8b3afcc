package csvimport

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// CSVParser reads spreadsheet exports: UTF-8 (with or without BOM) or
// Windows-1252, comma or semicolon separated, with a header row.
type CSVParser struct {
	delimiter    rune
	delimiterSet bool
	lazyQuotes   bool
	trimSpace    bool
	headerMap    map[string]int
	headers      []string
	currentRow   int
	totalRows    int
	transcoded   bool
	reader       *csv.Reader
	bufReader    *bufio.Reader
}

// ParserOption is a functional option for CSVParser configuration
type ParserOption func(*CSVParser)

// WithDelimiter forces the field delimiter instead of detecting it from the header line
func WithDelimiter(d rune) ParserOption {
	return func(p *CSVParser) {
		p.delimiter = d
		p.delimiterSet = true
	}
}

// WithLazyQuotes enables lazy quote handling
func WithLazyQuotes(lazy bool) ParserOption {
	return func(p *CSVParser) {
		p.lazyQuotes = lazy
	}
}

// WithTrimSpace enables trimming of leading/trailing spaces from fields
func WithTrimSpace(trim bool) ParserOption {
	return func(p *CSVParser) {
		p.trimSpace = trim
	}
}

// NewCSVParser creates a new CSV parser from a reader
func NewCSVParser(r io.Reader, opts ...ParserOption) (*CSVParser, error) {
	parser := &CSVParser{
		delimiter:  ',',
		lazyQuotes: true,
		trimSpace:  true,
		headerMap:  make(map[string]int),
	}

	for _, opt := range opts {
		opt(parser)
	}

	parser.bufReader = bufio.NewReader(r)

	// UTF-8 BOM: 0xEF, 0xBB, 0xBF
	content, err := parser.bufReader.Peek(3)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(content) >= 3 && content[0] == 0xEF && content[1] == 0xBB && content[2] == 0xBF {
		_, _ = parser.bufReader.Discard(3)
	}

	const sniffSize = 4096
	sample, err := parser.bufReader.Peek(sniffSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("failed to read file for encoding detection: %w", err)
	}
	if len(bytes.TrimSpace(sample)) == 0 {
		return nil, ErrEmptyFile
	}

	if !parser.delimiterSet {
		parser.delimiter = detectDelimiter(sample)
	}

	var src io.Reader = parser.bufReader
	if len(sample) == sniffSize {
		sample = trimPartialRune(sample)
	}
	if !utf8.Valid(sample) {
		// Spreadsheet programs on Spanish-locale Windows export cp1252
		src = transform.NewReader(parser.bufReader, charmap.Windows1252.NewDecoder())
		parser.transcoded = true
	}

	parser.reader = csv.NewReader(src)
	parser.reader.Comma = parser.delimiter
	parser.reader.LazyQuotes = parser.lazyQuotes
	parser.reader.TrimLeadingSpace = parser.trimSpace
	parser.reader.FieldsPerRecord = -1

	return parser, nil
}

// detectDelimiter picks ';' when the header line has more semicolons than commas
func detectDelimiter(sample []byte) rune {
	line := sample
	if i := bytes.IndexAny(sample, "\r\n"); i >= 0 {
		line = sample[:i]
	}
	if bytes.Count(line, []byte{';'}) > bytes.Count(line, []byte{','}) {
		return ';'
	}
	return ','
}

// trimPartialRune drops a multi-byte sequence cut off by the peek window
func trimPartialRune(b []byte) []byte {
	for i := 1; i < utf8.UTFMax && i <= len(b); i++ {
		if utf8.RuneStart(b[len(b)-i]) {
			if !utf8.FullRune(b[len(b)-i:]) {
				return b[:len(b)-i]
			}
			break
		}
	}
	return b
}

// Transcoded reports whether the input was decoded from Windows-1252
func (p *CSVParser) Transcoded() bool {
	return p.transcoded
}

// Delimiter returns the field delimiter in use
func (p *CSVParser) Delimiter() rune {
	return p.delimiter
}

// ParseHeader reads the header row. Header names are normalized with
// NormalizeHeader so "Número Cuenta" and "numero_cuenta" are the same column.
func (p *CSVParser) ParseHeader() error {
	record, err := p.reader.Read()
	if err == io.EOF {
		return ErrMissingHeader
	}
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}

	p.headers = make([]string, 0, len(record))
	for i, h := range record {
		header := NormalizeHeader(h)
		p.headers = append(p.headers, header)
		if header == "" {
			continue
		}
		if _, dup := p.headerMap[header]; !dup {
			p.headerMap[header] = i
		}
	}

	if len(p.headerMap) == 0 {
		return ErrMissingHeader
	}

	p.currentRow = 1
	return nil
}

// Headers returns the parsed header names
func (p *CSVParser) Headers() []string {
	return p.headers
}

// HasHeader checks if a header exists
func (p *CSVParser) HasHeader(name string) bool {
	_, ok := p.headerMap[NormalizeHeader(name)]
	return ok
}

// ValidateHeaders returns the required headers that are missing
func (p *CSVParser) ValidateHeaders(required []string) []string {
	var missing []string
	for _, h := range required {
		if !p.HasHeader(h) {
			missing = append(missing, h)
		}
	}
	return missing
}

// Row represents a parsed CSV row with its data and line number
type Row struct {
	LineNumber int
	Data       map[string]string
}

// Get returns the value for a column by header name
func (r *Row) Get(header string) string {
	return r.Data[NormalizeHeader(header)]
}

// IsEmpty returns true if the row has no non-empty values
func (r *Row) IsEmpty() bool {
	for _, v := range r.Data {
		if v != "" {
			return false
		}
	}
	return true
}

// ReadRow reads the next row from the CSV
func (p *CSVParser) ReadRow() (*Row, error) {
	record, err := p.reader.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	p.currentRow++
	if err != nil {
		return nil, fmt.Errorf("error reading row %d: %w", p.currentRow, err)
	}
	p.totalRows++

	row := &Row{
		LineNumber: p.currentRow,
		Data:       make(map[string]string, len(p.headerMap)),
	}
	for header, i := range p.headerMap {
		value := ""
		if i < len(record) {
			value = record[i]
			if p.trimSpace {
				value = strings.TrimSpace(value)
			}
		}
		row.Data[header] = value
	}
	return row, nil
}

// ReadAllRows reads all remaining rows, skipping completely empty ones
func (p *CSVParser) ReadAllRows() ([]*Row, error) {
	var rows []*Row
	for {
		row, err := p.ReadRow()
		if err == io.EOF {
			break
		}
		if err != nil {
			return rows, err
		}
		if row.IsEmpty() {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// CurrentRow returns the line number of the last record read (the header is 1)
func (p *CSVParser) CurrentRow() int {
	return p.currentRow
}

// TotalRows returns the total number of data rows read
func (p *CSVParser) TotalRows() int {
	return p.totalRows
}

// ParseFromBytes creates a parser from a byte slice
func ParseFromBytes(data []byte, opts ...ParserOption) (*CSVParser, error) {
	return NewCSVParser(bytes.NewReader(data), opts...)
}

// NormalizeHeader lowercases a header, strips diacritics and joins words
// with underscores
func NormalizeHeader(h string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, strings.TrimSpace(h))
	if err != nil {
		out = strings.TrimSpace(h)
	}
	fields := strings.FieldsFunc(strings.ToLower(out), func(r rune) bool {
		return unicode.IsSpace(r) || r == '-' || r == '_'
	})
	return strings.Join(fields, "_")
}

// Writer renders rows in the same dialect the parser reads
type Writer struct {
	w *csv.Writer
}

// NewWriter creates a comma separated writer
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: csv.NewWriter(w)}
}

// Write writes one record
func (w *Writer) Write(record ...string) error {
	return w.w.Write(record)
}

// Flush flushes buffered records and reports any write error
func (w *Writer) Flush() error {
	w.w.Flush()
	return w.w.Error()
}
