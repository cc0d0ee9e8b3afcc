package csvimport

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCSVParser(t *testing.T) {
	t.Run("Valid UTF-8 CSV", func(t *testing.T) {
		csv := "numero_cuenta,lectura_actual\nA-001,120\nA-002,98.5"
		parser, err := NewCSVParser(strings.NewReader(csv))

		require.NoError(t, err)
		require.NotNil(t, parser)
		assert.False(t, parser.Transcoded())
		assert.Equal(t, ',', parser.Delimiter())
	})

	t.Run("UTF-8 BOM is stripped", func(t *testing.T) {
		csv := "\xEF\xBB\xBFnombre,cedula\nAna,123"
		parser, err := NewCSVParser(strings.NewReader(csv))
		require.NoError(t, err)
		require.NoError(t, parser.ParseHeader())

		assert.Equal(t, "nombre", parser.Headers()[0])
	})

	t.Run("Empty file returns error", func(t *testing.T) {
		parser, err := NewCSVParser(strings.NewReader(""))

		assert.Nil(t, parser)
		assert.ErrorIs(t, err, ErrEmptyFile)
	})

	t.Run("Whitespace-only file returns error", func(t *testing.T) {
		_, err := NewCSVParser(strings.NewReader(" \n\r\n"))
		assert.ErrorIs(t, err, ErrEmptyFile)
	})

	t.Run("Semicolon delimiter is detected", func(t *testing.T) {
		csv := "numero_cuenta;lectura_actual\nA-001;12,5"
		parser, err := NewCSVParser(strings.NewReader(csv))
		require.NoError(t, err)
		require.NoError(t, parser.ParseHeader())

		assert.Equal(t, ';', parser.Delimiter())
		row, err := parser.ReadRow()
		require.NoError(t, err)
		assert.Equal(t, "12,5", row.Get("lectura_actual"))
	})

	t.Run("Forced delimiter wins over detection", func(t *testing.T) {
		csv := "a;b,c\n1;2,3"
		parser, err := NewCSVParser(strings.NewReader(csv), WithDelimiter(','))
		require.NoError(t, err)
		require.NoError(t, parser.ParseHeader())

		assert.Equal(t, []string{"a;b", "c"}, parser.Headers())
	})

	t.Run("Windows-1252 input is transcoded", func(t *testing.T) {
		// "Peña" and "Cédula" in cp1252
		var buf bytes.Buffer
		buf.WriteString("nombre,C\xe9dula\n")
		buf.WriteString("Jos\xe9 Pe\xf1a,4.123.456\n")

		parser, err := NewCSVParser(&buf)
		require.NoError(t, err)
		assert.True(t, parser.Transcoded())
		require.NoError(t, parser.ParseHeader())

		row, err := parser.ReadRow()
		require.NoError(t, err)
		assert.Equal(t, "José Peña", row.Get("nombre"))
		assert.Equal(t, "4.123.456", row.Get("cedula"))
	})
}

func TestParseHeader(t *testing.T) {
	t.Run("Headers are normalized", func(t *testing.T) {
		csv := "  Número Cuenta , Lectura-Actual,SOCIO\nA-1,10,Ana"
		parser, _ := NewCSVParser(strings.NewReader(csv))

		require.NoError(t, parser.ParseHeader())
		assert.Equal(t, []string{"numero_cuenta", "lectura_actual", "socio"}, parser.Headers())
		assert.True(t, parser.HasHeader("numero_cuenta"))
		assert.True(t, parser.HasHeader("Número Cuenta"))
	})

	t.Run("First duplicate header wins", func(t *testing.T) {
		parser, _ := NewCSVParser(strings.NewReader("nombre,nombre\nAna,Otra"))
		require.NoError(t, parser.ParseHeader())

		row, err := parser.ReadRow()
		require.NoError(t, err)
		assert.Equal(t, "Ana", row.Get("nombre"))
	})

	t.Run("Blank header row is rejected", func(t *testing.T) {
		parser, _ := NewCSVParser(strings.NewReader(" , \n1,2"))
		assert.ErrorIs(t, parser.ParseHeader(), ErrMissingHeader)
	})

	t.Run("ValidateHeaders finds missing", func(t *testing.T) {
		parser, _ := NewCSVParser(strings.NewReader("numero_cuenta\nA-1"))
		require.NoError(t, parser.ParseHeader())

		missing := parser.ValidateHeaders([]string{"numero_cuenta", "lectura_actual"})
		assert.Equal(t, []string{"lectura_actual"}, missing)
	})
}

func TestReadRow(t *testing.T) {
	t.Run("Read single row", func(t *testing.T) {
		parser, _ := NewCSVParser(strings.NewReader("nombre,cedula,telefono\nAna , 123 ,0981"))
		require.NoError(t, parser.ParseHeader())

		row, err := parser.ReadRow()
		require.NoError(t, err)
		assert.Equal(t, 2, row.LineNumber)
		assert.Equal(t, "Ana", row.Get("nombre"))
		assert.Equal(t, "123", row.Get("cedula"))
		assert.Equal(t, "0981", row.Get("telefono"))
	})

	t.Run("Row with missing columns", func(t *testing.T) {
		parser, _ := NewCSVParser(strings.NewReader("nombre,cedula,telefono\nAna"))
		require.NoError(t, parser.ParseHeader())

		row, err := parser.ReadRow()
		require.NoError(t, err)
		assert.Equal(t, "Ana", row.Get("nombre"))
		assert.Equal(t, "", row.Get("telefono"))
	})

	t.Run("EOF after last row", func(t *testing.T) {
		parser, _ := NewCSVParser(strings.NewReader("a,b\n1,2"))
		require.NoError(t, parser.ParseHeader())

		_, err := parser.ReadRow()
		require.NoError(t, err)
		_, err = parser.ReadRow()
		assert.Equal(t, io.EOF, err)
	})

	t.Run("Quoted fields", func(t *testing.T) {
		csv := "nombre,cedula\n\"Peña, José\",\"1.234\"\n"
		parser, _ := NewCSVParser(strings.NewReader(csv))
		require.NoError(t, parser.ParseHeader())

		row, err := parser.ReadRow()
		require.NoError(t, err)
		assert.Equal(t, "Peña, José", row.Get("nombre"))
	})
}

func TestReadAllRows(t *testing.T) {
	csv := "numero_cuenta,lectura_actual\nA-1,10\n,\n\nA-2,\nA-3,30"
	parser, err := ParseFromBytes([]byte(csv))
	require.NoError(t, err)
	require.NoError(t, parser.ParseHeader())

	rows, err := parser.ReadAllRows()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "A-1", rows[0].Get("numero_cuenta"))
	assert.Equal(t, "", rows[1].Get("lectura_actual"))
	assert.Equal(t, 5, rows[2].LineNumber)
}

func TestNormalizeHeader(t *testing.T) {
	tests := map[string]string{
		"numero_cuenta":    "numero_cuenta",
		"Número de Cuenta": "numero_de_cuenta",
		"  CÉDULA ":        "cedula",
		"serial-medidor":   "serial_medidor",
		"":                 "",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeHeader(in), "input %q", in)
	}
}

func TestWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.Write("numero_cuenta", "socio", "serial_medidor", "lectura_actual"))
	require.NoError(t, w.Write("A-1", "Peña, José", "SN-9", ""))
	require.NoError(t, w.Flush())

	assert.Equal(t, "numero_cuenta,socio,serial_medidor,lectura_actual\nA-1,\"Peña, José\",SN-9,\n", buf.String())

	parser, err := ParseFromBytes(buf.Bytes())
	require.NoError(t, err)
	require.NoError(t, parser.ParseHeader())
	row, err := parser.ReadRow()
	require.NoError(t, err)
	assert.Equal(t, "Peña, José", row.Get("socio"))
}
