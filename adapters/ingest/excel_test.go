package ingest

import (
	"testing"

	"datastory/domain/table"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestIsXLSX(t *testing.T) {
	raw := buildWorkbook(t, [][]interface{}{{"a"}, {1}})
	assert.True(t, IsXLSX(raw))
	assert.False(t, IsXLSX([]byte("a,b\n1,2\n")))
}

func TestParseXLSX(t *testing.T) {
	raw := buildWorkbook(t, [][]interface{}{
		{"region", "sales"},
		{"Seoul", 1200},
		{"Busan", 950},
	})

	parsed, err := ParseXLSX(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"region", "sales"}, parsed.Columns)
	assert.Equal(t, 2, parsed.RowCount())
	assert.Equal(t, table.EncodingUTF8, parsed.Encoding)
	assert.Equal(t, "1200", parsed.Cell(0, 1))
}

func TestLoaderHandlesWorkbooks(t *testing.T) {
	raw := buildWorkbook(t, [][]interface{}{
		{"region", "sales"},
		{"Seoul", 1200},
		{"Busan", 950},
		{"Daegu", 1100},
	})

	typed, err := NewLoader(DefaultLoaderConfig()).Load(raw)
	require.NoError(t, err)

	sales, ok := typed.Column("sales")
	require.True(t, ok)
	assert.Equal(t, table.KindNumeric, sales.Kind)
	assert.Equal(t, 3, sales.NonNull)
}
