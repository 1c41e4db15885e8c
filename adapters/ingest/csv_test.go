package ingest

import (
	"testing"

	"datastory/domain/table"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectDelimiter(t *testing.T) {
	cases := []struct {
		header string
		want   rune
	}{
		{"a,b,c\n1,2,3", ','},
		{"a;b;c\n1;2;3", ';'},
		{"a\tb\tc\n1\t2\t3", '\t'},
		{"a|b|c\n1|2|3", '|'},
		{"single_column\n1", ','},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, DetectDelimiter(tc.header), "header %q", tc.header)
	}
}

func TestParseCSVBasic(t *testing.T) {
	raw, err := ParseCSV("name,score\nA,10\nB,12\nC,100\n", table.EncodingUTF8)
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "score"}, raw.Columns)
	assert.Equal(t, 3, raw.RowCount())
	assert.Equal(t, "100", raw.Cell(2, 1))
	assert.Equal(t, ',', int32(raw.Delimiter))
}

func TestParseCSVSemicolonAndBlankLines(t *testing.T) {
	raw, err := ParseCSV("a;b\n1;2\n\n3;4\n", table.EncodingUTF8)
	require.NoError(t, err)

	assert.Equal(t, 2, raw.RowCount())
	assert.Equal(t, ';', int32(raw.Delimiter))
}

func TestParseCSVRaggedRows(t *testing.T) {
	raw, err := ParseCSV("a,b,c\n1,2\n", table.EncodingUTF8)
	require.NoError(t, err)

	assert.Equal(t, 1, raw.RowCount())
	assert.Equal(t, "2", raw.Cell(0, 1))
	assert.Equal(t, "", raw.Cell(0, 2), "short rows read as empty cells")
}

func TestParseCSVHeaderOnly(t *testing.T) {
	raw, err := ParseCSV("name,score\n", table.EncodingUTF8)
	require.NoError(t, err)
	assert.True(t, raw.IsEmpty())
}

func TestParseCSVEmptyInput(t *testing.T) {
	_, err := ParseCSV("", table.EncodingUTF8)
	assert.Error(t, err)
}
