package ingest

import (
	"bytes"
	"log"
	"strings"

	"datastory/domain/table"
	apperrors "datastory/internal/errors"

	"github.com/xuri/excelize/v2"
)

// xlsxMagic is the ZIP local-file-header signature XLSX containers start with
var xlsxMagic = []byte{0x50, 0x4B, 0x03, 0x04}

// IsXLSX sniffs whether raw bytes look like an XLSX workbook
func IsXLSX(raw []byte) bool {
	return bytes.HasPrefix(raw, xlsxMagic)
}

// ParseXLSX reads the first sheet of a workbook into a RawTable. Cell
// text arrives already decoded, so the encoding is always UTF-8.
func ParseXLSX(raw []byte) (*table.RawTable, error) {
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to open workbook")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.InvalidInput("workbook contains no sheets")
	}

	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apperrors.Wrapf(err, "failed to read sheet %q", sheets[0])
	}
	if len(records) == 0 {
		return nil, apperrors.InvalidInput("sheet contains no rows")
	}

	columns := make([]string, len(records[0]))
	for i, name := range records[0] {
		columns[i] = strings.TrimSpace(name)
	}

	var rows [][]string
	for _, record := range records[1:] {
		blank := true
		for _, cell := range record {
			if strings.TrimSpace(cell) != "" {
				blank = false
				break
			}
		}
		if blank {
			continue
		}
		rows = append(rows, record)
	}

	log.Printf("[ExcelReader] Parsed sheet %q: %d columns, %d rows", sheets[0], len(columns), len(rows))

	return &table.RawTable{
		Columns:  columns,
		Rows:     rows,
		Encoding: table.EncodingUTF8,
	}, nil
}
