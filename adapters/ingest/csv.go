package ingest

import (
	"encoding/csv"
	"io"
	"log"
	"strings"

	"datastory/domain/table"
	apperrors "datastory/internal/errors"
)

// delimiterCandidates in detection preference order
var delimiterCandidates = []rune{',', ';', '\t', '|'}

// DetectDelimiter picks the candidate delimiter occurring most often in
// the header line. Comma wins ties by candidate order.
func DetectDelimiter(text string) rune {
	header := text
	if idx := strings.IndexAny(text, "\r\n"); idx >= 0 {
		header = text[:idx]
	}

	best := delimiterCandidates[0]
	bestCount := 0
	for _, cand := range delimiterCandidates {
		count := strings.Count(header, string(cand))
		if count > bestCount {
			best = cand
			bestCount = count
		}
	}
	return best
}

// ParseCSV parses decoded text into a RawTable. The first record is the
// header row; ragged data rows are tolerated (short rows read as empty
// cells), an empty file is an error.
func ParseCSV(text string, enc table.Encoding) (*table.RawTable, error) {
	delimiter := DetectDelimiter(text)

	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, apperrors.InvalidInput("file contains no rows")
	}
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to read header row")
	}

	columns := make([]string, len(header))
	for i, name := range header {
		columns[i] = strings.TrimSpace(name)
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.Wrapf(err, "failed to read row %d", len(rows)+2)
		}
		// Skip fully blank lines
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

	log.Printf("[CSVReader] Parsed table: %d columns, %d rows, delimiter=%q, encoding=%s",
		len(columns), len(rows), delimiter, enc)

	return &table.RawTable{
		Columns:   columns,
		Rows:      rows,
		Encoding:  enc,
		Delimiter: delimiter,
	}, nil
}
