package table

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// Encoding identifies the character encoding a raw file was decoded with
type Encoding string

const (
	EncodingUTF8   Encoding = "utf-8"
	EncodingCP949  Encoding = "cp949"
	EncodingEUCKR  Encoding = "euc-kr"
	EncodingLatin1 Encoding = "latin-1"
)

// ColumnKind is the inferred type of a column
type ColumnKind string

const (
	KindNumeric     ColumnKind = "numeric"
	KindDatetime    ColumnKind = "datetime"
	KindCategorical ColumnKind = "categorical"
	KindText        ColumnKind = "text"
)

// RawTable is the decoded but untyped form of an uploaded file.
// It is created once on load and never mutated afterward.
type RawTable struct {
	Columns   []string
	Rows      [][]string
	Encoding  Encoding
	Delimiter rune
}

// RowCount returns the number of data rows (header excluded)
func (t *RawTable) RowCount() int {
	return len(t.Rows)
}

// IsEmpty reports whether the table has no data rows
func (t *RawTable) IsEmpty() bool {
	return len(t.Rows) == 0
}

// Cell returns the raw cell value at (row, col), empty string when the
// row is ragged and the column index falls off the end.
func (t *RawTable) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) {
		return ""
	}
	r := t.Rows[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col]
}

// Value is a single typed cell. Exactly one of the payload fields is
// meaningful, selected by Kind; Missing overrides all of them.
type Value struct {
	Kind    ColumnKind
	Number  float64
	Time    time.Time
	Text    string
	Missing bool
}

// NewMissingValue creates a missing cell marker
func NewMissingValue() Value {
	return Value{Missing: true}
}

// NewNumericValue creates a numeric cell
func NewNumericValue(v float64) Value {
	return Value{Kind: KindNumeric, Number: v}
}

// NewDatetimeValue creates a datetime cell
func NewDatetimeValue(t time.Time) Value {
	return Value{Kind: KindDatetime, Time: t}
}

// NewTextValue creates a categorical/text cell
func NewTextValue(kind ColumnKind, s string) Value {
	return Value{Kind: kind, Text: s}
}

// ValueCount pairs a categorical value with its occurrence count
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// NumericStats summarizes a numeric column
type NumericStats struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Median float64 `json:"median"`
	Q25    float64 `json:"q25"`
	Q75    float64 `json:"q75"`
}

// CategoricalStats summarizes a categorical column
type CategoricalStats struct {
	Cardinality int          `json:"cardinality"`
	TopValues   []ValueCount `json:"top_values"`
}

// DatetimeStats summarizes a datetime column
type DatetimeStats struct {
	Min         time.Time `json:"min"`
	Max         time.Time `json:"max"`
	Granularity string    `json:"granularity"` // "second", "day", "month", ...
}

// ColumnStats holds the kind-appropriate summary for a column.
// Only the field matching the column kind is populated.
type ColumnStats struct {
	Numeric     *NumericStats     `json:"numeric,omitempty"`
	Categorical *CategoricalStats `json:"categorical,omitempty"`
	Datetime    *DatetimeStats    `json:"datetime,omitempty"`
}

// TypedColumn is a fully coerced column with its summary statistics.
// Derived from a RawTable; read-only afterward.
type TypedColumn struct {
	Name    string
	Kind    ColumnKind
	Values  []Value
	NonNull int
	Stats   ColumnStats
}

// NumericValues returns the non-missing numeric values of the column
// together with their original row indexes. Empty for non-numeric columns.
func (c *TypedColumn) NumericValues() ([]float64, []int) {
	if c.Kind != KindNumeric {
		return nil, nil
	}
	vals := make([]float64, 0, len(c.Values))
	rows := make([]int, 0, len(c.Values))
	for i, v := range c.Values {
		if v.Missing {
			continue
		}
		vals = append(vals, v.Number)
		rows = append(rows, i)
	}
	return vals, rows
}

// TypedTable is a RawTable after kind inference and coercion
type TypedTable struct {
	Columns  []TypedColumn
	RowCount int
	Encoding Encoding
}

// Column looks up a column by name
func (t *TypedTable) Column(name string) (*TypedColumn, bool) {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i], true
		}
	}
	return nil, false
}

// NumericColumns returns the numeric columns in table order
func (t *TypedTable) NumericColumns() []*TypedColumn {
	var out []*TypedColumn
	for i := range t.Columns {
		if t.Columns[i].Kind == KindNumeric && t.Columns[i].NonNull > 0 {
			out = append(out, &t.Columns[i])
		}
	}
	return out
}

// DatetimeColumn returns the first datetime column, if any
func (t *TypedTable) DatetimeColumn() (*TypedColumn, bool) {
	for i := range t.Columns {
		if t.Columns[i].Kind == KindDatetime && t.Columns[i].NonNull > 0 {
			return &t.Columns[i], true
		}
	}
	return nil, false
}

// Fingerprint computes a stable content hash of the typed table. Two
// tables with the same columns, kinds and cell values hash identically
// regardless of which file or encoding they came from.
func (t *TypedTable) Fingerprint() string {
	h := sha256.New()
	for i := range t.Columns {
		c := &t.Columns[i]
		fmt.Fprintf(h, "%s\x1f%s\x1f", c.Name, c.Kind)
		for _, v := range c.Values {
			switch {
			case v.Missing:
				h.Write([]byte("\x00"))
			case v.Kind == KindNumeric:
				fmt.Fprintf(h, "%g", v.Number)
			case v.Kind == KindDatetime:
				fmt.Fprintf(h, "%d", v.Time.UnixNano())
			default:
				h.Write([]byte(v.Text))
			}
			h.Write([]byte("\x1e"))
		}
		h.Write([]byte("\x1d"))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// ColumnNames returns the column names in table order
func (t *TypedTable) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i := range t.Columns {
		names[i] = t.Columns[i].Name
	}
	return names
}

// String renders a short human-readable schema description
func (t *TypedTable) String() string {
	parts := make([]string, len(t.Columns))
	for i := range t.Columns {
		parts[i] = fmt.Sprintf("%s:%s", t.Columns[i].Name, t.Columns[i].Kind)
	}
	return fmt.Sprintf("TypedTable(%d rows, [%s])", t.RowCount, strings.Join(parts, ", "))
}
