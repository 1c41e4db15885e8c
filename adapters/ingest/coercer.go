package ingest

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"datastory/domain/table"
	apperrors "datastory/internal/errors"

	"github.com/montanaflynn/stats"
)

// CoercionConfig defines the kind-inference thresholds
type CoercionConfig struct {
	// Tolerance is the fraction of sampled non-missing values that must
	// coerce into a kind for that kind to win.
	Tolerance float64 `json:"tolerance"`
	// SampleRows bounds the row prefix inspected during inference.
	SampleRows int `json:"sample_rows"`
	// MaxCategories is the cardinality ceiling for the categorical kind;
	// higher-cardinality string columns become text.
	MaxCategories int `json:"max_categories"`
	// TopValues bounds the per-column top-value list in categorical stats.
	TopValues int `json:"top_values"`
}

// DefaultCoercionConfig returns sensible defaults
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{
		Tolerance:     0.95,
		SampleRows:    200,
		MaxCategories: 100,
		TopValues:     5,
	}
}

// TypeCoercer infers column kinds and coerces raw cells into typed values.
// Inference samples a bounded row prefix and runs coercion trials in order
// numeric, datetime, categorical, text; the first kind reaching the
// tolerance fraction wins.
type TypeCoercer struct {
	config CoercionConfig
}

// NewTypeCoercer creates a coercer with the given config
func NewTypeCoercer(config CoercionConfig) *TypeCoercer {
	return &TypeCoercer{config: config}
}

// CoerceTable infers a kind for every column and produces the typed table
func (c *TypeCoercer) CoerceTable(raw *table.RawTable) (*table.TypedTable, error) {
	typed := &table.TypedTable{
		RowCount: raw.RowCount(),
		Encoding: raw.Encoding,
		Columns:  make([]table.TypedColumn, 0, len(raw.Columns)),
	}

	for colIdx, name := range raw.Columns {
		cells := make([]string, raw.RowCount())
		for rowIdx := range raw.Rows {
			cells[rowIdx] = strings.TrimSpace(raw.Cell(rowIdx, colIdx))
		}

		kind, err := c.InferKind(cells)
		if err != nil {
			return nil, apperrors.SchemaInference(name, err.Error())
		}

		column := c.coerceColumn(name, kind, cells)
		typed.Columns = append(typed.Columns, column)
	}

	return typed, nil
}

// InferKind runs the ordered coercion trials over a bounded sample.
// Returns an error when no kind, text included, can absorb the values.
func (c *TypeCoercer) InferKind(cells []string) (table.ColumnKind, error) {
	sample := cells
	if len(sample) > c.config.SampleRows {
		sample = sample[:c.config.SampleRows]
	}

	var nonMissing []string
	for _, cell := range sample {
		if !isMissing(cell) {
			nonMissing = append(nonMissing, cell)
		}
	}
	// All-null columns carry no signal; keep them as text so the
	// extractor can skip them without failing the run.
	if len(nonMissing) == 0 {
		return table.KindText, nil
	}

	numericHits, datetimeHits, textHits := 0, 0, 0
	distinct := make(map[string]struct{})
	for _, cell := range nonMissing {
		if _, ok := parseNumeric(cell); ok {
			numericHits++
		}
		if _, ok := parseDatetime(cell); ok {
			datetimeHits++
		}
		if utf8.ValidString(cell) {
			textHits++
		}
		distinct[strings.ToLower(cell)] = struct{}{}
	}

	total := float64(len(nonMissing))
	if float64(numericHits)/total >= c.config.Tolerance {
		return table.KindNumeric, nil
	}
	if float64(datetimeHits)/total >= c.config.Tolerance {
		return table.KindDatetime, nil
	}
	if float64(textHits)/total < c.config.Tolerance {
		return "", errUnassignable
	}
	if len(distinct) <= c.config.MaxCategories && len(distinct) < len(nonMissing) {
		return table.KindCategorical, nil
	}
	return table.KindText, nil
}

var errUnassignable = apperrors.New(apperrors.CodeSchemaInference, "values cannot be confidently assigned any kind")

// coerceColumn converts every cell to the chosen kind and computes the
// kind-appropriate summary statistics. Cells that refuse the column kind
// become missing values rather than errors.
func (c *TypeCoercer) coerceColumn(name string, kind table.ColumnKind, cells []string) table.TypedColumn {
	column := table.TypedColumn{
		Name:   name,
		Kind:   kind,
		Values: make([]table.Value, len(cells)),
	}

	for i, cell := range cells {
		if isMissing(cell) {
			column.Values[i] = table.NewMissingValue()
			continue
		}
		switch kind {
		case table.KindNumeric:
			if v, ok := parseNumeric(cell); ok {
				column.Values[i] = table.NewNumericValue(v)
			} else {
				column.Values[i] = table.NewMissingValue()
			}
		case table.KindDatetime:
			if t, ok := parseDatetime(cell); ok {
				column.Values[i] = table.NewDatetimeValue(t)
			} else {
				column.Values[i] = table.NewMissingValue()
			}
		default:
			column.Values[i] = table.NewTextValue(kind, cell)
		}
		if !column.Values[i].Missing {
			column.NonNull++
		}
	}

	column.Stats = c.computeStats(&column)
	return column
}

func (c *TypeCoercer) computeStats(column *table.TypedColumn) table.ColumnStats {
	switch column.Kind {
	case table.KindNumeric:
		return table.ColumnStats{Numeric: numericStats(column)}
	case table.KindDatetime:
		return table.ColumnStats{Datetime: datetimeStats(column)}
	case table.KindCategorical:
		return table.ColumnStats{Categorical: c.categoricalStats(column)}
	default:
		return table.ColumnStats{}
	}
}

func numericStats(column *table.TypedColumn) *table.NumericStats {
	values, _ := column.NumericValues()
	if len(values) == 0 {
		return &table.NumericStats{}
	}

	mean, _ := stats.Mean(values)
	stdDev, _ := stats.StandardDeviation(values)
	min, _ := stats.Min(values)
	max, _ := stats.Max(values)
	median, _ := stats.Median(values)
	q25, _ := stats.Percentile(values, 25)
	q75, _ := stats.Percentile(values, 75)

	return &table.NumericStats{
		Min:    min,
		Max:    max,
		Mean:   mean,
		StdDev: stdDev,
		Median: median,
		Q25:    q25,
		Q75:    q75,
	}
}

func datetimeStats(column *table.TypedColumn) *table.DatetimeStats {
	var min, max time.Time
	subDay := false
	for _, v := range column.Values {
		if v.Missing {
			continue
		}
		if min.IsZero() || v.Time.Before(min) {
			min = v.Time
		}
		if max.IsZero() || v.Time.After(max) {
			max = v.Time
		}
		h, m, s := v.Time.Clock()
		if h != 0 || m != 0 || s != 0 {
			subDay = true
		}
	}

	granularity := "day"
	span := max.Sub(min)
	switch {
	case subDay:
		granularity = "second"
	case span > 365*24*time.Hour:
		granularity = "month"
	}

	return &table.DatetimeStats{Min: min, Max: max, Granularity: granularity}
}

func (c *TypeCoercer) categoricalStats(column *table.TypedColumn) *table.CategoricalStats {
	counts := make(map[string]int)
	for _, v := range column.Values {
		if v.Missing {
			continue
		}
		counts[v.Text]++
	}

	top := make([]table.ValueCount, 0, len(counts))
	for value, count := range counts {
		top = append(top, table.ValueCount{Value: value, Count: count})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Count != top[j].Count {
			return top[i].Count > top[j].Count
		}
		return top[i].Value < top[j].Value
	})
	if len(top) > c.config.TopValues {
		top = top[:c.config.TopValues]
	}

	return &table.CategoricalStats{Cardinality: len(counts), TopValues: top}
}

// isMissing treats empty cells and the common null spellings as missing
func isMissing(cell string) bool {
	switch strings.ToLower(cell) {
	case "", "na", "n/a", "null", "nan", "none", "-":
		return true
	}
	return false
}

// parseNumeric attempts strict numeric parsing after stripping the usual
// formatting noise: thousands separators, currency symbols, percent
// signs, and parenthesized negatives.
func parseNumeric(cell string) (float64, bool) {
	clean := strings.TrimSpace(cell)
	if clean == "" {
		return 0, false
	}

	negative := false
	if strings.HasPrefix(clean, "(") && strings.HasSuffix(clean, ")") {
		clean = strings.TrimSuffix(strings.TrimPrefix(clean, "("), ")")
		negative = true
	}

	for _, symbol := range []string{"$", "€", "£", "¥", "₩", "%"} {
		clean = strings.ReplaceAll(clean, symbol, "")
	}
	clean = strings.ReplaceAll(clean, ",", "")
	clean = strings.ReplaceAll(clean, " ", "")

	if negative {
		clean = "-" + clean
	}

	v, err := strconv.ParseFloat(clean, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// datetimeLayouts in trial order, most specific first
var datetimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"02-Jan-2006",
	"2006-01",
}

func parseDatetime(cell string) (time.Time, bool) {
	for _, layout := range datetimeLayouts {
		if t, err := time.Parse(layout, cell); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
