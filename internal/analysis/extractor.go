package analysis

import (
	"log"
	"math"
	"sort"

	"datastory/domain/insight"
	"datastory/domain/table"

	mstats "github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Config holds the extraction thresholds. All of them are tunable;
// these are defaults, not policy.
type Config struct {
	// ZScoreThreshold flags a row as an outlier when |z| exceeds it.
	ZScoreThreshold float64 `json:"zscore_threshold"`
	// CorrelationThreshold keeps pairs with |r| at or above it.
	CorrelationThreshold float64 `json:"correlation_threshold"`
	// MinTrendSamples is the minimum non-null count for a trend estimate.
	MinTrendSamples int `json:"min_trend_samples"`
	// MaxOutliersPerColumn bounds the flagged rows per column so the
	// prompt payload stays small.
	MaxOutliersPerColumn int `json:"max_outliers_per_column"`
	// TrendAlpha is the significance level below which a slope counts
	// as a real trend; insignificant slopes report magnitude zero.
	TrendAlpha float64 `json:"trend_alpha"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		ZScoreThreshold:      3.0,
		CorrelationThreshold: 0.5,
		MinTrendSamples:      5,
		MaxOutliersPerColumn: 5,
		TrendAlpha:           0.05,
	}
}

// Extractor computes trend, outlier and correlation signals from a
// typed table. Extraction is deterministic and makes no external calls;
// a table with nothing to report yields an empty summary, never an error.
type Extractor struct {
	config Config
}

// New creates an extractor with the given config
func New(config Config) *Extractor {
	return &Extractor{config: config}
}

// Extract computes the full insight summary for a table
func (e *Extractor) Extract(t *table.TypedTable) (*insight.Summary, error) {
	summary := insight.NewSummary()
	if t == nil || t.RowCount == 0 {
		return summary, nil
	}

	numeric := t.NumericColumns()

	summary.Trends = e.extractTrends(t, numeric)
	summary.Outliers = e.extractOutliers(numeric)
	summary.Correlations = e.extractCorrelations(numeric)

	log.Printf("[Extractor] Extracted %d trends, %d outliers, %d correlations from %d rows",
		len(summary.Trends), len(summary.Outliers), len(summary.Correlations), t.RowCount)
	return summary, nil
}

// extractTrends fits a least-squares line per numeric column against the
// ordering column: the first datetime column when one exists, the row
// index otherwise. Magnitude is |r| gated on slope significance, so weak
// evidence reports a direction with magnitude zero instead of vanishing.
func (e *Extractor) extractTrends(t *table.TypedTable, numeric []*table.TypedColumn) []insight.Trend {
	orderingName := "index"
	var orderingCol *table.TypedColumn
	if dt, ok := t.DatetimeColumn(); ok {
		orderingCol = dt
		orderingName = dt.Name
	}

	trends := make([]insight.Trend, 0, len(numeric))
	for _, column := range numeric {
		values, rows := column.NumericValues()

		xs := make([]float64, 0, len(values))
		ys := make([]float64, 0, len(values))
		for i, row := range rows {
			if orderingCol == nil {
				xs = append(xs, float64(row))
				ys = append(ys, values[i])
				continue
			}
			ov := orderingCol.Values[row]
			if ov.Missing {
				continue
			}
			xs = append(xs, float64(ov.Time.Unix()))
			ys = append(ys, values[i])
		}
		if len(ys) < e.config.MinTrendSamples {
			continue
		}

		_, slope := stat.LinearRegression(xs, ys, nil, false)
		if math.IsNaN(slope) || math.IsInf(slope, 0) {
			continue
		}

		r := stat.Correlation(xs, ys, nil)
		magnitude := 0.0
		if !math.IsNaN(r) {
			if p := slopePValue(r, len(ys)); p < e.config.TrendAlpha {
				magnitude = math.Min(math.Abs(r), 1)
			}
		}

		direction := insight.DirectionFlat
		switch {
		case slope > 0:
			direction = insight.DirectionUp
		case slope < 0:
			direction = insight.DirectionDown
		}

		trends = append(trends, insight.Trend{
			Column:     column.Name,
			Ordering:   orderingName,
			Direction:  direction,
			Magnitude:  magnitude,
			Slope:      slope,
			SampleSize: len(ys),
		})
	}
	return trends
}

// slopePValue is the two-sided p-value of the regression slope via the
// t statistic of the correlation coefficient.
func slopePValue(r float64, n int) float64 {
	if n < 3 {
		return 1
	}
	denom := 1 - r*r
	if denom <= 0 {
		return 0
	}
	t := math.Abs(r) * math.Sqrt(float64(n-2)/denom)
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 2)}
	return 2 * dist.Survival(t)
}

// extractOutliers flags rows whose z-score exceeds the threshold,
// keeping only the most extreme per column. Zero-variance columns
// produce no outliers.
func (e *Extractor) extractOutliers(numeric []*table.TypedColumn) []insight.Outlier {
	var outliers []insight.Outlier
	for _, column := range numeric {
		values, rows := column.NumericValues()
		if len(values) < 2 {
			continue
		}

		mean, _ := mstats.Mean(values)
		stdDev, _ := mstats.StandardDeviation(values)
		if stdDev == 0 {
			continue
		}

		var flagged []insight.Outlier
		for i, v := range values {
			z := math.Abs(v-mean) / stdDev
			if z > e.config.ZScoreThreshold {
				flagged = append(flagged, insight.Outlier{
					Row:       rows[i],
					Column:    column.Name,
					Value:     v,
					Deviation: z,
				})
			}
		}

		sort.Slice(flagged, func(i, j int) bool {
			if flagged[i].Deviation != flagged[j].Deviation {
				return flagged[i].Deviation > flagged[j].Deviation
			}
			return flagged[i].Row < flagged[j].Row
		})
		if len(flagged) > e.config.MaxOutliersPerColumn {
			flagged = flagged[:e.config.MaxOutliersPerColumn]
		}
		outliers = append(outliers, flagged...)
	}
	if outliers == nil {
		outliers = []insight.Outlier{}
	}
	return outliers
}

// extractCorrelations computes Pearson's r for every numeric pair over
// the rows where both columns are present, keeps the pairs above the
// strength threshold, and orders them by |r| descending with lexical
// column order breaking ties.
func (e *Extractor) extractCorrelations(numeric []*table.TypedColumn) []insight.Correlation {
	correlations := []insight.Correlation{}
	for i := 0; i < len(numeric); i++ {
		for j := i + 1; j < len(numeric); j++ {
			xs, ys := alignedPair(numeric[i], numeric[j])
			if len(xs) < 2 {
				continue
			}

			r := stat.Correlation(xs, ys, nil)
			if math.IsNaN(r) || math.IsInf(r, 0) {
				continue
			}
			r = clamp(r, -1, 1)
			if math.Abs(r) < e.config.CorrelationThreshold {
				continue
			}

			nameX, nameY := numeric[i].Name, numeric[j].Name
			if nameY < nameX {
				nameX, nameY = nameY, nameX
			}
			correlations = append(correlations, insight.Correlation{
				ColumnX:     nameX,
				ColumnY:     nameY,
				Coefficient: r,
				Strength:    insight.StrengthFor(math.Abs(r)),
				SampleSize:  len(xs),
			})
		}
	}

	sort.Slice(correlations, func(i, j int) bool {
		ai, aj := math.Abs(correlations[i].Coefficient), math.Abs(correlations[j].Coefficient)
		if ai != aj {
			return ai > aj
		}
		if correlations[i].ColumnX != correlations[j].ColumnX {
			return correlations[i].ColumnX < correlations[j].ColumnX
		}
		return correlations[i].ColumnY < correlations[j].ColumnY
	})
	return correlations
}

// alignedPair collects the value pairs where both columns are non-missing
func alignedPair(a, b *table.TypedColumn) ([]float64, []float64) {
	n := len(a.Values)
	if len(b.Values) < n {
		n = len(b.Values)
	}
	var xs, ys []float64
	for row := 0; row < n; row++ {
		va, vb := a.Values[row], b.Values[row]
		if va.Missing || vb.Missing {
			continue
		}
		xs = append(xs, va.Number)
		ys = append(ys, vb.Number)
	}
	return xs, ys
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
