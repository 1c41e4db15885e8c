package insight

// Direction classifies the slope sign of a trend
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
	DirectionFlat Direction = "flat"
)

// Strength buckets an absolute correlation coefficient
type Strength string

const (
	StrengthStrong   Strength = "strong"
	StrengthModerate Strength = "moderate"
	StrengthWeak     Strength = "weak"
)

// StrengthFor buckets |r| into the standard bands
func StrengthFor(absCoefficient float64) Strength {
	switch {
	case absCoefficient > 0.7:
		return StrengthStrong
	case absCoefficient > 0.4:
		return StrengthModerate
	default:
		return StrengthWeak
	}
}

// Trend is a monotonic-direction estimate for a numeric column against
// its ordering column (a datetime column when present, row index otherwise).
type Trend struct {
	Column     string    `json:"column"`
	Ordering   string    `json:"ordering"` // ordering column name, or "index"
	Direction  Direction `json:"direction"`
	Magnitude  float64   `json:"magnitude"` // normalized, 0..1
	Slope      float64   `json:"slope"`
	SampleSize int       `json:"sample_size"`
}

// Outlier references a row whose value deviates sharply from its column
type Outlier struct {
	Row       int     `json:"row"` // zero-based data row index
	Column    string  `json:"column"`
	Value     float64 `json:"value"`
	Deviation float64 `json:"deviation"` // absolute z-score
}

// Correlation is a numeric column pair with its Pearson coefficient.
// ColumnX sorts lexically before ColumnY.
type Correlation struct {
	ColumnX     string   `json:"column_x"`
	ColumnY     string   `json:"column_y"`
	Coefficient float64  `json:"coefficient"` // always within [-1, 1]
	Strength    Strength `json:"strength"`
	SampleSize  int      `json:"sample_size"`
}

// Summary is the full set of extracted signals for one table.
// Empty lists are a valid result, not an error.
type Summary struct {
	Trends       []Trend       `json:"trends"`
	Outliers     []Outlier     `json:"outliers"`
	Correlations []Correlation `json:"correlations"`
}

// NewSummary creates a Summary with empty (non-nil) signal lists so the
// serialized form always carries all three arrays.
func NewSummary() *Summary {
	return &Summary{
		Trends:       []Trend{},
		Outliers:     []Outlier{},
		Correlations: []Correlation{},
	}
}

// IsEmpty reports whether no signal of any kind was found
func (s *Summary) IsEmpty() bool {
	return len(s.Trends) == 0 && len(s.Outliers) == 0 && len(s.Correlations) == 0
}
