package analysis

import (
	"math"
	"strconv"
	"testing"

	"datastory/adapters/ingest"
	"datastory/domain/insight"
	"datastory/domain/table"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T, csv string) *table.TypedTable {
	t.Helper()
	typed, err := ingest.NewLoader(ingest.DefaultLoaderConfig()).Load([]byte(csv))
	require.NoError(t, err)
	return typed
}

func TestExtractEmptyTable(t *testing.T) {
	typed := load(t, "name,score\n")

	summary, err := New(DefaultConfig()).Extract(typed)
	require.NoError(t, err)
	assert.Empty(t, summary.Trends)
	assert.Empty(t, summary.Outliers)
	assert.Empty(t, summary.Correlations)
	assert.True(t, summary.IsEmpty())
}

func TestExtractNilTable(t *testing.T) {
	summary, err := New(DefaultConfig()).Extract(nil)
	require.NoError(t, err)
	assert.True(t, summary.IsEmpty())
}

func TestExtractNonNumericTableSucceedsEmpty(t *testing.T) {
	typed := load(t, "name,city\nA,Seoul\nB,Busan\nC,Seoul\n")

	summary, err := New(DefaultConfig()).Extract(typed)
	require.NoError(t, err)
	assert.True(t, summary.IsEmpty())
}

func TestConstantColumnHasNoOutliers(t *testing.T) {
	typed := load(t, "id,constant\n1,42\n2,42\n3,42\n4,42\n5,42\n")

	summary, err := New(DefaultConfig()).Extract(typed)
	require.NoError(t, err)
	for _, o := range summary.Outliers {
		assert.NotEqual(t, "constant", o.Column, "zero variance must not produce outliers")
	}
}

func TestOutlierDetection(t *testing.T) {
	// 20 values near 10 and one far away
	csv := "v\n"
	for i := 0; i < 20; i++ {
		csv += "10\n"
		csv += "11\n"
	}
	csv += "500\n"
	typed := load(t, csv)

	summary, err := New(DefaultConfig()).Extract(typed)
	require.NoError(t, err)
	require.Len(t, summary.Outliers, 1)
	assert.Equal(t, 40, summary.Outliers[0].Row)
	assert.Equal(t, "v", summary.Outliers[0].Column)
	assert.Greater(t, summary.Outliers[0].Deviation, 3.0)
}

func TestOutlierCapPerColumn(t *testing.T) {
	csv := "v\n"
	for i := 0; i < 100; i++ {
		csv += "10\n"
	}
	for i := 0; i < 8; i++ {
		csv += "900\n"
	}
	typed := load(t, csv)

	config := DefaultConfig()
	config.ZScoreThreshold = 2.0
	summary, err := New(config).Extract(typed)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(summary.Outliers), config.MaxOutliersPerColumn)
}

func TestCorrelationBoundsAndSelfIdentity(t *testing.T) {
	// b duplicates a, c is independent noise
	csv := "a,b,c\n"
	vals := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	noise := []float64{4, 9, 2, 8, 1, 7, 3, 10, 5, 6}
	for i := range vals {
		csv += formatRow(vals[i], vals[i], noise[i])
	}
	typed := load(t, csv)

	summary, err := New(DefaultConfig()).Extract(typed)
	require.NoError(t, err)

	for _, c := range summary.Correlations {
		assert.GreaterOrEqual(t, c.Coefficient, -1.0)
		assert.LessOrEqual(t, c.Coefficient, 1.0)
	}

	require.NotEmpty(t, summary.Correlations)
	top := summary.Correlations[0]
	assert.Equal(t, "a", top.ColumnX)
	assert.Equal(t, "b", top.ColumnY)
	assert.InDelta(t, 1.0, top.Coefficient, 1e-9, "identical columns correlate at exactly 1")
	assert.Equal(t, insight.StrengthStrong, top.Strength)
}

func TestCorrelationSortedByAbsoluteStrength(t *testing.T) {
	csv := "a,b,c\n"
	for i := 1; i <= 20; i++ {
		a := float64(i)
		b := float64(i) * 2            // perfect with a
		c := float64(i) + math.Mod(float64(i*7), 11) // weaker
		csv += formatRow(a, b, c)
	}
	typed := load(t, csv)

	summary, err := New(DefaultConfig()).Extract(typed)
	require.NoError(t, err)

	for i := 1; i < len(summary.Correlations); i++ {
		prev := math.Abs(summary.Correlations[i-1].Coefficient)
		cur := math.Abs(summary.Correlations[i].Coefficient)
		assert.GreaterOrEqual(t, prev, cur, "correlations must sort by |r| descending")
	}
	for _, c := range summary.Correlations {
		assert.Less(t, c.ColumnX, c.ColumnY, "pair names must be in lexical order")
	}
}

func TestTrendAgainstDatetimeOrdering(t *testing.T) {
	csv := "date,sales\n"
	days := []string{"2025-01-01", "2025-01-02", "2025-01-03", "2025-01-04", "2025-01-05",
		"2025-01-06", "2025-01-07", "2025-01-08", "2025-01-09", "2025-01-10"}
	for i, d := range days {
		csv += d + "," + formatFloat(100+float64(i)*10) + "\n"
	}
	typed := load(t, csv)

	summary, err := New(DefaultConfig()).Extract(typed)
	require.NoError(t, err)

	require.Len(t, summary.Trends, 1)
	trend := summary.Trends[0]
	assert.Equal(t, "sales", trend.Column)
	assert.Equal(t, "date", trend.Ordering)
	assert.Equal(t, insight.DirectionUp, trend.Direction)
	assert.InDelta(t, 1.0, trend.Magnitude, 1e-6, "a perfect line is maximally significant")
	assert.Equal(t, 10, trend.SampleSize)
}

func TestTrendOmittedBelowSampleMinimum(t *testing.T) {
	typed := load(t, "v\n1\n2\n3\n")

	summary, err := New(DefaultConfig()).Extract(typed)
	require.NoError(t, err)
	assert.Empty(t, summary.Trends, "default minimum is 5 non-null samples")
}

func TestScoreScenario(t *testing.T) {
	// name,score with A=10, B=12, C=100: C is the outlier, the trend is
	// positive but statistically insignificant, and a single numeric
	// column cannot produce correlations.
	typed := load(t, "name,score\nA,10\nB,12\nC,100\n")

	config := DefaultConfig()
	config.MinTrendSamples = 3
	// With three rows the largest attainable z-score is (n-1)/sqrt(n),
	// about 1.15, so the scenario tunes the threshold below that.
	config.ZScoreThreshold = 1.0

	summary, err := New(config).Extract(typed)
	require.NoError(t, err)

	require.Len(t, summary.Outliers, 1)
	assert.Equal(t, 2, summary.Outliers[0].Row, "row C holds the outlier")
	assert.Equal(t, "score", summary.Outliers[0].Column)

	require.Len(t, summary.Trends, 1)
	assert.Equal(t, insight.DirectionUp, summary.Trends[0].Direction)
	assert.Less(t, summary.Trends[0].Magnitude, 0.1, "three noisy points carry no significant trend")

	assert.Empty(t, summary.Correlations)
}

func TestExtractionIsDeterministic(t *testing.T) {
	csv := "a,b\n"
	for i := 1; i <= 30; i++ {
		csv += formatRow(float64(i), float64(i*i))
	}
	typed := load(t, csv)

	extractor := New(DefaultConfig())
	first, err := extractor.Extract(typed)
	require.NoError(t, err)
	second, err := extractor.Extract(typed)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func formatRow(values ...float64) string {
	row := ""
	for i, v := range values {
		if i > 0 {
			row += ","
		}
		row += formatFloat(v)
	}
	return row + "\n"
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
