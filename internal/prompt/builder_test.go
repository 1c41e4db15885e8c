package prompt

import (
	"encoding/json"
	"strings"
	"testing"

	"datastory/domain/insight"
	"datastory/domain/story"
	apperrors "datastory/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSummary() *insight.Summary {
	s := insight.NewSummary()
	s.Trends = append(s.Trends, insight.Trend{
		Column: "sales", Ordering: "date", Direction: insight.DirectionUp,
		Magnitude: 0.82, Slope: 12.5, SampleSize: 120,
	})
	s.Outliers = append(s.Outliers, insight.Outlier{
		Row: 37, Column: "sales", Value: 9120.0, Deviation: 4.1,
	})
	s.Correlations = append(s.Correlations, insight.Correlation{
		ColumnX: "clicks", ColumnY: "impressions", Coefficient: 0.91,
		Strength: insight.StrengthStrong, SampleSize: 120,
	})
	return s
}

func validConfig() story.Config {
	return story.Config{
		Audience:   story.AudienceExecutive,
		FocusAreas: []story.Focus{story.FocusTrend, story.FocusAction},
		Length:     story.LengthMedium,
	}
}

func TestBuildRejectsUnknownAudience(t *testing.T) {
	config := validConfig()
	config.Audience = "unknown"

	_, err := NewBuilder().Build(sampleSummary(), config, "")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConfigValidation))
}

func TestBuildRejectsUnknownFocusAndLength(t *testing.T) {
	config := validConfig()
	config.FocusAreas = []story.Focus{"vibes"}
	_, err := NewBuilder().Build(sampleSummary(), config, "")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConfigValidation))

	config = validConfig()
	config.Length = "epic"
	_, err = NewBuilder().Build(sampleSummary(), config, "")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConfigValidation))
}

func TestBuildPayloadShape(t *testing.T) {
	payload, err := NewBuilder().Build(sampleSummary(), validConfig(), "req-123")
	require.NoError(t, err)

	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &decoded))
	for _, key := range []string{"insights", "audience", "focus_areas", "length", "request_id"} {
		assert.Contains(t, decoded, key, "model-input contract field %q must be present", key)
	}

	var insights map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(decoded["insights"], &insights))
	for _, key := range []string{"trends", "outliers", "correlations"} {
		assert.Contains(t, insights, key)
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	builder := NewBuilder()

	first, _, err := builder.BuildPrompt(sampleSummary(), validConfig(), "req-a")
	require.NoError(t, err)
	second, _, err := builder.BuildPrompt(sampleSummary(), validConfig(), "req-b")
	require.NoError(t, err)

	assert.Equal(t, first, second, "the request identifier must not affect prompt content")
}

func TestRenderMentionsConfiguration(t *testing.T) {
	text, _, err := NewBuilder().BuildPrompt(sampleSummary(), validConfig(), "")
	require.NoError(t, err)

	assert.Contains(t, text, `"executive"`)
	assert.Contains(t, text, focusDirectives[story.FocusTrend])
	assert.Contains(t, text, focusDirectives[story.FocusAction])
	assert.Contains(t, text, lengthDirectives[story.LengthMedium])
	assert.Contains(t, text, `"key_findings"`)
	assert.Contains(t, text, "clicks")
}

func TestRenderEmptySummaryAddsHonestyNote(t *testing.T) {
	text, _, err := NewBuilder().BuildPrompt(insight.NewSummary(), validConfig(), "")
	require.NoError(t, err)
	assert.Contains(t, text, "No statistical signals")
}

func TestBuildNilSummaryBecomesEmpty(t *testing.T) {
	payload, err := NewBuilder().Build(nil, validConfig(), "")
	require.NoError(t, err)
	assert.NotNil(t, payload.Insights.Trends)
	assert.True(t, payload.Insights.IsEmpty())
}

func TestTemplatesCoverEveryEnumValue(t *testing.T) {
	for _, a := range story.Audiences() {
		assert.NotEmpty(t, audienceProfiles[a], "audience %s needs a profile", a)
	}
	for _, f := range story.Focuses() {
		assert.NotEmpty(t, focusDirectives[f], "focus %s needs a directive", f)
	}
	for _, l := range story.Lengths() {
		assert.NotEmpty(t, lengthDirectives[l], "length %s needs a directive", l)
	}
	assert.True(t, strings.Contains(responseContract, "action_items"))
}
