package story

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigValidate(t *testing.T) {
	valid := Config{
		Audience:   AudienceMarketing,
		FocusAreas: []Focus{FocusTrend, FocusCorrelation},
		Length:     LengthLong,
	}
	assert.NoError(t, valid.Validate())

	cases := []struct {
		name   string
		config Config
	}{
		{"bad audience", Config{Audience: "board", Length: LengthShort}},
		{"bad focus", Config{Audience: AudienceGeneral, FocusAreas: []Focus{"drama"}, Length: LengthShort}},
		{"duplicate focus", Config{Audience: AudienceGeneral, FocusAreas: []Focus{FocusTrend, FocusTrend}, Length: LengthShort}},
		{"bad length", Config{Audience: AudienceGeneral, Length: "novel"}},
		{"empty config", Config{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Error(t, tc.config.Validate())
		})
	}
}

func TestConfigEmptyFocusIsValid(t *testing.T) {
	config := Config{Audience: AudienceTechnical, Length: LengthMedium}
	assert.NoError(t, config.Validate())
}

func TestCanonicalKeyIgnoresFocusOrder(t *testing.T) {
	a := Config{Audience: AudienceGeneral, FocusAreas: []Focus{FocusTrend, FocusOutlier}, Length: LengthShort}
	b := Config{Audience: AudienceGeneral, FocusAreas: []Focus{FocusOutlier, FocusTrend}, Length: LengthShort}

	assert.Equal(t, a.CanonicalKey(), b.CanonicalKey())
}

func TestCanonicalKeySeparatesConfigs(t *testing.T) {
	a := Config{Audience: AudienceGeneral, Length: LengthShort}
	b := Config{Audience: AudienceGeneral, Length: LengthLong}
	c := Config{Audience: AudienceExecutive, Length: LengthShort}

	assert.NotEqual(t, a.CanonicalKey(), b.CanonicalKey())
	assert.NotEqual(t, a.CanonicalKey(), c.CanonicalKey())
}
