package story

import (
	"fmt"
	"sort"
	"strings"
)

// Audience selects the narration register of the generated story
type Audience string

const (
	AudienceExecutive Audience = "executive"
	AudienceMarketing Audience = "marketing"
	AudienceTechnical Audience = "technical"
	AudienceGeneral   Audience = "general"
)

// Focus selects which signal families the story should emphasize
type Focus string

const (
	FocusTrend       Focus = "trend"
	FocusOutlier     Focus = "outlier"
	FocusCorrelation Focus = "correlation"
	FocusAction      Focus = "action"
)

// Length selects the desired story size
type Length string

const (
	LengthShort  Length = "short"
	LengthMedium Length = "medium"
	LengthLong   Length = "long"
)

// Audiences lists every valid audience value
func Audiences() []Audience {
	return []Audience{AudienceExecutive, AudienceMarketing, AudienceTechnical, AudienceGeneral}
}

// Focuses lists every valid focus value
func Focuses() []Focus {
	return []Focus{FocusTrend, FocusOutlier, FocusCorrelation, FocusAction}
}

// Lengths lists every valid length value
func Lengths() []Length {
	return []Length{LengthShort, LengthMedium, LengthLong}
}

// Config is the caller-supplied story shaping configuration.
// Values outside the enumerated sets are rejected before any model call.
type Config struct {
	Audience   Audience `json:"audience"`
	FocusAreas []Focus  `json:"focus_areas"`
	Length     Length   `json:"length"`
}

// Validate checks every field against its enumerated option set.
// An empty focus list is allowed and means "no particular emphasis".
func (c Config) Validate() error {
	if !contains(Audiences(), c.Audience) {
		return fmt.Errorf("invalid audience %q (valid: %s)", c.Audience, joinValues(Audiences()))
	}
	seen := make(map[Focus]bool, len(c.FocusAreas))
	for _, f := range c.FocusAreas {
		if !contains(Focuses(), f) {
			return fmt.Errorf("invalid focus area %q (valid: %s)", f, joinValues(Focuses()))
		}
		if seen[f] {
			return fmt.Errorf("duplicate focus area %q", f)
		}
		seen[f] = true
	}
	if !contains(Lengths(), c.Length) {
		return fmt.Errorf("invalid length %q (valid: %s)", c.Length, joinValues(Lengths()))
	}
	return nil
}

// CanonicalKey renders the config as a stable string for cache keying:
// focus areas are sorted so ordering differences do not fork cache entries.
func (c Config) CanonicalKey() string {
	focuses := make([]string, len(c.FocusAreas))
	for i, f := range c.FocusAreas {
		focuses[i] = string(f)
	}
	sort.Strings(focuses)
	return fmt.Sprintf("%s|%s|%s", c.Audience, strings.Join(focuses, ","), c.Length)
}

// Narrative is the validated model output consumed read-only by renderers
type Narrative struct {
	Summary     string   `json:"summary"`
	KeyFindings []string `json:"key_findings"`
	ActionItems []string `json:"action_items"`
}

func contains[T comparable](set []T, v T) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func joinValues[T ~string](set []T) string {
	parts := make([]string, len(set))
	for i, s := range set {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}
