package prompt

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"datastory/domain/insight"
	"datastory/domain/story"
	apperrors "datastory/internal/errors"
)

// Payload is the model-input contract: field names and nesting are
// stable because the model's behavior was tuned against this shape.
type Payload struct {
	Insights   insight.Summary `json:"insights"`
	Audience   story.Audience  `json:"audience"`
	FocusAreas []story.Focus   `json:"focus_areas"`
	Length     story.Length    `json:"length"`
	// RequestID is an externally supplied trace identifier. It never
	// influences the prompt text.
	RequestID string `json:"request_id,omitempty"`
}

// Builder renders an insight summary and a story configuration into the
// payload and prompt the narrative client sends. Building is pure: the
// same (summary, config) pair always yields the same prompt.
type Builder struct{}

// NewBuilder creates a prompt builder
func NewBuilder() *Builder {
	return &Builder{}
}

// Build validates the configuration and assembles the payload.
// Out-of-enum values fail here, before any network activity.
func (b *Builder) Build(summary *insight.Summary, config story.Config, requestID string) (*Payload, error) {
	if err := config.Validate(); err != nil {
		return nil, apperrors.ConfigValidation(err)
	}
	if summary == nil {
		summary = insight.NewSummary()
	}

	payload := &Payload{
		Insights:   *summary,
		Audience:   config.Audience,
		FocusAreas: config.FocusAreas,
		Length:     config.Length,
		RequestID:  requestID,
	}
	log.Printf("[PromptBuilder] Built payload: audience=%s, focuses=%d, length=%s, request=%s",
		config.Audience, len(config.FocusAreas), config.Length, requestID)
	return payload, nil
}

// Render produces the full prompt text for a payload. The request
// identifier is deliberately excluded so tracing cannot perturb the
// model input.
func (b *Builder) Render(payload *Payload) (string, error) {
	insightsJSON, err := json.MarshalIndent(payload.Insights, "", "  ")
	if err != nil {
		return "", apperrors.Wrap(err, "failed to serialize insights")
	}

	var sb strings.Builder
	sb.WriteString("You are a data analysis and storytelling expert. Analyze the extracted ")
	sb.WriteString(fmt.Sprintf("signals below and write an insightful data story for the %q audience.\n\n", payload.Audience))

	sb.WriteString("## Audience\n")
	sb.WriteString(audienceProfiles[payload.Audience])
	sb.WriteString("\n\n")

	if len(payload.FocusAreas) > 0 {
		sb.WriteString("## Analysis focus\n")
		for _, focus := range payload.FocusAreas {
			sb.WriteString("- ")
			sb.WriteString(focusDirectives[focus])
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Desired length\n")
	sb.WriteString(lengthDirectives[payload.Length])
	sb.WriteString("\n\n")

	sb.WriteString("## Extracted signals\n```json\n")
	sb.Write(insightsJSON)
	sb.WriteString("\n```\n\n")

	if payload.Insights.IsEmpty() {
		sb.WriteString("No statistical signals cleared the detection thresholds; say so honestly ")
		sb.WriteString("rather than inventing findings.\n\n")
	}

	sb.WriteString("## Response format\n")
	sb.WriteString(responseContract)
	sb.WriteString("\n")

	return sb.String(), nil
}

// BuildPrompt is the one-call form: validate, assemble, render
func (b *Builder) BuildPrompt(summary *insight.Summary, config story.Config, requestID string) (string, *Payload, error) {
	payload, err := b.Build(summary, config, requestID)
	if err != nil {
		return "", nil, err
	}
	text, err := b.Render(payload)
	if err != nil {
		return "", nil, err
	}
	return text, payload, nil
}
