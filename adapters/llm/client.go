package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"datastory/domain/story"
	apperrors "datastory/internal/errors"
)

// Config holds the narrative client settings. The credential arrives
// here explicitly; nothing in the pipeline reads it from the ambient
// environment, and it is never logged.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	Temperature    float64
	MaxTokens      int
	RequestTimeout time.Duration
	Retry          RetryPolicy
}

// DefaultConfig returns client defaults minus the credential
func DefaultConfig() Config {
	return Config{
		BaseURL:        "https://api.openai.com/v1",
		Model:          "gpt-4o-mini",
		Temperature:    0.7,
		MaxTokens:      2000,
		RequestTimeout: 60 * time.Second,
		Retry:          DefaultRetryPolicy(),
	}
}

// Narrator calls the chat-completions endpoint and returns a validated
// narrative. Transient failures retry per the policy; schema and auth
// failures surface immediately.
type Narrator struct {
	config     Config
	httpClient *http.Client
}

// NewNarrator creates a narrative client with the given config
func NewNarrator(config Config) *Narrator {
	log.Printf("[Narrator] Initialized: model=%s, temp=%.2f, maxTokens=%d, timeout=%v, maxAttempts=%d",
		config.Model, config.Temperature, config.MaxTokens, config.RequestTimeout, config.Retry.MaxAttempts)
	return &Narrator{
		config:     config,
		httpClient: &http.Client{},
	}
}

// Narrate sends the prompt and returns the validated narrative.
// Cancellation of ctx abandons the in-flight call and its retry state.
func (n *Narrator) Narrate(ctx context.Context, prompt string) (*story.Narrative, error) {
	if n.config.APIKey == "" {
		return nil, apperrors.NarrativeClient("missing API credential", nil)
	}

	maxAttempts := n.config.Retry.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		narrative, err := n.attempt(ctx, prompt)
		if err == nil {
			log.Printf("[Narrator] Narrative ready after %d attempt(s)", attempt)
			return narrative, nil
		}
		lastErr = err

		if !isTransient(err) {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, apperrors.NarrativeClient("narrative call cancelled", ctx.Err())
		}
		if attempt == maxAttempts {
			break
		}

		backoff := n.config.Retry.Backoff(attempt)
		log.Printf("[Narrator] Attempt %d/%d failed (transient), retrying in %v: %v",
			attempt, maxAttempts, backoff, err)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return nil, apperrors.NarrativeClient("narrative call cancelled", ctx.Err())
		}
	}

	return nil, apperrors.NarrativeClient(
		fmt.Sprintf("narrative call failed after %d attempts", maxAttempts), lastErr)
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// attempt performs one bounded request-parse-validate cycle
func (n *Narrator) attempt(ctx context.Context, prompt string) (*story.Narrative, error) {
	ctx, cancel := context.WithTimeout(ctx, n.config.RequestTimeout)
	defer cancel()

	reqBody := chatRequest{
		Model: n.config.Model,
		Messages: []chatMessage{
			{Role: "system", Content: "You are a data storytelling assistant. Always respond with valid JSON."},
			{Role: "user", Content: prompt},
		},
		Temperature:    n.config.Temperature,
		MaxTokens:      n.config.MaxTokens,
		ResponseFormat: &responseFormat{Type: "json_object"},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, apperrors.NarrativeClient("failed to marshal request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		n.config.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, apperrors.NarrativeClient("failed to create request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+n.config.APIKey)

	resp, err := n.httpClient.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, transient(fmt.Errorf("request timeout after %v: %w", n.config.RequestTimeout, err))
		}
		return nil, transient(fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transient(fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return nil, n.classifyStatus(resp.StatusCode, body)
	}

	var envelope chatResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		// A garbled transport payload is assumed flaky, not a prompt
		// problem, so it counts against the retry budget.
		return nil, transient(fmt.Errorf("malformed completion envelope: %w", err))
	}
	if len(envelope.Choices) == 0 {
		return nil, transient(fmt.Errorf("completion envelope has no choices"))
	}

	return parseNarrative(envelope.Choices[0].Message.Content)
}

// classifyStatus maps HTTP failures onto the transient/fatal split.
// Rate limits and server errors retry; auth and invalid-request do not.
func (n *Narrator) classifyStatus(status int, body []byte) error {
	msg := fmt.Sprintf("API error (status %d): %s", status, truncate(string(body), 300))
	switch {
	case status == http.StatusTooManyRequests:
		return transient(fmt.Errorf("rate limited: %s", msg))
	case status >= 500:
		return transient(fmt.Errorf("server error: %s", msg))
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return apperrors.NarrativeClient("authentication failed", fmt.Errorf("%s", msg))
	default:
		return apperrors.NarrativeClient("invalid request", fmt.Errorf("%s", msg))
	}
}

// parseNarrative enforces the output contract: a JSON object with
// exactly summary, key_findings, and action_items. Any other shape is a
// schema error and is never retried; the raw content is preserved for
// diagnostics.
func parseNarrative(content string) (*story.Narrative, error) {
	cleaned := stripFences(content)

	if !json.Valid([]byte(cleaned)) {
		return nil, transient(fmt.Errorf("completion content is not valid JSON"))
	}

	var shape map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &shape); err != nil {
		return nil, apperrors.ResponseSchema(
			fmt.Sprintf("response is not a JSON object: %v", err), content)
	}

	for _, key := range []string{"summary", "key_findings", "action_items"} {
		if _, ok := shape[key]; !ok {
			return nil, apperrors.ResponseSchema(
				fmt.Sprintf("response is missing required key %q", key), content)
		}
	}
	if len(shape) != 3 {
		return nil, apperrors.ResponseSchema(
			fmt.Sprintf("response has %d keys, expected exactly 3", len(shape)), content)
	}

	var narrative story.Narrative
	if err := json.Unmarshal([]byte(cleaned), &narrative); err != nil {
		return nil, apperrors.ResponseSchema(
			fmt.Sprintf("response keys have wrong types: %v", err), content)
	}
	if narrative.KeyFindings == nil || narrative.ActionItems == nil {
		return nil, apperrors.ResponseSchema("key_findings and action_items must be arrays", content)
	}

	return &narrative, nil
}

// stripFences removes a markdown code fence wrapper if the model added
// one despite the contract.
func stripFences(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") && strings.HasSuffix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
		content = strings.TrimSpace(content)
	}
	return content
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
