package triage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultAnthropicBaseURL = "https://api.anthropic.com"
	anthropicVersion        = "2023-06-01"
	defaultMaxTokens        = 500
)

// AnthropicOracle consults the Anthropic Messages API for an urgency
// assessment. The HTTP request inherits the caller's context, so the
// classifier's timeout cancels the request in flight rather than leaving it
// running in the background.
type AnthropicOracle struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// AnthropicOption customizes the oracle client.
type AnthropicOption func(*AnthropicOracle)

// WithBaseURL points the oracle at a different endpoint. Used in tests.
func WithBaseURL(url string) AnthropicOption {
	return func(o *AnthropicOracle) { o.baseURL = url }
}

// WithHTTPClient swaps the underlying HTTP client.
func WithHTTPClient(c *http.Client) AnthropicOption {
	return func(o *AnthropicOracle) { o.client = c }
}

func NewAnthropicOracle(apiKey, model string, opts ...AnthropicOption) *AnthropicOracle {
	o := &AnthropicOracle{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultAnthropicBaseURL,
		// No client-level timeout: the per-request context deadline governs.
		client: &http.Client{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// Advise sends the claim features to the model and parses its JSON verdict.
func (o *AnthropicOracle) Advise(ctx context.Context, req Request) (Result, error) {
	body, err := json.Marshal(messagesRequest{
		Model:     o.model,
		MaxTokens: defaultMaxTokens,
		Messages:  []message{{Role: "user", Content: buildPrompt(req)}},
	})
	if err != nil {
		return Result{}, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Api-Key", o.apiKey)
	httpReq.Header.Set("Anthropic-Version", anthropicVersion)

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return Result{}, fmt.Errorf("advisory request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Result{}, fmt.Errorf("advisory service returned status %d: %s", resp.StatusCode, payload)
	}

	var mr messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return Result{}, fmt.Errorf("%w: decode response envelope: %v", ErrMalformedAdvice, err)
	}
	if len(mr.Content) == 0 || mr.Content[0].Text == "" {
		return Result{}, fmt.Errorf("%w: empty response content", ErrMalformedAdvice)
	}

	var result Result
	if err := json.Unmarshal([]byte(mr.Content[0].Text), &result); err != nil {
		return Result{}, fmt.Errorf("%w: decode verdict: %v", ErrMalformedAdvice, err)
	}
	return result, nil
}

func buildPrompt(req Request) string {
	var age string
	if req.PatientDOB != nil {
		age = fmt.Sprintf("\n- Patient Age: %d years", yearsSince(*req.PatientDOB, time.Now()))
	}

	return fmt.Sprintf(`You are a medical claims categorization expert. Analyze the following healthcare claim and categorize it by priority level.

Claim Details:
- CPT Code: %s
- ICD-10 Diagnosis Code: %s
- Billed Amount: $%.2f%s

Priority Categories:

URGENT - emergency department visits (CPT 99281-99285), life-threatening conditions, high-cost claims (>$5,000), critical or intensive care, time-sensitive treatments.

STANDARD - routine hospitalizations or surgeries, moderate-cost procedures ($500-$5,000), non-emergency but medically necessary care, chronic disease management.

ROUTINE - preventive care, well visits and screenings, low-cost procedures (<$500), minor acute conditions, follow-up visits.

Consider the CPT code context, the ICD-10 severity, and cost as an indicator of procedure complexity. Provide your reasoning in 1-2 sentences.

Response format (JSON only):
{"priority": "URGENT" | "STANDARD" | "ROUTINE", "confidence": 0.0-1.0, "reasoning": "brief explanation"}

Respond ONLY with valid JSON, no additional text.`,
		req.CPTCode, req.ICD10Code, req.BilledAmount, age)
}

func yearsSince(dob, now time.Time) int {
	years := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		years--
	}
	return years
}
