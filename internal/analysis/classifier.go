// Package analysis wraps the external text-classification service used by
// AI monitoring rules. The service is treated as a black box returning a
// flagged/reason/confidence verdict; callers that must never propagate a
// classification failure wrap a Classifier with FailClosed.
package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"modbot/internal/config"
	"modbot/internal/core"
	"modbot/internal/logger"
)

// SystemPrompt frames every classification request. The model is asked for
// a strict JSON verdict so the response can be decoded directly.
const SystemPrompt = `You are a content moderation assistant. Analyze the provided content based on the given criteria and respond with a JSON object containing:
- "flagged": boolean (true if content violates the criteria)
- "reason": string (explanation of why it was flagged, or "No violations detected" if not flagged)
- "confidence": number (0-1, confidence level in the assessment)`

// Classifier decides whether a piece of content violates the criteria
// described by a natural-language prompt.
type Classifier interface {
	Classify(ctx context.Context, content, prompt string) (core.AnalysisResult, error)
}

// GeminiClassifier implements Classifier on the Gemini API with a
// structured-output schema.
type GeminiClassifier struct {
	client      *genai.Client
	modelName   string
	temperature float32
}

// verdictSchema constrains the model response to the verdict object.
var verdictSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"flagged":    {Type: genai.TypeBoolean},
		"reason":     {Type: genai.TypeString},
		"confidence": {Type: genai.TypeNumber},
	},
	Required: []string{"flagged", "reason", "confidence"},
}

// NewGeminiClassifier creates a classifier from configuration. A missing
// API key is a configuration error, fatal to the caller.
func NewGeminiClassifier(ctx context.Context, cfg config.Gemini) (*GeminiClassifier, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required. Set GEMINI_API_KEY or ai.gemini.api_key in config")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}

	return &GeminiClassifier{
		client:      client,
		modelName:   model,
		temperature: cfg.Temperature,
	}, nil
}

// Classify sends content and criteria to the model and decodes its verdict.
func (g *GeminiClassifier) Classify(ctx context.Context, content, prompt string) (core.AnalysisResult, error) {
	if content == "" || prompt == "" {
		return core.AnalysisResult{}, fmt.Errorf("content and prompt are required")
	}

	userPrompt := fmt.Sprintf("%s\n\nAnalysis criteria: %s\n\nContent to analyze: %s", SystemPrompt, prompt, content)
	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: userPrompt}},
		Role:  "user",
	}}

	temp := g.temperature
	genConfig := &genai.GenerateContentConfig{
		Temperature:      &temp,
		ResponseMIMEType: "application/json",
		ResponseSchema:   verdictSchema,
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, contents, genConfig)
	if err != nil {
		return core.AnalysisResult{}, fmt.Errorf("classification request failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return core.AnalysisResult{}, fmt.Errorf("empty response from classification model")
	}

	return parseVerdict(text)
}

// parseVerdict decodes the model's JSON verdict. If the response is not
// valid JSON despite the schema, a lenient text reading is used, mirroring
// how raw moderation replies name a violation in prose.
func parseVerdict(text string) (core.AnalysisResult, error) {
	var result core.AnalysisResult
	if err := json.Unmarshal([]byte(text), &result); err == nil {
		if result.Confidence < 0 {
			result.Confidence = 0
		}
		if result.Confidence > 1 {
			result.Confidence = 1
		}
		return result, nil
	}

	lower := strings.ToLower(text)
	return core.AnalysisResult{
		Flagged:    strings.Contains(lower, "flagged") || strings.Contains(lower, "violation"),
		Reason:     strings.TrimSpace(text),
		Confidence: 0.8,
	}, nil
}

// failClosed decorates a Classifier so that any error becomes a
// not-flagged verdict with zero confidence. This keeps a classification
// outage from either aborting a scan or producing an alert storm.
type failClosed struct {
	inner Classifier
}

// FailClosed wraps c with the fail-closed contract.
func FailClosed(c Classifier) Classifier {
	return &failClosed{inner: c}
}

func (f *failClosed) Classify(ctx context.Context, content, prompt string) (core.AnalysisResult, error) {
	result, err := f.inner.Classify(ctx, content, prompt)
	if err != nil {
		logger.Error("Content analysis failed, failing closed", err)
		return core.AnalysisResult{Flagged: false, Reason: "Analysis failed", Confidence: 0}, nil
	}
	return result, nil
}

type disabledClassifier struct{}

// Disabled returns a Classifier that rejects every request. It stands in
// when no API key is configured, so AI rules degrade through FailClosed
// instead of aborting the scan.
func Disabled() Classifier {
	return disabledClassifier{}
}

func (disabledClassifier) Classify(ctx context.Context, content, prompt string) (core.AnalysisResult, error) {
	return core.AnalysisResult{}, fmt.Errorf("ai analysis is not configured")
}
