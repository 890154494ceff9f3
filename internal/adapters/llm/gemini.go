// Package llm produces the narrative summary with Gemini.
package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/genai"

	"github.com/okian/workforce/internal/domain/summary"
)

const defaultModel = "gemini-2.5-flash"

const promptTemplate = `Act as an expert project management consultant and senior data analyst.
Analyze the following hours worked by a consulting team:
%s

Return a brief executive report as JSON with exactly this structure:
{
  "summary": "One paragraph on the current situation (max 40 words).",
  "risks": ["2-3 potential risks, e.g. overload, client dependency, low productivity."],
  "recommendations": ["2-3 strategic recommendations to improve."]
}

Reply ONLY with the JSON.`

// Generator is the slice of the GenAI models service the summarizer uses.
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Gemini implements summary.Summarizer.
type Gemini struct {
	models Generator
	model  string
}

var _ summary.Summarizer = (*Gemini)(nil)

// Option configures Gemini.
type Option func(*Gemini)

// WithModel selects the model name.
func WithModel(model string) Option {
	return func(g *Gemini) {
		if model != "" {
			g.model = model
		}
	}
}

// WithGenerator replaces the GenAI client, mainly for tests.
func WithGenerator(gen Generator) Option {
	return func(g *Gemini) {
		if gen != nil {
			g.models = gen
		}
	}
}

// NewGemini builds a summarizer backed by the Gemini API. An empty key
// returns ErrMissingAPIKey unless a generator is supplied.
func NewGemini(ctx context.Context, apiKey string, opts ...Option) (*Gemini, error) {
	g := &Gemini{model: defaultModel}
	for _, opt := range opts {
		opt(g)
	}
	if g.models != nil {
		return g, nil
	}
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	g.models = client.Models
	return g, nil
}

// Prompt renders the request sent for in.
func Prompt(in summary.Input) (string, error) {
	data, err := json.Marshal(in)
	if err != nil {
		return "", fmt.Errorf("encode summary input: %w", err)
	}
	return fmt.Sprintf(promptTemplate, data), nil
}

// Summarize asks the model for a report. Transport errors are returned;
// unreadable answers become the fallback report.
func (g *Gemini) Summarize(ctx context.Context, in summary.Input) (summary.Report, error) {
	prompt, err := Prompt(in)
	if err != nil {
		return summary.Report{}, err
	}

	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(float32(0.2)),
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"summary":         {Type: genai.TypeString},
				"risks":           {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
				"recommendations": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
			},
		},
	}

	result, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), config)
	if err != nil {
		return summary.Report{}, fmt.Errorf("%w: %w", ErrGenerate, err)
	}
	return ParseReport(result.Text()), nil
}
