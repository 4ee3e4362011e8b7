package legit

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"ghostcheck-engine/internal/domain"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/openai"
)

const groqBaseURL = "https://api.groq.com/openai/v1"

// LLMScorer wraps one chat model behind the Scorer interface. Any failure
// (network, quota, malformed reply) comes back as an error so the chain
// can fall through to the next strategy.
type LLMScorer struct {
	name  string
	model llms.Model
}

// NewGroq builds a Groq-hosted scorer through the OpenAI-compatible API.
func NewGroq(apiKey, model string) (*LLMScorer, error) {
	if model == "" {
		model = "llama-3.3-70b-versatile"
	}
	llm, err := openai.New(
		openai.WithToken(apiKey),
		openai.WithModel(model),
		openai.WithBaseURL(groqBaseURL),
	)
	if err != nil {
		return nil, fmt.Errorf("groq client: %w", err)
	}
	return &LLMScorer{name: "groq", model: llm}, nil
}

func NewGemini(ctx context.Context, apiKey, model string) (*LLMScorer, error) {
	if model == "" {
		model = "gemini-2.0-flash"
	}
	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &LLMScorer{name: "gemini", model: llm}, nil
}

func (s *LLMScorer) Name() string { return s.name }

func (s *LLMScorer) Assess(ctx context.Context, p domain.Posting) (Assessment, error) {
	resp, err := llms.GenerateFromSinglePrompt(ctx, s.model, buildPrompt(p),
		llms.WithTemperature(0.3),
	)
	if err != nil {
		return Assessment{}, fmt.Errorf("%s generate: %w", s.name, err)
	}

	a, err := parseAssessment(resp)
	if err != nil {
		return Assessment{}, fmt.Errorf("%s parse: %w", s.name, err)
	}
	return normalize(a, s.name), nil
}

func parseAssessment(content string) (Assessment, error) {
	cleaned := cleanMarkdownJSON(content)

	var raw struct {
		Score           int      `json:"score"`
		Concerns        []string `json:"concerns"`
		PositiveSignals []string `json:"positive_signals"`
		Recommendation  string   `json:"recommendation"`
		Rationale       string   `json:"rationale"`
	}
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return Assessment{}, fmt.Errorf("unmarshal assessment (raw length %d): %w", len(cleaned), err)
	}

	return Assessment{
		Score:           raw.Score,
		Concerns:        raw.Concerns,
		PositiveSignals: raw.PositiveSignals,
		Recommendation:  raw.Recommendation,
		Rationale:       raw.Rationale,
	}, nil
}

// cleanMarkdownJSON removes backticks and "json" prefix if the model tries
// to be helpful.
func cleanMarkdownJSON(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimSuffix(content, "```")
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
	}
	return strings.TrimSpace(content)
}
