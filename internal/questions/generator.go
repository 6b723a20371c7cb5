package questions

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"interviewd/internal/domain"
	"interviewd/internal/llm"
)

const generatePrompt = `Generate %d interview questions for a full-stack developer role
(React and Node.js). Difficulties in order: %s.
Respond with a JSON array only, one object per question: {"text": "..."}.`

// Generator produces interview questions from a completion provider, falling
// back to the local bank when the provider is unavailable or returns
// something unusable. An interview must always start, with or without a
// working model.
type Generator struct {
	provider llm.Provider
	fallback *BankProvider
	logger   *slog.Logger
}

// NewGenerator creates a model-backed question generator
func NewGenerator(provider llm.Provider, fallback *BankProvider, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{provider: provider, fallback: fallback, logger: logger}
}

// Generate asks the provider for one interview's question set.
func (g *Generator) Generate(ctx context.Context) ([]domain.Question, error) {
	plan := domain.InterviewPlan()

	out, err := g.fromProvider(ctx, plan)
	if err != nil {
		g.logger.Warn("question generation failed, using bank",
			"provider", g.provider.Name(),
			"error", err)
		return g.fallback.Generate(ctx)
	}
	return out, nil
}

func (g *Generator) fromProvider(ctx context.Context, plan []domain.Difficulty) ([]domain.Question, error) {
	names := make([]string, len(plan))
	for i, d := range plan {
		names[i] = string(d)
	}

	resp, err := g.provider.Complete(ctx, &llm.Request{
		System:      "You are a technical interviewer.",
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: fmt.Sprintf(generatePrompt, len(plan), strings.Join(names, ", "))}},
		MaxTokens:   1024,
		Temperature: 0.7,
	})
	if err != nil {
		return nil, err
	}

	var items []struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal([]byte(extractJSONArray(resp.Content)), &items); err != nil {
		return nil, fmt.Errorf("parse generated questions: %w", err)
	}
	if len(items) != len(plan) {
		return nil, fmt.Errorf("generated %d questions, want %d", len(items), len(plan))
	}

	out := make([]domain.Question, len(plan))
	for i, difficulty := range plan {
		if strings.TrimSpace(items[i].Text) == "" {
			return nil, fmt.Errorf("generated question %d is empty", i+1)
		}
		out[i] = domain.Question{
			ID:         fmt.Sprintf("q%d", i+1),
			Text:       strings.TrimSpace(items[i].Text),
			Difficulty: difficulty,
			TimeLimit:  difficulty.TimeLimitSeconds(),
		}
	}
	return out, nil
}

// extractJSONArray strips prose and code fences around the first JSON array
// in a model response.
func extractJSONArray(s string) string {
	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start < 0 || end <= start {
		return s
	}
	return s[start : end+1]
}
