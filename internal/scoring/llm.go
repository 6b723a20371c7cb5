package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"interviewd/internal/interview"
	"interviewd/internal/llm"
)

// LLMScorer grades a transcript with a completion provider and falls back to
// the heuristic when the provider fails, so a completed interview always
// gets a verdict eventually.
type LLMScorer struct {
	provider  llm.Provider
	heuristic *HeuristicScorer
	logger    *slog.Logger
}

var _ interview.Scorer = (*LLMScorer)(nil)

// NewLLMScorer creates a model-backed scorer
func NewLLMScorer(provider llm.Provider, logger *slog.Logger) *LLMScorer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LLMScorer{
		provider:  provider,
		heuristic: NewHeuristicScorer(),
		logger:    logger,
	}
}

// Score asks the provider to grade the full transcript from 0 to 100.
func (s *LLMScorer) Score(ctx context.Context, sess *interview.Session) (int, error) {
	resp, err := s.provider.Complete(ctx, &llm.Request{
		System: "You are a technical interviewer grading a candidate's interview. " +
			`Respond with JSON only: {"score": <integer 0-100>}.`,
		Messages:  []llm.Message{{Role: llm.RoleUser, Content: transcript(sess)}},
		MaxTokens: 64,
	})
	if err != nil {
		s.logger.Warn("model scoring failed, using heuristic", "error", err)
		return s.heuristic.Score(ctx, sess)
	}

	var verdict struct {
		Score int `json:"score"`
	}
	if err := json.Unmarshal([]byte(extractJSONObject(resp.Content)), &verdict); err != nil {
		s.logger.Warn("model verdict unparseable, using heuristic", "content", resp.Content)
		return s.heuristic.Score(ctx, sess)
	}
	if verdict.Score < 0 || verdict.Score > 100 {
		return 0, fmt.Errorf("score %d out of range", verdict.Score)
	}
	return verdict.Score, nil
}

// Summarize asks the provider for a two-sentence hiring summary.
func (s *LLMScorer) Summarize(ctx context.Context, candidateName string, score int) (string, error) {
	resp, err := s.provider.Complete(ctx, &llm.Request{
		System: "You are a technical interviewer writing a final candidate summary for the hiring team.",
		Messages: []llm.Message{{
			Role:    llm.RoleUser,
			Content: fmt.Sprintf("Candidate %s scored %d out of 100. Write a two-sentence summary.", candidateName, score),
		}},
		MaxTokens: 256,
	})
	if err != nil {
		s.logger.Warn("model summary failed, using template", "error", err)
		return s.heuristic.Summarize(ctx, candidateName, score)
	}

	summary := strings.TrimSpace(resp.Content)
	if summary == "" {
		return s.heuristic.Summarize(ctx, candidateName, score)
	}
	return summary, nil
}

func transcript(sess *interview.Session) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Candidate: %s\n\n", sess.Candidate.Name)
	for i, answer := range sess.Answers {
		question := sess.Questions[i]
		fmt.Fprintf(&sb, "Q%d (%s, %ds limit): %s\n", i+1, question.Difficulty, question.TimeLimit, question.Text)
		text := strings.TrimSpace(answer.Text)
		if text == "" {
			text = "(no answer)"
		}
		fmt.Fprintf(&sb, "A%d (%ds used): %s\n\n", i+1, answer.TimeSpent, text)
	}
	return sb.String()
}

func extractJSONObject(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return s
	}
	return s[start : end+1]
}
