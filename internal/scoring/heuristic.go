package scoring

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"interviewd/internal/domain"
	"interviewd/internal/interview"
)

// HeuristicScorer grades a transcript without a model. Each answer earns
// points for substance (length, up to a cap) and pace (time left on the
// clock), weighted by question difficulty. The result is deterministic for
// a given transcript.
type HeuristicScorer struct{}

var _ interview.Scorer = (*HeuristicScorer)(nil)

// NewHeuristicScorer creates a deterministic scorer
func NewHeuristicScorer() *HeuristicScorer {
	return &HeuristicScorer{}
}

func difficultyWeight(d domain.Difficulty) int {
	switch d {
	case domain.DifficultyHard:
		return 3
	case domain.DifficultyMedium:
		return 2
	default:
		return 1
	}
}

// Score returns a 0 to 100 grade over all answered questions.
func (s *HeuristicScorer) Score(_ context.Context, sess *interview.Session) (int, error) {
	if len(sess.Answers) == 0 {
		return 0, fmt.Errorf("no answers to score")
	}

	var weighted, totalWeight int
	for i, answer := range sess.Answers {
		question := sess.Questions[i]
		weight := difficultyWeight(question.Difficulty)
		weighted += AnswerScore(question, answer) * weight
		totalWeight += weight
	}

	return weighted / totalWeight, nil
}

// AnswerScore grades a single answer from 0 to 100.
func AnswerScore(question domain.Question, answer domain.Answer) int {
	text := strings.TrimSpace(answer.Text)
	if text == "" {
		return 0
	}

	// Substance: up to 70 points, saturating at 280 characters.
	length := utf8.RuneCountInString(text)
	substance := length / 4
	if substance > 70 {
		substance = 70
	}

	// Pace: up to 30 points for time left on the clock.
	pace := 0
	if question.TimeLimit > 0 && answer.TimeSpent >= 0 && answer.TimeSpent < question.TimeLimit {
		pace = 30 * (question.TimeLimit - answer.TimeSpent) / question.TimeLimit
	}

	score := substance + pace
	if score > 100 {
		score = 100
	}
	return score
}

// Summarize renders a short narrative for the final report. The template is
// chosen by score band so reruns produce the same text.
func (s *HeuristicScorer) Summarize(_ context.Context, candidateName string, score int) (string, error) {
	switch {
	case score >= 85:
		return candidateName + " showed excellent technical depth and practical experience. Strong candidate with well-rounded full-stack development skills.", nil
	case score >= 70:
		return candidateName + " demonstrated strong technical knowledge with clear explanations and good problem-solving skills. Shows potential for growth in a full-stack development role.", nil
	case score >= 60:
		return candidateName + " provided thoughtful responses with solid understanding of core concepts. Communication skills are clear and professional.", nil
	default:
		return candidateName + " exhibited good grasp of fundamental concepts with room for improvement in advanced topics. Positive attitude and willingness to learn.", nil
	}
}
