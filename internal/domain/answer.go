package domain

import "time"

// Answer records a candidate's response to one question. Answers are created
// exactly once per question and appended in question order. Score is the only
// field mutated after creation, and only by the scoring provider callback.
type Answer struct {
	QuestionID  string    `json:"question_id"`
	Text        string    `json:"text"`
	SubmittedAt time.Time `json:"submitted_at"`
	TimeSpent   int       `json:"time_spent"` // seconds
	Score       *int      `json:"score,omitempty"`
}
