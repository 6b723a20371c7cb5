package interview

import (
	"fmt"
	"time"

	"interviewd/internal/domain"

	"github.com/google/uuid"
)

// Status represents the session lifecycle state.
type Status string

const (
	StatusNotStarted     Status = "not_started"
	StatusCollectingInfo Status = "collecting_info"
	StatusInProgress     Status = "in_progress"
	StatusPaused         Status = "paused"
	StatusCompleted      Status = "completed"
)

// Session is one candidate's full interview record, from profile collection
// to completion. All mutation goes through the lifecycle methods below; each
// either applies fully or rejects with the session unchanged.
//
// Invariants held after every successful operation:
//   - len(Answers) == CurrentQuestionIndex
//   - Answers[i].QuestionID == Questions[i].ID
//   - CurrentQuestionIndex == len(Questions) exactly when Status is completed
type Session struct {
	ID                   string                  `json:"id"`
	Candidate            domain.CandidateProfile `json:"candidate_profile"`
	Questions            []domain.Question       `json:"questions"`
	Answers              []domain.Answer         `json:"answers"`
	CurrentQuestionIndex int                     `json:"current_question_index"`
	Status               Status                  `json:"status"`
	StartTime            *time.Time              `json:"start_time,omitempty"`
	EndTime              *time.Time              `json:"end_time,omitempty"`
	FinalScore           *int                    `json:"final_score,omitempty"`
	AISummary            string                  `json:"ai_summary,omitempty"`
	TimeRemaining        *int                    `json:"time_remaining,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSession creates a session in profile collection for the given candidate.
// A missing profile ID is generated; a structurally invalid record is rejected.
func NewSession(profile domain.CandidateProfile) (*Session, error) {
	if profile.ID == "" {
		profile.ID = uuid.New().String()
	}
	if err := profile.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	return &Session{
		ID:        uuid.New().String(),
		Candidate: profile,
		Answers:   []domain.Answer{},
		Status:    StatusCollectingInfo,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// UpdateProfile merges partial candidate fields into the profile. Allowed in
// any state; it only carries product meaning before the interview starts.
func (s *Session) UpdateProfile(fields domain.ProfileFields) {
	s.Candidate.Merge(fields)
	s.UpdatedAt = time.Now()
}

// Start transitions the session from profile collection into the interview,
// fixing the question sequence for its lifetime.
func (s *Session) Start(questions []domain.Question) error {
	if s.Status != StatusCollectingInfo {
		return fmt.Errorf("%w: cannot start interview in status %q", domain.ErrInvalidTransition, s.Status)
	}
	if len(questions) == 0 {
		return domain.ErrEmptyQuestionSet
	}

	now := time.Now()
	s.Questions = append([]domain.Question(nil), questions...)
	s.Status = StatusInProgress
	s.StartTime = &now
	s.CurrentQuestionIndex = 0
	s.UpdatedAt = now
	return nil
}

// CurrentQuestion returns the question awaiting an answer.
func (s *Session) CurrentQuestion() (domain.Question, bool) {
	if s.CurrentQuestionIndex < 0 || s.CurrentQuestionIndex >= len(s.Questions) {
		return domain.Question{}, false
	}
	return s.Questions[s.CurrentQuestionIndex], true
}

// SubmitAnswer appends the answer for the current question and advances the
// index; both move together. Answering the final question completes the
// session and stamps EndTime. A repeat submission for the question just
// answered is rejected with ErrInvalidTransition so that a manual submit and
// a timer expiry for the same question can never both count.
func (s *Session) SubmitAnswer(answer domain.Answer) error {
	if s.Status != StatusInProgress {
		return fmt.Errorf("%w: cannot submit answer in status %q", domain.ErrInvalidTransition, s.Status)
	}

	current, ok := s.CurrentQuestion()
	if !ok {
		return fmt.Errorf("%w: no question pending", domain.ErrInvalidTransition)
	}
	if answer.QuestionID != current.ID {
		if s.CurrentQuestionIndex > 0 && answer.QuestionID == s.Questions[s.CurrentQuestionIndex-1].ID {
			return fmt.Errorf("%w: question %q already answered", domain.ErrInvalidTransition, answer.QuestionID)
		}
		return fmt.Errorf("%w: got %q, current is %q", domain.ErrAnswerMismatch, answer.QuestionID, current.ID)
	}

	now := time.Now()
	if answer.SubmittedAt.IsZero() {
		answer.SubmittedAt = now
	}

	s.Answers = append(s.Answers, answer)
	s.CurrentQuestionIndex++
	s.TimeRemaining = nil
	s.UpdatedAt = now

	if s.CurrentQuestionIndex == len(s.Questions) {
		s.Status = StatusCompleted
		s.EndTime = &now
	}
	return nil
}

// Pause suspends an in-progress interview, recording the seconds left on the
// current question. The caller is responsible for stopping its countdown.
func (s *Session) Pause(remainingSeconds int) error {
	if s.Status != StatusInProgress {
		return fmt.Errorf("%w: cannot pause in status %q", domain.ErrInvalidTransition, s.Status)
	}
	s.Status = StatusPaused
	s.TimeRemaining = &remainingSeconds
	s.UpdatedAt = time.Now()
	return nil
}

// Resume reactivates a paused interview. TimeRemaining is kept as the seed
// for re-arming the countdown; the next SubmitAnswer clears it.
func (s *Session) Resume() error {
	if s.Status != StatusPaused {
		return fmt.Errorf("%w: cannot resume in status %q", domain.ErrInvalidTransition, s.Status)
	}
	s.Status = StatusInProgress
	s.UpdatedAt = time.Now()
	return nil
}

// Finalize records the scoring provider's verdict. It is allowed exactly once,
// only after the question sequence is exhausted, and never overwrites.
func (s *Session) Finalize(finalScore int, aiSummary string) error {
	if s.Status != StatusCompleted {
		return fmt.Errorf("%w: cannot finalize in status %q", domain.ErrInvalidTransition, s.Status)
	}
	if s.FinalScore != nil || s.AISummary != "" {
		return fmt.Errorf("%w: session already finalized", domain.ErrInvalidTransition)
	}
	s.FinalScore = &finalScore
	s.AISummary = aiSummary
	s.UpdatedAt = time.Now()
	return nil
}

// SetAnswerScore sets the per-question score on a recorded answer. This is the
// only Answer field mutated after creation.
func (s *Session) SetAnswerScore(questionID string, score int) error {
	for i := range s.Answers {
		if s.Answers[i].QuestionID == questionID {
			s.Answers[i].Score = &score
			s.UpdatedAt = time.Now()
			return nil
		}
	}
	return fmt.Errorf("%w: question %q", domain.ErrAnswerNotFound, questionID)
}

// Resumable reports whether the session was left mid-flight and can be
// offered for resumption after a restart.
func (s *Session) Resumable() bool {
	switch s.Status {
	case StatusCollectingInfo, StatusInProgress, StatusPaused:
		return true
	}
	return false
}

// Clone returns a deep copy, safe to hand to persistence or transport while
// the original keeps mutating.
func (s *Session) Clone() *Session {
	c := *s
	c.Questions = append([]domain.Question(nil), s.Questions...)
	c.Answers = make([]domain.Answer, len(s.Answers))
	for i, a := range s.Answers {
		c.Answers[i] = a
		if a.Score != nil {
			score := *a.Score
			c.Answers[i].Score = &score
		}
	}
	if s.StartTime != nil {
		t := *s.StartTime
		c.StartTime = &t
	}
	if s.EndTime != nil {
		t := *s.EndTime
		c.EndTime = &t
	}
	if s.FinalScore != nil {
		v := *s.FinalScore
		c.FinalScore = &v
	}
	if s.TimeRemaining != nil {
		v := *s.TimeRemaining
		c.TimeRemaining = &v
	}
	return &c
}
