package interview

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"interviewd/internal/domain"
	"interviewd/internal/events"
	"interviewd/internal/timer"
)

// QuestionProvider supplies the ordered question set for a session at
// interview start.
type QuestionProvider interface {
	Generate(ctx context.Context) ([]domain.Question, error)
}

// Scorer turns a finished transcript into a final score and a narrative
// summary. It is consulted exactly once per session, after the last answer.
type Scorer interface {
	Score(ctx context.Context, sess *Session) (int, error)
	Summarize(ctx context.Context, candidateName string, score int) (string, error)
}

// Service is the timed question-flow controller. It owns the application
// state store, the single active countdown, draft answer text, snapshot
// persistence and event publishing.
//
// Every operation, including the countdown expiry callback, runs to
// completion under one mutex: a timer expiry is a message on the same
// serialized queue as user actions, never a concurrent mutation. When a
// manual submit and an expiry race for the same question, whichever acquires
// the lock first wins and the loser is dropped or rejected.
type Service struct {
	mu        sync.Mutex
	store     *Store
	snapshots SnapshotStore
	questions QuestionProvider
	scorer    Scorer
	publisher events.Publisher
	tick      time.Duration

	countdown *timer.Countdown
	draft     string
}

// ServiceOption configures optional service collaborators.
type ServiceOption func(*Service)

// WithPublisher wires a lifecycle event publisher.
func WithPublisher(p events.Publisher) ServiceOption {
	return func(s *Service) { s.publisher = p }
}

// WithTickInterval overrides the countdown tick interval. Intended for tests.
func WithTickInterval(d time.Duration) ServiceOption {
	return func(s *Service) { s.tick = d }
}

// NewService creates the flow controller.
func NewService(store *Store, snapshots SnapshotStore, questions QuestionProvider, scorer Scorer, opts ...ServiceOption) *Service {
	s := &Service{
		store:     store,
		snapshots: snapshots,
		questions: questions,
		scorer:    scorer,
		publisher: events.NoopPublisher{},
		tick:      timer.DefaultInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadSnapshot restores persisted state. Called once at process start, before
// any operation is accepted.
func (s *Service) LoadSnapshot() error {
	snapshot, err := s.snapshots.Load()
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	s.store.Restore(snapshot)

	if resumable := s.store.ResumableSessions(); len(resumable) > 0 {
		slog.Info("found resumable sessions", "count", len(resumable))
	}
	return nil
}

// Close stops the active countdown and flushes a final snapshot.
func (s *Service) Close() error {
	s.mu.Lock()
	s.stopCountdown()
	s.mu.Unlock()

	if err := s.snapshots.Save(s.store.Snapshot()); err != nil {
		return fmt.Errorf("final snapshot: %w", err)
	}
	return s.publisher.Close()
}

// CreateSession registers a new candidate session and selects it.
func (s *Service) CreateSession(ctx context.Context, profile domain.CandidateProfile) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopCountdown()
	s.draft = ""

	sess, err := s.store.CreateSession(profile)
	if err != nil {
		return nil, err
	}

	s.persist()
	s.publish(events.New(events.TypeSessionCreated, sess.ID, string(sess.Status)))
	return sess, nil
}

// UpdateProfile merges candidate fields into the current session.
func (s *Service) UpdateProfile(ctx context.Context, fields domain.ProfileFields) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.store.UpdateCandidateProfile(fields)
	if err != nil {
		return nil, err
	}

	s.persist()
	s.publish(events.New(events.TypeProfileUpdated, sess.ID, string(sess.Status)))
	return sess, nil
}

// StartInterview fetches the question set from the provider, moves the
// current session to in_progress and arms the countdown for the first
// question.
func (s *Service) StartInterview(ctx context.Context) (*Session, error) {
	questions, err := s.questions.Generate(ctx)
	if err != nil {
		return nil, fmt.Errorf("generate questions: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.store.StartInterview(questions)
	if err != nil {
		return nil, err
	}

	s.draft = ""
	s.armCountdown(sess, 0)
	s.persist()
	s.publish(events.New(events.TypeInterviewStarted, sess.ID, string(sess.Status)))
	return sess, nil
}

// UpdateDraft stores the candidate's in-progress answer text. The countdown's
// expiry submits whatever draft is present at that moment.
func (s *Service) UpdateDraft(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = text
}

// SubmitAnswer records the candidate's answer for the given question and
// advances the interview: the countdown restarts for the next question, or,
// after the final answer, the scorer is consulted and the verdict recorded.
func (s *Service) SubmitAnswer(ctx context.Context, questionID, text string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submit(ctx, questionID, text)
}

// submit is the single submission path shared by manual submits and timer
// expiry. Callers hold s.mu.
func (s *Service) submit(ctx context.Context, questionID, text string) (*Session, error) {
	answer := domain.Answer{
		QuestionID:  questionID,
		Text:        text,
		SubmittedAt: time.Now(),
		TimeSpent:   s.timeSpent(),
	}

	sess, err := s.store.SubmitAnswer(answer)
	if err != nil {
		return nil, err
	}

	s.stopCountdown()
	s.draft = ""

	event := events.New(events.TypeAnswerSubmitted, sess.ID, string(sess.Status))
	event.QuestionID = questionID
	s.publish(event)

	if sess.Status == StatusCompleted {
		sess = s.finalize(ctx, sess)
	} else {
		s.armCountdown(sess, 0)
	}

	s.persist()
	return sess, nil
}

// finalize consults the scorer and records the verdict. A scoring failure is
// logged and leaves the session completed but unscored; Finalize can be
// called again by the surrounding application. Callers hold s.mu.
func (s *Service) finalize(ctx context.Context, sess *Session) *Session {
	score, err := s.scorer.Score(ctx, sess)
	if err != nil {
		slog.Error("scoring failed, leaving session unscored", "session_id", sess.ID, "error", err)
		return sess
	}

	summary, err := s.scorer.Summarize(ctx, sess.Candidate.Name, score)
	if err != nil {
		slog.Error("summary failed, leaving session unscored", "session_id", sess.ID, "error", err)
		return sess
	}

	scored, err := s.store.CompleteInterview(score, summary)
	if err != nil {
		slog.Error("recording verdict failed", "session_id", sess.ID, "error", err)
		return sess
	}

	event := events.New(events.TypeInterviewCompleted, scored.ID, string(scored.Status))
	event.FinalScore = scored.FinalScore
	s.publish(event)
	return scored
}

// Finalize re-runs scoring for a completed session left unscored, for example
// after a scoring provider outage.
func (s *Service) Finalize(ctx context.Context) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.store.Current()
	if err != nil {
		return nil, err
	}
	if sess.Status != StatusCompleted || sess.FinalScore != nil {
		return nil, fmt.Errorf("%w: nothing to finalize", domain.ErrInvalidTransition)
	}

	scored := s.finalize(ctx, sess)
	if scored.FinalScore == nil {
		return scored, fmt.Errorf("scoring provider unavailable")
	}
	s.persist()
	return scored, nil
}

// Pause suspends the in-progress interview, capturing the countdown's
// remaining seconds before stopping it.
func (s *Service) Pause(ctx context.Context) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	remaining := s.remaining()
	sess, err := s.store.PauseInterview(remaining)
	if err != nil {
		return nil, err
	}
	s.stopCountdown()

	s.persist()
	s.publish(events.New(events.TypeInterviewPaused, sess.ID, string(sess.Status)))
	return sess, nil
}

// Resume reactivates the paused interview, re-arming the countdown from the
// stored remaining time.
func (s *Service) Resume(ctx context.Context) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.store.ResumeInterview()
	if err != nil {
		return nil, err
	}

	seed := 0
	if sess.TimeRemaining != nil {
		seed = *sess.TimeRemaining
	}
	s.armCountdown(sess, seed)

	s.persist()
	s.publish(events.New(events.TypeInterviewResumed, sess.ID, string(sess.Status)))
	return sess, nil
}

// ResumeSession selects a previously abandoned session as current. For a
// session left in_progress the countdown is re-armed from its stored
// remaining time; a paused session stays paused until Resume.
func (s *Service) ResumeSession(ctx context.Context, id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.SetCurrentSession(id); err != nil {
		return nil, err
	}
	s.stopCountdown()
	s.draft = ""

	sess, err := s.store.Current()
	if err != nil {
		return nil, err
	}
	if sess.Status == StatusInProgress {
		seed := 0
		if sess.TimeRemaining != nil {
			seed = *sess.TimeRemaining
		}
		s.armCountdown(sess, seed)
	}
	s.persist()
	return sess, nil
}

// StartFresh clears the current-session pointer without touching any stored
// session. Discarding a session is a separate, explicit Discard call.
func (s *Service) StartFresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopCountdown()
	s.draft = ""
	if err := s.store.SetCurrentSession(""); err != nil {
		return err
	}
	s.persist()
	return nil
}

// Discard removes a stored session permanently.
func (s *Service) Discard(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.store.CurrentID() == id
	if err := s.store.Delete(id); err != nil {
		return err
	}
	if current {
		s.stopCountdown()
		s.draft = ""
	}

	s.persist()
	s.publish(events.New(events.TypeSessionDiscarded, id, ""))
	return nil
}

// SetAnswerScore patches a per-question score on the current session.
func (s *Service) SetAnswerScore(ctx context.Context, questionID string, score int) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.store.SetAnswerScore(questionID, score)
	if err != nil {
		return nil, err
	}
	s.persist()
	return sess, nil
}

// Current returns the session accepting operations, if any.
func (s *Service) Current() (*Session, error) {
	return s.store.Current()
}

// CurrentID returns the current session id, empty when none is selected.
func (s *Service) CurrentID() string {
	return s.store.CurrentID()
}

// Get returns a session by id.
func (s *Service) Get(id string) (*Session, error) {
	return s.store.Get(id)
}

// Sessions returns all sessions ordered by creation time.
func (s *Service) Sessions() []*Session {
	return s.store.Sessions()
}

// Resumable returns the sessions a restart should offer for resumption.
func (s *Service) Resumable() []*Session {
	return s.store.ResumableSessions()
}

// SetActiveTab flips the surface flag.
func (s *Service) SetActiveTab(tab Tab) {
	s.store.SetActiveTab(tab)
}

// ActiveTab returns the surface flag.
func (s *Service) ActiveTab() Tab {
	return s.store.ActiveTab()
}

// TimerState describes the live countdown for observability. All fields are
// derived; none feed back into control flow.
type TimerState struct {
	Active    bool    `json:"active"`
	Remaining int     `json:"remaining"`
	Duration  int     `json:"duration"`
	Percent   float64 `json:"percent"`
	Low       bool    `json:"low"`
	Critical  bool    `json:"critical"`
}

// Timer reports the state of the active countdown.
func (s *Service) Timer() TimerState {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.countdown == nil || s.countdown.Expired() {
		return TimerState{}
	}
	return TimerState{
		Active:    true,
		Remaining: s.countdown.Remaining(),
		Duration:  s.countdown.Duration(),
		Percent:   s.countdown.Percent(),
		Low:       s.countdown.Low(),
		Critical:  s.countdown.Critical(),
	}
}

// armCountdown starts the countdown for the session's current question. Only
// one countdown exists at a time: an already running one is stopped first,
// deterministically. Callers hold s.mu.
func (s *Service) armCountdown(sess *Session, initialRemaining int) {
	s.stopCountdown()

	question, ok := sess.CurrentQuestion()
	if !ok {
		return
	}

	sessionID := sess.ID
	questionID := question.ID
	opts := []timer.Option{timer.WithInterval(s.tick)}
	if initialRemaining > 0 {
		opts = append(opts, timer.WithInitialRemaining(initialRemaining))
	}

	countdown, err := timer.Start(question.TimeLimit, func() {
		s.expire(sessionID, questionID)
	}, opts...)
	if err != nil {
		slog.Error("failed to start countdown", "session_id", sessionID, "question_id", questionID, "error", err)
		return
	}
	s.countdown = countdown
}

// stopCountdown cancels the active countdown, if any. Callers hold s.mu.
func (s *Service) stopCountdown() {
	if s.countdown != nil {
		s.countdown.Stop()
		s.countdown = nil
	}
}

// expire handles countdown expiry by auto-submitting the current draft. It
// re-enters through the service mutex like any other operation; if a manual
// submission already advanced the session, the expiry is stale and dropped.
func (s *Service) expire(sessionID, questionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.store.Current()
	if err != nil || sess.ID != sessionID || sess.Status != StatusInProgress {
		slog.Debug("dropping stale countdown expiry", "session_id", sessionID, "question_id", questionID)
		return
	}
	if current, ok := sess.CurrentQuestion(); !ok || current.ID != questionID {
		slog.Debug("dropping stale countdown expiry", "session_id", sessionID, "question_id", questionID)
		return
	}

	slog.Info("question time elapsed, auto-submitting", "session_id", sessionID, "question_id", questionID)
	if _, err := s.submit(context.Background(), questionID, s.draft); err != nil {
		slog.Warn("auto-submission rejected", "session_id", sessionID, "question_id", questionID, "error", err)
	}
}

// timeSpent derives seconds spent on the current question from the countdown.
// Callers hold s.mu.
func (s *Service) timeSpent() int {
	if s.countdown == nil {
		return 0
	}
	return s.countdown.Duration() - s.countdown.Remaining()
}

// remaining returns the countdown's remaining seconds, or zero when no
// countdown is active. Callers hold s.mu.
func (s *Service) remaining() int {
	if s.countdown == nil {
		return 0
	}
	return s.countdown.Remaining()
}

// persist snapshots the store and writes it out without blocking the
// operation that triggered it. A failed write is reported, never propagated:
// the in-progress interview keeps its in-memory state.
func (s *Service) persist() {
	snapshot := s.store.Snapshot()
	go func() {
		if err := s.snapshots.Save(snapshot); err != nil {
			slog.Error("snapshot write failed", "sessions", len(snapshot.Sessions), "error", err)
		}
	}()
}

// publish delivers a lifecycle event without blocking the operation.
func (s *Service) publish(event *events.Event) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.publisher.Publish(ctx, event); err != nil {
			slog.Warn("event publish failed", "type", event.Type, "session_id", event.SessionID, "error", err)
		}
	}()
}
