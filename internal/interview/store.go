package interview

import (
	"fmt"
	"sort"
	"sync"

	"interviewd/internal/domain"
)

// Tab identifies which surface of the application is active. It is runtime
// state only and is excluded from persisted snapshots.
type Tab string

const (
	TabInterviewee Tab = "interviewee"
	TabInterviewer Tab = "interviewer"
)

// Store is the application state: every session keyed by id, the pointer to
// the single session accepting question/answer operations, and the active
// surface flag. It lives for the process lifetime and is the only place
// session state is mutated. Each operation is a single atomic
// read-modify-write under the store lock.
//
// Accessors return deep copies so callers can serialize or render them while
// the store keeps moving.
type Store struct {
	mu        sync.RWMutex
	sessions  map[string]*Session
	currentID string
	activeTab Tab
}

// NewStore creates an empty application state.
func NewStore() *Store {
	return &Store{
		sessions:  make(map[string]*Session),
		activeTab: TabInterviewee,
	}
}

// current returns the live current session. Callers must hold the lock.
func (st *Store) current() (*Session, error) {
	if st.currentID == "" {
		return nil, fmt.Errorf("%w: no current session", domain.ErrSessionNotFound)
	}
	sess, ok := st.sessions[st.currentID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, st.currentID)
	}
	return sess, nil
}

// CreateSession registers a new session for the candidate and makes it the
// current session.
func (st *Store) CreateSession(profile domain.CandidateProfile) (*Session, error) {
	sess, err := NewSession(profile)
	if err != nil {
		return nil, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[sess.ID] = sess
	st.currentID = sess.ID
	return sess.Clone(), nil
}

// UpdateCandidateProfile merges partial fields into the current session's
// candidate profile.
func (st *Store) UpdateCandidateProfile(fields domain.ProfileFields) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	sess, err := st.current()
	if err != nil {
		return nil, err
	}
	sess.UpdateProfile(fields)
	return sess.Clone(), nil
}

// StartInterview fixes the question sequence on the current session and moves
// it to in_progress.
func (st *Store) StartInterview(questions []domain.Question) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	sess, err := st.current()
	if err != nil {
		return nil, err
	}
	if err := sess.Start(questions); err != nil {
		return nil, err
	}
	return sess.Clone(), nil
}

// SubmitAnswer records the answer for the current question on the current
// session.
func (st *Store) SubmitAnswer(answer domain.Answer) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	sess, err := st.current()
	if err != nil {
		return nil, err
	}
	if err := sess.SubmitAnswer(answer); err != nil {
		return nil, err
	}
	return sess.Clone(), nil
}

// PauseInterview suspends the current session, recording remaining seconds.
func (st *Store) PauseInterview(remainingSeconds int) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	sess, err := st.current()
	if err != nil {
		return nil, err
	}
	if err := sess.Pause(remainingSeconds); err != nil {
		return nil, err
	}
	return sess.Clone(), nil
}

// ResumeInterview reactivates the paused current session.
func (st *Store) ResumeInterview() (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	sess, err := st.current()
	if err != nil {
		return nil, err
	}
	if err := sess.Resume(); err != nil {
		return nil, err
	}
	return sess.Clone(), nil
}

// CompleteInterview records the final score and summary on the current
// session, exactly once.
func (st *Store) CompleteInterview(finalScore int, aiSummary string) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	sess, err := st.current()
	if err != nil {
		return nil, err
	}
	if err := sess.Finalize(finalScore, aiSummary); err != nil {
		return nil, err
	}
	return sess.Clone(), nil
}

// SetAnswerScore patches the per-question score on the current session.
func (st *Store) SetAnswerScore(questionID string, score int) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	sess, err := st.current()
	if err != nil {
		return nil, err
	}
	if err := sess.SetAnswerScore(questionID, score); err != nil {
		return nil, err
	}
	return sess.Clone(), nil
}

// SetCurrentSession switches the active-session pointer. An empty id clears
// it, forcing the start-new path; no session is mutated or removed.
func (st *Store) SetCurrentSession(id string) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if id == "" {
		st.currentID = ""
		return nil
	}
	if _, ok := st.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	st.currentID = id
	return nil
}

// Current returns a copy of the current session.
func (st *Store) Current() (*Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	sess, err := st.current()
	if err != nil {
		return nil, err
	}
	return sess.Clone(), nil
}

// CurrentID returns the current session id, empty when none is selected.
func (st *Store) CurrentID() string {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.currentID
}

// Get returns a copy of the session with the given id.
func (st *Store) Get(id string) (*Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	sess, ok := st.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	return sess.Clone(), nil
}

// Sessions returns copies of all sessions ordered by creation time.
func (st *Store) Sessions() []*Session {
	st.mu.RLock()
	defer st.mu.RUnlock()

	out := make([]*Session, 0, len(st.sessions))
	for _, sess := range st.sessions {
		out = append(out, sess.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// ResumableSessions returns copies of every session left mid-flight, the
// candidates a restart should offer for resumption.
func (st *Store) ResumableSessions() []*Session {
	var out []*Session
	for _, sess := range st.Sessions() {
		if sess.Resumable() {
			out = append(out, sess)
		}
	}
	return out
}

// Delete removes a session. Deleting the current session clears the pointer.
// This is an explicit action, never implied by switching sessions.
func (st *Store) Delete(id string) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if _, ok := st.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	delete(st.sessions, id)
	if st.currentID == id {
		st.currentID = ""
	}
	return nil
}

// SetActiveTab flips the surface flag.
func (st *Store) SetActiveTab(tab Tab) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.activeTab = tab
}

// ActiveTab returns the surface flag.
func (st *Store) ActiveTab() Tab {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.activeTab
}
