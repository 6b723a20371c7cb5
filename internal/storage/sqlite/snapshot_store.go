package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"interviewd/internal/interview"
)

const currentSessionKey = "current_session_id"

// SnapshotStore persists session snapshots in SQLite, one row per session
// plus the current-session pointer in app_state. Each Save replaces the
// whole snapshot in a single transaction.
type SnapshotStore struct {
	db *DB
}

// NewSnapshotStore creates a SQLite-backed snapshot store.
func NewSnapshotStore(db *DB) *SnapshotStore {
	return &SnapshotStore{db: db}
}

// Save writes the snapshot, removing sessions that are no longer in it.
func (s *SnapshotStore) Save(snapshot *interview.Snapshot) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM sessions"); err != nil {
		return fmt.Errorf("clear sessions: %w", err)
	}

	for _, sess := range snapshot.Sessions {
		candidate, err := json.Marshal(sess.Candidate)
		if err != nil {
			return fmt.Errorf("marshal candidate: %w", err)
		}
		questions, err := json.Marshal(sess.Questions)
		if err != nil {
			return fmt.Errorf("marshal questions: %w", err)
		}
		answers, err := json.Marshal(sess.Answers)
		if err != nil {
			return fmt.Errorf("marshal answers: %w", err)
		}

		_, err = tx.Exec(`
			INSERT INTO sessions (id, status, candidate, questions, answers,
				current_question_index, start_time, end_time,
				final_score, ai_summary, time_remaining,
				created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			sess.ID, string(sess.Status), string(candidate), string(questions), string(answers),
			sess.CurrentQuestionIndex, nullTime(sess.StartTime), nullTime(sess.EndTime),
			nullInt(sess.FinalScore), sess.AISummary, nullInt(sess.TimeRemaining),
			sess.CreatedAt, sess.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert session %s: %w", sess.ID, err)
		}
	}

	_, err = tx.Exec(`
		INSERT INTO app_state (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value=excluded.value`,
		currentSessionKey, snapshot.CurrentSessionID)
	if err != nil {
		return fmt.Errorf("save current session pointer: %w", err)
	}

	return tx.Commit()
}

// Load reads the full snapshot. An empty database is an empty snapshot.
func (s *SnapshotStore) Load() (*interview.Snapshot, error) {
	rows, err := s.db.Query(`
		SELECT id, status, candidate, questions, answers,
			current_question_index, start_time, end_time,
			final_score, ai_summary, time_remaining,
			created_at, updated_at
		FROM sessions ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	snapshot := &interview.Snapshot{}
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		snapshot.Sessions = append(snapshot.Sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}

	err = s.db.QueryRow("SELECT value FROM app_state WHERE key = ?", currentSessionKey).
		Scan(&snapshot.CurrentSessionID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load current session pointer: %w", err)
	}

	return snapshot, nil
}

func scanSession(rows *sql.Rows) (*interview.Session, error) {
	var (
		sess                 interview.Session
		status               string
		candidate            string
		questions            string
		answers              string
		startTime, endTime   sql.NullTime
		finalScore, remaining sql.NullInt64
	)

	err := rows.Scan(&sess.ID, &status, &candidate, &questions, &answers,
		&sess.CurrentQuestionIndex, &startTime, &endTime,
		&finalScore, &sess.AISummary, &remaining,
		&sess.CreatedAt, &sess.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("scan session: %w", err)
	}

	sess.Status = interview.Status(status)
	if err := json.Unmarshal([]byte(candidate), &sess.Candidate); err != nil {
		return nil, fmt.Errorf("unmarshal candidate: %w", err)
	}
	if err := json.Unmarshal([]byte(questions), &sess.Questions); err != nil {
		return nil, fmt.Errorf("unmarshal questions: %w", err)
	}
	if err := json.Unmarshal([]byte(answers), &sess.Answers); err != nil {
		return nil, fmt.Errorf("unmarshal answers: %w", err)
	}

	sess.StartTime = timePtr(startTime)
	sess.EndTime = timePtr(endTime)
	sess.FinalScore = intPtr(finalScore)
	sess.TimeRemaining = intPtr(remaining)

	return &sess, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}
