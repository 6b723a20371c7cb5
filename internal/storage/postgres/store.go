package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/sqlc-dev/pqtype"

	"interviewd/internal/interview"
)

const currentSessionKey = "current_session_id"

// DB wraps a pgx stdlib connection to PostgreSQL.
type DB struct {
	*sql.DB
}

// Open connects to PostgreSQL via the pgx stdlib driver.
func Open(ctx context.Context, databaseURL string) (*DB, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &DB{DB: db}, nil
}

// Migrate creates the schema. Statements are idempotent; shared databases
// may run this from several replicas.
func (db *DB) Migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id                     TEXT PRIMARY KEY,
			status                 TEXT NOT NULL,
			candidate              JSONB NOT NULL,
			questions              JSONB NOT NULL DEFAULT '[]',
			answers                JSONB NOT NULL DEFAULT '[]',
			current_question_index INTEGER NOT NULL DEFAULT 0,
			start_time             TIMESTAMPTZ,
			end_time               TIMESTAMPTZ,
			final_score            INTEGER,
			ai_summary             TEXT NOT NULL DEFAULT '',
			time_remaining         INTEGER,
			created_at             TIMESTAMPTZ NOT NULL,
			updated_at             TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_status ON sessions(status)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_created_at ON sessions(created_at)`,
		`CREATE TABLE IF NOT EXISTS app_state (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate postgres: %w", err)
		}
	}
	return nil
}

// SnapshotStore persists session snapshots in PostgreSQL. Layout matches
// the SQLite store: one row per session, the current pointer in app_state.
type SnapshotStore struct {
	db *DB
}

var _ interview.SnapshotStore = (*SnapshotStore)(nil)

// NewSnapshotStore creates a PostgreSQL-backed snapshot store.
func NewSnapshotStore(db *DB) *SnapshotStore {
	return &SnapshotStore{db: db}
}

// Save replaces the stored snapshot in one transaction.
func (s *SnapshotStore) Save(snapshot *interview.Snapshot) error {
	ctx := context.Background()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM sessions"); err != nil {
		return fmt.Errorf("clear sessions: %w", err)
	}

	for _, sess := range snapshot.Sessions {
		candidate, err := rawMessage(sess.Candidate)
		if err != nil {
			return fmt.Errorf("marshal candidate: %w", err)
		}
		questions, err := rawMessage(sess.Questions)
		if err != nil {
			return fmt.Errorf("marshal questions: %w", err)
		}
		answers, err := rawMessage(sess.Answers)
		if err != nil {
			return fmt.Errorf("marshal answers: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO sessions (id, status, candidate, questions, answers,
				current_question_index, start_time, end_time,
				final_score, ai_summary, time_remaining,
				created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
			sess.ID, string(sess.Status), candidate, questions, answers,
			sess.CurrentQuestionIndex, nullTime(sess.StartTime), nullTime(sess.EndTime),
			nullInt(sess.FinalScore), sess.AISummary, nullInt(sess.TimeRemaining),
			sess.CreatedAt, sess.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert session %s: %w", sess.ID, err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO app_state (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`,
		currentSessionKey, snapshot.CurrentSessionID)
	if err != nil {
		return fmt.Errorf("save current session pointer: %w", err)
	}

	return tx.Commit()
}

// Load reads the full snapshot. An empty database is an empty snapshot.
func (s *SnapshotStore) Load() (*interview.Snapshot, error) {
	ctx := context.Background()

	rows, err := s.db.QueryContext(ctx, `
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

	err = s.db.QueryRowContext(ctx, "SELECT value FROM app_state WHERE key = $1", currentSessionKey).
		Scan(&snapshot.CurrentSessionID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load current session pointer: %w", err)
	}

	return snapshot, nil
}

func scanSession(rows *sql.Rows) (*interview.Session, error) {
	var (
		sess                  interview.Session
		status                string
		candidate             pqtype.NullRawMessage
		questions             pqtype.NullRawMessage
		answers               pqtype.NullRawMessage
		startTime, endTime    sql.NullTime
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
	if candidate.Valid {
		if err := json.Unmarshal(candidate.RawMessage, &sess.Candidate); err != nil {
			return nil, fmt.Errorf("unmarshal candidate: %w", err)
		}
	}
	if questions.Valid {
		if err := json.Unmarshal(questions.RawMessage, &sess.Questions); err != nil {
			return nil, fmt.Errorf("unmarshal questions: %w", err)
		}
	}
	if answers.Valid {
		if err := json.Unmarshal(answers.RawMessage, &sess.Answers); err != nil {
			return nil, fmt.Errorf("unmarshal answers: %w", err)
		}
	}

	if startTime.Valid {
		sess.StartTime = &startTime.Time
	}
	if endTime.Valid {
		sess.EndTime = &endTime.Time
	}
	if finalScore.Valid {
		v := int(finalScore.Int64)
		sess.FinalScore = &v
	}
	if remaining.Valid {
		v := int(remaining.Int64)
		sess.TimeRemaining = &v
	}

	return &sess, nil
}

func rawMessage(v any) (pqtype.NullRawMessage, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return pqtype.NullRawMessage{}, err
	}
	return pqtype.NullRawMessage{RawMessage: data, Valid: true}, nil
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
