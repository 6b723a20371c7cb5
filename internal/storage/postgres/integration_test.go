//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"interviewd/internal/domain"
	"interviewd/internal/interview"
	"interviewd/internal/storage/postgres"
)

// setupPostgres creates a PostgreSQL container for testing
func setupPostgres(t *testing.T) (string, func()) {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("interviewd"),
		tcpostgres.WithUsername("interviewd"),
		tcpostgres.WithPassword("interviewd"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(time.Minute)),
	)
	if err != nil {
		t.Fatalf("failed to start PostgreSQL container: %v", err)
	}

	url, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		container.Terminate(ctx)
		t.Fatalf("failed to get connection string: %v", err)
	}

	cleanup := func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return url, cleanup
}

func TestIntegration_SnapshotStore_RoundTrip(t *testing.T) {
	url, cleanup := setupPostgres(t)
	defer cleanup()

	ctx := context.Background()
	db, err := postgres.Open(ctx, url)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	store := interview.NewStore()
	if _, err := store.CreateSession(domain.CandidateProfile{Name: "Jane", Email: "jane@corp.com"}); err != nil {
		t.Fatal(err)
	}
	if _, err := store.StartInterview([]domain.Question{
		{ID: "q1", Text: "one", Difficulty: domain.DifficultyEasy, TimeLimit: 20},
		{ID: "q2", Text: "two", Difficulty: domain.DifficultyHard, TimeLimit: 120},
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := store.SubmitAnswer(domain.Answer{QuestionID: "q1", Text: "because", TimeSpent: 8}); err != nil {
		t.Fatal(err)
	}
	if _, err := store.PauseInterview(42); err != nil {
		t.Fatal(err)
	}

	snapshots := postgres.NewSnapshotStore(db)
	want := store.Snapshot()

	if err := snapshots.Save(want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := snapshots.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.CurrentSessionID != want.CurrentSessionID {
		t.Errorf("CurrentSessionID = %q; want %q", got.CurrentSessionID, want.CurrentSessionID)
	}
	if len(got.Sessions) != 1 {
		t.Fatalf("got %d sessions; want 1", len(got.Sessions))
	}

	sess := got.Sessions[0]
	if sess.Status != interview.StatusPaused {
		t.Errorf("Status = %q; want %q", sess.Status, interview.StatusPaused)
	}
	if sess.Candidate.Email != "jane@corp.com" {
		t.Errorf("Candidate.Email = %q", sess.Candidate.Email)
	}
	if len(sess.Answers) != 1 || sess.Answers[0].TimeSpent != 8 {
		t.Errorf("Answers = %+v", sess.Answers)
	}
	if sess.TimeRemaining == nil || *sess.TimeRemaining != 42 {
		t.Errorf("TimeRemaining = %v; want 42", sess.TimeRemaining)
	}
}

func TestIntegration_SnapshotStore_Empty(t *testing.T) {
	url, cleanup := setupPostgres(t)
	defer cleanup()

	ctx := context.Background()
	db, err := postgres.Open(ctx, url)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	got, err := postgres.NewSnapshotStore(db).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got.Sessions) != 0 || got.CurrentSessionID != "" {
		t.Errorf("Load() = %+v; want empty snapshot", got)
	}
}
