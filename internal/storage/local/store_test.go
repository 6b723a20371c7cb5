package local

import (
	"os"
	"path/filepath"
	"testing"

	"interviewd/internal/domain"
	"interviewd/internal/interview"
)

func sampleSnapshot(t *testing.T) *interview.Snapshot {
	t.Helper()
	sess, err := interview.NewSession(domain.CandidateProfile{Name: "Jane", Email: "jane@corp.com"})
	if err != nil {
		t.Fatal(err)
	}
	return &interview.Snapshot{
		Sessions:         []*interview.Session{sess},
		CurrentSessionID: sess.ID,
	}
}

func TestStore_SaveLoad(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}

	want := sampleSnapshot(t)
	if err := store.Save(want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.CurrentSessionID != want.CurrentSessionID {
		t.Errorf("CurrentSessionID = %q; want %q", got.CurrentSessionID, want.CurrentSessionID)
	}
	if len(got.Sessions) != 1 || got.Sessions[0].ID != want.Sessions[0].ID {
		t.Fatalf("Sessions = %+v", got.Sessions)
	}
	if got.Sessions[0].Candidate.Email != "jane@corp.com" {
		t.Errorf("Candidate.Email = %q", got.Sessions[0].Candidate.Email)
	}
}

func TestStore_Load_FirstRun(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v; a missing snapshot is not an error", err)
	}
	if len(got.Sessions) != 0 || got.CurrentSessionID != "" {
		t.Errorf("Load() = %+v; want empty snapshot", got)
	}
}

func TestStore_Load_Corrupt(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, snapshotFile), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := store.Load(); err == nil {
		t.Error("Load() should fail on a corrupt snapshot")
	}
}

func TestStore_Save_Overwrites(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if err := store.Save(sampleSnapshot(t)); err != nil {
		t.Fatal(err)
	}
	if err := store.Save(&interview.Snapshot{}); err != nil {
		t.Fatal(err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Sessions) != 0 {
		t.Errorf("Load() after overwrite returned %d sessions; want 0", len(got.Sessions))
	}
}

func TestNewStore_CreatesDirectory(t *testing.T) {
	base := filepath.Join(t.TempDir(), "nested", "data")
	if _, err := NewStore(base); err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	if _, err := os.Stat(base); err != nil {
		t.Errorf("store directory missing: %v", err)
	}
}
