package questions

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"interviewd/internal/domain"
)

func TestDefaultBank(t *testing.T) {
	bank := DefaultBank()

	for _, difficulty := range []domain.Difficulty{domain.DifficultyEasy, domain.DifficultyMedium, domain.DifficultyHard} {
		if bank.Size(difficulty) < 2 {
			t.Errorf("Size(%s) = %d; the plan needs at least 2", difficulty, bank.Size(difficulty))
		}
	}
}

func TestLoadBank(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bank.yaml")
	content := `name: custom
questions:
  - text: Easy one
    difficulty: easy
  - text: Easy two
    difficulty: easy
  - text: Medium one
    difficulty: medium
  - text: Medium two
    difficulty: medium
  - text: Hard one
    difficulty: hard
  - text: Hard two
    difficulty: hard
    time_limit: 300
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	bank, err := LoadBank(path)
	if err != nil {
		t.Fatalf("LoadBank() error = %v", err)
	}
	if bank.Name != "custom" {
		t.Errorf("Name = %q; want custom", bank.Name)
	}
	if bank.Size(domain.DifficultyHard) != 2 {
		t.Errorf("Size(hard) = %d; want 2", bank.Size(domain.DifficultyHard))
	}

	// Explicit time limits survive; missing ones default by difficulty.
	if got := bank.pool[domain.DifficultyHard][1].TimeLimit; got != 300 {
		t.Errorf("explicit TimeLimit = %d; want 300", got)
	}
	if got := bank.pool[domain.DifficultyEasy][0].TimeLimit; got != 20 {
		t.Errorf("defaulted TimeLimit = %d; want 20", got)
	}
}

func TestLoadBank_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "bad yaml", content: "questions: ["},
		{name: "empty text", content: "questions:\n  - text: \"\"\n    difficulty: easy\n"},
		{name: "unknown difficulty", content: "questions:\n  - text: hm\n    difficulty: brutal\n"},
		{name: "missing difficulty tier", content: "questions:\n  - text: only easy\n    difficulty: easy\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bank.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadBank(path); err == nil {
				t.Error("LoadBank() should reject the bank")
			}
		})
	}
}

func TestLoadBank_MissingFile(t *testing.T) {
	if _, err := LoadBank(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("LoadBank() should fail for a missing file")
	}
}

func TestBankProvider_Generate(t *testing.T) {
	provider := NewBankProvider(DefaultBank(), WithSeed(1))

	got, err := provider.Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	plan := domain.InterviewPlan()
	if len(got) != len(plan) {
		t.Fatalf("Generate() returned %d questions; want %d", len(got), len(plan))
	}

	seen := make(map[string]bool)
	for i, q := range got {
		if want := fmt.Sprintf("q%d", i+1); q.ID != want {
			t.Errorf("question %d ID = %q; want %q", i, q.ID, want)
		}
		if q.Difficulty != plan[i] {
			t.Errorf("question %d difficulty = %q; want %q", i, q.Difficulty, plan[i])
		}
		if q.TimeLimit != plan[i].TimeLimitSeconds() {
			t.Errorf("question %d time limit = %d; want %d", i, q.TimeLimit, plan[i].TimeLimitSeconds())
		}
		if seen[q.Text] {
			t.Errorf("question %q repeated within one interview", q.Text)
		}
		seen[q.Text] = true
	}
}

func TestBankProvider_Seeded(t *testing.T) {
	a, _ := NewBankProvider(DefaultBank(), WithSeed(42)).Generate(context.Background())
	b, _ := NewBankProvider(DefaultBank(), WithSeed(42)).Generate(context.Background())

	for i := range a {
		if a[i].Text != b[i].Text {
			t.Fatalf("same seed produced different sets at %d: %q vs %q", i, a[i].Text, b[i].Text)
		}
	}
}

func TestBankProvider_ExhaustedTier(t *testing.T) {
	bank := &Bank{pool: map[domain.Difficulty][]domain.Question{
		domain.DifficultyMedium: {{Text: "m", Difficulty: domain.DifficultyMedium, TimeLimit: 60}},
		domain.DifficultyHard:   {{Text: "h", Difficulty: domain.DifficultyHard, TimeLimit: 120}},
	}}

	_, err := NewBankProvider(bank, WithSeed(1)).Generate(context.Background())
	if !errors.Is(err, domain.ErrEmptyQuestionSet) {
		t.Errorf("Generate() error = %v; want ErrEmptyQuestionSet", err)
	}
}
