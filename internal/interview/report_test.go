package interview

import (
	"testing"
	"time"

	"interviewd/internal/domain"
)

func reportSession(name, email string, createdAt time.Time, status Status, score *int) *Session {
	return &Session{
		ID:         name,
		Candidate:  domain.CandidateProfile{ID: name, Name: name, Email: email},
		Status:     status,
		FinalScore: score,
		CreatedAt:  createdAt,
	}
}

func intp(v int) *int { return &v }

func reportFixture() []*Session {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return []*Session{
		reportSession("Alice", "alice@corp.com", base.Add(2*time.Hour), StatusCompleted, intp(92)),
		reportSession("Bob", "bob@corp.com", base, StatusCompleted, intp(58)),
		reportSession("Carol", "carol@other.org", base.Add(time.Hour), StatusInProgress, nil),
		reportSession("Dave", "dave@corp.com", base.Add(3*time.Hour), StatusCompleted, intp(74)),
	}
}

func TestFilterSessions_Search(t *testing.T) {
	sessions := reportFixture()

	tests := []struct {
		name   string
		search string
		want   []string
	}{
		{name: "empty matches all", search: "", want: []string{"Alice", "Carol", "Dave", "Bob"}},
		{name: "by name case-insensitive", search: "aLiCe", want: []string{"Alice"}},
		{name: "by email domain", search: "other.org", want: []string{"Carol"}},
		{name: "no match", search: "zelda", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterSessions(sessions, tt.search, SortByScore)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d sessions; want %d", len(got), len(tt.want))
			}
			for i, sess := range got {
				if sess.Candidate.Name != tt.want[i] {
					t.Errorf("result[%d] = %q; want %q", i, sess.Candidate.Name, tt.want[i])
				}
			}
		})
	}
}

func TestFilterSessions_Sorting(t *testing.T) {
	sessions := reportFixture()

	tests := []struct {
		name   string
		sortBy SortKey
		want   []string
	}{
		// Unscored sessions sort after every scored one.
		{name: "score descending", sortBy: SortByScore, want: []string{"Alice", "Dave", "Bob", "Carol"}},
		{name: "name ascending", sortBy: SortByName, want: []string{"Alice", "Bob", "Carol", "Dave"}},
		{name: "date ascending", sortBy: SortByDate, want: []string{"Bob", "Carol", "Alice", "Dave"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterSessions(sessions, "", tt.sortBy)
			for i, sess := range got {
				if sess.Candidate.Name != tt.want[i] {
					t.Errorf("result[%d] = %q; want %q", i, sess.Candidate.Name, tt.want[i])
				}
			}
		})
	}
}

func TestBandFor(t *testing.T) {
	tests := []struct {
		score int
		want  ScoreBand
	}{
		{score: 100, want: BandStrong},
		{score: 80, want: BandStrong},
		{score: 79, want: BandFair},
		{score: 60, want: BandFair},
		{score: 59, want: BandWeak},
		{score: 0, want: BandWeak},
	}
	for _, tt := range tests {
		if got := BandFor(tt.score); got != tt.want {
			t.Errorf("BandFor(%d) = %q; want %q", tt.score, got, tt.want)
		}
	}
}

func TestComputeStats(t *testing.T) {
	stats := ComputeStats(reportFixture())

	if stats.Total != 4 {
		t.Errorf("Total = %d; want 4", stats.Total)
	}
	if stats.Completed != 3 {
		t.Errorf("Completed = %d; want 3", stats.Completed)
	}
	if stats.InProgress != 1 {
		t.Errorf("InProgress = %d; want 1", stats.InProgress)
	}
	want := float64(92+58+74) / 3
	if stats.AverageScore != want {
		t.Errorf("AverageScore = %v; want %v", stats.AverageScore, want)
	}
}

func TestComputeStats_Empty(t *testing.T) {
	stats := ComputeStats(nil)
	if stats != (Stats{}) {
		t.Errorf("ComputeStats(nil) = %+v; want zero stats", stats)
	}
}
