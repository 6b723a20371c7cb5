package interview

import (
	"sort"
	"strings"
)

// SortKey orders the interviewer dashboard listing.
type SortKey string

const (
	SortByScore SortKey = "score"
	SortByName  SortKey = "name"
	SortByDate  SortKey = "date"
)

// ScoreBand buckets a final score for at-a-glance review.
type ScoreBand string

const (
	BandStrong ScoreBand = "strong" // 80 and above
	BandFair   ScoreBand = "fair"   // 60 to 79
	BandWeak   ScoreBand = "weak"   // below 60
)

// BandFor returns the review band for a final score.
func BandFor(score int) ScoreBand {
	switch {
	case score >= 80:
		return BandStrong
	case score >= 60:
		return BandFair
	default:
		return BandWeak
	}
}

// Stats aggregates the dashboard headline numbers.
type Stats struct {
	Total        int     `json:"total"`
	Completed    int     `json:"completed"`
	InProgress   int     `json:"in_progress"`
	AverageScore float64 `json:"average_score"`
}

// FilterSessions returns the sessions whose candidate name or email contains
// the search term, case-insensitively, ordered by the sort key. Score sorting
// is descending with unscored sessions last; name and date ascending.
func FilterSessions(sessions []*Session, search string, sortBy SortKey) []*Session {
	term := strings.ToLower(search)

	var out []*Session
	for _, sess := range sessions {
		if term == "" ||
			strings.Contains(strings.ToLower(sess.Candidate.Name), term) ||
			strings.Contains(strings.ToLower(sess.Candidate.Email), term) {
			out = append(out, sess)
		}
	}

	switch sortBy {
	case SortByName:
		sort.SliceStable(out, func(i, j int) bool {
			return strings.ToLower(out[i].Candidate.Name) < strings.ToLower(out[j].Candidate.Name)
		})
	case SortByDate:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		})
	default: // SortByScore
		sort.SliceStable(out, func(i, j int) bool {
			return scoreOf(out[i]) > scoreOf(out[j])
		})
	}
	return out
}

func scoreOf(sess *Session) int {
	if sess.FinalScore == nil {
		return -1
	}
	return *sess.FinalScore
}

// ComputeStats aggregates headline numbers over the given sessions. The
// average covers completed sessions that have a final score.
func ComputeStats(sessions []*Session) Stats {
	stats := Stats{Total: len(sessions)}

	var scored, sum int
	for _, sess := range sessions {
		switch sess.Status {
		case StatusCompleted:
			stats.Completed++
			if sess.FinalScore != nil {
				scored++
				sum += *sess.FinalScore
			}
		case StatusInProgress:
			stats.InProgress++
		}
	}
	if scored > 0 {
		stats.AverageScore = float64(sum) / float64(scored)
	}
	return stats
}
