package domain

// Question is an immutable interview question produced once at interview start.
type Question struct {
	ID         string     `json:"id"`
	Text       string     `json:"text"`
	Difficulty Difficulty `json:"difficulty"`
	TimeLimit  int        `json:"time_limit"` // seconds
}

// Difficulty represents question difficulty level
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid reports whether d is a known difficulty.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// TimeLimitSeconds returns the per-question time budget for a difficulty.
func (d Difficulty) TimeLimitSeconds() int {
	switch d {
	case DifficultyEasy:
		return 20
	case DifficultyMedium:
		return 60
	case DifficultyHard:
		return 120
	default:
		return 60
	}
}

// InterviewPlan returns the fixed difficulty sequence every interview follows:
// two easy, two medium, two hard questions. Question bank providers must honor
// this ordering; the session state machine does not re-derive it.
func InterviewPlan() []Difficulty {
	return []Difficulty{
		DifficultyEasy, DifficultyEasy,
		DifficultyMedium, DifficultyMedium,
		DifficultyHard, DifficultyHard,
	}
}
