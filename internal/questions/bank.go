package questions

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"interviewd/internal/domain"
)

//go:embed bank.yaml
var defaultBankYAML []byte

// BankFile represents the YAML structure of a question bank
type BankFile struct {
	Name      string `yaml:"name"`
	Questions []struct {
		Text       string `yaml:"text"`
		Difficulty string `yaml:"difficulty"`
		TimeLimit  int    `yaml:"time_limit"`
	} `yaml:"questions"`
}

// Bank is a pool of interview questions grouped by difficulty.
type Bank struct {
	Name string
	pool map[domain.Difficulty][]domain.Question
}

// LoadBank reads a question bank from a YAML file
func LoadBank(path string) (*Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bank file: %w", err)
	}
	return parseBank(data)
}

// DefaultBank returns the built-in full-stack question bank
func DefaultBank() *Bank {
	bank, err := parseBank(defaultBankYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded question bank is invalid: %v", err))
	}
	return bank
}

func parseBank(data []byte) (*Bank, error) {
	var file BankFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse bank file: %w", err)
	}

	bank := &Bank{
		Name: file.Name,
		pool: make(map[domain.Difficulty][]domain.Question),
	}

	for i, q := range file.Questions {
		if q.Text == "" {
			return nil, fmt.Errorf("question %d: empty text", i)
		}
		difficulty := domain.Difficulty(q.Difficulty)
		if !difficulty.Valid() {
			return nil, fmt.Errorf("question %d: unknown difficulty %q", i, q.Difficulty)
		}
		limit := q.TimeLimit
		if limit <= 0 {
			limit = difficulty.TimeLimitSeconds()
		}
		bank.pool[difficulty] = append(bank.pool[difficulty], domain.Question{
			Text:       q.Text,
			Difficulty: difficulty,
			TimeLimit:  limit,
		})
	}

	// Every difficulty the interview plan draws from must be stocked.
	for _, difficulty := range domain.InterviewPlan() {
		if len(bank.pool[difficulty]) == 0 {
			return nil, fmt.Errorf("%w: no %s questions in bank", domain.ErrEmptyQuestionSet, difficulty)
		}
	}

	return bank, nil
}

// Size returns the number of questions stocked for a difficulty
func (b *Bank) Size(difficulty domain.Difficulty) int {
	return len(b.pool[difficulty])
}
