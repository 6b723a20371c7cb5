package questions

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"interviewd/internal/domain"
)

// BankProvider draws a six-question interview from a bank: two easy, two
// medium, two hard, in that order. Within one interview no question repeats.
type BankProvider struct {
	bank *Bank

	mu  sync.Mutex
	rng *rand.Rand
}

// BankOption configures a BankProvider
type BankOption func(*BankProvider)

// WithSeed makes question selection reproducible
func WithSeed(seed int64) BankOption {
	return func(p *BankProvider) {
		p.rng = rand.New(rand.NewSource(seed))
	}
}

// NewBankProvider creates a provider over the given bank
func NewBankProvider(bank *Bank, opts ...BankOption) *BankProvider {
	p := &BankProvider{
		bank: bank,
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Generate assembles one interview's question set.
func (p *BankProvider) Generate(_ context.Context) ([]domain.Question, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	plan := domain.InterviewPlan()
	used := make(map[domain.Difficulty]map[int]bool)
	out := make([]domain.Question, 0, len(plan))

	for i, difficulty := range plan {
		pool := p.bank.pool[difficulty]
		if len(pool) == 0 {
			return nil, fmt.Errorf("%w: no %s questions in bank", domain.ErrEmptyQuestionSet, difficulty)
		}
		if used[difficulty] == nil {
			used[difficulty] = make(map[int]bool)
		}

		pick := p.rng.Intn(len(pool))
		if len(used[difficulty]) < len(pool) {
			for used[difficulty][pick] {
				pick = (pick + 1) % len(pool)
			}
		}
		used[difficulty][pick] = true

		question := pool[pick]
		question.ID = fmt.Sprintf("q%d", i+1)
		out = append(out, question)
	}

	return out, nil
}
