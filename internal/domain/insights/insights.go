// Package insights derives spending summaries from stored transactions and
// holds them as owned application state, recomputed on refresh signals.
package insights

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jkmdale/your-ai-finance-brain-sub003/internal/domain/transaction"
	"github.com/jkmdale/your-ai-finance-brain-sub003/pkg/money"
)

// DefaultWindow is how far back a summary looks.
const DefaultWindow = 30 * 24 * time.Hour

// Summary is one owner's aggregate view over the window.
type Summary struct {
	Income         decimal.Decimal
	Expenses       decimal.Decimal
	Net            decimal.Decimal
	ByCategory     map[string]decimal.Decimal
	Count          int
	IncomeDisplay  string
	ExpenseDisplay string
	NetDisplay     string
	ComputedAt     time.Time
}

// uncategorized is the bucket for transactions without a category.
const uncategorized = "uncategorized"

// Compute aggregates the given transactions into a summary. It is a pure
// function of its inputs; persistence and caching live in Service.
func Compute(txs []transaction.Stored, now time.Time) Summary {
	s := Summary{
		ByCategory: make(map[string]decimal.Decimal),
		ComputedAt: now,
	}

	for _, tx := range txs {
		s.Count++
		if tx.IsIncome {
			s.Income = s.Income.Add(tx.Amount)
		} else {
			s.Expenses = s.Expenses.Add(tx.Amount.Abs())
		}

		category := uncategorized
		if tx.Category != nil && *tx.Category != "" {
			category = *tx.Category
		}
		s.ByCategory[category] = s.ByCategory[category].Add(tx.Amount)
	}

	s.Net = s.Income.Sub(s.Expenses)
	s.IncomeDisplay = money.Format(s.Income, money.NZD)
	s.ExpenseDisplay = money.Format(s.Expenses, money.NZD)
	s.NetDisplay = money.Format(s.Net, money.NZD)
	return s
}

// TransactionReader is the store slice the service reads from.
type TransactionReader interface {
	ListActiveOwners(ctx context.Context) ([]uuid.UUID, error)
	ListRecentTransactions(ctx context.Context, owner uuid.UUID, since time.Time) ([]transaction.Stored, error)
}

// Service caches per-owner summaries and recomputes them on demand. It
// satisfies the refresh coordinator's Refresher contract.
type Service struct {
	repo   TransactionReader
	logger *slog.Logger
	window time.Duration

	mu        sync.RWMutex
	summaries map[uuid.UUID]Summary
}

// NewService creates an insights service with the default window.
func NewService(repo TransactionReader, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		logger:    logger,
		window:    DefaultWindow,
		summaries: make(map[uuid.UUID]Summary),
	}
}

// Summary returns the cached summary for an owner, if one has been computed
// since the last reset.
func (s *Service) Summary(owner uuid.UUID) (Summary, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	summary, ok := s.summaries[owner]
	return summary, ok
}

// Recompute rebuilds the summary for every active owner.
func (s *Service) Recompute(ctx context.Context) error {
	owners, err := s.repo.ListActiveOwners(ctx)
	if err != nil {
		return err
	}

	now := time.Now()
	fresh := make(map[uuid.UUID]Summary, len(owners))
	for _, owner := range owners {
		txs, err := s.repo.ListRecentTransactions(ctx, owner, now.Add(-s.window))
		if err != nil {
			return err
		}
		fresh[owner] = Compute(txs, now)
	}

	s.mu.Lock()
	s.summaries = fresh
	s.mu.Unlock()
	return nil
}

// ResetInsights drops all cached summaries; the next read after a recompute
// sees fresh data.
func (s *Service) ResetInsights() {
	s.mu.Lock()
	s.summaries = make(map[uuid.UUID]Summary)
	s.mu.Unlock()
}

// RefreshDashboard recomputes summaries for all owners. Failures are logged,
// not propagated: the next refresh signal retries.
func (s *Service) RefreshDashboard() {
	if err := s.Recompute(context.Background()); err != nil {
		s.logger.Warn("failed to recompute insights", slog.Any("error", err))
	}
}
