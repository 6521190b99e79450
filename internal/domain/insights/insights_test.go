package insights

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jkmdale/your-ai-finance-brain-sub003/internal/domain/transaction"
)

func stored(date, amount, description string, category *string, isIncome bool) transaction.Stored {
	return transaction.Stored{
		ID:          uuid.New(),
		Date:        date,
		Amount:      decimal.RequireFromString(amount),
		Description: description,
		Category:    category,
		IsIncome:    isIncome,
	}
}

func strptr(s string) *string { return &s }

func TestCompute(t *testing.T) {
	now := time.Now()

	t.Run("aggregates income expenses and net", func(t *testing.T) {
		txs := []transaction.Stored{
			stored("2024-01-05", "1200.00", "Salary", strptr("income"), true),
			stored("2024-01-06", "-75.50", "Countdown", strptr("groceries"), false),
			stored("2024-01-07", "-24.50", "Z Energy", strptr("fuel"), false),
		}

		s := Compute(txs, now)
		assert.Equal(t, 3, s.Count)
		assert.True(t, s.Income.Equal(decimal.RequireFromString("1200")))
		assert.True(t, s.Expenses.Equal(decimal.RequireFromString("100")))
		assert.True(t, s.Net.Equal(decimal.RequireFromString("1100")))
		assert.Equal(t, "$1,200.00", s.IncomeDisplay)
		assert.Equal(t, "$100.00", s.ExpenseDisplay)
		assert.Equal(t, "$1,100.00", s.NetDisplay)
	})

	t.Run("groups by category with uncategorized bucket", func(t *testing.T) {
		txs := []transaction.Stored{
			stored("2024-01-06", "-75.50", "Countdown", strptr("groceries"), false),
			stored("2024-01-07", "-10.00", "New World", strptr("groceries"), false),
			stored("2024-01-08", "-5.00", "Mystery", nil, false),
		}

		s := Compute(txs, now)
		assert.True(t, s.ByCategory["groceries"].Equal(decimal.RequireFromString("-85.5")))
		assert.True(t, s.ByCategory["uncategorized"].Equal(decimal.RequireFromString("-5")))
	})

	t.Run("empty input yields zero summary", func(t *testing.T) {
		s := Compute(nil, now)
		assert.Zero(t, s.Count)
		assert.True(t, s.Net.IsZero())
		assert.Equal(t, "$0.00", s.NetDisplay)
	})
}

type stubReader struct {
	owners []uuid.UUID
	txs    map[uuid.UUID][]transaction.Stored
	err    error
}

func (s *stubReader) ListActiveOwners(context.Context) ([]uuid.UUID, error) {
	return s.owners, s.err
}

func (s *stubReader) ListRecentTransactions(_ context.Context, owner uuid.UUID, _ time.Time) ([]transaction.Stored, error) {
	return s.txs[owner], nil
}

func TestService(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	owner := uuid.New()

	t.Run("recompute caches per owner", func(t *testing.T) {
		reader := &stubReader{
			owners: []uuid.UUID{owner},
			txs: map[uuid.UUID][]transaction.Stored{
				owner: {stored("2024-01-06", "-75.50", "Countdown", nil, false)},
			},
		}
		svc := NewService(reader, logger)

		_, ok := svc.Summary(owner)
		assert.False(t, ok)

		require.NoError(t, svc.Recompute(context.Background()))

		summary, ok := svc.Summary(owner)
		require.True(t, ok)
		assert.Equal(t, 1, summary.Count)
	})

	t.Run("reset drops cached state", func(t *testing.T) {
		reader := &stubReader{owners: []uuid.UUID{owner}}
		svc := NewService(reader, logger)
		require.NoError(t, svc.Recompute(context.Background()))

		svc.ResetInsights()
		_, ok := svc.Summary(owner)
		assert.False(t, ok)
	})

	t.Run("refresh swallows store errors", func(t *testing.T) {
		reader := &stubReader{err: errors.New("connection refused")}
		svc := NewService(reader, logger)
		assert.NotPanics(t, svc.RefreshDashboard)
	})
}
