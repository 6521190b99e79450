package categorization

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jkmdale/your-ai-finance-brain-sub003/internal/bus"
	"github.com/jkmdale/your-ai-finance-brain-sub003/internal/domain/transaction"
)

// CategoryWriter is the store slice the service writes through.
type CategoryWriter interface {
	UpdateTransactionCategory(ctx context.Context, id uuid.UUID, merchant, category string) error
}

// Service categorizes stored transactions in batches and announces each
// completed pass on the bus.
type Service struct {
	engine *Engine
	repo   CategoryWriter
	bus    *bus.Bus
	logger *slog.Logger
}

// NewService creates a categorization service with the built-in engine.
func NewService(repo CategoryWriter, b *bus.Bus, logger *slog.Logger) *Service {
	return &Service{
		engine: NewEngine(),
		repo:   repo,
		bus:    b,
		logger: logger,
	}
}

// CategorizeBatch assigns merchants and categories to the given transactions,
// skipping ones already categorized. A CategorizationComplete event is
// published whenever at least one transaction changed.
func (s *Service) CategorizeBatch(ctx context.Context, txs []transaction.Stored) (int, error) {
	categorized := 0
	for _, tx := range txs {
		if tx.Category != nil && *tx.Category != "" {
			continue
		}
		match, ok := s.engine.Categorize(tx.Description)
		if !ok {
			continue
		}
		if err := s.repo.UpdateTransactionCategory(ctx, tx.ID, match.Merchant, match.Category); err != nil {
			return categorized, err
		}
		categorized++
	}

	s.logger.Info("categorization pass finished",
		slog.Int("candidates", len(txs)),
		slog.Int("categorized", categorized),
	)

	if categorized > 0 {
		s.bus.CategorizationComplete.Publish(bus.CategorizationCompleteEvent{
			TotalCategorized: categorized,
		})
	}
	return categorized, nil
}
