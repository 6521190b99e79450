// Package dedup filters freshly parsed transactions against the owner's
// stored history by content signature.
package dedup

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jkmdale/your-ai-finance-brain-sub003/internal/domain/ingest/repository"
	"github.com/jkmdale/your-ai-finance-brain-sub003/internal/domain/transaction"
)

// SignatureStore is the slice of the durable store the engine needs.
type SignatureStore interface {
	FetchSignatureFields(ctx context.Context, owner uuid.UUID) ([]repository.SignatureFields, error)
}

// Result reports the outcome of filtering one batch.
type Result struct {
	Unique  []transaction.Transaction
	Skipped int
}

// Filter returns the subset of the batch whose signatures are not already in
// the store for the owner. The stored signature set is fetched exactly once
// per batch. Later in-batch occurrences of an already-seen signature are
// dropped too, since re-exported files can overlap themselves.
//
// A fetch failure is fatal for the batch: without the stored set, uniqueness
// cannot be determined safely.
func Filter(ctx context.Context, store SignatureStore, owner uuid.UUID, batch []transaction.Transaction) (*Result, error) {
	existing, err := store.FetchSignatureFields(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch existing signatures: %w", err)
	}

	seen := make(map[string]struct{}, len(existing)+len(batch))
	for _, fields := range existing {
		seen[transaction.SignatureForDecimal(fields.Date, fields.Amount, fields.Description)] = struct{}{}
	}

	result := &Result{Unique: make([]transaction.Transaction, 0, len(batch))}
	for _, tx := range batch {
		sig := tx.Signature()
		if _, dup := seen[sig]; dup {
			result.Skipped++
			continue
		}
		seen[sig] = struct{}{}
		result.Unique = append(result.Unique, tx)
	}
	return result, nil
}
