// Package repository defines the durable store contract for the ingestion
// pipeline and its PostgreSQL implementation.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jkmdale/your-ai-finance-brain-sub003/internal/domain/transaction"
)

// SignatureFields is the triple the dedup engine hashes, read back from the
// store in one batch fetch per import.
type SignatureFields struct {
	Date        string
	Amount      decimal.Decimal
	Description string
}

// ImportJob tracks one file's journey through the pipeline.
type ImportJob struct {
	ID          uuid.UUID
	Owner       uuid.UUID
	FileName    string
	Source      transaction.Source
	Status      string
	RowsTotal   int
	RowsOK      int
	RowsFailed  int
	RowsSkipped int
	Error       *string
	CreatedAt   time.Time
	FinishedAt  *time.Time
}

// ImportRepository is the durable store consumed by the dedup engine and the
// ingestion orchestrator.
type ImportRepository interface {
	// FetchSignatureFields returns the (date, amount, description) triples
	// of all stored transactions for the owner.
	FetchSignatureFields(ctx context.Context, owner uuid.UUID) ([]SignatureFields, error)

	// InsertTransaction persists one canonical transaction and returns the
	// stored record. is_income is derived from the amount sign here.
	InsertTransaction(ctx context.Context, tx *transaction.Transaction) (*transaction.Stored, error)

	// ListRecentTransactions returns the owner's stored transactions dated
	// on or after since, newest first.
	ListRecentTransactions(ctx context.Context, owner uuid.UUID, since time.Time) ([]transaction.Stored, error)

	// ListActiveOwners returns owners with at least one stored transaction.
	ListActiveOwners(ctx context.Context) ([]uuid.UUID, error)

	// UpdateTransactionCategory sets the merchant and category on one
	// stored transaction.
	UpdateTransactionCategory(ctx context.Context, id uuid.UUID, merchant, category string) error

	CreateImportJob(ctx context.Context, job *ImportJob) error
	FinishImportJob(ctx context.Context, job *ImportJob) error
}
