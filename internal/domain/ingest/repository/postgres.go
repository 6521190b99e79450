package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/jkmdale/your-ai-finance-brain-sub003/internal/domain/transaction"
)

// DB is the subset of pgxpool.Pool the repository uses. pgxmock satisfies
// the same interface in tests.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresImportRepository implements ImportRepository using PostgreSQL.
type PostgresImportRepository struct {
	db DB
}

// NewPostgresImportRepository creates a new PostgreSQL import repository.
func NewPostgresImportRepository(db DB) *PostgresImportRepository {
	return &PostgresImportRepository{db: db}
}

// FetchSignatureFields returns the dedup triples for all of the owner's
// stored transactions in a single round-trip.
func (r *PostgresImportRepository) FetchSignatureFields(ctx context.Context, owner uuid.UUID) ([]SignatureFields, error) {
	query := `
		SELECT to_char(txn_date, 'YYYY-MM-DD'), amount::text, description
		FROM transactions
		WHERE owner_id = $1`

	rows, err := r.db.Query(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch signature fields: %w", err)
	}
	defer rows.Close()

	var fields []SignatureFields
	for rows.Next() {
		var f SignatureFields
		var amount string
		if err := rows.Scan(&f.Date, &amount, &f.Description); err != nil {
			return nil, fmt.Errorf("failed to scan signature fields: %w", err)
		}
		f.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("failed to parse stored amount %q: %w", amount, err)
		}
		fields = append(fields, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read signature fields: %w", err)
	}
	return fields, nil
}

// InsertTransaction persists one canonical transaction. A transaction
// carrying the invalid-amount marker is rejected here rather than being
// silently stored as zero.
func (r *PostgresImportRepository) InsertTransaction(ctx context.Context, tx *transaction.Transaction) (*transaction.Stored, error) {
	if !tx.Amount.Valid {
		return nil, errors.New("cannot insert transaction with unparseable amount")
	}

	query := `
		INSERT INTO transactions (id, owner_id, txn_date, amount, description, is_income, source)
		VALUES ($1, $2, $3::date, $4::numeric, $5, $6, $7)
		RETURNING created_at, updated_at`

	stored := &transaction.Stored{
		ID:          uuid.New(),
		Date:        tx.Date,
		Amount:      tx.Amount.Dec,
		Description: tx.Description,
		IsIncome:    tx.Amount.IsIncome(),
		Source:      tx.Source,
		Owner:       tx.Owner,
	}

	err := r.db.QueryRow(ctx, query,
		stored.ID,
		stored.Owner,
		stored.Date,
		stored.Amount.String(),
		stored.Description,
		stored.IsIncome,
		string(stored.Source),
	).Scan(&stored.CreatedAt, &stored.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to insert transaction: %w", err)
	}
	return stored, nil
}

// ListRecentTransactions returns the owner's transactions dated on or after
// since, newest first.
func (r *PostgresImportRepository) ListRecentTransactions(ctx context.Context, owner uuid.UUID, since time.Time) ([]transaction.Stored, error) {
	query := `
		SELECT id, to_char(txn_date, 'YYYY-MM-DD'), amount::text, description,
		       merchant, category, is_income, source, account, created_at, updated_at
		FROM transactions
		WHERE owner_id = $1 AND txn_date >= $2::date
		ORDER BY txn_date DESC, created_at DESC`

	rows, err := r.db.Query(ctx, query, owner, since.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txs []transaction.Stored
	for rows.Next() {
		var t transaction.Stored
		var amount string
		var source string
		if err := rows.Scan(
			&t.ID, &t.Date, &amount, &t.Description,
			&t.Merchant, &t.Category, &t.IsIncome, &source, &t.Account,
			&t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		t.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("failed to parse stored amount %q: %w", amount, err)
		}
		t.Owner = owner
		t.Source = transaction.Source(source)
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read transactions: %w", err)
	}
	return txs, nil
}

// ListActiveOwners returns every owner with at least one stored transaction.
func (r *PostgresImportRepository) ListActiveOwners(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT owner_id FROM transactions`)
	if err != nil {
		return nil, fmt.Errorf("failed to list owners: %w", err)
	}
	defer rows.Close()

	var owners []uuid.UUID
	for rows.Next() {
		var owner uuid.UUID
		if err := rows.Scan(&owner); err != nil {
			return nil, fmt.Errorf("failed to scan owner: %w", err)
		}
		owners = append(owners, owner)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read owners: %w", err)
	}
	return owners, nil
}

// UpdateTransactionCategory sets merchant and category on one transaction.
func (r *PostgresImportRepository) UpdateTransactionCategory(ctx context.Context, id uuid.UUID, merchant, category string) error {
	query := `
		UPDATE transactions
		SET merchant = $2, category = $3, updated_at = now()
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id, merchant, category)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("transaction %s not found", id)
	}
	return nil
}

// CreateImportJob records the start of one file's import.
func (r *PostgresImportRepository) CreateImportJob(ctx context.Context, job *ImportJob) error {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	if job.Status == "" {
		job.Status = "running"
	}

	query := `
		INSERT INTO import_jobs (id, owner_id, file_name, source, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	err := r.db.QueryRow(ctx, query,
		job.ID, job.Owner, job.FileName, string(job.Source), job.Status,
	).Scan(&job.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create import job: %w", err)
	}
	return nil
}

// FinishImportJob records the final counts and status for a job.
func (r *PostgresImportRepository) FinishImportJob(ctx context.Context, job *ImportJob) error {
	query := `
		UPDATE import_jobs
		SET status = $2, rows_total = $3, rows_ok = $4, rows_failed = $5,
		    rows_skipped = $6, error = $7, finished_at = now()
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		job.ID, job.Status, job.RowsTotal, job.RowsOK, job.RowsFailed,
		job.RowsSkipped, job.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to finish import job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("import job %s not found", job.ID)
	}
	return nil
}
