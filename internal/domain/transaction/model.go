// Package transaction defines the canonical transaction model that every
// institution export converges to, and the content signature used for
// de-duplication.
package transaction

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jkmdale/your-ai-finance-brain-sub003/pkg/money"
)

// Source identifies which institution export a transaction came from.
type Source string

const (
	SourceANZ      Source = "anz"
	SourceKiwibank Source = "kiwibank"
	SourceASB      Source = "asb"
	SourceWestpac  Source = "westpac"
	SourceGeneric  Source = "generic"
)

// Sources lists the supported institutions, excluding the generic fallback.
func Sources() []Source {
	return []Source{SourceANZ, SourceKiwibank, SourceASB, SourceWestpac}
}

// Amount is a signed decimal that can also represent an unparseable value.
// Valid=false is the explicit not-a-number marker; it is never silently
// coerced to zero, so a bad amount field stays distinguishable from a
// legitimate zero-value transaction.
type Amount struct {
	Dec   decimal.Decimal
	Valid bool
}

// NewAmount wraps a parsed decimal in a valid Amount.
func NewAmount(d decimal.Decimal) Amount {
	return Amount{Dec: d, Valid: true}
}

// InvalidAmount returns the explicit unparseable marker.
func InvalidAmount() Amount {
	return Amount{}
}

// ParseAmount parses a raw statement amount string. A value that cannot be
// parsed yields the invalid marker, not zero.
func ParseAmount(raw string) Amount {
	d, err := money.ParseDecimal(raw)
	if err != nil {
		return InvalidAmount()
	}
	return NewAmount(d)
}

// String renders the amount in its canonical form (trailing zeros trimmed)
// or "NaN" for the invalid marker. The canonical form is what signatures
// hash, so it must be stable across re-imports and store round-trips.
func (a Amount) String() string {
	if !a.Valid {
		return "NaN"
	}
	return canonicalDecimal(a.Dec)
}

// IsIncome reports whether the amount is a credit (strictly positive).
func (a Amount) IsIncome() bool {
	return a.Valid && a.Dec.IsPositive()
}

// Transaction is the canonical record shape produced by every parser.
// Instances are never mutated after creation; a correction produces a new
// stored version.
type Transaction struct {
	Date        string // ISO 8601 (YYYY-MM-DD)
	Amount      Amount
	Description string
	Source      Source
	Owner       uuid.UUID
	// Tag is a display-only debit/credit marker derived by parsers whose
	// source format carries one. It is not part of the dedup signature.
	Tag string
}

// Signature returns the dedup key for this transaction: a sha256 over the
// normalized (date, amount, description) triple. Source is deliberately not
// hashed so the same row re-imported through a different parser route still
// collides.
func (t Transaction) Signature() string {
	return Signature(t.Date, t.Amount.String(), t.Description)
}

// Signature computes the dedup key from its raw parts. Parts are trimmed and
// lower-cased before hashing.
func Signature(date, amount, description string) string {
	parts := []string{
		strings.ToLower(strings.TrimSpace(date)),
		strings.ToLower(strings.TrimSpace(amount)),
		strings.ToLower(strings.TrimSpace(description)),
	}
	hash := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(hash[:])
}

// SignatureForDecimal normalizes a store-side numeric amount the same way
// Amount.String does before hashing.
func SignatureForDecimal(date string, amount decimal.Decimal, description string) string {
	return Signature(date, canonicalDecimal(amount), description)
}

// canonicalDecimal trims trailing fractional zeros so "75.00" in a file and
// 75.000 read back from a NUMERIC column hash identically.
func canonicalDecimal(d decimal.Decimal) string {
	s := d.String()
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	if s == "" || s == "-" {
		s = "0"
	}
	return s
}

// Stored is the persisted record shape returned by the durable store.
type Stored struct {
	ID          uuid.UUID
	Date        string
	Amount      decimal.Decimal
	Description string
	Merchant    *string
	Category    *string
	IsIncome    bool
	Source      Source
	Owner       uuid.UUID
	Account     *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
