// Package parser converts raw statement rows from each supported
// institution export into canonical transactions, collecting per-file
// diagnostics along the way.
package parser

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jkmdale/your-ai-finance-brain-sub003/internal/domain/transaction"
)

// descriptionSeparator joins the description-contributing fields.
const descriptionSeparator = " - "

// SkippedRow records a row that was excluded from parsing, with its original
// zero-based line index in the file.
type SkippedRow struct {
	Index  int
	Reason string
}

// Diagnostics accumulates per-file skips, warnings, and hard errors. One bad
// row never aborts the file; structural failures are surfaced by the caller
// as errors instead.
type Diagnostics struct {
	Skipped  []SkippedRow
	Warnings []string
	Errors   []string
}

// Skip records a skipped row.
func (d *Diagnostics) Skip(index int, reason string) {
	d.Skipped = append(d.Skipped, SkippedRow{Index: index, Reason: reason})
}

// Warn records a warning.
func (d *Diagnostics) Warn(format string, args ...any) {
	d.Warnings = append(d.Warnings, fmt.Sprintf(format, args...))
}

// Fail records a hard error.
func (d *Diagnostics) Fail(format string, args ...any) {
	d.Errors = append(d.Errors, fmt.Sprintf(format, args...))
}

// Merge appends another set of diagnostics, preserving order.
func (d *Diagnostics) Merge(other *Diagnostics) {
	if other == nil {
		return
	}
	d.Skipped = append(d.Skipped, other.Skipped...)
	d.Warnings = append(d.Warnings, other.Warnings...)
	d.Errors = append(d.Errors, other.Errors...)
}

// IndexedRow is a data row paired with its original line index for
// diagnostics.
type IndexedRow struct {
	Index int
	Cells []string
}

// RowParser converts one institution's data rows (header excluded, blank
// rows excluded) into canonical transactions. Output is order-preserving and
// one-to-one with input rows: a malformed amount becomes the explicit
// invalid marker on an emitted transaction, never a dropped row.
type RowParser interface {
	Source() transaction.Source
	ParseRows(rows []IndexedRow, owner uuid.UUID) ([]transaction.Transaction, *Diagnostics)
}

// ForSource returns the parser for an institution, or the generic fallback
// for unrecognized formats.
func ForSource(source transaction.Source) RowParser {
	switch source {
	case transaction.SourceANZ:
		return anzParser{}
	case transaction.SourceKiwibank:
		return kiwibankParser{}
	case transaction.SourceASB:
		return asbParser{}
	case transaction.SourceWestpac:
		return westpacParser{}
	default:
		return genericParser{}
	}
}

// nzDateFormats covers the date renderings seen in NZ bank exports.
var nzDateFormats = []string{
	"2006-01-02",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"02 Jan 2006",
	"2 Jan 2006",
	"2006/01/02",
}

// normalizeDate converts a source date to ISO 8601. Unrecognized values are
// kept verbatim (trimmed) and reported through the returned ok flag so the
// caller can warn without dropping the row.
func normalizeDate(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}
	for _, format := range nzDateFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	return s, false
}

// joinDescription assembles a description from its contributing fields,
// dropping empty segments so missing fields degrade to shorter descriptions
// without separator artifacts.
func joinDescription(segments ...string) string {
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		if s := strings.TrimSpace(seg); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, descriptionSeparator)
}

// cell returns the trimmed cell at idx, or "" when the row is short.
func cell(cells []string, idx int) string {
	if idx < 0 || idx >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[idx])
}

// parseRowAmount parses an amount cell, warning (not failing) on the
// explicit invalid marker.
func parseRowAmount(raw string, rowIndex int, d *Diagnostics) transaction.Amount {
	amount := transaction.ParseAmount(raw)
	if !amount.Valid {
		d.Warn("row %d: unparseable amount %q", rowIndex, strings.TrimSpace(raw))
	}
	return amount
}

// parseRowDate normalizes a date cell, warning when the source format is
// unrecognized.
func parseRowDate(raw string, rowIndex int, d *Diagnostics) string {
	date, ok := normalizeDate(raw)
	if !ok && date != "" {
		d.Warn("row %d: unrecognized date format %q", rowIndex, date)
	}
	return date
}
