package parser

import (
	"bytes"
	"encoding/csv"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"

	"github.com/jkmdale/your-ai-finance-brain-sub003/internal/domain/transaction"
)

// asbRecord is one header-keyed ASB record. ASB exports are matched by
// header name rather than column position, so gocsv unmarshals them
// directly.
type asbRecord struct {
	Date        string `csv:"Date"`
	Amount      string `csv:"Amount"`
	Description string `csv:"Description"`
}

// ASB exports header-keyed records with Date, Amount, Description. The
// description is taken verbatim, and a debit/credit tag is derived from the
// amount sign for display.
type asbParser struct{}

func (asbParser) Source() transaction.Source { return transaction.SourceASB }

// ParseRows handles ASB data that arrives as positional rows (for example a
// spreadsheet sheet already reduced to cells in header order).
func (p asbParser) ParseRows(rows []IndexedRow, owner uuid.UUID) ([]transaction.Transaction, *Diagnostics) {
	diags := &Diagnostics{}
	txs := make([]transaction.Transaction, 0, len(rows))

	for _, row := range rows {
		txs = append(txs, p.convert(asbRecord{
			Date:        cell(row.Cells, 0),
			Amount:      cell(row.Cells, 1),
			Description: cell(row.Cells, 2),
		}, row.Index, owner, diags))
	}
	return txs, diags
}

// ParseKeyedRows binds pre-filtered data rows by header name. Rows must
// already match the header's column count; re-encoding them under the header
// lets gocsv map fields regardless of column order, and one bad row can no
// longer abort the rest of the section.
func (p asbParser) ParseKeyedRows(headers []string, rows []IndexedRow, owner uuid.UUID) ([]transaction.Transaction, *Diagnostics) {
	diags := &Diagnostics{}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(headers)
	for _, row := range rows {
		_ = w.Write(row.Cells)
	}
	w.Flush()

	var txs []transaction.Transaction
	next := 0
	err := gocsv.UnmarshalBytesToCallback(buf.Bytes(), func(record asbRecord) {
		rowIndex := 0
		if next < len(rows) {
			rowIndex = rows[next].Index
		}
		next++
		txs = append(txs, p.convert(record, rowIndex, owner, diags))
	})
	if err != nil {
		diags.Fail("failed to read keyed records: %v", err)
	}
	return txs, diags
}

func (p asbParser) convert(record asbRecord, rowIndex int, owner uuid.UUID, diags *Diagnostics) transaction.Transaction {
	amount := parseRowAmount(record.Amount, rowIndex, diags)

	tag := ""
	if amount.Valid {
		if amount.Dec.IsNegative() {
			tag = "debit"
		} else {
			tag = "credit"
		}
	}

	return transaction.Transaction{
		Date:        parseRowDate(record.Date, rowIndex, diags),
		Amount:      amount,
		Description: strings.TrimSpace(record.Description),
		Source:      transaction.SourceASB,
		Owner:       owner,
		Tag:         tag,
	}
}
