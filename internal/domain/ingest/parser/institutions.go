package parser

import (
	"github.com/google/uuid"

	"github.com/jkmdale/your-ai-finance-brain-sub003/internal/domain/transaction"
)

// ANZ exports four columns: Date, Amount, Payee, Description. The amount is
// already signed. Description is "payee - description" with empty segments
// dropped.
type anzParser struct{}

func (anzParser) Source() transaction.Source { return transaction.SourceANZ }

func (p anzParser) ParseRows(rows []IndexedRow, owner uuid.UUID) ([]transaction.Transaction, *Diagnostics) {
	diags := &Diagnostics{}
	txs := make([]transaction.Transaction, 0, len(rows))

	for _, row := range rows {
		txs = append(txs, transaction.Transaction{
			Date:        parseRowDate(cell(row.Cells, 0), row.Index, diags),
			Amount:      parseRowAmount(cell(row.Cells, 1), row.Index, diags),
			Description: joinDescription(cell(row.Cells, 2), cell(row.Cells, 3)),
			Source:      transaction.SourceANZ,
			Owner:       owner,
		})
	}
	return txs, diags
}

// Kiwibank exports five columns: Date, Amount, Details, Particulars,
// Reference. Description joins the three tail fields, empty segments
// dropped.
type kiwibankParser struct{}

func (kiwibankParser) Source() transaction.Source { return transaction.SourceKiwibank }

func (p kiwibankParser) ParseRows(rows []IndexedRow, owner uuid.UUID) ([]transaction.Transaction, *Diagnostics) {
	diags := &Diagnostics{}
	txs := make([]transaction.Transaction, 0, len(rows))

	for _, row := range rows {
		txs = append(txs, transaction.Transaction{
			Date:        parseRowDate(cell(row.Cells, 0), row.Index, diags),
			Amount:      parseRowAmount(cell(row.Cells, 1), row.Index, diags),
			Description: joinDescription(cell(row.Cells, 2), cell(row.Cells, 3), cell(row.Cells, 4)),
			Source:      transaction.SourceKiwibank,
			Owner:       owner,
		})
	}
	return txs, diags
}

// Westpac exports three columns: Date, Amount, Transaction Details. The
// description is taken verbatim and may legitimately be empty.
type westpacParser struct{}

func (westpacParser) Source() transaction.Source { return transaction.SourceWestpac }

func (p westpacParser) ParseRows(rows []IndexedRow, owner uuid.UUID) ([]transaction.Transaction, *Diagnostics) {
	diags := &Diagnostics{}
	txs := make([]transaction.Transaction, 0, len(rows))

	for _, row := range rows {
		txs = append(txs, transaction.Transaction{
			Date:        parseRowDate(cell(row.Cells, 0), row.Index, diags),
			Amount:      parseRowAmount(cell(row.Cells, 1), row.Index, diags),
			Description: cell(row.Cells, 2),
			Source:      transaction.SourceWestpac,
			Owner:       owner,
		})
	}
	return txs, diags
}

// genericParser is the fallback for unrecognized formats: a two/three-column
// heuristic assuming date, amount, then any remaining columns joined as the
// description.
type genericParser struct{}

func (genericParser) Source() transaction.Source { return transaction.SourceGeneric }

func (p genericParser) ParseRows(rows []IndexedRow, owner uuid.UUID) ([]transaction.Transaction, *Diagnostics) {
	diags := &Diagnostics{}
	txs := make([]transaction.Transaction, 0, len(rows))

	for _, row := range rows {
		segments := make([]string, 0, len(row.Cells))
		for i := 2; i < len(row.Cells); i++ {
			segments = append(segments, cell(row.Cells, i))
		}

		txs = append(txs, transaction.Transaction{
			Date:        parseRowDate(cell(row.Cells, 0), row.Index, diags),
			Amount:      parseRowAmount(cell(row.Cells, 1), row.Index, diags),
			Description: joinDescription(segments...),
			Source:      transaction.SourceGeneric,
			Owner:       owner,
		})
	}
	return txs, diags
}
