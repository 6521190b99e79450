package parser

import (
	"strings"

	"github.com/google/uuid"

	"github.com/jkmdale/your-ai-finance-brain-sub003/internal/domain/ingest/sniffer"
	"github.com/jkmdale/your-ai-finance-brain-sub003/internal/domain/transaction"
)

// Result is the outcome of processing one statement file.
type Result struct {
	Transactions []transaction.Transaction
	Diagnostics  Diagnostics
	Source       transaction.Source
	Recognized   bool
	HeaderRows   int
}

// Process detects the structure of raw statement bytes, routes the data rows
// to the matching institution parser (or the generic fallback), and
// aggregates diagnostics for the whole file. Structural failures (empty
// file, no header, undecodable bytes) are returned as errors; everything
// else is isolated per row.
func Process(data []byte, owner uuid.UUID) (*Result, error) {
	cfg, err := sniffer.Detect(data)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Source:     cfg.Source,
		Recognized: cfg.Recognized,
		HeaderRows: cfg.HeaderRows,
	}

	if !cfg.Recognized {
		result.Diagnostics.Warn("unrecognized statement format, using generic parser")
	}
	if cfg.HeaderRows > 1 {
		result.Diagnostics.Warn("file contains %d header rows, expected 1", cfg.HeaderRows)
	}

	rows, badLines := sniffer.ReadRows(data, cfg.Delimiter)
	for _, idx := range badLines {
		if idx > cfg.SkipLines {
			result.Diagnostics.Skip(idx, "unreadable line")
		}
	}

	if cfg.Shape == sniffer.ShapeKeyed {
		processKeyed(cfg, rows, owner, result)
		return result, nil
	}

	dataRows := collectDataRows(rows, cfg, &result.Diagnostics)

	txs, diags := ForSource(cfg.Source).ParseRows(dataRows, owner)
	result.Transactions = txs
	result.Diagnostics.Merge(diags)

	return result, nil
}

// ProcessRows handles input that is already split into rows (spreadsheet
// sheets). The first non-blank row is treated as the header.
func ProcessRows(rows [][]string, owner uuid.UUID) (*Result, error) {
	headerIdx := -1
	for i, row := range rows {
		if !isBlankRow(row) {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return nil, sniffer.ErrEmptyFile
	}

	source, recognized := sniffer.MatchInstitution(rows[headerIdx])
	if !recognized && len(rows[headerIdx]) < 2 {
		return nil, sniffer.ErrNoHeadersFound
	}

	result := &Result{
		Source:     source,
		Recognized: recognized,
		HeaderRows: 1,
	}
	if !recognized {
		result.Diagnostics.Warn("unrecognized statement format, using generic parser")
	}

	cfg := &sniffer.FileConfig{
		SkipLines: headerIdx,
		Headers:   rows[headerIdx],
		Source:    source,
	}
	dataRows := collectDataRows(padShortRows(rows, cfg), cfg, &result.Diagnostics)

	txs, diags := ForSource(source).ParseRows(dataRows, owner)
	result.Transactions = txs
	result.Diagnostics.Merge(diags)

	return result, nil
}

// collectDataRows filters the rows after the header: blank rows and rows
// whose column count does not match the header are recorded as skips,
// repeated header rows inside the data are skipped as artifacts.
func collectDataRows(rows [][]string, cfg *sniffer.FileConfig, diags *Diagnostics) []IndexedRow {
	var dataRows []IndexedRow
	for i := cfg.SkipLines + 1; i < len(rows); i++ {
		row := rows[i]

		if isBlankRow(row) {
			diags.Skip(i, "blank row")
			continue
		}
		if sniffer.IsHeaderRow(row) {
			diags.Skip(i, "repeated header row")
			continue
		}
		if len(row) != len(cfg.Headers) {
			diags.Skip(i, "column count mismatch")
			continue
		}
		dataRows = append(dataRows, IndexedRow{Index: i, Cells: row})
	}
	return dataRows
}

// processKeyed routes header-keyed records (currently ASB) through gocsv.
// The rows pass the same blank/repeated-header/column-count filtering as the
// delimited path, so a malformed row becomes a recorded skip instead of
// aborting the section.
func processKeyed(cfg *sniffer.FileConfig, rows [][]string, owner uuid.UUID, result *Result) {
	dataRows := collectDataRows(rows, cfg, &result.Diagnostics)

	txs, diags := asbParser{}.ParseKeyedRows(cfg.Headers, dataRows, owner)
	result.Transactions = txs
	result.Diagnostics.Merge(diags)
}

// padShortRows widens data rows that are narrower than the header to the
// header's width. Spreadsheet readers trim trailing empty cells, so a short
// row here means empty tail fields, not a malformed record.
func padShortRows(rows [][]string, cfg *sniffer.FileConfig) [][]string {
	padded := make([][]string, len(rows))
	copy(padded, rows)

	width := len(cfg.Headers)
	for i := cfg.SkipLines + 1; i < len(rows); i++ {
		row := rows[i]
		if len(row) == 0 || len(row) >= width || isBlankRow(row) {
			continue
		}
		wide := make([]string, width)
		copy(wide, row)
		padded[i] = wide
	}
	return padded
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
