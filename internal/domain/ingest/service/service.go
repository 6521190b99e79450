// Package service orchestrates statement imports: format detection, parsing,
// deduplication, and persistence, with one report per file.
package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/jkmdale/your-ai-finance-brain-sub003/internal/bus"
	"github.com/jkmdale/your-ai-finance-brain-sub003/internal/domain/ingest/dedup"
	"github.com/jkmdale/your-ai-finance-brain-sub003/internal/domain/ingest/parser"
	"github.com/jkmdale/your-ai-finance-brain-sub003/internal/domain/ingest/repository"
	"github.com/jkmdale/your-ai-finance-brain-sub003/internal/domain/transaction"
	"github.com/jkmdale/your-ai-finance-brain-sub003/pkg/metrics"
)

// xlsxMagic is the ZIP local-file-header signature; XLSX files are ZIP
// containers.
var xlsxMagic = []byte{0x50, 0x4B, 0x03, 0x04}

// Report summarizes one import attempt. It is produced for every attempt,
// including ones that failed before any row was parsed.
type Report struct {
	Success   bool
	Source    transaction.Source
	Processed int
	Failed    int
	Skipped   int
	Warnings  []string
	Errors    []string
	Inserted  []transaction.Stored
}

// ImportService runs the ingestion pipeline end to end for one file at a
// time.
type ImportService struct {
	repo   repository.ImportRepository
	bus    *bus.Bus
	logger *slog.Logger
}

// NewImportService creates an import orchestrator.
func NewImportService(repo repository.ImportRepository, b *bus.Bus, logger *slog.Logger) *ImportService {
	return &ImportService{repo: repo, bus: b, logger: logger}
}

// Import runs the full pipeline for one statement file. Row-level problems
// are reported and counted without aborting the file; structural problems
// and a failed dedup fetch abort before any insert. An ImportComplete event
// is published on every path, even when nothing was processed, so listeners
// always get a chance to refresh.
func (s *ImportService) Import(ctx context.Context, owner uuid.UUID, fileName string, data []byte) *Report {
	start := time.Now()
	defer func() {
		metrics.ImportDuration.Observe(time.Since(start).Seconds())
	}()

	report := s.runImport(ctx, owner, fileName, data)

	s.logger.Info("import finished",
		slog.String("file", fileName),
		slog.String("source", string(report.Source)),
		slog.Bool("success", report.Success),
		slog.Int("processed", report.Processed),
		slog.Int("failed", report.Failed),
		slog.Int("skipped", report.Skipped),
	)

	s.bus.ImportComplete.Publish(bus.ImportCompleteEvent{
		TotalTransactions: report.Processed,
		FilesProcessed:    1,
	})
	return report
}

func (s *ImportService) runImport(ctx context.Context, owner uuid.UUID, fileName string, data []byte) *Report {
	report := &Report{Source: transaction.SourceGeneric}

	parsed, err := s.parseFile(data, owner)
	if err != nil {
		report.Errors = append(report.Errors, err.Error())
		s.recordJob(ctx, owner, fileName, report)
		return report
	}

	report.Source = parsed.Source
	report.Warnings = append(report.Warnings, parsed.Diagnostics.Warnings...)
	report.Errors = append(report.Errors, parsed.Diagnostics.Errors...)
	metrics.RowsParsed.WithLabelValues(string(parsed.Source)).Add(float64(len(parsed.Transactions)))
	metrics.RowsSkipped.WithLabelValues(string(parsed.Source)).Add(float64(len(parsed.Diagnostics.Skipped)))

	filtered, err := dedup.Filter(ctx, s.repo, owner, parsed.Transactions)
	if err != nil {
		report.Errors = append(report.Errors, err.Error())
		s.recordJob(ctx, owner, fileName, report)
		return report
	}
	report.Skipped = filtered.Skipped
	metrics.DuplicatesSkipped.WithLabelValues(string(parsed.Source)).Add(float64(filtered.Skipped))

	for _, tx := range filtered.Unique {
		stored, err := s.repo.InsertTransaction(ctx, &tx)
		if err != nil {
			report.Failed++
			report.Errors = append(report.Errors,
				fmt.Sprintf("%s %s %q: %v", tx.Date, tx.Amount.String(), tx.Description, err))
			metrics.InsertFailures.WithLabelValues(string(parsed.Source)).Inc()
			continue
		}
		report.Processed++
		report.Inserted = append(report.Inserted, *stored)
	}

	report.Success = len(report.Errors) == 0
	s.recordJob(ctx, owner, fileName, report)
	return report
}

// parseFile routes the raw bytes to the spreadsheet or delimited-text path.
func (s *ImportService) parseFile(data []byte, owner uuid.UUID) (*parser.Result, error) {
	if bytes.HasPrefix(data, xlsxMagic) {
		rows, err := readWorkbookRows(data)
		if err != nil {
			return nil, err
		}
		return parser.ProcessRows(rows, owner)
	}
	return parser.Process(data, owner)
}

// readWorkbookRows extracts the cell grid of the first sheet of an XLSX
// workbook.
func readWorkbookRows(data []byte) ([][]string, error) {
	wb, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

// recordJob persists the job outcome. Bookkeeping failures are logged, not
// surfaced: the import result stands on its own.
func (s *ImportService) recordJob(ctx context.Context, owner uuid.UUID, fileName string, report *Report) {
	status := "completed"
	if !report.Success {
		status = "completed_with_errors"
	}
	if report.Processed == 0 && len(report.Errors) > 0 {
		status = "failed"
	}

	job := &repository.ImportJob{
		Owner:       owner,
		FileName:    fileName,
		Source:      report.Source,
		Status:      status,
		RowsTotal:   report.Processed + report.Failed + report.Skipped,
		RowsOK:      report.Processed,
		RowsFailed:  report.Failed,
		RowsSkipped: report.Skipped,
	}
	if len(report.Errors) > 0 {
		msg := report.Errors[0]
		job.Error = &msg
	}

	if err := s.repo.CreateImportJob(ctx, job); err != nil {
		s.logger.Warn("failed to record import job", slog.Any("error", err))
		return
	}
	if err := s.repo.FinishImportJob(ctx, job); err != nil {
		s.logger.Warn("failed to finalize import job", slog.Any("error", err))
	}
}
