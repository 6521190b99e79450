// Package metrics exposes the Prometheus instruments for the ingestion
// pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RowsParsed counts data rows successfully converted to transactions,
	// labelled by institution.
	RowsParsed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ingest_rows_parsed_total",
		Help: "Data rows successfully parsed into transactions.",
	}, []string{"source"})

	// RowsSkipped counts rows dropped before parsing (blank, malformed,
	// repeated headers).
	RowsSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ingest_rows_skipped_total",
		Help: "Rows skipped during parsing.",
	}, []string{"source"})

	// DuplicatesSkipped counts transactions dropped by the dedup filter.
	DuplicatesSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ingest_duplicates_skipped_total",
		Help: "Transactions skipped as duplicates of stored history.",
	}, []string{"source"})

	// InsertFailures counts per-row persistence failures.
	InsertFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ingest_insert_failures_total",
		Help: "Transactions that failed to persist.",
	}, []string{"source"})

	// ImportDuration observes wall time per imported file.
	ImportDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ingest_import_duration_seconds",
		Help:    "Duration of one file import, end to end.",
		Buckets: prometheus.DefBuckets,
	})
)
