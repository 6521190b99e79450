// Package sniffer detects the structure of an uploaded statement file:
// record shape (delimited rows vs header-keyed records), delimiter, header
// row, and which institution export the headers belong to.
package sniffer

import (
	"bytes"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jkmdale/your-ai-finance-brain-sub003/internal/domain/transaction"
)

var (
	ErrEmptyFile      = errors.New("file is empty")
	ErrNoHeadersFound = errors.New("could not find statement headers")
	ErrDecoding       = errors.New("could not decode file contents")
)

// Shape describes how records are laid out in the file.
type Shape int

const (
	// ShapeDelimited is an ordered sequence of delimited rows under one
	// header row.
	ShapeDelimited Shape = iota
	// ShapeKeyed is a sequence of header-keyed records (spreadsheet exports
	// and formats parsed by column name rather than position).
	ShapeKeyed
)

// Header signatures for the supported institution exports, compared
// case-insensitively with whitespace normalized.
var institutionHeaders = map[transaction.Source][]string{
	transaction.SourceANZ:      {"date", "amount", "payee", "description"},
	transaction.SourceKiwibank: {"date", "amount", "details", "particulars", "reference"},
	transaction.SourceASB:      {"date", "amount", "description"},
	transaction.SourceWestpac:  {"date", "amount", "transaction details"},
}

// Keyed-record formats match by header name, not column position.
var keyedSources = map[transaction.Source]bool{
	transaction.SourceASB: true,
}

// FileConfig holds everything detected about a statement file.
type FileConfig struct {
	Delimiter   rune
	SkipLines   int // metadata lines before the header row
	Headers     []string
	HeaderRows  int // header-like rows seen in the file (1 expected)
	Shape       Shape
	Source      transaction.Source
	Recognized  bool // false when falling back to the generic parser
	Fingerprint string
}

// Detect analyzes raw file bytes and returns the detected configuration.
// Structural problems (empty file, no header, undecodable bytes) are
// returned as errors and are fatal for the whole file.
func Detect(data []byte) (*FileConfig, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyFile
	}

	text, err := decode(data)
	if err != nil {
		return nil, err
	}

	lines := splitLines(text)
	delimiter, headerIdx, err := findHeaderRow(lines)
	if err != nil {
		return nil, err
	}

	headers, err := parseHeaderLine(lines[headerIdx], delimiter)
	if err != nil {
		return nil, ErrNoHeadersFound
	}

	cfg := &FileConfig{
		Delimiter:   delimiter,
		SkipLines:   headerIdx,
		Headers:     headers,
		HeaderRows:  countHeaderRows(lines, delimiter),
		Fingerprint: fingerprint(headers),
	}

	cfg.Source, cfg.Recognized = MatchInstitution(headers)
	if keyedSources[cfg.Source] {
		cfg.Shape = ShapeKeyed
	}

	return cfg, nil
}

// MatchInstitution matches normalized headers against the known institution
// signatures. Returns the generic source when nothing matches.
func MatchInstitution(headers []string) (transaction.Source, bool) {
	normalized := normalizeHeaders(headers)

	for _, source := range transaction.Sources() {
		if headersEqual(normalized, institutionHeaders[source]) {
			return source, true
		}
	}
	return transaction.SourceGeneric, false
}

// HeaderSignature returns the canonical header cells for an institution.
func HeaderSignature(source transaction.Source) []string {
	return institutionHeaders[source]
}

// IsHeaderRow reports whether the cells look like one of the known header
// signatures (used to flag duplicate header rows inside the data).
func IsHeaderRow(cells []string) bool {
	_, ok := MatchInstitution(cells)
	return ok
}

func normalizeHeaders(headers []string) []string {
	out := make([]string, len(headers))
	for i, h := range headers {
		out[i] = strings.Join(strings.Fields(strings.ToLower(h)), " ")
	}
	return out
}

func headersEqual(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range want {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

// decode strips a UTF-8 BOM and falls back to Latin-1 for non-UTF-8 input.
// Bytes that look binary (NUL runs) are rejected as undecodable.
func decode(data []byte) (string, error) {
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		data = data[3:]
	}

	if bytes.ContainsRune(data, 0x00) {
		return "", ErrDecoding
	}

	if utf8.Valid(data) {
		return string(data), nil
	}

	runes := make([]rune, len(data))
	for i, b := range data {
		runes[i] = rune(b)
	}
	return string(runes), nil
}

func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, "\r")
	}
	return lines
}

// findHeaderRow locates the first line whose cells contain statement header
// keywords, searching at most the first 20 lines past any metadata preamble.
func findHeaderRow(lines []string) (rune, int, error) {
	for i, line := range lines {
		if i > 20 {
			break
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		delimiter, count := detectDelimiter(line)
		if count < 1 {
			continue
		}

		cells, err := parseHeaderLine(line, delimiter)
		if err != nil {
			continue
		}
		if looksLikeHeader(cells) {
			return delimiter, i, nil
		}
	}
	return 0, 0, ErrNoHeadersFound
}

var headerKeywords = []string{
	"date", "amount", "payee", "description", "details", "particulars",
	"reference", "transaction details",
}

func looksLikeHeader(cells []string) bool {
	matches := 0
	for _, cell := range normalizeHeaders(cells) {
		for _, kw := range headerKeywords {
			if cell == kw {
				matches++
				break
			}
		}
	}
	return matches >= 2
}

func countHeaderRows(lines []string, delimiter rune) int {
	count := 0
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		cells, err := parseHeaderLine(line, delimiter)
		if err != nil {
			continue
		}
		if looksLikeHeader(cells) {
			count++
		}
	}
	return count
}

func parseHeaderLine(line string, delimiter rune) ([]string, error) {
	reader := csv.NewReader(strings.NewReader(line))
	reader.Comma = delimiter
	reader.LazyQuotes = true

	cells, err := reader.Read()
	if err != nil {
		return nil, err
	}
	for i, c := range cells {
		cells[i] = strings.TrimSpace(c)
	}
	return cells, nil
}

func detectDelimiter(line string) (rune, int) {
	delimiters := []rune{',', ';', '\t', '|'}
	bestDelimiter := rune(0)
	bestCount := 0
	for _, d := range delimiters {
		count := strings.Count(line, string(d))
		if count > bestCount {
			bestCount = count
			bestDelimiter = d
		}
	}
	return bestDelimiter, bestCount
}

// fingerprint hashes normalized header names so recurring exports from the
// same institution can be recognized across uploads.
func fingerprint(headers []string) string {
	var normalized []string
	for _, h := range headers {
		clean := strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				return unicode.ToLower(r)
			}
			return -1
		}, h)
		if clean != "" {
			normalized = append(normalized, clean)
		}
	}

	hash := sha256.Sum256([]byte(strings.Join(normalized, "|")))
	return hex.EncodeToString(hash[:])
}

// ReadRows parses all lines of a delimited file, header row included,
// without enforcing a fixed field count. Fully blank lines are preserved as
// empty rows so the processor can record them as skips with their original
// index; unreadable lines are returned separately by index.
func ReadRows(data []byte, delimiter rune) ([][]string, []int) {
	text, err := decode(data)
	if err != nil {
		return nil, nil
	}

	var rows [][]string
	var badLines []int

	for i, line := range splitLines(text) {
		if strings.TrimSpace(line) == "" {
			rows = append(rows, nil)
			continue
		}

		record, err := parseHeaderLine(line, delimiter)
		if err != nil {
			badLines = append(badLines, i)
			rows = append(rows, nil)
			continue
		}
		rows = append(rows, record)
	}

	// Trim trailing blank rows left by the file's final newline.
	for len(rows) > 0 && len(rows[len(rows)-1]) == 0 {
		rows = rows[:len(rows)-1]
	}
	return rows, badLines
}
