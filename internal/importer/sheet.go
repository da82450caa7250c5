package importer

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledgerline/ccimport/internal/model"
)

// headerMinFields is exceeded by the first row that is treated as the
// header. Title and metadata rows above it are shorter.
const headerMinFields = 3

// RowReader yields CSV records until io.EOF. *csv.Reader satisfies it.
type RowReader interface {
	Read() ([]string, error)
}

// Sheet is one CSV export: its file name and its rows.
type Sheet struct {
	Name string
	Rows RowReader
}

// ProcessSheet locates the header row, classifies it, and normalizes
// every following row. Rows for untracked accounts are dropped. The first
// failing row aborts the whole sheet.
func (im *Importer) ProcessSheet(s Sheet) ([]model.Transaction, error) {
	header, line, err := findHeader(s.Rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Name, err)
	}

	layout, err := ClassifyHeader(header)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Name, err)
	}
	im.logger.Debug("classified header", "file", s.Name, "record", line, "layout", layout)

	var (
		txns    []model.Transaction
		skipped int
	)
	for {
		row, err := s.Rows.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%s: reading record %d: %w", s.Name, line, err)
		}

		txn, ok, err := im.NormalizeRow(row, layout, s.Name)
		if err != nil {
			return nil, fmt.Errorf("%s: record %d: %w", s.Name, line, err)
		}
		if !ok {
			skipped++
			continue
		}
		txns = append(txns, txn)
	}

	im.logger.Debug("processed sheet", "file", s.Name, "transactions", len(txns), "not_tracked", skipped)
	return txns, nil
}

// findHeader skips rows until one has more than headerMinFields fields and
// returns it lower-cased with its 1-based record number.
func findHeader(rows RowReader) ([]string, int, error) {
	line := 0
	for {
		row, err := rows.Read()
		if errors.Is(err, io.EOF) {
			return nil, line, &FormatInferenceError{Reason: fmt.Sprintf("no header row with more than %d columns", headerMinFields)}
		}
		line++
		if err != nil {
			return nil, line, fmt.Errorf("reading record %d: %w", line, err)
		}
		if len(row) <= headerMinFields {
			continue
		}
		header := make([]string, len(row))
		for i, col := range row {
			header[i] = strings.ToLower(col)
		}
		return header, line, nil
	}
}

// Inspection describes how a sheet would be imported, for checking a new
// institution's export before relying on it.
type Inspection struct {
	Header      []string
	Layout      Layout
	Classified  bool
	Sample      []string
	Transaction *model.Transaction
	NotTracked  bool
}

// Inspect classifies the sheet's header and normalizes only its first
// data row. The returned Inspection holds whatever was determined before
// any error.
func (im *Importer) Inspect(s Sheet) (*Inspection, error) {
	insp := &Inspection{}

	header, _, err := findHeader(s.Rows)
	if err != nil {
		return insp, fmt.Errorf("%s: %w", s.Name, err)
	}
	insp.Header = header

	insp.Layout, err = ClassifyHeader(header)
	if err != nil {
		return insp, fmt.Errorf("%s: %w", s.Name, err)
	}
	insp.Classified = true

	row, err := s.Rows.Read()
	if errors.Is(err, io.EOF) {
		return insp, nil
	}
	if err != nil {
		return insp, fmt.Errorf("%s: %w", s.Name, err)
	}
	insp.Sample = row

	txn, ok, err := im.NormalizeRow(row, insp.Layout, s.Name)
	if err != nil {
		return insp, fmt.Errorf("%s: %w", s.Name, err)
	}
	if !ok {
		insp.NotTracked = true
		return insp, nil
	}
	insp.Transaction = &txn
	return insp, nil
}
