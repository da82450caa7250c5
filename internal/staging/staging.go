// Package staging assembles one import run: it normalizes every sheet,
// maps account keys to store IDs, and drops records the store already
// holds. Nothing is committed here.
package staging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/ledgerline/ccimport/internal/accounts"
	"github.com/ledgerline/ccimport/internal/dedup"
	"github.com/ledgerline/ccimport/internal/importer"
	"github.com/ledgerline/ccimport/internal/model"
)

// ErrNoCardAccounts is returned when transactions were read but the store
// holds no credit card accounts to assign them to.
var ErrNoCardAccounts = errors.New("store has no credit card accounts; run ccimport init or add accounts")

// Source is the read side of the store.
type Source interface {
	dedup.Checker
	CreditCardAccounts(ctx context.Context) ([]model.Account, error)
}

// Batch is the outcome of staging a run.
type Batch struct {
	Files      []string
	Parsed     int
	Duplicates int
	Records    []model.Record

	dir *accounts.Directory
}

// Stager runs sheets through an importer and a store.
type Stager struct {
	importer *importer.Importer
	source   Source
	logger   *log.Logger
}

// New creates a Stager. A nil logger discards output.
func New(im *importer.Importer, source Source, logger *log.Logger) *Stager {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Stager{importer: im, source: source, logger: logger}
}

// Stage processes all sheets, then resolves and deduplicates the combined
// result. Any failure aborts the run and no partial batch is returned.
func (s *Stager) Stage(ctx context.Context, sheets []importer.Sheet) (*Batch, error) {
	b := &Batch{}

	var txns []model.Transaction
	for _, sheet := range sheets {
		got, err := s.importer.ProcessSheet(sheet)
		if err != nil {
			return nil, err
		}
		s.logger.Info("read sheet", "file", sheet.Name, "transactions", len(got))
		b.Files = append(b.Files, sheet.Name)
		txns = append(txns, got...)
	}
	b.Parsed = len(txns)

	cards, err := s.source.CreditCardAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading accounts: %w", err)
	}
	b.dir = accounts.NewDirectory(cards)
	if b.dir.Len() == 0 && len(txns) > 0 {
		return nil, ErrNoCardAccounts
	}
	s.logger.Debug("loaded accounts", "credit_cards", b.dir.Len())

	recs, err := AssignAccountIDs(txns, b.dir)
	if err != nil {
		return nil, err
	}

	fresh, err := dedup.Filter(ctx, recs, s.source)
	if err != nil {
		return nil, fmt.Errorf("filtering duplicates: %w", err)
	}
	b.Records = fresh
	b.Duplicates = len(recs) - len(fresh)

	s.logger.Info("staged batch", "files", len(b.Files), "parsed", b.Parsed, "duplicates", b.Duplicates, "new", len(b.Records))
	return b, nil
}

// AssignAccountIDs maps each transaction's account key to its store ID.
// A key with no credit card account in the store is an error.
func AssignAccountIDs(txns []model.Transaction, dir *accounts.Directory) ([]model.Record, error) {
	recs := make([]model.Record, 0, len(txns))
	for _, txn := range txns {
		id, err := dir.ID(txn.Account)
		if err != nil {
			return nil, err
		}
		recs = append(recs, model.Record{
			Date:      txn.Date,
			Amount:    txn.Amount,
			Payee:     txn.Payee,
			AccountID: id,
			Account:   txn.Account,
		})
	}
	return recs, nil
}

// Sorted returns the records ordered for review: by account ID, then
// amount, both descending. Ties keep input order.
func (b *Batch) Sorted() []model.Record {
	out := make([]model.Record, len(b.Records))
	copy(out, b.Records)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].AccountID != out[j].AccountID {
			return out[i].AccountID > out[j].AccountID
		}
		return out[i].Amount.GreaterThan(out[j].Amount)
	})
	return out
}

// Alias returns the account alias for a store ID.
func (b *Batch) Alias(id int) string {
	if b.dir == nil {
		return ""
	}
	return b.dir.Alias(id)
}
