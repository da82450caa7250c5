// Package csvstore keeps accounts and committed credit card transactions
// in plain CSV files under one directory.
package csvstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ledgerline/ccimport/internal/accounts"
	"github.com/ledgerline/ccimport/internal/model"
)

const (
	accountsFile     = "accounts.csv"
	transactionsFile = "cc-transactions.csv"
)

// Store is a directory holding accounts.csv and cc-transactions.csv.
//
// Existence checks run against a snapshot taken on first use, so a whole
// batch is checked against the same contents.
type Store struct {
	dir      string
	snapshot map[model.Identity]struct{}
}

// New returns a Store rooted at dir. Nothing is read until first use.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the store directory.
func (s *Store) Dir() string { return s.dir }

// Init creates the store directory with the given accounts and an empty
// transactions file. Existing files are left alone.
func Init(dir string, accts []model.Account) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating store dir: %w", err)
	}

	acctPath := filepath.Join(dir, accountsFile)
	if _, err := os.Stat(acctPath); errors.Is(err, fs.ErrNotExist) {
		var buf bytes.Buffer
		if err := accounts.WriteAccounts(&buf, accts); err != nil {
			return fmt.Errorf("writing accounts: %w", err)
		}
		if err := os.WriteFile(acctPath, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("writing accounts: %w", err)
		}
	}

	txnPath := filepath.Join(dir, transactionsFile)
	if _, err := os.Stat(txnPath); errors.Is(err, fs.ErrNotExist) {
		if err := os.WriteFile(txnPath, []byte(Header+"\n"), 0o644); err != nil {
			return fmt.Errorf("writing transactions: %w", err)
		}
	}
	return nil
}

// Accounts returns every account in accounts.csv.
func (s *Store) Accounts(_ context.Context) ([]model.Account, error) {
	path := filepath.Join(s.dir, accountsFile)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening accounts %s: %w", path, err)
	}
	defer f.Close()

	accts, err := accounts.ReadAccounts(f)
	if err != nil {
		return nil, fmt.Errorf("reading accounts %s: %w", path, err)
	}
	return accts, nil
}

// CreditCardAccounts returns the accounts of type Credit Card.
func (s *Store) CreditCardAccounts(ctx context.Context) ([]model.Account, error) {
	all, err := s.Accounts(ctx)
	if err != nil {
		return nil, err
	}
	var cards []model.Account
	for _, a := range all {
		if a.Type == model.AccountTypeCreditCard {
			cards = append(cards, a)
		}
	}
	return cards, nil
}

// Records returns every committed record.
func (s *Store) Records(_ context.Context) ([]model.Record, error) {
	path := filepath.Join(s.dir, transactionsFile)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening transactions %s: %w", path, err)
	}
	defer f.Close()

	recs, err := ReadRecords(f)
	if err != nil {
		return nil, fmt.Errorf("reading transactions %s: %w", path, err)
	}
	return recs, nil
}

// Exists reports whether an identical record has been committed.
func (s *Store) Exists(ctx context.Context, rec model.Record) (bool, error) {
	if s.snapshot == nil {
		recs, err := s.Records(ctx)
		if err != nil {
			return false, err
		}
		s.snapshot = make(map[model.Identity]struct{}, len(recs))
		for _, r := range recs {
			s.snapshot[r.Identity()] = struct{}{}
		}
	}
	_, ok := s.snapshot[rec.Identity()]
	return ok, nil
}

// Commit appends recs to cc-transactions.csv in a single write.
func (s *Store) Commit(_ context.Context, recs []model.Record) error {
	if len(recs) == 0 {
		return nil
	}

	path := filepath.Join(s.dir, transactionsFile)
	isNew := false
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		isNew = true
	}

	var buf bytes.Buffer
	var err error
	if isNew {
		err = WriteRecords(&buf, recs)
	} else {
		err = AppendRecords(&buf, recs)
	}
	if err != nil {
		return fmt.Errorf("encoding records: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening transactions: %w", err)
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		f.Close()
		return fmt.Errorf("appending transactions: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing transactions: %w", err)
	}

	if s.snapshot != nil {
		for _, r := range recs {
			s.snapshot[r.Identity()] = struct{}{}
		}
	}
	return nil
}

// Close implements io.Closer; the store holds no open files.
func (s *Store) Close() error { return nil }
