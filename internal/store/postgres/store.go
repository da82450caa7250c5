// Package postgres stores accounts and committed credit card transactions
// in PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq" // postgres driver

	"github.com/ledgerline/ccimport/internal/model"
)

// Schema creates the tables the store reads and writes.
const Schema = `
CREATE TABLE IF NOT EXISTS account_types (
	id   SERIAL PRIMARY KEY,
	name TEXT NOT NULL UNIQUE
);
CREATE TABLE IF NOT EXISTS accounts (
	id      SERIAL PRIMARY KEY,
	alias   TEXT NOT NULL UNIQUE,
	name    TEXT NOT NULL DEFAULT '',
	type_id INTEGER NOT NULL REFERENCES account_types(id)
);
CREATE TABLE IF NOT EXISTS cc_transactions (
	id               BIGSERIAL PRIMARY KEY,
	transaction_date DATE NOT NULL,
	amount           NUMERIC(14, 2) NOT NULL,
	payee            TEXT NOT NULL,
	account_id       INTEGER NOT NULL REFERENCES accounts(id)
);
CREATE INDEX IF NOT EXISTS cc_transactions_identity
	ON cc_transactions (transaction_date, amount, account_id);
`

const (
	selectAccountsByType = `SELECT a.id, a.alias, t.name, a.name
	FROM accounts a JOIN account_types t ON t.id = a.type_id
	WHERE t.name = $1 ORDER BY a.id`

	selectTransactionExists = `SELECT 1 FROM cc_transactions
	WHERE transaction_date = $1 AND amount = $2 AND payee = $3 AND account_id = $4 LIMIT 1`

	insertAccount = `INSERT INTO accounts (alias, name, type_id)
	SELECT $1, $2, id FROM account_types WHERE name = $3
	ON CONFLICT (alias) DO NOTHING`

	insertTransaction = `INSERT INTO cc_transactions (transaction_date, amount, payee, account_id)
	VALUES ($1, $2, $3, $4)`
)

// Store reads and writes through a *sql.DB.
type Store struct {
	db *sql.DB
}

// New wraps an open database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open connects to dsn with the lib/pq driver and checks the connection.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	return New(db), nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// EnsureSchema creates missing tables and seeds the known account types.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	for _, t := range []model.AccountType{model.AccountTypeCreditCard, model.AccountTypeChecking, model.AccountTypeSavings} {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO account_types (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, string(t)); err != nil {
			return fmt.Errorf("seeding account type %q: %w", t, err)
		}
	}
	return nil
}

// SeedAccounts inserts accts by alias, leaving existing aliases alone.
// Store IDs are assigned by the database.
func (s *Store) SeedAccounts(ctx context.Context, accts []model.Account) error {
	for _, a := range accts {
		if _, err := s.db.ExecContext(ctx, insertAccount, a.Alias, a.Name, string(a.Type)); err != nil {
			return fmt.Errorf("seeding account %q: %w", a.Alias, err)
		}
	}
	return nil
}

// CreditCardAccounts returns the accounts whose type is Credit Card.
func (s *Store) CreditCardAccounts(ctx context.Context) ([]model.Account, error) {
	rows, err := s.db.QueryContext(ctx, selectAccountsByType, string(model.AccountTypeCreditCard))
	if err != nil {
		return nil, fmt.Errorf("querying accounts: %w", err)
	}
	defer rows.Close()

	var accts []model.Account
	for rows.Next() {
		var (
			a        model.Account
			typeName string
		)
		if err := rows.Scan(&a.ID, &a.Alias, &typeName, &a.Name); err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}
		a.Type = model.AccountType(typeName)
		accts = append(accts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading accounts: %w", err)
	}
	return accts, nil
}

// Exists reports whether an identical transaction is already stored.
func (s *Store) Exists(ctx context.Context, rec model.Record) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, selectTransactionExists,
		rec.Date, rec.Amount, rec.Payee, rec.AccountID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking transaction: %w", err)
	}
	return true, nil
}

// Commit inserts recs in one database transaction. Either all rows are
// stored or none are.
func (s *Store) Commit(ctx context.Context, recs []model.Record) (err error) {
	if len(recs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning commit: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for i, rec := range recs {
		if _, err = tx.ExecContext(ctx, insertTransaction,
			rec.Date, rec.Amount, rec.Payee, rec.AccountID); err != nil {
			return fmt.Errorf("inserting record %d: %w", i, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing: %w", err)
	}
	return nil
}
