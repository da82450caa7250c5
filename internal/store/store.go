// Package store selects the persistent store backing an import run.
package store

import (
	"context"
	"fmt"

	"github.com/ledgerline/ccimport/internal/config"
	"github.com/ledgerline/ccimport/internal/model"
	"github.com/ledgerline/ccimport/internal/store/csvstore"
	"github.com/ledgerline/ccimport/internal/store/postgres"
)

// Store is what an import run needs from persistence: the credit card
// account directory, an exact-match existence check, and an all-or-nothing
// commit.
type Store interface {
	CreditCardAccounts(ctx context.Context) ([]model.Account, error)
	Exists(ctx context.Context, rec model.Record) (bool, error)
	Commit(ctx context.Context, recs []model.Record) error
	Close() error
}

var (
	_ Store = (*csvstore.Store)(nil)
	_ Store = (*postgres.Store)(nil)
)

// Open returns the store configured in cfg.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.Store.Driver {
	case config.DriverCSV:
		return csvstore.New(cfg.StoreDir()), nil
	case config.DriverPostgres:
		return postgres.Open(ctx, cfg.DSN())
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
