// Package dedup drops records that are already in the store.
package dedup

import (
	"context"
	"fmt"

	"github.com/ledgerline/ccimport/internal/model"
)

// Checker reports whether a record with the same date, amount, payee and
// account ID is already stored.
type Checker interface {
	Exists(ctx context.Context, rec model.Record) (bool, error)
}

// Filter returns the records that the checker does not already hold, in
// their input order. The whole batch must be assembled before calling
// Filter and nothing may be committed until it returns.
func Filter(ctx context.Context, recs []model.Record, checker Checker) ([]model.Record, error) {
	var fresh []model.Record
	for i, rec := range recs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		exists, err := checker.Exists(ctx, rec)
		if err != nil {
			return nil, fmt.Errorf("checking record %d (%s %s %q): %w",
				i, rec.Date.Format("2006-01-02"), rec.Amount.StringFixed(2), rec.Payee, err)
		}
		if !exists {
			fresh = append(fresh, rec)
		}
	}
	return fresh, nil
}
