package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is one normalized row from an institution's CSV export.
type Transaction struct {
	Date    time.Time       // calendar date, UTC midnight
	Amount  decimal.Decimal // positive = charge, negative = credit/refund/payment
	Payee   string
	Account string // stable account key, e.g. "chase_hyatt"
}

// Record is a Transaction whose account key has been resolved to the
// store's numeric account ID. This is the shape that is checked for
// duplicates and committed.
type Record struct {
	Date      time.Time
	Amount    decimal.Decimal
	Payee     string
	AccountID int
	Account   string // alias kept for display
}

// Identity is the comparable duplicate-detection key of a Record: date,
// amount, payee and account ID, all exact. Amounts that differ only in
// trailing zeros share an identity.
type Identity struct {
	Date      string
	Amount    string
	Payee     string
	AccountID int
}

// Identity returns r's duplicate-detection key.
func (r Record) Identity() Identity {
	return Identity{
		Date:      r.Date.Format(time.DateOnly),
		Amount:    r.Amount.String(),
		Payee:     r.Payee,
		AccountID: r.AccountID,
	}
}

// SameAs reports whether r and o share an Identity.
func (r Record) SameAs(o Record) bool {
	return r.Identity() == o.Identity()
}
