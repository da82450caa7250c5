package accounts

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/ledgerline/ccimport/internal/model"
)

// Header is the CSV header for accounts.csv.
var Header = []string{"account_id", "alias", "account_type", "name"}

const (
	numFields = 4
	colID     = 0
	colAlias  = 1
	colType   = 2
	colName   = 3
)

// ReadAccounts reads accounts.csv. IDs and aliases must be unique, since
// the store maps between them in both directions.
func ReadAccounts(r io.Reader) ([]model.Account, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading accounts header: %w", err)
	}
	if !slices.Equal(header, Header) {
		return nil, fmt.Errorf("unexpected accounts header %v, want %v", header, Header)
	}

	var (
		accts   []model.Account
		ids     = make(map[int]bool)
		aliases = make(map[string]bool)
	)
	for row := 2; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading accounts CSV: %w", err)
		}
		acct, err := UnmarshalAccount(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		if ids[acct.ID] {
			return nil, fmt.Errorf("row %d: duplicate account_id %d", row, acct.ID)
		}
		if aliases[acct.Alias] {
			return nil, fmt.Errorf("row %d: duplicate alias %q", row, acct.Alias)
		}
		ids[acct.ID] = true
		aliases[acct.Alias] = true
		accts = append(accts, acct)
	}
	return accts, nil
}

// WriteAccounts writes accounts.csv.
func WriteAccounts(w io.Writer, accts []model.Account) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, acct := range accts {
		if err := cw.Write(MarshalAccount(acct)); err != nil {
			return fmt.Errorf("writing account %q: %w", acct.Alias, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalAccount converts an Account to a CSV row.
func MarshalAccount(acct model.Account) []string {
	return []string{
		colID:    strconv.Itoa(acct.ID),
		colAlias: acct.Alias,
		colType:  string(acct.Type),
		colName:  acct.Name,
	}
}

// UnmarshalAccount converts a CSV row to an Account.
func UnmarshalAccount(record []string) (model.Account, error) {
	if len(record) != numFields {
		return model.Account{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	id, err := strconv.Atoi(record[colID])
	if err != nil {
		return model.Account{}, fmt.Errorf("parsing account_id %q: %w", record[colID], err)
	}
	if record[colAlias] == "" {
		return model.Account{}, fmt.Errorf("account %d: empty alias", id)
	}

	return model.Account{
		ID:    id,
		Alias: record[colAlias],
		Type:  model.AccountType(record[colType]),
		Name:  record[colName],
	}, nil
}
