package accounts

import (
	"fmt"

	"github.com/ledgerline/ccimport/internal/model"
)

// UnknownAliasError is returned when a resolved account key has no
// credit-card account in the store.
type UnknownAliasError struct {
	Alias string
}

func (e *UnknownAliasError) Error() string {
	return fmt.Sprintf("account %q is not a credit card account in the store", e.Alias)
}

// Directory is the store's alias -> account ID map, restricted to credit
// card accounts.
type Directory struct {
	byAlias map[string]int
	byID    map[int]string
}

// NewDirectory indexes the credit card accounts in accts.
func NewDirectory(accts []model.Account) *Directory {
	d := &Directory{
		byAlias: make(map[string]int),
		byID:    make(map[int]string),
	}
	for _, a := range accts {
		if a.Type != model.AccountTypeCreditCard {
			continue
		}
		d.byAlias[a.Alias] = a.ID
		d.byID[a.ID] = a.Alias
	}
	return d
}

// ID returns the store ID for alias.
func (d *Directory) ID(alias string) (int, error) {
	id, ok := d.byAlias[alias]
	if !ok {
		return 0, &UnknownAliasError{Alias: alias}
	}
	return id, nil
}

// Alias returns the alias for a store ID, or "" if unknown.
func (d *Directory) Alias(id int) string {
	return d.byID[id]
}

// Len returns the number of indexed accounts.
func (d *Directory) Len() int {
	return len(d.byAlias)
}
