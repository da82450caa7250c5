package accounts

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerline/ccimport/internal/model"
)

func TestDirectory(t *testing.T) {
	d := NewDirectory([]model.Account{
		{ID: 1, Alias: "chase_hyatt", Type: model.AccountTypeCreditCard},
		{ID: 2, Alias: "boa_cash", Type: model.AccountTypeCreditCard},
		{ID: 3, Alias: "boa_checking", Type: model.AccountTypeChecking},
	})

	assert.Equal(t, 2, d.Len())

	id, err := d.ID("boa_cash")
	require.NoError(t, err)
	assert.Equal(t, 2, id)
	assert.Equal(t, "boa_cash", d.Alias(2))
	assert.Equal(t, "", d.Alias(3))

	_, err = d.ID("boa_checking")
	var unknown *UnknownAliasError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "boa_checking", unknown.Alias)
}
