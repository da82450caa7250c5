package importer

import (
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerline/ccimport/internal/accounts"
)

func sheetFrom(name, data string) Sheet {
	return Sheet{Name: name, Rows: NewReader(strings.NewReader(data))}
}

func testdataSheet(t *testing.T, name string) Sheet {
	t.Helper()
	data, err := os.ReadFile("../../testdata/" + name)
	require.NoError(t, err)
	return sheetFrom(name, string(data))
}

func TestProcessSheet_EndToEnd(t *testing.T) {
	im := New(accounts.DefaultResolver(), nil, nil)
	txns, err := im.ProcessSheet(sheetFrom("chase9999_may.csv", "date,description,amount,memo\n2023-05-01,Coffee Shop,4.50,\n"))
	require.NoError(t, err)
	require.Len(t, txns, 1)

	assert.Equal(t, time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC), txns[0].Date)
	assert.Equal(t, "-4.50", txns[0].Amount.StringFixed(2))
	assert.Equal(t, "Coffee Shop", txns[0].Payee)
	assert.Equal(t, "chase_hyatt", txns[0].Account)
}

func TestProcessSheet_SeparateColumns(t *testing.T) {
	im := New(accounts.DefaultResolver(), nil, nil)
	data := "transaction date,post date,description,debit,credit\n2023-05-01,2023-05-02,Train,12.00,\n"
	txns, err := im.ProcessSheet(sheetFrom("chase9998_may.csv", data))
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, "12.00", txns[0].Amount.StringFixed(2))
	assert.Equal(t, time.Date(2023, 5, 2, 0, 0, 0, 0, time.UTC), txns[0].Date, "posted date is used")
}

func TestProcessSheet_Chase(t *testing.T) {
	im := New(accounts.DefaultResolver(), nil, nil)
	txns, err := im.ProcessSheet(testdataSheet(t, "chase9999_may.csv"))
	require.NoError(t, err)
	require.Len(t, txns, 4)

	assert.Equal(t, "4.50", txns[0].Amount.StringFixed(2))
	assert.Equal(t, 2, txns[0].Date.Day(), "post date")
	assert.Equal(t, "AMAZON MKTPLACE PMTS", txns[1].Payee)
	assert.Equal(t, "1204.99", txns[1].Amount.StringFixed(2))
	assert.Equal(t, "-500.00", txns[2].Amount.StringFixed(2))
	assert.Equal(t, "Joes Diner", txns[3].Payee)
	assert.Equal(t, "-3.25", txns[3].Amount.StringFixed(2))
	for _, txn := range txns {
		assert.Equal(t, "chase_hyatt", txn.Account)
	}
}

func TestProcessSheet_CapitalOne(t *testing.T) {
	im := New(accounts.DefaultResolver(), nil, nil)
	txns, err := im.ProcessSheet(testdataSheet(t, "capitalone.csv"))
	require.NoError(t, err)
	require.Len(t, txns, 3)

	assert.Equal(t, "250.00", txns[0].Amount.StringFixed(2))
	assert.Equal(t, "-250.00", txns[1].Amount.StringFixed(2))
	assert.Equal(t, "12.00", txns[2].Amount.StringFixed(2))
	assert.Equal(t, "c1_venture", txns[0].Account)
	assert.Equal(t, "HOTEL CHAIN", txns[0].Payee)
}

func TestProcessSheet_SkipsTitleRows(t *testing.T) {
	im := New(accounts.DefaultResolver(), nil, nil)
	sheet := testdataSheet(t, "export_20230531.csv")
	txns, err := im.ProcessSheet(sheet)
	require.NoError(t, err)
	require.Len(t, txns, 2)

	assert.Equal(t, "25.00", txns[0].Amount.StringFixed(2))
	assert.Equal(t, "-100.00", txns[1].Amount.StringFixed(2))
	assert.Equal(t, "pmcu_visa", txns[0].Account)
}

func TestProcessSheet_DropsUntrackedAccounts(t *testing.T) {
	im := New(accounts.DefaultResolver(), nil, nil)
	txns, err := im.ProcessSheet(testdataSheet(t, "boa_combined.csv"))
	require.NoError(t, err)
	require.Len(t, txns, 2)

	assert.Equal(t, "boa_cash", txns[0].Account)
	assert.Equal(t, "18.20", txns[0].Amount.StringFixed(2))
	assert.Equal(t, "boa_travel", txns[1].Account)
}

func TestProcessSheet_BOM(t *testing.T) {
	im := New(accounts.DefaultResolver(), nil, nil)
	txns, err := im.ProcessSheet(sheetFrom("chase9999_may.csv", "\ufeffdate,description,amount,memo\n2023-05-01,Coffee,-1.00,\n"))
	require.NoError(t, err)
	require.Len(t, txns, 1)
}

func TestProcessSheet_FailsFast(t *testing.T) {
	im := New(accounts.DefaultResolver(), nil, nil)
	data := "date,description,amount,memo\n2023-05-01,ok,-1.00,\n2023-05-02,bad,abc,\n2023-05-03,ok,-1.00,\n"
	txns, err := im.ProcessSheet(sheetFrom("chase9999_may.csv", data))
	assert.Nil(t, txns)
	var mre *MalformedRowError
	require.True(t, errors.As(err, &mre))
	assert.Contains(t, err.Error(), "chase9999_may.csv: record 3")
}

func TestProcessSheet_UnclassifiedAccount(t *testing.T) {
	im := New(accounts.DefaultResolver(), nil, nil)
	_, err := im.ProcessSheet(sheetFrom("unknown_bank_1234", "date,description,amount,memo\n2023-05-01,x,-1.00,\n"))
	var uae *accounts.UnclassifiedAccountError
	require.True(t, errors.As(err, &uae))
}

func TestProcessSheet_NoHeader(t *testing.T) {
	im := New(accounts.DefaultResolver(), nil, nil)
	_, err := im.ProcessSheet(sheetFrom("chase9999_may.csv", "a,b\nc,d,e\n"))
	var fie *FormatInferenceError
	require.True(t, errors.As(err, &fie))
}

func TestProcessSheet_AmbiguousDate(t *testing.T) {
	im := New(accounts.DefaultResolver(), nil, nil)
	_, err := im.ProcessSheet(sheetFrom("chase9999_may.csv", "trans date,value date,description,amount\n"))
	var fie *FormatInferenceError
	require.True(t, errors.As(err, &fie))
}

func TestProcessSheet_HeaderOnly(t *testing.T) {
	im := New(accounts.DefaultResolver(), nil, nil)
	txns, err := im.ProcessSheet(sheetFrom("chase9999_may.csv", "date,description,amount,memo\n"))
	require.NoError(t, err)
	assert.Empty(t, txns)
}

func TestInspect(t *testing.T) {
	im := New(accounts.DefaultResolver(), nil, nil)
	insp, err := im.Inspect(testdataSheet(t, "capitalone.csv"))
	require.NoError(t, err)

	assert.Equal(t, "card no.", insp.Header[2])
	assert.Equal(t, 2, insp.Layout.Account)
	assert.Equal(t, "HOTEL CHAIN", insp.Sample[3])
	require.NotNil(t, insp.Transaction)
	assert.Equal(t, "250.00", insp.Transaction.Amount.StringFixed(2))
	assert.False(t, insp.NotTracked)
}

func TestInspect_NotTracked(t *testing.T) {
	im := New(accounts.DefaultResolver(), nil, nil)
	data := "posted date,payee,amount,account name\n05/02/2023,PAYROLL,2000.00,Bank of America Adv Plus Banking\n"
	insp, err := im.Inspect(sheetFrom("boa.csv", data))
	require.NoError(t, err)
	assert.True(t, insp.NotTracked)
	assert.Nil(t, insp.Transaction)
}

func TestInspect_PartialOnError(t *testing.T) {
	im := New(accounts.DefaultResolver(), nil, nil)
	insp, err := im.Inspect(sheetFrom("mystery.csv", "date,description,amount,memo\n2023-05-01,x,1.00,\n"))
	require.Error(t, err)
	assert.Equal(t, 2, insp.Layout.Debit)
	assert.Len(t, insp.Sample, 4)
}

func TestProcessSheet_BadNotTrackedRowAborts(t *testing.T) {
	im := New(accounts.DefaultResolver(), nil, nil)
	data := "Posted Date,Payee,Amount,Account Name\n" +
		"NOTADATE,PAYROLL,abc,Bank of America Adv Plus Banking - 4321\n" +
		"05/01/2023,BOOK STORE,-18.20,Bank of America - Cash Rewards Visa - 1234\n"

	txns, err := im.ProcessSheet(sheetFrom("boa.csv", data))
	require.Error(t, err)
	assert.Nil(t, txns)
	assert.Contains(t, err.Error(), "record 2")

	var dpe *DateParseError
	assert.True(t, errors.As(err, &dpe))
}
