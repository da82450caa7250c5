package csvstore

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerline/ccimport/internal/model"
)

// Header is the CSV header for cc-transactions.csv.
const Header = "transaction_date,amount,payee,account_id"

const (
	numFields  = 4
	dateFormat = "2006-01-02"
	colDate    = 0
	colAmount  = 1
	colPayee   = 2
	colAcctID  = 3
)

// ReadRecords reads all records from a cc-transactions.csv reader.
func ReadRecords(r io.Reader) ([]model.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading transactions CSV: %w", err)
	}

	if len(rows) == 0 {
		return nil, nil
	}

	// Skip header row.
	var recs []model.Record
	for i, row := range rows[1:] {
		rec, err := UnmarshalRecord(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// WriteRecords writes records including the header.
func WriteRecords(w io.Writer, recs []model.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	return AppendRecords(w, recs)
}

// AppendRecords writes records without a header.
func AppendRecords(w io.Writer, recs []model.Record) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	for i, rec := range recs {
		if err := cw.Write(MarshalRecord(rec)); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}
	return cw.Error()
}

// MarshalRecord converts a Record to a CSV row. The alias is not stored.
func MarshalRecord(rec model.Record) []string {
	row := make([]string, numFields)
	row[colDate] = rec.Date.Format(dateFormat)
	row[colAmount] = rec.Amount.String()
	row[colPayee] = rec.Payee
	row[colAcctID] = strconv.Itoa(rec.AccountID)
	return row
}

// UnmarshalRecord converts a CSV row to a Record.
func UnmarshalRecord(row []string) (model.Record, error) {
	if len(row) != numFields {
		return model.Record{}, fmt.Errorf("expected %d fields, got %d", numFields, len(row))
	}

	date, err := time.Parse(dateFormat, row[colDate])
	if err != nil {
		return model.Record{}, fmt.Errorf("parsing transaction_date %q: %w", row[colDate], err)
	}

	amount, err := decimal.NewFromString(row[colAmount])
	if err != nil {
		return model.Record{}, fmt.Errorf("parsing amount %q: %w", row[colAmount], err)
	}

	accountID, err := strconv.Atoi(row[colAcctID])
	if err != nil {
		return model.Record{}, fmt.Errorf("parsing account_id %q: %w", row[colAcctID], err)
	}

	return model.Record{
		Date:      date,
		Amount:    amount,
		Payee:     row[colPayee],
		AccountID: accountID,
	}, nil
}
