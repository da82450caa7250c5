package importer

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"

	"github.com/ledgerline/ccimport/internal/accounts"
	"github.com/ledgerline/ccimport/internal/model"
)

// AccountResolver maps a raw account token to a stable account key or
// accounts.NotTracked. *accounts.Resolver satisfies it.
type AccountResolver interface {
	Resolve(token string) (string, error)
}

// Importer turns institution CSV sheets into canonical transactions.
type Importer struct {
	accounts AccountResolver
	dates    DateParser
	logger   *log.Logger
}

// New creates an Importer. A nil dates uses FreeformDates; a nil logger
// discards output.
func New(resolver AccountResolver, dates DateParser, logger *log.Logger) *Importer {
	if dates == nil {
		dates = FreeformDates{}
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Importer{accounts: resolver, dates: dates, logger: logger}
}

// NormalizeRow converts one data row. source is the sheet's file name and
// is used as the account token when the layout has no account column.
// ok is false when the row belongs to an account that is not tracked.
// Every cell is validated before the account is resolved, so a bad row
// fails even when its account would be dropped.
func (im *Importer) NormalizeRow(row []string, layout Layout, source string) (txn model.Transaction, ok bool, err error) {
	dateCell, err := cell(row, layout.Date)
	if err != nil {
		return model.Transaction{}, false, err
	}
	date, err := im.dates.ParseDate(dateCell)
	if err != nil {
		var dpe *DateParseError
		if !errors.As(err, &dpe) {
			err = &DateParseError{Value: dateCell, Err: err}
		}
		return model.Transaction{}, false, err
	}

	amount, err := Amount(row, layout)
	if err != nil {
		return model.Transaction{}, false, err
	}

	payee, err := cell(row, layout.Payee)
	if err != nil {
		return model.Transaction{}, false, err
	}

	account, err := im.account(row, layout, source)
	if err != nil {
		return model.Transaction{}, false, err
	}
	if account == accounts.NotTracked {
		return model.Transaction{}, false, nil
	}

	return model.Transaction{
		Date:    date,
		Amount:  amount,
		Payee:   CleanPayee(payee),
		Account: account,
	}, true, nil
}

func (im *Importer) account(row []string, layout Layout, source string) (string, error) {
	token := source
	if layout.HasAccount() {
		c, err := cell(row, layout.Account)
		if err != nil {
			return "", err
		}
		token = c
	}
	return im.accounts.Resolve(token)
}

// Amount extracts the canonical amount from a row: positive for a charge,
// negative for a credit, refund or payment.
//
// Single-column institutions export charges as negative numbers, so the
// cleaned value is negated. Separate-column institutions export unsigned
// magnitudes; a debit is prefixed with a minus sign before the same final
// negation, which leaves debits positive and credits negative.
func Amount(row []string, layout Layout) (decimal.Decimal, error) {
	var raw string
	if layout.SharedAmount() {
		c, err := cell(row, layout.Debit)
		if err != nil {
			return decimal.Decimal{}, err
		}
		raw = c
	} else {
		debit, err := cell(row, layout.Debit)
		if err != nil {
			return decimal.Decimal{}, err
		}
		credit, err := cell(row, layout.Credit)
		if err != nil {
			return decimal.Decimal{}, err
		}

		switch {
		case debit != "" && credit != "":
			return decimal.Decimal{}, &MalformedRowError{Row: row, Reason: "both debit and credit are set"}
		case debit != "":
			if strings.HasPrefix(debit, "-") {
				return decimal.Decimal{}, &MalformedRowError{Row: row, Reason: fmt.Sprintf("debit %q is negative in a separate debit column", debit)}
			}
			raw = "-" + debit
		case credit != "":
			if strings.HasPrefix(credit, "-") {
				return decimal.Decimal{}, &MalformedRowError{Row: row, Reason: fmt.Sprintf("credit %q is negative in a separate credit column", credit)}
			}
			raw = credit
		default:
			return decimal.Decimal{}, &MalformedRowError{Row: row, Reason: "neither debit nor credit is set"}
		}
	}

	value, err := decimal.NewFromString(cleanAmount(raw))
	if err != nil {
		return decimal.Decimal{}, &MalformedRowError{Row: row, Reason: fmt.Sprintf("parsing amount %q", raw), Err: err}
	}
	if !value.Equal(value.Round(amountPlaces)) {
		return decimal.Decimal{}, &MalformedRowError{Row: row, Reason: fmt.Sprintf("amount %q has fractions of a cent", raw)}
	}
	return value.Neg(), nil
}

// amountPlaces is the precision stores keep amounts at.
const amountPlaces = 2

// cleanAmount strips currency symbols and thousands separators and turns
// accounting parentheses into a leading minus.
func cleanAmount(s string) string {
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	if strings.Contains(s, "(") && strings.Contains(s, ")") {
		s = strings.ReplaceAll(s, "(", "")
		s = strings.ReplaceAll(s, ")", "")
		s = "-" + s
	}
	return strings.TrimSpace(s)
}

var payeeStripper = strings.NewReplacer(`"`, "", "'", "", ";", "")

// CleanPayee collapses whitespace and removes quote and semicolon
// characters.
func CleanPayee(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return payeeStripper.Replace(s)
}

// cell returns the trimmed value at col, "" for NoColumn.
func cell(row []string, col int) (string, error) {
	if col == NoColumn {
		return "", nil
	}
	if col < 0 || col >= len(row) {
		return "", &MalformedRowError{Row: row, Reason: fmt.Sprintf("row has %d fields, need column %d", len(row), col)}
	}
	return strings.TrimSpace(row[col]), nil
}
