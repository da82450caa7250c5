package importer

import "strings"

// NoColumn marks a role that the header does not provide.
const NoColumn = -1

// Layout assigns semantic roles to column positions. It is derived once
// from a sheet's header row.
//
// Debit and Credit are equal when the institution uses one signed amount
// column, distinct when it uses separate unsigned columns.
type Layout struct {
	Date    int
	Payee   int
	Debit   int
	Credit  int
	Account int
}

// SharedAmount reports whether debits and credits share one column.
func (l Layout) SharedAmount() bool { return l.Debit == l.Credit }

// HasAccount reports whether the sheet names the account per row. When it
// does not, the account is inferred from the file name.
func (l Layout) HasAccount() bool { return l.Account != NoColumn }

// ClassifyHeader infers a Layout from a header row by keyword matching.
//
// Each role is matched independently, so later columns overwrite earlier
// ones for payee, debit, credit and account. An "amount" column sets both
// debit and credit. This is a heuristic tuned to known institutions, and
// overlapping vocabularies are resolved by column order, not by score.
func ClassifyHeader(header []string) (Layout, error) {
	cols := make([]string, len(header))
	for i, h := range header {
		cols[i] = strings.ToLower(strings.TrimSpace(h))
	}

	date, err := dateColumn(cols)
	if err != nil {
		return Layout{}, err
	}

	l := Layout{
		Date:    date,
		Payee:   NoColumn,
		Debit:   NoColumn,
		Credit:  NoColumn,
		Account: NoColumn,
	}
	for i, col := range cols {
		if strings.Contains(col, "payee") || strings.Contains(col, "description") {
			l.Payee = i
		}
		if strings.Contains(col, "debit") {
			l.Debit = i
		}
		if strings.Contains(col, "credit") {
			l.Credit = i
		}
		if strings.Contains(col, "amount") {
			l.Debit = i
			l.Credit = i
		}
		if strings.Contains(col, "account") || strings.Contains(col, "card no") {
			l.Account = i
		}
	}

	if l.Debit == NoColumn && l.Credit == NoColumn {
		return Layout{}, &FormatInferenceError{Header: cols, Reason: "no amount, debit or credit column"}
	}
	return l, nil
}

// dateColumn picks the single date column. With several, the posted date
// wins; anything still ambiguous is an error.
func dateColumn(cols []string) (int, error) {
	var candidates []int
	for i, col := range cols {
		if strings.Contains(col, "date") {
			candidates = append(candidates, i)
		}
	}

	switch len(candidates) {
	case 0:
		return 0, &FormatInferenceError{Header: cols, Reason: "no date column"}
	case 1:
		return candidates[0], nil
	}

	var posted []int
	for _, i := range candidates {
		if strings.Contains(cols[i], "post") {
			posted = append(posted, i)
		}
	}
	if len(posted) != 1 {
		return 0, &FormatInferenceError{Header: cols, Reason: "multiple date columns, cannot pick one"}
	}
	return posted[0], nil
}
