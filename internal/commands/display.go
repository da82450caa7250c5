package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/ledgerline/ccimport/internal/importer"
	"github.com/ledgerline/ccimport/internal/model"
	"github.com/ledgerline/ccimport/internal/staging"
)

const dateLayout = "2006-01-02"

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	chargeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	creditStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

// printBatch writes the staged records as date, amount, payee, alias rows.
func printBatch(w io.Writer, b *staging.Batch) {
	recs := b.Sorted()

	payeeWidth := len("payee")
	for _, r := range recs {
		payeeWidth = max(payeeWidth, len(r.Payee))
	}

	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%-10s  %12s  %-*s  %s", "date", "amount", payeeWidth, "payee", "account")))
	for _, r := range recs {
		amount := fmt.Sprintf("%12s", r.Amount.StringFixed(2))
		amount = amountStyle(r.Amount).Render(amount)
		fmt.Fprintf(w, "%s  %s  %-*s  %s\n", r.Date.Format(dateLayout), amount, payeeWidth, r.Payee, b.Alias(r.AccountID))
	}

	fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("%d new, %d duplicate, %d parsed from %d file(s)",
		len(b.Records), b.Duplicates, b.Parsed, len(b.Files))))
}

// amountStyle colors charges (positive) and credits (negative) apart.
func amountStyle(amount decimal.Decimal) lipgloss.Style {
	if amount.IsNegative() {
		return creditStyle
	}
	return chargeStyle
}

// printInspection writes what the importer made of one sheet.
func printInspection(w io.Writer, name string, insp *importer.Inspection) {
	fmt.Fprintln(w, headerStyle.Render(name))
	if insp == nil {
		return
	}
	if len(insp.Header) > 0 {
		cols := make([]string, len(insp.Header))
		for i, h := range insp.Header {
			cols[i] = fmt.Sprintf("%d:%s", i, h)
		}
		fmt.Fprintf(w, "  header:  %s\n", strings.Join(cols, " "))
	}
	if insp.Classified {
		fmt.Fprintf(w, "  layout:  %s\n", describeLayout(insp.Layout))
	}
	if insp.Sample != nil {
		fmt.Fprintf(w, "  sample:  %s\n", strings.Join(insp.Sample, " | "))
	}
	switch {
	case insp.NotTracked:
		fmt.Fprintln(w, dimStyle.Render("  record:  (account not tracked)"))
	case insp.Transaction != nil:
		fmt.Fprintf(w, "  record:  %s\n", describeTransaction(*insp.Transaction))
	}
}

func describeLayout(l importer.Layout) string {
	col := func(i int) string {
		if i == importer.NoColumn {
			return "-"
		}
		return fmt.Sprint(i)
	}
	amount := fmt.Sprintf("debit=%s credit=%s", col(l.Debit), col(l.Credit))
	if l.SharedAmount() {
		amount = fmt.Sprintf("amount=%s", col(l.Debit))
	}
	account := "account=file name"
	if l.HasAccount() {
		account = "account=" + col(l.Account)
	}
	return fmt.Sprintf("date=%s payee=%s %s %s", col(l.Date), col(l.Payee), amount, account)
}

func describeTransaction(t model.Transaction) string {
	return fmt.Sprintf("%s %s %q %s", t.Date.Format(dateLayout), t.Amount.StringFixed(2), t.Payee, t.Account)
}
