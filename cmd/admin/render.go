package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"horizon/internal/domain/banking"
	"horizon/internal/domain/transaction"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7AA2F7"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#9ECE6A"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#E0AF68"))
	debitStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F7768E"))
)

// formatAmount renders a dollar amount with thousands separators, e.g. -1234.5 -> "-$1,234.50"
func formatAmount(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}

	s := fmt.Sprintf("%.2f", v)
	whole, frac := s[:len(s)-3], s[len(s)-3:]

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + "$" + b.String() + frac
}

func renderAggregate(agg *banking.Aggregate) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", titleStyle.Render(fmt.Sprintf("%d bank account(s)", agg.TotalBanks)))
	for _, acc := range agg.Accounts {
		fmt.Fprintf(&b, "  %-28s %s  %s\n",
			acc.Name,
			dimStyle.Render("●●●● "+acc.Mask),
			formatAmount(acc.CurrentBalance),
		)
		fmt.Fprintf(&b, "  %s\n", dimStyle.Render(fmt.Sprintf("%s · %s/%s · connection %s", acc.InstitutionName, acc.Type, acc.Subtype, acc.ConnectionID)))
	}
	fmt.Fprintf(&b, "\n  Total current balance: %s\n", okStyle.Render(formatAmount(agg.TotalCurrentBalance)))

	for _, f := range agg.Failures {
		fmt.Fprintf(&b, "  %s\n", warnStyle.Render(fmt.Sprintf("connection %s unavailable: %v", f.ConnectionID, f.Err)))
	}
	return b.String()
}

func renderHistory(view *banking.HistoryView) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", titleStyle.Render(view.Title))
	fmt.Fprintf(&b, "  %s\n", view.Message)

	if view.Account != nil {
		fmt.Fprintf(&b, "\n  %s %s  %s\n",
			view.Account.Name,
			dimStyle.Render("●●●● "+view.Account.Mask),
			formatAmount(view.Account.CurrentBalance),
		)
	}
	if view.Page == nil {
		return b.String()
	}

	b.WriteString("\n")
	for _, tx := range view.Page.Items {
		amount := formatAmount(tx.Amount)
		if tx.Type == transaction.DirectionDebit {
			amount = debitStyle.Render(amount)
		}
		fmt.Fprintf(&b, "  %s  %-32s %-14s %s\n", tx.Date.Format("2006-01-02"), tx.Name, tx.Category, amount)
	}
	fmt.Fprintf(&b, "\n  %s\n", dimStyle.Render(fmt.Sprintf("page %d of %d", view.Page.Page, view.Page.TotalPages)))
	return b.String()
}
