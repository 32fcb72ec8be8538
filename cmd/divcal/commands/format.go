package commands

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/wonny/divcal/internal/calculator"
	"github.com/wonny/divcal/internal/contracts"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	valueStyle   = lipgloss.NewStyle().Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	codeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Width(8)
)

// PrintHeader prints a section header
func PrintHeader(title string) {
	fmt.Println()
	fmt.Println(headingStyle.Render(title))
	fmt.Println(strings.Repeat("─", 59))
}

// PrintField prints one aligned label/value line
func PrintField(label, value string) {
	fmt.Println(labelStyle.Render(label) + valueStyle.Render(value))
}

// PrintWarning prints a highlighted warning line
func PrintWarning(msg string) {
	fmt.Println(warnStyle.Render("⚠ " + msg))
}

// dateOr prints a date or the fallback when missing
func dateOr(d *contracts.Date, fallback string) string {
	if d == nil {
		return fallback
	}
	return d.String()
}

// eventLine renders an event as one list row
func eventLine(e contracts.DividendEvent) string {
	return fmt.Sprintf("%s%-10s  pay %-10s  cash %6.2f  yield %s",
		codeStyle.Render(e.StockCode),
		e.StockName,
		dateOr(e.PayDate, "未定"),
		e.CashDividend,
		calculator.FormatPercent(e.YieldRate),
	)
}
