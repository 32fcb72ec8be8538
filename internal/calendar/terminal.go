package calendar

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const cellWidth = 12

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Width(cellWidth).Align(lipgloss.Center)
	dayStyle     = lipgloss.NewStyle().Width(cellWidth).Border(lipgloss.NormalBorder(), false, true, true, false)
	outsideStyle = dayStyle.Foreground(lipgloss.Color("241"))
	todayStyle   = dayStyle.Bold(true).Foreground(lipgloss.Color("4"))
	trackedMark  = lipgloss.NewStyle().Foreground(lipgloss.Color("204")).Render("♥")
)

// RenderTerminal draws the month as a boxed grid for the CLI.
// Each cell shows the day number and up to maxPerCell stock codes.
func RenderTerminal(m *Month, maxPerCell int) string {
	if maxPerCell <= 0 {
		maxPerCell = 3
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%d年%d月  (%d 筆配息)", m.Year, m.Month, m.EventCount)))
	b.WriteString("\n")

	headers := make([]string, 0, 7)
	for _, label := range m.Weekdays {
		headers = append(headers, headerStyle.Render(label))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, headers...))
	b.WriteString("\n")

	for _, week := range m.Weeks {
		cells := make([]string, 0, 7)
		for _, c := range week {
			cells = append(cells, renderCell(c, maxPerCell))
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cells...))
		b.WriteString("\n")
	}

	return b.String()
}

func renderCell(c Cell, maxPerCell int) string {
	head := fmt.Sprintf("%2d", c.Date.Day)
	if c.HasTracked {
		head += " " + trackedMark
	}

	lines := []string{head}
	for i, e := range c.Events {
		if i == maxPerCell {
			lines = append(lines, fmt.Sprintf("+%d", len(c.Events)-maxPerCell))
			break
		}
		lines = append(lines, e.StockCode)
	}
	for len(lines) < maxPerCell+2 {
		lines = append(lines, "")
	}
	content := strings.Join(lines, "\n")

	switch {
	case c.IsToday:
		return todayStyle.Render(content)
	case !c.InTargetMonth:
		return outsideStyle.Render(content)
	default:
		return dayStyle.Render(content)
	}
}
