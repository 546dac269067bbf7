package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/hitlist/internal/tasks"
)

// Row is one label/value line of a [Summary].
type Row struct {
	Label string
	Value string
}

// Summary renders a titled block of aligned label/value rows.
func Summary(title string, rows ...Row) string {
	width := 0
	for _, r := range rows {
		width = max(width, lipgloss.Width(r.Label))
	}

	label := Styles.help.Width(width + 2)
	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, label.Render(r.Label+":")+r.Value)
	}

	return lipgloss.JoinVertical(lipgloss.Left, Styles.Title(title), strings.Join(lines, "\n"))
}

// Ratio formats n/total, colored ok when everything matched and as a warning otherwise.
func Ratio(n, total int) string {
	s := fmt.Sprintf("%d/%d", n, total)
	if n == total {
		return Styles.OK(s)
	}
	return Styles.Warn(s)
}

// Progress formats a progress update as a single line.
func Progress(u tasks.ProgressUpdate) string {
	return fmt.Sprintf("%s %s", Styles.Help(fmt.Sprintf("%-14s", u.Phase)), u.Message)
}
