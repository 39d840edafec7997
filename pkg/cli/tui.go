package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the terminal colors.
type Theme struct {
	Primary lipgloss.Color
	Dim     lipgloss.Color
}

// DefaultTheme is green on the default background.
var DefaultTheme = Theme{
	Primary: lipgloss.Color("#00ff9f"),
	Dim:     lipgloss.Color("#6e7681"),
}

// Styles holds the styles derived from a theme.
type Styles struct {
	Title  lipgloss.Style
	Label  lipgloss.Style
	Value  lipgloss.Style
	Border lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(t Theme) Styles {
	return Styles{
		Title:  lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Label:  lipgloss.NewStyle().Foreground(t.Dim).Width(12),
		Value:  lipgloss.NewStyle(),
		Border: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.Primary).Padding(0, 1),
	}
}

// RenderCard renders a boxed summary of info.
func (s Styles) RenderCard(info SongInfo) string {
	rows := []struct{ label, value string }{
		{"composer", info.Composer},
		{"id", info.ID},
		{"publisher", info.PublisherID},
		{"instruments", strings.Join(info.Instruments, ", ")},
		{"staves", fmt.Sprint(info.Staves)},
		{"measures", fmt.Sprint(info.Measures)},
		{"notes", fmt.Sprint(info.Notes)},
		{"play time", FormatPlayTime(info.Seconds)},
	}
	lines := []string{s.Title.Render(info.Title), ""}
	for _, r := range rows {
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, s.Label.Render(r.label), s.Value.Render(r.value)))
	}
	return s.Border.Render(strings.Join(lines, "\n"))
}
