package console

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// PrintBanner writes the program name and subtitle in a rounded frame.
func PrintBanner(out io.Writer, subtitle string) {
	renderer := lipgloss.NewRenderer(out)

	frame := renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("5")).
		Padding(0, 2)
	title := renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("5"))

	_, _ = fmt.Fprintln(out, frame.Render(lipgloss.JoinVertical(lipgloss.Center, title.Render("mod-mender"), subtitle)))
}
