package viewer

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)

	barStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("110"))

	// The isoline marker keeps the green pen of the draggable line it
	// stands in for.
	isoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Bold(true)
	windowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	pinnedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
)
