package tui

import "github.com/charmbracelet/lipgloss"

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("4"))
	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("8"))
	promptStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	statusStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	dimStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	codeStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	suggestionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("236"))
	highlightStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("6"))
	newsTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	newsURLStyle   = lipgloss.NewStyle().Underline(true).Foreground(lipgloss.Color("75"))
	newsErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	alertStyle     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("9")).
			Padding(1, 3)
	alertTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	splashStyle     = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("10")).
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("10")).
			Padding(1, 6)
)
