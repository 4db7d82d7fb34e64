package tui

import "github.com/charmbracelet/lipgloss"

// ANSI 256 palette used by the load display and the datasets table.
var (
	ColorAccent = lipgloss.Color("39")  // table names, spinner
	ColorDetail = lipgloss.Color("245") // counters
	ColorDone   = lipgloss.Color("34")
	ColorCancel = lipgloss.Color("214")
	ColorFailed = lipgloss.Color("196")
	ColorMuted  = lipgloss.Color("240") // key help, table borders
)

var (
	// TitleStyle renders the target table and column headers.
	TitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	StatsStyle   = lipgloss.NewStyle().Foreground(ColorDetail)
	SuccessStyle = lipgloss.NewStyle().Foreground(ColorDone)
	ErrorStyle   = lipgloss.NewStyle().Foreground(ColorFailed)
	WarningStyle = lipgloss.NewStyle().Foreground(ColorCancel)
	HelpStyle    = lipgloss.NewStyle().Foreground(ColorMuted)
	SpinnerStyle = lipgloss.NewStyle().Foreground(ColorAccent)
)

const (
	SymbolCheck  = "✓"
	SymbolCross  = "✗"
	SymbolBullet = "•" // separates counters on the stats line
)
