package style

import (
	"github.com/charmbracelet/lipgloss"
)

// Named styles for the output picoforge renders itself: panel titles, task
// rows, and the project/export trees.
var (
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(HeadingColor).
			Bold(true)

	ActiveStyle = lipgloss.NewStyle().
			Foreground(ActiveColor)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)
)

// Tree entry styles
var (
	DirStyle = lipgloss.NewStyle().
			Foreground(DirColor).
			Bold(true)

	SizeStyle = lipgloss.NewStyle().
			Foreground(MutedColor)

	// ReplacedStyle marks source files whose exported copy is a
	// compiled artifact rather than the source itself
	ReplacedStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Strikethrough(true)

	DimStyle = lipgloss.NewStyle().
			Faint(true)
)

// Row indicators for the live display
var (
	SuccessIndicator  = SuccessStyle.Render("✓")
	ErrorIndicator    = ErrorStyle.Render("✗")
	ProgressIndicator = ActiveStyle.Render("⟳")
)
