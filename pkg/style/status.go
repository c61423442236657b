package style

import (
	"github.com/pterm/pterm"
)

// Status classifies a live task row for styling
type Status string

const (
	StatusActive Status = "active" // Task is still running
	StatusDone   Status = "done"   // Task finished cleanly
	StatusError  Status = "error"  // Task failed
)

// StatusStyle returns the pterm style for a live task row
func StatusStyle(status Status) *pterm.Style {
	switch status {
	case StatusDone:
		return pterm.NewStyle(pterm.FgLightGreen)
	case StatusError:
		return pterm.NewStyle(pterm.FgLightRed, pterm.Bold)
	default:
		return pterm.NewStyle(pterm.FgMagenta)
	}
}
