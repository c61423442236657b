package style

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette for the live display and tree rendering. AdaptiveColor picks the
// variant matching the terminal's light or dark background.
var (
	// Task states
	ActiveColor = lipgloss.AdaptiveColor{
		Light: "#A21CAF", // Magenta
		Dark:  "#E879F9",
	}

	SuccessColor = lipgloss.AdaptiveColor{
		Light: "#15803D", // Green
		Dark:  "#4ADE80",
	}

	ErrorColor = lipgloss.AdaptiveColor{
		Light: "#B91C1C", // Red
		Dark:  "#F87171",
	}

	// Tree entries
	DirColor = lipgloss.AdaptiveColor{
		Light: "#0891B2", // Cyan
		Dark:  "#67E8F9",
	}

	// Text
	HeadingColor = lipgloss.AdaptiveColor{
		Light: "#1F2937", // Almost black
		Dark:  "#F9FAFB", // Almost white
	}

	MutedColor = lipgloss.AdaptiveColor{
		Light: "#6B7280", // Medium gray
		Dark:  "#9CA3AF",
	}
)
