// Package ui decides how command output is rendered. It detects terminal
// capabilities and maps them to an output format; the display package
// provides the renderers for each format.
package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// Format selects between live terminal rendering and plain text
type Format int

const (
	// FormatAuto picks term or text from the output's capabilities
	FormatAuto Format = iota
	// FormatTerminal renders live terminal output with colors and styling
	FormatTerminal
	// FormatText renders plain text without any styling
	FormatText
)

var formatNames = map[Format]string{
	FormatAuto:     "auto",
	FormatTerminal: "term",
	FormatText:     "text",
}

func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return "unknown"
}

// ParseFormat reads a --format flag value. The empty string means auto.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "auto", "":
		return FormatAuto, nil
	case "term", "terminal":
		return FormatTerminal, nil
	case "text", "plain":
		return FormatText, nil
	}
	return FormatAuto, fmt.Errorf("unknown format: %s", s)
}

// DetectFormat inspects the output and environment. NO_COLOR, a pipe, or
// an ASCII-only terminal all force plain text.
func DetectFormat(output *os.File) Format {
	if os.Getenv("NO_COLOR") != "" {
		return FormatText
	}
	fd := output.Fd()
	if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		return FormatText
	}
	if termenv.ColorProfile() == termenv.Ascii {
		return FormatText
	}
	return FormatTerminal
}

// Resolve maps FormatAuto to a concrete format for the given output
func Resolve(format Format, output *os.File) Format {
	if format != FormatAuto {
		return format
	}
	if output == nil {
		return FormatText
	}
	return DetectFormat(output)
}
