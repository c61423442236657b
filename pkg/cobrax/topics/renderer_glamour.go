package topics

import "github.com/charmbracelet/glamour"

// GlamourRenderer renders markdown topics with the glamour library.
// Non-markdown topics pass through unchanged.
type GlamourRenderer struct {
	Style string // glamour style name or path, "auto" detects from the terminal
	Width int    // wrap column, 0 leaves wrapping to glamour
}

// NewGlamourRenderer creates a markdown renderer with auto-detection
func NewGlamourRenderer() *GlamourRenderer {
	return &GlamourRenderer{Style: "auto"}
}

// Render converts markdown to styled terminal output. Anything that goes
// wrong falls back to the raw content.
func (r *GlamourRenderer) Render(content string, format string) string {
	if format != ".md" {
		return content
	}

	renderer, err := glamour.NewTermRenderer(r.options()...)
	if err != nil {
		return content
	}
	rendered, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

func (r *GlamourRenderer) options() []glamour.TermRendererOption {
	opts := make([]glamour.TermRendererOption, 0, 2)
	if r.Style == "" || r.Style == "auto" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStylePath(r.Style))
	}
	if r.Width > 0 {
		opts = append(opts, glamour.WithWordWrap(r.Width))
	}
	return opts
}
