package tui

import (
	"github.com/charmbracelet/glamour"
)

// RendererOption configures the markdown renderer.
type RendererOption func(*rendererConfig)

type rendererConfig struct {
	wrap  int
	plain bool
}

// WithWordWrap sets the wrap column for rendered reports.
func WithWordWrap(width int) RendererOption {
	return func(c *rendererConfig) { c.wrap = width }
}

// WithPlainStyle disables colors and decoration, for piped output and tests.
func WithPlainStyle() RendererOption {
	return func(c *rendererConfig) { c.plain = true }
}

// NewRenderer returns a function that renders markdown for the CLI's compile
// and validation reports. If the terminal renderer cannot be built, the
// returned function passes markdown through unchanged.
func NewRenderer(opts ...RendererOption) func(string) (string, error) {
	cfg := rendererConfig{wrap: 78}
	for _, opt := range opts {
		opt(&cfg)
	}

	gopts := []glamour.TermRendererOption{glamour.WithWordWrap(cfg.wrap)}
	if cfg.plain {
		gopts = append(gopts, glamour.WithStandardStyle("notty"))
	} else {
		gopts = append(gopts, glamour.WithAutoStyle()) // Detect light/dark background
	}

	r, err := glamour.NewTermRenderer(gopts...)
	if err != nil {
		return func(markdown string) (string, error) {
			return markdown, nil
		}
	}
	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}
