package output

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	colorMuted   = lipgloss.AdaptiveColor{Light: "#6C6C6C", Dark: "#8A8A8A"}
	colorSuccess = lipgloss.AdaptiveColor{Light: "#2E7D32", Dark: "#66BB6A"}
	colorError   = lipgloss.AdaptiveColor{Light: "#C62828", Dark: "#EF5350"}
	colorAccent  = lipgloss.AdaptiveColor{Light: "#1565C0", Dark: "#64B5F6"}
	colorMethod  = lipgloss.AdaptiveColor{Light: "#6A1B9A", Dark: "#CE93D8"}
)

// Styles maps semantic names to lipgloss styles
type Styles map[string]lipgloss.Style

// NewStyles builds the style set bound to w. Without color every style is
// the zero style.
func NewStyles(w io.Writer, color bool) Styles {
	r := lipgloss.NewRenderer(w)
	s := func() lipgloss.Style { return r.NewStyle() }
	if !color {
		return Styles{
			"Header": s(), "Muted": s(), "Success": s(), "Error": s(),
			"Path": s(), "Method": s(), "Pattern": s(), "Count": s(),
		}
	}
	return Styles{
		"Header":  s().Bold(true).Underline(true),
		"Muted":   s().Foreground(colorMuted),
		"Success": s().Foreground(colorSuccess).Bold(true),
		"Error":   s().Foreground(colorError).Bold(true),
		"Path":    s().Foreground(colorAccent),
		"Method":  s().Foreground(colorMethod),
		"Pattern": s().Italic(true),
		"Count":   s().Bold(true),
	}
}

// Render applies the named style, or returns text unchanged for unknown
// names
func (s Styles) Render(name, text string) string {
	st, ok := s[name]
	if !ok {
		return text
	}
	return st.Render(text)
}

// ColorEnabled reports whether output to f should be colored: f must be a
// terminal and NO_COLOR unset.
func ColorEnabled(f *os.File) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
