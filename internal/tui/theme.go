package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/storytype/internal/compare"
)

// ThemeColors lists the configurable colors. Values are lipgloss color
// strings such as "212" or "#FF4D4F".
type ThemeColors struct {
	Pending string
	Cursor  string
	Score   string
	Faster  string
	Slower  string
	Line    string
	Error   string
}

// ThemeOverrides replaces the non-nil colors of a theme.
type ThemeOverrides struct {
	Pending *string
	Cursor  *string
	Score   *string
	Faster  *string
	Slower  *string
	Line    *string
	Error   *string
}

// Theme holds the styles derived from ThemeColors.
type Theme struct {
	Colors ThemeColors

	Pending lipgloss.Style
	Cursor  lipgloss.Style
	Score   lipgloss.Style
	Faster  lipgloss.Style
	Slower  lipgloss.Style
	Line    lipgloss.Style
	Error   lipgloss.Style
	Title   lipgloss.Style
	Muted   lipgloss.Style
}

// DefaultColors returns the built-in palette.
func DefaultColors() ThemeColors {
	return ThemeColors{
		Pending: "#8C8C8C",
		Cursor:  "#C89A3A",
		Score:   "#F0F0F0",
		Faster:  "#52C41A",
		Slower:  "#FF4D4F",
		Line:    "#40A9FF",
		Error:   "#FF4D4F",
	}
}

// DefaultTheme returns the theme built from DefaultColors.
func DefaultTheme() Theme {
	return NewTheme(DefaultColors())
}

// NewTheme builds styles for colors.
func NewTheme(c ThemeColors) Theme {
	return Theme{
		Colors:  c,
		Pending: lipgloss.NewStyle().Foreground(lipgloss.Color(c.Pending)),
		Cursor:  lipgloss.NewStyle().Foreground(lipgloss.Color(c.Cursor)).Bold(true).Underline(true),
		Score:   lipgloss.NewStyle().Foreground(lipgloss.Color(c.Score)).Bold(true),
		Faster:  lipgloss.NewStyle().Foreground(lipgloss.Color(c.Faster)),
		Slower:  lipgloss.NewStyle().Foreground(lipgloss.Color(c.Slower)),
		Line:    lipgloss.NewStyle().Foreground(lipgloss.Color(c.Line)),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color(c.Error)),
		Title:   lipgloss.NewStyle().Foreground(lipgloss.Color(c.Cursor)).Bold(true),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E")),
	}
}

// WithOverrides returns a new theme with the overridden colors applied. The
// receiver is left unchanged.
func (t Theme) WithOverrides(o ThemeOverrides) Theme {
	c := t.Colors
	override(&c.Pending, o.Pending)
	override(&c.Cursor, o.Cursor)
	override(&c.Score, o.Score)
	override(&c.Faster, o.Faster)
	override(&c.Slower, o.Slower)
	override(&c.Line, o.Line)
	override(&c.Error, o.Error)
	return NewTheme(c)
}

// Paint colors chart cells by fill class.
func (t Theme) Paint(class compare.Class, s string) string {
	switch class {
	case compare.ClassFaster:
		return t.Faster.Render(s)
	case compare.ClassSlower:
		return t.Slower.Render(s)
	case compare.ClassArea:
		return t.Line.Render(s)
	default:
		return s
	}
}

func override(dst *string, v *string) {
	if v != nil && *v != "" {
		*dst = *v
	}
}
