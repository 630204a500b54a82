package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

type styledRune struct {
	s     string
	width int
}

// buildPendingRunes styles the pending word. The front character, the one
// to type next, gets the cursor style.
func buildPendingRunes(pending string, theme Theme) []styledRune {
	out := make([]styledRune, 0, len(pending))
	for i, r := range []rune(pending) {
		style := theme.Pending
		if i == 0 {
			style = theme.Cursor
		}
		out = append(out, styledRune{
			s:     style.Render(string(r)),
			width: runewidth.RuneWidth(r),
		})
	}
	return out
}

func renderStyledRunes(runes []styledRune) string {
	var b strings.Builder
	for _, item := range runes {
		b.WriteString(item.s)
	}
	return b.String()
}

// renderPendingLine right-aligns the pending word within width so new
// characters appear at the right edge. Characters past width are cut from
// the tail so the front stays visible.
func renderPendingLine(runes []styledRune, width int) string {
	if width <= 0 {
		return renderStyledRunes(runes)
	}
	total := 0
	end := 0
	for end < len(runes) && total+runes[end].width <= width {
		total += runes[end].width
		end++
	}
	return strings.Repeat(" ", width-total) + renderStyledRunes(runes[:end])
}
