package stats

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/samber/lo"
)

const columnGap = "  "

// column describes one table column. Numeric columns are right-aligned.
type column struct {
	title string
	right bool
}

// writeTable prints a header line and one line per row. Widths are measured
// in terminal cells so wide runes stay aligned; trailing blanks are trimmed.
func writeTable(w io.Writer, cols []column, rows [][]string) error {
	widths := lo.Map(cols, func(c column, i int) int {
		cells := lo.Map(rows, func(row []string, _ int) int {
			return runewidth.StringWidth(cellAt(row, i))
		})
		return max(runewidth.StringWidth(c.title), lo.Max(cells))
	})
	header := lo.Map(cols, func(c column, _ int) string { return c.title })

	for _, row := range append([][]string{header}, rows...) {
		cells := make([]string, len(cols))
		for i, c := range cols {
			if c.right {
				cells[i] = runewidth.FillLeft(cellAt(row, i), widths[i])
			} else {
				cells[i] = runewidth.FillRight(cellAt(row, i), widths[i])
			}
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(strings.Join(cells, columnGap), " ")); err != nil {
			return err
		}
	}
	return nil
}

func cellAt(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
