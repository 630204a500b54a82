package stats

import (
	"fmt"
	"io"

	"github.com/verte-zerg/storytype/internal/story"
)

const previewWidth = 48

// RenderStoryTable prints one line per story with its size and a preview.
func RenderStoryTable(w io.Writer, corpus story.Corpus) error {
	cols := []column{
		{title: "#", right: true},
		{title: "Words", right: true},
		{title: "Letters", right: true},
		{title: "Preview"},
	}
	rows := make([][]string, 0, len(corpus))
	for _, s := range corpus {
		rows = append(rows, []string{
			fmt.Sprintf("%d", s.Index),
			fmt.Sprintf("%d", s.Words()),
			fmt.Sprintf("%d", s.Letters()),
			s.Preview(previewWidth),
		})
	}
	return writeTable(w, cols, rows)
}
