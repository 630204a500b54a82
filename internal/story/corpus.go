// Package story loads story corpora and streams their letters.
package story

import (
	"bufio"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/samber/lo"
)

// Delimiter separates stories in a corpus file. It must be alone on its line.
const Delimiter = "---"

const maxLineBytes = 1 << 20

//go:embed stories.txt
var defaultStories string

// ErrEmptyCorpus is returned when no story with letters could be loaded.
var ErrEmptyCorpus = errors.New("corpus has no stories")

// Story is one playable text. Text holds only ASCII letters and spaces.
type Story struct {
	Index int
	Text  string
}

// Words returns the number of space-separated words in the story.
func (s Story) Words() int {
	return len(strings.Fields(s.Text))
}

// Letters returns the number of letters in the story.
func (s Story) Letters() int {
	n := 0
	for i := 0; i < len(s.Text); i++ {
		if IsLetter(rune(s.Text[i])) {
			n++
		}
	}
	return n
}

// Preview returns the first n runes of the story followed by an ellipsis when cut.
func (s Story) Preview(n int) string {
	if n <= 0 || len(s.Text) <= n {
		return s.Text
	}
	if n <= 3 {
		return s.Text[:n]
	}
	return s.Text[:n-3] + "..."
}

// Corpus is the fixed set of stories a game picks from.
type Corpus []Story

// DefaultCorpus returns the stories bundled with the binary.
func DefaultCorpus() (Corpus, error) {
	return LoadCorpus(strings.NewReader(defaultStories))
}

// LoadCorpusFile reads a corpus from path.
func LoadCorpusFile(path string) (Corpus, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only corpus.
			_ = cerr
		}
	}()
	corpus, err := LoadCorpus(file)
	if err != nil {
		return nil, fmt.Errorf("failed to load corpus %s: %w", path, err)
	}
	return corpus, nil
}

// LoadCorpus splits r into stories and filters each one to letters and spaces.
// Stories without any letters are dropped.
func LoadCorpus(r io.Reader) (Corpus, error) {
	raw, err := SplitStories(r)
	if err != nil {
		return nil, err
	}
	texts := lo.FilterMap(raw, func(s string, _ int) (string, bool) {
		text := strings.TrimSpace(FilterLetters(s))
		return text, text != ""
	})
	if len(texts) == 0 {
		return nil, ErrEmptyCorpus
	}
	corpus := make(Corpus, len(texts))
	for i, text := range texts {
		corpus[i] = Story{Index: i, Text: text}
	}
	return corpus, nil
}

// SplitStories reads raw stories separated by Delimiter lines. Line breaks
// inside a story become spaces and each story is trimmed.
func SplitStories(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var stories []string
	var current []string
	flush := func() {
		stories = append(stories, strings.TrimSpace(strings.Join(current, " ")))
		current = current[:0]
	}
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == Delimiter {
			flush()
			continue
		}
		current = append(current, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read corpus: %w", err)
	}
	flush()
	return stories, nil
}
