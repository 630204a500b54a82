package story

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultMinLetters is the shortest story kept by Import.
const DefaultMinLetters = 50

// ImportOptions controls how external text becomes corpus stories.
type ImportOptions struct {
	MinLetters int
	Client     *http.Client
}

// Import reads source, a local path or an http(s) URL, and returns raw
// stories. Text that already uses Delimiter lines is split on them;
// otherwise every blank-line separated paragraph becomes a story.
func Import(ctx context.Context, source string, opts ImportOptions) ([]string, error) {
	if source == "" {
		return nil, fmt.Errorf("import source is required")
	}
	if opts.MinLetters <= 0 {
		opts.MinLetters = DefaultMinLetters
	}

	var r io.ReadCloser
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		resp, err := httpRequest(ctx, opts.Client, source)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			_ = resp.Body.Close()
			return nil, fmt.Errorf("unexpected status for %s: %s", source, resp.Status)
		}
		r = resp.Body
	} else {
		file, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", source, err)
		}
		r = file
	}
	defer func() {
		_ = r.Close()
	}()

	stories, err := ParseParagraphs(r, opts.MinLetters)
	if err != nil {
		return nil, err
	}
	if len(stories) == 0 {
		return nil, ErrEmptyCorpus
	}
	return stories, nil
}

// ParseParagraphs splits text into stories and drops those with fewer than
// minLetters letters.
func ParseParagraphs(r io.Reader, minLetters int) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var lines []string
	delimited := false
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == Delimiter {
			delimited = true
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read source: %w", err)
	}

	var raw []string
	if delimited {
		split, err := SplitStories(strings.NewReader(strings.Join(lines, "\n")))
		if err != nil {
			return nil, err
		}
		raw = split
	} else {
		var current []string
		for _, line := range lines {
			if strings.TrimSpace(line) == "" {
				if len(current) > 0 {
					raw = append(raw, strings.TrimSpace(strings.Join(current, " ")))
					current = nil
				}
				continue
			}
			current = append(current, strings.TrimSpace(line))
		}
		if len(current) > 0 {
			raw = append(raw, strings.TrimSpace(strings.Join(current, " ")))
		}
	}

	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if (Story{Text: FilterLetters(s)}).Letters() < minLetters {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

// FormatCorpus joins stories with Delimiter lines.
func FormatCorpus(stories []string) string {
	return strings.Join(stories, "\n"+Delimiter+"\n") + "\n"
}

// WriteCorpus atomically replaces path with the given stories.
func WriteCorpus(path string, stories []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create corpus dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(filepath.Dir(path), "corpus-*.txt")
	if err != nil {
		return fmt.Errorf("failed to create temp corpus: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	writer := bufio.NewWriter(tmpFile)
	if _, err := writer.WriteString(FormatCorpus(stories)); err != nil {
		return fmt.Errorf("failed to write corpus: %w", err)
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush corpus: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close corpus: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write corpus: %w", err)
	}
	return nil
}

func httpRequest(ctx context.Context, client *http.Client, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}
