package story

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

var lettersAndSpaces = regexp.MustCompile(`^[A-Za-z ]*$`)

func TestFilterLettersDropsEverythingElse(t *testing.T) {
	got := FilterLetters("Hello, world! It's 2024 - naïve?")
	assert.Equal(t, "Hello world Its   nave", got)
}

func TestFilterLettersProperties(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := rapid.String().Draw(rt, "s")
		once := FilterLetters(s)
		if !lettersAndSpaces.MatchString(once) {
			rt.Fatalf("unexpected characters in %q", once)
		}
		if twice := FilterLetters(once); twice != once {
			rt.Fatalf("not idempotent: %q vs %q", once, twice)
		}
	})
}

func TestLoadCorpusSplitsOnDelimiterLines(t *testing.T) {
	input := "First story,\nsecond line.\n---\n  Another one--- here \n---\n1234 !!\n"
	corpus, err := LoadCorpus(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, corpus, 2)
	assert.Equal(t, "First story second line", corpus[0].Text)
	assert.Equal(t, "Another one here", corpus[1].Text)
	assert.Equal(t, 1, corpus[1].Index)
}

func TestLoadCorpusEmpty(t *testing.T) {
	_, err := LoadCorpus(strings.NewReader("---\n123\n---\n"))
	assert.True(t, errors.Is(err, ErrEmptyCorpus))
}

func TestDefaultCorpusIsFiltered(t *testing.T) {
	corpus, err := DefaultCorpus()
	require.NoError(t, err)
	require.NotEmpty(t, corpus)
	for _, s := range corpus {
		assert.Regexp(t, lettersAndSpaces, s.Text)
		assert.Greater(t, s.Letters(), 100)
	}
}

func TestStoryCounts(t *testing.T) {
	s := Story{Text: "ab  cde f"}
	assert.Equal(t, 3, s.Words())
	assert.Equal(t, 6, s.Letters())
	assert.Equal(t, "ab ...", s.Preview(6))
	assert.Equal(t, s.Text, s.Preview(0))
}

func TestStreamExhausts(t *testing.T) {
	st := NewStream("ab")
	r, err := st.Next()
	require.NoError(t, err)
	assert.Equal(t, 'a', r)
	r, err = st.Next()
	require.NoError(t, err)
	assert.Equal(t, 'b', r)
	for i := 0; i < 2; i++ {
		_, err = st.Next()
		assert.ErrorIs(t, err, ErrExhausted)
	}
}

func TestPickerIsDeterministicWithSeed(t *testing.T) {
	corpus := Corpus{{Index: 0, Text: "a"}, {Index: 1, Text: "b"}, {Index: 2, Text: "c"}}
	a := NewPickerWithSeed(7)
	b := NewPickerWithSeed(7)
	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Pick(corpus), b.Pick(corpus))
	}
}

func TestParseParagraphs(t *testing.T) {
	input := "The first paragraph has\nenough letters to be kept around.\n\nshort\n\n  Another long paragraph that also survives.  \n"
	stories, err := ParseParagraphs(strings.NewReader(input), 20)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"The first paragraph has enough letters to be kept around.",
		"Another long paragraph that also survives.",
	}, stories)
}

func TestImportFromURLAndWrite(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("Once upon a time there was a story long enough.\n---\nAnd a second one that is long enough too.\n"))
	}))
	t.Cleanup(srv.Close)

	stories, err := Import(context.Background(), srv.URL, ImportOptions{MinLetters: 10, Client: srv.Client()})
	require.NoError(t, err)
	require.Len(t, stories, 2)

	path := filepath.Join(t.TempDir(), "nested", "stories.txt")
	require.NoError(t, WriteCorpus(path, stories))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n---\n")

	corpus, err := LoadCorpusFile(path)
	require.NoError(t, err)
	assert.Len(t, corpus, 2)
}

func TestImportBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	_, err := Import(context.Background(), srv.URL, ImportOptions{Client: srv.Client()})
	assert.Error(t, err)
}
