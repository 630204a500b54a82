package game

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/verte-zerg/storytype/internal/metrics"
	"github.com/verte-zerg/storytype/internal/story"
)

var t0 = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func twoStoryCorpus(t *testing.T) story.Corpus {
	t.Helper()
	input := "The quick brown fox jumps over the lazy dog, twice and again.\n" +
		"---\n" +
		"Pack my box with five dozen liquor jugs; then sing loudly!\n"
	corpus, err := story.LoadCorpus(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, corpus, 2)
	return corpus
}

func newMachine(t *testing.T, corpus story.Corpus) *Machine {
	t.Helper()
	m, err := NewMachine(corpus, Options{Picker: story.NewPickerWithSeed(1)})
	require.NoError(t, err)
	return m
}

func TestNewMachineRejectsEmptyCorpus(t *testing.T) {
	_, err := NewMachine(nil, Options{})
	assert.ErrorIs(t, err, story.ErrEmptyCorpus)
}

func TestStartSeedsOneLetter(t *testing.T) {
	m := newMachine(t, story.Corpus{{Text: "ab cd"}})
	assert.Equal(t, StateIdle, m.State())
	assert.Equal(t, "", m.Pending())

	m.Start(t0)
	assert.Equal(t, StateActive, m.State())
	assert.Equal(t, "a", m.Pending())
	assert.Equal(t, DefaultInitialDelay, m.Delay())
}

func TestAdvanceDelayStrictlyDecreases(t *testing.T) {
	m := newMachine(t, twoStoryCorpus(t))
	m.Start(t0)
	require.Equal(t, 500*time.Millisecond, m.Delay())

	now := t0
	assert.False(t, m.Advance(now.Add(m.Delay())), "append needs strictly more than the delay")

	prev := m.Delay()
	for i := 0; i < 200; i++ {
		now = now.Add(prev + time.Millisecond)
		require.True(t, m.Advance(now))
		require.Less(t, m.Delay(), prev)
		prev = m.Delay()
	}
	assert.Equal(t, DefaultInitialDelay-200*DefaultDelayStep, m.Delay())
}

func TestKeyMatchIsCaseInsensitiveAndSkipsSpaces(t *testing.T) {
	m := newMachine(t, story.Corpus{{Text: "a  Bc"}})
	m.Start(t0)
	now := t0
	for i := 0; i < 3; i++ {
		now = now.Add(time.Second)
		require.True(t, m.Advance(now))
	}
	require.Equal(t, "a  B", m.Pending())

	assert.True(t, m.Key('A'))
	assert.Equal(t, "B", m.Pending())
	assert.Equal(t, 1, m.Score())

	assert.False(t, m.Key('x'))
	assert.Equal(t, "B", m.Pending())
	assert.Equal(t, 1, m.Wrong())

	assert.True(t, m.Key('b'))
	assert.Equal(t, "c", m.Pending(), "an emptied word pulls the next character")
	assert.Equal(t, 2, m.Score())
}

func TestKeyIgnoredWhenIdle(t *testing.T) {
	m := newMachine(t, story.Corpus{{Text: "abc"}})
	assert.False(t, m.Key('a'))
	assert.Equal(t, 0, m.Wrong())
}

func TestFrontNeverSpaceAfterMatch(t *testing.T) {
	corpus := twoStoryCorpus(t)
	rapid.Check(t, func(rt *rapid.T) {
		m, err := NewMachine(corpus, Options{Picker: story.NewPickerWithSeed(rapid.Int64().Draw(rt, "seed"))})
		if err != nil {
			rt.Fatal(err)
		}
		m.Start(t0)
		now := t0
		steps := rapid.SliceOfN(rapid.Bool(), 1, 300).Draw(rt, "steps")
		for _, advance := range steps {
			if advance {
				now = now.Add(time.Second)
				m.Advance(now)
				continue
			}
			front, ok := m.Front()
			if !ok {
				rt.Fatalf("pending word is empty")
			}
			if !m.Key(front) {
				rt.Fatalf("front %q did not match itself", front)
			}
			if next, _ := m.Front(); next == ' ' {
				rt.Fatalf("front is a space after a match: %q", m.Pending())
			}
		}
	})
}

// pickSequence replays the stories a picker with seed hands out.
func pickSequence(seed int64, corpus story.Corpus, n int) []story.Story {
	p := story.NewPickerWithSeed(seed)
	out := make([]story.Story, n)
	for i := range out {
		out[i] = p.Pick(corpus)
	}
	return out
}

func lettersOf(s string) string {
	var b strings.Builder
	for _, r := range s {
		if story.IsLetter(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func TestPerfectTypingAcrossStories(t *testing.T) {
	corpus := twoStoryCorpus(t)

	// Use a seed whose first two picks differ so the run streams both stories.
	seed := int64(1)
	for pickSequence(seed, corpus, 2)[0].Index == pickSequence(seed, corpus, 2)[1].Index {
		seed++
	}
	picks := pickSequence(seed, corpus, 32)
	var stream strings.Builder
	for _, s := range picks {
		stream.WriteString(lettersOf(s.Text))
	}

	m, err := NewMachine(corpus, Options{Picker: story.NewPickerWithSeed(seed)})
	require.NoError(t, err)
	m.Start(t0)

	var typed strings.Builder
	now := t0
	for i := 0; i < 400; i++ {
		now = now.Add(time.Second)
		m.Advance(now)
		front, ok := m.Front()
		require.True(t, ok)
		require.True(t, m.Key(front))
		typed.WriteRune(front)
	}

	consumed := typed.String() + lettersOf(m.Pending())
	require.True(t, strings.HasPrefix(stream.String(), consumed), "letters must follow the streamed stories in order")
	assert.Equal(t, len(consumed)-len(lettersOf(m.Pending())), m.Score())
	assert.Equal(t, 0, m.Wrong())

	seen := map[int]bool{}
	for n, k := 0, 0; n < len(consumed); k++ {
		seen[picks[k].Index] = true
		n += len(lettersOf(picks[k].Text))
	}
	assert.Len(t, seen, 2, "typing must span both stories")

	res := m.Finish()
	assert.Equal(t, picks[0].Index, res.StoryIndex, "result names the story the run started on")
	assert.Equal(t, 400, res.Score)
}

func TestFinishResetsState(t *testing.T) {
	m := newMachine(t, twoStoryCorpus(t))
	m.Start(t0)
	front, _ := m.Front()
	m.Key(front)
	m.Key('#')

	res := m.Finish()
	assert.Equal(t, 1, res.Score)
	assert.Equal(t, 1, res.Wrong)
	assert.Equal(t, StateIdle, m.State())
	assert.Equal(t, 0, m.Score())
	assert.Equal(t, 0, m.Wrong())
	assert.Equal(t, "", m.Pending())
	assert.Equal(t, DefaultInitialDelay, m.Delay())
}

func TestEngineFinishesAtEdge(t *testing.T) {
	m := newMachine(t, twoStoryCorpus(t))
	e := NewEngine(m, metrics.NewSampler(time.Second))
	e.Start(t0)

	res := e.Frame(t0.Add(100*time.Millisecond), nil, true)
	assert.False(t, res.Appended)
	assert.False(t, res.Finished)

	front, _ := m.Front()
	res = e.Frame(t0.Add(1100*time.Millisecond), []rune{front, '#'}, false)
	assert.Equal(t, 1, res.Matched)
	assert.Equal(t, 1, res.Missed)
	assert.True(t, res.Sampled)
	assert.True(t, res.Appended)
	assert.False(t, res.Finished)

	res = e.Frame(t0.Add(2*time.Second), nil, true)
	require.True(t, res.Finished)
	assert.Equal(t, 1, res.Result.Score)
	assert.Equal(t, 1, res.Result.Wrong)
	assert.Len(t, res.Result.Series, 1)
	assert.Equal(t, StateIdle, m.State())

	res = e.Frame(t0.Add(3*time.Second), []rune{'a'}, true)
	assert.Equal(t, FrameResult{}, res, "idle engine ignores frames")
}
