// Package game implements the typing state machine and the per-frame engine
// that drives it together with the live sampler.
package game

import (
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/verte-zerg/storytype/internal/model"
	"github.com/verte-zerg/storytype/internal/story"
)

const (
	// DefaultInitialDelay is the append interval at the start of a run.
	DefaultInitialDelay = 500 * time.Millisecond
	// DefaultDelayStep is subtracted from the interval after every append.
	DefaultDelayStep = 2 * time.Millisecond
)

// State is the phase of the machine.
type State int

const (
	StateIdle State = iota
	StateActive
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateActive:
		return "active"
	case StateFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Options configures a Machine. Zero values select the defaults.
type Options struct {
	InitialDelay time.Duration
	DelayStep    time.Duration
	Picker       *story.Picker
	Logger       *zerolog.Logger
}

// Machine owns the pending word of a run and everything that mutates it.
type Machine struct {
	corpus       story.Corpus
	picker       *story.Picker
	log          zerolog.Logger
	initialDelay time.Duration
	delayStep    time.Duration

	state      State
	story      story.Story
	startStory int
	stream     *story.Stream
	pending    []rune
	score      int
	wrong      int
	delay      time.Duration
	lastAppend time.Time
}

// NewMachine returns an idle machine with a story already chosen.
func NewMachine(corpus story.Corpus, opts Options) (*Machine, error) {
	if len(corpus) == 0 {
		return nil, story.ErrEmptyCorpus
	}
	if opts.InitialDelay <= 0 {
		opts.InitialDelay = DefaultInitialDelay
	}
	if opts.DelayStep <= 0 {
		opts.DelayStep = DefaultDelayStep
	}
	if opts.Picker == nil {
		opts.Picker = story.NewPicker()
	}
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}
	m := &Machine{
		corpus:       corpus,
		picker:       opts.Picker,
		log:          log.With().Str("component", "machine").Logger(),
		initialDelay: opts.InitialDelay,
		delayStep:    opts.DelayStep,
	}
	m.reset()
	return m, nil
}

// Start begins a run at now on the currently chosen story.
func (m *Machine) Start(now time.Time) {
	m.pending = m.pending[:0]
	m.score = 0
	m.wrong = 0
	m.delay = m.initialDelay
	m.lastAppend = now
	m.state = StateActive
	m.startStory = m.story.Index
	m.fillFront()
	m.log.Debug().Int("story", m.story.Index).Msg("run started")
}

// Advance appends one character when more than the current delay has passed
// since the previous append. The delay then shrinks by the step.
func (m *Machine) Advance(now time.Time) bool {
	if m.state != StateActive {
		return false
	}
	if now.Sub(m.lastAppend) <= m.delay {
		return false
	}
	m.pending = append(m.pending, m.pull())
	m.delay -= m.delayStep
	m.lastAppend = now
	return true
}

// Key reconciles one typed character against the front of the pending word.
// It reports whether the character matched.
func (m *Machine) Key(r rune) bool {
	if m.state != StateActive || len(m.pending) == 0 {
		return false
	}
	if !strings.EqualFold(string(r), string(m.pending[0])) {
		m.wrong++
		return false
	}
	m.score++
	m.pending = m.pending[1:]
	m.fillFront()
	return true
}

// Finish snapshots the run and resets the machine to idle with a new story.
func (m *Machine) Finish() model.RunResult {
	m.state = StateFinished
	result := model.RunResult{
		Score:      m.score,
		Wrong:      m.wrong,
		StoryIndex: m.startStory,
	}
	m.log.Debug().Int("score", result.Score).Int("wrong", result.Wrong).Msg("run finished")
	m.reset()
	return result
}

// State returns the current phase.
func (m *Machine) State() State {
	return m.state
}

// Pending returns the visible, not yet typed text.
func (m *Machine) Pending() string {
	return string(m.pending)
}

// Front returns the character the player must type next.
func (m *Machine) Front() (rune, bool) {
	if len(m.pending) == 0 {
		return 0, false
	}
	return m.pending[0], true
}

// Score returns the number of correct keystrokes in the run.
func (m *Machine) Score() int {
	return m.score
}

// Wrong returns the number of mismatched keystrokes in the run.
func (m *Machine) Wrong() int {
	return m.wrong
}

// Delay returns the current append interval.
func (m *Machine) Delay() time.Duration {
	return m.delay
}

// Story returns the story being streamed.
func (m *Machine) Story() story.Story {
	return m.story
}

func (m *Machine) reset() {
	m.state = StateIdle
	m.pending = nil
	m.score = 0
	m.wrong = 0
	m.delay = m.initialDelay
	m.lastAppend = time.Time{}
	m.chooseStory()
}

func (m *Machine) chooseStory() {
	m.story = m.picker.Pick(m.corpus)
	m.stream = story.NewStream(m.story.Text)
}

// fillFront drops leading non-letters and refills from the stream until the
// front of the pending word is a letter.
func (m *Machine) fillFront() {
	for {
		if len(m.pending) == 0 {
			m.pending = append(m.pending, m.pull())
			continue
		}
		if story.IsLetter(m.pending[0]) {
			return
		}
		m.pending = m.pending[1:]
	}
}

// pull returns the next story character, moving on to a fresh story when
// the current one runs out.
func (m *Machine) pull() rune {
	for {
		r, err := m.stream.Next()
		if err == nil {
			return r
		}
		if !errors.Is(err, story.ErrExhausted) {
			m.log.Error().Err(err).Msg("failed to read story")
		}
		m.log.Debug().Int("story", m.story.Index).Msg("story exhausted, picking another")
		m.chooseStory()
		// Separate the two stories so their words don't merge.
		if len(m.pending) > 0 && m.pending[len(m.pending)-1] != ' ' {
			return ' '
		}
	}
}
