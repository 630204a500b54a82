// Package metrics samples the live typing speed of a run.
package metrics

import (
	"time"

	"github.com/verte-zerg/storytype/internal/model"
	"github.com/verte-zerg/storytype/internal/story"
)

const (
	// DefaultInterval is the time between two samples.
	DefaultInterval = time.Second
	// DefaultWindow is how many trailing samples the live chart shows.
	DefaultWindow = 10
	// MaxSample is the largest value a sample can hold once encoded.
	MaxSample = 255

	coastValue = 2
)

// Scale converts correct keystrokes per sample into a words-per-minute-like
// unit for s. It returns 0 for a story without letters.
func Scale(s story.Story) int {
	letters := s.Letters()
	if letters == 0 {
		return 0
	}
	return 60 * s.Words() / letters
}

// Sampler records one speed sample per interval. It reads the score it is
// given and never changes game state.
type Sampler struct {
	Interval time.Duration

	scale     int
	prevScore int
	last      time.Time
	series    model.RunSeries
}

// NewSampler returns a sampler that ticks every interval.
func NewSampler(interval time.Duration) *Sampler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Sampler{Interval: interval}
}

// Start clears the series and begins a new run at now.
func (s *Sampler) Start(now time.Time, scale int) {
	s.scale = scale
	s.prevScore = 0
	s.last = now
	s.series = s.series[:0:0]
}

// Poll appends a sample when more than Interval has passed since the last
// one. It returns the appended value and true, or 0 and false.
func (s *Sampler) Poll(now time.Time, score int) (int, bool) {
	if now.Sub(s.last) <= s.Interval {
		return 0, false
	}
	delta := (score - s.prevScore) * s.scale
	if delta == 0 && shouldCoast(s.series) {
		delta = coastValue
	}
	sample := clamp(delta)
	s.series = append(s.series, sample)
	s.prevScore = score
	s.last = now
	return sample, true
}

// Series returns a copy of every sample of the current run.
func (s *Sampler) Series() model.RunSeries {
	out := make(model.RunSeries, len(s.series))
	copy(out, s.series)
	return out
}

// Last returns a copy of at most n trailing samples.
func (s *Sampler) Last(n int) []int {
	if n <= 0 || n > len(s.series) {
		n = len(s.series)
	}
	out := make([]int, n)
	copy(out, s.series[len(s.series)-n:])
	return out
}

// shouldCoast reports whether a zero delta is replaced by coastValue. The
// last two samples must not both be coastValue and none of the samples
// before them may be zero. Runs shorter than three samples never coast, so
// a cold start shows as zero.
func shouldCoast(series []int) bool {
	n := len(series)
	if n < 3 {
		return false
	}
	if series[n-1] == coastValue && series[n-2] == coastValue {
		return false
	}
	for _, v := range series[:n-2] {
		if v == 0 {
			return false
		}
	}
	return true
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > MaxSample {
		return MaxSample
	}
	return v
}
