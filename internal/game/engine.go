package game

import (
	"time"

	"github.com/verte-zerg/storytype/internal/metrics"
	"github.com/verte-zerg/storytype/internal/model"
)

// FrameResult describes what happened during one frame.
type FrameResult struct {
	Matched  int
	Missed   int
	Appended bool
	Sampled  bool
	Sample   int
	Finished bool
	Result   model.RunResult
}

// Engine drives a Machine and a Sampler once per display frame.
type Engine struct {
	machine *Machine
	sampler *metrics.Sampler
}

// NewEngine pairs a machine with its sampler.
func NewEngine(machine *Machine, sampler *metrics.Sampler) *Engine {
	return &Engine{machine: machine, sampler: sampler}
}

// Machine exposes the state machine for read access.
func (e *Engine) Machine() *Machine {
	return e.machine
}

// Sampler exposes the live sampler for read access.
func (e *Engine) Sampler() *metrics.Sampler {
	return e.sampler
}

// Start begins a run and restarts the sampler with the story's scale.
func (e *Engine) Start(now time.Time) {
	e.machine.Start(now)
	e.sampler.Start(now, metrics.Scale(e.machine.Story()))
}

// Frame applies the keys typed since the previous frame, polls the sampler
// and advances the decay clock. atEdge reports whether the rendered pending
// word already fills the play area; the run ends when a character is
// appended while it does.
func (e *Engine) Frame(now time.Time, keys []rune, atEdge bool) FrameResult {
	var res FrameResult
	if e.machine.State() != StateActive {
		return res
	}
	for _, r := range keys {
		if e.machine.Key(r) {
			res.Matched++
		} else {
			res.Missed++
		}
	}
	res.Sample, res.Sampled = e.sampler.Poll(now, e.machine.Score())
	res.Appended = e.machine.Advance(now)
	if res.Appended && atEdge {
		res.Finished = true
		res.Result = e.machine.Finish()
		res.Result.Series = e.sampler.Series()
	}
	return res
}
