package story

import (
	"math/rand"
	"time"
)

// Picker chooses stories uniformly at random.
type Picker struct {
	rnd *rand.Rand
}

// NewPicker returns a Picker seeded with the current time.
func NewPicker() *Picker {
	return NewPickerWithSeed(time.Now().UnixNano())
}

// NewPickerWithSeed returns a deterministic Picker.
func NewPickerWithSeed(seed int64) *Picker {
	return &Picker{rnd: rand.New(rand.NewSource(seed))}
}

// Pick returns a random story from corpus. corpus must not be empty.
func (p *Picker) Pick(corpus Corpus) Story {
	return corpus[p.rnd.Intn(len(corpus))]
}
