package story

import "errors"

// ErrExhausted is returned by Next once every character has been consumed.
var ErrExhausted = errors.New("story stream exhausted")

// Stream hands out the characters of one story, one at a time. It cannot be
// rewound; build a new Stream for the next story.
type Stream struct {
	runes []rune
	pos   int
}

// NewStream returns a stream over text.
func NewStream(text string) *Stream {
	return &Stream{runes: []rune(text)}
}

// Next returns the next character or ErrExhausted.
func (s *Stream) Next() (rune, error) {
	if s.pos >= len(s.runes) {
		return 0, ErrExhausted
	}
	r := s.runes[s.pos]
	s.pos++
	return r, nil
}
