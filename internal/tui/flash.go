package tui

import "time"

const flashTTL = 3 * time.Second

// flash is an inline message that disappears once until has passed. It is
// checked on every frame instead of being cleared by a timer.
type flash struct {
	text  string
	until time.Time
}

func (f *flash) set(now time.Time, text string) {
	f.text = text
	f.until = now.Add(flashTTL)
}

func (f *flash) clear() {
	f.text = ""
	f.until = time.Time{}
}

// expire drops the message when its time is up.
func (f *flash) expire(now time.Time) {
	if f.text != "" && !now.Before(f.until) {
		f.clear()
	}
}

func (f flash) String() string {
	return f.text
}
