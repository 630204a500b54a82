package story

import "strings"

// FilterLetters keeps ASCII letters and spaces and deletes everything else.
func FilterLetters(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch == ' ' || IsLetter(rune(ch)) {
			b.WriteByte(ch)
		}
	}
	return b.String()
}

// IsLetter reports whether r is an ASCII letter.
func IsLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
