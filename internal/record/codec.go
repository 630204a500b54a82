// Package record encodes run series and appends finished runs to storage.
package record

const maxByte = 255

// Encode stores each sample in one unsigned byte. Values outside 0..255 are
// clamped.
func Encode(series []int) []byte {
	out := make([]byte, len(series))
	for i, v := range series {
		switch {
		case v < 0:
			out[i] = 0
		case v > maxByte:
			out[i] = maxByte
		default:
			out[i] = byte(v)
		}
	}
	return out
}

// Decode is the inverse of Encode. Empty input yields an empty series.
func Decode(b []byte) []int {
	out := make([]int, len(b))
	for i, v := range b {
		out[i] = int(v)
	}
	return out
}
