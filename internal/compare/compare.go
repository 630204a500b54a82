// Package compare lines up a run series with an optional baseline run and
// renders the difference as a terminal chart.
package compare

import "github.com/samber/lo"

// Comparison holds two series truncated to a shared length.
type Comparison struct {
	Primary  []int
	Baseline []int
	Max      int

	withBaseline bool
}

// Region is a maximal half-open range [Start, End) where the primary run is
// consistently faster or not faster than the baseline.
type Region struct {
	Start  int
	End    int
	Faster bool
}

// New truncates primary and baseline to the shorter length and computes the
// shared maximum. A nil or empty baseline yields a single-series comparison.
func New(primary, baseline []int) Comparison {
	if len(baseline) == 0 {
		p := append([]int(nil), primary...)
		return Comparison{Primary: p, Max: seriesMax(p)}
	}
	n := min(len(primary), len(baseline))
	p := append([]int(nil), primary[:n]...)
	b := append([]int(nil), baseline[:n]...)
	return Comparison{
		Primary:      p,
		Baseline:     b,
		Max:          max(seriesMax(p), seriesMax(b)),
		withBaseline: true,
	}
}

// HasBaseline reports whether a baseline run takes part.
func (c Comparison) HasBaseline() bool {
	return c.withBaseline
}

// Len returns the number of aligned samples.
func (c Comparison) Len() int {
	return len(c.Primary)
}

// Regions splits the comparison into faster and slower stretches. It returns
// nil without a baseline.
func (c Comparison) Regions() []Region {
	if !c.withBaseline || c.Len() == 0 {
		return nil
	}
	var out []Region
	cur := Region{Start: 0, Faster: c.Primary[0] > c.Baseline[0]}
	for i := 1; i < c.Len(); i++ {
		faster := c.Primary[i] > c.Baseline[i]
		if faster == cur.Faster {
			continue
		}
		cur.End = i
		out = append(out, cur)
		cur = Region{Start: i, Faster: faster}
	}
	cur.End = c.Len()
	return append(out, cur)
}

// seriesMax is 0 for an empty series.
func seriesMax(values []int) int {
	return lo.Max(values)
}
