// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/samber/lo"

	"github.com/verte-zerg/storytype/internal/compare"
	"github.com/verte-zerg/storytype/internal/model"
	"github.com/verte-zerg/storytype/internal/record"
)

const sparkChars = " .:-=+*#%@"

// RunMetrics summarizes one run series: mean and peak sample plus accuracy.
type RunMetrics struct {
	AvgWPM   float64
	PeakWPM  int
	Seconds  int
	Accuracy float64
}

// MetricsFor computes RunMetrics for a stored record.
func MetricsFor(rec model.ScoreRecord) RunMetrics {
	series := record.Decode(rec.Series)
	m := RunMetrics{Seconds: len(series), Accuracy: Accuracy(rec.Score, rec.Wrong)}
	if len(series) == 0 {
		return m
	}
	m.AvgWPM = float64(lo.Sum(series)) / float64(len(series))
	m.PeakWPM = lo.Max(series)
	return m
}

// Accuracy returns the share of correct keystrokes.
func Accuracy(correct, wrong int) float64 {
	den := correct + wrong
	if den <= 0 {
		return 0
	}
	return float64(correct) / float64(den)
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := lo.Min(values)
	maxVal := lo.Max(values)
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// SeriesSparkline downsamples a run series to at most width points and
// renders it as a sparkline.
func SeriesSparkline(series []int, width int) string {
	if len(series) == 0 || width <= 0 {
		return ""
	}
	values := lo.Map(series, func(v int, _ int) float64 { return float64(v) })
	if len(values) > width {
		chunkSize := (len(values) + width - 1) / width
		values = lo.Map(lo.Chunk(values, chunkSize), func(chunk []float64, _ int) float64 {
			return lo.Sum(chunk) / float64(len(chunk))
		})
	}
	return Sparkline(values)
}

// RenderSummary prints a summary of the user's runs.
func RenderSummary(w io.Writer, records []model.ScoreRecord) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No runs found.")
		return err
	}
	var totalScore, totalWPM, totalAcc float64
	best := 0
	peak := 0
	for _, rec := range records {
		m := MetricsFor(rec)
		totalScore += float64(rec.Score)
		totalWPM += m.AvgWPM
		totalAcc += m.Accuracy
		best = max(best, rec.Score)
		peak = max(peak, m.PeakWPM)
	}
	count := float64(len(records))
	if _, err := fmt.Fprintln(w, "Summary"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Runs: %d\n", len(records)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Best Score: %d\n", best); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Avg Score: %.2f\n", totalScore/count); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Avg WPM: %.2f\n", totalWPM/count); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Peak WPM: %d\n", peak); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Avg Accuracy: %.2f%%\n", (totalAcc/count)*100); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return nil
}

// RenderRunTable prints one line per run, in the given order.
func RenderRunTable(w io.Writer, records []model.ScoreRecord, sparkWidth int) error {
	if len(records) == 0 {
		return nil
	}
	cols := []column{
		{title: "#", right: true},
		{title: "Date"},
		{title: "Score", right: true},
		{title: "Wrong", right: true},
		{title: "Accuracy", right: true},
		{title: "Avg WPM", right: true},
		{title: "Peak", right: true},
		{title: "Secs", right: true},
		{title: "Speed"},
	}
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		m := MetricsFor(rec)
		rows = append(rows, []string{
			fmt.Sprintf("%d", rec.ID),
			rec.CreatedAt.Local().Format("2006-01-02 15:04"),
			fmt.Sprintf("%d", rec.Score),
			fmt.Sprintf("%d", rec.Wrong),
			fmt.Sprintf("%.2f%%", m.Accuracy*100),
			fmt.Sprintf("%.1f", m.AvgWPM),
			fmt.Sprintf("%d", m.PeakWPM),
			fmt.Sprintf("%d", m.Seconds),
			SeriesSparkline(record.Decode(rec.Series), sparkWidth),
		})
	}
	if err := writeTable(w, cols, rows); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return nil
}

// RenderCurve plots the moving average of scores, oldest run first. records
// are expected newest first as the store returns them.
func RenderCurve(w io.Writer, records []model.ScoreRecord, window, width, height int, useColor bool) error {
	if len(records) == 0 {
		return nil
	}
	scores := make([]float64, len(records))
	for i, rec := range lo.Reverse(append([]model.ScoreRecord(nil), records...)) {
		scores[i] = float64(rec.Score)
	}
	smoothed := lo.Map(MovingAverage(scores, window), func(v float64, _ int) int {
		return int(math.Round(v))
	})
	return compare.Render(w, compare.New(smoothed, nil), compare.Options{
		Title:        "Score Curve",
		Width:        width,
		Height:       height,
		YLabel:       "Score",
		XLabel:       "Run",
		PrimaryLabel: fmt.Sprintf("Score (moving average of %d)", max(window, 1)),
		ForceColor:   useColor,
	})
}
