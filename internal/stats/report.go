// Package stats contains statistics calculations and reporting.
package stats

import (
	"context"
	"fmt"
	"io"

	"github.com/verte-zerg/storytype/internal/model"
)

// ScoreLister loads a user's runs newest first.
type ScoreLister interface {
	ListScores(ctx context.Context, userID int64) ([]model.ScoreRecord, error)
}

// Report contains precomputed data for history rendering.
type Report struct {
	User    model.User
	Records []model.ScoreRecord
}

// BuildReport loads the user's runs, keeping the newest last ones when last
// is positive.
func BuildReport(ctx context.Context, st ScoreLister, user model.User, last int) (Report, error) {
	records, err := st.ListScores(ctx, user.ID)
	if err != nil {
		return Report{}, err
	}
	if last > 0 && len(records) > last {
		records = records[:last]
	}
	return Report{User: user, Records: records}, nil
}

// RenderOptions sizes the plain history output.
type RenderOptions struct {
	Width      int
	Height     int
	Window     int
	SparkWidth int
	Color      bool
}

// Render prints the summary, the run table and the score curve.
func (r Report) Render(w io.Writer, opts RenderOptions) error {
	if _, err := fmt.Fprintf(w, "History for %s\n\n", r.User.Username); err != nil {
		return err
	}
	if err := RenderSummary(w, r.Records); err != nil {
		return err
	}
	if err := RenderRunTable(w, r.Records, opts.SparkWidth); err != nil {
		return err
	}
	return RenderCurve(w, r.Records, opts.Window, opts.Width, opts.Height, opts.Color)
}
