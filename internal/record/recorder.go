package record

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/verte-zerg/storytype/internal/model"
)

// Inserter appends a score record and returns it with the storage-assigned
// fields filled in.
type Inserter interface {
	InsertScore(ctx context.Context, rec model.ScoreRecord) (model.ScoreRecord, error)
}

// Recorder persists finished runs.
type Recorder struct {
	store Inserter
	log   zerolog.Logger
}

// NewRecorder returns a recorder writing to store.
func NewRecorder(store Inserter, log zerolog.Logger) *Recorder {
	return &Recorder{store: store, log: log}
}

// Persist encodes the run series and appends it for user.
func (r *Recorder) Persist(ctx context.Context, user model.User, result model.RunResult) (model.ScoreRecord, error) {
	rec := model.ScoreRecord{
		RunID:  uuid.NewString(),
		UserID: user.ID,
		Series: Encode(result.Series),
		Score:  result.Score,
		Wrong:  result.Wrong,
	}
	saved, err := r.store.InsertScore(ctx, rec)
	if err != nil {
		return model.ScoreRecord{}, fmt.Errorf("failed to persist run: %w", err)
	}
	r.log.Info().
		Str("run_id", saved.RunID).
		Str("user", user.Username).
		Int("story", result.StoryIndex).
		Int("score", saved.Score).
		Int("samples", len(saved.Series)).
		Msg("run recorded")
	return saved, nil
}
