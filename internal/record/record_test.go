package record

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/verte-zerg/storytype/internal/model"
)

func TestRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		series := rapid.SliceOf(rapid.IntRange(0, 255)).Draw(rt, "series")
		got := Decode(Encode(series))
		if len(got) != len(series) {
			rt.Fatalf("length mismatch: %d vs %d", len(got), len(series))
		}
		for i := range series {
			if got[i] != series[i] {
				rt.Fatalf("sample %d: got %d want %d", i, got[i], series[i])
			}
		}
	})
}

func TestEncodeClamps(t *testing.T) {
	assert.Equal(t, []byte{0, 255, 7}, Encode([]int{-3, 900, 7}))
}

func TestEmptySeries(t *testing.T) {
	b := Encode(nil)
	assert.Len(t, b, 0)
	got := Decode(b)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

type fakeInserter struct {
	got model.ScoreRecord
	err error
}

func (f *fakeInserter) InsertScore(_ context.Context, rec model.ScoreRecord) (model.ScoreRecord, error) {
	if f.err != nil {
		return model.ScoreRecord{}, f.err
	}
	f.got = rec
	rec.ID = 1
	rec.CreatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return rec, nil
}

func TestPersist(t *testing.T) {
	store := &fakeInserter{}
	var logs bytes.Buffer
	r := NewRecorder(store, zerolog.New(&logs))
	user := model.User{ID: 42, Username: "ada"}

	saved, err := r.Persist(context.Background(), user, model.RunResult{Score: 9, Wrong: 2, StoryIndex: 3, Series: model.RunSeries{12, 300}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), saved.ID)
	assert.Equal(t, int64(42), store.got.UserID)
	assert.Equal(t, []byte{12, 255}, store.got.Series)
	assert.Equal(t, 9, store.got.Score)
	assert.Equal(t, 2, store.got.Wrong)
	_, err = uuid.Parse(store.got.RunID)
	assert.NoError(t, err)
	assert.Contains(t, logs.String(), `"story":3`)
	assert.Contains(t, logs.String(), `"run_id":"`+store.got.RunID+`"`)
}

func TestPersistWrapsError(t *testing.T) {
	boom := errors.New("disk full")
	r := NewRecorder(&fakeInserter{err: boom}, zerolog.Nop())
	_, err := r.Persist(context.Background(), model.User{}, model.RunResult{})
	assert.ErrorIs(t, err, boom)
}
