package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/storytype/internal/auth"
	"github.com/verte-zerg/storytype/internal/model"
	"github.com/verte-zerg/storytype/internal/story"
)

var t0 = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

type fakeStore struct {
	users     map[string]model.User
	scores    []model.ScoreRecord
	nextID    int64
	insertErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: map[string]model.User{}}
}

func (f *fakeStore) FindUser(_ context.Context, username string) (*model.User, error) {
	u, ok := f.users[username]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (f *fakeStore) CreateUser(_ context.Context, username, hash string) (model.User, error) {
	f.nextID++
	u := model.User{ID: f.nextID, Username: username, PasswordHash: hash}
	f.users[username] = u
	return u, nil
}

func (f *fakeStore) EnsureUser(ctx context.Context, username, hash string) (model.User, error) {
	if u, ok := f.users[username]; ok {
		return u, nil
	}
	return f.CreateUser(ctx, username, hash)
}

func (f *fakeStore) InsertScore(_ context.Context, rec model.ScoreRecord) (model.ScoreRecord, error) {
	if f.insertErr != nil {
		return model.ScoreRecord{}, f.insertErr
	}
	f.nextID++
	rec.ID = f.nextID
	f.scores = append([]model.ScoreRecord{rec}, f.scores...)
	return rec, nil
}

func (f *fakeStore) ListScores(_ context.Context, userID int64) ([]model.ScoreRecord, error) {
	var out []model.ScoreRecord
	for _, rec := range f.scores {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeStore) BestScore(_ context.Context, userID int64) (int, error) {
	best := 0
	for _, rec := range f.scores {
		if rec.UserID == userID {
			best = max(best, rec.Score)
		}
	}
	return best, nil
}

type harness struct {
	m     *Model
	store *fakeStore
	now   time.Time
}

func newHarness(t *testing.T, cfg model.Config) *harness {
	t.Helper()
	corpus, err := story.LoadCorpus(strings.NewReader(
		"The quick brown fox jumps over the lazy dog, twice and again.\n---\n" +
			"Pack my box with five dozen liquor jugs; then sing loudly!\n"))
	require.NoError(t, err)
	h := &harness{store: newFakeStore(), now: t0}
	m, err := NewModel(&Context{
		Store:  h.store,
		Log:    zerolog.Nop(),
		Config: cfg,
		Theme:  Theme{},
		Corpus: corpus,
		Picker: story.NewPickerWithSeed(3),
		Now:    func() time.Time { return h.now },
	})
	require.NoError(t, err)
	h.m = m
	h.send(t, tea.WindowSizeMsg{Width: 10, Height: 30})
	return h
}

func (h *harness) send(t *testing.T, msg tea.Msg) tea.Cmd {
	t.Helper()
	next, cmd := h.m.Update(msg)
	require.Same(t, h.m, next)
	return cmd
}

// sendAuth delivers a key and feeds the resulting auth command back.
func (h *harness) sendAuth(t *testing.T, msg tea.KeyMsg) {
	t.Helper()
	cmd := h.send(t, msg)
	require.NotNil(t, cmd)
	res, ok := cmd().(authResultMsg)
	require.True(t, ok)
	h.send(t, res)
}

func (h *harness) frame(t *testing.T, d time.Duration) {
	t.Helper()
	h.now = h.now.Add(d)
	h.send(t, frameMsg(h.now))
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestGuestLogin(t *testing.T) {
	h := newHarness(t, model.Config{})
	assert.Equal(t, sceneLogin, h.m.scene)

	h.sendAuth(t, tea.KeyMsg{Type: tea.KeyCtrlG})
	require.NotNil(t, h.m.ctx.User)
	assert.True(t, h.m.ctx.User.IsGuest())
	assert.Equal(t, sceneMenu, h.m.scene)
}

func TestSignUpThenLogin(t *testing.T) {
	h := newHarness(t, model.Config{User: "Ada"})
	h.send(t, runes("secret"))
	h.sendAuth(t, tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, h.m.confirming)
	assert.Contains(t, h.m.View(), `No account named "ada"`)

	h.sendAuth(t, runes("y"))
	require.NotNil(t, h.m.ctx.User)
	assert.Equal(t, "ada", h.m.ctx.User.Username)
	require.NoError(t, auth.CheckPassword(h.store.users["ada"].PasswordHash, "secret"))

	h.send(t, runes("l"))
	assert.Equal(t, sceneLogin, h.m.scene)
	assert.Nil(t, h.m.ctx.User)

	h.send(t, runes("wrong"))
	h.sendAuth(t, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, sceneLogin, h.m.scene)
	assert.Contains(t, h.m.View(), "Incorrect password")

	h.frame(t, flashTTL)
	assert.NotContains(t, h.m.View(), "Incorrect password")
}

func TestLoginRejectsGuestName(t *testing.T) {
	h := newHarness(t, model.Config{User: "guest"})
	h.send(t, runes("pw"))
	cmd := h.send(t, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Contains(t, h.m.View(), "Use ctrl+g to play as guest")
}

func TestRunIsRecorded(t *testing.T) {
	h := newHarness(t, model.Config{})
	h.sendAuth(t, tea.KeyMsg{Type: tea.KeyCtrlG})
	h.send(t, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, scenePlay, h.m.scene)

	front, ok := h.m.engine.Machine().Front()
	require.True(t, ok)
	h.send(t, runes(string(front)))
	h.frame(t, 10*time.Millisecond)
	assert.Equal(t, 1, h.m.engine.Machine().Score())
	assert.Contains(t, h.m.View(), "Your Score")

	for i := 0; i < 100 && h.m.scene == scenePlay; i++ {
		h.frame(t, 600*time.Millisecond)
	}
	require.Equal(t, sceneMenu, h.m.scene)
	require.Len(t, h.store.scores, 1)
	rec := h.store.scores[0]
	assert.Equal(t, 1, rec.Score)
	assert.Equal(t, h.m.ctx.User.ID, rec.UserID)
	assert.NotEmpty(t, rec.Series)
	assert.Contains(t, h.m.View(), "Your score was 1")
	assert.Equal(t, 1, h.m.best)
}

func TestSaveFailureReturnsToMenu(t *testing.T) {
	h := newHarness(t, model.Config{})
	h.store.insertErr = errors.New("disk full")
	h.sendAuth(t, tea.KeyMsg{Type: tea.KeyCtrlG})
	h.send(t, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, scenePlay, h.m.scene)

	for i := 0; i < 100 && h.m.scene == scenePlay; i++ {
		h.frame(t, 600*time.Millisecond)
	}
	require.Equal(t, sceneMenu, h.m.scene)
	assert.Empty(t, h.store.scores)
	view := h.m.View()
	assert.Contains(t, view, "Could not save this run")
	assert.Contains(t, view, "Your score was 0")

	h.store.insertErr = nil
	h.send(t, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, scenePlay, h.m.scene, "the game goes on after a failed save")
}

func TestAbandonDiscardsRun(t *testing.T) {
	h := newHarness(t, model.Config{})
	h.sendAuth(t, tea.KeyMsg{Type: tea.KeyCtrlG})
	h.send(t, tea.KeyMsg{Type: tea.KeyEnter})
	h.frame(t, 600*time.Millisecond)

	h.send(t, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, sceneMenu, h.m.scene)
	assert.Empty(t, h.store.scores)
	assert.Contains(t, h.m.View(), "Run abandoned")
}

func TestHistoryScene(t *testing.T) {
	h := newHarness(t, model.Config{})
	h.sendAuth(t, tea.KeyMsg{Type: tea.KeyCtrlG})
	h.send(t, tea.WindowSizeMsg{Width: 80, Height: 30})
	h.send(t, runes("h"))
	require.Equal(t, sceneHistory, h.m.scene)
	assert.Contains(t, h.m.View(), "No runs yet")

	h.send(t, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, sceneMenu, h.m.scene)
	assert.Nil(t, h.m.history)
}
