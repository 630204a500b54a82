// Package tui provides the Bubble Tea game interface.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/verte-zerg/storytype/internal/game"
	"github.com/verte-zerg/storytype/internal/historyui"
	"github.com/verte-zerg/storytype/internal/metrics"
	"github.com/verte-zerg/storytype/internal/model"
	"github.com/verte-zerg/storytype/internal/record"
	"github.com/verte-zerg/storytype/internal/story"
)

const defaultFPS = 60

// Store is the persistence the interface needs.
type Store interface {
	FindUser(ctx context.Context, username string) (*model.User, error)
	CreateUser(ctx context.Context, username, passwordHash string) (model.User, error)
	EnsureUser(ctx context.Context, username, passwordHash string) (model.User, error)
	InsertScore(ctx context.Context, rec model.ScoreRecord) (model.ScoreRecord, error)
	ListScores(ctx context.Context, userID int64) ([]model.ScoreRecord, error)
	BestScore(ctx context.Context, userID int64) (int, error)
}

// Context carries what the scenes share. It is passed explicitly to the
// model instead of living in package state.
type Context struct {
	Store  Store
	Log    zerolog.Logger
	Config model.Config
	Theme  Theme
	Corpus story.Corpus
	Picker *story.Picker
	Now    func() time.Time
	User   *model.User
}

type scene int

const (
	sceneLogin scene = iota
	sceneMenu
	scenePlay
	sceneHistory
)

func (s scene) String() string {
	switch s {
	case sceneLogin:
		return "login"
	case sceneMenu:
		return "menu"
	case scenePlay:
		return "play"
	case sceneHistory:
		return "history"
	default:
		return "unknown"
	}
}

type sceneHandler struct {
	update func(*Model, tea.KeyMsg) tea.Cmd
	view   func(*Model) string
}

// frameMsg is delivered once per display frame.
type frameMsg time.Time

// Model implements the Bubble Tea game UI.
type Model struct {
	ctx      *Context
	handlers map[scene]sceneHandler
	scene    scene

	width  int
	height int
	flash  flash
	help   help.Model

	// login
	inputs      []textinput.Model
	focus       int
	confirming  bool
	pendingName string
	pendingPass string
	busy        bool

	// play
	engine    *game.Engine
	recorder  *record.Recorder
	keys      []rune
	best      int
	lastScore int
	hasLast   bool

	history *historyui.Model
}

// NewModel constructs the game UI. When ctx.User is already set the login
// scene is skipped.
func NewModel(ctx *Context) (*Model, error) {
	if ctx.Now == nil {
		ctx.Now = time.Now
	}
	if ctx.Picker == nil {
		ctx.Picker = story.NewPicker()
	}
	machine, err := game.NewMachine(ctx.Corpus, game.Options{
		InitialDelay: ctx.Config.InitialDelay,
		DelayStep:    ctx.Config.DelayStep,
		Picker:       ctx.Picker,
		Logger:       &ctx.Log,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}
	m := &Model{
		ctx:      ctx,
		engine:   game.NewEngine(machine, metrics.NewSampler(ctx.Config.SampleInterval)),
		recorder: record.NewRecorder(ctx.Store, ctx.Log),
		help:     help.New(),
	}
	m.handlers = map[scene]sceneHandler{
		sceneLogin:   {update: (*Model).updateLogin, view: (*Model).viewLogin},
		sceneMenu:    {update: (*Model).updateMenu, view: (*Model).viewMenu},
		scenePlay:    {update: (*Model).updatePlay, view: (*Model).viewPlay},
		sceneHistory: {update: (*Model).updateHistory, view: (*Model).viewHistory},
	}
	m.initInputs()
	if ctx.User != nil {
		m.enterMenu()
	}
	return m, nil
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.tick())
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.history != nil {
			m.history.Update(msg)
		}
		return m, nil
	case frameMsg:
		m.frame(time.Time(msg))
		return m, m.tick()
	case authResultMsg:
		m.handleAuthResult(msg)
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		return m, m.handlers[m.scene].update(m, msg)
	}
	if m.scene == sceneLogin {
		return m, m.updateInputs(msg)
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	return m.handlers[m.scene].view(m)
}

func (m *Model) tick() tea.Cmd {
	fps := m.ctx.Config.FPS
	if fps <= 0 {
		fps = defaultFPS
	}
	return tea.Tick(time.Second/time.Duration(fps), func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func (m *Model) frame(now time.Time) {
	m.flash.expire(now)
	if m.scene == scenePlay {
		m.playFrame(now)
	}
}

func (m *Model) setScene(s scene) {
	if s != m.scene {
		m.ctx.Log.Debug().Stringer("from", m.scene).Stringer("to", s).Msg("scene change")
	}
	m.scene = s
}

func (m *Model) enterMenu() {
	m.refreshBest()
	m.setScene(sceneMenu)
}

func (m *Model) refreshBest() {
	if m.ctx.User == nil {
		m.best = 0
		return
	}
	best, err := m.ctx.Store.BestScore(context.Background(), m.ctx.User.ID)
	if err != nil {
		m.ctx.Log.Error().Err(err).Msg("failed to load best score")
		return
	}
	m.best = best
}

func (m *Model) contentWidth() int {
	width := m.width
	if width <= 0 {
		width = 80
	}
	w := int(float64(width) * 0.70)
	if w < 1 {
		w = 1
	}
	return w
}
