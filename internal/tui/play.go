package tui

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/storytype/internal/compare"
	"github.com/verte-zerg/storytype/internal/game"
	"github.com/verte-zerg/storytype/internal/metrics"
)

const liveChartHeight = 6

func (m *Model) startRun() {
	m.keys = m.keys[:0]
	m.flash.clear()
	m.engine.Start(m.ctx.Now())
	m.ctx.Log.Debug().Int("story", m.engine.Machine().Story().Index).Msg("run started")
	m.setScene(scenePlay)
}

func (m *Model) updatePlay(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, playKeys.Quit):
		return tea.Quit
	case key.Matches(msg, playKeys.Abandon):
		m.abandonRun()
		return nil
	}
	switch msg.Type {
	case tea.KeySpace:
		m.keys = append(m.keys, ' ')
	case tea.KeyRunes:
		for _, r := range msg.Runes {
			if unicode.IsPrint(r) {
				m.keys = append(m.keys, r)
			}
		}
	}
	return nil
}

// abandonRun ends the run without saving it.
func (m *Model) abandonRun() {
	res := m.engine.Machine().Finish()
	m.keys = m.keys[:0]
	m.ctx.Log.Info().Int("score", res.Score).Msg("run abandoned")
	m.enterMenu()
	m.flash.set(m.ctx.Now(), "Run abandoned")
}

// playFrame runs one frame of the game: buffered keys are applied, the
// sampler is polled and the decay clock advances.
func (m *Model) playFrame(now time.Time) {
	machine := m.engine.Machine()
	if machine.State() != game.StateActive {
		return
	}
	atEdge := runewidth.StringWidth(machine.Pending()) >= m.contentWidth()
	res := m.engine.Frame(now, m.keys, atEdge)
	m.keys = m.keys[:0]
	if !res.Finished {
		return
	}
	m.finishRun(res)
}

func (m *Model) finishRun(res game.FrameResult) {
	m.lastScore = res.Result.Score
	m.hasLast = true
	if m.ctx.User != nil {
		if _, err := m.recorder.Persist(context.Background(), *m.ctx.User, res.Result); err != nil {
			m.ctx.Log.Error().Err(err).Msg("failed to save run")
			m.enterMenu()
			m.flash.set(m.ctx.Now(), "Could not save this run")
			return
		}
	}
	m.enterMenu()
	m.best = max(m.best, res.Result.Score)
}

func (m *Model) liveWindow() int {
	if m.ctx.Config.LiveWindow > 0 {
		return m.ctx.Config.LiveWindow
	}
	return metrics.DefaultWindow
}

func (m *Model) viewPlay() string {
	theme := m.ctx.Theme
	machine := m.engine.Machine()
	width := m.contentWidth()

	header := fmt.Sprintf("%s %s    %s %s",
		theme.Muted.Render("Your Score"),
		theme.Score.Render(fmt.Sprint(machine.Score())),
		theme.Muted.Render("Score to Beat"),
		theme.Score.Render(fmt.Sprint(m.best)),
	)
	line := renderPendingLine(buildPendingRunes(machine.Pending(), theme), width)
	chart := compare.RenderString(
		compare.New(m.engine.Sampler().Last(m.liveWindow()), nil),
		compare.Options{
			Width:   compare.PlotWidthFor(width, metrics.MaxSample),
			Height:  liveChartHeight,
			Compact: true,
			Paint:   theme.Paint,
		},
	)
	content := strings.Join([]string{header, "", line, "", chart}, "\n")

	footer := m.help.ShortHelpView(playKeys.ShortHelp())
	if text := m.flash.String(); text != "" {
		footer = theme.Error.Render(text) + "  " + footer
	}
	if m.width == 0 || m.height < 3 {
		return content + "\n" + footer
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	return body + "\n" + lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
}
