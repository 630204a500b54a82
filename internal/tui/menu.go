package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/storytype/internal/historyui"
)

func (m *Model) updateMenu(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, menuKeys.Quit):
		return tea.Quit
	case key.Matches(msg, menuKeys.Play):
		m.startRun()
	case key.Matches(msg, menuKeys.History):
		m.openHistory()
	case key.Matches(msg, menuKeys.Logout):
		m.logout()
	}
	return nil
}

func (m *Model) viewMenu() string {
	theme := m.ctx.Theme
	lines := []string{theme.Title.Render("storytype"), ""}
	if m.ctx.User != nil {
		lines = append(lines, "Player: "+theme.Score.Render(m.ctx.User.Username))
	}
	if m.hasLast {
		lines = append(lines, fmt.Sprintf("Your score was %s", theme.Score.Render(fmt.Sprint(m.lastScore))))
	}
	lines = append(lines,
		fmt.Sprintf("Best score: %s", theme.Score.Render(fmt.Sprint(m.best))),
		"",
		"Type the letters before they reach the edge.",
		"",
		m.help.ShortHelpView(menuKeys.ShortHelp()),
	)
	if text := m.flash.String(); text != "" {
		lines = append(lines, "", theme.Error.Render(text))
	}
	return m.place(strings.Join(lines, "\n"))
}

func (m *Model) openHistory() {
	if m.ctx.User == nil {
		return
	}
	records, err := m.ctx.Store.ListScores(context.Background(), m.ctx.User.ID)
	if err != nil {
		m.ctx.Log.Error().Err(err).Msg("failed to load history")
		m.flash.set(m.ctx.Now(), "Could not load history")
		return
	}
	m.history = historyui.New(*m.ctx.User, records, historyui.Options{
		Paint:    m.ctx.Theme.Paint,
		Embedded: true,
	})
	if m.width > 0 && m.height > 0 {
		m.history.Update(tea.WindowSizeMsg{Width: m.width, Height: m.height})
	}
	m.setScene(sceneHistory)
}

func (m *Model) updateHistory(msg tea.KeyMsg) tea.Cmd {
	if m.history == nil {
		m.enterMenu()
		return nil
	}
	_, cmd := m.history.Update(msg)
	if m.history.Done() {
		m.history = nil
		m.enterMenu()
		return nil
	}
	return cmd
}

func (m *Model) viewHistory() string {
	if m.history == nil {
		return ""
	}
	return m.history.View()
}
