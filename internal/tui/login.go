package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/storytype/internal/auth"
	"github.com/verte-zerg/storytype/internal/model"
)

const (
	inputUsername = iota
	inputPassword
)

// authResultMsg carries the outcome of a login, sign-up or guest request.
type authResultMsg struct {
	user         *model.User
	needsConfirm bool
	err          error
}

func (m *Model) initInputs() {
	name := textinput.New()
	name.Prompt = "Username: "
	name.CharLimit = auth.MaxUsernameLen
	name.Placeholder = "letters, digits, _"

	pass := textinput.New()
	pass.Prompt = "Password: "
	pass.CharLimit = auth.MaxPasswordLen
	pass.EchoMode = textinput.EchoPassword
	pass.EchoCharacter = '•'

	m.inputs = []textinput.Model{name, pass}
	m.focus = inputUsername
	if preset := m.ctx.Config.User; preset != "" {
		m.inputs[inputUsername].SetValue(preset)
		m.focus = inputPassword
	}
	m.focusInput(m.focus)
}

func (m *Model) focusInput(idx int) tea.Cmd {
	m.focus = idx
	var cmd tea.Cmd
	for i := range m.inputs {
		if i == idx {
			cmd = m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
	return cmd
}

func (m *Model) resetLogin() {
	m.confirming = false
	m.pendingName = ""
	m.pendingPass = ""
	m.busy = false
	m.inputs[inputPassword].SetValue("")
	m.focusInput(inputUsername)
	if m.inputs[inputUsername].Value() != "" {
		m.focusInput(inputPassword)
	}
}

func (m *Model) updateLogin(msg tea.KeyMsg) tea.Cmd {
	if m.busy {
		return nil
	}
	if m.confirming {
		return m.updateConfirm(msg)
	}
	switch {
	case key.Matches(msg, loginKeys.Quit):
		return tea.Quit
	case key.Matches(msg, loginKeys.Guest):
		m.busy = true
		return m.guestCmd()
	case key.Matches(msg, loginKeys.Next):
		return m.focusInput((m.focus + 1) % len(m.inputs))
	case key.Matches(msg, loginKeys.Submit):
		if m.focus == inputUsername {
			return m.focusInput(inputPassword)
		}
		return m.submitLogin()
	}
	return m.updateInputs(msg)
}

func (m *Model) updateInputs(msg tea.Msg) tea.Cmd {
	cmds := make([]tea.Cmd, len(m.inputs))
	for i := range m.inputs {
		m.inputs[i], cmds[i] = m.inputs[i].Update(msg)
	}
	return tea.Batch(cmds...)
}

func (m *Model) updateConfirm(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, confirmKeys.Yes):
		m.busy = true
		return m.signUpCmd(m.pendingName, m.pendingPass)
	case key.Matches(msg, confirmKeys.No):
		m.resetLogin()
	}
	return nil
}

func (m *Model) submitLogin() tea.Cmd {
	now := m.ctx.Now()
	name := auth.NormalizeUsername(m.inputs[inputUsername].Value())
	password := m.inputs[inputPassword].Value()
	if err := auth.ValidateUsername(name); err != nil {
		m.flash.set(now, capitalize(err.Error()))
		return m.focusInput(inputUsername)
	}
	if name == model.GuestUsername {
		m.flash.set(now, "Use ctrl+g to play as guest")
		return nil
	}
	if err := auth.ValidatePassword(password); err != nil {
		m.flash.set(now, capitalize(err.Error()))
		return m.focusInput(inputPassword)
	}
	m.inputs[inputUsername].SetValue(name)
	m.pendingName = name
	m.pendingPass = password
	m.busy = true
	return m.loginCmd(name, password)
}

func (m *Model) loginCmd(name, password string) tea.Cmd {
	st := m.ctx.Store
	return func() tea.Msg {
		user, err := st.FindUser(context.Background(), name)
		if err != nil {
			return authResultMsg{err: err}
		}
		if user == nil {
			return authResultMsg{needsConfirm: true}
		}
		if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
			return authResultMsg{err: err}
		}
		return authResultMsg{user: user}
	}
}

func (m *Model) signUpCmd(name, password string) tea.Cmd {
	st := m.ctx.Store
	return func() tea.Msg {
		hash, err := auth.HashPassword(password)
		if err != nil {
			return authResultMsg{err: err}
		}
		user, err := st.CreateUser(context.Background(), name, hash)
		if err != nil {
			return authResultMsg{err: err}
		}
		return authResultMsg{user: &user}
	}
}

func (m *Model) guestCmd() tea.Cmd {
	st := m.ctx.Store
	return func() tea.Msg {
		user, err := st.EnsureUser(context.Background(), model.GuestUsername, "")
		if err != nil {
			return authResultMsg{err: err}
		}
		return authResultMsg{user: &user}
	}
}

func (m *Model) handleAuthResult(msg authResultMsg) {
	m.busy = false
	now := m.ctx.Now()
	switch {
	case msg.err != nil:
		if errors.Is(msg.err, auth.ErrIncorrectPassword) {
			m.flash.set(now, "Incorrect password")
		} else {
			m.ctx.Log.Error().Err(msg.err).Msg("login failed")
			m.flash.set(now, "Login failed, see the log for details")
		}
		m.inputs[inputPassword].SetValue("")
		m.focusInput(inputPassword)
	case msg.needsConfirm:
		m.confirming = true
	case msg.user != nil:
		m.ctx.User = msg.user
		m.ctx.Log.Info().Str("user", msg.user.Username).Msg("logged in")
		m.resetLogin()
		m.flash.clear()
		m.hasLast = false
		m.enterMenu()
	}
}

func (m *Model) logout() {
	if m.ctx.User != nil {
		m.ctx.Log.Info().Str("user", m.ctx.User.Username).Msg("logged out")
	}
	m.ctx.User = nil
	m.best = 0
	m.hasLast = false
	m.history = nil
	m.resetLogin()
	m.setScene(sceneLogin)
}

func (m *Model) viewLogin() string {
	lines := []string{m.ctx.Theme.Title.Render("storytype"), ""}
	if m.confirming {
		lines = append(lines,
			fmt.Sprintf("No account named %q.", m.pendingName),
			"Create a new account? (y/n)",
			"",
			m.help.ShortHelpView(confirmKeys.ShortHelp()),
		)
	} else {
		for _, input := range m.inputs {
			lines = append(lines, input.View())
		}
		lines = append(lines, "", m.help.ShortHelpView(loginKeys.ShortHelp()))
	}
	if text := m.flash.String(); text != "" {
		lines = append(lines, "", m.ctx.Theme.Error.Render(text))
	}
	return m.place(strings.Join(lines, "\n"))
}

func (m *Model) place(content string) string {
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
