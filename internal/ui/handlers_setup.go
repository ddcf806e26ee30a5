package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"project-browser/internal/auth"
	"project-browser/internal/infra/logx"
)

// ---------- Setup Screen Handlers ----------

func (m Model) handleWelcomeKey(key string) (Model, tea.Cmd) {
	if key != "enter" {
		return m, nil
	}
	switch {
	case m.cfg.Token == "":
		m.state = stateTokenPrompt
		m.statusMsg = "Please enter your token."
		cmd := m.ti.Focus()
		return m, cmd
	case m.cfg.UserID == "":
		m.state = stateUserPrompt
		m.statusMsg = "Please enter your user id."
		cmd := m.ui.Focus()
		return m, cmd
	}
	return m.connect()
}

func (m Model) handleTokenPromptKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.state = stateWelcome
		m.statusMsg = "Back to welcome."
		return m, nil
	case "enter":
		token := strings.TrimSpace(m.ti.Value())
		if token == "" {
			m.statusMsg = "Token is empty."
			return m, nil
		}
		logx.RegisterSecret(token)
		m.cfg.Token = token
		m.saveToken = true
		if m.cfg.UserID == "" {
			if id, err := auth.UserIDFromToken(token); err == nil {
				m.cfg.UserID = id
			} else {
				logx.With(logx.Fields{"err": err}).Debugf("no user id in token")
			}
		}
		if m.cfg.UserID == "" {
			m.state = stateUserPrompt
			m.statusMsg = "No user id in the token. Please enter it."
			m.ti.Blur()
			cmd := m.ui.Focus()
			return m, cmd
		}
		return m.connect()
	default:
		var cmd tea.Cmd
		m.ti, cmd = m.ti.Update(msg)
		return m, cmd
	}
}

func (m Model) handleUserPromptKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.state = stateWelcome
		m.statusMsg = "Back to welcome."
		return m, nil
	case "enter":
		id := strings.TrimSpace(m.ui.Value())
		if id == "" {
			m.statusMsg = "User id is empty."
			return m, nil
		}
		m.cfg.UserID = id
		m.ui.Blur()
		return m.connect()
	default:
		var cmd tea.Cmd
		m.ui, cmd = m.ui.Update(msg)
		return m, cmd
	}
}

// connect installs the credentials and loads when they changed.
func (m Model) connect() (Model, tea.Cmd) {
	m.state = stateBrowse
	if !m.session.SetCredentials(m.credentials()) {
		m.rebuildRows()
		return m, nil
	}
	m.statusMsg = "Loading projects…"
	return m.startLoad()
}
