package ui

import (
	"os"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"project-browser/internal/api"
	"project-browser/internal/browser"
	"project-browser/internal/config"
)

// InitialModel builds the TUI around session. With a complete token and
// user id it starts on the browse screen and loads immediately.
func InitialModel(cfg config.Config, session *browser.Session) Model {
	m := Model{
		state:    stateWelcome,
		cfg:      cfg,
		hasRC:    config.Exists(cfg.Path),
		session:  session,
		view:     browser.NewState(),
		expanded: make(map[string]bool),
	}

	switch {
	case cfg.Token == "":
		m.statusMsg = "No token in " + cfg.Path + " or PB_TOKEN. Press Enter to type one."
	case cfg.UserID == "":
		m.statusMsg = "Token found, user id missing. Press Enter to type one."
	default:
		m.statusMsg = "Loading projects…"
	}

	ti := textinput.New()
	ti.Placeholder = "API bearer token"
	ti.Focus()
	ti.EchoMode = textinput.EchoPassword
	ti.CharLimit = 2048
	m.ti = ti

	ui := textinput.New()
	ui.Placeholder = "User id"
	ui.CharLimit = 200
	m.ui = ui

	si := textinput.New()
	si.Placeholder = "Search projects…"
	si.CharLimit = 200
	si.Width = 40
	m.search.input = si

	ri := textinput.New()
	ri.Placeholder = "Surname"
	ri.CharLimit = 200
	ri.Width = 40
	m.rename = ri

	fp := filepicker.New()
	fp.AllowedTypes = api.AllowedImageExts
	if wd, err := os.Getwd(); err == nil {
		fp.CurrentDirectory = wd
	}
	m.picker = fp

	sp := spinner.New()
	sp.Spinner = spinner.Line
	sp.Style = subtleStyle
	m.spinner = sp

	m.viewport = viewport.New(80, 20)

	if cfg.Token != "" && cfg.UserID != "" {
		m.session.SetCredentials(m.credentials())
		m.state = stateBrowse
		m.loading = true
	}
	return m
}

func (m Model) Init() tea.Cmd {
	if m.loading {
		return tea.Batch(m.spinner.Tick, m.loadCmd())
	}
	return nil
}

func (m Model) credentials() browser.Credentials {
	return browser.Credentials{Token: m.cfg.Token, UserID: m.cfg.UserID}
}
