package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"project-browser/internal/browser"
	"project-browser/internal/infra/logx"
)

// ---------- Update ----------
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		key := msg.String()
		if key == "ctrl+c" {
			return m, tea.Quit
		}
		// q quits unless a text input has focus
		if key == "q" && !m.typing() {
			return m, tea.Quit
		}

		switch m.state {
		case stateWelcome:
			return m.handleWelcomeKey(key)
		case stateTokenPrompt:
			return m.handleTokenPromptKey(msg)
		case stateUserPrompt:
			return m.handleUserPromptKey(msg)
		case stateBrowse:
			return m.handleBrowseKey(msg)
		case stateRename:
			return m.handleRenameKey(msg)
		case stateConfirmDelete:
			return m.handleConfirmKey(key)
		case stateUpload:
			return m.handleUploadMsg(msg)
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resizeViewport()
		m.updateBrowseViewport()
		if m.state == stateUpload {
			var cmd tea.Cmd
			m.picker, cmd = m.picker.Update(msg)
			return m, cmd
		}

	case loadMsg:
		return m.applyLoad(msg.result)

	case outcomeMsg:
		return m.applyOutcome(msg.outcome)

	case savedMsg:
		if msg.err != nil {
			logx.With(logx.Fields{"path": msg.path, "err": msg.err}).Warnf("saving config failed")
			m.statusMsg = "Could not save token: " + msg.err.Error()
			return m, nil
		}
		m.saveToken = false
		m.hasRC = true
		m.statusMsg = "Token saved to " + msg.path
		return m, nil

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	default:
		// directory listings and other picker internals
		if m.state == stateUpload {
			return m.handleUploadMsg(msg)
		}
	}

	return m, nil
}

// typing reports whether keys go to a text input.
func (m Model) typing() bool {
	switch m.state {
	case stateTokenPrompt, stateUserPrompt, stateRename:
		return true
	case stateBrowse:
		return m.search.searching
	}
	return false
}

// applyLoad installs a load result unless a newer one was applied already.
func (m Model) applyLoad(r browser.LoadResult) (Model, tea.Cmd) {
	if !m.view.ApplyLoad(r) {
		return m, nil
	}
	// keep the spinner while a newer load is in flight
	if r.Seq >= m.session.LastIssued() {
		m.loading = false
	}
	m.rebuildRows()
	if r.Err != nil {
		m.loadErr = r.Err
		m.statusMsg = "Error fetching folders: " + r.Err.Error()
		return m, nil
	}
	m.loadErr = nil
	m.statusMsg = fmt.Sprintf("%s loaded.", plural(len(m.view.Folders), "project"))
	if m.saveToken {
		return m, m.saveConfigCmd()
	}
	return m, nil
}

// applyOutcome reports a finished mutation and reloads when the list changed
// on the server.
func (m Model) applyOutcome(o browser.Outcome) (Model, tea.Cmd) {
	if o.Err != nil {
		m.statusMsg = fmt.Sprintf("%s failed: %v", o.Op, o.Err)
		return m, nil
	}
	m.statusMsg = fmt.Sprintf("%s done.", o.Op)
	if m.view.ApplyOutcome(o) {
		return m.startLoad()
	}
	m.rebuildRows()
	return m, nil
}

func (m Model) startLoad() (Model, tea.Cmd) {
	m.loading = true
	return m, tea.Batch(m.spinner.Tick, m.loadCmd())
}
