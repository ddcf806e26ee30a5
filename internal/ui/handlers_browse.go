package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"project-browser/internal/browser"
)

// ---------- Browse Handlers ----------

func (m Model) handleBrowseKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.search.searching {
		return m.handleSearchKey(msg)
	}

	key := msg.String()
	switch key {
	case "j", "down", "k", "up", "ctrl+d", "pgdown", "ctrl+u", "pgup", "g", "home", "G", "end":
		return m.handleCursorMovement(key)
	case "l", "right", "h", "left", "L", "H":
		return m.handleTreeNavigation(key)

	case "/", "f":
		m.search.searching = true
		cmd := m.search.input.Focus()
		return m, cmd
	case "esc":
		if m.view.SearchTerm != "" {
			m.search.input.SetValue("")
			m.view.SetSearch("")
			m.rebuildRows()
		}
		return m, nil
	case "z":
		m.view.ToggleMode()
		m.statusMsg = "Search mode: " + m.view.Mode.String()
		m.rebuildRows()
		return m, nil
	case "s":
		m.view.SortBy(browser.SortByName)
		m.rebuildRows()
		return m, nil
	case "d":
		m.view.SortBy(browser.SortByDate)
		m.rebuildRows()
		return m, nil
	case "r":
		if m.loading {
			return m, nil
		}
		m.statusMsg = "Reloading…"
		return m.startLoad()
	}

	r, ok := m.currentRow()
	if !ok {
		return m, nil
	}
	switch key {
	case "a":
		if r.kind != rowProject {
			return m, nil
		}
		m.expanded[r.project.ID] = true
		m.statusMsg = "Adding project under " + r.project.Name + "…"
		return m, m.addNestedCmd(r.project.ID)
	case "e":
		if r.kind != rowProject {
			return m, nil
		}
		m.state = stateRename
		m.renameID = r.project.ID
		m.rename.SetValue(r.project.Surname)
		m.rename.CursorEnd()
		cmd := m.rename.Focus()
		return m, cmd
	case "u":
		if r.kind != rowProject {
			return m, nil
		}
		m.state = stateUpload
		m.uploadTarget = r.project.ID
		m.statusMsg = "Pick a JPEG or PNG for " + r.project.Name
		return m, m.picker.Init()
	case "x", "delete":
		m.confirm = &pendingDelete{kind: r.kind, id: r.project.ID, label: r.project.Name}
		if r.kind == rowFile {
			m.confirm.id = r.file.ID
			m.confirm.label = r.file.Filename
		}
		m.state = stateConfirmDelete
		return m, nil
	}
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.search.searching = false
		m.search.input.Blur()
		m.search.input.SetValue("")
		m.view.SetSearch("")
		m.rebuildRows()
		return m, nil
	case "enter":
		m.search.searching = false
		m.search.input.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.search.input, cmd = m.search.input.Update(msg)
	if term := m.search.input.Value(); term != m.view.SearchTerm {
		m.view.SetSearch(term)
		m.cursor = 0
		m.rebuildRows()
	}
	return m, cmd
}

func (m Model) handleRenameKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.state = stateBrowse
		m.rename.Blur()
		m.renameID = ""
		return m, nil
	case "enter":
		surname := m.rename.Value()
		id := m.renameID
		m.state = stateBrowse
		m.rename.Blur()
		m.renameID = ""
		m.statusMsg = "Renaming…"
		return m, m.renameCmd(id, surname)
	}
	var cmd tea.Cmd
	m.rename, cmd = m.rename.Update(msg)
	return m, cmd
}

func (m Model) handleConfirmKey(key string) (Model, tea.Cmd) {
	target := m.confirm
	switch key {
	case "y", "Y", "enter":
		m.state = stateBrowse
		m.confirm = nil
		if target == nil {
			return m, nil
		}
		m.statusMsg = "Deleting " + target.label + "…"
		if target.kind == rowFile {
			return m, m.deleteFileCmd(target.id)
		}
		return m, m.deleteProjectCmd(target.id)
	case "n", "N", "esc":
		m.state = stateBrowse
		m.confirm = nil
		m.statusMsg = "Delete cancelled."
	}
	return m, nil
}

// handleUploadMsg feeds the file picker until a file is chosen or the user
// backs out with esc.
func (m Model) handleUploadMsg(msg tea.Msg) (Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
		m.state = stateBrowse
		m.uploadTarget = ""
		m.statusMsg = "Upload cancelled."
		return m, nil
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	if ok, path := m.picker.DidSelectFile(msg); ok {
		target := m.uploadTarget
		m.state = stateBrowse
		m.uploadTarget = ""
		m.expanded[target] = true
		m.statusMsg = "Uploading " + path + "…"
		return m, tea.Batch(cmd, m.uploadCmd(target, path))
	}
	if ok, path := m.picker.DidSelectDisabledFile(msg); ok {
		m.statusMsg = path + " is not a JPEG or PNG."
	}
	return m, cmd
}

// ---------- Navigation ----------

func (m Model) handleCursorMovement(key string) (Model, tea.Cmd) {
	if len(m.rows) == 0 {
		return m, nil
	}
	page := max(1, m.viewport.Height)
	switch key {
	case "j", "down":
		m.cursor++
	case "k", "up":
		m.cursor--
	case "ctrl+d", "pgdown":
		m.cursor += page
	case "ctrl+u", "pgup":
		m.cursor -= page
	case "g", "home":
		m.cursor = 0
	case "G", "end":
		m.cursor = len(m.rows) - 1
	}
	m.clampCursor()
	m.updateBrowseViewport()
	return m, nil
}

func (m Model) handleTreeNavigation(key string) (Model, tea.Cmd) {
	switch key {
	case "L":
		m.expandAll()
		return m, nil
	case "H":
		m.collapseAll()
		return m, nil
	}

	r, ok := m.currentRow()
	if !ok {
		return m, nil
	}
	switch key {
	case "l", "right":
		if r.hasChildren() {
			m.expanded[r.project.ID] = true
			m.rebuildRows()
		}
	case "h", "left":
		if r.kind == rowProject && m.expanded[r.project.ID] {
			delete(m.expanded, r.project.ID)
			m.rebuildRows()
			return m, nil
		}
		// collapse the enclosing project and move onto it
		if r.parentID != "" {
			delete(m.expanded, r.parentID)
			m.rebuildRows()
			if i := m.rowIndex(r.parentID); i >= 0 {
				m.cursor = i
				m.updateBrowseViewport()
			}
		}
	}
	return m, nil
}
