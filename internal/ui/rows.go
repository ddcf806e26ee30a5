package ui

import "project-browser/internal/api"

// flattenRows turns the displayed projects into tree rows. Files and nested
// projects of a project are only listed while it is expanded.
func flattenRows(projects []api.Project, expanded map[string]bool) []row {
	rows := make([]row, 0, len(projects))
	var walk func(p api.Project, parentID string, depth int)
	walk = func(p api.Project, parentID string, depth int) {
		rows = append(rows, row{kind: rowProject, depth: depth, parentID: parentID, project: p})
		if !expanded[p.ID] {
			return
		}
		for _, f := range p.Files {
			rows = append(rows, row{kind: rowFile, depth: depth + 1, parentID: p.ID, project: p, file: f})
		}
		for _, child := range p.NestedProjects {
			walk(child, p.ID, depth+1)
		}
	}
	for _, p := range projects {
		walk(p, "", 0)
	}
	return rows
}

// rebuildRows recomputes the rows from the view state and keeps the cursor
// on the same item when it is still listed.
func (m *Model) rebuildRows() {
	var keep string
	if r, ok := m.currentRow(); ok {
		keep = r.key()
	}
	m.rows = flattenRows(m.view.Visible(), m.expanded)
	if keep != "" {
		if i := m.rowIndex(keep); i >= 0 {
			m.cursor = i
		}
	}
	m.clampCursor()
	m.updateBrowseViewport()
}

func (m Model) currentRow() (row, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return row{}, false
	}
	return m.rows[m.cursor], true
}

func (m Model) rowIndex(key string) int {
	for i, r := range m.rows {
		if r.key() == key {
			return i
		}
	}
	return -1
}

func (m *Model) clampCursor() {
	if m.cursor > len(m.rows)-1 {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// expandAll opens every project that has something to show.
func (m *Model) expandAll() {
	var walk func(ps []api.Project)
	walk = func(ps []api.Project) {
		for _, p := range ps {
			if len(p.NestedProjects) > 0 || len(p.Files) > 0 {
				m.expanded[p.ID] = true
			}
			walk(p.NestedProjects)
		}
	}
	walk(m.view.Folders)
	m.rebuildRows()
}

func (m *Model) collapseAll() {
	clear(m.expanded)
	m.rebuildRows()
}
