package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.state == stateQuit {
		return ""
	}

	header := m.renderHeader()
	var body string
	switch m.state {
	case stateWelcome:
		body = m.viewWelcome()
	case stateTokenPrompt:
		body = m.viewPrompt("🔑 Token", "Bearer token for the project API", m.ti.View())
	case stateUserPrompt:
		body = m.viewPrompt("👤 User", "Whose projects should be listed?", m.ui.View())
	case stateUpload:
		body = m.viewUpload()
	default:
		return lipgloss.JoinVertical(lipgloss.Left, header, m.renderBrowseHeader(), m.viewport.View(), m.renderBrowseFooter())
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, body)
}

func (m Model) renderHeader() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Project Browser"))
	b.WriteString("\n")
	b.WriteString(dividerStyle.Render(strings.Repeat("─", max(10, m.width-2))))
	b.WriteString("\n")
	return b.String()
}

func (m Model) viewWelcome() string {
	title := titleStyle.Render("📁 Project Browser")
	subtitle := subtitleStyle.Render("Browse, rename and organize your projects")

	var statusLines []string
	if m.cfg.Token != "" {
		statusLines = append(statusLines, okStyle.Render("✓ Token found"))
	} else {
		statusLines = append(statusLines, warnStyle.Render("⚠ No token (~/.pbrc or PB_TOKEN)"))
	}
	if m.hasRC {
		statusLines = append(statusLines, subtleStyle.Render("📁 Config: "+m.cfg.Path))
	}
	if m.statusMsg != "" {
		statusLines = append(statusLines, subtleStyle.Render(m.statusMsg))
	}

	content := fmt.Sprintf("%s\n%s\n\n%s", title, subtitle, strings.Join(statusLines, "\n"))
	help := renderFooter("", "⌨️  Enter: continue  •  q: quit")
	return centeredStyle.Width(m.width).Render(welcomeBoxStyle.Render(content)) + "\n\n" +
		centeredStyle.Width(m.width).Render(help)
}

func (m Model) viewPrompt(title, prompt, input string) string {
	var msg string
	if m.statusMsg != "" {
		msg = "\n" + subtleStyle.Render(m.statusMsg)
	}
	content := fmt.Sprintf("%s\n%s\n\n%s%s", titleStyle.Render(title), subtitleStyle.Render(prompt), input, msg)
	help := renderFooter("", "⌨️  Enter: confirm  •  Esc: back")
	return centeredStyle.Width(m.width).Render(welcomeBoxStyle.Render(content)) + "\n\n" +
		centeredStyle.Width(m.width).Render(help)
}

func (m Model) viewUpload() string {
	var b strings.Builder
	b.WriteString(subtitleStyle.Render("Upload image to " + m.projectName(m.uploadTarget)))
	b.WriteString("\n\n")
	b.WriteString(m.picker.View())
	b.WriteString("\n")
	b.WriteString(renderFooter(m.statusMsg, "enter: select  •  h/backspace: up  •  esc: cancel"))
	return b.String()
}

func (m Model) projectName(id string) string {
	for _, r := range m.rows {
		if r.kind == rowProject && r.project.ID == id {
			return r.project.Name
		}
	}
	return id
}

func (m Model) renderBrowseHeader() string {
	search := m.search.input.View()
	if !m.search.searching {
		term := m.view.SearchTerm
		if term == "" {
			term = subtleStyle.Render("(none)")
		}
		search = "Search: " + term
	}
	info := fmt.Sprintf("Sort: %s  •  Match: %s  •  %d of %d projects",
		m.view.Sort, m.view.Mode, len(m.view.Visible()), len(m.view.Folders))
	if m.loading {
		info = m.spinner.View() + " loading…  " + info
	}
	return search + "\n" + subtleStyle.Render(info) + "\n"
}

// updateBrowseViewport renders the rows into the viewport and scrolls to
// the cursor.
func (m *Model) updateBrowseViewport() {
	if len(m.rows) == 0 {
		switch {
		case m.loading:
			m.viewport.SetContent(subtleStyle.Render("Loading…"))
		case m.loadErr != nil:
			m.viewport.SetContent(errorStyle.Render("Could not load projects. Press r to retry."))
		case m.view.SearchTerm != "":
			m.viewport.SetContent(warnStyle.Render("No project matches the search."))
		default:
			m.viewport.SetContent(subtleStyle.Render("No projects."))
		}
		m.viewport.SetYOffset(0)
		return
	}

	lines := generateTreeLines(m.rows, func(_ int, r row) string { return displayRow(r) })
	var b strings.Builder
	for i, line := range lines {
		cursor := " "
		if i == m.cursor {
			cursor = cursorBarStyle.Render(" ")
			line = cursorLineStyle.Render(line)
		}
		b.WriteString(cursor + " " + line)
		if i < len(lines)-1 {
			b.WriteString("\n")
		}
	}
	m.viewport.SetContent(b.String())
	m.ensureCursorInViewport(m.cursor)
}

func (m Model) renderBrowseFooter() string {
	switch m.state {
	case stateConfirmDelete:
		if m.confirm != nil {
			what := "project"
			if m.confirm.kind == rowFile {
				what = "file"
			}
			return warnStyle.Render(fmt.Sprintf("Delete %s %q? y: yes  •  n: no", what, m.confirm.label))
		}
	case stateRename:
		return "Surname: " + m.rename.View() + "\n" + helpStyle.Render("enter: save  •  esc: cancel")
	}

	status := m.statusMsg
	if m.session != nil {
		if snap, ok := m.session.Metrics(); ok {
			status += fmt.Sprintf("  [requests: %d, failed: %d]", snap.TotalRequests, snap.Failed())
		}
	}
	return renderFooter(status,
		"j/k: move  •  h/l: collapse/expand  •  H/L: all  •  /: search  •  z: fuzzy  •  s/d: sort name/date",
		"a: add nested  •  e: rename  •  u: upload  •  x: delete  •  r: reload  •  q: quit")
}
