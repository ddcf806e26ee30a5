package ui

import (
	"strings"

	tree "github.com/charmbracelet/lipgloss/tree"
)

// generateTreeLines renders rows as a tree and returns one line per row.
// Rows must be in display order with parents before their children.
func generateTreeLines(rows []row, labelFn func(i int, r row) string) []string {
	if len(rows) == 0 {
		return []string{}
	}

	tr := tree.New()
	nodes := make(map[string]*tree.Tree, len(rows))

	for i, r := range rows {
		nodes[r.key()] = tree.Root(labelFn(i, r))
	}

	for _, r := range rows {
		node := nodes[r.key()]
		if r.parentID != "" {
			if parent, ok := nodes[r.parentID]; ok {
				parent.Child(node)
				continue
			}
		}
		tr.Child(node)
	}

	lines := strings.Split(tr.String(), "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func displayRow(r row) string {
	if r.kind == rowFile {
		name := r.file.Filename
		if name == "" {
			name = r.file.ID
		}
		return symbolFile + " " + name
	}
	label := symbolProject + " " + r.project.Name
	if r.project.Surname != "" {
		label += " " + surnameStyle.Render("("+r.project.Surname+")")
	}
	if r.project.LatestStatusUpdate != "" {
		label += "  " + subtleStyle.Render(r.project.LatestStatusUpdate)
	}
	if r.hasChildren() {
		label += " " + subtleStyle.Render(childSummary(r))
	}
	return label
}

func childSummary(r row) string {
	n, f := len(r.project.NestedProjects), len(r.project.Files)
	var parts []string
	if n > 0 {
		parts = append(parts, plural(n, "project"))
	}
	if f > 0 {
		parts = append(parts, plural(f, "file"))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
