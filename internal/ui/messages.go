package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"project-browser/internal/browser"
	"project-browser/internal/config"
)

const (
	loadTimeout   = 30 * time.Second
	mutateTimeout = 30 * time.Second
	uploadTimeout = 2 * time.Minute
)

// ---------- Messages / Cmds ----------
type loadMsg struct{ result browser.LoadResult }

type outcomeMsg struct{ outcome browser.Outcome }

type savedMsg struct {
	path string
	err  error
}

func (m Model) loadCmd() tea.Cmd {
	s := m.session
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		return loadMsg{result: s.Load(ctx)}
	}
}

// mutateCmd runs one session mutation off the event loop.
func mutateCmd(timeout time.Duration, run func(ctx context.Context) browser.Outcome) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return outcomeMsg{outcome: run(ctx)}
	}
}

func (m Model) addNestedCmd(parentID string) tea.Cmd {
	s := m.session
	return mutateCmd(mutateTimeout, func(ctx context.Context) browser.Outcome {
		return s.AddNestedProject(ctx, parentID)
	})
}

func (m Model) deleteProjectCmd(id string) tea.Cmd {
	s := m.session
	return mutateCmd(mutateTimeout, func(ctx context.Context) browser.Outcome {
		return s.DeleteProject(ctx, id)
	})
}

func (m Model) deleteFileCmd(id string) tea.Cmd {
	s := m.session
	return mutateCmd(mutateTimeout, func(ctx context.Context) browser.Outcome {
		return s.DeleteFile(ctx, id)
	})
}

func (m Model) renameCmd(id, surname string) tea.Cmd {
	s := m.session
	return mutateCmd(mutateTimeout, func(ctx context.Context) browser.Outcome {
		return s.Rename(ctx, id, surname)
	})
}

func (m Model) uploadCmd(projectID, path string) tea.Cmd {
	s := m.session
	return mutateCmd(uploadTimeout, func(ctx context.Context) browser.Outcome {
		return s.Upload(ctx, projectID, path)
	})
}

func (m Model) saveConfigCmd() tea.Cmd {
	cfg := m.cfg
	return func() tea.Msg {
		path := cfg.Path
		if path == "" {
			path = config.DefaultPath()
		}
		return savedMsg{path: path, err: config.Save(path, cfg)}
	}
}
