package ui

import (
	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"

	"project-browser/internal/api"
	"project-browser/internal/browser"
	"project-browser/internal/config"
)

// --- Model / State ---
type state int

const (
	stateWelcome state = iota
	stateTokenPrompt
	stateUserPrompt
	stateBrowse
	stateRename
	stateConfirmDelete
	stateUpload
	stateQuit
)

type rowKind int

const (
	rowProject rowKind = iota
	rowFile
)

// row is one line of the browse tree: a project or one of its files.
type row struct {
	kind     rowKind
	depth    int
	parentID string // enclosing project, "" at top level
	project  api.Project
	file     api.FileAttachment
}

func (r row) key() string {
	if r.kind == rowFile {
		return "file:" + r.file.ID
	}
	return r.project.ID
}

func (r row) hasChildren() bool {
	return r.kind == rowProject && (len(r.project.NestedProjects) > 0 || len(r.project.Files) > 0)
}

// SearchState is the search bar.
type SearchState struct {
	searching bool
	input     textinput.Model
}

// pendingDelete is the target awaiting confirmation.
type pendingDelete struct {
	kind  rowKind
	id    string
	label string
}

type Model struct {
	state         state
	cfg           config.Config
	hasRC         bool
	statusMsg     string
	loadErr       error
	width, height int

	// token was typed in and still needs to be written to the rc file
	saveToken bool

	session *browser.Session
	view    browser.State
	loading bool

	viewport viewport.Model
	spinner  spinner.Model

	ti     textinput.Model // token
	ui     textinput.Model // user id
	rename textinput.Model
	search SearchState
	picker filepicker.Model

	rows     []row
	cursor   int
	expanded map[string]bool // project id -> children shown

	renameID     string
	confirm      *pendingDelete
	uploadTarget string
}
