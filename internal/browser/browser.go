// Package browser holds the project browser's state and behavior: loading
// the folder tree, applying mutations, and the search/sort projection.
package browser

import (
	"context"

	"project-browser/internal/api"
)

// Browser runs a Session synchronously against its own State. It is meant
// for single-goroutine callers; the TUI drives Session and State itself.
type Browser struct {
	session *Session
	state   State
	err     error
}

// New returns a browser with default view state.
func New(session *Session) *Browser {
	return &Browser{session: session, state: NewState()}
}

// SetCredentials installs c and loads when both values became available
// or changed.
func (b *Browser) SetCredentials(ctx context.Context, c Credentials) {
	if b.session.SetCredentials(c) {
		b.Refresh(ctx)
	}
}

// Refresh reloads the folder list.
func (b *Browser) Refresh(ctx context.Context) {
	r := b.session.Load(ctx)
	if b.state.ApplyLoad(r) {
		b.err = r.Err
	}
}

// Err returns the error of the last applied load, if any.
func (b *Browser) Err() error { return b.err }

func (b *Browser) AddNestedProject(ctx context.Context, parentID string) {
	b.apply(ctx, b.session.AddNestedProject(ctx, parentID))
}

func (b *Browser) DeleteProject(ctx context.Context, projectID string) {
	b.apply(ctx, b.session.DeleteProject(ctx, projectID))
}

func (b *Browser) Rename(ctx context.Context, projectID, surname string) {
	b.apply(ctx, b.session.Rename(ctx, projectID, surname))
}

func (b *Browser) Upload(ctx context.Context, projectID, path string) {
	b.apply(ctx, b.session.Upload(ctx, projectID, path))
}

func (b *Browser) DeleteFile(ctx context.Context, fileID string) {
	b.apply(ctx, b.session.DeleteFile(ctx, fileID))
}

func (b *Browser) apply(ctx context.Context, o Outcome) {
	if b.state.ApplyOutcome(o) {
		b.Refresh(ctx)
	}
}

// Search sets the search term.
func (b *Browser) Search(term string) { b.state.SetSearch(term) }

// SortBy applies the sort toggle rule.
func (b *Browser) SortBy(field SortField) { b.state.SortBy(field) }

// Folders returns the loaded list.
func (b *Browser) Folders() []api.Project { return b.state.Folders }

// Visible returns the displayed projection.
func (b *Browser) Visible() []api.Project { return b.state.Visible() }

// State returns a copy of the view state.
func (b *Browser) State() State { return b.state }
