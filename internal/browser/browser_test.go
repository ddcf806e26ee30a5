package browser

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"project-browser/internal/api"
	"project-browser/internal/apitest"
	"project-browser/internal/infra/logx"
)

type fakeAPI struct {
	mu       sync.Mutex
	token    string
	projects []api.Project
	listErr  error
	mutErr   error
	lists    []string // user ids listed
	calls    []string
}

func (f *fakeAPI) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	return f.mutErr
}

func (f *fakeAPI) ListProjects(_ context.Context, userID string, _ int) ([]api.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists = append(f.lists, userID)
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]api.Project(nil), f.projects...), nil
}

func (f *fakeAPI) AddNestedProject(_ context.Context, parentID, _, name string) error {
	return f.record("nest " + parentID + " " + name)
}

func (f *fakeAPI) DeleteProject(_ context.Context, id string) error {
	return f.record("delete " + id)
}

func (f *fakeAPI) UpdateSurname(_ context.Context, id, surname string) error {
	return f.record("surname " + id + " " + surname)
}

func (f *fakeAPI) UploadFromPath(_ context.Context, id, _, path string) error {
	return f.record("upload " + id + " " + filepath.Base(path))
}

func (f *fakeAPI) DeleteFile(_ context.Context, id string) error {
	return f.record("delete-file " + id)
}

func (f *fakeAPI) listCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.lists)
}

func newFakeBrowser(t *testing.T, f *fakeAPI) *Browser {
	t.Helper()
	s := NewSession(func(token string) API {
		f.token = token
		return f
	}, 0)
	b := New(s)
	b.SetCredentials(context.Background(), Credentials{Token: "tok", UserID: "u1"})
	return b
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	logx.SetOutput(&buf)
	logx.SetMinLevel(logx.LevelDebug)
	t.Cleanup(func() {
		logx.SetOutput(nil)
		logx.SetMinLevel(logx.LevelWarn)
	})
	return &buf
}

func TestLoadPopulatesFolders(t *testing.T) {
	f := &fakeAPI{projects: []api.Project{{ID: "1", Name: "One"}, {ID: "2", Name: "Two"}}}
	b := newFakeBrowser(t, f)

	if got := len(b.Folders()); got != 2 {
		t.Fatalf("folders = %d, want 2", got)
	}
	if f.token != "tok" {
		t.Fatalf("client built with token %q", f.token)
	}
	if len(f.lists) != 1 || f.lists[0] != "u1" {
		t.Fatalf("lists = %v", f.lists)
	}
}

func TestLoadFailureEmptiesAndLogs(t *testing.T) {
	logs := captureLogs(t)
	f := &fakeAPI{projects: []api.Project{{ID: "1"}}}
	b := newFakeBrowser(t, f)

	f.listErr = &api.StatusError{Op: api.OpListProjects, StatusCode: 500, Status: "500 Internal Server Error"}
	b.Refresh(context.Background())

	if got := b.Folders(); got == nil || len(got) != 0 {
		t.Fatalf("want empty list, got %#v", got)
	}
	if !strings.Contains(logs.String(), "error fetching folders") {
		t.Fatalf("missing error log: %s", logs.String())
	}
	if strings.Contains(logs.String(), `"tok"`) {
		t.Fatalf("token leaked into logs: %s", logs.String())
	}
}

func TestCredentialChangesTriggerLoad(t *testing.T) {
	f := &fakeAPI{}
	s := NewSession(func(string) API { return f }, 0)
	b := New(s)
	ctx := context.Background()

	b.SetCredentials(ctx, Credentials{Token: "tok"})
	if f.listCount() != 0 {
		t.Fatal("load issued without a user id")
	}
	b.SetCredentials(ctx, Credentials{Token: "tok", UserID: "u1"})
	if f.listCount() != 1 {
		t.Fatalf("lists = %d, want 1", f.listCount())
	}
	b.SetCredentials(ctx, Credentials{Token: "tok", UserID: "u1"})
	if f.listCount() != 1 {
		t.Fatal("unchanged credentials reloaded")
	}
	b.SetCredentials(ctx, Credentials{Token: "tok", UserID: "u2"})
	if f.listCount() != 2 || f.lists[1] != "u2" {
		t.Fatalf("lists = %v", f.lists)
	}
}

func TestMutationsReloadOnce(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name string
		run  func(*Browser)
		call string
	}{
		{"delete", func(b *Browser) { b.DeleteProject(ctx, "p1") }, "delete p1"},
		{"nest", func(b *Browser) { b.AddNestedProject(ctx, "p1") }, "nest p1 New Project"},
		{"upload", func(b *Browser) { b.Upload(ctx, "p1", "/tmp/cat.png") }, "upload p1 cat.png"},
		{"delete file", func(b *Browser) { b.DeleteFile(ctx, "f1") }, "delete-file f1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeAPI{projects: []api.Project{{ID: "p1"}}}
			b := newFakeBrowser(t, f)
			before := f.listCount()

			tt.run(b)

			if got := f.listCount() - before; got != 1 {
				t.Fatalf("reloads = %d, want 1", got)
			}
			if f.lists[len(f.lists)-1] != "u1" {
				t.Fatalf("reload for wrong user: %v", f.lists)
			}
			if len(f.calls) != 1 || f.calls[0] != tt.call {
				t.Fatalf("calls = %v, want [%s]", f.calls, tt.call)
			}
		})
	}
}

func TestFailedMutationDoesNotReload(t *testing.T) {
	captureLogs(t)
	f := &fakeAPI{projects: []api.Project{{ID: "p1"}}}
	b := newFakeBrowser(t, f)
	f.mutErr = errors.New("503")

	b.DeleteProject(context.Background(), "p1")

	if f.listCount() != 1 {
		t.Fatalf("lists = %d, want 1", f.listCount())
	}
	if len(b.Folders()) != 1 {
		t.Fatal("list changed after a failed delete")
	}
}

func TestRenamePatchesWithoutReload(t *testing.T) {
	f := &fakeAPI{projects: []api.Project{
		{ID: "a", Name: "A", Surname: "old"},
		{ID: "b", Name: "B", Surname: "keep"},
	}}
	b := newFakeBrowser(t, f)

	b.Rename(context.Background(), "a", "new")

	if f.listCount() != 1 {
		t.Fatalf("rename reloaded: lists = %d", f.listCount())
	}
	got := b.Folders()
	if got[0].Surname != "new" || got[1].Surname != "keep" || got[0].Name != "A" {
		t.Fatalf("folders = %+v", got)
	}
}

func TestLoadWithoutCredentialsFails(t *testing.T) {
	captureLogs(t)
	s := NewSession(func(string) API { return &fakeAPI{} }, 3)
	r := s.Load(context.Background())
	if r.Err == nil {
		t.Fatal("expected an error without credentials")
	}
	if s.Depth() != 3 {
		t.Fatalf("depth = %d", s.Depth())
	}
}

func TestSessionSequenceOrdersLoads(t *testing.T) {
	f := &fakeAPI{projects: []api.Project{{ID: "x"}}}
	s := NewSession(func(string) API { return f }, 0)
	s.SetCredentials(Credentials{Token: "seq-token", UserID: "u"})

	first := s.Load(context.Background())
	second := s.Load(context.Background())
	if second.Seq <= first.Seq {
		t.Fatalf("seq not increasing: %d then %d", first.Seq, second.Seq)
	}
	if s.LastIssued() != second.Seq {
		t.Fatalf("last issued = %d, want %d", s.LastIssued(), second.Seq)
	}

	st := NewState()
	st.ApplyLoad(second)
	if st.ApplyLoad(first) {
		t.Fatal("earlier load applied after a later one")
	}
}

func TestSearchAndSortThroughBrowser(t *testing.T) {
	f := &fakeAPI{projects: []api.Project{{ID: "1", Name: "Cab"}, {ID: "2", Name: "abc"}, {ID: "3", Name: "xyz"}}}
	b := newFakeBrowser(t, f)

	b.Search("AB")
	if got := names(b.Visible()); len(got) != 2 || got[0] != "abc" || got[1] != "Cab" {
		t.Fatalf("visible = %v", got)
	}
	b.SortBy(SortByName)
	if got := names(b.Visible()); got[0] != "Cab" {
		t.Fatalf("descending visible = %v", got)
	}
	if b.State().Sort.Ascending {
		t.Fatal("expected descending")
	}
}

func TestBrowserAgainstServer(t *testing.T) {
	srv := apitest.NewServer(t, "secret")
	srv.Store.Seed("u1")
	s := NewSession(func(token string) API { return api.New(srv.URL, token) }, 0)
	b := New(s)
	ctx := context.Background()

	b.SetCredentials(ctx, Credentials{Token: "secret", UserID: "u1"})
	roots := b.Folders()
	if len(roots) != 3 {
		t.Fatalf("roots = %d, want 3", len(roots))
	}
	target := roots[0].ID

	b.AddNestedProject(ctx, target)
	if n := srv.Router.Count("GET", "/api/projects/u1"); n != 2 {
		t.Fatalf("list requests = %d, want 2", n)
	}
	var children []api.Project
	for _, p := range b.Folders() {
		if p.ID == target {
			children = p.NestedProjects
		}
	}
	found := false
	for _, c := range children {
		if c.Name == api.DefaultNestedName {
			found = true
		}
	}
	if !found {
		t.Fatalf("nested project missing under %s: %+v", target, children)
	}

	b.Rename(ctx, target, "renamed")
	if n := srv.Router.Count("GET", "/api/projects/u1"); n != 2 {
		t.Fatalf("rename reloaded: list requests = %d", n)
	}
}

func TestUploadRejectsNonImageWithoutRequest(t *testing.T) {
	captureLogs(t)
	srv := apitest.NewServer(t, "secret")
	srv.Store.Seed("u1")
	s := NewSession(func(token string) API { return api.New(srv.URL, token) }, 0)
	b := New(s)
	ctx := context.Background()
	b.SetCredentials(ctx, Credentials{Token: "secret", UserID: "u1"})

	path := filepath.Join(t.TempDir(), "notes.png")
	if err := os.WriteFile(path, []byte("just some text"), 0o600); err != nil {
		t.Fatal(err)
	}
	target := b.Folders()[0].ID
	b.Upload(ctx, target, path)

	if n := srv.Router.Count("POST", "/api/files/"+target+"/add"); n != 0 {
		t.Fatalf("upload requests = %d, want 0", n)
	}
	if n := srv.Router.Count("GET", "/api/projects/u1"); n != 1 {
		t.Fatalf("list requests = %d, want 1", n)
	}
}

func TestBrowserErrTracksLastLoad(t *testing.T) {
	captureLogs(t)
	f := &fakeAPI{listErr: errors.New("unreachable")}
	b := newFakeBrowser(t, f)
	if b.Err() == nil {
		t.Fatal("expected load error")
	}
	f.listErr = nil
	b.Refresh(context.Background())
	if b.Err() != nil {
		t.Fatalf("err = %v after successful load", b.Err())
	}
}
