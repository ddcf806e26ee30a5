package browser

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"project-browser/internal/api"
	"project-browser/internal/infra/logx"
)

// DefaultDepth is the nesting depth requested when none is configured.
const DefaultDepth = 5

// API is the remote project service.
type API interface {
	ListProjects(ctx context.Context, userID string, depth int) ([]api.Project, error)
	AddNestedProject(ctx context.Context, parentID, userID, name string) error
	DeleteProject(ctx context.Context, projectID string) error
	UpdateSurname(ctx context.Context, projectID, surname string) error
	UploadFromPath(ctx context.Context, projectID, userID, path string) error
	DeleteFile(ctx context.Context, fileID string) error
}

// Factory builds an API bound to a bearer token.
type Factory func(token string) API

// Credentials identify who is browsing.
type Credentials struct {
	Token  string
	UserID string
}

// Complete reports whether both values are present.
func (c Credentials) Complete() bool { return c.Token != "" && c.UserID != "" }

// Op names a mutation.
type Op string

const (
	OpAddNested     Op = "add-nested-project"
	OpDeleteProject Op = "delete-project"
	OpRename        Op = "rename"
	OpUpload        Op = "upload-file"
	OpDeleteFile    Op = "delete-file"
)

// Outcome is the result of one mutation.
type Outcome struct {
	Op      Op
	Target  string // project or file id
	Surname string // OpRename only
	Err     error
}

// LoadResult is the result of one list request. Seq orders loads by the
// time they were issued.
type LoadResult struct {
	Seq     uint64
	UserID  string
	Folders []api.Project
	Err     error
}

var errNoCredentials = errors.New("browser: token or user id missing")

// Session performs the browser's remote calls. It is safe for concurrent
// use; it holds no view state. Failures are logged and returned in the
// result, never as a Go error.
type Session struct {
	newAPI Factory
	depth  int

	mu    sync.Mutex
	api   API
	creds Credentials

	seq atomic.Uint64
}

// NewSession returns a session that builds clients with newAPI and lists
// projects depth levels deep (DefaultDepth if depth <= 0).
func NewSession(newAPI Factory, depth int) *Session {
	if depth <= 0 {
		depth = DefaultDepth
	}
	return &Session{newAPI: newAPI, depth: depth}
}

// Depth returns the nesting depth requested on load.
func (s *Session) Depth() int { return s.depth }

// SetCredentials installs c and reports whether a load should follow: both
// values are present and at least one differs from before.
func (s *Session) SetCredentials(c Credentials) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c == s.creds {
		return false
	}
	if c.Token != s.creds.Token || s.api == nil {
		if c.Token != "" {
			logx.RegisterSecret(c.Token)
		}
		s.api = s.newAPI(c.Token)
	}
	s.creds = c
	return c.Complete()
}

// Credentials returns the current credentials.
func (s *Session) Credentials() Credentials {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creds
}

// Metrics returns the transport counters of the current client, if it
// keeps any.
func (s *Session) Metrics() (api.MetricsSnapshot, bool) {
	c, _ := s.client()
	mc, ok := c.(interface{ Metrics() *api.Metrics })
	if !ok || mc.Metrics() == nil {
		return api.MetricsSnapshot{}, false
	}
	return mc.Metrics().Snapshot(), true
}

func (s *Session) client() (API, Credentials) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.api, s.creds
}

// Load fetches the folder list for the current user.
func (s *Session) Load(ctx context.Context) LoadResult {
	seq := s.seq.Add(1)
	client, creds := s.client()
	r := LoadResult{Seq: seq, UserID: creds.UserID}
	if client == nil || !creds.Complete() {
		r.Err = errNoCredentials
	} else {
		r.Folders, r.Err = client.ListProjects(ctx, creds.UserID, s.depth)
	}
	if r.Err != nil {
		logx.With(logx.Fields{"op": "load", "user": creds.UserID, "seq": seq, "err": r.Err}).Errorf("error fetching folders")
	} else {
		logx.With(logx.Fields{"op": "load", "seq": seq}).Debugf("loaded %d folders", len(r.Folders))
	}
	return r
}

// LastIssued returns the sequence number of the most recently issued load.
func (s *Session) LastIssued() uint64 { return s.seq.Load() }

// AddNestedProject creates a default-named child under parentID.
func (s *Session) AddNestedProject(ctx context.Context, parentID string) Outcome {
	return s.run(OpAddNested, parentID, "", func(c API, creds Credentials) error {
		return c.AddNestedProject(ctx, parentID, creds.UserID, api.DefaultNestedName)
	})
}

// DeleteProject removes projectID.
func (s *Session) DeleteProject(ctx context.Context, projectID string) Outcome {
	return s.run(OpDeleteProject, projectID, "", func(c API, _ Credentials) error {
		return c.DeleteProject(ctx, projectID)
	})
}

// Rename sets the surname of projectID.
func (s *Session) Rename(ctx context.Context, projectID, surname string) Outcome {
	return s.run(OpRename, projectID, surname, func(c API, _ Credentials) error {
		return c.UpdateSurname(ctx, projectID, surname)
	})
}

// Upload sends the image at path to projectID.
func (s *Session) Upload(ctx context.Context, projectID, path string) Outcome {
	return s.run(OpUpload, projectID, "", func(c API, creds Credentials) error {
		return c.UploadFromPath(ctx, projectID, creds.UserID, path)
	})
}

// DeleteFile removes the attachment fileID.
func (s *Session) DeleteFile(ctx context.Context, fileID string) Outcome {
	return s.run(OpDeleteFile, fileID, "", func(c API, _ Credentials) error {
		return c.DeleteFile(ctx, fileID)
	})
}

func (s *Session) run(op Op, target, surname string, call func(API, Credentials) error) Outcome {
	o := Outcome{Op: op, Target: target, Surname: surname}
	client, creds := s.client()
	if client == nil || !creds.Complete() {
		o.Err = errNoCredentials
	} else {
		o.Err = call(client, creds)
	}
	log := logx.With(logx.Fields{"op": string(op), "target": target})
	if o.Err != nil {
		log.With(logx.Fields{"err": o.Err}).Errorf("%s failed", op)
	} else {
		log.Infof("%s succeeded", op)
	}
	return o
}
