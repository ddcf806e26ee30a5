// Package apitest is an in-memory stand-in for the project API, used by
// tests and by cmd/mockapi for local development.
package apitest

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"project-browser/internal/api"
)

var (
	ErrNotFound = errors.New("not found")
)

type node struct {
	project  api.Project // without Files/NestedProjects
	parentID string
	children []string
	files    []string
	created  int
}

// Store holds projects and files for any number of users.
type Store struct {
	mu       sync.Mutex
	projects map[string]*node
	files    map[string]api.FileAttachment
	seq      int
	now      func() time.Time
}

func NewStore() *Store {
	return &Store{
		projects: make(map[string]*node),
		files:    make(map[string]api.FileAttachment),
		now:      time.Now,
	}
}

func (s *Store) stamp() string { return s.now().UTC().Format(time.RFC3339) }

// AddRoot creates a top-level project for userID.
func (s *Store) AddRoot(userID, name, latestStatusUpdate string) api.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	if latestStatusUpdate == "" {
		latestStatusUpdate = s.stamp()
	}
	return s.insertLocked("", api.Project{Name: name, UserID: userID, LatestStatusUpdate: latestStatusUpdate})
}

func (s *Store) insertLocked(parentID string, p api.Project) api.Project {
	p.ID = uuid.NewString()
	s.seq++
	s.projects[p.ID] = &node{project: p, parentID: parentID, created: s.seq}
	if parent, ok := s.projects[parentID]; ok {
		parent.children = append(parent.children, p.ID)
	}
	return p
}

// AddChild creates a project nested under parentID.
func (s *Store) AddChild(parentID, userID, name string) (api.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[parentID]; !ok {
		return api.Project{}, ErrNotFound
	}
	return s.insertLocked(parentID, api.Project{Name: name, UserID: userID, LatestStatusUpdate: s.stamp()}), nil
}

// Delete removes a project with its subtree and files.
func (s *Store) Delete(projectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.projects[projectID]
	if !ok {
		return ErrNotFound
	}
	if parent, ok := s.projects[n.parentID]; ok {
		parent.children = remove(parent.children, projectID)
	}
	s.deleteLocked(projectID)
	return nil
}

func (s *Store) deleteLocked(id string) {
	n := s.projects[id]
	for _, c := range n.children {
		s.deleteLocked(c)
	}
	for _, f := range n.files {
		delete(s.files, f)
	}
	delete(s.projects, id)
}

// SetSurname updates the surname of projectID.
func (s *Store) SetSurname(projectID, surname string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.projects[projectID]
	if !ok {
		return ErrNotFound
	}
	n.project.Surname = surname
	n.project.LatestStatusUpdate = s.stamp()
	return nil
}

// AddFile attaches a file record to projectID.
func (s *Store) AddFile(projectID string, f api.FileAttachment) (api.FileAttachment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.projects[projectID]
	if !ok {
		return api.FileAttachment{}, ErrNotFound
	}
	f.ID = uuid.NewString()
	f.ProjectID = projectID
	s.files[f.ID] = f
	n.files = append(n.files, f.ID)
	return f, nil
}

// DeleteFile removes a file record.
func (s *Store) DeleteFile(fileID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.files[fileID]
	if !ok {
		return ErrNotFound
	}
	if n, ok := s.projects[f.ProjectID]; ok {
		n.files = remove(n.files, fileID)
	}
	delete(s.files, fileID)
	return nil
}

// Project returns a single project without children.
func (s *Store) Project(id string) (api.Project, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.projects[id]
	if !ok {
		return api.Project{}, false
	}
	return n.project, true
}

// Tree returns the top-level projects of userID in creation order with
// depth levels of nesting; depth 1 returns the roots only.
func (s *Store) Tree(userID string, depth int) []api.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	roots := make([]*node, 0)
	for _, n := range s.projects {
		if n.parentID == "" && n.project.UserID == userID {
			roots = append(roots, n)
		}
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i].created < roots[j].created })
	out := make([]api.Project, 0, len(roots))
	for _, n := range roots {
		out = append(out, s.buildLocked(n, depth))
	}
	return out
}

func (s *Store) buildLocked(n *node, depth int) api.Project {
	p := n.project
	for _, fid := range n.files {
		p.Files = append(p.Files, s.files[fid])
	}
	if depth > 1 {
		for _, cid := range n.children {
			p.NestedProjects = append(p.NestedProjects, s.buildLocked(s.projects[cid], depth-1))
		}
	}
	return p
}

// Seed fills the store with a small sample tree for userID.
func (s *Store) Seed(userID string) {
	alpha := s.AddRoot(userID, "Alpha", "2024-03-01T10:00:00Z")
	s.AddRoot(userID, "beta", "2024-01-15T08:30:00Z")
	gamma := s.AddRoot(userID, "Gamma", "2024-02-20T12:00:00Z")
	child, _ := s.AddChild(alpha.ID, userID, "Alpha sketches")
	_, _ = s.AddChild(child.ID, userID, "Drafts")
	_, _ = s.AddChild(gamma.ID, userID, "Gamma notes")
	_ = s.SetSurname(gamma.ID, "g")
}

func remove(list []string, id string) []string {
	out := list[:0]
	for _, v := range list {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
