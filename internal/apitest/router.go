package apitest

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"project-browser/internal/api"
	"project-browser/internal/infra/logx"
)

// Request is one recorded call.
type Request struct {
	Method string
	Path   string
	Query  string
}

// Router serves the project API from a Store.
type Router struct {
	store *Store
	token string

	mu       sync.Mutex
	requests []Request
	failures map[string]int // "METHOD path" -> status for the next call
}

// NewRouter returns a router backed by store. A non-empty token must be
// presented as a bearer token on every request.
func NewRouter(store *Store, token string) *Router {
	return &Router{store: store, token: token, failures: make(map[string]int)}
}

// Handler builds the chi mux.
func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(rt.record)
	r.Use(rt.auth)

	r.Route("/api", func(a chi.Router) {
		a.Route("/projects", func(p chi.Router) {
			p.Get("/{userId}", rt.listProjects)
			p.Delete("/{projectId}", rt.deleteProject)
			p.Post("/{parentId}/nest-new", rt.nestProject)
			p.Put("/{projectId}/update-surname", rt.updateSurname)
		})
		a.Route("/files", func(f chi.Router) {
			f.Post("/{projectId}/add", rt.uploadFile)
			f.Delete("/{fileId}", rt.deleteFile)
		})
	})
	return r
}

// FailNext makes the next request matching method and path answer with status.
func (rt *Router) FailNext(method, path string, status int) {
	rt.mu.Lock()
	rt.failures[method+" "+path] = status
	rt.mu.Unlock()
}

// Requests returns a copy of all recorded requests.
func (rt *Router) Requests() []Request {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return append([]Request(nil), rt.requests...)
}

// Count returns how many recorded requests match method and path.
func (rt *Router) Count(method, path string) int {
	n := 0
	for _, r := range rt.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

// Reset forgets recorded requests.
func (rt *Router) Reset() {
	rt.mu.Lock()
	rt.requests = nil
	rt.mu.Unlock()
}

func (rt *Router) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rt.mu.Lock()
		rt.requests = append(rt.requests, Request{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery})
		key := r.Method + " " + r.URL.Path
		status, fail := rt.failures[key]
		if fail {
			delete(rt.failures, key)
		}
		rt.mu.Unlock()
		logx.With(logx.Fields{"method": r.Method, "path": r.URL.Path}).Infof("request")
		if fail {
			sendError(w, status, "injected failure")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (rt *Router) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rt.token != "" && r.Header.Get("Authorization") != "Bearer "+rt.token {
			sendError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (rt *Router) listProjects(w http.ResponseWriter, r *http.Request) {
	depth := 5
	if v := r.URL.Query().Get("depth"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			sendError(w, http.StatusBadRequest, "invalid depth")
			return
		}
		depth = n
	}
	sendJSON(w, http.StatusOK, map[string]any{"projects": rt.store.Tree(chi.URLParam(r, "userId"), depth)})
}

func (rt *Router) nestProject(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID string `json:"userId"`
		Name   string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.UserID == "" {
		sendError(w, http.StatusBadRequest, "userId and name are required")
		return
	}
	p, err := rt.store.AddChild(chi.URLParam(r, "parentId"), body.UserID, body.Name)
	if err != nil {
		sendStoreError(w, err)
		return
	}
	sendJSON(w, http.StatusCreated, map[string]any{"project": p})
}

func (rt *Router) deleteProject(w http.ResponseWriter, r *http.Request) {
	if err := rt.store.Delete(chi.URLParam(r, "projectId")); err != nil {
		sendStoreError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, map[string]any{"message": "project deleted"})
}

func (rt *Router) updateSurname(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Surname *string `json:"surname"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Surname == nil {
		sendError(w, http.StatusBadRequest, "surname is required")
		return
	}
	if err := rt.store.SetSurname(chi.URLParam(r, "projectId"), *body.Surname); err != nil {
		sendStoreError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, map[string]any{"message": "surname updated"})
}

func (rt *Router) uploadFile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(api.MaxUploadSize); err != nil {
		sendError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	projectID := chi.URLParam(r, "projectId")
	if r.FormValue("projectId") != projectID || r.FormValue("userId") == "" {
		sendError(w, http.StatusBadRequest, "userId and projectId are required")
		return
	}
	file, hdr, err := r.FormFile("image")
	if err != nil {
		sendError(w, http.StatusBadRequest, "image is required")
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		sendError(w, http.StatusBadRequest, "cannot read image")
		return
	}
	mt := mimetype.Detect(data)
	if !mt.Is("image/jpeg") && !mt.Is("image/png") {
		sendError(w, http.StatusUnsupportedMediaType, "only jpeg and png are accepted")
		return
	}
	f, err := rt.store.AddFile(projectID, api.FileAttachment{
		Filename: hdr.Filename,
		MimeType: mt.String(),
		Size:     int64(len(data)),
		URL:      "/uploads/" + strings.TrimPrefix(hdr.Filename, "/"),
	})
	if err != nil {
		sendStoreError(w, err)
		return
	}
	sendJSON(w, http.StatusCreated, map[string]any{"file": f})
}

func (rt *Router) deleteFile(w http.ResponseWriter, r *http.Request) {
	if err := rt.store.DeleteFile(chi.URLParam(r, "fileId")); err != nil {
		sendStoreError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, map[string]any{"message": "file deleted"})
}

func sendJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func sendError(w http.ResponseWriter, status int, message string) {
	sendJSON(w, status, map[string]string{"message": message})
}

func sendStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrNotFound) {
		sendError(w, http.StatusNotFound, "not found")
		return
	}
	sendError(w, http.StatusInternalServerError, err.Error())
}
