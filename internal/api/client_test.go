package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

func newTestClient(token string, rt roundTripFunc) *Client {
	c := New("http://api.test/", token)
	c.http = &http.Client{Transport: rt}
	return c
}

func TestListProjects(t *testing.T) {
	c := newTestClient("tok", func(req *http.Request) (*http.Response, error) {
		if got := req.Header.Get("Authorization"); got != "Bearer tok" {
			t.Fatalf("unexpected auth header: %q", got)
		}
		if req.Method != http.MethodGet || req.URL.Path != "/api/projects/u1" {
			t.Fatalf("unexpected request %s %s", req.Method, req.URL.Path)
		}
		if d := req.URL.Query().Get("depth"); d != "5" {
			t.Fatalf("expected default depth 5, got %q", d)
		}
		return jsonResponse(200, `{"projects":[{"_id":"p1","name":"one","surname":"s","latestStatusUpdate":"2024-01-01","nestedProjects":[{"_id":"p2","name":"child"}],"files":[{"_id":"f1"}],"extra":true}]}`), nil
	})
	projects, err := c.ListProjects(context.Background(), "u1", 0)
	if err != nil {
		t.Fatalf("ListProjects returned error: %v", err)
	}
	if len(projects) != 1 || projects[0].ID != "p1" || projects[0].Name != "one" || projects[0].Surname != "s" {
		t.Fatalf("unexpected projects: %+v", projects)
	}
	if len(projects[0].NestedProjects) != 1 || projects[0].NestedProjects[0].ID != "p2" {
		t.Fatalf("nested projects not decoded: %+v", projects[0])
	}
	if len(projects[0].Files) != 1 || projects[0].Files[0].ID != "f1" {
		t.Fatalf("files not decoded: %+v", projects[0])
	}
}

func TestListProjectsDepthAndEmptyEnvelope(t *testing.T) {
	c := newTestClient("tok", func(req *http.Request) (*http.Response, error) {
		if d := req.URL.Query().Get("depth"); d != "2" {
			t.Fatalf("expected depth 2, got %q", d)
		}
		return jsonResponse(200, `{}`), nil
	})
	projects, err := c.ListProjects(context.Background(), "u1", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if projects == nil || len(projects) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", projects)
	}
}

func TestListProjectsStatusError(t *testing.T) {
	c := newTestClient("tok", func(req *http.Request) (*http.Response, error) {
		return jsonResponse(403, `{"message":"forbidden project"}`), nil
	})
	_, err := c.ListProjects(context.Background(), "u1", 5)
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected StatusError, got %T %v", err, err)
	}
	if se.StatusCode != 403 || se.Message != "forbidden project" || se.Op != OpListProjects {
		t.Fatalf("unexpected status error: %+v", se)
	}
	if !IsStatus(err, 403) {
		t.Fatal("IsStatus should match 403")
	}
}

func TestListProjectsTransportError(t *testing.T) {
	c := newTestClient("tok", func(req *http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	})
	_, err := c.ListProjects(context.Background(), "u1", 5)
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %T %v", err, err)
	}
}

func TestListProjectsBadBody(t *testing.T) {
	c := newTestClient("tok", func(req *http.Request) (*http.Response, error) {
		return jsonResponse(200, `not json`), nil
	})
	_, err := c.ListProjects(context.Background(), "u1", 5)
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError for undecodable body, got %v", err)
	}
}

func TestNoTokenOrID(t *testing.T) {
	calls := 0
	rt := func(req *http.Request) (*http.Response, error) {
		calls++
		return jsonResponse(200, `{}`), nil
	}
	c := newTestClient("", rt)
	if _, err := c.ListProjects(context.Background(), "u1", 5); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty token, got %v", err)
	}
	c = newTestClient("tok", rt)
	if _, err := c.ListProjects(context.Background(), "", 5); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty user id, got %v", err)
	}
	if err := c.DeleteProject(context.Background(), ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty project id, got %v", err)
	}
	if err := c.AddNestedProject(context.Background(), "", "u1", ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty parent id, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("expected no requests, got %d", calls)
	}
}

func TestMutations(t *testing.T) {
	type seen struct {
		method, path string
		body         map[string]any
	}
	var got []seen
	c := newTestClient("tok", func(req *http.Request) (*http.Response, error) {
		s := seen{method: req.Method, path: req.URL.Path}
		if req.Body != nil {
			raw, _ := io.ReadAll(req.Body)
			if len(raw) > 0 {
				if err := json.Unmarshal(raw, &s.body); err != nil {
					t.Fatalf("body is not json: %q", raw)
				}
				if ct := req.Header.Get("Content-Type"); ct != "application/json" {
					t.Fatalf("unexpected content type %q", ct)
				}
			}
		}
		got = append(got, s)
		return jsonResponse(200, `{"message":"ok"}`), nil
	})
	ctx := context.Background()
	if err := c.AddNestedProject(ctx, "parent", "u1", ""); err != nil {
		t.Fatalf("AddNestedProject: %v", err)
	}
	if err := c.DeleteProject(ctx, "p1"); err != nil {
		t.Fatalf("DeleteProject: %v", err)
	}
	if err := c.UpdateSurname(ctx, "p1", "new"); err != nil {
		t.Fatalf("UpdateSurname: %v", err)
	}
	if err := c.DeleteFile(ctx, "f1"); err != nil {
		t.Fatalf("DeleteFile: %v", err)
	}

	want := []struct{ method, path string }{
		{http.MethodPost, "/api/projects/parent/nest-new"},
		{http.MethodDelete, "/api/projects/p1"},
		{http.MethodPut, "/api/projects/p1/update-surname"},
		{http.MethodDelete, "/api/files/f1"},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d calls, got %d", len(want), len(got))
	}
	for i, w := range want {
		if got[i].method != w.method || got[i].path != w.path {
			t.Fatalf("call %d: got %s %s, want %s %s", i, got[i].method, got[i].path, w.method, w.path)
		}
	}
	if got[0].body["userId"] != "u1" || got[0].body["name"] != DefaultNestedName {
		t.Fatalf("unexpected nest body: %v", got[0].body)
	}
	if got[2].body["surname"] != "new" {
		t.Fatalf("unexpected surname body: %v", got[2].body)
	}
}

func TestIDsAreEscaped(t *testing.T) {
	c := newTestClient("tok", func(req *http.Request) (*http.Response, error) {
		if req.URL.EscapedPath() != "/api/projects/a%2Fb" {
			t.Fatalf("expected escaped id, got %s", req.URL.EscapedPath())
		}
		return jsonResponse(200, `{}`), nil
	})
	if err := c.DeleteProject(context.Background(), "a/b"); err != nil {
		t.Fatalf("DeleteProject: %v", err)
	}
}
