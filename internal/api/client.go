package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// DefaultNestedName is the name given to projects created with AddNestedProject.
const DefaultNestedName = "New Project"

// Operation names, used for error messages, metrics and logs.
const (
	OpListProjects  = "projects.list"
	OpNestProject   = "projects.nest"
	OpDeleteProject = "projects.delete"
	OpUpdateSurname = "projects.update_surname"
	OpUploadFile    = "files.upload"
	OpDeleteFile    = "files.delete"
)

type Client struct {
	http    *http.Client
	base    string
	token   string
	metrics *Metrics
}

// New returns a client for the API at baseURL that authenticates with token.
func New(baseURL, token string) *Client {
	opts := DefaultTransportOptionsFromEnv()
	return &Client{
		http: &http.Client{
			Timeout:   10 * time.Second,
			Transport: NewLimiterTransport(opts),
		},
		base:    strings.TrimRight(baseURL, "/"),
		token:   token,
		metrics: opts.Metrics,
	}
}

// Metrics returns the transport counters; nil if the client was built without them.
func (c *Client) Metrics() *Metrics { return c.metrics }

// Token returns the bearer token the client sends.
func (c *Client) Token() string { return c.token }

// ---------- Projects ----------

// ListProjects fetches the project tree of userID, nested up to depth levels.
// depth <= 0 uses the server default of 5.
func (c *Client) ListProjects(ctx context.Context, userID string, depth int) ([]Project, error) {
	if err := validation.Validate(userID, validation.Required); err != nil {
		return nil, invalid(OpListProjects, fmt.Errorf("userId: %w", err))
	}
	if depth <= 0 {
		depth = 5
	}
	q := url.Values{}
	q.Set("depth", strconv.Itoa(depth))

	res, err := c.do(ctx, OpListProjects, http.MethodGet, "/api/projects/"+url.PathEscape(userID)+"?"+q.Encode(), nil, "")
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	var payload projectsResp
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, &TransportError{Op: OpListProjects, Err: fmt.Errorf("decode: %w", err)}
	}
	if payload.Projects == nil {
		return []Project{}, nil
	}
	return payload.Projects, nil
}

// AddNestedProject creates a child project named name under parentID.
// An empty name uses DefaultNestedName.
func (c *Client) AddNestedProject(ctx context.Context, parentID, userID, name string) error {
	err := validation.Errors{
		"parentId": validation.Validate(parentID, validation.Required),
		"userId":   validation.Validate(userID, validation.Required),
	}.Filter()
	if err != nil {
		return invalid(OpNestProject, err)
	}
	if strings.TrimSpace(name) == "" {
		name = DefaultNestedName
	}
	body, err := json.Marshal(nestRequest{UserID: userID, Name: name})
	if err != nil {
		return err
	}
	return c.send(ctx, OpNestProject, http.MethodPost, "/api/projects/"+url.PathEscape(parentID)+"/nest-new", bytes.NewReader(body), "application/json")
}

// DeleteProject removes projectID.
func (c *Client) DeleteProject(ctx context.Context, projectID string) error {
	if err := validation.Validate(projectID, validation.Required); err != nil {
		return invalid(OpDeleteProject, fmt.Errorf("projectId: %w", err))
	}
	return c.send(ctx, OpDeleteProject, http.MethodDelete, "/api/projects/"+url.PathEscape(projectID), nil, "")
}

// UpdateSurname sets the surname label of projectID.
func (c *Client) UpdateSurname(ctx context.Context, projectID, surname string) error {
	if err := validation.Validate(projectID, validation.Required); err != nil {
		return invalid(OpUpdateSurname, fmt.Errorf("projectId: %w", err))
	}
	body, err := json.Marshal(surnameRequest{Surname: surname})
	if err != nil {
		return err
	}
	return c.send(ctx, OpUpdateSurname, http.MethodPut, "/api/projects/"+url.PathEscape(projectID)+"/update-surname", bytes.NewReader(body), "application/json")
}

// ---------- Files ----------

// DeleteFile removes the attachment fileID.
func (c *Client) DeleteFile(ctx context.Context, fileID string) error {
	if err := validation.Validate(fileID, validation.Required); err != nil {
		return invalid(OpDeleteFile, fmt.Errorf("fileId: %w", err))
	}
	return c.send(ctx, OpDeleteFile, http.MethodDelete, "/api/files/"+url.PathEscape(fileID), nil, "")
}

// ---------- plumbing ----------

// send performs a request whose success body is ignored.
func (c *Client) send(ctx context.Context, op, method, path string, body io.Reader, contentType string) error {
	res, err := c.do(ctx, op, method, path, body, contentType)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, res.Body)
	return res.Body.Close()
}

// do sends an authenticated request and turns non-2xx answers into a
// StatusError. The caller closes the body of a successful response.
func (c *Client) do(ctx context.Context, op, method, path string, body io.Reader, contentType string) (*http.Response, error) {
	if c.token == "" {
		return nil, invalid(op, errors.New("token is empty"))
	}
	req, err := http.NewRequestWithContext(WithOperation(ctx, op), method, c.base+path, body)
	if err != nil {
		return nil, invalid(op, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		defer res.Body.Close()
		return nil, &StatusError{Op: op, StatusCode: res.StatusCode, Status: res.Status, Message: readMessage(res.Body)}
	}
	return res, nil
}

// readMessage extracts a server message from an error body, if any.
func readMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var er errorResp
	if json.Unmarshal(raw, &er) == nil {
		if er.Message != "" {
			return er.Message
		}
		if er.Error != "" {
			return er.Error
		}
		return ""
	}
	return strings.TrimSpace(string(raw))
}
