package api_test

import (
	"bytes"
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"project-browser/internal/api"
	"project-browser/internal/apitest"
)

var png = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 32)...)

func TestClientAgainstFakeAPI(t *testing.T) {
	srv := apitest.NewServer(t, "secret")
	root := srv.Store.AddRoot("u1", "Root", "2024-01-01")
	ctx := context.Background()
	c := api.New(srv.URL, "secret")

	require.NoError(t, c.AddNestedProject(ctx, root.ID, "u1", ""))
	require.NoError(t, c.UpdateSurname(ctx, root.ID, "renamed"))
	require.NoError(t, c.UploadFile(ctx, api.UploadRequest{
		ProjectID: root.ID, UserID: "u1", Surname: root.ID, Filename: "a.png", Content: bytes.NewReader(png),
	}))

	projects, err := c.ListProjects(ctx, "u1", 5)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "renamed", projects[0].Surname)
	require.Len(t, projects[0].NestedProjects, 1)
	assert.Equal(t, api.DefaultNestedName, projects[0].NestedProjects[0].Name)
	require.Len(t, projects[0].Files, 1)
	assert.Equal(t, "image/png", projects[0].Files[0].MimeType)

	require.NoError(t, c.DeleteFile(ctx, projects[0].Files[0].ID))
	require.NoError(t, c.DeleteProject(ctx, projects[0].NestedProjects[0].ID))

	projects, err = c.ListProjects(ctx, "u1", 5)
	require.NoError(t, err)
	assert.Empty(t, projects[0].Files)
	assert.Empty(t, projects[0].NestedProjects)

	snap := c.Metrics().Snapshot()
	assert.Equal(t, int64(7), snap.TotalRequests)
	assert.Equal(t, int64(0), snap.Failed())
}

func TestClientUnauthorized(t *testing.T) {
	srv := apitest.NewServer(t, "secret")
	c := api.New(srv.URL, "wrong")
	_, err := c.ListProjects(context.Background(), "u1", 5)
	require.Error(t, err)
	assert.True(t, api.IsStatus(err, http.StatusUnauthorized))
}

func TestClientNotFound(t *testing.T) {
	srv := apitest.NewServer(t, "secret")
	c := api.New(srv.URL, "secret")
	err := c.DeleteProject(context.Background(), "missing")
	assert.True(t, api.IsStatus(err, http.StatusNotFound))
	assert.Equal(t, 1, srv.Router.Count(http.MethodDelete, "/api/projects/missing"))
}
