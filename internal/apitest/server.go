package apitest

import (
	"net/http/httptest"
	"testing"
)

// Server is a running fake API.
type Server struct {
	*httptest.Server
	Store  *Store
	Router *Router
}

// NewServer starts a fake API that requires token and stops it when t ends.
func NewServer(t testing.TB, token string) *Server {
	t.Helper()
	store := NewStore()
	rt := NewRouter(store, token)
	srv := httptest.NewServer(rt.Handler())
	t.Cleanup(srv.Close)
	return &Server{Server: srv, Store: store, Router: rt}
}
