// Package testutil provides the shared test fixture: a practice backend on
// an httptest listener plus a fully wired client, storage and session, so
// package tests exercise the real request path instead of stubs.
package testutil

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/minjae-ko/playkit/auth"
	"github.com/minjae-ko/playkit/client"
	"github.com/minjae-ko/playkit/internal/practice"
	"github.com/minjae-ko/playkit/storage"
)

// Env is one isolated application environment backed by a throwaway
// database and storage file.
type Env struct {
	Server  *httptest.Server
	API     *client.Client
	Storage *storage.Store
	Session *auth.Session
}

// NewEnv starts a practice backend and wires the client stack against it.
// Everything is torn down with the test.
func NewEnv(t *testing.T) *Env {
	t.Helper()

	dir := t.TempDir()
	backend, err := practice.New(practice.Config{
		DBPath:    filepath.Join(dir, "practice.db"),
		JWTSecret: "test-secret",
	})
	if err != nil {
		t.Fatalf("start practice backend: %v", err)
	}

	srv := httptest.NewServer(backend.Engine())
	t.Cleanup(srv.Close)

	store, err := storage.Open(filepath.Join(dir, "playkit.yaml"))
	if err != nil {
		t.Fatalf("open storage: %v", err)
	}

	api, err := client.New(srv.URL, store)
	if err != nil {
		t.Fatalf("create client: %v", err)
	}

	return &Env{
		Server:  srv,
		API:     api,
		Storage: store,
		Session: auth.NewSession(api, store, nil),
	}
}

// SignUp registers and signs in a fresh account.
func (e *Env) SignUp(t *testing.T, email, password, name string) {
	t.Helper()
	if err := e.Session.Register(context.Background(), email, password, name); err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
}
