package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// memoryTokens is an in-memory TokenSource for tests.
type memoryTokens struct {
	mu   sync.Mutex
	pair TokenPair
	set  bool
}

func (m *memoryTokens) Tokens() (TokenPair, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pair, m.set
}

func (m *memoryTokens) SetTokens(pair TokenPair) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pair, m.set = pair, true
	return nil
}

func (m *memoryTokens) ClearTokens() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pair, m.set = TokenPair{}, false
	return nil
}

func TestGetDecodesJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/todos" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode([]map[string]string{{"id": "1", "title": "Buy milk"}})
	}))
	defer srv.Close()

	c, err := New(srv.URL, nil)
	if err != nil {
		t.Fatal(err)
	}

	var todos []struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	}
	if err := c.Get(context.Background(), "/todos", &todos); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(todos) != 1 || todos[0].Title != "Buy milk" {
		t.Errorf("unexpected decode result: %v", todos)
	}
}

func TestBearerHeaderAttached(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	tokens := &memoryTokens{}
	_ = tokens.SetTokens(TokenPair{Access: "abc", Refresh: "def"})

	c, err := New(srv.URL, tokens)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Get(context.Background(), "/me", nil); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if gotAuth != "Bearer abc" {
		t.Errorf("Authorization = %q, want bearer token", gotAuth)
	}
}

func TestRefreshAndReplayOnce(t *testing.T) {
	var refreshCalls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/refresh":
			refreshCalls++
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body["refresh_token"] != "old-refresh" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_ = json.NewEncoder(w).Encode(TokenPair{Access: "new-access", Refresh: "new-refresh"})
		case "/todos":
			if r.Header.Get("Authorization") != "Bearer new-access" {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"detail": "token expired"}`))
				return
			}
			_, _ = w.Write([]byte(`[]`))
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
		}
	}))
	defer srv.Close()

	tokens := &memoryTokens{}
	_ = tokens.SetTokens(TokenPair{Access: "stale", Refresh: "old-refresh"})

	c, err := New(srv.URL, tokens)
	if err != nil {
		t.Fatal(err)
	}

	var out []any
	if err := c.Get(context.Background(), "/todos", &out); err != nil {
		t.Fatalf("Get after refresh: %v", err)
	}
	if refreshCalls != 1 {
		t.Errorf("refresh called %d times, want 1", refreshCalls)
	}
	pair, ok := tokens.Tokens()
	if !ok || pair.Access != "new-access" || pair.Refresh != "new-refresh" {
		t.Errorf("refreshed pair not persisted: %+v ok=%v", pair, ok)
	}
}

func TestSecondUnauthorizedIsTerminal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/refresh" {
			_ = json.NewEncoder(w).Encode(TokenPair{Access: "still-bad", Refresh: "r2"})
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail": "nope"}`))
	}))
	defer srv.Close()

	tokens := &memoryTokens{}
	_ = tokens.SetTokens(TokenPair{Access: "bad", Refresh: "r1"})

	c, err := New(srv.URL, tokens)
	if err != nil {
		t.Fatal(err)
	}

	err = c.Get(context.Background(), "/todos", nil)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || !apiErr.Unauthorized() {
		t.Fatalf("expected terminal 401, got %v", err)
	}
	if _, ok := tokens.Tokens(); ok {
		t.Error("credentials must be cleared after a post-refresh 401")
	}
}

func TestUnauthorizedWithoutRefreshTokenKeepsMessage(t *testing.T) {
	// A 401 on a failed login must surface the backend's detail, not go
	// through the refresh path: there is no session to rescue.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/refresh" {
			t.Error("refresh must not be attempted without a refresh token")
		}
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail": "invalid email or password"}`))
	}))
	defer srv.Close()

	c, err := New(srv.URL, &memoryTokens{})
	if err != nil {
		t.Fatal(err)
	}

	err = c.Post(context.Background(), "/auth/login",
		map[string]string{"email": "a@b.com", "password": "wrong"}, nil)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || !apiErr.Unauthorized() {
		t.Fatalf("expected 401 APIError, got %v", err)
	}
	if apiErr.Message != "invalid email or password" {
		t.Errorf("Message = %q, want the backend's detail", apiErr.Message)
	}
}

func TestFailedRefreshSurfacesOriginalError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/refresh" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail": "refresh token revoked"}`))
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail": "token expired"}`))
	}))
	defer srv.Close()

	tokens := &memoryTokens{}
	_ = tokens.SetTokens(TokenPair{Access: "stale", Refresh: "revoked"})

	c, err := New(srv.URL, tokens)
	if err != nil {
		t.Fatal(err)
	}

	err = c.Get(context.Background(), "/todos", nil)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "token expired" {
		t.Fatalf("expected the original response's message, got %v", err)
	}
	if _, ok := tokens.Tokens(); ok {
		t.Error("credentials must be cleared after a rejected refresh")
	}
}

func TestErrorNormalization(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantMsg    string
		wantFields int
	}{
		{
			name:    "string detail",
			body:    `{"detail": "todo not found"}`,
			wantMsg: "todo not found",
		},
		{
			name:       "array detail with loc and msg",
			body:       `{"detail": [{"loc": ["body", "email"], "msg": "invalid email"}]}`,
			wantMsg:    "invalid email",
			wantFields: 1,
		},
		{
			name:       "array detail with message key",
			body:       `{"detail": [{"field": "title", "message": "too long"}]}`,
			wantMsg:    "too long",
			wantFields: 1,
		},
		{
			name:    "unparseable body falls back to status text",
			body:    `<html>gateway error</html>`,
			wantMsg: "Unprocessable Entity",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := parseAPIError(http.StatusUnprocessableEntity, []byte(tt.body))
			if apiErr.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", apiErr.Message, tt.wantMsg)
			}
			if len(apiErr.Fields) != tt.wantFields {
				t.Errorf("Fields = %v, want %d entries", apiErr.Fields, tt.wantFields)
			}
			if apiErr.Status != http.StatusUnprocessableEntity {
				t.Errorf("Status = %d", apiErr.Status)
			}
		})
	}
}

func TestFieldErrorLocPathUsesLastElement(t *testing.T) {
	body := []byte(`{"detail": [{"loc": ["body", "profile", "phone"], "msg": "invalid format"}]}`)
	apiErr := parseAPIError(http.StatusBadRequest, body)
	if len(apiErr.Fields) != 1 || apiErr.Fields[0].Field != "phone" {
		t.Fatalf("expected field name from loc tail, got %+v", apiErr.Fields)
	}
}
