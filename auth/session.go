// Package auth holds the signed-in session: the current user, the persisted
// token pair, and the login/register/logout flows against the backend.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/minjae-ko/playkit/client"
	"github.com/minjae-ko/playkit/storage"
)

// User is the authenticated account as reported by the backend.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Session tracks who is signed in. Stores consult SignedIn before touching
// the network; the CLI consults CurrentUser for display.
type Session struct {
	api    *client.Client
	store  *storage.Store
	logger *slog.Logger

	mu   sync.RWMutex
	user *User
}

// credentialsResponse is the login/register payload: a token pair plus the
// account it belongs to.
type credentialsResponse struct {
	client.TokenPair
	User User `json:"user"`
}

// NewSession wires a session over the REST client and local storage. logger
// may be nil.
func NewSession(api *client.Client, store *storage.Store, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{api: api, store: store, logger: logger}
}

// SignedIn reports whether a user is currently authenticated.
func (s *Session) SignedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// CurrentUser returns a copy of the signed-in user, or nil.
func (s *Session) CurrentUser() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Login exchanges credentials for a token pair and signs the session in.
// With remember set, the email is kept for prefilling the next login form.
func (s *Session) Login(ctx context.Context, email, password string, remember bool) error {
	var resp credentialsResponse
	err := s.api.Post(ctx, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &resp)
	if err != nil {
		return err
	}

	if err := s.store.SetTokens(resp.TokenPair); err != nil {
		return fmt.Errorf("persist tokens: %w", err)
	}
	if remember {
		if err := s.store.Set(storage.KeyRememberedEmail, email); err != nil {
			return fmt.Errorf("remember email: %w", err)
		}
	} else {
		_ = s.store.Delete(storage.KeyRememberedEmail)
	}

	s.setUser(&resp.User)
	s.logger.Info("signed in", slog.String("email", email))
	return nil
}

// Register creates an account and signs in with the returned tokens.
func (s *Session) Register(ctx context.Context, email, password, name string) error {
	var resp credentialsResponse
	err := s.api.Post(ctx, "/auth/register", map[string]string{
		"email":    email,
		"password": password,
		"name":     name,
	}, &resp)
	if err != nil {
		return err
	}

	if err := s.store.SetTokens(resp.TokenPair); err != nil {
		return fmt.Errorf("persist tokens: %w", err)
	}
	s.setUser(&resp.User)
	return nil
}

// Restore re-establishes a session from persisted tokens, fetching the
// account behind them. Without stored tokens it is a no-op.
func (s *Session) Restore(ctx context.Context) error {
	if _, ok := s.store.Tokens(); !ok {
		return nil
	}

	var user User
	if err := s.api.Get(ctx, "/auth/me", &user); err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.Unauthorized() {
			// Stale credentials; the client has already cleared them.
			s.setUser(nil)
			return nil
		}
		return err
	}
	s.setUser(&user)
	return nil
}

// Logout clears the user and stored credentials.
func (s *Session) Logout() error {
	s.setUser(nil)
	if err := s.store.ClearTokens(); err != nil {
		return fmt.Errorf("clear tokens: %w", err)
	}
	s.logger.Info("signed out")
	return nil
}

// RememberedEmail returns the email kept from the last remembered login.
func (s *Session) RememberedEmail() string {
	email, _ := s.store.Get(storage.KeyRememberedEmail)
	return email
}

func (s *Session) setUser(u *User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = u
}
