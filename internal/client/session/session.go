// Package session persists the operator's login between fleetctl invocations.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
)

const minTokenLength = 21

// ErrNotLoggedIn is returned by operations that need a stored login.
var ErrNotLoggedIn = errors.New("not logged in")

// Session is what survives between runs. Credentials are never stored.
type Session struct {
	Token string `json:"token,omitempty"`
	Email string `json:"email,omitempty"`
	Lang  string `json:"lang,omitempty"`
}

// LoggedIn reports whether the session carries a token.
func (s Session) LoggedIn() bool {
	return s.Token != ""
}

// Store reads and writes the session file.
type Store struct {
	path  string
	clock clockwork.Clock
	mu    sync.Mutex
}

// NewStore returns a store backed by path. A nil clock uses the real clock.
func NewStore(path string, clock clockwork.Clock) *Store {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Store{path: path, clock: clock}
}

// Load returns the stored session. A token that fails the validity rule is wiped from
// disk and the language preference is kept.
func (s *Store) Load() (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.read()
	if err != nil {
		return Session{}, err
	}
	if sess.Token == "" && sess.Email == "" {
		return sess, nil
	}
	if Valid(sess.Token, sess.Email, s.clock) {
		return sess, nil
	}

	sess.Token, sess.Email = "", ""
	if err := s.write(sess); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// Open stores a fresh login.
func (s *Store) Open(token, email string) error {
	return s.update(func(sess *Session) {
		sess.Token = token
		sess.Email = strings.TrimSpace(email)
	})
}

// Close forgets the login.
func (s *Store) Close() error {
	return s.update(func(sess *Session) {
		sess.Token, sess.Email = "", ""
	})
}

// SetLang stores the language preference.
func (s *Store) SetLang(lang string) error {
	return s.update(func(sess *Session) {
		sess.Lang = lang
	})
}

func (s *Store) update(mutate func(*Session)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.read()
	if err != nil {
		return err
	}
	mutate(&sess)
	return s.write(sess)
}

func (s *Store) read() (Session, error) {
	var sess Session
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return sess, nil
	}
	if err != nil {
		return sess, fmt.Errorf("read session file: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return sess, nil
	}
	if err := json.Unmarshal(data, &sess); err != nil {
		// A corrupt file is treated as no session; the next write replaces it.
		return Session{}, nil
	}
	return sess, nil
}

func (s *Store) write(sess Session) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return nil
}

// Valid applies the stored-session rule: a token longer than 20 characters, an e-mail
// containing "@", and, when the token is a JWT with an exp claim, not expired.
func Valid(token, email string, clock clockwork.Clock) bool {
	if len(token) < minTokenLength || !strings.Contains(email, "@") {
		return false
	}
	return !expired(token, clock)
}

func expired(token string, clock clockwork.Clock) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		// Opaque tokens carry no expiry to check.
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return !clock.Now().Before(exp.Time)
}
