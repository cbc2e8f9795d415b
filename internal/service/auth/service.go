package auth

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionNotFound    = errors.New("session not found")
)

type session struct {
	Username  string
	ExpiresAt time.Time
}

type Config struct {
	UsersFile  string
	SessionExp time.Duration
}

type service struct {
	users      map[string]string
	sessionExp time.Duration
	logger     *slog.Logger

	mu       sync.RWMutex
	sessions map[string]session
}

// NewService loads the credential file, creating it with default users
// when it does not exist yet.
func NewService(logger *slog.Logger, cfg *Config) (*service, error) {
	users, err := loadUsers(cfg.UsersFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load users file: %w", err)
	}

	return &service{
		users:      users,
		sessionExp: cfg.SessionExp,
		logger:     logger,
		sessions:   make(map[string]session),
	}, nil
}

func loadUsers(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}

		defaultUsers := map[string]string{"admin": "-", "tester": "-"}
		data, err = json.MarshalIndent(defaultUsers, "", "    ")
		if err != nil {
			return nil, err
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
		if err := os.WriteFile(path, data, 0o600); err != nil {
			return nil, err
		}

		return defaultUsers, nil
	}

	var users map[string]string
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, err
	}

	return users, nil
}

type LoginParams struct {
	Username string
	Password string
}

type LoginResponse struct {
	Token    string
	Username string
}

func (s *service) Login(ctx context.Context, params *LoginParams) (LoginResponse, error) {
	stored, ok := s.users[params.Username]
	if !ok || !matchPassword(stored, params.Password) {
		return LoginResponse{}, ErrInvalidCredentials
	}

	token := uuid.NewString()

	now := time.Now()

	s.mu.Lock()
	// sweep expired sessions so abandoned tokens do not accumulate
	for staleToken, sess := range s.sessions {
		if now.After(sess.ExpiresAt) {
			delete(s.sessions, staleToken)
		}
	}
	s.sessions[token] = session{
		Username:  params.Username,
		ExpiresAt: now.Add(s.sessionExp),
	}
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "user logged in", "username", params.Username)

	return LoginResponse{
		Token:    token,
		Username: params.Username,
	}, nil
}

// matchPassword accepts bcrypt hashes in the users file and falls back to
// a constant-time comparison for plain entries.
func matchPassword(stored, password string) bool {
	if strings.HasPrefix(stored, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
	}

	return subtle.ConstantTimeCompare([]byte(stored), []byte(password)) == 1
}

func (s *service) ValidateSession(token string) (string, error) {
	s.mu.RLock()
	sess, ok := s.sessions[token]
	s.mu.RUnlock()

	if !ok {
		return "", ErrSessionNotFound
	}

	if time.Now().After(sess.ExpiresAt) {
		s.mu.Lock()
		delete(s.sessions, token)
		s.mu.Unlock()

		return "", ErrSessionNotFound
	}

	return sess.Username, nil
}

func (s *service) DeleteSession(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}
