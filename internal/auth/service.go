package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/kevinpasricha/team-to-doers/internal/database"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionExpired     = errors.New("session has expired")
)

// Service owns credential checks and the session lifecycle. It is
// constructed once at startup and injected wherever auth is needed.
type Service struct {
	store *database.Store
	ttl   time.Duration
}

func NewService(store *database.Store, ttl time.Duration) *Service {
	return &Service{store: store, ttl: ttl}
}

// TTL returns the fixed session lifetime. Sessions do not renew on
// activity.
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Register hashes the password and creates the user. Duplicate
// username/email errors from the store pass through unchanged.
func (s *Service) Register(username, email, password string) (*database.User, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	return s.store.CreateUser(username, email, hash)
}

// Login verifies the credentials and returns the matching user. An
// unknown username and a wrong password fail identically so callers
// cannot probe for registered accounts.
func (s *Service) Login(username, password string) (*database.User, error) {
	user, err := s.store.GetUserByUsername(username)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !CheckPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// CreateSession issues a new session token for the user, valid for the
// configured TTL from now.
func (s *Service) CreateSession(userID int64) (*database.Session, error) {
	token, err := generateToken()
	if err != nil {
		return nil, err
	}
	return s.store.CreateSession(userID, token, time.Now().Add(s.ttl))
}

// ValidateSession resolves a session token to its user id. Unknown,
// destroyed, and expired tokens all fail.
func (s *Service) ValidateSession(token string) (int64, error) {
	session, err := s.store.GetSessionByToken(token)
	if err != nil {
		if errors.Is(err, database.ErrSessionNotFound) {
			return 0, ErrSessionNotFound
		}
		return 0, err
	}

	if session.ExpiresAt.Before(time.Now()) {
		return 0, ErrSessionExpired
	}
	return session.UserID, nil
}

// DestroySession removes a session. Idempotent; destroying an absent
// token is not an error.
func (s *Service) DestroySession(token string) error {
	return s.store.DeleteSession(token)
}

// CleanupExpiredSessions removes expired session records.
func (s *Service) CleanupExpiredSessions() error {
	return s.store.CleanupExpiredSessions()
}

func generateToken() (string, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(tokenBytes), nil
}
