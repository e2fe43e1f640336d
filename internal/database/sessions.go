package database

import (
	"database/sql"
	"errors"
	"time"
)

// CreateSession stores a new session record.
func (s *Store) CreateSession(userID int64, token string, expiresAt time.Time) (*Session, error) {
	session := &Session{
		UserID:    userID,
		Token:     token,
		CreatedAt: time.Now(),
		ExpiresAt: expiresAt,
	}

	id, err := s.insertID(
		"INSERT INTO sessions (user_id, token, created_at, expires_at) VALUES (?, ?, ?, ?)",
		session.UserID, session.Token, session.CreatedAt, session.ExpiresAt,
	)
	if err != nil {
		return nil, err
	}

	session.ID = id
	return session, nil
}

// GetSessionByToken retrieves a session record by its token.
func (s *Store) GetSessionByToken(token string) (*Session, error) {
	session := &Session{}
	err := s.db.QueryRow(
		s.rebind("SELECT id, user_id, token, created_at, expires_at FROM sessions WHERE token = ?"),
		token,
	).Scan(&session.ID, &session.UserID, &session.Token, &session.CreatedAt, &session.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

// DeleteSession removes a session. Deleting an absent token is not an
// error; logout is idempotent.
func (s *Store) DeleteSession(token string) error {
	_, err := s.db.Exec(s.rebind("DELETE FROM sessions WHERE token = ?"), token)
	return err
}

// CleanupExpiredSessions removes all sessions past their expiry.
func (s *Store) CleanupExpiredSessions() error {
	_, err := s.db.Exec(s.rebind("DELETE FROM sessions WHERE expires_at < ?"), time.Now())
	return err
}
