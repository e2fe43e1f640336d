package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// CreateUser inserts a new user row. Uniqueness of username and email
// is enforced by the UNIQUE constraints; on a constraint violation the
// store re-checks which field collided, so two concurrent
// registrations with the same name cannot both succeed.
func (s *Store) CreateUser(username, email, passwordHash string) (*User, error) {
	user := &User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}

	id, err := s.insertID(
		"INSERT INTO users (username, email, password_hash, created_at) VALUES (?, ?, ?, ?)",
		user.Username, user.Email, user.PasswordHash, user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			if _, lookupErr := s.GetUserByUsername(username); lookupErr == nil {
				return nil, ErrDuplicateUsername
			}
			if _, lookupErr := s.GetUserByEmail(email); lookupErr == nil {
				return nil, ErrDuplicateEmail
			}
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	user.ID = id
	return user, nil
}

// GetUserByUsername retrieves a user by username.
func (s *Store) GetUserByUsername(username string) (*User, error) {
	return s.getUser("SELECT id, username, email, password_hash, created_at FROM users WHERE username = ?", username)
}

// GetUserByEmail retrieves a user by email.
func (s *Store) GetUserByEmail(email string) (*User, error) {
	return s.getUser("SELECT id, username, email, password_hash, created_at FROM users WHERE email = ?", email)
}

// GetUserByID retrieves a user by id.
func (s *Store) GetUserByID(id int64) (*User, error) {
	return s.getUser("SELECT id, username, email, password_hash, created_at FROM users WHERE id = ?", id)
}

func (s *Store) getUser(query string, arg any) (*User, error) {
	user := &User{}
	err := s.db.QueryRow(s.rebind(query), arg).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
