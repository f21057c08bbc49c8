package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/AsifaBeedi/jewel-site-booster/internal/models"
)

// CreateUser inserts a dashboard user. passwordHash must already be a bcrypt hash.
func (s *Store) CreateUser(ctx context.Context, username, passwordHash string, name *string) (*models.User, error) {
	user := &models.User{
		ID:           uuid.New(),
		Username:     username,
		Name:         name,
		PasswordHash: passwordHash,
		CreatedAt:    s.timestamp(),
	}

	var nameParam sql.NullString
	if name != nil {
		nameParam = nullIfEmpty(*name)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (user_id, username, password_hash, name, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, user.ID, user.Username, user.PasswordHash, nameParam, user.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// UserByUsername returns ErrNotFound when no such user exists.
func (s *Store) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT user_id, username, name, password_hash, created_at
		FROM users
		WHERE username = $1
	`, username))
}

// UserByID returns ErrNotFound when no such user exists.
func (s *Store) UserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT user_id, username, name, password_hash, created_at
		FROM users
		WHERE user_id = $1
	`, id))
}

func (s *Store) scanUser(row *sql.Row) (*models.User, error) {
	var (
		user models.User
		name sql.NullString
	)
	err := row.Scan(&user.ID, &user.Username, &name, &user.PasswordHash, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if name.Valid {
		user.Name = &name.String
	}
	return &user, nil
}

// ListUsers returns all users ordered by creation time.
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, username, name, password_hash, created_at
		FROM users
		ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer closeRows(rows)

	users := []models.User{}
	for rows.Next() {
		var (
			user models.User
			name sql.NullString
		)
		if err := rows.Scan(&user.ID, &user.Username, &name, &user.PasswordHash, &user.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		if name.Valid {
			n := name.String
			user.Name = &n
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// DeleteUser removes a user and, via cascade, their sessions.
func (s *Store) DeleteUser(ctx context.Context, username string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE username = $1`, username)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return expectAffected(result)
}

// UpdatePassword replaces the hash and revokes every session of the user.
func (s *Store) UpdatePassword(ctx context.Context, username, passwordHash string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin password update: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var userID uuid.UUID
	err = tx.QueryRowContext(ctx, `SELECT user_id FROM users WHERE username = $1`, username).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE users SET password_hash = $1 WHERE user_id = $2`, passwordHash, userID); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM user_sessions WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}
	return tx.Commit()
}

// CreateSession stores a dashboard login.
func (s *Store) CreateSession(ctx context.Context, session models.Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_sessions (session_id, user_id, token_hash, expires_at, user_agent, ip_address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		session.ID, session.UserID, session.TokenHash, session.ExpiresAt.UTC(),
		nullIfEmpty(session.UserAgent), nullIfEmpty(session.IPAddress), s.timestamp(),
	)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// ValidateSession resolves a token hash to its user. Expired or unknown
// sessions yield ErrNotFound.
func (s *Store) ValidateSession(ctx context.Context, tokenHash string) (*models.SessionUser, error) {
	var (
		su        models.SessionUser
		name      sql.NullString
		expiresAt time.Time
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT s.session_id, u.user_id, u.username, u.name, s.expires_at
		FROM user_sessions s
		JOIN users u ON u.user_id = s.user_id
		WHERE s.token_hash = $1
	`, tokenHash).Scan(&su.SessionID, &su.UserID, &su.Username, &name, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("validate session: %w", err)
	}
	// Compared in Go so both dialects agree on time semantics.
	if !expiresAt.After(s.timestamp()) {
		return nil, ErrNotFound
	}
	if name.Valid {
		su.Name = &name.String
	}
	return &su, nil
}

// DeleteSession removes a single session (logout).
func (s *Store) DeleteSession(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM user_sessions WHERE session_id = $1`, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func expectAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
