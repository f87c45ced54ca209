package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"wanderlust/internal/domain"
	"wanderlust/internal/repository"
)

const createSessionsTable = `
CREATE TABLE IF NOT EXISTS sessions (
	token TEXT PRIMARY KEY,
	user_id INTEGER NULL REFERENCES users(id) ON DELETE SET NULL,
	data TEXT NOT NULL DEFAULT '{}',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	expires_at DATETIME NOT NULL
);
`

type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) repository.SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createSessionsTable); err != nil {
		return fmt.Errorf("create sessions table: %w", err)
	}
	return nil
}

func (r *SessionRepository) Create(ctx context.Context, session *domain.Session) error {
	data, err := json.Marshal(session.Data)
	if err != nil {
		return fmt.Errorf("marshal session data: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, `
INSERT INTO sessions (token, user_id, data, created_at, updated_at, expires_at)
VALUES (?, ?, ?, ?, ?, ?)`,
		session.Token,
		nullID(session.UserID),
		string(data),
		session.CreatedAt,
		session.UpdatedAt,
		session.ExpiresAt,
	); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Get(ctx context.Context, token string) (*domain.Session, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT token, user_id, data, created_at, updated_at, expires_at
FROM sessions
WHERE token = ?`,
		token,
	)

	var (
		session domain.Session
		userID  sql.NullInt64
		data    string
	)
	if err := row.Scan(
		&session.Token,
		&userID,
		&data,
		&session.CreatedAt,
		&session.UpdatedAt,
		&session.ExpiresAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("session: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}
	session.UserID = userID.Int64
	if err := json.Unmarshal([]byte(data), &session.Data); err != nil {
		return nil, fmt.Errorf("unmarshal session data: %w", err)
	}
	return &session, nil
}

func (r *SessionRepository) Save(ctx context.Context, session *domain.Session) error {
	data, err := json.Marshal(session.Data)
	if err != nil {
		return fmt.Errorf("marshal session data: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `
UPDATE sessions
SET user_id = ?, data = ?, updated_at = ?, expires_at = ?
WHERE token = ?`,
		nullID(session.UserID),
		string(data),
		session.UpdatedAt,
		session.ExpiresAt,
		session.Token,
	)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update session rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("session: %w", repository.ErrNotFound)
	}
	return nil
}

func (r *SessionRepository) Touch(ctx context.Context, token string, updatedAt, expiresAt time.Time) error {
	if _, err := r.db.ExecContext(ctx, `
UPDATE sessions SET updated_at = ?, expires_at = ? WHERE token = ?`,
		updatedAt, expiresAt, token,
	); err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Delete(ctx context.Context, token string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func nullID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}
