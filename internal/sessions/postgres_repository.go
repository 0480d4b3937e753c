package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// PostgresRepository persists sessions to a Postgres database.
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository constructs a repository backed by sqlx.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const sessionSelect = `
SELECT
    id,
    language,
    COALESCE(content_type, '') AS content_type,
    partner,
    COALESCE(character_id, '') AS character_id,
    participants,
    viewer_id,
    created_at,
    updated_at
FROM sessions
`

func (r *PostgresRepository) Create(ctx context.Context, session Session) (Session, error) {
	insert := `INSERT INTO sessions (id, language, content_type, partner, character_id, participants, viewer_id, created_at, updated_at)
VALUES (:id, :language, NULLIF(:content_type, ''), :partner, NULLIF(:character_id, ''), :participants, :viewer_id, :created_at, :updated_at)`

	if _, err := r.db.NamedExecContext(ctx, insert, session); err != nil {
		return Session{}, fmt.Errorf("insert session: %w", err)
	}

	return r.Get(ctx, session.ID)
}

func (r *PostgresRepository) Get(ctx context.Context, id uuid.UUID) (Session, error) {
	var session Session
	if err := r.db.GetContext(ctx, &session, sessionSelect+" WHERE id = $1", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, ErrNotFound
		}
		return Session{}, fmt.Errorf("get session: %w", err)
	}
	return session, nil
}

func (r *PostgresRepository) Update(ctx context.Context, session Session) (Session, error) {
	update := `UPDATE sessions SET
    language = :language,
    content_type = NULLIF(:content_type, ''),
    partner = :partner,
    character_id = NULLIF(:character_id, ''),
    participants = :participants,
    viewer_id = :viewer_id,
    updated_at = :updated_at
WHERE id = :id`

	res, err := r.db.NamedExecContext(ctx, update, session)
	if err != nil {
		return Session{}, fmt.Errorf("update session: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return Session{}, fmt.Errorf("update session rows: %w", err)
	}
	if rows == 0 {
		return Session{}, ErrNotFound
	}

	return r.Get(ctx, session.ID)
}

func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete session rows: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
