package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgresRepository.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const viewerColumns = `id, email, name, avatar_url, oauth_provider, oauth_provider_id, created_at, updated_at, last_login_at`

func (r *PostgresRepository) FindViewerByOAuth(ctx context.Context, provider, providerID string) (*Viewer, error) {
	var viewer Viewer
	query := `SELECT ` + viewerColumns + ` FROM viewers WHERE oauth_provider = $1 AND oauth_provider_id = $2`
	if err := r.db.GetContext(ctx, &viewer, query, provider, providerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get viewer: %w", err)
	}
	return &viewer, nil
}

func (r *PostgresRepository) CreateViewer(ctx context.Context, viewer Viewer) (Viewer, error) {
	insert := `INSERT INTO viewers (` + viewerColumns + `)
VALUES (:id, :email, :name, :avatar_url, :oauth_provider, :oauth_provider_id, :created_at, :updated_at, :last_login_at)`

	if _, err := r.db.NamedExecContext(ctx, insert, viewer); err != nil {
		return Viewer{}, fmt.Errorf("insert viewer: %w", err)
	}
	return viewer, nil
}

func (r *PostgresRepository) UpdateViewerProfile(ctx context.Context, id uuid.UUID, name, avatarURL string, at time.Time) error {
	const update = `UPDATE viewers SET name = $2, avatar_url = $3, last_login_at = $4, updated_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, update, id, name, avatarURL, at); err != nil {
		return fmt.Errorf("update viewer: %w", err)
	}
	return nil
}

func (r *PostgresRepository) CreateLogin(ctx context.Context, login Login) error {
	const insert = `INSERT INTO viewer_logins (id, viewer_id, token_hash, expires_at, created_at, user_agent, ip_address)
VALUES (:id, :viewer_id, :token_hash, :expires_at, :created_at, :user_agent, :ip_address)`

	if _, err := r.db.NamedExecContext(ctx, insert, login); err != nil {
		return fmt.Errorf("insert login: %w", err)
	}
	return nil
}

// loginViewerRow flattens the login/viewer join; columns are prefixed to
// keep the two id and timestamp sets apart.
type loginViewerRow struct {
	LoginID        uuid.UUID `db:"login_id"`
	TokenHash      string    `db:"token_hash"`
	ExpiresAt      time.Time `db:"expires_at"`
	LoginCreatedAt time.Time `db:"login_created_at"`
	UserAgent      string    `db:"user_agent"`
	IPAddress      string    `db:"ip_address"`
	Viewer
}

func (r *PostgresRepository) FindLoginByTokenHash(ctx context.Context, tokenHash string) (*Login, *Viewer, error) {
	const query = `
SELECT
    l.id AS login_id,
    l.token_hash,
    l.expires_at,
    l.created_at AS login_created_at,
    l.user_agent,
    l.ip_address,
    v.id,
    v.email,
    v.name,
    v.avatar_url,
    v.oauth_provider,
    v.oauth_provider_id,
    v.created_at,
    v.updated_at,
    v.last_login_at
FROM viewer_logins l
JOIN viewers v ON v.id = l.viewer_id
WHERE l.token_hash = $1`

	var row loginViewerRow
	if err := r.db.GetContext(ctx, &row, query, tokenHash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("get login: %w", err)
	}

	login := &Login{
		ID:        row.LoginID,
		ViewerID:  row.Viewer.ID,
		TokenHash: row.TokenHash,
		ExpiresAt: row.ExpiresAt,
		CreatedAt: row.LoginCreatedAt,
		UserAgent: row.UserAgent,
		IPAddress: row.IPAddress,
	}
	viewer := row.Viewer
	return login, &viewer, nil
}

func (r *PostgresRepository) DeleteLogin(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM viewer_logins WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete login: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DeleteExpiredLogins(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM viewer_logins WHERE expires_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("delete expired logins: %w", err)
	}
	return res.RowsAffected()
}
