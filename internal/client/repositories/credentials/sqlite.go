package credentials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/sessionkeeper/internal/client/models"
	"github.com/dmitrijs2005/sessionkeeper/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Get(ctx context.Context, server string) (*models.Credentials, error) {
	var (
		c       models.Credentials
		expires int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT access_token, refresh_token, refresh_expires_at FROM credentials WHERE server = ?`, server,
	).Scan(&c.AccessToken, &c.RefreshToken, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get credentials[%s]: %w", server, err)
	}
	if expires > 0 {
		c.RefreshExpiresAt = time.Unix(expires, 0)
	}
	return &c, nil
}

func (r *SQLiteRepository) Save(ctx context.Context, server string, c models.Credentials) error {
	var expires int64
	if !c.RefreshExpiresAt.IsZero() {
		expires = c.RefreshExpiresAt.Unix()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO credentials (server, access_token, refresh_token, refresh_expires_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(server) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			refresh_expires_at = excluded.refresh_expires_at
	`, server, c.AccessToken, c.RefreshToken, expires)
	if err != nil {
		return fmt.Errorf("failed to save credentials[%s]: %w", server, err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, server string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM credentials WHERE server = ?`, server)
	if err != nil {
		return fmt.Errorf("failed to delete credentials[%s]: %w", server, err)
	}
	return nil
}
