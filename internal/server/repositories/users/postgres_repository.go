package users

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/sessionkeeper/internal/common"
	"github.com/dmitrijs2005/sessionkeeper/internal/dbx"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/models"
)

// userColumns is the projection scanned by scanUser, joined with the role.
const userColumns = `u.id, u.name, u.email, u.password_hash, u.age, u.address, u.refresh_token,
	COALESCE(r.id::text, ''), COALESCE(r.name, ''), COALESCE(r.permissions, '[]'::jsonb),
	COALESCE(u.created_by_id::text, ''), COALESCE(u.created_by_email, ''),
	COALESCE(u.updated_by_id::text, ''), COALESCE(u.updated_by_email, ''),
	u.created_at, u.updated_at`

// activeUsers is the only source every lookup selects from.
const activeUsers = `FROM users u
	LEFT JOIN roles r ON r.id = u.role_id
	WHERE NOT u.deleted`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, u *models.User) (*models.User, error) {
	query := `
		INSERT INTO users (id, name, email, password_hash, age, address, role_id, created_by_id, created_by_email)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`
	createdByID, createdByEmail := actorArgs(u.CreatedBy)

	err := r.db.QueryRowContext(ctx, query,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Age, u.Address, nullable(u.Role.ID), createdByID, createdByEmail,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, dbx.WrapErr(err)
	}

	return u, nil
}

func (r *PostgresRepository) InsertIfAbsent(ctx context.Context, u *models.User) (bool, error) {
	query := `
		INSERT INTO users (id, name, email, password_hash, role_id)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (email) WHERE NOT deleted DO NOTHING
	`
	res, err := r.db.ExecContext(ctx, query, u.ID, u.Name, u.Email, u.PasswordHash, nullable(u.Role.ID))
	if err != nil {
		return false, dbx.WrapErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, dbx.WrapErr(err)
	}
	return n == 1, nil
}

func (r *PostgresRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, dbx.WrapErr(err)
	}
	return n, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, `u.email = $1`, email)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getOne(ctx, `u.id = $1`, id)
}

func (r *PostgresRepository) GetByRefreshToken(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, common.ErrorNotFound
	}
	return r.getOne(ctx, `u.refresh_token = $1`, token)
}

func (r *PostgresRepository) getOne(ctx context.Context, cond string, arg any) (*models.User, error) {
	query := `SELECT ` + userColumns + ` ` + activeUsers + ` AND ` + cond

	u, err := scanUser(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		return nil, dbx.WrapErr(err)
	}
	return u, nil
}

func (r *PostgresRepository) Update(ctx context.Context, patch *models.UserPatch, roleID *string, by models.Actor) (int64, error) {
	query := `
		UPDATE users SET
			name = COALESCE($2, name),
			email = COALESCE($3, email),
			age = COALESCE($4, age),
			address = COALESCE($5, address),
			role_id = COALESCE($6, role_id),
			updated_by_id = $7,
			updated_by_email = $8,
			updated_at = now()
		WHERE id = $1 AND NOT deleted
	`
	res, err := r.db.ExecContext(ctx, query,
		patch.ID, patch.Name, patch.Email, patch.Age, patch.Address, roleID, by.ID, by.Email,
	)
	if err != nil {
		return 0, dbx.WrapErr(err)
	}
	return rowsAffected(res)
}

func (r *PostgresRepository) SoftDelete(ctx context.Context, id string, by models.Actor) (int64, error) {
	query := `
		UPDATE users SET
			deleted = TRUE,
			deleted_by_id = $2,
			deleted_by_email = $3,
			deleted_at = now(),
			refresh_token = ''
		WHERE id = $1 AND NOT deleted
	`
	res, err := r.db.ExecContext(ctx, query, id, by.ID, by.Email)
	if err != nil {
		return 0, dbx.WrapErr(err)
	}
	return rowsAffected(res)
}

func (r *PostgresRepository) SetRefreshToken(ctx context.Context, userID, token string) error {
	query := `UPDATE users SET refresh_token = $2 WHERE id = $1 AND NOT deleted`

	res, err := r.db.ExecContext(ctx, query, userID, token)
	if err != nil {
		return dbx.WrapErr(err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) CompareAndSwapRefreshToken(ctx context.Context, userID, expected, next string) (bool, error) {
	if expected == "" {
		return false, nil
	}
	query := `
		UPDATE users SET refresh_token = $3
		WHERE id = $1 AND refresh_token = $2 AND NOT deleted
	`
	res, err := r.db.ExecContext(ctx, query, userID, expected, next)
	if err != nil {
		return false, dbx.WrapErr(err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		u                           models.User
		perms                       []byte
		createdByID, createdByEmail string
		updatedByID, updatedByEmail string
	)

	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Age, &u.Address, &u.RefreshToken,
		&u.Role.ID, &u.Role.Name, &perms,
		&createdByID, &createdByEmail,
		&updatedByID, &updatedByEmail,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if u.Role.Permissions, err = models.ParsePermissions(perms); err != nil {
		return nil, fmt.Errorf("user %s: %w", u.ID, err)
	}
	u.CreatedBy = actorOf(createdByID, createdByEmail)
	u.UpdatedBy = actorOf(updatedByID, updatedByEmail)

	return &u, nil
}

func actorOf(id, email string) *models.Actor {
	if id == "" {
		return nil
	}
	return &models.Actor{ID: id, Email: email}
}

func actorArgs(a *models.Actor) (any, any) {
	if a == nil {
		return nil, nil
	}
	return a.ID, a.Email
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func rowsAffected(res interface{ RowsAffected() (int64, error) }) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, dbx.WrapErr(err)
	}
	return n, nil
}
