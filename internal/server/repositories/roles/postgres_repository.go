package roles

import (
	"context"

	"github.com/dmitrijs2005/sessionkeeper/internal/dbx"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetByName(ctx context.Context, name string) (*models.Role, error) {
	return r.getOne(ctx, `SELECT id, name, permissions FROM roles WHERE name = $1`, name)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Role, error) {
	return r.getOne(ctx, `SELECT id, name, permissions FROM roles WHERE id = $1`, id)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg string) (*models.Role, error) {
	var (
		role  models.Role
		perms []byte
	)
	if err := r.db.QueryRowContext(ctx, query, arg).Scan(&role.ID, &role.Name, &perms); err != nil {
		return nil, dbx.WrapErr(err)
	}

	var err error
	if role.Permissions, err = models.ParsePermissions(perms); err != nil {
		return nil, err
	}
	return &role, nil
}
