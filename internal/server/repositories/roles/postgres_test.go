package roles

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/sessionkeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

func TestGetByName_Found(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`^SELECT\s+id,\s*name,\s*permissions\s+FROM\s+roles\s+WHERE\s+name\s*=\s*\$1$`).
		WithArgs("ADMIN").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "permissions"}).
			AddRow("r-1", "ADMIN", []byte(`["users:delete"]`)))

	role, err := repo.GetByName(context.Background(), "ADMIN")
	require.NoError(t, err)
	assert.Equal(t, "r-1", role.ID)
	assert.Equal(t, []string{"users:delete"}, role.Permissions)
}

func TestGetByID_Found(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`WHERE\s+id\s*=\s*\$1$`).
		WithArgs("r-2").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "permissions"}).AddRow("r-2", "USER", []byte(`[]`)))

	role, err := repo.GetByID(context.Background(), "r-2")
	require.NoError(t, err)
	assert.Equal(t, "USER", role.Name)
	assert.Empty(t, role.Permissions)
}

func TestGetByName_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`FROM\s+roles`).WithArgs("GHOST").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByName(context.Background(), "GHOST")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestGetByName_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`FROM\s+roles`).WithArgs("USER").WillReturnError(errors.New("conn reset"))

	_, err := repo.GetByName(context.Background(), "USER")
	assert.ErrorIs(t, err, common.ErrorUnavailable)
}
