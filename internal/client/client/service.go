package client

import (
	"context"

	"github.com/dmitrijs2005/sessionkeeper/internal/api"
)

// NewUser is the input of administrative user creation.
type NewUser struct {
	Name     string
	Email    string
	Password []byte
	Age      int
	Address  string
	Role     string
}

type Client interface {
	Close() error
	Register(ctx context.Context, name, email string, password []byte) (*api.User, error)
	Login(ctx context.Context, email string, password []byte) (*api.User, error)
	Refresh(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) (*api.User, error)
	GetUser(ctx context.Context, id string) (*api.User, error)
	CreateUser(ctx context.Context, u NewUser) (*api.User, error)
	UpdateUser(ctx context.Context, req *api.UpdateUserRequest) (*api.User, error)
	DeleteUser(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}
