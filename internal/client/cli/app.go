package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/sessionkeeper/internal/api"
	"github.com/dmitrijs2005/sessionkeeper/internal/client/client"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrUsage          = errors.New("usage")
)

type App struct {
	client client.Client
	reader *bufio.Reader
	out    io.Writer
	user   *api.User
}

func NewApp(c client.Client, in io.Reader, out io.Writer) *App {
	return &App{client: c, reader: bufio.NewReader(in), out: out}
}

func (a *App) isLoggedIn() bool {
	return a.user != nil
}

// Execute runs a single command with its positional arguments.
func (a *App) Execute(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "register":
		return a.Register(ctx)
	case "login":
		return a.Login(ctx)
	case "logout":
		return a.Logout(ctx)
	case "refresh":
		return a.Refresh(ctx)
	case "whoami":
		return a.WhoAmI(ctx)
	case "get":
		id := ""
		if len(args) > 0 {
			id = args[0]
		}
		return a.GetUser(ctx, id)
	case "create":
		return a.CreateUser(ctx)
	case "update":
		if len(args) == 0 {
			return fmt.Errorf("%w: update <id>", ErrUsage)
		}
		return a.UpdateUser(ctx, args[0])
	case "delete":
		if len(args) == 0 {
			return fmt.Errorf("%w: delete <id>", ErrUsage)
		}
		return a.DeleteUser(ctx, args[0])
	case "ping":
		return a.Ping(ctx)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownCommand, cmd)
	}
}

func (a *App) printUser(u *api.User) {
	fmt.Fprintf(a.out, "id:      %s\n", u.ID)
	fmt.Fprintf(a.out, "name:    %s\n", u.Name)
	fmt.Fprintf(a.out, "email:   %s\n", u.Email)
	if u.Age > 0 {
		fmt.Fprintf(a.out, "age:     %d\n", u.Age)
	}
	if u.Address != "" {
		fmt.Fprintf(a.out, "address: %s\n", u.Address)
	}
	if u.Role.Name != "" {
		fmt.Fprintf(a.out, "role:    %s\n", u.Role.Name)
	}
}
