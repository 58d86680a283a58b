package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/sessionkeeper/internal/api"
	"github.com/dmitrijs2005/sessionkeeper/internal/client/client"
	"github.com/dmitrijs2005/sessionkeeper/internal/common"
)

func (a *App) GetUser(ctx context.Context, id string) error {
	u, err := a.client.GetUser(ctx, id)
	if err != nil {
		return err
	}
	a.printUser(u)
	return nil
}

// CreateUser prompts for a new account. Age, address and role are optional.
func (a *App) CreateUser(ctx context.Context) error {
	var (
		nu  client.NewUser
		err error
	)

	if nu.Name, err = getSimpleText(a.reader, "Enter name", a.out); err != nil {
		return err
	}
	if nu.Email, err = getSimpleText(a.reader, "Enter email", a.out); err != nil {
		return err
	}

	nu.Password, err = getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(nu.Password)

	age, err := getSimpleText(a.reader, "Enter age (optional)", a.out)
	if err != nil {
		return err
	}
	if nu.Age, err = parseAge(age); err != nil {
		return err
	}

	if nu.Address, err = getSimpleText(a.reader, "Enter address (optional)", a.out); err != nil {
		return err
	}
	if nu.Role, err = getSimpleText(a.reader, "Enter role (optional)", a.out); err != nil {
		return err
	}

	u, err := a.client.CreateUser(ctx, nu)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Created %s (%s)\n", u.Email, u.ID)
	return nil
}

// UpdateUser prompts for each field; an empty answer leaves it unchanged.
func (a *App) UpdateUser(ctx context.Context, id string) error {
	req := &api.UpdateUserRequest{ID: id}

	fields := []struct {
		prompt string
		dst    **string
	}{
		{"New name (empty to keep)", &req.Name},
		{"New email (empty to keep)", &req.Email},
		{"New address (empty to keep)", &req.Address},
		{"New role (empty to keep)", &req.Role},
	}
	for _, f := range fields {
		v, err := getSimpleText(a.reader, f.prompt, a.out)
		if err != nil {
			return err
		}
		if v != "" {
			*f.dst = &v
		}
	}

	age, err := getSimpleText(a.reader, "New age (empty to keep)", a.out)
	if err != nil {
		return err
	}
	if age != "" {
		n, err := parseAge(age)
		if err != nil {
			return err
		}
		req.Age = &n
	}

	u, err := a.client.UpdateUser(ctx, req)
	if err != nil {
		return err
	}
	a.printUser(u)
	return nil
}

func (a *App) DeleteUser(ctx context.Context, id string) error {
	if err := a.client.DeleteUser(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted %s\n", id)
	return nil
}

func (a *App) Ping(ctx context.Context) error {
	if err := a.client.Ping(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "OK")
	return nil
}

func parseAge(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: age must be a non-negative number", client.ErrInvalidInput)
	}
	return n, nil
}
