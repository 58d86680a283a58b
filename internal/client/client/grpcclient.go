package client

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/dmitrijs2005/sessionkeeper/internal/api"
	"github.com/dmitrijs2005/sessionkeeper/internal/client/models"
	"github.com/dmitrijs2005/sessionkeeper/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// anonymousMethods are called without an access token and never trigger
// a session renewal.
var anonymousMethods = map[string]bool{
	api.MethodRegister: true,
	api.MethodLogin:    true,
	api.MethodRefresh:  true,
	api.MethodPing:     true,
}

type GRPCClient struct {
	conn    *grpc.ClientConn
	client  api.SessionKeeperClient
	store   TokenStore
	timeout time.Duration
	now     func() time.Time

	// refreshMu serializes renewals so that concurrent callers do not
	// present the same refresh token twice.
	refreshMu sync.Mutex

	mu    sync.Mutex
	creds models.Credentials
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

// accessTokenInterceptor attaches the access token to protected calls. When
// the server rejects the token it renews the session once and retries.
func (c *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {

	if anonymousMethods[method] {
		return invoker(ctx, method, req, reply, cc, opts...)
	}

	used := c.Credentials().AccessToken
	err := invoker(withAccessToken(ctx, used), method, req, reply, cc, opts...)
	if status.Code(err) != codes.Unauthenticated {
		return err
	}

	if rerr := c.renewAfter(ctx, used); rerr != nil {
		return err
	}

	return invoker(withAccessToken(ctx, c.Credentials().AccessToken), method, req, reply, cc, opts...)
}

// NewGRPCClient connects to endpoint and restores credentials from store.
// Extra dial options are appended after the defaults.
func NewGRPCClient(ctx context.Context, endpoint string, timeout time.Duration, store TokenStore, opts ...grpc.DialOption) (*GRPCClient, error) {
	if store == nil {
		store = &MemoryTokenStore{}
	}

	c := &GRPCClient{store: store, timeout: timeout, now: time.Now}

	creds, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load credentials: %w", err)
	}
	c.creds = creds

	dial := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(endpoint, dial...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.client = api.NewSessionKeeperClient(conn)
	return c, nil
}

func (c *GRPCClient) Close() error {
	return c.conn.Close()
}

// Credentials returns a copy of the held token pair.
func (c *GRPCClient) Credentials() models.Credentials {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.creds
}

// SetCredentials replaces the held token pair and persists it.
func (c *GRPCClient) SetCredentials(ctx context.Context, creds models.Credentials) error {
	c.mu.Lock()
	c.creds = creds
	c.mu.Unlock()
	return c.store.Save(ctx, creds)
}

func (c *GRPCClient) forget(ctx context.Context) error {
	c.mu.Lock()
	c.creds = models.Credentials{}
	c.mu.Unlock()
	return c.store.Clear(ctx)
}

func (c *GRPCClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

// adopt stores a freshly issued access token together with the refresh
// token the server sent in the response header.
func (c *GRPCClient) adopt(ctx context.Context, accessToken string, header metadata.MD) error {
	creds := models.Credentials{AccessToken: accessToken}

	if v := header.Get(common.RefreshTokenHeaderName); len(v) > 0 {
		creds.RefreshToken = v[0]
	}
	if v := header.Get(common.RefreshTokenExpiresHeaderName); len(v) > 0 {
		if sec, err := strconv.ParseInt(v[0], 10, 64); err == nil {
			creds.RefreshExpiresAt = time.Unix(sec, 0)
		}
	}

	return c.SetCredentials(ctx, creds)
}

func (c *GRPCClient) renewAfter(ctx context.Context, used string) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	// Another caller already renewed while we were waiting.
	if cur := c.Credentials().AccessToken; cur != "" && cur != used {
		return nil
	}
	return c.renew(ctx)
}

func (c *GRPCClient) renew(ctx context.Context) error {
	creds := c.Credentials()
	if creds.RefreshToken == "" {
		return ErrNotLoggedIn
	}
	if creds.RefreshExpired(c.now()) {
		_ = c.forget(ctx)
		return ErrUnauthorized
	}

	ctx = metadata.AppendToOutgoingContext(ctx, common.RefreshTokenHeaderName, creds.RefreshToken)

	var header metadata.MD
	resp, err := c.client.Refresh(ctx, &api.Empty{}, grpc.Header(&header))
	if err != nil {
		mapped := mapError(err)
		if mapped == ErrUnauthorized {
			_ = c.forget(ctx)
		}
		return mapped
	}

	return c.adopt(ctx, resp.AccessToken, header)
}

func (c *GRPCClient) Register(ctx context.Context, name, email string, password []byte) (*api.User, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := c.client.Register(ctx, &api.RegisterRequest{Name: name, Email: email, Password: string(password)})
	if err != nil {
		return nil, mapError(err)
	}
	return &resp.User, nil
}

func (c *GRPCClient) Login(ctx context.Context, email string, password []byte) (*api.User, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	var header metadata.MD
	resp, err := c.client.Login(ctx, &api.LoginRequest{Email: email, Password: string(password)}, grpc.Header(&header))
	if err != nil {
		return nil, mapError(err)
	}

	if err := c.adopt(ctx, resp.AccessToken, header); err != nil {
		return nil, fmt.Errorf("save credentials: %w", err)
	}
	return &resp.User, nil
}

// Refresh exchanges the held refresh token for a new pair.
func (c *GRPCClient) Refresh(ctx context.Context) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()
	return c.renew(ctx)
}

// Logout revokes the session on the server and always drops local
// credentials.
func (c *GRPCClient) Logout(ctx context.Context) error {
	if c.Credentials().Empty() {
		return ErrNotLoggedIn
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	_, err := c.client.Logout(ctx, &api.Empty{})
	if ferr := c.forget(ctx); ferr != nil && err == nil {
		return fmt.Errorf("clear credentials: %w", ferr)
	}
	return mapError(err)
}

func (c *GRPCClient) WhoAmI(ctx context.Context) (*api.User, error) {
	return c.GetUser(ctx, "")
}

func (c *GRPCClient) GetUser(ctx context.Context, id string) (*api.User, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := c.client.GetUser(ctx, &api.GetUserRequest{ID: id})
	if err != nil {
		return nil, mapError(err)
	}
	return &resp.User, nil
}

func (c *GRPCClient) CreateUser(ctx context.Context, u NewUser) (*api.User, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := c.client.CreateUser(ctx, &api.CreateUserRequest{
		Name:     u.Name,
		Email:    u.Email,
		Password: string(u.Password),
		Age:      u.Age,
		Address:  u.Address,
		Role:     u.Role,
	})
	if err != nil {
		return nil, mapError(err)
	}
	return &resp.User, nil
}

func (c *GRPCClient) UpdateUser(ctx context.Context, req *api.UpdateUserRequest) (*api.User, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := c.client.UpdateUser(ctx, req)
	if err != nil {
		return nil, mapError(err)
	}
	return &resp.User, nil
}

func (c *GRPCClient) DeleteUser(ctx context.Context, id string) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	_, err := c.client.DeleteUser(ctx, &api.DeleteUserRequest{ID: id})
	return mapError(err)
}

func (c *GRPCClient) Ping(ctx context.Context) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := c.client.Ping(ctx, &api.Empty{})
	if err != nil {
		return mapError(err)
	}

	if resp.Status != "OK" {
		return ErrUnavailable
	}

	return nil
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated:
		return ErrUnauthorized
	case codes.PermissionDenied:
		return ErrForbidden
	case codes.NotFound:
		return ErrNotFound
	case codes.AlreadyExists:
		return ErrAlreadyExists
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", ErrInvalidInput, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
