package client

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/sessionkeeper/internal/api"
	"github.com/dmitrijs2005/sessionkeeper/internal/client/models"
	"github.com/dmitrijs2005/sessionkeeper/internal/common"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

/*************
 * Fake api client
 *************/

type fakeAPI struct {
	mu sync.Mutex

	// inputs captured
	refreshCalls   int
	lastRefreshMD  metadata.MD
	lastLoginReq   *api.LoginRequest
	lastGetUserReq *api.GetUserRequest

	// outputs preset
	refreshResp   *api.SessionResponse
	refreshHeader metadata.MD
	refreshErr    error

	loginResp   *api.SessionResponse
	loginHeader metadata.MD
	loginErr    error

	logoutErr error

	registerErr error

	pingResp *api.PingResponse
	pingErr  error
}

func setHeader(opts []grpc.CallOption, md metadata.MD) {
	for _, o := range opts {
		if h, ok := o.(grpc.HeaderCallOption); ok && md != nil {
			*h.HeaderAddr = md
		}
	}
}

func (f *fakeAPI) Register(ctx context.Context, in *api.RegisterRequest, opts ...grpc.CallOption) (*api.UserResponse, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &api.UserResponse{User: api.User{ID: "u1", Name: in.Name, Email: in.Email}}, nil
}
func (f *fakeAPI) Login(ctx context.Context, in *api.LoginRequest, opts ...grpc.CallOption) (*api.SessionResponse, error) {
	f.lastLoginReq = in
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	setHeader(opts, f.loginHeader)
	return f.loginResp, nil
}
func (f *fakeAPI) Refresh(ctx context.Context, in *api.Empty, opts ...grpc.CallOption) (*api.SessionResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshCalls++
	f.lastRefreshMD, _ = metadata.FromOutgoingContext(ctx)
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	setHeader(opts, f.refreshHeader)
	return f.refreshResp, nil
}
func (f *fakeAPI) Logout(ctx context.Context, in *api.Empty, opts ...grpc.CallOption) (*api.Empty, error) {
	return &api.Empty{}, f.logoutErr
}
func (f *fakeAPI) GetUser(ctx context.Context, in *api.GetUserRequest, opts ...grpc.CallOption) (*api.UserResponse, error) {
	f.lastGetUserReq = in
	return &api.UserResponse{User: api.User{ID: "u1"}}, nil
}
func (f *fakeAPI) CreateUser(ctx context.Context, in *api.CreateUserRequest, opts ...grpc.CallOption) (*api.UserResponse, error) {
	return &api.UserResponse{User: api.User{ID: "u2", Email: in.Email}}, nil
}
func (f *fakeAPI) UpdateUser(ctx context.Context, in *api.UpdateUserRequest, opts ...grpc.CallOption) (*api.UserResponse, error) {
	return &api.UserResponse{User: api.User{ID: in.ID}}, nil
}
func (f *fakeAPI) DeleteUser(ctx context.Context, in *api.DeleteUserRequest, opts ...grpc.CallOption) (*api.Empty, error) {
	return &api.Empty{}, nil
}
func (f *fakeAPI) Ping(ctx context.Context, in *api.Empty, opts ...grpc.CallOption) (*api.PingResponse, error) {
	return f.pingResp, f.pingErr
}

func newFakeClient(f *fakeAPI, creds models.Credentials) *GRPCClient {
	return &GRPCClient{client: f, store: &MemoryTokenStore{}, now: time.Now, creds: creds}
}

func refreshHeader(token string, expires time.Time) metadata.MD {
	return metadata.Pairs(
		common.RefreshTokenHeaderName, token,
		common.RefreshTokenExpiresHeaderName, strconv.FormatInt(expires.Unix(), 10),
	)
}

/*************
 * accessTokenInterceptor tests
 *************/

func TestInterceptor_RefreshesOnUnauthenticatedAndRetries(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	f := &fakeAPI{
		refreshResp:   &api.SessionResponse{AccessToken: "A2"},
		refreshHeader: refreshHeader("R2", exp),
	}
	c := newFakeClient(f, models.Credentials{AccessToken: "A1", RefreshToken: "R1"})

	callCount := 0
	invoker := func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		callCount++
		md, _ := metadata.FromOutgoingContext(ctx)
		toks := md.Get(common.AccessTokenHeaderName)
		require.Len(t, toks, 1)

		if callCount == 1 {
			require.Equal(t, "A1", toks[0])
			return status.Error(codes.Unauthenticated, "unauthorized")
		}
		require.Equal(t, "A2", toks[0])
		return nil
	}

	err := c.accessTokenInterceptor(context.Background(), api.MethodGetUser, nil, nil, nil, invoker)
	require.NoError(t, err)
	require.Equal(t, 2, callCount)

	creds := c.Credentials()
	require.Equal(t, "A2", creds.AccessToken)
	require.Equal(t, "R2", creds.RefreshToken)
	require.True(t, exp.Equal(creds.RefreshExpiresAt))
	require.Equal(t, []string{"R1"}, f.lastRefreshMD.Get(common.RefreshTokenHeaderName))

	stored, err := c.store.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, creds, stored)
}

func TestInterceptor_NoRefreshIfNoRefreshToken(t *testing.T) {
	f := &fakeAPI{}
	c := newFakeClient(f, models.Credentials{AccessToken: "A1"})

	invoker := func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		return status.Error(codes.Unauthenticated, "unauthorized")
	}

	err := c.accessTokenInterceptor(context.Background(), api.MethodGetUser, nil, nil, nil, invoker)
	require.Equal(t, codes.Unauthenticated, status.Code(err))
	require.Zero(t, f.refreshCalls)
}

func TestInterceptor_IgnoresOtherErrors(t *testing.T) {
	f := &fakeAPI{}
	c := newFakeClient(f, models.Credentials{AccessToken: "X", RefreshToken: "R"})
	invoker := func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		return status.Error(codes.Internal, "boom")
	}
	err := c.accessTokenInterceptor(context.Background(), api.MethodGetUser, nil, nil, nil, invoker)
	require.Equal(t, codes.Internal, status.Code(err))
	require.Zero(t, f.refreshCalls)
}

func TestInterceptor_AnonymousMethodsCarryNoToken(t *testing.T) {
	f := &fakeAPI{}
	c := newFakeClient(f, models.Credentials{AccessToken: "X", RefreshToken: "R"})

	calls := 0
	invoker := func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		calls++
		md, _ := metadata.FromOutgoingContext(ctx)
		require.Empty(t, md.Get(common.AccessTokenHeaderName))
		return status.Error(codes.Unauthenticated, "unauthorized")
	}

	for _, m := range []string{api.MethodLogin, api.MethodRegister, api.MethodRefresh, api.MethodPing} {
		err := c.accessTokenInterceptor(context.Background(), m, nil, nil, nil, invoker)
		require.Error(t, err)
	}
	require.Equal(t, 4, calls)
	require.Zero(t, f.refreshCalls)
}

func TestInterceptor_FailedRefreshReturnsOriginalErrorAndForgets(t *testing.T) {
	f := &fakeAPI{refreshErr: status.Error(codes.Unauthenticated, "invalid credential")}
	c := newFakeClient(f, models.Credentials{AccessToken: "A1", RefreshToken: "R1"})

	calls := 0
	invoker := func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		calls++
		return status.Error(codes.Unauthenticated, "unauthorized")
	}

	err := c.accessTokenInterceptor(context.Background(), api.MethodGetUser, nil, nil, nil, invoker)
	require.Equal(t, codes.Unauthenticated, status.Code(err))
	require.Equal(t, 1, calls)
	require.True(t, c.Credentials().Empty())
}

func TestInterceptor_ConcurrentCallersRenewOnce(t *testing.T) {
	f := &fakeAPI{
		refreshResp:   &api.SessionResponse{AccessToken: "A2"},
		refreshHeader: refreshHeader("R2", time.Now().Add(time.Hour)),
	}
	c := newFakeClient(f, models.Credentials{AccessToken: "A1", RefreshToken: "R1"})

	invoker := func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		md, _ := metadata.FromOutgoingContext(ctx)
		if md.Get(common.AccessTokenHeaderName)[0] == "A1" {
			return status.Error(codes.Unauthenticated, "unauthorized")
		}
		return nil
	}

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = c.accessTokenInterceptor(context.Background(), api.MethodGetUser, nil, nil, nil, invoker)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	require.Equal(t, 1, f.refreshCalls)
}

/*************
 * Refresh tests
 *************/

func TestRefresh_NotLoggedIn(t *testing.T) {
	c := newFakeClient(&fakeAPI{}, models.Credentials{})
	require.ErrorIs(t, c.Refresh(context.Background()), ErrNotLoggedIn)
}

func TestRefresh_ExpiredLocallySkipsServer(t *testing.T) {
	f := &fakeAPI{}
	c := newFakeClient(f, models.Credentials{AccessToken: "A", RefreshToken: "R", RefreshExpiresAt: time.Now().Add(-time.Minute)})

	require.ErrorIs(t, c.Refresh(context.Background()), ErrUnauthorized)
	require.Zero(t, f.refreshCalls)
	require.True(t, c.Credentials().Empty())
}

func TestRefresh_UnavailableKeepsCredentials(t *testing.T) {
	f := &fakeAPI{refreshErr: status.Error(codes.Unavailable, "down")}
	creds := models.Credentials{AccessToken: "A", RefreshToken: "R"}
	c := newFakeClient(f, creds)

	require.ErrorIs(t, c.Refresh(context.Background()), ErrUnavailable)
	require.Equal(t, creds, c.Credentials())
}

/*************
 * mapError tests
 *************/

func TestMapError(t *testing.T) {
	require.NoError(t, mapError(nil))
	require.Equal(t, ErrUnauthorized, mapError(status.Error(codes.Unauthenticated, "x")))
	require.Equal(t, ErrForbidden, mapError(status.Error(codes.PermissionDenied, "x")))
	require.Equal(t, ErrNotFound, mapError(status.Error(codes.NotFound, "x")))
	require.Equal(t, ErrAlreadyExists, mapError(status.Error(codes.AlreadyExists, "x")))
	require.Equal(t, ErrUnavailable, mapError(status.Error(codes.Unavailable, "x")))
	require.Equal(t, ErrUnavailable, mapError(status.Error(codes.DeadlineExceeded, "x")))

	err := mapError(status.Error(codes.InvalidArgument, "email is required"))
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorContains(t, err, "email is required")

	e := errors.New("plain")
	require.ErrorContains(t, mapError(e), "rpc error:")
}

/*************
 * Login / Logout / Ping tests
 *************/

func TestLogin_SetsTokens(t *testing.T) {
	f := &fakeAPI{
		loginResp:   &api.SessionResponse{AccessToken: "A", User: api.User{ID: "u1", Email: "a@b.c"}},
		loginHeader: refreshHeader("R", time.Now().Add(time.Hour)),
	}
	c := newFakeClient(f, models.Credentials{})

	u, err := c.Login(context.Background(), "a@b.c", []byte("pw"))
	require.NoError(t, err)
	require.Equal(t, "u1", u.ID)
	require.Equal(t, "pw", f.lastLoginReq.Password)
	require.Equal(t, "A", c.Credentials().AccessToken)
	require.Equal(t, "R", c.Credentials().RefreshToken)
}

func TestLogin_MapsError(t *testing.T) {
	f := &fakeAPI{loginErr: status.Error(codes.Unauthenticated, "invalid credential")}
	c := newFakeClient(f, models.Credentials{})

	_, err := c.Login(context.Background(), "a@b.c", []byte("pw"))
	require.ErrorIs(t, err, ErrUnauthorized)
	require.True(t, c.Credentials().Empty())
}

func TestRegister_MapsError(t *testing.T) {
	f := &fakeAPI{registerErr: status.Error(codes.AlreadyExists, "conflict")}
	c := newFakeClient(f, models.Credentials{})

	_, err := c.Register(context.Background(), "n", "a@b.c", []byte("pw"))
	require.ErrorIs(t, err, ErrAlreadyExists)
}

func TestLogout_ClearsEvenOnError(t *testing.T) {
	f := &fakeAPI{logoutErr: status.Error(codes.Unavailable, "down")}
	c := newFakeClient(f, models.Credentials{AccessToken: "A", RefreshToken: "R"})

	require.ErrorIs(t, c.Logout(context.Background()), ErrUnavailable)
	require.True(t, c.Credentials().Empty())
}

func TestLogout_NotLoggedIn(t *testing.T) {
	c := newFakeClient(&fakeAPI{}, models.Credentials{})
	require.ErrorIs(t, c.Logout(context.Background()), ErrNotLoggedIn)
}

func TestWhoAmI_SendsEmptyID(t *testing.T) {
	f := &fakeAPI{}
	c := newFakeClient(f, models.Credentials{AccessToken: "A"})

	_, err := c.WhoAmI(context.Background())
	require.NoError(t, err)
	require.Equal(t, "", f.lastGetUserReq.ID)
}

func TestPing_OK(t *testing.T) {
	c := newFakeClient(&fakeAPI{pingResp: &api.PingResponse{Status: "OK"}}, models.Credentials{})
	require.NoError(t, c.Ping(context.Background()))
}

func TestPing_NotOK_ReturnsUnavailable(t *testing.T) {
	c := newFakeClient(&fakeAPI{pingResp: &api.PingResponse{Status: "DEGRADED"}}, models.Credentials{})
	require.ErrorIs(t, c.Ping(context.Background()), ErrUnavailable)
}

func TestPing_MapsRPCError(t *testing.T) {
	c := newFakeClient(&fakeAPI{pingErr: status.Error(codes.Unavailable, "down")}, models.Credentials{})
	require.ErrorIs(t, c.Ping(context.Background()), ErrUnavailable)
}
