package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "sessionkeeper.v1.SessionKeeper"

const (
	MethodRegister   = "/" + ServiceName + "/Register"
	MethodLogin      = "/" + ServiceName + "/Login"
	MethodRefresh    = "/" + ServiceName + "/Refresh"
	MethodLogout     = "/" + ServiceName + "/Logout"
	MethodGetUser    = "/" + ServiceName + "/GetUser"
	MethodCreateUser = "/" + ServiceName + "/CreateUser"
	MethodUpdateUser = "/" + ServiceName + "/UpdateUser"
	MethodDeleteUser = "/" + ServiceName + "/DeleteUser"
	MethodPing       = "/" + ServiceName + "/Ping"
)

type SessionKeeperServer interface {
	Register(context.Context, *RegisterRequest) (*UserResponse, error)
	Login(context.Context, *LoginRequest) (*SessionResponse, error)
	Refresh(context.Context, *Empty) (*SessionResponse, error)
	Logout(context.Context, *Empty) (*Empty, error)
	GetUser(context.Context, *GetUserRequest) (*UserResponse, error)
	CreateUser(context.Context, *CreateUserRequest) (*UserResponse, error)
	UpdateUser(context.Context, *UpdateUserRequest) (*UserResponse, error)
	DeleteUser(context.Context, *DeleteUserRequest) (*Empty, error)
	Ping(context.Context, *Empty) (*PingResponse, error)
}

// UnimplementedSessionKeeperServer answers every method with Unimplemented.
type UnimplementedSessionKeeperServer struct{}

func (UnimplementedSessionKeeperServer) Register(context.Context, *RegisterRequest) (*UserResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Register not implemented")
}
func (UnimplementedSessionKeeperServer) Login(context.Context, *LoginRequest) (*SessionResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Login not implemented")
}
func (UnimplementedSessionKeeperServer) Refresh(context.Context, *Empty) (*SessionResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Refresh not implemented")
}
func (UnimplementedSessionKeeperServer) Logout(context.Context, *Empty) (*Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method Logout not implemented")
}
func (UnimplementedSessionKeeperServer) GetUser(context.Context, *GetUserRequest) (*UserResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetUser not implemented")
}
func (UnimplementedSessionKeeperServer) CreateUser(context.Context, *CreateUserRequest) (*UserResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CreateUser not implemented")
}
func (UnimplementedSessionKeeperServer) UpdateUser(context.Context, *UpdateUserRequest) (*UserResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method UpdateUser not implemented")
}
func (UnimplementedSessionKeeperServer) DeleteUser(context.Context, *DeleteUserRequest) (*Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method DeleteUser not implemented")
}
func (UnimplementedSessionKeeperServer) Ping(context.Context, *Empty) (*PingResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Ping not implemented")
}

func RegisterSessionKeeperServer(s grpc.ServiceRegistrar, srv SessionKeeperServer) {
	s.RegisterService(&SessionKeeperServiceDesc, srv)
}

// unaryHandler adapts a typed method to the grpc.MethodDesc handler shape.
func unaryHandler[Req any, Resp any](fullMethod string, call func(SessionKeeperServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(SessionKeeperServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(SessionKeeperServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var SessionKeeperServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SessionKeeperServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Register", Handler: unaryHandler(MethodRegister, SessionKeeperServer.Register)},
		{MethodName: "Login", Handler: unaryHandler(MethodLogin, SessionKeeperServer.Login)},
		{MethodName: "Refresh", Handler: unaryHandler(MethodRefresh, SessionKeeperServer.Refresh)},
		{MethodName: "Logout", Handler: unaryHandler(MethodLogout, SessionKeeperServer.Logout)},
		{MethodName: "GetUser", Handler: unaryHandler(MethodGetUser, SessionKeeperServer.GetUser)},
		{MethodName: "CreateUser", Handler: unaryHandler(MethodCreateUser, SessionKeeperServer.CreateUser)},
		{MethodName: "UpdateUser", Handler: unaryHandler(MethodUpdateUser, SessionKeeperServer.UpdateUser)},
		{MethodName: "DeleteUser", Handler: unaryHandler(MethodDeleteUser, SessionKeeperServer.DeleteUser)},
		{MethodName: "Ping", Handler: unaryHandler(MethodPing, SessionKeeperServer.Ping)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "sessionkeeper/v1/sessionkeeper",
}

type SessionKeeperClient interface {
	Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*UserResponse, error)
	Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*SessionResponse, error)
	Refresh(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*SessionResponse, error)
	Logout(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*Empty, error)
	GetUser(ctx context.Context, in *GetUserRequest, opts ...grpc.CallOption) (*UserResponse, error)
	CreateUser(ctx context.Context, in *CreateUserRequest, opts ...grpc.CallOption) (*UserResponse, error)
	UpdateUser(ctx context.Context, in *UpdateUserRequest, opts ...grpc.CallOption) (*UserResponse, error)
	DeleteUser(ctx context.Context, in *DeleteUserRequest, opts ...grpc.CallOption) (*Empty, error)
	Ping(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*PingResponse, error)
}

type sessionKeeperClient struct {
	cc grpc.ClientConnInterface
}

// NewSessionKeeperClient returns a client whose calls always use Codec.
func NewSessionKeeperClient(cc grpc.ClientConnInterface) SessionKeeperClient {
	return &sessionKeeperClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.ForceCodec(Codec{})}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *sessionKeeperClient) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*UserResponse, error) {
	return invoke[UserResponse](ctx, c.cc, MethodRegister, in, opts)
}

func (c *sessionKeeperClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*SessionResponse, error) {
	return invoke[SessionResponse](ctx, c.cc, MethodLogin, in, opts)
}

func (c *sessionKeeperClient) Refresh(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*SessionResponse, error) {
	return invoke[SessionResponse](ctx, c.cc, MethodRefresh, in, opts)
}

func (c *sessionKeeperClient) Logout(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodLogout, in, opts)
}

func (c *sessionKeeperClient) GetUser(ctx context.Context, in *GetUserRequest, opts ...grpc.CallOption) (*UserResponse, error) {
	return invoke[UserResponse](ctx, c.cc, MethodGetUser, in, opts)
}

func (c *sessionKeeperClient) CreateUser(ctx context.Context, in *CreateUserRequest, opts ...grpc.CallOption) (*UserResponse, error) {
	return invoke[UserResponse](ctx, c.cc, MethodCreateUser, in, opts)
}

func (c *sessionKeeperClient) UpdateUser(ctx context.Context, in *UpdateUserRequest, opts ...grpc.CallOption) (*UserResponse, error) {
	return invoke[UserResponse](ctx, c.cc, MethodUpdateUser, in, opts)
}

func (c *sessionKeeperClient) DeleteUser(ctx context.Context, in *DeleteUserRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodDeleteUser, in, opts)
}

func (c *sessionKeeperClient) Ping(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingResponse](ctx, c.cc, MethodPing, in, opts)
}
