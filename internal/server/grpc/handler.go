package grpc

import (
	"context"
	"errors"
	"slices"
	"strconv"

	"github.com/dmitrijs2005/sessionkeeper/internal/api"
	"github.com/dmitrijs2005/sessionkeeper/internal/common"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/models"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/services"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// Permissions checked against the caller's current role.
const (
	permCreate = "users:create"
	permUpdate = "users:update"
	permDelete = "users:delete"
	permRead   = "users:read"
)

func (s *GRPCServer) Register(ctx context.Context, req *api.RegisterRequest) (*api.UserResponse, error) {

	s.logger.Info(ctx, "Registration request")

	u, err := s.identities.Register(ctx, models.Profile{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Age:      req.Age,
		Address:  req.Address,
	})
	if err != nil {
		s.logger.Warn(ctx, "registration failed", "error", err)
		return nil, toStatus(err)
	}

	s.logger.Info(ctx, "Registered", "user_id", u.ID)
	return &api.UserResponse{User: userToAPI(u)}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *api.LoginRequest) (*api.SessionResponse, error) {

	sess, err := s.sessions.Login(ctx, req.Email, req.Password)
	s.observeSession("login", err)
	if err != nil {
		return nil, toStatus(err)
	}

	if err := sendRefreshToken(ctx, sess); err != nil {
		return nil, err
	}
	return sessionToAPI(sess), nil
}

func (s *GRPCServer) Refresh(ctx context.Context, _ *api.Empty) (*api.SessionResponse, error) {

	presented := firstMetadata(ctx, common.RefreshTokenHeaderName)
	if presented == "" {
		s.observeSession("refresh", common.ErrorInvalidCredential)
		return nil, toStatus(common.ErrorInvalidCredential)
	}

	sess, err := s.sessions.RenewSession(ctx, presented)
	s.observeSession("refresh", err)
	if err != nil {
		if errors.Is(err, common.ErrorInvalidCredential) {
			// tells the client to drop its stored refresh token
			s.clearRefreshToken(ctx)
		}
		return nil, toStatus(err)
	}

	if err := sendRefreshToken(ctx, sess); err != nil {
		return nil, err
	}
	return sessionToAPI(sess), nil
}

func (s *GRPCServer) Logout(ctx context.Context, _ *api.Empty) (*api.Empty, error) {

	id, ok := identityFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing identity")
	}

	err := s.sessions.RevokeSession(ctx, id.UserID)
	s.observeSession("logout", err)
	if err != nil {
		return nil, toStatus(err)
	}

	s.clearRefreshToken(ctx)
	return &api.Empty{}, nil
}

func (s *GRPCServer) GetUser(ctx context.Context, req *api.GetUserRequest) (*api.UserResponse, error) {

	caller, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}

	if req.ID == "" || req.ID == caller.ID {
		return &api.UserResponse{User: userToAPI(caller)}, nil
	}
	if !slices.Contains(caller.Role.Permissions, permRead) {
		return nil, toStatus(common.ErrorForbidden)
	}

	u, err := s.identities.FindByID(ctx, req.ID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &api.UserResponse{User: userToAPI(u)}, nil
}

func (s *GRPCServer) CreateUser(ctx context.Context, req *api.CreateUserRequest) (*api.UserResponse, error) {

	caller, err := s.authorize(ctx, permCreate)
	if err != nil {
		return nil, err
	}

	u, err := s.identities.Create(ctx, models.Profile{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Age:      req.Age,
		Address:  req.Address,
		Role:     req.Role,
	}, caller.Actor())
	if err != nil {
		return nil, toStatus(err)
	}
	return &api.UserResponse{User: userToAPI(u)}, nil
}

func (s *GRPCServer) UpdateUser(ctx context.Context, req *api.UpdateUserRequest) (*api.UserResponse, error) {

	caller, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}

	// a user may edit their own profile but never their own role
	self := req.ID == caller.ID && req.Role == nil
	if !self && !slices.Contains(caller.Role.Permissions, permUpdate) {
		return nil, toStatus(common.ErrorForbidden)
	}

	u, err := s.identities.Update(ctx, models.UserPatch{
		ID:      req.ID,
		Name:    req.Name,
		Email:   req.Email,
		Age:     req.Age,
		Address: req.Address,
		Role:    req.Role,
	}, caller.Actor())
	if err != nil {
		return nil, toStatus(err)
	}
	return &api.UserResponse{User: userToAPI(u)}, nil
}

func (s *GRPCServer) DeleteUser(ctx context.Context, req *api.DeleteUserRequest) (*api.Empty, error) {

	caller, err := s.authorize(ctx, permDelete)
	if err != nil {
		return nil, err
	}

	if err := s.identities.SoftDelete(ctx, req.ID, caller.Actor()); err != nil {
		return nil, toStatus(err)
	}
	return &api.Empty{}, nil
}

func (s *GRPCServer) Ping(ctx context.Context, _ *api.Empty) (*api.PingResponse, error) {

	return &api.PingResponse{Status: "OK"}, nil

}

// caller loads the current record of the authenticated user, so that
// permissions reflect the stored role rather than the signed claims.
func (s *GRPCServer) caller(ctx context.Context) (*models.User, error) {
	id, ok := identityFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing identity")
	}
	u, err := s.identities.FindByID(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, toStatus(common.ErrorUnauthorized)
		}
		return nil, toStatus(err)
	}
	return u, nil
}

func (s *GRPCServer) authorize(ctx context.Context, perm string) (*models.User, error) {
	u, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(u.Role.Permissions, perm) {
		s.logger.Warn(ctx, "permission denied", "user_id", u.ID, "permission", perm)
		return nil, toStatus(common.ErrorForbidden)
	}
	return u, nil
}

func (s *GRPCServer) observeSession(event string, err error) {
	if s.metrics != nil {
		s.metrics.ObserveSession(event, err == nil)
	}
}

func sendRefreshToken(ctx context.Context, sess *services.Session) error {
	md := metadata.Pairs(
		common.RefreshTokenHeaderName, sess.RefreshToken,
		common.RefreshTokenExpiresHeaderName, strconv.FormatInt(sess.RefreshExpiresAt.Unix(), 10),
	)
	if err := grpc.SetHeader(ctx, md); err != nil {
		return status.Error(codes.Internal, "cannot set header")
	}
	return nil
}

func (s *GRPCServer) clearRefreshToken(ctx context.Context) {
	if err := grpc.SetHeader(ctx, metadata.Pairs(common.RefreshTokenHeaderName, "")); err != nil {
		s.logger.Warn(ctx, "cannot clear refresh token header", "error", err)
	}
}

func userToAPI(u *models.User) api.User {
	return api.User{
		ID:      u.ID,
		Name:    u.Name,
		Email:   u.Email,
		Age:     u.Age,
		Address: u.Address,
		Role:    api.RoleRef{ID: u.Role.ID, Name: u.Role.Name},
	}
}

func sessionToAPI(sess *services.Session) *api.SessionResponse {
	return &api.SessionResponse{
		AccessToken: sess.AccessToken,
		User: api.User{
			ID:    sess.User.ID,
			Name:  sess.User.Name,
			Email: sess.User.Email,
			Role:  api.RoleRef{ID: sess.User.Role.ID, Name: sess.User.Role.Name},
		},
	}
}
