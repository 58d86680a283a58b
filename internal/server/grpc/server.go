package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/sessionkeeper/internal/api"
	"github.com/dmitrijs2005/sessionkeeper/internal/logging"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/auth"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/models"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/services"
	"google.golang.org/grpc"
)

// Sessions is the credential side used by the handlers.
type Sessions interface {
	Login(ctx context.Context, username, password string) (*services.Session, error)
	RenewSession(ctx context.Context, presented string) (*services.Session, error)
	RevokeSession(ctx context.Context, userID string) error
	VerifyAccessToken(token string) (*auth.Claims, error)
}

// Identities is the record side used by the handlers.
type Identities interface {
	Register(ctx context.Context, p models.Profile) (*models.User, error)
	Create(ctx context.Context, p models.Profile, by models.Actor) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Update(ctx context.Context, patch models.UserPatch, by models.Actor) (*models.User, error)
	SoftDelete(ctx context.Context, id string, by models.Actor) error
}

type GRPCServer struct {
	api.UnimplementedSessionKeeperServer
	address    string
	sessions   Sessions
	identities Identities
	metrics    *metrics.Metrics
	logger     logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, ss Sessions, is Identities, m *metrics.Metrics) *GRPCServer {
	return &GRPCServer{
		address:    a,
		logger:     l.With("module", "grpc_server"),
		sessions:   ss,
		identities: is,
		metrics:    m,
	}
}

// NewServer builds the grpc.Server with the JSON codec, the interceptor
// chain and the service registered.
func (s *GRPCServer) NewServer() *grpc.Server {
	interceptors := []grpc.UnaryServerInterceptor{}
	if s.metrics != nil {
		interceptors = append(interceptors, s.metricsInterceptor)
	}
	interceptors = append(interceptors, s.accessTokenInterceptor)

	srv := grpc.NewServer(
		grpc.ForceServerCodec(api.Codec{}),
		grpc.ChainUnaryInterceptor(interceptors...),
	)
	api.RegisterSessionKeeperServer(srv, s)
	return srv
}

// Run listens on the configured address until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis and stops gracefully once ctx is done.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.NewServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gPRC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}
