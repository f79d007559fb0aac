// Package grpc exposes the auth service over gRPC.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	pb "github.com/dmitrijs2005/gophauth/internal/proto"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// AuthService is the business API the handlers call.
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*models.PublicAccount, error)
	VerifyEmail(ctx context.Context, token string) error
	Authenticate(ctx context.Context, email, password string, origin models.OriginInfo) (*models.LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (*models.AccessTokenResult, error)
	Logout(ctx context.Context, refreshToken string) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	Me(ctx context.Context, accessToken string) (*models.PublicAccount, error)
}

type GRPCServer struct {
	pb.UnimplementedAuthServiceServer
	address string
	auth    AuthService
	issuer  auth.AccessTokenIssuer
	logger  logging.Logger
	health  *health.Server
}

func NewGRPCServer(a string, l logging.Logger, svc AuthService, issuer auth.AccessTokenIssuer) *GRPCServer {
	return &GRPCServer{
		address: a,
		logger:  l.With("module", "grpc_server"),
		auth:    svc,
		issuer:  issuer,
		health:  health.NewServer(),
	}
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is done, then stops gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {

	// creates gRPC-server
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor))

	// registers services
	pb.RegisterAuthServiceServer(srv, s)
	healthpb.RegisterHealthServer(srv, s.health)
	s.health.SetServingStatus(pb.ServiceName, healthpb.HealthCheckResponse_SERVING)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}
