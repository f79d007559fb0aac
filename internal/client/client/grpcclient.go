package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/gophauth/internal/client/models"
	"github.com/dmitrijs2005/gophauth/internal/common"
	pb "github.com/dmitrijs2005/gophauth/internal/proto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type GRPCClient struct {
	endpointURL string
	userAgent   string
	conn        *grpc.ClientConn
	client      pb.AuthServiceClient
	health      healthpb.HealthClient

	mu           sync.RWMutex
	accessToken  string
	refreshToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	if token != "" {
		md.Set(common.AccessTokenHeaderName, token)
	}

	return metadata.NewOutgoingContext(ctx, md)
}

// accessTokenInterceptor attaches the current access token and, when the
// server reports it expired, exchanges the refresh token for a new one and
// retries the call once.
func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {

	access, refresh := s.Tokens()

	err := invoker(withAccessToken(ctx, access), method, req, reply, cc, opts...)
	if err == nil || method == pb.AuthService_Refresh_FullMethodName {
		return err
	}

	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	if st.Code() != codes.Unauthenticated || st.Message() != common.ErrTokenExpired.Error() {
		return err
	}
	if refresh == "" {
		return err
	}

	resp, rerr := s.client.Refresh(ctx, &pb.RefreshRequest{RefreshToken: refresh})
	if rerr != nil {
		return rerr
	}

	s.mu.Lock()
	s.accessToken = resp.AccessToken
	s.mu.Unlock()

	return invoker(withAccessToken(ctx, resp.AccessToken), method, req, reply, cc, opts...)
}

// NewAuthClient dials endpointURL lazily; the first RPC establishes the
// connection.
func NewAuthClient(endpointURL, userAgent string) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, userAgent: userAgent}
	if err := c.InitGRPCClient(); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient() error {
	opts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor),
	}
	if s.userAgent != "" {
		opts = append(opts, grpc.WithUserAgent(s.userAgent))
	}

	conn, err := grpc.NewClient(s.endpointURL, opts...)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = pb.NewAuthServiceClient(conn)
	s.health = healthpb.NewHealthClient(conn)
	return nil
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *GRPCClient) SetTokens(accessToken, refreshToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = accessToken
	s.refreshToken = refreshToken
}

func (s *GRPCClient) Tokens() (string, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken, s.refreshToken
}

// Ping asks the standard health service whether the auth service is serving.
func (s *GRPCClient) Ping(ctx context.Context) error {

	resp, err := s.health.Check(ctx, &healthpb.HealthCheckRequest{Service: pb.ServiceName})
	if err != nil {
		return s.mapError(err)
	}

	if resp.Status != healthpb.HealthCheckResponse_SERVING {
		return ErrUnavailable
	}

	return nil
}

func (s *GRPCClient) Register(ctx context.Context, name, email, password string) (*models.Account, error) {

	resp, err := s.client.Register(ctx, &pb.RegisterRequest{Name: name, Email: email, Password: password})
	if err != nil {
		return nil, s.mapError(err)
	}

	return toAccount(resp.Account), nil
}

func (s *GRPCClient) VerifyEmail(ctx context.Context, token string) error {
	_, err := s.client.VerifyEmail(ctx, &pb.VerifyEmailRequest{Token: token})
	return s.mapError(err)
}

// Login stores the issued token pair on success.
func (s *GRPCClient) Login(ctx context.Context, email, password string) (*models.Account, error) {

	resp, err := s.client.Login(ctx, &pb.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, s.mapError(err)
	}

	s.SetTokens(resp.AccessToken, resp.RefreshToken)

	return toAccount(resp.Account), nil
}

// Refresh exchanges the stored refresh token for a new access token. The
// refresh token itself stays the same.
func (s *GRPCClient) Refresh(ctx context.Context) error {
	_, refresh := s.Tokens()
	if refresh == "" {
		return ErrNotLoggedIn
	}

	resp, err := s.client.Refresh(ctx, &pb.RefreshRequest{RefreshToken: refresh})
	if err != nil {
		return s.mapError(err)
	}

	s.mu.Lock()
	s.accessToken = resp.AccessToken
	s.mu.Unlock()
	return nil
}

// Logout revokes the stored refresh token and forgets both tokens. Tokens
// are dropped locally even when the server call fails.
func (s *GRPCClient) Logout(ctx context.Context) error {
	_, refresh := s.Tokens()
	defer s.SetTokens("", "")

	if refresh == "" {
		return nil
	}

	_, err := s.client.Logout(ctx, &pb.LogoutRequest{RefreshToken: refresh})
	return s.mapError(err)
}

func (s *GRPCClient) RequestPasswordReset(ctx context.Context, email string) error {
	_, err := s.client.RequestPasswordReset(ctx, &pb.RequestPasswordResetRequest{Email: email})
	return s.mapError(err)
}

func (s *GRPCClient) ResetPassword(ctx context.Context, token, newPassword string) error {
	_, err := s.client.ResetPassword(ctx, &pb.ResetPasswordRequest{Token: token, NewPassword: newPassword})
	return s.mapError(err)
}

func (s *GRPCClient) Me(ctx context.Context) (*models.Account, error) {
	access, refresh := s.Tokens()
	if access == "" && refresh == "" {
		return nil, ErrNotLoggedIn
	}

	resp, err := s.client.Me(ctx, &pb.MeRequest{})
	if err != nil {
		return nil, s.mapError(err)
	}

	return toAccount(resp.Account), nil
}

// mapError turns a gRPC status into one of the package errors, keeping the
// server's message where it is meant for the user.
func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("rpc error: %w", err)
	}
	switch st.Code() {
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.Unauthenticated:
		return fmt.Errorf("%w: %s", ErrUnauthorized, st.Message())
	case codes.PermissionDenied:
		return fmt.Errorf("%w: %s", ErrForbidden, st.Message())
	case codes.InvalidArgument, codes.AlreadyExists:
		return fmt.Errorf("%w: %s", ErrRejected, st.Message())
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}

func toAccount(a *pb.Account) *models.Account {
	if a == nil {
		return nil
	}
	return &models.Account{
		ID:         a.ID,
		Name:       a.Name,
		Email:      a.Email,
		Role:       a.Role,
		IsVerified: a.IsVerified,
		CreatedAt:  a.CreatedAt,
	}
}
