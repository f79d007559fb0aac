package grpc

import (
	"context"
	"errors"
	"net"

	"github.com/dmitrijs2005/gophauth/internal/common"
	pb "github.com/dmitrijs2005/gophauth/internal/proto"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

const tokenTypeBearer = "bearer"

func (s *GRPCServer) Register(ctx context.Context, req *pb.RegisterRequest) (*pb.RegisterResponse, error) {

	if req.Email == "" || req.Name == "" || req.Password == "" {
		return nil, status.Error(codes.InvalidArgument, "email, name and password are required")
	}

	account, err := s.auth.Register(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		return nil, toStatus(err)
	}

	return &pb.RegisterResponse{Message: "User registered successfully", Account: toAccount(account)}, nil

}

func (s *GRPCServer) VerifyEmail(ctx context.Context, req *pb.VerifyEmailRequest) (*pb.MessageResponse, error) {

	if err := s.auth.VerifyEmail(ctx, req.Token); err != nil {
		return nil, toStatus(err)
	}

	return &pb.MessageResponse{Message: "Email verified successfully"}, nil

}

func (s *GRPCServer) Login(ctx context.Context, req *pb.LoginRequest) (*pb.LoginResponse, error) {

	if req.Email == "" || req.Password == "" {
		return nil, status.Error(codes.InvalidArgument, "email and password are required")
	}

	result, err := s.auth.Authenticate(ctx, req.Email, req.Password, originFromContext(ctx))
	if err != nil {
		return nil, toStatus(err)
	}

	return &pb.LoginResponse{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		TokenType:    tokenTypeBearer,
		Account:      toAccount(result.Account),
	}, nil

}

func (s *GRPCServer) Refresh(ctx context.Context, req *pb.RefreshRequest) (*pb.RefreshResponse, error) {

	result, err := s.auth.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return nil, toStatus(err)
	}

	return &pb.RefreshResponse{AccessToken: result.AccessToken, TokenType: tokenTypeBearer}, nil

}

func (s *GRPCServer) Logout(ctx context.Context, req *pb.LogoutRequest) (*pb.MessageResponse, error) {

	if err := s.auth.Logout(ctx, req.RefreshToken); err != nil {
		return nil, toStatus(err)
	}

	return &pb.MessageResponse{Message: "Successfully logged out"}, nil

}

func (s *GRPCServer) RequestPasswordReset(ctx context.Context, req *pb.RequestPasswordResetRequest) (*pb.MessageResponse, error) {

	if req.Email == "" {
		return nil, status.Error(codes.InvalidArgument, "email is required")
	}

	if err := s.auth.RequestPasswordReset(ctx, req.Email); err != nil {
		return nil, toStatus(err)
	}

	return &pb.MessageResponse{Message: "If your email is registered, you will receive a password reset link"}, nil

}

func (s *GRPCServer) ResetPassword(ctx context.Context, req *pb.ResetPasswordRequest) (*pb.MessageResponse, error) {

	if req.NewPassword == "" {
		return nil, status.Error(codes.InvalidArgument, "new password is required")
	}

	if err := s.auth.ResetPassword(ctx, req.Token, req.NewPassword); err != nil {
		return nil, toStatus(err)
	}

	return &pb.MessageResponse{Message: "Password has been reset successfully"}, nil

}

func (s *GRPCServer) Me(ctx context.Context, _ *pb.MeRequest) (*pb.MeResponse, error) {

	token, _ := ctx.Value(accessTokenKey).(string)

	account, err := s.auth.Me(ctx, token)
	if err != nil {
		return nil, toStatus(err)
	}

	return &pb.MeResponse{Account: toAccount(account)}, nil

}

// toStatus maps service errors to gRPC status codes. Internal failures are
// reported without detail.
func toStatus(err error) error {
	switch {
	case errors.Is(err, common.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrDuplicateEmail):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, common.ErrEmailNotVerified):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, common.ErrInvalidCredentials),
		errors.Is(err, common.ErrInvalidOrExpiredToken),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrorUnauthorized):
		return status.Error(codes.Unauthenticated, err.Error())
	default:
		return status.Error(codes.Internal, common.ErrorInternal.Error())
	}
}

func toAccount(a *models.PublicAccount) *pb.Account {
	if a == nil {
		return nil
	}
	return &pb.Account{
		ID:         a.ID,
		Name:       a.Name,
		Email:      a.Email,
		Role:       string(a.Role),
		IsVerified: a.IsVerified,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}

// originFromContext reads the caller address from the peer and the client
// descriptor from metadata.
func originFromContext(ctx context.Context) models.OriginInfo {
	var origin models.OriginInfo

	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		addr := p.Addr.String()
		if host, _, err := net.SplitHostPort(addr); err == nil {
			addr = host
		}
		origin.IPAddress = addr
	}
	origin.UserAgent = metadataValue(ctx, common.UserAgentHeaderName)

	return origin
}
