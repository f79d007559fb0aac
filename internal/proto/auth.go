// Package proto defines the messages, service descriptor and client stub of
// the auth gRPC API. Messages are plain structs carried by the JSON codec
// registered in codec.go, so clients must call with CallOption().
package proto

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "gophauth.AuthService"

const (
	AuthService_Register_FullMethodName             = "/gophauth.AuthService/Register"
	AuthService_VerifyEmail_FullMethodName          = "/gophauth.AuthService/VerifyEmail"
	AuthService_Login_FullMethodName                = "/gophauth.AuthService/Login"
	AuthService_Refresh_FullMethodName              = "/gophauth.AuthService/Refresh"
	AuthService_Logout_FullMethodName               = "/gophauth.AuthService/Logout"
	AuthService_RequestPasswordReset_FullMethodName = "/gophauth.AuthService/RequestPasswordReset"
	AuthService_ResetPassword_FullMethodName        = "/gophauth.AuthService/ResetPassword"
	AuthService_Me_FullMethodName                   = "/gophauth.AuthService/Me"
)

type Account struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	IsVerified bool      `json:"is_verified"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterResponse struct {
	Message string   `json:"message"`
	Account *Account `json:"user"`
}

type VerifyEmailRequest struct {
	Token string `json:"token"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	TokenType    string   `json:"token_type"`
	Account      *Account `json:"user"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type RefreshResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type RequestPasswordResetRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

type MeRequest struct{}

type MeResponse struct {
	Account *Account `json:"user"`
}

// MessageResponse is returned by calls that only acknowledge.
type MessageResponse struct {
	Message string `json:"message"`
}

// AuthServiceServer is the server API for the auth service.
type AuthServiceServer interface {
	Register(context.Context, *RegisterRequest) (*RegisterResponse, error)
	VerifyEmail(context.Context, *VerifyEmailRequest) (*MessageResponse, error)
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	Refresh(context.Context, *RefreshRequest) (*RefreshResponse, error)
	Logout(context.Context, *LogoutRequest) (*MessageResponse, error)
	RequestPasswordReset(context.Context, *RequestPasswordResetRequest) (*MessageResponse, error)
	ResetPassword(context.Context, *ResetPasswordRequest) (*MessageResponse, error)
	Me(context.Context, *MeRequest) (*MeResponse, error)
}

// UnimplementedAuthServiceServer answers every call with codes.Unimplemented.
type UnimplementedAuthServiceServer struct{}

func (UnimplementedAuthServiceServer) Register(context.Context, *RegisterRequest) (*RegisterResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Register not implemented")
}
func (UnimplementedAuthServiceServer) VerifyEmail(context.Context, *VerifyEmailRequest) (*MessageResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method VerifyEmail not implemented")
}
func (UnimplementedAuthServiceServer) Login(context.Context, *LoginRequest) (*LoginResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Login not implemented")
}
func (UnimplementedAuthServiceServer) Refresh(context.Context, *RefreshRequest) (*RefreshResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Refresh not implemented")
}
func (UnimplementedAuthServiceServer) Logout(context.Context, *LogoutRequest) (*MessageResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Logout not implemented")
}
func (UnimplementedAuthServiceServer) RequestPasswordReset(context.Context, *RequestPasswordResetRequest) (*MessageResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method RequestPasswordReset not implemented")
}
func (UnimplementedAuthServiceServer) ResetPassword(context.Context, *ResetPasswordRequest) (*MessageResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ResetPassword not implemented")
}
func (UnimplementedAuthServiceServer) Me(context.Context, *MeRequest) (*MeResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Me not implemented")
}

func RegisterAuthServiceServer(s grpc.ServiceRegistrar, srv AuthServiceServer) {
	s.RegisterService(&AuthService_ServiceDesc, srv)
}

// unaryHandler adapts a typed method to grpc.MethodDesc.
func unaryHandler[Req any, Resp any](fullMethod string, call func(AuthServiceServer, context.Context, *Req) (*Resp, error)) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(AuthServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(AuthServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var AuthService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AuthServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Register", Handler: unaryHandler(AuthService_Register_FullMethodName, AuthServiceServer.Register)},
		{MethodName: "VerifyEmail", Handler: unaryHandler(AuthService_VerifyEmail_FullMethodName, AuthServiceServer.VerifyEmail)},
		{MethodName: "Login", Handler: unaryHandler(AuthService_Login_FullMethodName, AuthServiceServer.Login)},
		{MethodName: "Refresh", Handler: unaryHandler(AuthService_Refresh_FullMethodName, AuthServiceServer.Refresh)},
		{MethodName: "Logout", Handler: unaryHandler(AuthService_Logout_FullMethodName, AuthServiceServer.Logout)},
		{MethodName: "RequestPasswordReset", Handler: unaryHandler(AuthService_RequestPasswordReset_FullMethodName, AuthServiceServer.RequestPasswordReset)},
		{MethodName: "ResetPassword", Handler: unaryHandler(AuthService_ResetPassword_FullMethodName, AuthServiceServer.ResetPassword)},
		{MethodName: "Me", Handler: unaryHandler(AuthService_Me_FullMethodName, AuthServiceServer.Me)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "gophauth/auth",
}

// AuthServiceClient is the client API for the auth service.
type AuthServiceClient interface {
	Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*RegisterResponse, error)
	VerifyEmail(ctx context.Context, in *VerifyEmailRequest, opts ...grpc.CallOption) (*MessageResponse, error)
	Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error)
	Refresh(ctx context.Context, in *RefreshRequest, opts ...grpc.CallOption) (*RefreshResponse, error)
	Logout(ctx context.Context, in *LogoutRequest, opts ...grpc.CallOption) (*MessageResponse, error)
	RequestPasswordReset(ctx context.Context, in *RequestPasswordResetRequest, opts ...grpc.CallOption) (*MessageResponse, error)
	ResetPassword(ctx context.Context, in *ResetPasswordRequest, opts ...grpc.CallOption) (*MessageResponse, error)
	Me(ctx context.Context, in *MeRequest, opts ...grpc.CallOption) (*MeResponse, error)
}

type authServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewAuthServiceClient(cc grpc.ClientConnInterface) AuthServiceClient {
	return &authServiceClient{cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{CallOption()}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *authServiceClient) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*RegisterResponse, error) {
	return invoke[RegisterResponse](ctx, c.cc, AuthService_Register_FullMethodName, in, opts)
}

func (c *authServiceClient) VerifyEmail(ctx context.Context, in *VerifyEmailRequest, opts ...grpc.CallOption) (*MessageResponse, error) {
	return invoke[MessageResponse](ctx, c.cc, AuthService_VerifyEmail_FullMethodName, in, opts)
}

func (c *authServiceClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	return invoke[LoginResponse](ctx, c.cc, AuthService_Login_FullMethodName, in, opts)
}

func (c *authServiceClient) Refresh(ctx context.Context, in *RefreshRequest, opts ...grpc.CallOption) (*RefreshResponse, error) {
	return invoke[RefreshResponse](ctx, c.cc, AuthService_Refresh_FullMethodName, in, opts)
}

func (c *authServiceClient) Logout(ctx context.Context, in *LogoutRequest, opts ...grpc.CallOption) (*MessageResponse, error) {
	return invoke[MessageResponse](ctx, c.cc, AuthService_Logout_FullMethodName, in, opts)
}

func (c *authServiceClient) RequestPasswordReset(ctx context.Context, in *RequestPasswordResetRequest, opts ...grpc.CallOption) (*MessageResponse, error) {
	return invoke[MessageResponse](ctx, c.cc, AuthService_RequestPasswordReset_FullMethodName, in, opts)
}

func (c *authServiceClient) ResetPassword(ctx context.Context, in *ResetPasswordRequest, opts ...grpc.CallOption) (*MessageResponse, error) {
	return invoke[MessageResponse](ctx, c.cc, AuthService_ResetPassword_FullMethodName, in, opts)
}

func (c *authServiceClient) Me(ctx context.Context, in *MeRequest, opts ...grpc.CallOption) (*MeResponse, error) {
	return invoke[MeResponse](ctx, c.cc, AuthService_Me_FullMethodName, in, opts)
}
