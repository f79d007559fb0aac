package grpc

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	pb "github.com/dmitrijs2005/gophauth/internal/proto"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// helper to build server
func newTestServer(secret string) *GRPCServer {
	return NewGRPCServer("", nopLogger{}, &fakeAuth{}, auth.NewJWTIssuer([]byte(secret), "test", time.Hour))
}

func TestInterceptor_PublicMethod_AllowsWithoutToken(t *testing.T) {
	s := newTestServer("secret")

	ctx := context.Background()
	info := &grpc.UnaryServerInfo{FullMethod: pb.AuthService_Login_FullMethodName}
	handlerCalled := false

	h := func(ctx context.Context, req interface{}) (interface{}, error) {
		handlerCalled = true
		return "ok", nil
	}

	resp, err := s.accessTokenInterceptor(ctx, nil, info, h)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !handlerCalled {
		t.Fatal("handler was not called")
	}
	if resp != "ok" {
		t.Fatalf("unexpected handler resp: %v", resp)
	}
}

func TestInterceptor_Me_MissingToken(t *testing.T) {
	s := newTestServer("secret")

	ctx := context.Background()
	info := &grpc.UnaryServerInfo{FullMethod: pb.AuthService_Me_FullMethodName}

	h := func(ctx context.Context, req interface{}) (interface{}, error) {
		t.Fatal("handler should not be called when token missing")
		return nil, nil
	}

	_, err := s.accessTokenInterceptor(ctx, nil, info, h)
	if err == nil {
		t.Fatal("expected error")
	}
	if status.Code(err) != codes.Unauthenticated {
		t.Fatalf("expected Unauthenticated, got %v", status.Code(err))
	}
	if status.Convert(err).Message() != "missing token" {
		t.Fatalf("expected 'missing token', got %q", status.Convert(err).Message())
	}
}

func TestInterceptor_Me_InvalidToken(t *testing.T) {
	s := newTestServer("secret")

	md := metadata.New(map[string]string{
		common.AccessTokenHeaderName: "not-a-valid-jwt",
	})
	ctx := metadata.NewIncomingContext(context.Background(), md)
	info := &grpc.UnaryServerInfo{FullMethod: pb.AuthService_Me_FullMethodName}

	h := func(ctx context.Context, req interface{}) (interface{}, error) {
		t.Fatal("handler should not be called for invalid token")
		return nil, nil
	}

	_, err := s.accessTokenInterceptor(ctx, nil, info, h)
	if err == nil {
		t.Fatal("expected error")
	}
	if status.Code(err) != codes.Unauthenticated {
		t.Fatalf("expected Unauthenticated, got %v", status.Code(err))
	}
}

func TestInterceptor_Me_TokenFromOtherSecret(t *testing.T) {
	s := newTestServer("secret")

	token, err := auth.NewJWTIssuer([]byte("other"), "test", time.Hour).Issue(auth.Claims{UserID: "user-123"})
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(common.AccessTokenHeaderName, token))
	info := &grpc.UnaryServerInfo{FullMethod: pb.AuthService_Me_FullMethodName}

	_, err = s.accessTokenInterceptor(ctx, nil, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		t.Fatal("handler should not be called for forged token")
		return nil, nil
	})
	if status.Code(err) != codes.Unauthenticated {
		t.Fatalf("expected Unauthenticated, got %v", status.Code(err))
	}
}

func TestInterceptor_Me_ValidToken_SetsUserID(t *testing.T) {
	secret := "super-secret"
	s := newTestServer(secret)

	userID := "user-123"
	token, err := auth.NewJWTIssuer([]byte(secret), "test", time.Hour).Issue(auth.Claims{UserID: userID})
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	md := metadata.New(map[string]string{
		common.AccessTokenHeaderName: token,
	})
	ctx := metadata.NewIncomingContext(context.Background(), md)
	info := &grpc.UnaryServerInfo{FullMethod: pb.AuthService_Me_FullMethodName}

	var gotUserID, gotToken any
	h := func(ctx context.Context, req interface{}) (interface{}, error) {
		gotUserID = ctx.Value(UserIDKey)
		gotToken = ctx.Value(accessTokenKey)
		return "ok", nil
	}

	resp, err := s.accessTokenInterceptor(ctx, nil, info, h)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp != "ok" {
		t.Fatalf("unexpected handler resp: %v", resp)
	}
	if gotUserID != userID {
		t.Fatalf("user id not propagated in context: got %v want %v", gotUserID, userID)
	}
	if gotToken != token {
		t.Fatalf("access token not propagated in context")
	}
}

func TestLoggingInterceptor_PassesThrough(t *testing.T) {
	s := newTestServer("secret")
	info := &grpc.UnaryServerInfo{FullMethod: pb.AuthService_Login_FullMethodName}
	want := status.Error(codes.Unauthenticated, "nope")

	resp, err := s.loggingInterceptor(context.Background(), nil, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		return "partial", want
	})
	if err != want {
		t.Fatalf("error not passed through: %v", err)
	}
	if resp != "partial" {
		t.Fatalf("response not passed through: %v", resp)
	}
}
