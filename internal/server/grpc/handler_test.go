package grpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/dmitrijs2005/gophauth/internal/common"
	pb "github.com/dmitrijs2005/gophauth/internal/proto"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

// ---- fakes ----

type fakeAuth struct {
	regResp *models.PublicAccount
	regErr  error

	verifyErr error

	loginResp   *models.LoginResult
	loginErr    error
	loginOrigin models.OriginInfo

	refreshResp *models.AccessTokenResult
	refreshErr  error

	logoutErr error
	resetReq  error
	resetErr  error

	meResp  *models.PublicAccount
	meErr   error
	meToken string
}

func (f *fakeAuth) Register(ctx context.Context, name, email, password string) (*models.PublicAccount, error) {
	return f.regResp, f.regErr
}
func (f *fakeAuth) VerifyEmail(ctx context.Context, token string) error { return f.verifyErr }
func (f *fakeAuth) Authenticate(ctx context.Context, email, password string, origin models.OriginInfo) (*models.LoginResult, error) {
	f.loginOrigin = origin
	return f.loginResp, f.loginErr
}
func (f *fakeAuth) Refresh(ctx context.Context, refreshToken string) (*models.AccessTokenResult, error) {
	return f.refreshResp, f.refreshErr
}
func (f *fakeAuth) Logout(ctx context.Context, refreshToken string) error { return f.logoutErr }
func (f *fakeAuth) RequestPasswordReset(ctx context.Context, email string) error {
	return f.resetReq
}
func (f *fakeAuth) ResetPassword(ctx context.Context, token, newPassword string) error {
	return f.resetErr
}
func (f *fakeAuth) Me(ctx context.Context, accessToken string) (*models.PublicAccount, error) {
	f.meToken = accessToken
	return f.meResp, f.meErr
}

func newHandlerServer(f *fakeAuth) *GRPCServer {
	s := newTestServer("secret")
	s.auth = f
	return s
}

func wantCode(t *testing.T, err error, code codes.Code) {
	t.Helper()
	if status.Code(err) != code {
		t.Fatalf("expected %v, got %v (%v)", code, status.Code(err), err)
	}
}

func TestToStatus(t *testing.T) {
	cases := []struct {
		err  error
		code codes.Code
	}{
		{common.ErrInvalidEmail, codes.InvalidArgument},
		{fmt.Errorf("%w: cannot be blank", common.ErrInvalidName), codes.InvalidArgument},
		{&auth.PolicyViolation{Rule: auth.RuleDigit, Message: "Password must contain at least one digit"}, codes.InvalidArgument},
		{common.ErrDuplicateEmail, codes.AlreadyExists},
		{common.ErrEmailNotVerified, codes.PermissionDenied},
		{common.ErrInvalidCredentials, codes.Unauthenticated},
		{common.ErrInvalidOrExpiredToken, codes.Unauthenticated},
		{common.ErrInvalidToken, codes.Unauthenticated},
		{common.ErrTokenExpired, codes.Unauthenticated},
		{common.ErrorUnauthorized, codes.Unauthenticated},
		{common.ErrorInternal, codes.Internal},
		{errors.New("pq: something leaked"), codes.Internal},
	}
	for _, tc := range cases {
		wantCode(t, toStatus(tc.err), tc.code)
	}

	if msg := status.Convert(toStatus(errors.New("pq: something leaked"))).Message(); msg != common.ErrorInternal.Error() {
		t.Fatalf("internal detail leaked: %q", msg)
	}
	pv := &auth.PolicyViolation{Rule: auth.RuleDigit, Message: "Password must contain at least one digit"}
	if msg := status.Convert(toStatus(pv)).Message(); msg != pv.Message {
		t.Fatalf("policy message not preserved: %q", msg)
	}
}

func TestRegister_Handler(t *testing.T) {
	ctx := context.Background()

	s := newHandlerServer(&fakeAuth{regResp: &models.PublicAccount{ID: "u1", Email: "a@b.co", Role: models.RoleUser}})
	resp, err := s.Register(ctx, &pb.RegisterRequest{Name: "A", Email: "a@b.co", Password: "Password123!"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Account == nil || resp.Account.ID != "u1" || resp.Account.Role != "user" {
		t.Fatalf("unexpected account: %+v", resp.Account)
	}
	if resp.Message == "" {
		t.Fatal("expected message")
	}

	_, err = s.Register(ctx, &pb.RegisterRequest{Email: "a@b.co", Password: "x"})
	wantCode(t, err, codes.InvalidArgument)

	s = newHandlerServer(&fakeAuth{regErr: common.ErrDuplicateEmail})
	_, err = s.Register(ctx, &pb.RegisterRequest{Name: "A", Email: "a@b.co", Password: "Password123!"})
	wantCode(t, err, codes.AlreadyExists)
}

func TestLogin_Handler(t *testing.T) {
	ctx := context.Background()

	f := &fakeAuth{loginResp: &models.LoginResult{
		AccessToken:  "access",
		RefreshToken: "refresh",
		Account:      &models.PublicAccount{ID: "u1"},
	}}
	s := newHandlerServer(f)

	ctx = peer.NewContext(ctx, &peer.Peer{Addr: &net.TCPAddr{IP: net.ParseIP("10.0.0.7"), Port: 5555}})
	ctx = metadata.NewIncomingContext(ctx, metadata.Pairs(common.UserAgentHeaderName, "cli/1.0"))

	resp, err := s.Login(ctx, &pb.LoginRequest{Email: "a@b.co", Password: "pw"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.AccessToken != "access" || resp.RefreshToken != "refresh" || resp.TokenType != "bearer" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if f.loginOrigin.IPAddress != "10.0.0.7" || f.loginOrigin.UserAgent != "cli/1.0" {
		t.Fatalf("unexpected origin: %+v", f.loginOrigin)
	}

	_, err = s.Login(ctx, &pb.LoginRequest{Email: "a@b.co"})
	wantCode(t, err, codes.InvalidArgument)

	f.loginErr = common.ErrEmailNotVerified
	_, err = s.Login(ctx, &pb.LoginRequest{Email: "a@b.co", Password: "pw"})
	wantCode(t, err, codes.PermissionDenied)

	f.loginErr = common.ErrInvalidCredentials
	_, err = s.Login(ctx, &pb.LoginRequest{Email: "a@b.co", Password: "pw"})
	wantCode(t, err, codes.Unauthenticated)
}

func TestTokenHandlers(t *testing.T) {
	ctx := context.Background()

	f := &fakeAuth{refreshResp: &models.AccessTokenResult{AccessToken: "new"}}
	s := newHandlerServer(f)

	r, err := s.Refresh(ctx, &pb.RefreshRequest{RefreshToken: "rt"})
	if err != nil || r.AccessToken != "new" {
		t.Fatalf("Refresh: %+v, %v", r, err)
	}
	f.refreshErr = common.ErrInvalidOrExpiredToken
	_, err = s.Refresh(ctx, &pb.RefreshRequest{RefreshToken: "rt"})
	wantCode(t, err, codes.Unauthenticated)

	if _, err := s.Logout(ctx, &pb.LogoutRequest{RefreshToken: "rt"}); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	f.logoutErr = common.ErrorInternal
	_, err = s.Logout(ctx, &pb.LogoutRequest{RefreshToken: "rt"})
	wantCode(t, err, codes.Internal)

	if _, err := s.VerifyEmail(ctx, &pb.VerifyEmailRequest{Token: "t"}); err != nil {
		t.Fatalf("VerifyEmail: %v", err)
	}
	f.verifyErr = common.ErrInvalidOrExpiredToken
	_, err = s.VerifyEmail(ctx, &pb.VerifyEmailRequest{Token: "t"})
	wantCode(t, err, codes.Unauthenticated)
}

func TestPasswordResetHandlers(t *testing.T) {
	ctx := context.Background()
	f := &fakeAuth{}
	s := newHandlerServer(f)

	if _, err := s.RequestPasswordReset(ctx, &pb.RequestPasswordResetRequest{Email: "a@b.co"}); err != nil {
		t.Fatalf("RequestPasswordReset: %v", err)
	}
	_, err := s.RequestPasswordReset(ctx, &pb.RequestPasswordResetRequest{})
	wantCode(t, err, codes.InvalidArgument)

	if _, err := s.ResetPassword(ctx, &pb.ResetPasswordRequest{Token: "t", NewPassword: "Password123!"}); err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}
	_, err = s.ResetPassword(ctx, &pb.ResetPasswordRequest{Token: "t"})
	wantCode(t, err, codes.InvalidArgument)

	f.resetErr = &auth.PolicyViolation{Rule: auth.RuleSpecial, Message: "special"}
	_, err = s.ResetPassword(ctx, &pb.ResetPasswordRequest{Token: "t", NewPassword: "Password123"})
	wantCode(t, err, codes.InvalidArgument)
}

func TestMe_Handler_UsesTokenFromContext(t *testing.T) {
	f := &fakeAuth{meResp: &models.PublicAccount{ID: "u1"}}
	s := newHandlerServer(f)

	ctx := context.WithValue(context.Background(), accessTokenKey, "tok")
	resp, err := s.Me(ctx, &pb.MeRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Account.ID != "u1" || f.meToken != "tok" {
		t.Fatalf("unexpected: %+v token=%q", resp.Account, f.meToken)
	}
}
