package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/memory"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/verificationtokens"
	"golang.org/x/crypto/bcrypt"
)

const (
	testName     = "Ann"
	testEmail    = "ann@example.com"
	testPassword = "Password123!"
)

type sentMail struct {
	email, name, token string
}

type fakeNotifier struct {
	mu            sync.Mutex
	verifications []sentMail
	resets        []sentMail
	err           error
}

func (f *fakeNotifier) SendVerification(_ context.Context, email, name, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verifications = append(f.verifications, sentMail{email, name, token})
	return f.err
}

func (f *fakeNotifier) SendPasswordReset(_ context.Context, email, name, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets = append(f.resets, sentMail{email, name, token})
	return f.err
}

func (f *fakeNotifier) lastVerification(t *testing.T) string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.verifications) == 0 {
		t.Fatalf("no verification email sent")
	}
	return f.verifications[len(f.verifications)-1].token
}

func (f *fakeNotifier) lastReset(t *testing.T) string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.resets) == 0 {
		t.Fatalf("no reset email sent")
	}
	return f.resets[len(f.resets)-1].token
}

// clock is a settable time source shared by the ledgers under test.
type clock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock() *clock {
	return &clock{t: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func testConfig() *config.Config {
	return &config.Config{
		EmailTokenValidityDuration:   24 * time.Hour,
		ResetTokenValidityDuration:   time.Hour,
		RefreshTokenValidityDuration: 720 * time.Hour,
	}
}

type harness struct {
	svc      *AuthService
	repos    *memory.Manager
	notifier *fakeNotifier
	metrics  *fakeRecorder
	clock    *clock
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	repos := memory.NewManager()
	n := &fakeNotifier{}
	rec := &fakeRecorder{}
	svc := NewAuthService(repos, Dependencies{
		Hasher:   auth.NewBcryptHasher(bcrypt.MinCost),
		Issuer:   auth.NewJWTIssuer([]byte("k"), "test", time.Hour),
		Notifier: n,
		Metrics:  rec,
	}, testConfig())

	c := newClock()
	svc.verifications.now = c.Now
	svc.sessions.now = c.Now

	return &harness{svc: svc, repos: repos, notifier: n, metrics: rec, clock: c}
}

// registerVerified registers the test account and verifies its email.
func (h *harness) registerVerified(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	if _, err := h.svc.Register(ctx, testName, testEmail, testPassword); err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if err := h.svc.VerifyEmail(ctx, h.notifier.lastVerification(t)); err != nil {
		t.Fatalf("VerifyEmail error: %v", err)
	}
}

type fakeRecorder struct {
	mu            sync.Mutex
	outcomes      map[string][]string
	notifyFailed  map[string]int
	tokensRevoked int
}

func (f *fakeRecorder) RecordOperation(op, outcome string, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.outcomes == nil {
		f.outcomes = map[string][]string{}
	}
	f.outcomes[op] = append(f.outcomes[op], outcome)
}

func (f *fakeRecorder) RecordNotificationFailure(kind string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.notifyFailed == nil {
		f.notifyFailed = map[string]int{}
	}
	f.notifyFailed[kind]++
}

func (f *fakeRecorder) RecordTokensRevoked(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokensRevoked += n
}

// stubManager is a memory manager whose repositories can be swapped for
// failing fakes.
type stubManager struct {
	*memory.Manager
	accounts      accounts.Repository
	verifications verificationtokens.Repository
	refresh       refreshtokens.Repository
}

func (m *stubManager) Accounts(db dbx.DBTX) accounts.Repository {
	if m.accounts != nil {
		return m.accounts
	}
	return m.Manager.Accounts(db)
}

func (m *stubManager) VerificationTokens(db dbx.DBTX) verificationtokens.Repository {
	if m.verifications != nil {
		return m.verifications
	}
	return m.Manager.VerificationTokens(db)
}

func (m *stubManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository {
	if m.refresh != nil {
		return m.refresh
	}
	return m.Manager.RefreshTokens(db)
}
