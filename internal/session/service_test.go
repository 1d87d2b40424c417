package session

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/yhkim-dev/member-portal/internal/common/clock"
	"github.com/yhkim-dev/member-portal/internal/common/logger"
)

type mockRevokedRepo struct {
	revokeFunc        func(ctx context.Context, jti, memberID string, expiresAt time.Time) error
	isRevokedFunc     func(ctx context.Context, jti string) (bool, error)
	deleteExpiredFunc func(ctx context.Context) (int64, error)
}

func (m *mockRevokedRepo) Revoke(ctx context.Context, jti, memberID string, expiresAt time.Time) error {
	if m.revokeFunc != nil {
		return m.revokeFunc(ctx, jti, memberID, expiresAt)
	}
	return nil
}

func (m *mockRevokedRepo) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if m.isRevokedFunc != nil {
		return m.isRevokedFunc(ctx, jti)
	}
	return false, nil
}

func (m *mockRevokedRepo) DeleteExpired(ctx context.Context) (int64, error) {
	if m.deleteExpiredFunc != nil {
		return m.deleteExpiredFunc(ctx)
	}
	return 0, nil
}

type sequentialIDGenerator struct {
	n int
}

func (g *sequentialIDGenerator) NewID() (string, error) {
	g.n++
	return fmt.Sprintf("jti-%d", g.n), nil
}

func setupSessionService(t *testing.T) (*Service, *mockRevokedRepo, *clock.MockClock) {
	t.Helper()

	revoked := &mockRevokedRepo{}
	clk := clock.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))

	log, _ := logger.New("", "test", "info")

	svc := NewService(ServiceDeps{
		Revoked: revoked,
		IDGen:   &sequentialIDGenerator{},
		Clock:   clk,
		Log:     log,
	}, "0123456789abcdef0123456789abcdef", time.Hour)

	return svc, revoked, clk
}

func TestSessionService_IssueVerifyRoundTrip(t *testing.T) {
	svc, _, clk := setupSessionService(t)

	token, expiresAt, err := svc.Issue(context.Background(), "member-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if !expiresAt.Equal(clk.Now().Add(time.Hour)) {
		t.Errorf("expected expiry at issue time + ttl, got %v", expiresAt)
	}

	claims, err := svc.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("expected valid session, got %v", err)
	}
	if claims.MemberID != "member-1" {
		t.Errorf("expected member id in claims, got %q", claims.MemberID)
	}
	if claims.JTI == "" {
		t.Error("expected a jti in claims")
	}
	if !claims.ExpiresAt.Equal(expiresAt) {
		t.Errorf("expected claims expiry %v, got %v", expiresAt, claims.ExpiresAt)
	}
}

func TestSessionService_VerifyRejectsExpired(t *testing.T) {
	svc, _, clk := setupSessionService(t)

	token, _, err := svc.Issue(context.Background(), "member-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	clk.Advance(2 * time.Hour)

	if _, err := svc.Verify(context.Background(), token); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession for expired token, got %v", err)
	}
}

func TestSessionService_VerifyRejectsTamperedSignature(t *testing.T) {
	svc, _, _ := setupSessionService(t)

	token, _, err := svc.Issue(context.Background(), "member-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	tampered := token[:len(token)-2] + "xx"
	if _, err := svc.Verify(context.Background(), tampered); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession for tampered token, got %v", err)
	}
}

func TestSessionService_VerifyRejectsGarbage(t *testing.T) {
	svc, _, _ := setupSessionService(t)

	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := svc.Verify(context.Background(), token); !errors.Is(err, ErrInvalidSession) {
			t.Errorf("token %q: expected ErrInvalidSession, got %v", token, err)
		}
	}
}

func TestSessionService_VerifyRejectsRevoked(t *testing.T) {
	svc, revoked, _ := setupSessionService(t)

	token, _, err := svc.Issue(context.Background(), "member-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	revoked.isRevokedFunc = func(ctx context.Context, jti string) (bool, error) {
		return true, nil
	}

	if _, err := svc.Verify(context.Background(), token); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession for revoked token, got %v", err)
	}
}

func TestSessionService_InvalidateStoresJTIUntilExpiry(t *testing.T) {
	svc, revoked, _ := setupSessionService(t)

	token, expiresAt, err := svc.Issue(context.Background(), "member-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	var gotJTI, gotMemberID string
	var gotExpiry time.Time
	revoked.revokeFunc = func(ctx context.Context, jti, memberID string, exp time.Time) error {
		gotJTI = jti
		gotMemberID = memberID
		gotExpiry = exp
		return nil
	}

	if err := svc.Invalidate(context.Background(), token); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if gotJTI == "" {
		t.Fatal("expected the token's jti to be denylisted")
	}
	if gotMemberID != "member-1" {
		t.Errorf("expected member id recorded, got %q", gotMemberID)
	}
	if !gotExpiry.Equal(expiresAt) {
		t.Errorf("expected denylist entry to expire at %v, got %v", expiresAt, gotExpiry)
	}
}

func TestSessionService_InvalidateIgnoresMalformedTokens(t *testing.T) {
	svc, revoked, _ := setupSessionService(t)

	revoked.revokeFunc = func(ctx context.Context, jti, memberID string, expiresAt time.Time) error {
		t.Error("malformed tokens must not reach the denylist")
		return nil
	}

	for _, token := range []string{"", "garbage", "a.b.c"} {
		if err := svc.Invalidate(context.Background(), token); err != nil {
			t.Errorf("token %q: expected nil, got %v", token, err)
		}
	}
}

func TestSessionService_InvalidateIgnoresExpiredTokens(t *testing.T) {
	svc, revoked, clk := setupSessionService(t)

	token, _, err := svc.Issue(context.Background(), "member-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	clk.Advance(2 * time.Hour)

	revoked.revokeFunc = func(ctx context.Context, jti, memberID string, expiresAt time.Time) error {
		t.Error("expired tokens must not reach the denylist")
		return nil
	}

	if err := svc.Invalidate(context.Background(), token); err != nil {
		t.Fatalf("expected nil for expired token, got %v", err)
	}
}

func TestSessionService_VerifyRejectsWrongSecret(t *testing.T) {
	svc, _, clk := setupSessionService(t)

	other := NewService(ServiceDeps{
		Revoked: &mockRevokedRepo{},
		IDGen:   &sequentialIDGenerator{},
		Clock:   clk,
		Log:     svc.log,
	}, "ffffffffffffffffffffffffffffffff", time.Hour)

	token, _, err := other.Issue(context.Background(), "member-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if _, err := svc.Verify(context.Background(), token); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession for foreign signature, got %v", err)
	}
}
