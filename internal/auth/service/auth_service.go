package service

import (
	"context"
	"errors"
	"time"

	commoncrypto "github.com/yhkim-dev/member-portal/internal/common/crypto"
	commonerrors "github.com/yhkim-dev/member-portal/internal/common/errors"
	"github.com/yhkim-dev/member-portal/internal/common/logger"
	memberrepo "github.com/yhkim-dev/member-portal/internal/member/repository"
	"github.com/yhkim-dev/member-portal/internal/observability/metrics"
	"github.com/yhkim-dev/member-portal/internal/session"
)

type AuthService struct {
	repo     memberrepo.Repository
	hasher   commoncrypto.PasswordHasher
	sessions *session.Service
	log      *logger.Logger
}

func NewAuthService(
	repo memberrepo.Repository,
	hasher commoncrypto.PasswordHasher,
	sessions *session.Service,
	log *logger.Logger,
) *AuthService {
	return &AuthService{
		repo:     repo,
		hasher:   hasher,
		sessions: sessions,
		log:      log,
	}
}

type LoginInput struct {
	Email    string
	Password string
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
}

// Login verifies the submitted credentials and issues a session bound to
// the member's id. Every failure path except storage faults returns
// ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (LoginResult, error) {
	s.log.WithFields(ctx, logger.Fields{
		"email":  input.Email,
		"action": "login_attempt",
	}).Info("login attempt")

	if input.Email == "" || input.Password == "" {
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		return LoginResult{}, ErrInvalidCredentials
	}

	member, err := s.repo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, memberrepo.ErrMemberNotFound) {
			s.log.WithFields(ctx, logger.Fields{
				"email":  input.Email,
				"action": "login_member_not_found",
			}).Warn("login failed: not found")
			metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
			return LoginResult{}, ErrInvalidCredentials
		}
		s.log.WithFields(ctx, logger.Fields{
			"email":  input.Email,
			"action": "login_fetch_failed",
		}).Errorf("login failed: %v", err)
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return LoginResult{}, commonerrors.ErrInternalError.WithCause(err)
	}

	if member.PasswordHash == "" {
		s.log.WithFields(ctx, logger.Fields{
			"email":  input.Email,
			"action": "login_no_password",
		}).Warn("login failed: account has no password")
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		return LoginResult{}, ErrInvalidCredentials
	}

	if err := s.hasher.Compare(member.PasswordHash, input.Password); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"email":  input.Email,
			"action": "login_invalid_password",
		}).Warn("login failed: invalid password")
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		return LoginResult{}, ErrInvalidCredentials
	}

	token, expiresAt, err := s.sessions.Issue(ctx, string(member.ID))
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"member_id": string(member.ID),
			"action":    "login_session_issue_failed",
		}).Errorf("login failed: session issue error: %v", err)
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return LoginResult{}, commonerrors.ErrInternalError.WithCause(err)
	}

	s.log.WithFields(ctx, logger.Fields{
		"member_id": string(member.ID),
		"action":    "login_success",
	}).Info("login success")
	metrics.LoginsTotal.WithLabelValues("success").Inc()

	return LoginResult{Token: token, ExpiresAt: expiresAt}, nil
}

// Logout invalidates the presented session token. Unknown or malformed
// tokens are ignored so logout stays idempotent.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.Invalidate(ctx, token)
}
