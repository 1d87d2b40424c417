// Package session implements the stateless session layer: signed tokens
// bound to a member id, verified on every authenticated request, and
// invalidated through a server-side revocation denylist.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/yhkim-dev/member-portal/internal/common/clock"
	commoncrypto "github.com/yhkim-dev/member-portal/internal/common/crypto"
	commonerrors "github.com/yhkim-dev/member-portal/internal/common/errors"
	"github.com/yhkim-dev/member-portal/internal/common/logger"
	"github.com/yhkim-dev/member-portal/internal/observability/metrics"
	"github.com/yhkim-dev/member-portal/internal/session/repository"
)

var ErrInvalidSession = commonerrors.ErrInvalidToken

type Claims struct {
	MemberID  string
	JTI       string
	ExpiresAt time.Time
}

type Service struct {
	secret  []byte
	ttl     time.Duration
	revoked repository.RevokedSessionRepository
	idGen   commoncrypto.IDGenerator
	clock   clock.Clock
	log     *logger.Logger
}

type ServiceDeps struct {
	Revoked repository.RevokedSessionRepository
	IDGen   commoncrypto.IDGenerator
	Clock   clock.Clock
	Log     *logger.Logger
}

func NewService(deps ServiceDeps, secret string, ttl time.Duration) *Service {
	return &Service{
		secret:  []byte(secret),
		ttl:     ttl,
		revoked: deps.Revoked,
		idGen:   deps.IDGen,
		clock:   deps.Clock,
		log:     deps.Log,
	}
}

// Issue signs a new session token carrying the member id as its subject.
// The token never carries password material.
func (s *Service) Issue(ctx context.Context, memberID string) (string, time.Time, error) {
	jti, err := s.idGen.NewID()
	if err != nil {
		return "", time.Time{}, err
	}

	now := s.clock.Now()
	expiresAt := now.Add(s.ttl)

	claims := jwt.MapClaims{
		"sub": memberID,
		"jti": jti,
		"exp": expiresAt.Unix(),
		"iat": now.Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := t.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	metrics.SessionsIssued.Inc()
	return tokenString, expiresAt, nil
}

// Verify checks the signature and expiry, then consults the denylist.
func (s *Service) Verify(ctx context.Context, tokenString string) (Claims, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return Claims{}, ErrInvalidSession.WithCause(err)
	}

	revoked, err := s.revoked.IsRevoked(ctx, claims.JTI)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"action": "session_revocation_check_failed",
		}).Errorf("revocation check failed: %v", err)
		return Claims{}, commonerrors.ErrInternalError.WithCause(err)
	}
	if revoked {
		return Claims{}, ErrInvalidSession
	}

	return claims, nil
}

// Invalidate stores the token's jti until its natural expiry. Tokens that do
// not parse are already unusable, so invalidation is a no-op for them.
func (s *Service) Invalidate(ctx context.Context, tokenString string) error {
	claims, err := s.parse(tokenString)
	if err != nil {
		return nil
	}

	if err := s.revoked.Revoke(ctx, claims.JTI, claims.MemberID, claims.ExpiresAt); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"member_id": claims.MemberID,
			"action":    "session_revoke_failed",
		}).Errorf("session revoke failed: %v", err)
		return commonerrors.ErrInternalError.WithCause(err)
	}

	metrics.SessionsRevoked.Inc()
	s.log.WithFields(ctx, logger.Fields{
		"member_id": claims.MemberID,
		"action":    "session_revoked",
	}).Info("session revoked")

	return nil
}

func (s *Service) parse(tokenString string) (Claims, error) {
	parsed, err := jwt.Parse(
		tokenString,
		func(token *jwt.Token) (any, error) {
			if token.Method != jwt.SigningMethodHS256 {
				return nil, errors.New("unexpected signing method")
			}
			return s.secret, nil
		},
		jwt.WithTimeFunc(s.clock.Now),
	)
	if err != nil || !parsed.Valid {
		if err == nil {
			err = errors.New("token is not valid")
		}
		return Claims{}, err
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, errors.New("invalid claims type")
	}

	sub, _ := mapClaims["sub"].(string)
	jti, _ := mapClaims["jti"].(string)
	if sub == "" || jti == "" {
		return Claims{}, errors.New("missing sub or jti claims")
	}

	exp, err := mapClaims.GetExpirationTime()
	if err != nil || exp == nil {
		return Claims{}, errors.New("missing exp claim")
	}

	return Claims{
		MemberID:  sub,
		JTI:       jti,
		ExpiresAt: exp.Time,
	}, nil
}
