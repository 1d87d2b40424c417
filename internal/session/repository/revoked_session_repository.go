package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
)

type RevokedSessionRepository interface {
	Revoke(ctx context.Context, jti string, memberID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
	DeleteExpired(ctx context.Context) (int64, error)
}

type PgRevokedSessionRepository struct {
	pool *pgxpool.Pool
}

func NewPgRevokedSessionRepository(pool *pgxpool.Pool) *PgRevokedSessionRepository {
	return &PgRevokedSessionRepository{pool: pool}
}

func (r *PgRevokedSessionRepository) Revoke(ctx context.Context, jti string, memberID string, expiresAt time.Time) error {
	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO revoked_sessions (jti, member_id, expires_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (jti) DO NOTHING`,
		jti,
		memberID,
		expiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

func (r *PgRevokedSessionRepository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	row := r.pool.QueryRow(
		ctx,
		`SELECT EXISTS(
			SELECT 1 FROM revoked_sessions
			WHERE jti = $1 AND expires_at > NOW()
		)`,
		jti,
	)

	var revoked bool
	if err := row.Scan(&revoked); err != nil {
		return false, fmt.Errorf("failed to check revoked session: %w", err)
	}
	return revoked, nil
}

func (r *PgRevokedSessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := r.pool.Exec(
		ctx,
		`DELETE FROM revoked_sessions WHERE expires_at < NOW()`,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired revoked sessions: %w", err)
	}
	return res.RowsAffected(), nil
}
