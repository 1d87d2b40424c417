package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	pgx "github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	commonerrors "github.com/yhkim-dev/member-portal/internal/common/errors"
	"github.com/yhkim-dev/member-portal/internal/member/domain"
)

var ErrMemberNotFound = commonerrors.ErrMemberNotFound

type Repository interface {
	Create(ctx context.Context, member domain.Member) error
	FindByID(ctx context.Context, id domain.ID) (domain.Member, error)
	FindByEmail(ctx context.Context, email string) (domain.Member, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, member domain.Member) error
	List(ctx context.Context, offset, limit int) ([]domain.Summary, error)
	Count(ctx context.Context) (int, error)
}

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) Create(ctx context.Context, member domain.Member) error {
	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO members (id, name, email, password_hash, address, postal_code, created_at, updated_at, created_by, updated_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		string(member.ID),
		member.Name,
		member.Email,
		nullable(member.PasswordHash),
		nullable(member.Address),
		nullable(member.PostalCode),
		member.CreatedAt,
		member.UpdatedAt,
		member.CreatedBy,
		member.UpdatedBy,
	)
	if err != nil {
		if dupErr := uniqueViolation(err); dupErr != nil {
			return dupErr
		}
		return fmt.Errorf("failed to create member: %w", err)
	}
	return nil
}

func (r *PgRepository) FindByID(ctx context.Context, id domain.ID) (domain.Member, error) {
	row := r.pool.QueryRow(
		ctx,
		`SELECT id, name, email, password_hash, address, postal_code, created_at, updated_at, created_by, updated_by
		 FROM members WHERE id = $1`,
		string(id),
	)
	return scanMember(row, "id")
}

func (r *PgRepository) FindByEmail(ctx context.Context, email string) (domain.Member, error) {
	row := r.pool.QueryRow(
		ctx,
		`SELECT id, name, email, password_hash, address, postal_code, created_at, updated_at, created_by, updated_by
		 FROM members WHERE email = $1`,
		email,
	)
	return scanMember(row, "email")
}

func (r *PgRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM members WHERE name = $1)`, name)
}

func (r *PgRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM members WHERE email = $1)`, email)
}

func (r *PgRepository) exists(ctx context.Context, query, value string) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, query, value).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check existence: %w", err)
	}
	return exists, nil
}

func (r *PgRepository) Update(ctx context.Context, member domain.Member) error {
	res, err := r.pool.Exec(
		ctx,
		`UPDATE members
		 SET name = $2, email = $3, password_hash = $4, address = $5, postal_code = $6, updated_at = $7, updated_by = $8
		 WHERE id = $1`,
		string(member.ID),
		member.Name,
		member.Email,
		nullable(member.PasswordHash),
		nullable(member.Address),
		nullable(member.PostalCode),
		member.UpdatedAt,
		member.UpdatedBy,
	)
	if err != nil {
		if dupErr := uniqueViolation(err); dupErr != nil {
			return dupErr
		}
		return fmt.Errorf("failed to update member: %w", err)
	}
	if res.RowsAffected() == 0 {
		return ErrMemberNotFound
	}
	return nil
}

func (r *PgRepository) List(ctx context.Context, offset, limit int) ([]domain.Summary, error) {
	rows, err := r.pool.Query(
		ctx,
		`SELECT id, name, email, created_at
		 FROM members
		 ORDER BY created_at ASC
		 LIMIT $1 OFFSET $2`,
		limit,
		offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []domain.Summary
	for rows.Next() {
		var m domain.Summary
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("rows iteration error: %w", rows.Err())
	}

	return members, nil
}

func (r *PgRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM members`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count members: %w", err)
	}
	return count, nil
}

func scanMember(row pgx.Row, key string) (domain.Member, error) {
	var (
		m          domain.Member
		hash       sql.NullString
		address    sql.NullString
		postalCode sql.NullString
		createdBy  sql.NullString
		updatedBy  sql.NullString
	)

	err := row.Scan(&m.ID, &m.Name, &m.Email, &hash, &address, &postalCode, &m.CreatedAt, &m.UpdatedAt, &createdBy, &updatedBy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Member{}, ErrMemberNotFound
		}
		return domain.Member{}, fmt.Errorf("failed to find member by %s: %w", key, err)
	}

	m.PasswordHash = hash.String
	m.Address = address.String
	m.PostalCode = postalCode.String
	m.CreatedBy = createdBy.String
	m.UpdatedBy = updatedBy.String
	return m, nil
}

// uniqueViolation maps a 23505 to the duplicate error of the violated
// constraint so a lost duplicate-check race still surfaces as a
// field-scoped conflict, never as an opaque storage error.
func uniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return nil
	}

	switch pgErr.ConstraintName {
	case "members_name_key":
		return commonerrors.ErrNameAlreadyExists
	case "members_email_key":
		return commonerrors.ErrEmailAlreadyExists
	default:
		return commonerrors.ErrEmailAlreadyExists
	}
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
