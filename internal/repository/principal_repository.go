package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/course-marketplace/internal/domain"
)

// PrincipalRepository persists users and admins, one namespace per class.
type PrincipalRepository interface {
	Create(ctx context.Context, principal *domain.Principal) error
	GetByID(ctx context.Context, class domain.PrincipalClass, id string) (*domain.Principal, error)
	GetByEmail(ctx context.Context, class domain.PrincipalClass, email string) (*domain.Principal, error)
}

var principalTables = map[domain.PrincipalClass]string{
	domain.PrincipalUser:  "users",
	domain.PrincipalAdmin: "admins",
}

type principalRepository struct {
	pool *pgxpool.Pool
}

// NewPrincipalRepository returns a Postgres-backed implementation.
func NewPrincipalRepository(pool *pgxpool.Pool) PrincipalRepository {
	return &principalRepository{pool: pool}
}

func tableFor(class domain.PrincipalClass) (string, error) {
	table, ok := principalTables[class]
	if !ok {
		return "", fmt.Errorf("unknown principal class %q", class)
	}
	return table, nil
}

// Create inserts the principal. Email uniqueness is enforced by the table's
// unique constraint so concurrent signups cannot both succeed.
func (r *principalRepository) Create(ctx context.Context, principal *domain.Principal) error {
	table, err := tableFor(principal.Class)
	if err != nil {
		return err
	}
	query := `
        INSERT INTO ` + table + ` (id, email, password_hash, first_name, last_name)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING created_at`

	err = r.pool.QueryRow(ctx, query,
		principal.ID,
		principal.Email,
		principal.PasswordHash,
		principal.FirstName,
		principal.LastName,
	).Scan(&principal.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	return err
}

func (r *principalRepository) GetByID(ctx context.Context, class domain.PrincipalClass, id string) (*domain.Principal, error) {
	return r.getBy(ctx, class, "id", id)
}

func (r *principalRepository) GetByEmail(ctx context.Context, class domain.PrincipalClass, email string) (*domain.Principal, error) {
	return r.getBy(ctx, class, "email", email)
}

func (r *principalRepository) getBy(ctx context.Context, class domain.PrincipalClass, column, value string) (*domain.Principal, error) {
	table, err := tableFor(class)
	if err != nil {
		return nil, err
	}
	query := `
        SELECT id, email, password_hash, first_name, last_name, created_at
        FROM ` + table + ` WHERE ` + column + `=$1`

	principal := domain.Principal{Class: class}
	if err := r.pool.QueryRow(ctx, query, value).Scan(
		&principal.ID,
		&principal.Email,
		&principal.PasswordHash,
		&principal.FirstName,
		&principal.LastName,
		&principal.CreatedAt,
	); err != nil {
		return nil, mapNoRows(err)
	}
	return &principal, nil
}
