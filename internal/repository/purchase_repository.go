package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/course-marketplace/internal/domain"
)

// PurchaseRepository manages purchase facts. A (user, course) pair is stored once.
type PurchaseRepository interface {
	// Create records the purchase. When the pair already exists, purchase is
	// filled from the stored row and created is false.
	Create(ctx context.Context, purchase *domain.Purchase) (created bool, err error)
	ListByUser(ctx context.Context, userID string) ([]domain.Purchase, error)
	// ListCoursesByUser resolves purchases against the catalog; deleted courses are skipped.
	ListCoursesByUser(ctx context.Context, userID string) ([]domain.Course, error)
}

type purchaseRepository struct {
	pool *pgxpool.Pool
}

// NewPurchaseRepository constructs repository.
func NewPurchaseRepository(pool *pgxpool.Pool) PurchaseRepository {
	return &purchaseRepository{pool: pool}
}

func (r *purchaseRepository) Create(ctx context.Context, purchase *domain.Purchase) (bool, error) {
	const insert = `
        INSERT INTO purchases (id, user_id, course_id)
        VALUES ($1,$2,$3)
        ON CONFLICT (user_id, course_id) DO NOTHING
        RETURNING created_at`
	err := r.pool.QueryRow(ctx, insert,
		purchase.ID,
		purchase.UserID,
		purchase.CourseID,
	).Scan(&purchase.CreatedAt)
	if err == nil {
		return true, nil
	}
	if isForeignKeyViolation(err) {
		return false, ErrUnknownPrincipal
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return false, err
	}

	const existing = `
        SELECT id, created_at FROM purchases
        WHERE user_id=$1 AND course_id=$2`
	if err := r.pool.QueryRow(ctx, existing, purchase.UserID, purchase.CourseID).
		Scan(&purchase.ID, &purchase.CreatedAt); err != nil {
		return false, mapNoRows(err)
	}
	return false, nil
}

func (r *purchaseRepository) ListByUser(ctx context.Context, userID string) ([]domain.Purchase, error) {
	const query = `
        SELECT id, user_id, course_id, created_at
        FROM purchases WHERE user_id=$1
        ORDER BY created_at, id`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Purchase{}
	for rows.Next() {
		var p domain.Purchase
		if err := rows.Scan(&p.ID, &p.UserID, &p.CourseID, &p.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (r *purchaseRepository) ListCoursesByUser(ctx context.Context, userID string) ([]domain.Course, error) {
	const query = `
        SELECT c.id, c.title, c.description, c.price, c.image_url, c.creator_id, c.created_at, c.updated_at
        FROM purchases p
        JOIN courses c ON c.id = p.course_id
        WHERE p.user_id=$1
        ORDER BY p.created_at, p.id`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	return collectCourses(rows)
}
