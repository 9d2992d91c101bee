package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/course-marketplace/internal/domain"
)

// CourseRepository manages course persistence. Mutations are scoped to the
// creating admin and return ErrNotFound when the course is missing or owned by
// someone else.
type CourseRepository interface {
	Create(ctx context.Context, course *domain.Course) error
	UpdateOwned(ctx context.Context, courseID, creatorID string, changes domain.CourseChanges) (*domain.Course, error)
	DeleteOwned(ctx context.Context, courseID, creatorID string) error
	ListByCreator(ctx context.Context, creatorID string) ([]domain.Course, error)
	ListAll(ctx context.Context) ([]domain.Course, error)
}

const courseColumns = `id, title, description, price, image_url, creator_id, created_at, updated_at`

type courseRepository struct {
	pool *pgxpool.Pool
}

// NewCourseRepository builds the repository.
func NewCourseRepository(pool *pgxpool.Pool) CourseRepository {
	return &courseRepository{pool: pool}
}

func (r *courseRepository) Create(ctx context.Context, course *domain.Course) error {
	const query = `
        INSERT INTO courses (id, title, description, price, image_url, creator_id)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		course.ID,
		course.Title,
		course.Description,
		course.Price,
		course.ImageURL,
		course.CreatorID,
	).Scan(&course.CreatedAt, &course.UpdatedAt)
	if isForeignKeyViolation(err) {
		return ErrUnknownPrincipal
	}
	return err
}

// UpdateOwned checks ownership and writes in one statement, so no other
// request can act between the check and the write.
func (r *courseRepository) UpdateOwned(ctx context.Context, courseID, creatorID string, changes domain.CourseChanges) (*domain.Course, error) {
	const query = `
        UPDATE courses SET
            title = COALESCE($3, title),
            description = COALESCE($4, description),
            price = COALESCE($5, price),
            image_url = COALESCE($6, image_url),
            updated_at = NOW()
        WHERE id=$1 AND creator_id=$2
        RETURNING ` + courseColumns
	course, err := scanCourse(r.pool.QueryRow(ctx, query,
		courseID,
		creatorID,
		changes.Title,
		changes.Description,
		changes.Price,
		changes.ImageURL,
	))
	if err != nil {
		return nil, mapNoRows(err)
	}
	return course, nil
}

func (r *courseRepository) DeleteOwned(ctx context.Context, courseID, creatorID string) error {
	const query = `DELETE FROM courses WHERE id=$1 AND creator_id=$2`
	cmd, err := r.pool.Exec(ctx, query, courseID, creatorID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *courseRepository) ListByCreator(ctx context.Context, creatorID string) ([]domain.Course, error) {
	const query = `SELECT ` + courseColumns + ` FROM courses WHERE creator_id=$1 ORDER BY created_at, id`
	rows, err := r.pool.Query(ctx, query, creatorID)
	if err != nil {
		return nil, err
	}
	return collectCourses(rows)
}

func (r *courseRepository) ListAll(ctx context.Context) ([]domain.Course, error) {
	const query = `SELECT ` + courseColumns + ` FROM courses ORDER BY created_at, id`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return collectCourses(rows)
}

func scanCourse(row pgx.Row) (*domain.Course, error) {
	var course domain.Course
	if err := row.Scan(
		&course.ID,
		&course.Title,
		&course.Description,
		&course.Price,
		&course.ImageURL,
		&course.CreatorID,
		&course.CreatedAt,
		&course.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &course, nil
}

func collectCourses(rows pgx.Rows) ([]domain.Course, error) {
	defer rows.Close()

	result := []domain.Course{}
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *course)
	}
	return result, rows.Err()
}
