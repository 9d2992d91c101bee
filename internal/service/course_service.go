package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/course-marketplace/internal/cache"
	"github.com/spec-kit/course-marketplace/internal/domain"
	"github.com/spec-kit/course-marketplace/internal/events"
	"github.com/spec-kit/course-marketplace/internal/repository"
	apperrors "github.com/spec-kit/course-marketplace/pkg/util/errorutil"
)

// CourseService manages the course catalog and enforces ownership.
type CourseService struct {
	courses    repository.CourseRepository
	catalog    *cache.CatalogCache
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// CourseDependencies bundles requirements for course service.
type CourseDependencies struct {
	CourseRepo repository.CourseRepository
	Catalog    *cache.CatalogCache
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// CourseInput describes course creation payload.
type CourseInput struct {
	Title       string
	Description string
	Price       float64
	ImageURL    string
}

// NewCourseService constructs the service.
func NewCourseService(deps CourseDependencies) *CourseService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{
		courses:    deps.CourseRepo,
		catalog:    deps.Catalog,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// Create stores a course owned by adminID.
func (s *CourseService) Create(ctx context.Context, adminID string, input CourseInput) (*domain.Course, error) {
	course := &domain.Course{
		ID:          uuid.NewString(),
		Title:       input.Title,
		Description: input.Description,
		Price:       input.Price,
		ImageURL:    input.ImageURL,
		CreatorID:   adminID,
	}
	if err := s.courses.Create(ctx, course); err != nil {
		if errors.Is(err, repository.ErrUnknownPrincipal) {
			return nil, apperrors.NewUnauthorized("admin account not found")
		}
		return nil, fmt.Errorf("create course: %w", err)
	}

	s.publish(ctx, events.EventCourseCreated, course.ID, adminID, nil)
	return course, nil
}

// Update applies changes when adminID owns the course. Missing and foreign
// courses both yield Forbidden so non-owners learn nothing about existence.
func (s *CourseService) Update(ctx context.Context, adminID, courseID string, changes domain.CourseChanges) (*domain.Course, error) {
	if err := validateID("courseId", courseID); err != nil {
		return nil, err
	}
	course, err := s.courses.UpdateOwned(ctx, courseID, adminID, changes)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewForbidden("course not found for this admin")
	}
	if err != nil {
		return nil, fmt.Errorf("update course: %w", err)
	}

	s.publish(ctx, events.EventCourseUpdated, course.ID, adminID, events.CourseChangedPayload{Fields: changedFields(changes)})
	return course, nil
}

// Delete removes the course when adminID owns it.
func (s *CourseService) Delete(ctx context.Context, adminID, courseID string) error {
	if err := validateID("courseId", courseID); err != nil {
		return err
	}
	err := s.courses.DeleteOwned(ctx, courseID, adminID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewForbidden("course not found for this admin")
	}
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}

	s.publish(ctx, events.EventCourseDeleted, courseID, adminID, nil)
	return nil
}

// ListByOwner returns the courses created by adminID.
func (s *CourseService) ListByOwner(ctx context.Context, adminID string) ([]domain.Course, error) {
	courses, err := s.courses.ListByCreator(ctx, adminID)
	if err != nil {
		return nil, fmt.Errorf("list courses by owner: %w", err)
	}
	return courses, nil
}

// ListAll returns the public catalog, served from cache when possible.
func (s *CourseService) ListAll(ctx context.Context) ([]domain.Course, error) {
	cached, ok, err := s.catalog.Get(ctx)
	if err != nil {
		s.logger.Warn("catalog cache read failed", zap.Error(err))
	}
	if ok {
		return cached, nil
	}

	gen, genErr := s.catalog.Generation(ctx)
	if genErr != nil {
		s.logger.Warn("catalog cache generation read failed", zap.Error(genErr))
	}

	courses, err := s.courses.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	if genErr == nil {
		if _, err := s.catalog.Set(ctx, gen, courses); err != nil {
			s.logger.Warn("catalog cache write failed", zap.Error(err))
		}
	}
	return courses, nil
}

func (s *CourseService) publish(ctx context.Context, eventType events.EventType, courseID, adminID string, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		CourseID:  courseID,
		Actor:     events.Actor{Class: domain.PrincipalAdmin, ID: adminID},
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(eventType)), zap.Error(err))
	}
}

func changedFields(changes domain.CourseChanges) []string {
	fields := []string{}
	if changes.Title != nil {
		fields = append(fields, "title")
	}
	if changes.Description != nil {
		fields = append(fields, "description")
	}
	if changes.Price != nil {
		fields = append(fields, "price")
	}
	if changes.ImageURL != nil {
		fields = append(fields, "imageUrl")
	}
	return fields
}

func validateID(field, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperrors.NewValidationError("validation failed", map[string]any{
			field: fmt.Sprintf("The field '%s' must be a valid id.", field),
		})
	}
	return nil
}
