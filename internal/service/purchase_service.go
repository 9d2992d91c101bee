package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/course-marketplace/internal/domain"
	"github.com/spec-kit/course-marketplace/internal/events"
	"github.com/spec-kit/course-marketplace/internal/repository"
	apperrors "github.com/spec-kit/course-marketplace/pkg/util/errorutil"
)

// PurchaseService records purchases and resolves owned courses.
type PurchaseService struct {
	purchases  repository.PurchaseRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// PurchaseDependencies bundles requirements for purchase service.
type PurchaseDependencies struct {
	PurchaseRepo repository.PurchaseRepository
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
}

// NewPurchaseService constructs the service.
func NewPurchaseService(deps PurchaseDependencies) *PurchaseService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PurchaseService{
		purchases:  deps.PurchaseRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// Purchase records that userID bought courseID. Repeating a purchase returns
// the original record. The course is not required to exist.
func (s *PurchaseService) Purchase(ctx context.Context, userID, courseID string) (*domain.Purchase, error) {
	if err := validateID("userId", userID); err != nil {
		return nil, err
	}
	if err := validateID("courseId", courseID); err != nil {
		return nil, err
	}

	purchase := &domain.Purchase{
		ID:       uuid.NewString(),
		UserID:   userID,
		CourseID: courseID,
	}
	created, err := s.purchases.Create(ctx, purchase)
	if errors.Is(err, repository.ErrUnknownPrincipal) {
		return nil, apperrors.NewUnauthorized("user account not found")
	}
	if err != nil {
		return nil, fmt.Errorf("create purchase: %w", err)
	}

	if s.dispatcher != nil {
		event := events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventCoursePurchased,
			CourseID:  courseID,
			Actor:     events.Actor{Class: domain.PrincipalUser, ID: userID},
			Timestamp: time.Now().UTC(),
			Payload:   events.CoursePurchasedPayload{PurchaseID: purchase.ID, Repeat: !created},
		}
		if err := s.dispatcher.Publish(ctx, event); err != nil {
			s.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
		}
	}
	return purchase, nil
}

// ListForUser returns the purchase facts of userID.
func (s *PurchaseService) ListForUser(ctx context.Context, userID string) ([]domain.Purchase, error) {
	purchases, err := s.purchases.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	return purchases, nil
}

// OwnedCourses resolves the user's purchases against the catalog. Courses
// deleted after purchase are left out.
func (s *PurchaseService) OwnedCourses(ctx context.Context, userID string) ([]domain.Course, error) {
	courses, err := s.purchases.ListCoursesByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list owned courses: %w", err)
	}
	return courses, nil
}
