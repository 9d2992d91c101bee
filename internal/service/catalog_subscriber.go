package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/course-marketplace/internal/cache"
	"github.com/spec-kit/course-marketplace/internal/events"
)

// CatalogSubscriber reacts to course events: it drops the cached catalog and
// writes an audit line per event.
type CatalogSubscriber struct {
	dispatcher events.Dispatcher
	catalog    *cache.CatalogCache
	logger     *zap.Logger
}

// NewCatalogSubscriber creates the subscriber.
func NewCatalogSubscriber(dispatcher events.Dispatcher, catalog *cache.CatalogCache, logger *zap.Logger) *CatalogSubscriber {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogSubscriber{
		dispatcher: dispatcher,
		catalog:    catalog,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (s *CatalogSubscriber) RegisterHandlers() {
	if s.dispatcher == nil {
		return
	}
	s.dispatcher.Subscribe(events.EventCourseCreated, s.handleCatalogChanged)
	s.dispatcher.Subscribe(events.EventCourseUpdated, s.handleCatalogChanged)
	s.dispatcher.Subscribe(events.EventCourseDeleted, s.handleCatalogChanged)
	s.dispatcher.Subscribe(events.EventCoursePurchased, s.handleCoursePurchased)
}

func (s *CatalogSubscriber) handleCatalogChanged(ctx context.Context, event events.Event) error {
	s.logger.Info(string(event.Type),
		zap.String("course_id", event.CourseID),
		zap.String("admin_id", event.Actor.ID),
		zap.Any("payload", event.Payload))
	if err := s.catalog.Invalidate(ctx); err != nil {
		return fmt.Errorf("invalidate catalog: %w", err)
	}
	return nil
}

func (s *CatalogSubscriber) handleCoursePurchased(_ context.Context, event events.Event) error {
	s.logger.Info(string(event.Type),
		zap.String("course_id", event.CourseID),
		zap.String("user_id", event.Actor.ID),
		zap.Any("payload", event.Payload))
	return nil
}
