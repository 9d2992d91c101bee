package worker

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/course-marketplace/internal/cache"
	"github.com/spec-kit/course-marketplace/internal/domain"
	"github.com/spec-kit/course-marketplace/internal/events"
	"github.com/spec-kit/course-marketplace/internal/service"
)

func warm(t *testing.T, catalog *cache.CatalogCache) {
	t.Helper()
	ctx := context.Background()
	gen, err := catalog.Generation(ctx)
	require.NoError(t, err)
	stored, err := catalog.Set(ctx, gen, []domain.Course{{ID: "c1", Title: "Go"}})
	require.NoError(t, err)
	require.True(t, stored)
}

func TestStartCatalogWorker_InvalidatesOnCourseEvents(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	catalog := cache.NewCatalogCache(client, time.Minute)
	dispatcher := events.NewInMemoryDispatcher()
	StartCatalogWorker(service.NewCatalogSubscriber(dispatcher, catalog, nil))

	for _, eventType := range []events.EventType{events.EventCourseCreated, events.EventCourseUpdated, events.EventCourseDeleted} {
		warm(t, catalog)
		require.NoError(t, dispatcher.Publish(ctx, events.Event{Type: eventType, CourseID: "c1"}))

		_, ok, err := catalog.Get(ctx)
		require.NoError(t, err)
		assert.False(t, ok, "catalog still cached after %s", eventType)
	}

	warm(t, catalog)
	require.NoError(t, dispatcher.Publish(ctx, events.Event{Type: events.EventCoursePurchased, CourseID: "c1"}))
	_, ok, err := catalog.Get(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStartCatalogWorker_Nil(t *testing.T) {
	assert.NotPanics(t, func() { StartCatalogWorker(nil) })
}
