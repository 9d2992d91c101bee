package worker

import (
	"github.com/spec-kit/course-marketplace/internal/service"
)

// StartCatalogWorker registers catalog event handlers.
func StartCatalogWorker(subscriber *service.CatalogSubscriber) {
	if subscriber == nil {
		return
	}
	subscriber.RegisterHandlers()
}
