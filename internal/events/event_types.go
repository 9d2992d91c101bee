package events

import (
	"time"

	"github.com/spec-kit/course-marketplace/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventCourseCreated   EventType = "course_created"
	EventCourseUpdated   EventType = "course_updated"
	EventCourseDeleted   EventType = "course_deleted"
	EventCoursePurchased EventType = "course_purchased"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Class domain.PrincipalClass `json:"class"`
	ID    string                `json:"id"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	CourseID  string      `json:"course_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// CourseChangedPayload lists the fields an update touched.
type CourseChangedPayload struct {
	Fields []string `json:"fields"`
}

// CoursePurchasedPayload payload.
type CoursePurchasedPayload struct {
	PurchaseID string `json:"purchase_id"`
	Repeat     bool   `json:"repeat"`
}
