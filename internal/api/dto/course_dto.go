package dto

import (
	"strings"
	"time"

	"github.com/spec-kit/course-marketplace/internal/domain"
)

// CreateCourseRequest payload.
type CreateCourseRequest struct {
	Title       string   `json:"title" validate:"required,min=3,max=200"`
	Description string   `json:"description" validate:"max=5000"`
	Price       *float64 `json:"price" validate:"required,gte=0"`
	ImageURL    string   `json:"imageUrl" validate:"max=300"`
}

// Normalize trims free-text fields.
func (r *CreateCourseRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
}

// UpdateCourseRequest payload; omitted fields keep their stored value.
type UpdateCourseRequest struct {
	CourseID    string   `json:"courseId" validate:"required,uuid"`
	Title       *string  `json:"title" validate:"omitempty,min=3,max=200"`
	Description *string  `json:"description" validate:"omitempty,max=5000"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	ImageURL    *string  `json:"imageUrl" validate:"omitempty,max=300"`
}

// Normalize trims free-text fields.
func (r *UpdateCourseRequest) Normalize() {
	r.CourseID = strings.TrimSpace(r.CourseID)
	if r.Title != nil {
		trimmed := strings.TrimSpace(*r.Title)
		r.Title = &trimmed
	}
	if r.Description != nil {
		trimmed := strings.TrimSpace(*r.Description)
		r.Description = &trimmed
	}
}

// Changes returns the domain update.
func (r *UpdateCourseRequest) Changes() domain.CourseChanges {
	return domain.CourseChanges{
		Title:       r.Title,
		Description: r.Description,
		Price:       r.Price,
		ImageURL:    r.ImageURL,
	}
}

// CourseIDRequest carries only a course id (delete, purchase).
type CourseIDRequest struct {
	CourseID string `json:"courseId" validate:"required,uuid"`
}

// Normalize trims the id.
func (r *CourseIDRequest) Normalize() {
	r.CourseID = strings.TrimSpace(r.CourseID)
}

// CourseResponse represents a catalog entry.
type CourseResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	ImageURL    string    `json:"imageUrl"`
	CreatorID   string    `json:"creatorId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewCourseResponse maps a domain course.
func NewCourseResponse(c *domain.Course) CourseResponse {
	return CourseResponse{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		Price:       c.Price,
		ImageURL:    c.ImageURL,
		CreatorID:   c.CreatorID,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// NewCourseResponses maps a list, never returning nil.
func NewCourseResponses(courses []domain.Course) []CourseResponse {
	resp := make([]CourseResponse, 0, len(courses))
	for i := range courses {
		resp = append(resp, NewCourseResponse(&courses[i]))
	}
	return resp
}
