package domain

import "time"

// Course is a catalog listing owned by the admin that created it.
type Course struct {
	ID          string
	Title       string
	Description string
	Price       float64
	ImageURL    string
	CreatorID   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CourseChanges carries the mutable course fields of an update; nil fields are left untouched.
type CourseChanges struct {
	Title       *string
	Description *string
	Price       *float64
	ImageURL    *string
}

// Empty reports whether the update changes nothing.
func (c CourseChanges) Empty() bool {
	return c.Title == nil && c.Description == nil && c.Price == nil && c.ImageURL == nil
}

// Apply returns a copy of course with the changes applied. CreatorID is never changed.
func (c CourseChanges) Apply(course Course) Course {
	if c.Title != nil {
		course.Title = *c.Title
	}
	if c.Description != nil {
		course.Description = *c.Description
	}
	if c.Price != nil {
		course.Price = *c.Price
	}
	if c.ImageURL != nil {
		course.ImageURL = *c.ImageURL
	}
	return course
}
