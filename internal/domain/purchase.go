package domain

import "time"

// Purchase is an immutable fact that a user bought a course.
type Purchase struct {
	ID        string
	UserID    string
	CourseID  string
	CreatedAt time.Time
}
