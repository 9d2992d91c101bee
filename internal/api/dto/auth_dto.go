package dto

import (
	"strings"

	"github.com/spec-kit/course-marketplace/internal/domain"
)

// SignupRequest payload for new users and admins.
type SignupRequest struct {
	Email     string `json:"email" validate:"required,email,max=100"`
	Password  string `json:"password" validate:"required,password"`
	FirstName string `json:"firstName" validate:"required,min=3,max=50"`
	LastName  string `json:"lastName" validate:"required,min=3,max=50"`
}

// Normalize trims fields and lower-cases the email.
func (r *SignupRequest) Normalize() {
	r.Email = domain.NormalizeEmail(r.Email)
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
}

// SigninRequest payload for login.
type SigninRequest struct {
	Email    string `json:"email" validate:"required,email,max=100"`
	Password string `json:"password" validate:"required"`
}

// Normalize trims and lower-cases the email.
func (r *SigninRequest) Normalize() {
	r.Email = domain.NormalizeEmail(r.Email)
}

// PrincipalResponse is the public profile of a user or admin.
type PrincipalResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// NewPrincipalResponse maps the domain record, leaving out the password hash.
func NewPrincipalResponse(p *domain.Principal) PrincipalResponse {
	return PrincipalResponse{
		ID:        p.ID,
		Email:     p.Email,
		FirstName: p.FirstName,
		LastName:  p.LastName,
	}
}
