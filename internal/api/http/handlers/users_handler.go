package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/course-marketplace/internal/api/dto"
	"github.com/spec-kit/course-marketplace/internal/api/validation"
	"github.com/spec-kit/course-marketplace/internal/auth"
	"github.com/spec-kit/course-marketplace/internal/domain"
	"github.com/spec-kit/course-marketplace/internal/service"
)

// UsersHandler exposes auth and library endpoints for end-users.
type UsersHandler struct {
	principalAuth
	purchases *service.PurchaseService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService, purchases *service.PurchaseService, v *validation.Validator) *UsersHandler {
	return &UsersHandler{
		principalAuth: principalAuth{class: domain.PrincipalUser, auth: authService, validator: v},
		purchases:     purchases,
	}
}

// Signup handles POST /user/signup.
func (h *UsersHandler) Signup(c *fiber.Ctx) error {
	return h.signup(c)
}

// Signin handles POST /user/signin.
func (h *UsersHandler) Signin(c *fiber.Ctx) error {
	return h.signin(c)
}

// Purchases handles GET /user/purchases.
func (h *UsersHandler) Purchases(c *fiber.Ctx) error {
	userID, err := auth.PrincipalID(c, domain.PrincipalUser)
	if err != nil {
		return err
	}

	courses, err := h.purchases.OwnedCourses(c.UserContext(), userID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message":      "Purchased courses fetched successfully",
		"courses":      dto.NewCourseResponses(courses),
		"totalCourses": len(courses),
	})
}
