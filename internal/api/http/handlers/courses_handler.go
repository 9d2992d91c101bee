package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/course-marketplace/internal/api/dto"
	"github.com/spec-kit/course-marketplace/internal/api/validation"
	"github.com/spec-kit/course-marketplace/internal/auth"
	"github.com/spec-kit/course-marketplace/internal/domain"
	"github.com/spec-kit/course-marketplace/internal/service"
)

// CoursesHandler serves the public catalog and purchases.
type CoursesHandler struct {
	courses   *service.CourseService
	purchases *service.PurchaseService
	validator *validation.Validator
}

// NewCoursesHandler constructs handler.
func NewCoursesHandler(courses *service.CourseService, purchases *service.PurchaseService, v *validation.Validator) *CoursesHandler {
	return &CoursesHandler{courses: courses, purchases: purchases, validator: v}
}

// Preview handles GET /course/preview.
func (h *CoursesHandler) Preview(c *fiber.Ctx) error {
	courses, err := h.courses.ListAll(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Courses fetched successfully",
		"courses": dto.NewCourseResponses(courses),
	})
}

// Purchase handles POST /course/purchase.
func (h *CoursesHandler) Purchase(c *fiber.Ctx) error {
	userID, err := auth.PrincipalID(c, domain.PrincipalUser)
	if err != nil {
		return err
	}
	var req dto.CourseIDRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}

	purchase, err := h.purchases.Purchase(c.UserContext(), userID, req.CourseID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message":    "Course purchased successfully",
		"purchaseId": purchase.ID,
		"courseId":   purchase.CourseID,
	})
}
