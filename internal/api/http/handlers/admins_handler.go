package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/course-marketplace/internal/api/dto"
	"github.com/spec-kit/course-marketplace/internal/api/validation"
	"github.com/spec-kit/course-marketplace/internal/auth"
	"github.com/spec-kit/course-marketplace/internal/domain"
	"github.com/spec-kit/course-marketplace/internal/service"
	apperrors "github.com/spec-kit/course-marketplace/pkg/util/errorutil"
)

// AdminsHandler exposes admin auth and course management endpoints.
type AdminsHandler struct {
	principalAuth
	courses *service.CourseService
}

// NewAdminsHandler constructs handler.
func NewAdminsHandler(authService *service.AuthService, courses *service.CourseService, v *validation.Validator) *AdminsHandler {
	return &AdminsHandler{
		principalAuth: principalAuth{class: domain.PrincipalAdmin, auth: authService, validator: v},
		courses:       courses,
	}
}

// Signup handles POST /admin/signup.
func (h *AdminsHandler) Signup(c *fiber.Ctx) error {
	return h.signup(c)
}

// Signin handles POST /admin/signin.
func (h *AdminsHandler) Signin(c *fiber.Ctx) error {
	return h.signin(c)
}

// CreateCourse handles POST /admin/course.
func (h *AdminsHandler) CreateCourse(c *fiber.Ctx) error {
	adminID, err := auth.PrincipalID(c, domain.PrincipalAdmin)
	if err != nil {
		return err
	}
	var req dto.CreateCourseRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}

	course, err := h.courses.Create(c.UserContext(), adminID, service.CourseInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       *req.Price,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message":  "Course created successfully",
		"courseId": course.ID,
		"course":   dto.NewCourseResponse(course),
	})
}

// UpdateCourse handles PUT /admin/course.
func (h *AdminsHandler) UpdateCourse(c *fiber.Ctx) error {
	adminID, err := auth.PrincipalID(c, domain.PrincipalAdmin)
	if err != nil {
		return err
	}
	var req dto.UpdateCourseRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}
	changes := req.Changes()
	if changes.Empty() {
		return apperrors.NewValidationError("no course fields to update", nil)
	}

	course, err := h.courses.Update(c.UserContext(), adminID, req.CourseID, changes)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message": "Course updated successfully",
		"course":  dto.NewCourseResponse(course),
	})
}

// DeleteCourse handles DELETE /admin/course. The id may come from the body or
// the courseId query parameter.
func (h *AdminsHandler) DeleteCourse(c *fiber.Ctx) error {
	adminID, err := auth.PrincipalID(c, domain.PrincipalAdmin)
	if err != nil {
		return err
	}
	req := dto.CourseIDRequest{CourseID: c.Query("courseId")}
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}

	if err := h.courses.Delete(c.UserContext(), adminID, req.CourseID); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message":  "Course deleted successfully",
		"courseId": req.CourseID,
	})
}

// ListCourses handles GET /admin/course/bulk.
func (h *AdminsHandler) ListCourses(c *fiber.Ctx) error {
	adminID, err := auth.PrincipalID(c, domain.PrincipalAdmin)
	if err != nil {
		return err
	}

	courses, err := h.courses.ListByOwner(c.UserContext(), adminID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message": "Courses fetched successfully",
		"courses": dto.NewCourseResponses(courses),
	})
}
