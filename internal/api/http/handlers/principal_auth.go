package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/course-marketplace/internal/api/dto"
	"github.com/spec-kit/course-marketplace/internal/api/validation"
	"github.com/spec-kit/course-marketplace/internal/domain"
	"github.com/spec-kit/course-marketplace/internal/service"
)

// principalAuth serves signup and signin for one principal class.
type principalAuth struct {
	class     domain.PrincipalClass
	auth      *service.AuthService
	validator *validation.Validator
}

func (h principalAuth) signup(c *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}

	principal, err := h.auth.Register(c.UserContext(), h.class, service.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message":        "Signed up successfully",
		h.class.String(): dto.NewPrincipalResponse(principal),
	})
}

func (h principalAuth) signin(c *fiber.Ctx) error {
	var req dto.SigninRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}

	principal, token, err := h.auth.SignIn(c.UserContext(), h.class, req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message":        "Signed in successfully",
		"token":          token,
		h.class.String(): dto.NewPrincipalResponse(principal),
	})
}
