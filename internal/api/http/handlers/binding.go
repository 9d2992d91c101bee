package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/course-marketplace/internal/api/validation"
	apperrors "github.com/spec-kit/course-marketplace/pkg/util/errorutil"
)

type normalizer interface {
	Normalize()
}

// bind parses the JSON body into req, normalizes it and validates it.
func bind(c *fiber.Ctx, v *validation.Validator, req normalizer) error {
	if len(c.Body()) > 0 {
		if err := c.BodyParser(req); err != nil {
			return apperrors.NewValidationError("invalid request body", nil)
		}
	}
	req.Normalize()
	return v.Struct(req)
}
