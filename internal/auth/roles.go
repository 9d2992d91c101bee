package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/course-marketplace/internal/domain"
	apperrors "github.com/spec-kit/course-marketplace/pkg/util/errorutil"
)

// RequireUser admits only requests carrying a valid user token.
func (g *Guard) RequireUser() fiber.Handler {
	return g.require(domain.PrincipalUser)
}

// RequireAdmin admits only requests carrying a valid admin token. User tokens
// never satisfy it; there is no role ladder.
func (g *Guard) RequireAdmin() fiber.Handler {
	return g.require(domain.PrincipalAdmin)
}

// PrincipalID returns the id of the caller of the given class, failing when the
// guard for that class did not run.
func PrincipalID(c *fiber.Ctx, class domain.PrincipalClass) (string, error) {
	principal, ok := PrincipalFromContext(c)
	if !ok || principal.Class != class || principal.ID == "" {
		return "", apperrors.NewUnauthorized("you are not signed in")
	}
	return principal.ID, nil
}
