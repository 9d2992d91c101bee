package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/course-marketplace/internal/domain"
	apperrors "github.com/spec-kit/course-marketplace/pkg/util/errorutil"
)

const (
	principalKey       = "auth_principal"
	defaultTokenHeader = "token"
)

// Principal represents the authenticated caller.
type Principal struct {
	ID    string
	Class domain.PrincipalClass
}

// TokenVerifier verifies a token for a principal class.
type TokenVerifier interface {
	Verify(token string, class domain.PrincipalClass) (string, error)
}

// Guard gates routes on a verified token of a given principal class.
type Guard struct {
	tokens TokenVerifier
	header string
}

// NewGuard constructs the guard. Tokens are read from header, falling back to
// an Authorization bearer value.
func NewGuard(tokens TokenVerifier, header string) *Guard {
	if header == "" {
		header = defaultTokenHeader
	}
	return &Guard{tokens: tokens, header: header}
}

// require returns a handler that either admits the request with the principal
// attached or returns an error without calling the next handler.
func (g *Guard) require(class domain.PrincipalClass) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := g.tokens.Verify(g.extractToken(c), class)
		if err != nil {
			if errors.Is(err, ErrMissingToken) {
				return apperrors.NewUnauthorized("you are not signed in")
			}
			return apperrors.NewUnauthorized("invalid token")
		}

		c.Locals(principalKey, &Principal{ID: id, Class: class})
		return c.Next()
	}
}

func (g *Guard) extractToken(c *fiber.Ctx) string {
	if token := strings.TrimSpace(c.Get(g.header)); token != "" {
		return token
	}
	parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
