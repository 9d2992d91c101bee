package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/course-marketplace/internal/domain"
	apperrors "github.com/spec-kit/course-marketplace/pkg/util/errorutil"
)

type guardFixture struct {
	app     *fiber.App
	tokens  *TokenManager
	reached *int
	lastID  *string
}

func newGuardFixture(t *testing.T) guardFixture {
	t.Helper()

	tokens := newTestTokenManager()
	guard := NewGuard(tokens, "token")

	reached := 0
	lastID := ""
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).JSON(fiber.Map{"message": de.Message, "code": de.Code})
		},
	})
	handler := func(class domain.PrincipalClass) fiber.Handler {
		return func(c *fiber.Ctx) error {
			reached++
			id, err := PrincipalID(c, class)
			if err != nil {
				return err
			}
			lastID = id
			return c.JSON(fiber.Map{"message": "ok"})
		}
	}
	app.Get("/user", guard.RequireUser(), handler(domain.PrincipalUser))
	app.Get("/admin", guard.RequireAdmin(), handler(domain.PrincipalAdmin))

	return guardFixture{app: app, tokens: tokens, reached: &reached, lastID: &lastID}
}

func (f guardFixture) do(t *testing.T, path string, headers map[string]string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestGuard_MissingTokenHalts(t *testing.T) {
	f := newGuardFixture(t)

	for _, path := range []string{"/user", "/admin"} {
		status, body := f.do(t, path, nil)
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, apperrors.CodeUnauthenticated, body["code"])
	}
	assert.Zero(t, *f.reached, "handler must not run without a token")
}

func TestGuard_InvalidTokenHalts(t *testing.T) {
	f := newGuardFixture(t)

	status, _ := f.do(t, "/user", map[string]string{"token": "garbage"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Zero(t, *f.reached)
}

func TestGuard_AdmitsMatchingClass(t *testing.T) {
	f := newGuardFixture(t)

	userTok, err := f.tokens.Issue("user-1", domain.PrincipalUser)
	require.NoError(t, err)
	status, _ := f.do(t, "/user", map[string]string{"token": userTok})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "user-1", *f.lastID)

	adminTok, err := f.tokens.Issue("admin-1", domain.PrincipalAdmin)
	require.NoError(t, err)
	status, _ = f.do(t, "/admin", map[string]string{"Authorization": "Bearer " + adminTok})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "admin-1", *f.lastID)
	assert.Equal(t, 2, *f.reached)
}

func TestGuard_RejectsOtherClass(t *testing.T) {
	f := newGuardFixture(t)

	userTok, err := f.tokens.Issue("user-1", domain.PrincipalUser)
	require.NoError(t, err)
	adminTok, err := f.tokens.Issue("admin-1", domain.PrincipalAdmin)
	require.NoError(t, err)

	status, _ := f.do(t, "/admin", map[string]string{"token": userTok})
	assert.Equal(t, http.StatusUnauthorized, status)
	status, _ = f.do(t, "/user", map[string]string{"token": adminTok})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Zero(t, *f.reached)
}
