package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/course-marketplace/internal/api/http/handlers"
	"github.com/spec-kit/course-marketplace/internal/auth"
	apperrors "github.com/spec-kit/course-marketplace/pkg/util/errorutil"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health  *handlers.HealthHandler
	Users   *handlers.UsersHandler
	Admins  *handlers.AdminsHandler
	Courses *handlers.CoursesHandler
	Guard   *auth.Guard
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	user := app.Group("/user")
	user.Post("/signup", cfg.Users.Signup)
	user.Post("/signin", cfg.Users.Signin)
	user.Get("/purchases", cfg.Guard.RequireUser(), cfg.Users.Purchases)

	admin := app.Group("/admin")
	admin.Post("/signup", cfg.Admins.Signup)
	admin.Post("/signin", cfg.Admins.Signin)

	requireAdmin := cfg.Guard.RequireAdmin()
	admin.Post("/course", requireAdmin, cfg.Admins.CreateCourse)
	admin.Put("/course", requireAdmin, cfg.Admins.UpdateCourse)
	admin.Delete("/course", requireAdmin, cfg.Admins.DeleteCourse)
	admin.Get("/course/bulk", requireAdmin, cfg.Admins.ListCourses)

	course := app.Group("/course")
	course.Get("/preview", cfg.Courses.Preview)
	course.Post("/purchase", cfg.Guard.RequireUser(), cfg.Courses.Purchase)

	app.Use(func(c *fiber.Ctx) error {
		return apperrors.NewNotFound("route")
	})
}
