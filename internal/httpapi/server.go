// Package httpapi is the fiber HTTP surface: auth, profile and course
// routes under /api/v1, plus health and metrics.
package httpapi

import (
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/MrEthical07/coursehub"
	"github.com/MrEthical07/coursehub/internal/courses"
	"github.com/MrEthical07/coursehub/internal/logging"
	"github.com/MrEthical07/coursehub/middleware"
)

// Deps wires the API. Engine and Courses are required.
type Deps struct {
	Engine  *coursehub.Engine
	Courses *courses.Service
	// Metrics serves /metrics when set.
	Metrics fiber.Handler
	Logger  *slog.Logger
	// AccessLog receives one line per request when set.
	AccessLog io.Writer

	Production  bool
	CORSOrigins string
	BodyLimit   int
}

type handlers struct {
	engine  *coursehub.Engine
	courses *courses.Service
	cookies cookieConfig
	log     *slog.Logger
}

// New builds the fiber app.
func New(d Deps) *fiber.App {
	log := d.Logger
	if log == nil {
		log = logging.Discard()
	}
	log = log.With("component", "http")

	bodyLimit := d.BodyLimit
	if bodyLimit <= 0 {
		// Avatars arrive as base64 data URIs.
		bodyLimit = 4 << 20
	}

	app := fiber.New(fiber.Config{
		AppName:               "coursehub",
		BodyLimit:             bodyLimit,
		ReadTimeout:           15 * time.Second,
		WriteTimeout:          15 * time.Second,
		IdleTimeout:           60 * time.Second,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler(log),
	})

	app.Use(recover.New())
	if d.AccessLog != nil {
		app.Use(fiberlogger.New(fiberlogger.Config{Output: d.AccessLog}))
	}
	if origins := strings.TrimSpace(d.CORSOrigins); origins != "" {
		app.Use(cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowCredentials: origins != "*",
			AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
			AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		}))
	}
	app.Use(middleware.RequestContext())

	tokens := d.Engine.Config().Tokens
	h := &handlers{
		engine:  d.Engine,
		courses: d.Courses,
		cookies: cookieConfig{
			secure:     d.Production,
			accessTTL:  tokens.AccessTTL,
			refreshTTL: tokens.RefreshTTL,
		},
		log: log,
	}

	app.Get("/healthz", h.health)
	if d.Metrics != nil {
		app.Get("/metrics", d.Metrics)
	}

	strict := middleware.RequireStrict(d.Engine)
	admin := middleware.AuthorizeRoles(d.Engine, d.Engine.Config().Account.AdminRole)

	api := app.Group("/api/v1")
	api.Post("/register", h.register)
	api.Post("/activate-user", h.activate)
	api.Post("/login", h.login)
	api.Get("/logout", middleware.RequireJWTOnly(d.Engine), h.logout)
	api.Get("/refresh-token", h.refresh)
	api.Post("/social-auth", h.socialAuth)

	api.Get("/me", strict, h.me)
	api.Put("/update-user-info", strict, h.updateInfo)
	api.Put("/update-user-password", strict, h.updatePassword)
	api.Put("/update-user-avatar", strict, h.updateAvatar)

	api.Post("/create-course", strict, admin, h.createCourse)
	api.Patch("/edit-course/:id", strict, admin, h.editCourse)
	api.Get("/course", h.listCourses)
	api.Get("/course/:id", h.getCourse)
	api.Get("/course-content/:id", strict, h.courseContent)

	app.Use(func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "route "+c.Method()+" "+c.OriginalURL()+" not found")
	})
	return app
}

func (h *handlers) health(c *fiber.Ctx) error {
	if err := h.engine.Ping(c.UserContext()); err != nil {
		h.log.WarnContext(c.UserContext(), "health check failed", "error", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

// bind decodes the JSON body into v, reporting failures as invalid input.
func bind(c *fiber.Ctx, v any) error {
	if err := c.BodyParser(v); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, coursehub.ErrInvalidInput.Error()+": malformed request body")
	}
	return nil
}
