package api

import (
	"context"
	"errors"
	"movie_browser/api/middleware"
	"movie_browser/configs"
	"movie_browser/internal/handler"
	"movie_browser/pkg/response"
	"slices"
	"strings"
	"time"

	"github.com/gofiber/contrib/fibersentry"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog/log"
)

var router *fiber.App

type Handlers struct {
	Movie   *handler.MovieHandler
	Auth    *handler.AuthHandler
	Profile *handler.ProfileHandler
	// AuthMiddleware guards the routes that need a logged in user.
	AuthMiddleware fiber.Handler
}

func InitRouter(h Handlers) {
	router = NewRouter(h)
}

func NewRouter(h Handlers) *fiber.App {
	var defaultErrorHandler = func(c *fiber.Ctx, err error) error {
		// Status code defaults to 500
		code := fiber.StatusInternalServerError

		// Retrieve the custom status code if it's a *fiber.Error
		var e *fiber.Error
		if errors.As(err, &e) {
			code = e.Code
		}

		if !strings.Contains(err.Error(), "/favicon.ico") && code >= 500 {
			log.Error().Err(err).Str("path", c.Path()).Msg("unhandled request error")
		}

		return response.ResponseError(c, response.InternalServerError, code)
	}

	app := fiber.New(fiber.Config{
		BodyLimit:    20 * 1024 * 1024,
		ErrorHandler: defaultErrorHandler,
	})

	app.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	}))
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return middleware.LocalhostRegex.MatchString(origin) ||
				slices.Index(configs.GetConfigs().CorsAllowedOrigins, origin) != -1 ||
				slices.Index(configs.GetDbConfigs().CorsAllowedOrigins, origin) != -1
		},
		AllowCredentials: true,
	}))
	app.Use(timeoutMiddleware(configs.RequestTimeout))
	app.Use(recover.New())
	app.Use(compress.New())

	app.Use(fibersentry.New(fibersentry.Config{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	uploadDir := configs.GetConfigs().UploadDir
	if uploadDir == "" {
		uploadDir = "uploads"
	}
	app.Static("/uploads", uploadDir, fiber.Static{
		Compress:      false,
		ByteRange:     true,
		Browse:        false,
		Index:         "",
		CacheDuration: 10 * time.Second,
		MaxAge:        3600,
	})

	movieRoutes := app.Group("api/movies")
	{
		movieRoutes.Get("/recent", h.Movie.EnsureRecentMovies, h.Movie.GetRecentMovies)
		movieRoutes.Get("/search", h.Movie.SearchMovies)
		movieRoutes.Get("/movie/:id", h.AuthMiddleware, h.Movie.GetMovieDetail)
	}

	authRoutes := app.Group("api/auth")
	{
		authRoutes.Post("/register", h.Auth.Register)
		authRoutes.Post("/login", h.Auth.Login)
		authRoutes.Post("/google", h.Auth.FederatedLogin)
		authRoutes.Post("/logout", h.Auth.Logout)
		authRoutes.Post("/request-reset", h.Auth.RequestPasswordReset)
		authRoutes.Post("/reset/:token", h.Auth.ResetPassword)
		authRoutes.Delete("/delete-account", h.AuthMiddleware, h.Auth.DeleteAccount)
	}

	profileRoutes := app.Group("api/profile")
	{
		profileRoutes.Get("/profile", h.AuthMiddleware, h.Profile.GetProfile)
		profileRoutes.Post("/profile/upload-photo", h.AuthMiddleware, h.Profile.UploadPhoto)
	}

	app.Get("/", HealthCheck)
	app.Get("/metrics", monitor.New())

	return app
}

func Start(addr string) error {
	return router.Listen(addr)
}

func Shutdown(ctx context.Context) error {
	if router == nil {
		return nil
	}
	return router.ShutdownWithContext(ctx)
}

// timeoutMiddleware puts a deadline on the request context handed to services.
// A response the handler already wrote is kept even when the deadline passed.
func timeoutMiddleware(timeout time.Duration) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()

		c.SetUserContext(ctx)
		err := c.Next()
		if !errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return err
		}
		if err == nil && len(c.Response().Body()) > 0 {
			return nil
		}
		return response.ResponseError(c, "Request timeout", fiber.StatusGatewayTimeout)
	}
}

func HealthCheck(c *fiber.Ctx) error {
	res := map[string]interface{}{
		"data": "Server is up and running",
	}

	if err := c.JSON(res); err != nil {
		return err
	}

	return nil
}
