package middleware

import (
	"strings"
	"vitals/config"
	authController "vitals/internal/controllers/auth"
	"vitals/internal/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

type Middleware struct {
	auth   *authController.AuthController
	config config.Config
	log    logger.Logger
}

func New(auth *authController.AuthController, config config.Config) Middleware {
	return Middleware{
		auth:   auth,
		config: config,
		log:    logger.New("middleware"),
	}
}

// RequireAuth resolves the bearer token and stores the caller's email in
// locals. Requests without a valid token never reach the handler.
func (m Middleware) RequireAuth() fiber.Handler {
	log := m.log.Function("RequireAuth")

	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			return c.Status(fiber.StatusUnauthorized).
				JSON(fiber.Map{"message": "error", "error": "missing bearer token"})
		}

		email, err := m.auth.ResolveToken(token)
		if err != nil {
			log.Warn("rejected invalid token", "path", c.Path())
			return c.Status(fiber.StatusUnauthorized).
				JSON(fiber.Map{"message": "error", "error": "invalid credentials"})
		}

		c.Locals("email", email)
		return c.Next()
	}
}

func (m Middleware) Cors() fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins:     m.config.CorsOrigins,
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	})
}

// Email returns the identity the auth middleware resolved for this
// request, empty when the route ran without RequireAuth.
func Email(c *fiber.Ctx) string {
	email, _ := c.Locals("email").(string)
	return email
}
