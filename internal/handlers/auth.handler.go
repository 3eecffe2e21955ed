package handlers

import (
	"vitals/internal/app"
	authController "vitals/internal/controllers/auth"
	"vitals/internal/handlers/middleware"
	"vitals/internal/logger"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	Handler
	controller authController.AuthController
}

type googleAuthRequest struct {
	Token string `json:"token"`
}

func NewAuthHandler(app app.App, router fiber.Router) *AuthHandler {
	log := logger.New("handlers").File("auth_handler")
	return &AuthHandler{
		controller: *app.AuthController,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *AuthHandler) Register() {
	auth := h.router.Group("/auth")
	auth.Post("/google", h.googleExchange)
	auth.Get("/users/me", h.middleware.RequireAuth(), h.currentUser)
}

// googleExchange trades a verified Google ID token for an internal bearer
// token.
func (h *AuthHandler) googleExchange(c *fiber.Ctx) error {
	log := h.log.Function("googleExchange")

	var request googleAuthRequest
	if err := c.BodyParser(&request); err != nil {
		log.Er("failed to parse auth request", err)
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "failed to parse auth request"})
	}

	token, user, err := h.controller.ExchangeGoogleToken(c.Context(), request.Token)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"access_token": token,
		"token_type":   "bearer",
		"user":         user,
	})
}

func (h *AuthHandler) currentUser(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"email": middleware.Email(c)})
}
