package handlers

import (
	"vitals/internal/app"
	ratingsController "vitals/internal/controllers/ratings"
	"vitals/internal/handlers/middleware"
	"vitals/internal/logger"

	"github.com/gofiber/fiber/v2"
)

type RatingHandler struct {
	Handler
	controller ratingsController.RatingController
}

type ratingRequest struct {
	Rating float64 `json:"rating"`
}

func NewRatingHandler(app app.App, router fiber.Router) *RatingHandler {
	log := logger.New("handlers").File("rating_handler")
	return &RatingHandler{
		controller: *app.RatingController,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *RatingHandler) Register() {
	ratings := h.router.Group("/ratings", h.middleware.RequireAuth())
	ratings.Get("/my", h.getMyRating)
	ratings.Post("/submit", h.submitRating)
}

func (h *RatingHandler) getMyRating(c *fiber.Ctx) error {
	rating, err := h.controller.GetMy(c.Context(), middleware.Email(c))
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{"rating": rating})
}

func (h *RatingHandler) submitRating(c *fiber.Ctx) error {
	log := h.log.Function("submitRating")

	var request ratingRequest
	if err := c.BodyParser(&request); err != nil {
		log.Er("failed to parse rating request", err)
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "failed to parse rating request"})
	}

	if err := h.controller.Submit(c.Context(), middleware.Email(c), request.Rating); err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{"message": "success", "rating": request.Rating})
}
