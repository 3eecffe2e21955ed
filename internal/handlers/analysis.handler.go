package handlers

import (
	"vitals/internal/app"
	samplesController "vitals/internal/controllers/samples"
	"vitals/internal/handlers/middleware"
	"vitals/internal/logger"

	"github.com/gofiber/fiber/v2"
)

type AnalysisHandler struct {
	Handler
	samples samplesController.SampleController
}

func NewAnalysisHandler(app app.App, router fiber.Router) *AnalysisHandler {
	log := logger.New("handlers").File("analysis_handler")
	return &AnalysisHandler{
		samples: *app.SampleController,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *AnalysisHandler) Register() {
	analysis := h.router.Group("/analysis", h.middleware.RequireAuth())
	analysis.Post("/run/:data_type", h.runClassification)
}

// runClassification triggers an outlier detection run over the caller's
// series and returns the committed run number. The method query parameter
// selects iqr or zscore; empty falls back to the configured default.
func (h *AnalysisHandler) runClassification(c *fiber.Ctx) error {
	run, err := h.samples.RunClassification(
		c.Context(),
		middleware.Email(c),
		c.Params("data_type"),
		c.Query("method"),
	)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{"message": "success", "runNumber": run})
}
