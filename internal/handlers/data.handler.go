package handlers

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net/url"
	"vitals/config"
	"vitals/internal/app"
	predictionsController "vitals/internal/controllers/predictions"
	samplesController "vitals/internal/controllers/samples"
	"vitals/internal/fhir"
	"vitals/internal/handlers/middleware"
	"vitals/internal/logger"
	. "vitals/internal/models"
	"vitals/internal/repositories"

	"github.com/gofiber/fiber/v2"
	qrcode "github.com/skip2/go-qrcode"
	"github.com/valyala/fasthttp"
)

const fhirExportBatchSize = 100

const qrImageSize = 290

type DataHandler struct {
	Handler
	samples     samplesController.SampleController
	predictions predictionsController.PredictionController
	sampleRepo  repositories.SampleRepository
	transformer *fhir.Transformer
	config      config.Config
}

func NewDataHandler(app app.App, router fiber.Router) *DataHandler {
	log := logger.New("handlers").File("data_handler")
	return &DataHandler{
		samples:     *app.SampleController,
		predictions: *app.PredictionController,
		sampleRepo:  app.SampleRepo,
		transformer: app.FHIR,
		config:      app.Config,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *DataHandler) Register() {
	data := h.router.Group("/get_data", h.middleware.RequireAuth())
	data.Get("/raw_data/:data_type", h.getRawData)
	data.Get("/data_with_outliers/:data_type", h.getDataWithOutliers)
	data.Get("/data_types", h.getDataTypes)
	data.Get("/predictions", h.getPredictions)
	data.Get("/fhir/get_all_data", h.getFHIRBundle)
	data.Get("/fhir/get_all_data_qr", h.getFHIRBundleQR)
}

// getRawData returns the caller's coerced series for one data type as
// [{X, Y}] ordered by timestamp.
func (h *DataHandler) getRawData(c *fiber.Ctx) error {
	series, err := h.samples.GetSeries(c.Context(), middleware.Email(c), c.Params("data_type"))
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(series)
}

func (h *DataHandler) getDataWithOutliers(c *fiber.Ctx) error {
	result, err := h.samples.GetSeriesWithOutliers(
		c.Context(), middleware.Email(c), c.Params("data_type"))
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(result)
}

// getDataTypes lists the recognized data type names, for clients building
// stream pickers.
func (h *DataHandler) getDataTypes(c *fiber.Ctx) error {
	return c.JSON(AllDataTypes())
}

func (h *DataHandler) getPredictions(c *fiber.Ctx) error {
	predictions, err := h.predictions.GetLatest(c.Context(), middleware.Email(c))
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(predictions)
}

// getFHIRBundle streams the caller's complete history as a FHIR Bundle,
// reading keyset batches so the full record set never sits in memory.
func (h *DataHandler) getFHIRBundle(c *fiber.Ctx) error {
	log := h.log.Function("getFHIRBundle")

	email := middleware.Email(c)
	if email == "" {
		return errorResponse(c, ErrUnauthenticated)
	}

	c.Set(fiber.HeaderContentType, "application/fhir+json")
	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		_, _ = w.WriteString(`{"resourceType":"Bundle","type":"collection","entry":[`)

		first := true
		lastID := 0
		for {
			batch, err := h.sampleRepo.GetByUserAfterID(c.Context(), email, lastID, fhirExportBatchSize)
			if err != nil {
				log.Er("aborting bundle stream", err, "email", email, "lastID", lastID)
				break
			}
			if len(batch) == 0 {
				break
			}

			for _, sample := range batch {
				lastID = sample.ID

				entry, ok := h.transformer.BuildEntry(sample)
				if !ok {
					continue
				}

				payload, err := json.Marshal(entry)
				if err != nil {
					log.Er("failed to marshal bundle entry", err, "sampleID", sample.ID)
					continue
				}

				if !first {
					_, _ = w.WriteString(",")
				}
				first = false
				_, _ = w.Write(payload)
			}

			if len(batch) < fhirExportBatchSize {
				break
			}
			_ = w.Flush()
		}

		_, _ = w.WriteString("]}")
		_ = w.Flush()
	}))

	return nil
}

// getFHIRBundleQR returns a PNG QR code wrapping the caller's FHIR export
// link, for handing the record set to another device by scanning.
func (h *DataHandler) getFHIRBundleQR(c *fiber.Ctx) error {
	log := h.log.Function("getFHIRBundleQR")

	email := middleware.Email(c)
	if email == "" {
		return errorResponse(c, ErrUnauthenticated)
	}

	targetURL := fmt.Sprintf("%s/api/get_data/fhir/get_all_data?email=%s",
		h.config.DomainName, url.QueryEscape(email))

	png, err := qrcode.Encode(targetURL, qrcode.Low, qrImageSize)
	if err != nil {
		return errorResponse(c, log.Err("failed to generate qr code", err, "email", email))
	}

	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(png)
}
