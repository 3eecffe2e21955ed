package app

import (
	"vitals/config"
	"vitals/internal/database"
	"vitals/internal/events"
	"vitals/internal/fhir"
	"vitals/internal/handlers/middleware"
	"vitals/internal/logger"
	"vitals/internal/repositories"
	"vitals/internal/services"
	"vitals/internal/websockets"

	authController "vitals/internal/controllers/auth"
	predictionsController "vitals/internal/controllers/predictions"
	ratingsController "vitals/internal/controllers/ratings"
	samplesController "vitals/internal/controllers/samples"
)

type App struct {
	Database   database.DB
	Middleware middleware.Middleware
	Websocket  *websockets.Manager
	EventBus   *events.EventBus
	Config     config.Config

	// Services
	TransactionService *services.TransactionService
	FHIR               *fhir.Transformer

	// Repositories
	SampleRepo     repositories.SampleRepository
	OutlierRepo    repositories.OutlierRepository
	PredictionRepo repositories.PredictionRepository
	RatingRepo     repositories.RatingRepository

	// Controllers
	SampleController     *samplesController.SampleController
	PredictionController *predictionsController.PredictionController
	RatingController     *ratingsController.RatingController
	AuthController       *authController.AuthController
}

func New() (*App, error) {
	log := logger.New("app").Function("New")

	config, err := config.InitConfig()
	if err != nil {
		return &App{}, log.Err("failed to initialize config", err)
	}

	logger.Setup(config.Environment)

	db, err := database.New(config)
	if err != nil {
		return &App{}, log.Err("failed to create database", err)
	}

	if err := db.Migrate(); err != nil {
		return &App{}, log.Err("failed to migrate database", err)
	}

	eventBus := events.New(db.Cache.Events, config)

	// Initialize services
	transactionService := services.NewTransactionService(db)

	// Initialize repositories
	sampleRepo := repositories.NewSample(db)
	outlierRepo := repositories.NewOutlier(db)
	predictionRepo := repositories.NewPrediction(db)
	ratingRepo := repositories.NewRating(db)

	// Initialize controllers with repositories and services
	authCtrl := authController.New(authController.NewGoogleVerifier(config), config)
	sampleCtrl := samplesController.New(sampleRepo, outlierRepo, transactionService, config)
	predictionCtrl := predictionsController.New(predictionRepo)
	ratingCtrl := ratingsController.New(ratingRepo)

	middleware := middleware.New(authCtrl, config)

	websocket, err := websockets.New(eventBus, authCtrl, config)
	if err != nil {
		return &App{}, log.Err("failed to create websocket manager", err)
	}

	app := &App{
		Database:             db,
		Config:               config,
		Middleware:           middleware,
		EventBus:             eventBus,
		Websocket:            websocket,
		TransactionService:   transactionService,
		FHIR:                 fhir.NewTransformer(),
		SampleRepo:           sampleRepo,
		OutlierRepo:          outlierRepo,
		PredictionRepo:       predictionRepo,
		RatingRepo:           ratingRepo,
		SampleController:     sampleCtrl,
		PredictionController: predictionCtrl,
		RatingController:     ratingCtrl,
		AuthController:       authCtrl,
	}

	if err := app.validate(); err != nil {
		return &App{}, log.Err("failed to validate app", err)
	}

	return app, nil
}

func (a *App) validate() error {
	log := logger.New("app").Function("validate")
	if a.Database.SQL == nil {
		return log.ErrMsg("database is nil")
	}

	if a.Config == (config.Config{}) {
		return log.ErrMsg("config is nil")
	}

	nilChecks := []any{
		a.Websocket,
		a.EventBus,
		a.TransactionService,
		a.FHIR,
		a.SampleRepo,
		a.OutlierRepo,
		a.PredictionRepo,
		a.RatingRepo,
		a.SampleController,
		a.PredictionController,
		a.RatingController,
		a.AuthController,
	}

	for _, check := range nilChecks {
		if check == nil {
			return log.ErrMsg("nil check failed")
		}
	}

	return nil
}

func (a *App) Close() (err error) {
	if a.Websocket != nil {
		a.Websocket.Close()
	}

	if a.EventBus != nil {
		if closeErr := a.EventBus.Close(); closeErr != nil {
			err = closeErr
		}
	}

	if dbErr := a.Database.Close(); dbErr != nil {
		err = dbErr
	}

	return err
}
