package repositories

import (
	"context"
	"vitals/internal/database"
	"vitals/internal/logger"
	. "vitals/internal/models"
	"vitals/internal/services"

	"gorm.io/gorm"
)

// PredictionRepository reads the ledger an external predictor writes.
// Iterations are numbered per user, independently of outlier runs.
type PredictionRepository interface {
	// LatestForUser returns the rows of the user's highest iteration,
	// ordered by diagnosis name. A user with no predictions yet gets an
	// empty slice, not an error.
	LatestForUser(ctx context.Context, email string) ([]*Prediction, error)

	CreateBatch(ctx context.Context, predictions []*Prediction, batchSize int) error
}

type predictionRepository struct {
	db  database.DB
	log logger.Logger
}

func NewPrediction(db database.DB) PredictionRepository {
	return &predictionRepository{
		db:  db,
		log: logger.New("predictionRepository"),
	}
}

func (r *predictionRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := services.GetTransaction(ctx); ok {
		return tx
	}
	return r.db.SQLWithContext(ctx)
}

func (r *predictionRepository) LatestForUser(ctx context.Context, email string) ([]*Prediction, error) {
	log := r.log.Function("LatestForUser")

	subQuery := r.getDB(ctx).
		Model(&Prediction{}).
		Select("MAX(run_number)").
		Where("user_email = ?", email)

	var predictions []*Prediction
	err := r.getDB(ctx).
		Where("user_email = ? AND run_number = (?)", email, subQuery).
		Order("diagnosis_name ASC").
		Find(&predictions).Error
	if err != nil {
		return nil, log.Err("failed to get latest predictions", err, "email", email)
	}

	return predictions, nil
}

func (r *predictionRepository) CreateBatch(
	ctx context.Context,
	predictions []*Prediction,
	batchSize int,
) error {
	log := r.log.Function("CreateBatch")

	if len(predictions) == 0 {
		return log.Error("empty prediction batch provided")
	}

	if batchSize <= 0 {
		batchSize = 500
	}

	if err := r.getDB(ctx).CreateInBatches(predictions, batchSize).Error; err != nil {
		return log.Err("failed to create prediction batch", err, "totalRecords", len(predictions))
	}

	return nil
}
