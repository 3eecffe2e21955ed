package repositories

import (
	"context"
	"fmt"
	"time"
	"vitals/internal/database"
	"vitals/internal/logger"
	. "vitals/internal/models"
	"vitals/internal/services"

	"gorm.io/gorm"
)

const SERIES_CACHE_EXPIRY = 5 * time.Minute

// SampleRepository is the landing point for ingestion and the read path
// for every series consumer. Samples are append-only: no update or delete
// methods exist on purpose.
type SampleRepository interface {
	Append(ctx context.Context, sample *Sample) error
	CreateBatch(ctx context.Context, samples []*Sample, batchSize int) error
	GetByUserAndType(ctx context.Context, email string, dataType DataType) ([]*Sample, error)
	GetByUserAfterID(ctx context.Context, email string, afterID, limit int) ([]*Sample, error)
}

type sampleRepository struct {
	db  database.DB
	log logger.Logger
}

func NewSample(db database.DB) SampleRepository {
	return &sampleRepository{
		db:  db,
		log: logger.New("sampleRepository"),
	}
}

func (r *sampleRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := services.GetTransaction(ctx); ok {
		return tx
	}
	return r.db.SQLWithContext(ctx)
}

func (r *sampleRepository) Append(ctx context.Context, sample *Sample) error {
	log := r.log.Function("Append")

	if err := r.getDB(ctx).Create(sample).Error; err != nil {
		return log.Err("failed to append sample", err, "sample", sample)
	}

	r.invalidateSeriesCache(ctx, sample.UserEmail, sample.DataType)

	return nil
}

func (r *sampleRepository) CreateBatch(ctx context.Context, samples []*Sample, batchSize int) error {
	log := r.log.Function("CreateBatch")

	if len(samples) == 0 {
		return log.Error("empty sample batch provided")
	}

	if batchSize <= 0 {
		batchSize = 500
	}

	if err := r.getDB(ctx).CreateInBatches(samples, batchSize).Error; err != nil {
		return log.Err("failed to create sample batch", err,
			"totalRecords", len(samples), "batchSize", batchSize)
	}

	seen := map[string]struct{}{}
	for _, sample := range samples {
		key := seriesCacheKey(sample.UserEmail, sample.DataType)
		if _, done := seen[key]; done {
			continue
		}
		seen[key] = struct{}{}
		r.invalidateSeriesCache(ctx, sample.UserEmail, sample.DataType)
	}

	return nil
}

// GetByUserAndType returns the user's samples of one type ascending by
// timestamp, insertion id breaking ties.
func (r *sampleRepository) GetByUserAndType(
	ctx context.Context,
	email string,
	dataType DataType,
) ([]*Sample, error) {
	log := r.log.Function("GetByUserAndType")

	var samples []*Sample
	if found, _ := database.NewCacheBuilder(r.db.Cache.Series, seriesCacheKey(email, dataType)).
		WithContext(ctx).
		Get(&samples); found {
		return samples, nil
	}

	err := r.getDB(ctx).
		Where("user_email = ? AND data_type = ?", email, dataType).
		Order("time ASC, id ASC").
		Find(&samples).Error
	if err != nil {
		return nil, log.Err("failed to get samples", err, "email", email, "dataType", dataType)
	}

	if err := database.NewCacheBuilder(r.db.Cache.Series, seriesCacheKey(email, dataType)).
		WithStruct(samples).
		WithTTL(SERIES_CACHE_EXPIRY).
		WithContext(ctx).
		Set(); err != nil {
		log.Warn("failed to cache series", "email", email, "dataType", dataType, "error", err)
	}

	return samples, nil
}

// GetByUserAfterID reads one keyset page across all of a user's samples,
// ordered by id. Used by the streaming export.
func (r *sampleRepository) GetByUserAfterID(
	ctx context.Context,
	email string,
	afterID, limit int,
) ([]*Sample, error) {
	log := r.log.Function("GetByUserAfterID")

	var samples []*Sample
	err := r.getDB(ctx).
		Where("user_email = ? AND id > ?", email, afterID).
		Order("id ASC").
		Limit(limit).
		Find(&samples).Error
	if err != nil {
		return nil, log.Err("failed to get sample page", err,
			"email", email, "afterID", afterID, "limit", limit)
	}

	return samples, nil
}

func (r *sampleRepository) invalidateSeriesCache(ctx context.Context, email string, dataType DataType) {
	if err := database.NewCacheBuilder(r.db.Cache.Series, seriesCacheKey(email, dataType)).
		WithContext(ctx).
		Delete(); err != nil {
		r.log.Function("invalidateSeriesCache").
			Warn("failed to invalidate series cache", "email", email, "dataType", dataType, "error", err)
	}
}

func seriesCacheKey(email string, dataType DataType) string {
	return fmt.Sprintf("series:%s:%s", email, dataType)
}
