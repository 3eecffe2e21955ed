package repositories

import (
	"context"
	"errors"
	"vitals/internal/database"
	"vitals/internal/logger"
	. "vitals/internal/models"
	"vitals/internal/services"

	"gorm.io/gorm"
)

type RatingRepository interface {
	// GetByEmail returns ErrNotFound when the user has never rated.
	GetByEmail(ctx context.Context, email string) (*Rating, error)
	Upsert(ctx context.Context, rating *Rating) error
}

type ratingRepository struct {
	db  database.DB
	log logger.Logger
}

func NewRating(db database.DB) RatingRepository {
	return &ratingRepository{
		db:  db,
		log: logger.New("ratingRepository"),
	}
}

func (r *ratingRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := services.GetTransaction(ctx); ok {
		return tx
	}
	return r.db.SQLWithContext(ctx)
}

func (r *ratingRepository) GetByEmail(ctx context.Context, email string) (*Rating, error) {
	log := r.log.Function("GetByEmail")

	var rating Rating
	err := r.getDB(ctx).First(&rating, "user_email = ?", email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, log.Err("failed to get rating", err, "email", email)
	}

	return &rating, nil
}

func (r *ratingRepository) Upsert(ctx context.Context, rating *Rating) error {
	log := r.log.Function("Upsert")

	var existing Rating
	err := r.getDB(ctx).First(&existing, "user_email = ?", rating.UserEmail).Error
	switch {
	case err == nil:
		existing.Value = rating.Value
		if err := r.getDB(ctx).Save(&existing).Error; err != nil {
			return log.Err("failed to update rating", err, "email", rating.UserEmail)
		}
		rating.ID = existing.ID
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := r.getDB(ctx).Create(rating).Error; err != nil {
			return log.Err("failed to create rating", err, "email", rating.UserEmail)
		}
	default:
		return log.Err("failed to look up rating", err, "email", rating.UserEmail)
	}

	return nil
}
