package ratingsController

import (
	"context"
	"vitals/internal/logger"
	. "vitals/internal/models"
	"vitals/internal/repositories"
)

type RatingController struct {
	ratingRepo repositories.RatingRepository
	log        logger.Logger
}

func New(ratingRepo repositories.RatingRepository) *RatingController {
	return &RatingController{
		ratingRepo: ratingRepo,
		log:        logger.New("RatingController"),
	}
}

// GetMy returns the caller's current rating; ErrNotFound when they have
// never rated.
func (rc *RatingController) GetMy(ctx context.Context, email string) (float64, error) {
	if email == "" {
		return 0, ErrUnauthenticated
	}

	rating, err := rc.ratingRepo.GetByEmail(ctx, email)
	if err != nil {
		return 0, err
	}

	return rating.Value, nil
}

// Submit stores or replaces the caller's rating. Accepted range is 1..5.
func (rc *RatingController) Submit(ctx context.Context, email string, value float64) error {
	log := rc.log.Function("Submit")

	if email == "" {
		return ErrUnauthenticated
	}

	if value < 1 || value > 5 {
		return ErrInvalidRating
	}

	rating := &Rating{UserEmail: email, Value: value}
	if err := rc.ratingRepo.Upsert(ctx, rating); err != nil {
		return log.Err("failed to save rating", err, "email", email)
	}

	return nil
}
