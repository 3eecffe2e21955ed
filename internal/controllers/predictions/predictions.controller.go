package predictionsController

import (
	"context"
	"vitals/internal/logger"
	. "vitals/internal/models"
	"vitals/internal/repositories"
)

// PredictionController serves the latest externally computed diagnostic
// predictions for a user.
type PredictionController struct {
	predictionRepo repositories.PredictionRepository
	log            logger.Logger
}

func New(predictionRepo repositories.PredictionRepository) *PredictionController {
	return &PredictionController{
		predictionRepo: predictionRepo,
		log:            logger.New("PredictionController"),
	}
}

// GetLatest returns the user's predictions from their highest iteration,
// ordered by diagnosis name. No predictions yet is an empty result, not an
// error.
func (pc *PredictionController) GetLatest(ctx context.Context, email string) ([]PredictionView, error) {
	log := pc.log.Function("GetLatest")

	if email == "" {
		return nil, ErrUnauthenticated
	}

	predictions, err := pc.predictionRepo.LatestForUser(ctx, email)
	if err != nil {
		return nil, log.Err("failed to get predictions", err, "email", email)
	}

	views := []PredictionView{}
	for _, prediction := range predictions {
		views = append(views, PredictionView{
			DiagnosisName: prediction.DiagnosisName,
			Result:        prediction.Result,
		})
	}

	return views, nil
}
