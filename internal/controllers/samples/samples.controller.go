package samplesController

import (
	"context"
	"time"
	"vitals/config"
	"vitals/internal/analysis"
	"vitals/internal/logger"
	. "vitals/internal/models"
	"vitals/internal/repositories"
	"vitals/internal/services"
)

// SampleController is the query façade over the sample store and the
// iteration ledger, plus the trigger that runs a classification and
// commits it as a new run.
type SampleController struct {
	sampleRepo         repositories.SampleRepository
	outlierRepo        repositories.OutlierRepository
	transactionService *services.TransactionService
	defaultMethod      analysis.Method
	log                logger.Logger
}

func New(
	sampleRepo repositories.SampleRepository,
	outlierRepo repositories.OutlierRepository,
	transactionService *services.TransactionService,
	config config.Config,
) *SampleController {
	defaultMethod, err := analysis.ParseMethod(config.AnalysisDefaultMethod)
	if err != nil {
		defaultMethod = analysis.MethodIQR
	}

	return &SampleController{
		sampleRepo:         sampleRepo,
		outlierRepo:        outlierRepo,
		transactionService: transactionService,
		defaultMethod:      defaultMethod,
		log:                logger.New("SampleController"),
	}
}

// GetSeries returns the user's coerced series for one data type, ascending
// by timestamp. Samples whose value parses as neither a decimal nor an
// ISO-8601 duration are skipped, never errored on.
func (sc *SampleController) GetSeries(
	ctx context.Context,
	email string,
	dataType string,
) ([]DataPoint, error) {
	log := sc.log.Function("GetSeries")

	parsedType, samples, err := sc.loadSamples(ctx, email, dataType)
	if err != nil {
		return nil, err
	}

	series, _ := sc.coerceSeries(samples, parsedType)

	log.Debug("built series", "email", email, "dataType", dataType,
		"samples", len(samples), "points", len(series))
	return series, nil
}

// GetSeriesWithOutliers pairs the coerced series with the X values flagged
// by the latest committed run. Flags on samples that failed coercion are
// dropped so OutliersX always references points present in the series.
func (sc *SampleController) GetSeriesWithOutliers(
	ctx context.Context,
	email string,
	dataType string,
) (SeriesWithOutliers, error) {
	log := sc.log.Function("GetSeriesWithOutliers")

	parsedType, samples, err := sc.loadSamples(ctx, email, dataType)
	if err != nil {
		return SeriesWithOutliers{}, err
	}

	series, sampleIDs := sc.coerceSeries(samples, parsedType)
	result := SeriesWithOutliers{Data: series, OutliersX: []float64{}}

	run, found, err := sc.outlierRepo.LatestRun(ctx, email, parsedType)
	if err != nil {
		return SeriesWithOutliers{}, log.Err("failed to resolve latest run", err,
			"email", email, "dataType", dataType)
	}
	if !found {
		return result, nil
	}

	flagged, err := sc.outlierRepo.FlagsForRun(ctx, email, parsedType, run)
	if err != nil {
		return SeriesWithOutliers{}, log.Err("failed to resolve run flags", err,
			"email", email, "dataType", dataType, "run", run)
	}

	flaggedSet := make(map[int]struct{}, len(flagged))
	for _, id := range flagged {
		flaggedSet[id] = struct{}{}
	}

	for i, sampleID := range sampleIDs {
		if _, ok := flaggedSet[sampleID]; ok {
			result.OutliersX = append(result.OutliersX, series[i].X)
		}
	}

	return result, nil
}

// RunClassification classifies the user's series under the requested
// method (config default when empty) and commits the result as the next
// run for the scope. The allocation and the flag inserts share one
// transaction, so a failed commit leaves no partial run behind.
func (sc *SampleController) RunClassification(
	ctx context.Context,
	email string,
	dataType string,
	methodName string,
) (int, error) {
	log := sc.log.Function("RunClassification")

	method := sc.defaultMethod
	if methodName != "" {
		parsed, err := analysis.ParseMethod(methodName)
		if err != nil {
			return 0, err
		}
		method = parsed
	}

	parsedType, samples, err := sc.loadSamples(ctx, email, dataType)
	if err != nil {
		return 0, err
	}

	series, sampleIDs := sc.coerceSeries(samples, parsedType)

	ys := make([]float64, len(series))
	for i, point := range series {
		ys[i] = point.Y
	}

	flaggedIDs := []int{}
	for _, i := range analysis.FlaggedIndices(ys, method) {
		flaggedIDs = append(flaggedIDs, sampleIDs[i])
	}

	var run int
	err = sc.transactionService.Execute(ctx, func(txCtx context.Context) error {
		committed, err := sc.outlierRepo.CommitRun(
			txCtx, email, parsedType, flaggedIDs, string(method), time.Now().UTC())
		if err != nil {
			return err
		}
		run = committed
		return nil
	})
	if err != nil {
		return 0, log.Err("failed to commit classification run", err,
			"email", email, "dataType", dataType, "method", method)
	}

	log.Info("classification run committed", "email", email, "dataType", dataType,
		"method", method, "run", run, "flagged", len(flaggedIDs), "points", len(series))
	return run, nil
}

func (sc *SampleController) loadSamples(
	ctx context.Context,
	email string,
	dataType string,
) (DataType, []*Sample, error) {
	if email == "" {
		return "", nil, ErrUnauthenticated
	}

	parsedType, err := ParseDataType(dataType)
	if err != nil {
		return "", nil, err
	}

	samples, err := sc.sampleRepo.GetByUserAndType(ctx, email, parsedType)
	if err != nil {
		return "", nil, err
	}

	return parsedType, samples, nil
}

// coerceSeries converts raw samples into chart points, keeping a parallel
// slice of the sample ids that survived coercion.
func (sc *SampleController) coerceSeries(
	samples []*Sample,
	dataType DataType,
) ([]DataPoint, []int) {
	log := sc.log.Function("coerceSeries")

	series := []DataPoint{}
	sampleIDs := []int{}

	for _, sample := range samples {
		value := analysis.ParseValue(sample.Value)
		y, ok := value.Float()
		if !ok {
			log.Debug("skipping unparseable sample",
				"sampleID", sample.ID, "dataType", dataType, "value", sample.Value)
			continue
		}

		series = append(series, DataPoint{X: float64(sample.Time.UnixMilli()) / 1000, Y: y})
		sampleIDs = append(sampleIDs, sample.ID)
	}

	return series, sampleIDs
}
