package repositories

import (
	"context"
	"time"
	"vitals/internal/database"
	"vitals/internal/logger"
	. "vitals/internal/models"
	"vitals/internal/services"

	"gorm.io/gorm"
)

// OutlierRepository is the iteration ledger: each detection run over a
// (user, data type) scope gets the next run number for that scope, and one
// OutlierFlag row per flagged sample. Run numbers are derived from the
// flag rows themselves, through a join against samples, so the scope never
// needs its own counter table.
type OutlierRepository interface {
	// CommitRun allocates the next run number for the scope and inserts the
	// flags under it. Callers wanting all-or-nothing semantics run it inside
	// a TransactionService.Execute callback. An empty flag set returns the
	// allocated number without persisting anything.
	CommitRun(
		ctx context.Context,
		email string,
		dataType DataType,
		sampleIDs []int,
		method string,
		runAt time.Time,
	) (int, error)

	// LatestRun returns the highest committed run number for the scope;
	// found is false when no run has ever flagged anything there.
	LatestRun(ctx context.Context, email string, dataType DataType) (run int, found bool, err error)

	FlagsForRun(ctx context.Context, email string, dataType DataType, run int) ([]int, error)
}

type outlierRepository struct {
	db  database.DB
	log logger.Logger
}

func NewOutlier(db database.DB) OutlierRepository {
	return &outlierRepository{
		db:  db,
		log: logger.New("outlierRepository"),
	}
}

func (r *outlierRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := services.GetTransaction(ctx); ok {
		return tx
	}
	return r.db.SQLWithContext(ctx)
}

func (r *outlierRepository) CommitRun(
	ctx context.Context,
	email string,
	dataType DataType,
	sampleIDs []int,
	method string,
	runAt time.Time,
) (int, error) {
	log := r.log.Function("CommitRun")

	db := r.getDB(ctx)

	latest, _, err := r.latestRunOn(db, email, dataType)
	if err != nil {
		return 0, log.Err("failed to allocate run number", err, "email", email, "dataType", dataType)
	}
	run := latest + 1

	if len(sampleIDs) == 0 {
		log.Info("run flagged no samples", "email", email, "dataType", dataType, "run", run)
		return run, nil
	}

	flags := make([]*OutlierFlag, 0, len(sampleIDs))
	for _, sampleID := range sampleIDs {
		flags = append(flags, &OutlierFlag{
			SampleID:  sampleID,
			RunNumber: run,
			RunAt:     runAt,
			Method:    method,
		})
	}

	if err := db.CreateInBatches(flags, 500).Error; err != nil {
		return 0, log.Err("failed to insert outlier flags", err,
			"email", email, "dataType", dataType, "run", run, "flags", len(flags))
	}

	log.Info("committed outlier run",
		"email", email, "dataType", dataType, "run", run, "flags", len(flags))
	return run, nil
}

func (r *outlierRepository) LatestRun(
	ctx context.Context,
	email string,
	dataType DataType,
) (int, bool, error) {
	run, found, err := r.latestRunOn(r.getDB(ctx), email, dataType)
	if err != nil {
		return 0, false, r.log.Function("LatestRun").
			Err("failed to get latest run", err, "email", email, "dataType", dataType)
	}
	return run, found, nil
}

func (r *outlierRepository) FlagsForRun(
	ctx context.Context,
	email string,
	dataType DataType,
	run int,
) ([]int, error) {
	log := r.log.Function("FlagsForRun")

	var sampleIDs []int
	err := r.getDB(ctx).
		Model(&OutlierFlag{}).
		Joins("JOIN samples ON samples.id = outlier_flags.sample_id").
		Where("samples.user_email = ? AND samples.data_type = ? AND outlier_flags.run_number = ?",
			email, dataType, run).
		Pluck("outlier_flags.sample_id", &sampleIDs).Error
	if err != nil {
		return nil, log.Err("failed to get flags for run", err,
			"email", email, "dataType", dataType, "run", run)
	}

	return sampleIDs, nil
}

func (r *outlierRepository) latestRunOn(
	db *gorm.DB,
	email string,
	dataType DataType,
) (int, bool, error) {
	var latest *int
	err := db.
		Model(&OutlierFlag{}).
		Joins("JOIN samples ON samples.id = outlier_flags.sample_id").
		Where("samples.user_email = ? AND samples.data_type = ?", email, dataType).
		Select("MAX(outlier_flags.run_number)").
		Scan(&latest).Error
	if err != nil {
		return 0, false, err
	}

	if latest == nil {
		return 0, false, nil
	}

	return *latest, true, nil
}
