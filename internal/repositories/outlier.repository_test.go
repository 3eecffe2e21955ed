package repositories

import (
	"context"
	"testing"
	"time"
	. "vitals/internal/models"
	"vitals/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedSamples(t *testing.T, repo SampleRepository, email string, dataType DataType, n int) []int {
	t.Helper()

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	samples := make([]*Sample, 0, n)
	for i := 0; i < n; i++ {
		samples = append(samples, &Sample{
			UserEmail: email,
			DataType:  dataType,
			Time:      base.Add(time.Duration(i) * time.Hour),
			Value:     "72",
		})
	}
	require.NoError(t, repo.CreateBatch(context.Background(), samples, 0))

	ids := make([]int, 0, n)
	for _, sample := range samples {
		ids = append(ids, sample.ID)
	}
	return ids
}

func TestOutlierRepository_RunNumbersAreSequential(t *testing.T) {
	db := newTestDB(t)
	sampleRepo := NewSample(db)
	repo := NewOutlier(db)
	ctx := context.Background()

	ids := seedSamples(t, sampleRepo, "ada@example.com", HeartRateRecord, 5)
	runAt := time.Now().UTC()

	run1, err := repo.CommitRun(ctx, "ada@example.com", HeartRateRecord, ids[:2], "iqr", runAt)
	require.NoError(t, err)
	assert.Equal(t, 1, run1)

	run2, err := repo.CommitRun(ctx, "ada@example.com", HeartRateRecord, ids[2:4], "iqr", runAt)
	require.NoError(t, err)
	assert.Equal(t, 2, run2)

	run3, err := repo.CommitRun(ctx, "ada@example.com", HeartRateRecord, ids[4:], "zscore", runAt)
	require.NoError(t, err)
	assert.Equal(t, 3, run3)

	latest, found, err := repo.LatestRun(ctx, "ada@example.com", HeartRateRecord)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 3, latest)
}

func TestOutlierRepository_ScopesNumberIndependently(t *testing.T) {
	db := newTestDB(t)
	sampleRepo := NewSample(db)
	repo := NewOutlier(db)
	ctx := context.Background()

	heartIDs := seedSamples(t, sampleRepo, "ada@example.com", HeartRateRecord, 3)
	stepIDs := seedSamples(t, sampleRepo, "ada@example.com", StepsRecord, 3)
	graceIDs := seedSamples(t, sampleRepo, "grace@example.com", HeartRateRecord, 3)
	runAt := time.Now().UTC()

	run, err := repo.CommitRun(ctx, "ada@example.com", HeartRateRecord, heartIDs[:1], "iqr", runAt)
	require.NoError(t, err)
	assert.Equal(t, 1, run)

	run, err = repo.CommitRun(ctx, "ada@example.com", HeartRateRecord, heartIDs[1:2], "iqr", runAt)
	require.NoError(t, err)
	assert.Equal(t, 2, run)

	// A different data type for the same user starts from 1.
	run, err = repo.CommitRun(ctx, "ada@example.com", StepsRecord, stepIDs[:1], "iqr", runAt)
	require.NoError(t, err)
	assert.Equal(t, 1, run)

	// And so does a different user on the same data type.
	run, err = repo.CommitRun(ctx, "grace@example.com", HeartRateRecord, graceIDs[:1], "iqr", runAt)
	require.NoError(t, err)
	assert.Equal(t, 1, run)
}

func TestOutlierRepository_EmptyRunPersistsNothing(t *testing.T) {
	db := newTestDB(t)
	sampleRepo := NewSample(db)
	repo := NewOutlier(db)
	ctx := context.Background()

	ids := seedSamples(t, sampleRepo, "ada@example.com", HeartRateRecord, 3)
	runAt := time.Now().UTC()

	run, err := repo.CommitRun(ctx, "ada@example.com", HeartRateRecord, nil, "iqr", runAt)
	require.NoError(t, err)
	assert.Equal(t, 1, run)

	_, found, err := repo.LatestRun(ctx, "ada@example.com", HeartRateRecord)
	require.NoError(t, err)
	assert.False(t, found, "a run with no flags leaves no trace")

	// The next run that does flag something gets the number the empty run
	// reported, since nothing was committed under it.
	run, err = repo.CommitRun(ctx, "ada@example.com", HeartRateRecord, ids[:1], "iqr", runAt)
	require.NoError(t, err)
	assert.Equal(t, 1, run)
}

func TestOutlierRepository_FlagsForRun(t *testing.T) {
	db := newTestDB(t)
	sampleRepo := NewSample(db)
	repo := NewOutlier(db)
	ctx := context.Background()

	ids := seedSamples(t, sampleRepo, "ada@example.com", HeartRateRecord, 5)
	runAt := time.Now().UTC()

	_, err := repo.CommitRun(ctx, "ada@example.com", HeartRateRecord, ids[:2], "iqr", runAt)
	require.NoError(t, err)
	run2, err := repo.CommitRun(ctx, "ada@example.com", HeartRateRecord, ids[3:], "zscore", runAt)
	require.NoError(t, err)

	flagged, err := repo.FlagsForRun(ctx, "ada@example.com", HeartRateRecord, run2)
	require.NoError(t, err)
	assert.ElementsMatch(t, ids[3:], flagged)

	flagged, err = repo.FlagsForRun(ctx, "ada@example.com", HeartRateRecord, 1)
	require.NoError(t, err)
	assert.ElementsMatch(t, ids[:2], flagged)
}

func TestOutlierRepository_CommitRunRollsBackAtomically(t *testing.T) {
	db := newTestDB(t)
	sampleRepo := NewSample(db)
	repo := NewOutlier(db)
	txService := services.NewTransactionService(db)
	ctx := context.Background()

	ids := seedSamples(t, sampleRepo, "ada@example.com", HeartRateRecord, 3)
	runAt := time.Now().UTC()

	// A duplicate sample id violates the (sample, run) unique index partway
	// through the insert; the surrounding transaction must erase the rest.
	err := txService.Execute(ctx, func(txCtx context.Context) error {
		_, err := repo.CommitRun(txCtx, "ada@example.com", HeartRateRecord,
			[]int{ids[0], ids[1], ids[1]}, "iqr", runAt)
		return err
	})
	require.Error(t, err)

	_, found, err := repo.LatestRun(ctx, "ada@example.com", HeartRateRecord)
	require.NoError(t, err)
	assert.False(t, found, "failed run must not leave partial flags behind")
}
