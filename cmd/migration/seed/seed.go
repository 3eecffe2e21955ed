package seed

import (
	"fmt"
	"math/rand"
	"time"
	"vitals/config"
	"vitals/internal/logger"
	. "vitals/internal/models"

	"gorm.io/gorm"
)

type valueRange struct {
	normalMin, normalMax int
	outlierRanges        [][2]int
}

// Ranges mirror the demo data generator the frontend was built against:
// mostly in-band readings with ~5% of points pushed outside the
// physiological range so a fresh database has something to flag.
var seedRanges = map[DataType]valueRange{
	HeartRateRecord:       {60, 100, [][2]int{{30, 59}, {101, 140}}},
	BloodOxygenData:       {90, 100, [][2]int{{70, 89}}},
	StressLevelRecord:     {0, 100, [][2]int{{101, 120}}},
	RespiratoryRateRecord: {12, 20, [][2]int{{6, 11}, {21, 30}}},
	StepsRecord:           {2000, 12000, [][2]int{{20000, 40000}}},
	BodyTemperatureRecord: {36, 37, [][2]int{{39, 41}}},
}

const outlierProbability = 0.05

func Seed(db *gorm.DB, config config.Config, log logger.Logger) error {
	log = log.Function("Seed")
	log.Info("Seeding development data")

	emails := []string{
		"ada.lovelace@example.com",
		"grace.hopper@example.com",
	}

	for _, email := range emails {
		var existing Sample
		if err := db.First(&existing, "user_email = ?", email).Error; err == nil {
			log.Info("Samples already exist", "email", email)
			continue
		}

		if err := seedSamples(db, email, log); err != nil {
			return err
		}

		if err := seedSleepSessions(db, email, log); err != nil {
			return err
		}

		if err := seedPredictions(db, email, log); err != nil {
			return err
		}
	}

	return nil
}

func seedSamples(db *gorm.DB, email string, log logger.Logger) error {
	base := time.Now().UTC().Add(-30 * 24 * time.Hour)

	for dataType, ranges := range seedRanges {
		points := 500 + rand.Intn(2000)

		samples := make([]*Sample, 0, points)
		for i := 0; i < points; i++ {
			min, max := ranges.normalMin, ranges.normalMax
			if rand.Float64() < outlierProbability {
				pick := ranges.outlierRanges[rand.Intn(len(ranges.outlierRanges))]
				min, max = pick[0], pick[1]
			}

			samples = append(samples, &Sample{
				UserEmail: email,
				DataType:  dataType,
				Time:      base.Add(time.Duration(i) * time.Hour),
				Value:     fmt.Sprintf("%d", min+rand.Intn(max-min+1)),
			})
		}

		if err := db.CreateInBatches(samples, 500).Error; err != nil {
			return log.Err("failed to seed samples", err, "email", email, "dataType", dataType)
		}
		log.Info("Seeded samples", "email", email, "dataType", dataType, "count", points)
	}

	return nil
}

func seedSleepSessions(db *gorm.DB, email string, log logger.Logger) error {
	base := time.Now().UTC().Add(-30 * 24 * time.Hour)

	samples := make([]*Sample, 0, 30)
	for day := 0; day < 30; day++ {
		hours := 5 + rand.Intn(4)
		minutes := rand.Intn(60)

		samples = append(samples, &Sample{
			UserEmail: email,
			DataType:  SleepSessionTimeData,
			Time:      base.Add(time.Duration(day) * 24 * time.Hour),
			Value:     fmt.Sprintf("PT%dH%dM", hours, minutes),
		})
	}

	if err := db.CreateInBatches(samples, 500).Error; err != nil {
		return log.Err("failed to seed sleep sessions", err, "email", email)
	}
	log.Info("Seeded sleep sessions", "email", email, "count", len(samples))

	return nil
}

func seedPredictions(db *gorm.DB, email string, log logger.Logger) error {
	now := time.Now().UTC()

	predictions := []*Prediction{
		{UserEmail: email, DiagnosisName: "Arrhythmia", Result: "0.12", RunNumber: 1, RunAt: now},
		{UserEmail: email, DiagnosisName: "Hypertension", Result: "0.34", RunNumber: 1, RunAt: now},
		{UserEmail: email, DiagnosisName: "Sleep apnea", Result: "0.08", RunNumber: 1, RunAt: now},
	}

	for _, prediction := range predictions {
		if err := db.Create(prediction).Error; err != nil {
			return log.Err("failed to seed prediction", err, "email", email)
		}
	}
	log.Info("Seeded predictions", "email", email, "count", len(predictions))

	return nil
}
