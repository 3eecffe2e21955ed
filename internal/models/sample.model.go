package models

import "time"

// Sample is one raw observation landed by ingestion. Value stays text
// because the payload shape varies by data type (plain decimal for most
// streams, ISO-8601 duration for sleep session time). Rows are append-only.
type Sample struct {
	BaseModel
	UserEmail string    `gorm:"type:varchar(255);not null;index:idx_samples_user_type_time" json:"userEmail"`
	DataType  DataType  `gorm:"type:varchar(64);not null;index:idx_samples_user_type_time"  json:"dataType"`
	Time      time.Time `gorm:"not null;index:idx_samples_user_type_time"                   json:"time"`
	Value     string    `gorm:"type:text;not null"                                          json:"value"`
}

// OutlierFlag marks one sample as anomalous in one detection run. A sample
// can be flagged in any number of runs but at most once per run. Rows are
// never updated or deleted so historical runs stay queryable.
type OutlierFlag struct {
	BaseModel
	SampleID  int       `gorm:"not null;uniqueIndex:idx_outlier_flags_sample_run" json:"sampleId"`
	RunNumber int       `gorm:"not null;uniqueIndex:idx_outlier_flags_sample_run" json:"runNumber"`
	RunAt     time.Time `gorm:"not null"                                          json:"runAt"`
	Method    string    `gorm:"type:varchar(20);not null"                         json:"method"`
}

// Prediction is an externally computed diagnostic probability for a user,
// versioned by a per-user iteration number. Read-only here.
type Prediction struct {
	BaseModel
	UserEmail     string    `gorm:"type:varchar(255);not null;index" json:"userEmail"`
	DiagnosisName string    `gorm:"type:varchar(255);not null"       json:"diagnosisName"`
	Result        string    `gorm:"type:varchar(64);not null"        json:"result"`
	RunNumber     int       `gorm:"not null"                         json:"runNumber"`
	RunAt         time.Time `gorm:"not null"                         json:"runAt"`
}

// Rating is a single 1..5 service rating per user.
type Rating struct {
	BaseModel
	UserEmail string  `gorm:"type:varchar(255);not null;uniqueIndex" json:"userEmail"`
	Value     float64 `gorm:"not null"                               json:"value"`
}
