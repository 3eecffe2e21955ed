package models

// DataPoint is one element of a coerced series: X is the unix timestamp,
// Y the numeric reading. Field names match the wire contract of the
// frontend chart.
type DataPoint struct {
	X float64 `json:"X"`
	Y float64 `json:"Y"`
}

// SeriesWithOutliers pairs a coerced series with the X values flagged in
// the latest detection run. OutliersX always references a subset of the
// series' X values.
type SeriesWithOutliers struct {
	Data      []DataPoint `json:"data"`
	OutliersX []float64   `json:"outliersX"`
}

// PredictionView is the client-facing shape of a Prediction row.
type PredictionView struct {
	DiagnosisName string `json:"diagnosisName"`
	Result        string `json:"result"`
}

// RawSampleMessage is one ingestion payload as consumed from the raw data
// topic. Seq and Total describe the message's position in its provider
// sync job and drive the percent-complete push; both zero means the
// producer sent no progress information.
type RawSampleMessage struct {
	UserEmail string `json:"userEmail"`
	DataType  string `json:"dataType"`
	Time      string `json:"time"`
	Value     string `json:"value"`
	Source    string `json:"source"`
	Seq       int    `json:"seq"`
	Total     int    `json:"total"`
}

// ProgressUpdate reports percent-complete of a background ingestion job
// for one user, relayed to that user's websocket connections.
type ProgressUpdate struct {
	UserEmail string  `json:"userEmail"`
	Source    string  `json:"source"`
	Progress  float64 `json:"progress"`
}
