package fhir

import (
	"fmt"
	"testing"
	"time"
	. "vitals/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func heartRateSample(id int, value string) *Sample {
	return &Sample{
		BaseModel: BaseModel{ID: id},
		UserEmail: "ada@example.com",
		DataType:  HeartRateRecord,
		Time:      time.Date(2026, 3, 1, 8, 30, 0, 0, time.UTC),
		Value:     value,
	}
}

func TestBuildObservation_HeartRate(t *testing.T) {
	transformer := NewTransformer()

	observation, ok := transformer.BuildObservation(heartRateSample(42, "72"))
	require.True(t, ok)

	assert.Equal(t, "Observation", observation["resourceType"])
	assert.Equal(t, "42", observation["id"])
	assert.Equal(t, "final", observation["status"])
	assert.Equal(t, "2026-03-01T08:30:00Z", observation["effectiveDateTime"])

	code := observation["code"].(map[string]any)
	coding := code["coding"].([]map[string]any)[0]
	assert.Equal(t, "http://loinc.org", coding["system"])
	assert.Equal(t, "8867-4", coding["code"])

	subject := observation["subject"].(map[string]any)
	identifier := subject["identifier"].(map[string]any)
	assert.Equal(t, "ada@example.com", identifier["value"])

	quantity := observation["valueQuantity"].(map[string]any)
	assert.Equal(t, 72.0, quantity["value"])
	assert.Equal(t, "/min", quantity["code"])
}

func TestBuildObservation_DurationExportedInMinutes(t *testing.T) {
	transformer := NewTransformer()

	sample := &Sample{
		BaseModel: BaseModel{ID: 7},
		UserEmail: "ada@example.com",
		DataType:  SleepSessionTimeData,
		Time:      time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
		Value:     "PT7H30M",
	}

	observation, ok := transformer.BuildObservation(sample)
	require.True(t, ok)

	quantity := observation["valueQuantity"].(map[string]any)
	assert.Equal(t, 450.0, quantity["value"])
	assert.Equal(t, "min", quantity["unit"])
}

func TestBuildObservation_SkipsUnparseableValue(t *testing.T) {
	transformer := NewTransformer()

	_, ok := transformer.BuildObservation(heartRateSample(1, "garbage"))
	assert.False(t, ok)
}

func TestBuildObservation_SkipsUnmappedDataType(t *testing.T) {
	transformer := NewTransformer()

	sample := &Sample{
		BaseModel: BaseModel{ID: 1},
		UserEmail: "ada@example.com",
		DataType:  StressLevelRecord,
		Time:      time.Now().UTC(),
		Value:     "40",
	}

	_, ok := transformer.BuildObservation(sample)
	assert.False(t, ok)
}

func TestBuildEntry_FullUrlIsDeterministic(t *testing.T) {
	transformer := NewTransformer()

	first, ok := transformer.BuildEntry(heartRateSample(42, "72"))
	require.True(t, ok)
	second, ok := transformer.BuildEntry(heartRateSample(42, "72"))
	require.True(t, ok)

	assert.Equal(t, first["fullUrl"], second["fullUrl"])

	expected := uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("vitals-sample-%d", 42)))
	assert.Equal(t, "urn:uuid:"+expected.String(), first["fullUrl"])

	other, ok := transformer.BuildEntry(heartRateSample(43, "72"))
	require.True(t, ok)
	assert.NotEqual(t, first["fullUrl"], other["fullUrl"])
}
