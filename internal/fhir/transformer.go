package fhir

import (
	"fmt"
	"time"
	"vitals/internal/analysis"
	"vitals/internal/logger"
	. "vitals/internal/models"

	"github.com/google/uuid"
)

// coding describes how one data type maps onto a LOINC-coded Observation.
type coding struct {
	System     string
	Code       string
	Display    string
	Unit       string
	UnitSystem string
	UnitCode   string
}

var codeMap = map[DataType]coding{
	HeartRateRecord: {
		System: "http://loinc.org", Code: "8867-4", Display: "Heart rate",
		Unit: "beats/minute", UnitSystem: "http://unitsofmeasure.org", UnitCode: "/min",
	},
	StepsRecord: {
		System: "http://loinc.org", Code: "55423-8", Display: "Number of steps",
		Unit: "steps", UnitSystem: "http://unitsofmeasure.org", UnitCode: "{steps}",
	},
	SleepSessionTimeData: {
		System: "http://loinc.org", Code: "75989-8", Display: "Sleep duration",
		Unit: "min", UnitSystem: "http://unitsofmeasure.org", UnitCode: "min",
	},
	SleepSessionData: {
		System: "http://loinc.org", Code: "94602-0", Display: "Sleep stage, total duration",
		Unit: "min", UnitSystem: "http://unitsofmeasure.org", UnitCode: "min",
	},
	BloodOxygenData: {
		System: "http://loinc.org", Code: "59408-5",
		Display: "Oxygen saturation in Arterial blood by Pulse oximetry",
		Unit:    "%", UnitSystem: "http://unitsofmeasure.org", UnitCode: "%",
	},
	BodyTemperatureRecord: {
		System: "http://loinc.org", Code: "8310-5", Display: "Body temperature",
		Unit: "Cel", UnitSystem: "http://unitsofmeasure.org", UnitCode: "Cel",
	},
	BloodPressureRecord: {
		System: "http://loinc.org", Code: "8480-6", Display: "Systolic blood pressure",
		Unit: "mm[Hg]", UnitSystem: "http://unitsofmeasure.org", UnitCode: "mm[Hg]",
	},
	ActiveCaloriesBurnedRecord: {
		System: "http://loinc.org", Code: "55422-1", Display: "Active energy expenditure",
		Unit: "kcal", UnitSystem: "http://unitsofmeasure.org", UnitCode: "kcal",
	},
	BasalMetabolicRateRecord: {
		System: "http://loinc.org", Code: "41987-7", Display: "Basal metabolic rate",
		Unit: "kcal/day", UnitSystem: "http://unitsofmeasure.org", UnitCode: "kcal/d",
	},
	BodyFatRecord: {
		System: "http://loinc.org", Code: "91511-1", Display: "Body fat [Percent]",
		Unit: "%", UnitSystem: "http://unitsofmeasure.org", UnitCode: "%",
	},
	BoneMassRecord: {
		System: "http://loinc.org", Code: "39156-5", Display: "Bone mass",
		Unit: "kg", UnitSystem: "http://unitsofmeasure.org", UnitCode: "kg",
	},
	DistanceRecord: {
		System: "http://loinc.org", Code: "41957-6", Display: "Distance traveled",
		Unit: "km", UnitSystem: "http://unitsofmeasure.org", UnitCode: "km",
	},
	RespiratoryRateRecord: {
		System: "http://loinc.org", Code: "9279-1", Display: "Respiratory rate",
		Unit: "breaths/minute", UnitSystem: "http://unitsofmeasure.org", UnitCode: "/min",
	},
}

// Transformer builds FHIR Observation resources from raw samples as plain
// maps, shaped for the streaming Bundle export.
type Transformer struct {
	log logger.Logger
}

func NewTransformer() *Transformer {
	return &Transformer{log: logger.New("fhir")}
}

// BuildObservation converts one sample. The second return is false when
// the sample cannot be represented: unmapped data type or an unparseable
// value. Duration-coded values are exported in minutes to match the code
// map's unit.
func (t *Transformer) BuildObservation(sample *Sample) (map[string]any, bool) {
	mapping, ok := codeMap[sample.DataType]
	if !ok {
		return nil, false
	}

	value := analysis.ParseValue(sample.Value)
	num, ok := value.Float()
	if !ok {
		t.log.Function("BuildObservation").
			Debug("skipping unparseable sample", "sampleID", sample.ID, "value", sample.Value)
		return nil, false
	}

	if value.Kind == analysis.DurationValue {
		num = num / 60
	}

	return map[string]any{
		"resourceType": "Observation",
		"id":           fmt.Sprintf("%d", sample.ID),
		"status":       "final",
		"code": map[string]any{
			"coding": []map[string]any{{
				"system":  mapping.System,
				"code":    mapping.Code,
				"display": mapping.Display,
			}},
			"text": mapping.Display,
		},
		"subject": map[string]any{
			"identifier": map[string]any{
				"system": "urn:ietf:rfc:5322",
				"value":  sample.UserEmail,
			},
		},
		"effectiveDateTime": sample.Time.UTC().Format(time.RFC3339),
		"valueQuantity": map[string]any{
			"value":  num,
			"unit":   mapping.Unit,
			"system": mapping.UnitSystem,
			"code":   mapping.UnitCode,
		},
	}, true
}

// BuildEntry wraps an Observation as a Bundle entry with a deterministic
// urn:uuid fullUrl derived from the sample id.
func (t *Transformer) BuildEntry(sample *Sample) (map[string]any, bool) {
	observation, ok := t.BuildObservation(sample)
	if !ok {
		return nil, false
	}

	entryID := uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("vitals-sample-%d", sample.ID)))

	return map[string]any{
		"fullUrl":  "urn:uuid:" + entryID.String(),
		"resource": observation,
	}, true
}
