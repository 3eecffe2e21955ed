package models

import "sort"

// DataType identifies a health/fitness metric stream. The core treats the
// value as opaque beyond membership validation.
type DataType string

const (
	HeartRateRecord            DataType = "HeartRateRecord"
	StepsRecord                DataType = "StepsRecord"
	SleepSessionData           DataType = "SleepSessionData"
	SleepSessionTimeData       DataType = "SleepSessionTimeData"
	BloodOxygenData            DataType = "BloodOxygenData"
	BodyTemperatureRecord      DataType = "BodyTemperatureRecord"
	BloodPressureRecord        DataType = "BloodPressureRecord"
	ActiveCaloriesBurnedRecord DataType = "ActiveCaloriesBurnedRecord"
	BasalMetabolicRateRecord   DataType = "BasalMetabolicRateRecord"
	BodyFatRecord              DataType = "BodyFatRecord"
	BoneMassRecord             DataType = "BoneMassRecord"
	DistanceRecord             DataType = "DistanceRecord"
	RespiratoryRateRecord      DataType = "RespiratoryRateRecord"
	StressLevelRecord          DataType = "StressLevelRecord"
)

var knownDataTypes = map[DataType]struct{}{
	HeartRateRecord:            {},
	StepsRecord:                {},
	SleepSessionData:           {},
	SleepSessionTimeData:       {},
	BloodOxygenData:            {},
	BodyTemperatureRecord:      {},
	BloodPressureRecord:        {},
	ActiveCaloriesBurnedRecord: {},
	BasalMetabolicRateRecord:   {},
	BodyFatRecord:              {},
	BoneMassRecord:             {},
	DistanceRecord:             {},
	RespiratoryRateRecord:      {},
	StressLevelRecord:          {},
}

func (d DataType) Valid() bool {
	_, ok := knownDataTypes[d]
	return ok
}

func ParseDataType(s string) (DataType, error) {
	dataType := DataType(s)
	if !dataType.Valid() {
		return "", ErrInvalidDataType
	}
	return dataType, nil
}

// AllDataTypes returns the recognized types in name order.
func AllDataTypes() []DataType {
	types := make([]DataType, 0, len(knownDataTypes))
	for dataType := range knownDataTypes {
		types = append(types, dataType)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
