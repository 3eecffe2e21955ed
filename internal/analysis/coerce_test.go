package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseValue(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		kind     ValueKind
		expected float64
	}{
		{name: "integer", raw: "72", kind: NumericValue, expected: 72},
		{name: "decimal", raw: "36.6", kind: NumericValue, expected: 36.6},
		{name: "negative", raw: "-3", kind: NumericValue, expected: -3},
		{name: "whitespace wrapped", raw: " 98 ", kind: NumericValue, expected: 98},
		{name: "duration hours minutes", raw: "PT1H10M", kind: DurationValue, expected: 4200},
		{name: "duration seconds only", raw: "PT90S", kind: DurationValue, expected: 90},
		{name: "duration with days", raw: "P1DT2H", kind: DurationValue, expected: 93600},
		{name: "duration weeks", raw: "P2W", kind: DurationValue, expected: 1209600},
		{name: "duration fractional", raw: "PT0.5H", kind: DurationValue, expected: 1800},
		{name: "duration comma fraction", raw: "PT1,5S", kind: DurationValue, expected: 1.5},
		{name: "not a number", raw: "not-a-number", kind: UnparseableValue},
		{name: "empty", raw: "", kind: UnparseableValue},
		{name: "bare P", raw: "P", kind: UnparseableValue},
		{name: "months unsupported", raw: "P1M", kind: UnparseableValue},
		{name: "trailing digits", raw: "PT10", kind: UnparseableValue},
		{name: "minutes outside time part", raw: "PT1H10M5", kind: UnparseableValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value := ParseValue(tt.raw)

			assert.Equal(t, tt.kind, value.Kind)
			assert.Equal(t, tt.raw, value.Raw)

			num, ok := value.Float()
			if tt.kind == UnparseableValue {
				assert.False(t, ok)
			} else {
				assert.True(t, ok)
				assert.InDelta(t, tt.expected, num, 1e-9)
			}
		})
	}
}
