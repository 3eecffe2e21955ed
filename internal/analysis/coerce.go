package analysis

import (
	"strconv"
	"strings"
)

type ValueKind int

const (
	NumericValue ValueKind = iota
	DurationValue
	UnparseableValue
)

// Value is the coerced form of a sample's raw text payload. Raw is kept
// for logging when the payload matches neither supported encoding.
type Value struct {
	Kind ValueKind
	Num  float64
	Raw  string
}

// Float returns the numeric reading and whether the value is usable in a
// series. Durations are expressed in total seconds.
func (v Value) Float() (float64, bool) {
	if v.Kind == UnparseableValue {
		return 0, false
	}
	return v.Num, true
}

// ParseValue coerces a raw sample payload. Two encodings are recognized:
// plain decimal strings and ISO-8601 durations (PT1H10M). Anything else is
// reported unparseable; the caller skips such samples rather than failing.
func ParseValue(raw string) Value {
	trimmed := strings.TrimSpace(raw)

	if num, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return Value{Kind: NumericValue, Num: num, Raw: raw}
	}

	if seconds, ok := parseISODuration(trimmed); ok {
		return Value{Kind: DurationValue, Num: seconds, Raw: raw}
	}

	return Value{Kind: UnparseableValue, Raw: raw}
}

// parseISODuration handles the day/time subset of ISO-8601 durations:
// P[nW][nD][T[nH][nM][nS]], with decimal fractions allowed. Durations are
// folded to total seconds with days * 86400 + the time components. Year and
// month designators have no fixed length in seconds and are rejected.
func parseISODuration(s string) (float64, bool) {
	if len(s) < 2 || (s[0] != 'P' && s[0] != 'p') {
		return 0, false
	}

	rest := s[1:]
	inTime := false
	sawComponent := false
	var total float64

	for len(rest) > 0 {
		if rest[0] == 'T' || rest[0] == 't' {
			if inTime {
				return 0, false
			}
			inTime = true
			rest = rest[1:]
			continue
		}

		end := 0
		for end < len(rest) && (rest[end] >= '0' && rest[end] <= '9' || rest[end] == '.' || rest[end] == ',') {
			end++
		}
		if end == 0 || end == len(rest) {
			return 0, false
		}

		num, err := strconv.ParseFloat(strings.ReplaceAll(rest[:end], ",", "."), 64)
		if err != nil {
			return 0, false
		}

		unit := rest[end]
		rest = rest[end+1:]
		sawComponent = true

		switch {
		case !inTime && (unit == 'W' || unit == 'w'):
			total += num * 7 * 86400
		case !inTime && (unit == 'D' || unit == 'd'):
			total += num * 86400
		case inTime && (unit == 'H' || unit == 'h'):
			total += num * 3600
		case inTime && (unit == 'M' || unit == 'm'):
			total += num * 60
		case inTime && (unit == 'S' || unit == 's'):
			total += num
		default:
			return 0, false
		}
	}

	if !sawComponent {
		return 0, false
	}

	return total, true
}
