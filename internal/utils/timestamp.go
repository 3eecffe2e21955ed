package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type TimestampFormat string

const (
	FormatRFC3339       TimestampFormat = time.RFC3339
	FormatRFC3339Nano   TimestampFormat = time.RFC3339Nano
	FormatISO8601Local  TimestampFormat = "2006-01-02T15:04:05"
	FormatSpaceDateTime TimestampFormat = "2006-01-02 15:04:05"
	FormatISO8601Date   TimestampFormat = "2006-01-02"
	FormatUnixSeconds   TimestampFormat = "unix"
	FormatUnixMillis    TimestampFormat = "unixms"
)

// layoutFormats are tried in order; the unix forms are handled separately
// because they are numeric rather than layout-driven.
var layoutFormats = []TimestampFormat{
	FormatRFC3339,
	FormatRFC3339Nano,
	FormatISO8601Local,
	FormatSpaceDateTime,
	FormatISO8601Date,
}

type ParsedTimestamp struct {
	Time   time.Time
	Format TimestampFormat
}

// ParseTimestamp accepts the timestamp shapes that wearable exporters
// actually produce: RFC 3339 with or without zone and fractional seconds,
// a bare date, and integer unix epochs in seconds or milliseconds.
// Times without a zone are taken as UTC.
func ParseTimestamp(value string) (ParsedTimestamp, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return ParsedTimestamp{}, fmt.Errorf("empty timestamp")
	}

	if epoch, err := strconv.ParseInt(value, 10, 64); err == nil {
		return parseEpoch(epoch), nil
	}

	for _, format := range layoutFormats {
		parsed, err := time.Parse(string(format), value)
		if err != nil {
			continue
		}
		return ParsedTimestamp{Time: parsed.UTC(), Format: format}, nil
	}

	return ParsedTimestamp{}, fmt.Errorf("unrecognized timestamp %q", value)
}

// Epochs past the year 2603 in seconds are read as milliseconds, which
// covers every device epoch we have seen without an explicit unit field.
const millisCutoff = 20_000_000_000

func parseEpoch(epoch int64) ParsedTimestamp {
	if epoch > millisCutoff {
		return ParsedTimestamp{
			Time:   time.UnixMilli(epoch).UTC(),
			Format: FormatUnixMillis,
		}
	}
	return ParsedTimestamp{
		Time:   time.Unix(epoch, 0).UTC(),
		Format: FormatUnixSeconds,
	}
}
