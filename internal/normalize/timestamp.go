package normalize

import (
	"time"
)

const displayLayout = "2006-01-02 15:04"

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// Timestamp is an optional upstream date-time. Unparseable values keep their raw text.
type Timestamp struct {
	raw    string
	parsed time.Time
	ok     bool
}

func ParseTimestamp(raw string) Timestamp {
	if raw == "" {
		return Timestamp{}
	}
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return Timestamp{raw: raw, parsed: t, ok: true}
		}
	}
	return Timestamp{raw: raw}
}

func (t Timestamp) IsSet() bool {
	return t.raw != ""
}

// Time returns the parsed value in the zone it was written in.
func (t Timestamp) Time() (time.Time, bool) {
	return t.parsed, t.ok
}

// String renders "Not set", the wall-clock minute, or the raw value.
func (t Timestamp) String() string {
	switch {
	case t.raw == "":
		return "Not set"
	case t.ok:
		return t.parsed.Format(displayLayout)
	default:
		return t.raw
	}
}
