package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Timestamp is an instant that may be missing or unparseable.
// Invalid timestamps order after every valid one.
type Timestamp struct {
	Time  time.Time
	Valid bool
}

// NewTimestamp wraps t; the zero time is treated as missing.
func NewTimestamp(t time.Time) Timestamp {
	if t.IsZero() {
		return Timestamp{}
	}
	return Timestamp{Time: t.UTC(), Valid: true}
}

// ParseTimestamp accepts RFC3339 variants, naive date-times (read as UTC) and
// plain dates. Anything else yields an invalid Timestamp.
func ParseTimestamp(raw string) Timestamp {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Timestamp{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return NewTimestamp(t)
		}
	}
	return Timestamp{}
}

// Compare orders a before b by instant. Invalid values are greatest and equal
// to each other.
func (t Timestamp) Compare(other Timestamp) int {
	switch {
	case !t.Valid && !other.Valid:
		return 0
	case !t.Valid:
		return 1
	case !other.Valid:
		return -1
	}
	return t.Time.Compare(other.Time)
}

// UnmarshalJSON never fails: strings are parsed, numbers are epoch
// milliseconds, anything else decodes as invalid.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*t = Timestamp{}
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil
		}
		*t = ParseTimestamp(raw)
		return nil
	}
	if ms, err := strconv.ParseInt(string(data), 10, 64); err == nil {
		*t = NewTimestamp(time.UnixMilli(ms))
	}
	return nil
}

// MarshalJSON writes RFC3339 with sub-second precision for valid values and
// null otherwise.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if !t.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}
