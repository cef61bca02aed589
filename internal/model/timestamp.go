package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// isoLayout matches what JavaScript's Date.prototype.toISOString produces.
const isoLayout = "2006-01-02T15:04:05.000Z"

var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Timestamp is a nullable point in time decoded leniently: text that does not
// parse is kept in Raw with Valid set to false instead of failing the decode.
type Timestamp struct {
	Time  time.Time
	Raw   string
	Valid bool
}

func At(t time.Time) Timestamp {
	return Timestamp{Time: t, Valid: true}
}

// IsNull reports whether the value was absent or JSON null.
func (ts Timestamp) IsNull() bool {
	return !ts.Valid && ts.Raw == ""
}

func (ts Timestamp) Ptr() *time.Time {
	if !ts.Valid {
		return nil
	}
	t := ts.Time
	return &t
}

func (ts *Timestamp) UnmarshalJSON(b []byte) error {
	*ts = Timestamp{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}

	if b[0] != '"' {
		// Numbers are epoch milliseconds.
		ts.Raw = string(b)
		if ms, err := strconv.ParseFloat(ts.Raw, 64); err == nil {
			ts.Time = time.UnixMilli(int64(ms))
			ts.Valid = true
		}
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	ts.Raw = s
	if t, ok := ParseTime(s); ok {
		ts.Time = t
		ts.Valid = true
	}
	return nil
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	switch {
	case ts.Valid:
		return json.Marshal(FormatISO(ts.Time))
	case ts.Raw != "":
		return json.Marshal(ts.Raw)
	default:
		return []byte("null"), nil
	}
}

// ParseTime accepts RFC 3339 (fractional seconds optional) and a handful of
// zone-less layouts interpreted in the local zone.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatISO renders t in UTC with millisecond precision.
func FormatISO(t time.Time) string {
	return t.UTC().Format(isoLayout)
}
