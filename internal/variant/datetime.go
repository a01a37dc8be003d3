package variant

import (
	"strconv"
	"strings"
	"time"

	licerrors "licseal/internal/errors"
)

// Unix epoch bounds matching a year range of 0001..9999. A numeric value
// inside the seconds range is always taken as seconds; milliseconds are
// only tried once the seconds interpretation is out of range.
const (
	minEpochSeconds = -62135596800
	maxEpochSeconds = 253402300799
	minEpochMillis  = minEpochSeconds * 1000
	maxEpochMillis  = maxEpochSeconds*1000 + 999
)

// Local date-time layouts accepted without a zone designator. Values are
// assumed to be UTC.
var localDateTimeLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"20060102T150405",
}

// Date-only layouts, producing start-of-day UTC.
var dateOnlyLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"02-Jan-2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"20060102",
}

// Last-resort layouts for the general best-effort parse. Layouts without
// a zone are taken as UTC.
var bestEffortLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC850,
	time.UnixDate,
	time.ANSIC,
	"2006-01-02 15:04:05 -0700",
	"2006-01-02T15:04:05-0700",
	"2 Jan 2006 15:04:05",
	"2 Jan 2006",
}

// CoerceTime normalizes an arbitrary value into a UTC instant, trying a
// fixed ladder of interpretations in order. Earlier branches win even when
// a later branch could also parse the value, so the integer 2027 is the
// year 2027, never an epoch offset.
func CoerceTime(v Value) (time.Time, error) {
	switch v.kind {
	case KindTime:
		return v.timeVal.UTC(), nil
	case KindInt, KindFloat:
		return coerceNumericTime(v)
	case KindString:
		return coerceStringTime(v.strVal)
	default:
		return time.Time{}, licerrors.TypeConversion(DescribeType(v), "datetime")
	}
}

func coerceNumericTime(v Value) (time.Time, error) {
	ok, f := IsNumeric(v)
	if !ok {
		return time.Time{}, licerrors.TypeConversion(v.Text(), "datetime")
	}

	// Small integral values are bare years: 2027 means Jan 1 2027 UTC.
	// This deliberately shadows near-epoch second timestamps.
	if f == float64(int64(f)) && f >= 1 && f <= 9999 {
		return time.Date(int(f), time.January, 1, 0, 0, 0, 0, time.UTC), nil
	}

	if !IsIntegral(v) {
		return time.Time{}, licerrors.TypeConversion(v.Text(), "datetime")
	}
	return epochTime(int64(f), v.Text())
}

// epochTime interprets n as Unix epoch seconds first, then milliseconds.
func epochTime(n int64, original string) (time.Time, error) {
	if n >= minEpochSeconds && n <= maxEpochSeconds {
		return time.Unix(n, 0).UTC(), nil
	}
	if n >= minEpochMillis && n <= maxEpochMillis {
		return time.UnixMilli(n).UTC(), nil
	}
	return time.Time{}, licerrors.TypeConversion(original, "datetime")
}

func coerceStringTime(s string) (time.Time, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return time.Time{}, licerrors.TypeConversion(s, "datetime")
	}

	// Strict ISO-8601 instant, with or without a zone offset.
	if t, err := time.Parse(time.RFC3339Nano, trimmed); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, trimmed); err == nil {
		return t.UTC(), nil
	}

	for _, layout := range localDateTimeLayouts {
		if t, err := time.ParseInLocation(layout, trimmed, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	for _, layout := range dateOnlyLayouts {
		if t, err := time.ParseInLocation(layout, trimmed, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}

	// Numeric-looking strings re-enter the numeric ladder, so "2027" is a
	// year exactly like the integer 2027.
	if n, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return coerceNumericTime(Int(n))
	}

	for _, layout := range bestEffortLayouts {
		if t, err := time.ParseInLocation(layout, trimmed, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, licerrors.TypeConversion(s, "datetime")
}
