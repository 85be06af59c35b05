package catalog

import "time"

// BookingFallbackDuration is the effective length of a booking that arrives
// without an end date. Bookings are short single-session slots, so a fixed
// one hour window stands in for the missing bound.
const BookingFallbackDuration = time.Hour

// instantLayouts are tried in order when parsing upstream date strings.
var instantLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseInstant parses a date-like string into a point in time. The second
// return value is false when the input does not describe a valid calendar
// instant; parsing never fails with an error.
func ParseInstant(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range instantLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DayStart truncates t to 00:00:00 of its calendar day in loc. A nil location
// defaults to UTC.
func DayStart(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// FallbackEnd returns the effective end of a booking that has no end date.
func FallbackEnd(start time.Time) time.Time {
	return start.Add(BookingFallbackDuration)
}

// EffectiveEnd resolves a booking's end bound, substituting the fallback
// window when the end date is absent or unparseable.
func (b Booking) EffectiveEnd() time.Time {
	if b.EndDate.IsSet() {
		return b.EndDate.Time
	}
	return FallbackEnd(b.StartDate.Time)
}
