package hours

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

func LoadLocation(timezone string) (*time.Location, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %s: %w", timezone, err)
	}
	return loc, nil
}

// DayKey is the zero padded local calendar date of t, e.g. "2025-01-31".
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(dateLayout)
}

// ParseDay parses a "YYYY-MM-DD" key into local midnight of that date.
func ParseDay(key string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, key, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", key, err)
	}
	return t, nil
}

func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// NextDay moves to local midnight of the following calendar date,
// which is not always 24 hours away.
func NextDay(t time.Time, loc *time.Location) time.Time {
	return StartOfDay(t, loc).AddDate(0, 0, 1)
}

// Length of the local calendar day of t: 23, 24 or 25 hours.
func Length(t time.Time, loc *time.Location) time.Duration {
	start := StartOfDay(t, loc)
	return NextDay(t, loc).Sub(start)
}

// IsoWeekday is 1 for Monday through 7 for Sunday, in the local time of t.
func IsoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// HourStart truncates t to the start of its clock hour. Zones with
// sub-hour offsets are not supported.
func HourStart(t time.Time) time.Time {
	return t.Truncate(time.Hour).In(t.Location())
}

func FormatInLocation(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02 15:04:05")
}
