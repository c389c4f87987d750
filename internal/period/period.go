package period

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Filter names accepted by the analytics endpoints.
const (
	FilterDaily     = "daily"
	FilterWeekly    = "weekly"
	FilterMonthly   = "monthly"
	FilterSemestral = "semestral"
)

// Semester values accepted by the semestral filter.
const (
	SemesterFirst  = "1st"
	SemesterSecond = "2nd"
)

// ErrInvalidPeriod reports an unusable period type or value. Resolution
// errors wrap it with a descriptive message; callers match with errors.Is.
var ErrInvalidPeriod = errors.New("invalid period")

func invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidPeriod, fmt.Sprintf(format, args...))
}

// Range is a closed interval with both ends at UTC day boundaries: Start is
// 00:00:00.000 of the first day and End is 23:59:59.999 of the last day.
type Range struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the range.
func (r Range) Contains(t time.Time) bool {
	u := t.UTC()
	return !u.Before(r.Start) && !u.After(r.End)
}

// StartOfDay truncates t to 00:00:00.000 UTC of its calendar day.
func StartOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// EndOfDay returns 23:59:59.999 UTC of t's calendar day.
func EndOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 23, 59, 59, int(999*time.Millisecond), time.UTC)
}

// DayOf returns the single-day range containing t.
func DayOf(t time.Time) Range {
	return Range{Start: StartOfDay(t), End: EndOfDay(t)}
}

// WeekOf returns the Monday-through-Sunday week containing t. A Sunday
// reference date belongs to the week ending that day.
func WeekOf(t time.Time) Range {
	u := StartOfDay(t)
	diff := int(time.Monday - u.Weekday())
	if u.Weekday() == time.Sunday {
		diff = -6
	}
	monday := u.AddDate(0, 0, diff)
	return Range{Start: monday, End: EndOfDay(monday.AddDate(0, 0, 6))}
}

// MonthOf returns the full calendar-month range for the given year and month.
func MonthOf(year int, month time.Month) Range {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return Range{Start: start, End: EndOfDay(start.AddDate(0, 1, -1))}
}

// AcademicYearStart returns the calendar year anchoring the academic year
// containing now: the current year from September onward, otherwise the
// previous one.
func AcademicYearStart(now time.Time) int {
	u := now.UTC()
	if u.Month() >= time.September {
		return u.Year()
	}
	return u.Year() - 1
}

// SemesterOf resolves "1st" or "2nd" to its range within the academic year
// containing now. The first semester runs September 1 through January 31, the
// second February 1 through July 31 of the following calendar year.
func SemesterOf(semester string, now time.Time) (Range, error) {
	start := AcademicYearStart(now)
	switch semester {
	case SemesterFirst:
		return Range{
			Start: time.Date(start, time.September, 1, 0, 0, 0, 0, time.UTC),
			End:   EndOfDay(time.Date(start+1, time.January, 31, 0, 0, 0, 0, time.UTC)),
		}, nil
	case SemesterSecond:
		return Range{
			Start: time.Date(start+1, time.February, 1, 0, 0, 0, 0, time.UTC),
			End:   EndOfDay(time.Date(start+1, time.July, 31, 0, 0, 0, 0, time.UTC)),
		}, nil
	default:
		return Range{}, invalidf("semester must be %q or %q, got %q", SemesterFirst, SemesterSecond, semester)
	}
}

// Resolve maps a (periodType, value) pair to a concrete range. An empty value
// defaults daily and weekly to the day or week containing now and monthly to
// the current month; semestral always requires an explicit semester. A
// supplied but malformed value is an error, never a silent default.
func Resolve(periodType, value string, now time.Time) (Range, error) {
	switch strings.ToLower(strings.TrimSpace(periodType)) {
	case FilterDaily:
		if value == "" {
			return DayOf(now), nil
		}
		day, err := time.Parse("2006-01-02", value)
		if err != nil {
			return Range{}, invalidf("invalid date %q, expected YYYY-MM-DD", value)
		}
		return DayOf(day), nil
	case FilterWeekly:
		if value == "" {
			return WeekOf(now), nil
		}
		day, err := time.Parse("2006-01-02", value)
		if err != nil {
			return Range{}, invalidf("invalid date %q, expected YYYY-MM-DD", value)
		}
		return WeekOf(day), nil
	case FilterMonthly:
		if value == "" {
			u := now.UTC()
			return MonthOf(u.Year(), u.Month()), nil
		}
		month, err := time.Parse("2006-01", value)
		if err != nil {
			return Range{}, invalidf("invalid month %q, expected YYYY-MM", value)
		}
		return MonthOf(month.Year(), month.Month()), nil
	case FilterSemestral:
		return SemesterOf(value, now)
	default:
		return Range{}, invalidf("unknown period type %q", periodType)
	}
}

// Days splits r into consecutive single-day ranges.
func Days(r Range) []Range {
	var days []Range
	for cursor := r.Start; !cursor.After(r.End); cursor = cursor.AddDate(0, 0, 1) {
		days = append(days, DayOf(cursor))
	}
	return days
}

// WeeksClipped splits r into Monday-start week ranges, clipping the first and
// last weeks to r's boundaries so no sub-range leaks outside r. Together the
// returned weeks tile r exactly.
func WeeksClipped(r Range) []Range {
	var weeks []Range
	cursor := r.Start
	for !cursor.After(r.End) {
		week := WeekOf(cursor)
		clipped := Range{Start: week.Start, End: week.End}
		if clipped.Start.Before(r.Start) {
			clipped.Start = r.Start
		}
		if clipped.End.After(r.End) {
			clipped.End = r.End
		}
		weeks = append(weeks, clipped)
		cursor = week.End.AddDate(0, 0, 1)
		cursor = StartOfDay(cursor)
	}
	return weeks
}

// Months splits r into full calendar-month ranges, crossing year boundaries
// as needed. r is expected to start and end on month boundaries, as semester
// ranges do.
func Months(r Range) []Range {
	var months []Range
	cursor := time.Date(r.Start.Year(), r.Start.Month(), 1, 0, 0, 0, 0, time.UTC)
	for !cursor.After(r.End) {
		months = append(months, MonthOf(cursor.Year(), cursor.Month()))
		cursor = cursor.AddDate(0, 1, 0)
	}
	return months
}
