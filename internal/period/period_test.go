package period

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestWeekOfAlwaysStartsMonday(t *testing.T) {
	for day := 0; day < 14; day++ {
		ref := date(2024, time.October, 1).AddDate(0, 0, day)
		week := WeekOf(ref)

		require.Equal(t, time.Monday, week.Start.Weekday())
		require.Equal(t, time.Sunday, week.End.Weekday())
		require.True(t, week.Contains(ref), "week %v should contain %v", week, ref)
		require.Equal(t, week.Start.AddDate(0, 0, 6), StartOfDay(week.End))
	}
}

func TestWeekOfSundayBelongsToEndingWeek(t *testing.T) {
	// 2024-10-06 is a Sunday; its week is Mon Sep 30 .. Sun Oct 6.
	week := WeekOf(date(2024, time.October, 6))

	require.Equal(t, date(2024, time.September, 30), week.Start)
	require.Equal(t, date(2024, time.October, 6), StartOfDay(week.End))
}

func TestSemesterBoundaries(t *testing.T) {
	// Any instant within AY 2024 resolves against academic-year-start 2024.
	now := date(2024, time.November, 15)

	first, err := SemesterOf(SemesterFirst, now)
	require.NoError(t, err)
	require.Equal(t, date(2024, time.September, 1), first.Start)
	require.Equal(t, date(2025, time.January, 31), StartOfDay(first.End))

	second, err := SemesterOf(SemesterSecond, now)
	require.NoError(t, err)
	require.Equal(t, date(2025, time.February, 1), second.Start)
	require.Equal(t, date(2025, time.July, 31), StartOfDay(second.End))
}

func TestAcademicYearStartRollsOverInSeptember(t *testing.T) {
	require.Equal(t, 2024, AcademicYearStart(date(2024, time.September, 1)))
	require.Equal(t, 2024, AcademicYearStart(date(2024, time.December, 31)))
	require.Equal(t, 2024, AcademicYearStart(date(2025, time.August, 31)))
	require.Equal(t, 2025, AcademicYearStart(date(2025, time.September, 1)))
}

func TestResolveDaily(t *testing.T) {
	now := time.Date(2024, time.October, 14, 9, 30, 0, 0, time.UTC)

	r, err := Resolve(FilterDaily, "", now)
	require.NoError(t, err)
	require.Equal(t, date(2024, time.October, 14), r.Start)

	r, err = Resolve(FilterDaily, "2024-03-05", now)
	require.NoError(t, err)
	require.Equal(t, date(2024, time.March, 5), r.Start)
	require.Equal(t, EndOfDay(r.Start), r.End)
}

func TestResolveMonthly(t *testing.T) {
	now := date(2024, time.October, 14)

	r, err := Resolve(FilterMonthly, "2024-02", now)
	require.NoError(t, err)
	require.Equal(t, date(2024, time.February, 1), r.Start)
	require.Equal(t, date(2024, time.February, 29), StartOfDay(r.End))
}

func TestResolveRejectsMalformedInput(t *testing.T) {
	now := date(2024, time.October, 14)

	cases := []struct {
		periodType string
		value      string
	}{
		{FilterDaily, "14-10-2024"},
		{FilterWeekly, "not-a-date"},
		{FilterMonthly, "2024/02"},
		{FilterSemestral, "3rd"},
		{FilterSemestral, ""},
		{"yearly", ""},
	}

	for _, tc := range cases {
		_, err := Resolve(tc.periodType, tc.value, now)
		require.ErrorIs(t, err, ErrInvalidPeriod, "%s %q", tc.periodType, tc.value)
	}
}

func TestDaysTileRange(t *testing.T) {
	week := WeekOf(date(2024, time.October, 2))
	days := Days(week)

	require.Len(t, days, 7)
	require.Equal(t, week.Start, days[0].Start)
	require.Equal(t, week.End, days[6].End)
	for i := 1; i < len(days); i++ {
		require.Equal(t, days[i-1].End.Add(time.Millisecond), days[i].Start)
	}
}

func TestWeeksClippedTileMonthExactly(t *testing.T) {
	// October 2024 starts on a Tuesday and ends on a Thursday, so both the
	// first and last weeks are partial.
	month := MonthOf(2024, time.October)
	weeks := WeeksClipped(month)

	require.Equal(t, month.Start, weeks[0].Start)
	require.Equal(t, month.End, weeks[len(weeks)-1].End)

	totalDays := 0
	for i, week := range weeks {
		require.False(t, week.Start.Before(month.Start))
		require.False(t, week.End.After(month.End))
		if i > 0 {
			require.Equal(t, weeks[i-1].End.Add(time.Millisecond), week.Start)
		}
		totalDays += len(Days(week))
	}
	require.Equal(t, 31, totalDays)
}

func TestMonthsCrossYearBoundary(t *testing.T) {
	first, err := SemesterOf(SemesterFirst, date(2024, time.October, 1))
	require.NoError(t, err)

	months := Months(first)
	require.Len(t, months, 5)
	require.Equal(t, date(2024, time.September, 1), months[0].Start)
	require.Equal(t, date(2025, time.January, 1), months[4].Start)
	require.Equal(t, date(2025, time.January, 31), StartOfDay(months[4].End))
}
