package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/mealtrack-go-api/internal/period"
	"github.com/noah-isme/mealtrack-go-api/internal/repository"
)

func TestSummarizeWeeklyProducesSevenDayBuckets(t *testing.T) {
	meals := &fakeMealRepo{}
	svc := NewSummaryService(meals, nil, testLogger()).(*summaryService)
	svc.now = func() time.Time { return time.Date(2024, 10, 9, 15, 0, 0, 0, time.UTC) }

	response, err := svc.Summarize(context.Background(), "weekly", "")
	require.NoError(t, err)
	require.Len(t, response.Buckets, 7)

	// Monday-start week containing Wednesday 2024-10-09.
	require.Equal(t, "2024-10-07", response.Buckets[0].ID)
	require.Equal(t, "Monday", response.Buckets[0].Name)
	require.Equal(t, "2024-10-13", response.Buckets[6].ID)
	require.Equal(t, "Sunday", response.Buckets[6].Name)
}

func TestSummarizeDailyBucketTotals(t *testing.T) {
	meals := &fakeMealRepo{statusCounts: statusCountsFixture(12, 3)}
	svc := NewSummaryService(meals, nil, testLogger()).(*summaryService)
	svc.now = func() time.Time { return time.Date(2024, 10, 9, 15, 0, 0, 0, time.UTC) }

	response, err := svc.Summarize(context.Background(), "daily", "2024-10-09")
	require.NoError(t, err)
	require.Len(t, response.Buckets, 1)

	bucket := response.Buckets[0]
	require.Equal(t, "October 9, 2024", bucket.Name)
	require.EqualValues(t, 12, bucket.Claimed)
	require.EqualValues(t, 3, bucket.Unclaimed)
	require.EqualValues(t, 15, bucket.Allotted)
}

func TestSummarizeSemestralOverview(t *testing.T) {
	meals := &fakeMealRepo{}
	svc := NewSummaryService(meals, nil, testLogger()).(*summaryService)
	svc.now = func() time.Time { return time.Date(2024, 11, 5, 9, 0, 0, 0, time.UTC) }

	response, err := svc.Summarize(context.Background(), "semestral", "")
	require.NoError(t, err)
	require.Len(t, response.Buckets, 2)
	require.Equal(t, "1st Semester", response.Buckets[0].Name)
	require.Equal(t, "2nd Semester", response.Buckets[1].Name)
}

func TestSummarizeSemestralMonthsForOneSemester(t *testing.T) {
	meals := &fakeMealRepo{}
	svc := NewSummaryService(meals, nil, testLogger()).(*summaryService)
	svc.now = func() time.Time { return time.Date(2024, 11, 5, 9, 0, 0, 0, time.UTC) }

	response, err := svc.Summarize(context.Background(), "semestral", "1st")
	require.NoError(t, err)
	// September through January.
	require.Len(t, response.Buckets, 5)
	require.Equal(t, "September 2024", response.Buckets[0].Name)
	require.Equal(t, "January 2025", response.Buckets[4].Name)
}

func TestSummarizeRejectsUnknownPeriod(t *testing.T) {
	svc := NewSummaryService(&fakeMealRepo{}, nil, testLogger())

	_, err := svc.Summarize(context.Background(), "hourly", "")
	require.ErrorIs(t, err, period.ErrInvalidPeriod)
}

func TestSummarizeUsesVersionedCache(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer client.Close()

	cache := NewAnalyticsCache(client, time.Minute, testLogger())
	meals := &fakeMealRepo{statusCounts: statusCountsFixture(4, 1)}

	svc := NewSummaryService(meals, cache, testLogger()).(*summaryService)
	svc.now = func() time.Time { return time.Date(2024, 10, 9, 15, 0, 0, 0, time.UTC) }

	first, err := svc.Summarize(context.Background(), "daily", "2024-10-09")
	require.NoError(t, err)
	require.False(t, first.CacheHit)

	second, err := svc.Summarize(context.Background(), "daily", "2024-10-09")
	require.NoError(t, err)
	require.True(t, second.CacheHit)
	require.Equal(t, first.Buckets, second.Buckets)

	// Bumping the version orphans the cached payload.
	cache.Bump(context.Background())
	third, err := svc.Summarize(context.Background(), "daily", "2024-10-09")
	require.NoError(t, err)
	require.False(t, third.CacheHit)
}

func statusCountsFixture(claimed, unclaimed int64) repository.StatusCounts {
	return repository.StatusCounts{Claimed: claimed, Unclaimed: unclaimed}
}
