package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/divcal/pkg/logger"
)

type fakeRefresher struct {
	months  [][2]int
	failOn  int
	listErr error
	lists   int
}

func (f *fakeRefresher) Refresh(_ context.Context, year, month int) (int, error) {
	f.months = append(f.months, [2]int{year, month})
	if month == f.failOn {
		return 0, errors.New("upstream down")
	}
	return 3, nil
}

func (f *fakeRefresher) RefreshStockList(context.Context) (int, error) {
	f.lists++
	return 1800, f.listErr
}

func taipei(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Taipei")
	require.NoError(t, err)
	return loc
}

func TestCacheWarmupRefreshesCurrentAndNextMonth(t *testing.T) {
	loc := taipei(t)
	r := &fakeRefresher{}
	// 2024-12-31 17:00 UTC is already 2025-01-01 in Taipei
	job := NewCacheWarmupJob(r, loc, logger.Nop()).WithClock(func() time.Time {
		return time.Date(2024, 12, 31, 17, 0, 0, 0, time.UTC)
	})

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, [][2]int{{2025, 1}, {2025, 2}}, r.months)
	assert.Equal(t, "cache_warmup", job.Name())
	assert.Equal(t, "0 30 20 * * *", job.Schedule())
}

func TestCacheWarmupYearRollover(t *testing.T) {
	r := &fakeRefresher{}
	job := NewCacheWarmupJob(r, taipei(t), logger.Nop()).WithClock(func() time.Time {
		return time.Date(2024, 12, 10, 12, 0, 0, 0, time.UTC)
	})

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, [][2]int{{2024, 12}, {2025, 1}}, r.months)
}

func TestCacheWarmupContinuesPastFailure(t *testing.T) {
	r := &fakeRefresher{failOn: 6}
	job := NewCacheWarmupJob(r, taipei(t), logger.Nop()).WithClock(func() time.Time {
		return time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	})

	err := job.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2024-06")
	assert.Len(t, r.months, 2, "July still refreshed")
}

func TestStockListRefreshJob(t *testing.T) {
	r := &fakeRefresher{}
	job := NewStockListRefreshJob(r, logger.Nop())
	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 1, r.lists)

	r.listErr = errors.New("boom")
	assert.Error(t, job.Run(context.Background()))
}

func TestJobScheduleOverrides(t *testing.T) {
	r := &fakeRefresher{}
	warm := NewCacheWarmupJob(r, taipei(t), logger.Nop()).
		WithSchedule("0 0 21 * * *").
		WithMonths(3).
		WithClock(func() time.Time { return time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC) })
	assert.Equal(t, "0 0 21 * * *", warm.Schedule())

	require.NoError(t, warm.Run(context.Background()))
	assert.Equal(t, [][2]int{{2024, 6}, {2024, 7}, {2024, 8}}, r.months)

	list := NewStockListRefreshJob(r, logger.Nop()).WithSchedule("")
	assert.Equal(t, DefaultStockListSchedule, list.Schedule(), "empty spec keeps default")
}
