package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wonny/divcal/internal/contracts"
	"github.com/wonny/divcal/pkg/logger"
)

// Refresher reloads cached upstream data
type Refresher interface {
	Refresh(ctx context.Context, year, month int) (int, error)
	RefreshStockList(ctx context.Context) (int, error)
}

// CacheWarmupJob refetches the current and next month every evening,
// after the exchanges publish the day's dividend announcements
// ⭐ SSOT: 월별 배당 캐시 갱신 스케줄은 이 Job에서만
type CacheWarmupJob struct {
	refresher Refresher
	loc       *time.Location
	now       func() time.Time
	months    int
	schedule  string
	logger    *logger.Logger
}

// DefaultCacheWarmupSchedule is every day at 20:30 (with seconds)
const DefaultCacheWarmupSchedule = "0 30 20 * * *"

// NewCacheWarmupJob creates a new cache warm-up job
func NewCacheWarmupJob(r Refresher, loc *time.Location, log *logger.Logger) *CacheWarmupJob {
	return &CacheWarmupJob{
		refresher: r,
		loc:       loc,
		now:       time.Now,
		months:    2,
		schedule:  DefaultCacheWarmupSchedule,
		logger:    log,
	}
}

// WithClock overrides the time source
func (j *CacheWarmupJob) WithClock(now func() time.Time) *CacheWarmupJob {
	j.now = now
	return j
}

// WithSchedule overrides the cron spec; empty keeps the default
func (j *CacheWarmupJob) WithSchedule(spec string) *CacheWarmupJob {
	if spec != "" {
		j.schedule = spec
	}
	return j
}

// WithMonths sets how many months from the current one are refreshed
func (j *CacheWarmupJob) WithMonths(n int) *CacheWarmupJob {
	if n > 0 {
		j.months = n
	}
	return j
}

// Name returns the job name
func (j *CacheWarmupJob) Name() string {
	return "cache_warmup"
}

// Schedule returns the cron schedule
func (j *CacheWarmupJob) Schedule() string {
	return j.schedule
}

// Run refreshes each month; one failing month does not stop the others
func (j *CacheWarmupJob) Run(ctx context.Context) error {
	first := contracts.DateOf(j.now().In(j.loc)).FirstOfMonth()

	var errs []error
	total := 0
	for i := 0; i < j.months; i++ {
		m := first.AddMonths(i)
		n, err := j.refresher.Refresh(ctx, m.Year, int(m.Month))
		if err != nil {
			errs = append(errs, fmt.Errorf("%04d-%02d: %w", m.Year, int(m.Month), err))
			continue
		}
		total += n
	}

	if len(errs) > 0 {
		return fmt.Errorf("cache warmup: %w", errors.Join(errs...))
	}

	j.logger.WithFields(map[string]interface{}{
		"from":   first.String(),
		"months": j.months,
		"events": total,
	}).Info("Dividend cache warmed")

	return nil
}
