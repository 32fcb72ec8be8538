package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/divcal/pkg/logger"
)

// StockListRefreshJob reloads the searchable stock list before market open
type StockListRefreshJob struct {
	refresher Refresher
	schedule  string
	logger    *logger.Logger
}

// DefaultStockListSchedule is every day at 7 AM
const DefaultStockListSchedule = "0 0 7 * * *"

// NewStockListRefreshJob creates a new stock list refresh job
func NewStockListRefreshJob(r Refresher, log *logger.Logger) *StockListRefreshJob {
	return &StockListRefreshJob{
		refresher: r,
		schedule:  DefaultStockListSchedule,
		logger:    log,
	}
}

// WithSchedule overrides the cron spec; empty keeps the default
func (j *StockListRefreshJob) WithSchedule(spec string) *StockListRefreshJob {
	if spec != "" {
		j.schedule = spec
	}
	return j
}

// Name returns the job name
func (j *StockListRefreshJob) Name() string {
	return "stock_list_refresh"
}

// Schedule returns the cron schedule
func (j *StockListRefreshJob) Schedule() string {
	return j.schedule
}

// Run executes the refresh
func (j *StockListRefreshJob) Run(ctx context.Context) error {
	n, err := j.refresher.RefreshStockList(ctx)
	if err != nil {
		return fmt.Errorf("refresh stock list: %w", err)
	}

	j.logger.WithField("stocks", n).Info("Stock list refreshed")
	return nil
}
