package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/divcal/internal/api"
	"github.com/wonny/divcal/internal/api/handlers"
	"github.com/wonny/divcal/internal/scheduler"
	"github.com/wonny/divcal/internal/scheduler/jobs"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `Starts the HTTP API server.

Endpoints:
  GET  /health                          - Health check
  GET  /api/calendar                    - Month grid (q, watchlist_only, high_yield, threshold)
  GET  /api/calendar/day?date=          - Events paying on one day
  GET  /api/yield-list                  - High-yield ranking (scope=month|year)
  GET  /api/stocks/suggest?q=           - Autocomplete
  GET  /api/stocks/{code}               - Stock detail
  GET  /api/stocks/{code}/jump          - Month of latest dividend
  GET  /api/stocks/{code}/chart.png     - Cash dividend chart
  GET  /api/stocks/{code}/calendar.ics  - iCalendar download
  POST /api/calculator                  - Apply a calculator action
  POST /api/calculator/format           - Regroup a numeric field
  GET  /ws/calculator?code=             - Calculator websocket
  GET|POST /api/watchlist               - Watchlist
  GET  /stock/{code}, /sitemap.xml, /robots.txt

Example:
  go run ./cmd/divcal api
  go run ./cmd/divcal api --port 8080 --with-scheduler`,
	RunE: runAPIServer,
}

var (
	apiPort          string
	apiWithScheduler bool
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (default PORT env)")
	apiCmd.Flags().BoolVar(&apiWithScheduler, "with-scheduler", false, "run cache warm-up jobs in-process")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== divcal API Server ===")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	// Override port if flag is set
	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	apiLog := a.log.WithComponent("api")
	router := api.NewRouter(api.Handlers{
		Calendar:   handlers.NewCalendarHandler(a.dividends, a.watchlist, a.cfg, nil, apiLog),
		Stock:      handlers.NewStockHandler(a.dividends, a.cfg, nil, apiLog),
		Calculator: handlers.NewCalculatorHandler(a.dividends, a.cfg.Calendar, nil, apiLog),
		Watchlist:  handlers.NewWatchlistHandler(a.watchlist, apiLog),
		SEO:        handlers.NewSEOHandler(a.dividends, a.cfg.Site, nil, apiLog),
		Checks:     a.checks,
	}, apiLog)

	if apiWithScheduler {
		sched := newScheduler(a)
		sched.Start()
		defer sched.Stop()
	}

	server := api.New(a.cfg, apiLog, router)

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", a.cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	if err := server.Run(ctx, 10*time.Second); err != nil {
		return err
	}

	a.log.Info("Server exited")
	return nil
}

// newScheduler registers every job against the app's services
func newScheduler(a *app) *scheduler.Scheduler {
	log := a.log.WithComponent("scheduler")
	sched := scheduler.New(log)
	loc := a.cfg.Calendar.Location()

	warmup := jobs.NewCacheWarmupJob(a.dividends, loc, log)
	stockList := jobs.NewStockListRefreshJob(a.dividends, log)
	if a.profile != nil {
		s := a.profile.Schedules
		warmup.WithSchedule(s.CacheWarmup).WithMonths(s.CacheWarmupMonths)
		stockList.WithSchedule(s.StockListRefresh)
	}

	for _, job := range []scheduler.Job{warmup, stockList} {
		if err := sched.AddJob(job); err != nil {
			log.WithError(err).Error("Failed to register job")
		}
	}
	return sched
}
