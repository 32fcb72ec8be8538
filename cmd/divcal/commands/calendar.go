package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/divcal/internal/calendar"
	"github.com/wonny/divcal/internal/contracts"
	"github.com/wonny/divcal/internal/dividends"
	"github.com/wonny/divcal/internal/filter"
)

// calendarCmd renders a month in the terminal
var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "월별 배당 달력 출력",
	Long: `Renders the dividend month grid in the terminal.

Example:
  go run ./cmd/divcal calendar
  go run ./cmd/divcal calendar --year 2024 --month 7 --high-yield --threshold 6
  go run ./cmd/divcal calendar --watchlist-only
  go run ./cmd/divcal calendar day 2024-07-11`,
	RunE: runCalendar,
}

var calendarDayCmd = &cobra.Command{
	Use:   "day [YYYY-MM-DD]",
	Short: "특정 일자 배당 목록",
	Args:  cobra.ExactArgs(1),
	RunE:  runCalendarDay,
}

var yieldListCmd = &cobra.Command{
	Use:   "yield-list",
	Short: "고배당 순위",
	RunE:  runYieldList,
}

var (
	calYear          int
	calMonth         int
	calQuery         string
	calWatchlistOnly bool
	calHighYield     bool
	calThreshold     float64
	calPerCell       int
	yieldScopeYear   bool
)

func init() {
	rootCmd.AddCommand(calendarCmd)
	calendarCmd.AddCommand(calendarDayCmd)
	rootCmd.AddCommand(yieldListCmd)

	for _, c := range []*cobra.Command{calendarCmd, calendarDayCmd, yieldListCmd} {
		c.Flags().IntVar(&calYear, "year", 0, "year (default current)")
		c.Flags().IntVar(&calMonth, "month", 0, "month 1-12 (default current)")
		c.Flags().Float64Var(&calThreshold, "threshold", -1, "high-yield threshold % (default HIGH_YIELD_THRESHOLD)")
	}
	for _, c := range []*cobra.Command{calendarCmd, calendarDayCmd} {
		c.Flags().StringVarP(&calQuery, "query", "q", "", "free-text filter (code or name)")
		c.Flags().BoolVar(&calWatchlistOnly, "watchlist-only", false, "only tracked stocks")
		c.Flags().BoolVar(&calHighYield, "high-yield", false, "only yield >= threshold")
	}
	calendarCmd.Flags().IntVar(&calPerCell, "per-cell", 3, "stock codes shown per day cell")
	yieldListCmd.Flags().BoolVar(&yieldScopeYear, "year-scope", false, "rank the whole year instead of one month")
}

// refMonth resolves --year/--month against today
func refMonth(today contracts.Date) (contracts.Date, error) {
	year, month := today.Year, int(today.Month)
	if calYear != 0 {
		year = calYear
	}
	if calMonth != 0 {
		if calMonth < 1 || calMonth > 12 {
			return contracts.Date{}, fmt.Errorf("--month must be between 1 and 12")
		}
		month = calMonth
	}
	return contracts.NewDate(year, time.Month(month), 1), nil
}

func threshold(a *app) float64 {
	if calThreshold >= 0 {
		return calThreshold
	}
	return a.cfg.Calendar.HighYieldThreshold
}

func filterState(cmd *cobra.Command, a *app) (filter.State, error) {
	tracked, err := a.watchlist.Set(cmd.Context(), owner)
	if err != nil {
		return filter.State{}, err
	}
	return filter.State{
		FreeText:       calQuery,
		WatchlistOnly:  calWatchlistOnly,
		YieldFilter:    calHighYield,
		YieldThreshold: threshold(a),
		Watchlist:      tracked,
	}, nil
}

func runCalendar(cmd *cobra.Command, args []string) error {
	a, err := buildApp(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer a.Close()

	today := contracts.Today(a.cfg.Calendar.Location())
	ref, err := refMonth(today)
	if err != nil {
		return err
	}

	state, err := filterState(cmd, a)
	if err != nil {
		return err
	}

	view := a.dividends.Calendar(cmd.Context(), ref, state, today)
	if view.Degraded {
		PrintWarning("upstream unavailable, showing an empty month")
	}

	fmt.Println(calendar.RenderTerminal(view.Month, calPerCell))
	fmt.Printf("◀ %d/%02d    ▶ %d/%02d\n", view.Prev.Year, view.Prev.Month, view.Next.Year, view.Next.Month)
	return nil
}

func runCalendarDay(cmd *cobra.Command, args []string) error {
	day, err := contracts.ParseDate(args[0])
	if err != nil {
		return err
	}

	a, err := buildApp(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer a.Close()

	state, err := filterState(cmd, a)
	if err != nil {
		return err
	}

	events, err := a.dividends.DayEvents(cmd.Context(), day, state)
	if err != nil {
		return err
	}

	PrintHeader(fmt.Sprintf("%s 發放 (%d)", day, len(events)))
	for _, e := range events {
		fmt.Println(eventLine(e))
	}
	return nil
}

func runYieldList(cmd *cobra.Command, args []string) error {
	a, err := buildApp(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer a.Close()

	ref, err := refMonth(contracts.Today(a.cfg.Calendar.Location()))
	if err != nil {
		return err
	}

	scope := dividends.ScopeMonth
	title := fmt.Sprintf("%d/%02d 殖利率 ≥ %.2f%%", ref.Year, int(ref.Month), threshold(a))
	if yieldScopeYear {
		scope = dividends.ScopeYear
		title = fmt.Sprintf("%d 全年 殖利率 ≥ %.2f%%", ref.Year, threshold(a))
	}

	events, err := a.dividends.YieldList(cmd.Context(), ref, threshold(a), scope)
	if err != nil {
		return err
	}

	PrintHeader(title)
	for i, e := range events {
		fmt.Printf("%3d. %s\n", i+1, eventLine(e))
	}
	return nil
}
