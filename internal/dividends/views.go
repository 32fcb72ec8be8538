package dividends

import (
	"context"
	"fmt"

	"github.com/wonny/divcal/internal/calculator"
	"github.com/wonny/divcal/internal/calendar"
	"github.com/wonny/divcal/internal/contracts"
	"github.com/wonny/divcal/internal/filter"
	"github.com/wonny/divcal/internal/history"
)

// CalendarView is a month grid plus whether upstream data was missing
type CalendarView struct {
	*calendar.Month
	Filter   filter.State `json:"filter"`
	Degraded bool         `json:"degraded"`
}

// Calendar fetches ref's month, filters it and lays it out on the grid.
// An upstream failure is logged and rendered as an empty, degraded month.
func (s *Service) Calendar(ctx context.Context, ref contracts.Date, state filter.State, today contracts.Date) *CalendarView {
	events, err := s.MonthEvents(ctx, ref.Year, int(ref.Month))
	degraded := false
	if err != nil {
		s.logger.WithError(err).WithFields(map[string]interface{}{
			"year":  ref.Year,
			"month": int(ref.Month),
		}).Warn("Calendar upstream failed, rendering empty month")
		events = nil
		degraded = true
	}

	filtered := filter.Apply(events, state)
	return &CalendarView{
		Month:    calendar.Build(ref, filtered, today, state.Watchlist),
		Filter:   state,
		Degraded: degraded,
	}
}

// DayEvents returns the filtered events paying on day.
func (s *Service) DayEvents(ctx context.Context, day contracts.Date, state filter.State) ([]contracts.DividendEvent, error) {
	events, err := s.MonthEvents(ctx, day.Year, int(day.Month))
	if err != nil {
		return nil, err
	}
	buckets := calendar.Bucket([]contracts.Date{day}, filter.Apply(events, state))
	return buckets[day], nil
}

// YieldScope selects the source of the high-yield list
type YieldScope string

const (
	ScopeMonth YieldScope = "month"
	ScopeYear  YieldScope = "year"
)

// YieldList ranks high-yield events by yield_rate descending. The month
// scope filters the cached month locally; the year scope asks the upstream
// to filter the whole year.
func (s *Service) YieldList(ctx context.Context, ref contracts.Date, threshold float64, scope YieldScope) ([]contracts.DividendEvent, error) {
	var events []contracts.DividendEvent
	var err error

	switch scope {
	case ScopeYear:
		events, err = s.YieldEvents(ctx, ref.Year, threshold)
	default:
		events, err = s.MonthEvents(ctx, ref.Year, int(ref.Month))
	}
	if err != nil {
		return nil, err
	}

	state := filter.State{YieldFilter: true, YieldThreshold: threshold}
	return filter.RankByYield(filter.Apply(events, state)), nil
}

// StockView is everything the stock detail page shows
type StockView struct {
	Info           contracts.StockInfo        `json:"info"`
	Latest         *contracts.DividendRecord  `json:"latest"`
	RealtimeYield  *float64                   `json:"realtime_yield"`
	Annual         []history.AnnualAggregate  `json:"annual"`
	Detail         []history.DetailPoint      `json:"detail"`
	Table          []history.TableRow         `json:"table"`
	HistoricalN    int                        `json:"historical_count"`
	AverageCash    *float64                   `json:"average_cash_dividend"`
	AverageFill    *float64                   `json:"average_fill_days"`
	Calculator     calculator.State           `json:"calculator"`
	CalculatorSum  calculator.Summary         `json:"calculator_summary"`
	GoogleCalendar string                     `json:"google_calendar_url,omitempty"`
	History        []contracts.DividendRecord `json:"history"`
}

// StockView assembles the detail page of one stock.
//
// The realtime yield and calculator are recomputed from the current daily
// price rather than the upstream yield_rate used by the calendar filter.
func (s *Service) StockView(ctx context.Context, code string, today contracts.Date) (*StockView, error) {
	detail, err := s.Stock(ctx, code)
	if err != nil {
		return nil, err
	}

	view := &StockView{
		Info:    detail.Info,
		Latest:  history.LatestEvent(detail.History, today),
		Annual:  history.AggregateByYear(detail.History),
		Detail:  history.DetailSeries(detail.History),
		Table:   history.TableRows(detail.History),
		History: detail.History,
	}

	past := history.Historical(detail.History, today)
	view.HistoricalN = len(past)
	view.AverageCash = history.AverageCashDividend(past)
	view.AverageFill = history.AverageFillDays(past)

	price := 0.0
	if detail.Info.DailyPrice != nil {
		price = *detail.Info.DailyPrice
	}
	cash := 0.0
	if view.Latest != nil {
		cash = view.Latest.CashDividend
		if cash > 0 {
			view.RealtimeYield = calculator.YieldPercent(cash, price)
		}
		event := view.Latest.DividendEvent
		if event.StockName == "" {
			event.StockName = detail.Info.StockName
		}
		if url, err := calendar.GoogleCalendarURL(event); err == nil {
			view.GoogleCalendar = url
		}
	}

	view.Calculator = calculator.NewState(price, cash)
	view.CalculatorSum = view.Calculator.Summarize()

	return view, nil
}

// StockChart renders the cash dividend chart of one stock.
func (s *Service) StockChart(ctx context.Context, code string, mode history.ChartMode) ([]byte, error) {
	detail, err := s.Stock(ctx, code)
	if err != nil {
		return nil, err
	}
	return history.RenderChart(detail.History, mode)
}

// StockICS renders the latest pay date of a stock as an iCalendar file.
func (s *Service) StockICS(ctx context.Context, code string, today contracts.Date) ([]byte, string, error) {
	detail, err := s.Stock(ctx, code)
	if err != nil {
		return nil, "", err
	}

	latest := history.LatestEvent(detail.History, today)
	if latest == nil {
		return nil, "", ErrNoRecentDividend
	}

	event := latest.DividendEvent
	if event.StockName == "" {
		event.StockName = detail.Info.StockName
	}

	body, err := calendar.ICS(event, today.Time())
	if err != nil {
		return nil, "", fmt.Errorf("stock %s: %w", code, err)
	}
	return body, calendar.ICSFilename(event), nil
}
