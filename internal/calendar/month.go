package calendar

import (
	"github.com/wonny/divcal/internal/contracts"
	"github.com/wonny/divcal/internal/watchlist"
)

// Cell is one day of the month view
type Cell struct {
	Date          contracts.Date            `json:"date"`
	InTargetMonth bool                      `json:"in_target_month"`
	IsToday       bool                      `json:"is_today"`
	HasTracked    bool                      `json:"has_tracked"`
	Events        []contracts.DividendEvent `json:"events"`
}

// Month is the rendered view-model of one calendar month
type Month struct {
	Year       int       `json:"year"`
	Month      int       `json:"month"`
	Weekdays   [7]string `json:"weekdays"`
	Weeks      [][]Cell  `json:"weeks"`
	EventCount int       `json:"event_count"`
	Prev       YearMonth `json:"prev"`
	Next       YearMonth `json:"next"`
}

// YearMonth identifies a navigation target
type YearMonth struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// Build composes the grid and pay-date buckets for ref's month.
// Events are expected to be filtered already; tracked marks cells that
// contain at least one watched stock.
func Build(ref contracts.Date, events []contracts.DividendEvent, today contracts.Date, tracked watchlist.Set) *Month {
	days := BuildGrid(ref)
	buckets := Bucket(days, events)

	prev := ref.AddMonths(-1)
	next := ref.AddMonths(1)

	m := &Month{
		Year:     ref.Year,
		Month:    int(ref.Month),
		Weekdays: WeekdayLabels,
		Weeks:    make([][]Cell, 0, len(days)/7),
		Prev:     YearMonth{Year: prev.Year, Month: int(prev.Month)},
		Next:     YearMonth{Year: next.Year, Month: int(next.Month)},
	}

	for i := 0; i < len(days); i += 7 {
		week := make([]Cell, 0, 7)
		for _, d := range days[i : i+7] {
			cell := Cell{
				Date:          d,
				InTargetMonth: d.SameMonth(ref),
				IsToday:       d == today,
				Events:        buckets[d],
			}
			for _, e := range cell.Events {
				if tracked.Has(e.StockCode) {
					cell.HasTracked = true
					break
				}
			}
			m.EventCount += len(cell.Events)
			week = append(week, cell)
		}
		m.Weeks = append(m.Weeks, week)
	}

	return m
}

// Day returns the cell for d, or false when d is not on the grid.
func (m *Month) Day(d contracts.Date) (Cell, bool) {
	for _, week := range m.Weeks {
		for _, c := range week {
			if c.Date == d {
				return c, true
			}
		}
	}
	return Cell{}, false
}
