package history

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/wonny/divcal/internal/contracts"
)

// AnnualAggregate is the per-year roll-up shown in the annual chart
type AnnualAggregate struct {
	Year       string  `json:"year"`
	Label      string  `json:"label"`
	TotalCash  float64 `json:"total_cash"`
	TotalYield float64 `json:"total_yield"`
	Count      int     `json:"count"`
}

// DetailPoint is one event of the per-event chart
type DetailPoint struct {
	Date          contracts.Date `json:"date"`
	Label         string         `json:"label"`
	CashDividend  float64        `json:"cash_dividend"`
	StockDividend float64        `json:"stock_dividend"`
}

// yearOf returns the pay-date year, else the ex-date year.
func yearOf(r contracts.DividendRecord) (int, bool) {
	d := r.KeyDate()
	if d == nil {
		return 0, false
	}
	return d.Year, true
}

// AggregateByYear groups records by year and sums cash and yield.
// ⭐ SSOT: 연도별 배당 합계
//
// Records with neither a pay date nor an ex date are skipped. Missing
// yields count as zero. Output is ascending by year.
func AggregateByYear(records []contracts.DividendRecord) []AnnualAggregate {
	byYear := make(map[int]*AnnualAggregate)
	years := make([]int, 0)

	for _, r := range records {
		y, ok := yearOf(r)
		if !ok {
			continue
		}
		agg, exists := byYear[y]
		if !exists {
			ys := strconv.Itoa(y)
			agg = &AnnualAggregate{Year: ys, Label: ys + "年"}
			byYear[y] = agg
			years = append(years, y)
		}
		agg.TotalCash += r.CashDividend
		if r.YieldRate != nil {
			agg.TotalYield += *r.YieldRate
		}
		agg.Count++
	}

	sort.Ints(years)

	out := make([]AnnualAggregate, 0, len(years))
	for _, y := range years {
		out = append(out, *byYear[y])
	}
	return out
}

// DetailSeries lists records that paid cash or stock, oldest first,
// keyed by pay date (else ex date). Undated records are skipped.
func DetailSeries(records []contracts.DividendRecord) []DetailPoint {
	out := make([]DetailPoint, 0, len(records))
	for _, r := range records {
		if !r.HasDistribution() {
			continue
		}
		d := r.KeyDate()
		if d == nil {
			continue
		}
		out = append(out, DetailPoint{
			Date:          *d,
			Label:         d.String(),
			CashDividend:  r.CashDividend,
			StockDividend: r.StockDividend,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// TableRow is one line of the history table. Rows opening a year group
// carry RowSpan and the group totals; the others have RowSpan 0.
type TableRow struct {
	Record     contracts.DividendRecord `json:"record"`
	Year       string                   `json:"year"`
	PayLabel   string                   `json:"pay_label"`
	ExLabel    string                   `json:"ex_label"`
	RowSpan    int                      `json:"row_span"`
	GroupCash  float64                  `json:"group_cash,omitempty"`
	GroupYield float64                  `json:"group_yield,omitempty"`
}

// TableRows keeps input order and merges consecutive rows of the same
// year. Undated records form their own "-" group.
func TableRows(records []contracts.DividendRecord) []TableRow {
	rows := make([]TableRow, len(records))
	for i, r := range records {
		year := "-"
		if y, ok := yearOf(r); ok {
			year = strconv.Itoa(y)
		}
		rows[i] = TableRow{
			Record:   r,
			Year:     year,
			PayLabel: smartDate(r.PayDate, year, "未定"),
			ExLabel:  smartDate(r.ExDate, year, "-"),
		}
	}

	for start := 0; start < len(rows); {
		end := start + 1
		for end < len(rows) && rows[end].Year == rows[start].Year {
			end++
		}

		var cash, yield float64
		for _, row := range rows[start:end] {
			cash += row.Record.CashDividend
			if row.Record.YieldRate != nil {
				yield += *row.Record.YieldRate
			}
		}
		rows[start].RowSpan = end - start
		rows[start].GroupCash = round2(cash)
		rows[start].GroupYield = round2(yield)

		start = end
	}

	return rows
}

// smartDate prints "MM/DD" inside the group's year and "YYYY/MM/DD"
// otherwise.
func smartDate(d *contracts.Date, groupYear, missing string) string {
	if d == nil {
		return missing
	}
	if strconv.Itoa(d.Year) == groupYear {
		return fmt.Sprintf("%02d/%02d", int(d.Month), d.Day)
	}
	return fmt.Sprintf("%04d/%02d/%02d", d.Year, int(d.Month), d.Day)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
