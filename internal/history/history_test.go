package history

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/divcal/internal/contracts"
)

func d(s string) *contracts.Date {
	v := contracts.MustParseDate(s)
	return &v
}

func rec(id, pay, ex string, cash float64) contracts.DividendRecord {
	r := contracts.DividendRecord{DividendEvent: contracts.DividendEvent{
		ID:           id,
		StockCode:    "2330",
		CashDividend: cash,
	}}
	if pay != "" {
		r.PayDate = d(pay)
	}
	if ex != "" {
		r.ExDate = d(ex)
	}
	return r
}

func withYield(r contracts.DividendRecord, y float64) contracts.DividendRecord {
	r.YieldRate = &y
	return r
}

func TestAggregateByYear(t *testing.T) {
	records := []contracts.DividendRecord{
		rec("a", "2023-07-01", "", 2),
		rec("b", "2023-11-01", "", 1.5),
		rec("c", "2024-07-01", "", 3),
	}

	got := AggregateByYear(records)

	require.Len(t, got, 2)
	assert.Equal(t, "2023", got[0].Year)
	assert.Equal(t, 3.5, got[0].TotalCash)
	assert.Equal(t, 2, got[0].Count)
	assert.Equal(t, "2023年", got[0].Label)
	assert.Equal(t, "2024", got[1].Year)
	assert.Equal(t, 3.0, got[1].TotalCash)
}

func TestAggregateByYear_FallbacksAndOrder(t *testing.T) {
	records := []contracts.DividendRecord{
		withYield(rec("a", "", "2022-06-15", 1.1), 2.5),
		rec("b", "", "", 9),
		withYield(rec("c", "2021-08-01", "2021-06-15", 0.2), 0.7),
		withYield(rec("d", "2022-01-10", "2021-12-20", 0.1), 0.35),
	}

	got := AggregateByYear(records)

	require.Len(t, got, 2)
	assert.Equal(t, AnnualAggregate{Year: "2021", Label: "2021年", TotalCash: 0.2, TotalYield: 0.7, Count: 1}, got[0])
	assert.Equal(t, "2022", got[1].Year)
	assert.Equal(t, 2, got[1].Count)
	assert.InDelta(t, 1.2, got[1].TotalCash, 1e-9)
	assert.InDelta(t, 2.85, got[1].TotalYield, 1e-9)
	assert.Empty(t, AggregateByYear(nil))
}

func TestAggregateByYear_KeepsPrecision(t *testing.T) {
	records := []contracts.DividendRecord{
		withYield(rec("a", "2024-01-15", "", 0.333), 1.234),
		withYield(rec("b", "2024-07-15", "", 0.333), 1.234),
	}

	got := AggregateByYear(records)

	require.Len(t, got, 1)
	assert.InDelta(t, 0.666, got[0].TotalCash, 1e-9)
	assert.InDelta(t, 2.468, got[0].TotalYield, 1e-9)
	assert.NotEqual(t, 0.67, got[0].TotalCash, "sums are not rounded")
}

func TestDetailSeries(t *testing.T) {
	stockOnly := rec("s", "2023-09-01", "", 0)
	stockOnly.StockDividend = 0.5

	records := []contracts.DividendRecord{
		rec("late", "2024-01-10", "", 1),
		rec("zero", "2023-05-01", "", 0),
		rec("ex-only", "", "2023-03-01", 2),
		stockOnly,
		rec("undated", "", "", 5),
	}

	got := DetailSeries(records)

	require.Len(t, got, 3)
	assert.Equal(t, "2023-03-01", got[0].Label)
	assert.Equal(t, "2023-09-01", got[1].Label)
	assert.Equal(t, 0.5, got[1].StockDividend)
	assert.Equal(t, "2024-01-10", got[2].Label)
}

func TestTableRows(t *testing.T) {
	records := []contracts.DividendRecord{
		withYield(rec("1", "2024-07-11", "2024-06-13", 4), 0.4),
		withYield(rec("2", "2024-04-11", "2024-03-14", 3.5), 0.5),
		rec("3", "", "2024-01-10", 3),
		withYield(rec("4", "2024-01-11", "2023-12-14", 3.5), 0.6),
		rec("5", "", "", 1),
		withYield(rec("6", "2023-10-12", "2023-09-14", 3), 0.55),
	}

	rows := TableRows(records)
	require.Len(t, rows, 6)

	assert.Equal(t, "2024", rows[0].Year)
	assert.Equal(t, 4, rows[0].RowSpan)
	assert.Equal(t, 14.0, rows[0].GroupCash)
	assert.Equal(t, 1.5, rows[0].GroupYield)
	assert.Equal(t, "07/11", rows[0].PayLabel)
	assert.Equal(t, "06/13", rows[0].ExLabel)

	for _, i := range []int{1, 2, 3} {
		assert.Zero(t, rows[i].RowSpan, "row %d", i)
	}
	assert.Equal(t, "未定", rows[2].PayLabel)
	assert.Equal(t, "2023/12/14", rows[3].ExLabel)

	assert.Equal(t, "-", rows[4].Year)
	assert.Equal(t, 1, rows[4].RowSpan)
	assert.Equal(t, "-", rows[4].ExLabel)

	assert.Equal(t, "2023", rows[5].Year)
	assert.Equal(t, 1, rows[5].RowSpan)
	assert.Equal(t, 3.0, rows[5].GroupCash)
}

func TestTableRows_NonConsecutiveYearsStaySeparate(t *testing.T) {
	records := []contracts.DividendRecord{
		rec("1", "2024-07-11", "", 1),
		rec("2", "2023-07-11", "", 1),
		rec("3", "2024-01-11", "", 1),
	}

	rows := TableRows(records)
	assert.Equal(t, []int{1, 1, 1}, []int{rows[0].RowSpan, rows[1].RowSpan, rows[2].RowSpan})
}

func TestLatestEvent(t *testing.T) {
	today := contracts.MustParseDate("2024-06-01")

	tests := []struct {
		name    string
		records []contracts.DividendRecord
		wantID  string
	}{
		{
			name: "nearest upcoming wins",
			records: []contracts.DividendRecord{
				rec("far", "", "2024-12-01", 1),
				rec("past", "", "2024-03-01", 1),
				rec("near", "", "2024-06-13", 1),
			},
			wantID: "near",
		},
		{
			name: "ex date today counts as upcoming",
			records: []contracts.DividendRecord{
				rec("past", "", "2024-05-31", 1),
				rec("today", "", "2024-06-01", 1),
			},
			wantID: "today",
		},
		{
			name: "most recent past when nothing upcoming",
			records: []contracts.DividendRecord{
				rec("old", "", "2023-06-01", 1),
				rec("recent", "", "2024-03-01", 1),
				rec("older", "", "2022-06-01", 1),
			},
			wantID: "recent",
		},
		{
			name: "zero-distribution records ignored when others exist",
			records: []contracts.DividendRecord{
				rec("empty-upcoming", "", "2024-07-01", 0),
				rec("paid-past", "", "2024-03-01", 2),
			},
			wantID: "paid-past",
		},
		{
			name: "falls back to all records when none distribute",
			records: []contracts.DividendRecord{
				rec("a", "", "2024-03-01", 0),
				rec("b", "", "2024-08-01", 0),
			},
			wantID: "b",
		},
		{
			name: "undated only",
			records: []contracts.DividendRecord{
				rec("x", "", "", 1),
			},
			wantID: "x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LatestEvent(tt.records, today)
			require.NotNil(t, got)
			assert.Equal(t, tt.wantID, got.ID)
		})
	}

	assert.Nil(t, LatestEvent(nil, today))
}

func TestHistorical(t *testing.T) {
	today := contracts.MustParseDate("2024-06-01")
	records := []contracts.DividendRecord{
		rec("future-pay", "2024-07-11", "2024-05-20", 1),
		rec("past-pay", "2024-04-11", "2024-03-14", 1),
		rec("past-ex", "", "2024-05-01", 1),
		rec("today", "2024-06-01", "", 1),
		rec("undated", "", "", 1),
	}

	got := Historical(records, today)

	ids := make([]string, 0, len(got))
	for _, r := range got {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"past-pay", "past-ex"}, ids)
}

func TestAverages(t *testing.T) {
	records := []contracts.DividendRecord{
		rec("1", "2024-01-01", "", 3),
		rec("2", "2023-01-01", "", 2.5),
		rec("3", "2022-01-01", "", 2),
	}
	records[0].DaysToFill = contracts.IntPtr(10)
	records[1].DaysToFill = contracts.IntPtr(-1)
	records[2].DaysToFill = contracts.IntPtr(5)

	avg := AverageCashDividend(records)
	require.NotNil(t, avg)
	assert.Equal(t, 2.5, *avg)

	fill := AverageFillDays(records)
	require.NotNil(t, fill)
	assert.Equal(t, 7.5, *fill)

	assert.Nil(t, AverageCashDividend(nil))
	assert.Nil(t, AverageFillDays(records[1:2]))
}

func TestRenderChart(t *testing.T) {
	records := []contracts.DividendRecord{
		rec("1", "2023-07-01", "", 2),
		rec("2", "2023-11-01", "", 1.5),
		rec("3", "2024-07-01", "", 3),
		rec("4", "", "2024-09-01", 9),
	}

	for _, mode := range []ChartMode{ChartAnnual, ChartDetail} {
		t.Run(string(mode), func(t *testing.T) {
			out, err := RenderChart(records, mode)
			require.NoError(t, err)

			_, err = png.Decode(bytes.NewReader(out))
			assert.NoError(t, err)
		})
	}

	assert.Len(t, chartBars(records, ChartAnnual), 2)
	assert.Len(t, chartBars(records, ChartDetail), 3)

	_, err := RenderChart([]contracts.DividendRecord{rec("z", "2024-01-01", "", 0)}, ChartAnnual)
	assert.ErrorIs(t, err, ErrEmptyChart)
}

func TestParseChartMode(t *testing.T) {
	assert.Equal(t, ChartDetail, ParseChartMode("detail"))
	assert.Equal(t, ChartAnnual, ParseChartMode("annual"))
	assert.Equal(t, ChartAnnual, ParseChartMode(""))
}
