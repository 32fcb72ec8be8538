package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wonny/divcal/internal/contracts"
	"github.com/wonny/divcal/internal/watchlist"
)

func yield(v float64) *float64 { return &v }

func codes(events []contracts.DividendEvent) []string {
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.StockCode)
	}
	return out
}

var sample = []contracts.DividendEvent{
	{StockCode: "2330", StockName: "台積電", YieldRate: yield(1.8)},
	{StockCode: "2317", StockName: "鴻海", YieldRate: yield(5.2)},
	{StockCode: "0056", StockName: "元大高股息", YieldRate: yield(7.1)},
	{StockCode: "00878", StockName: "國泰永續高股息", YieldRate: nil},
	{StockCode: "2884", StockName: "玉山金", YieldRate: yield(5.0)},
}

func TestApply(t *testing.T) {
	tests := []struct {
		name  string
		state State
		want  []string
	}{
		{
			name:  "no filters",
			state: NewState(),
			want:  []string{"2330", "2317", "0056", "00878", "2884"},
		},
		{
			name:  "watchlist only",
			state: State{WatchlistOnly: true, Watchlist: watchlist.NewSet("2330", "00878")},
			want:  []string{"2330", "00878"},
		},
		{
			name:  "watchlist only with empty watchlist",
			state: State{WatchlistOnly: true},
			want:  []string{},
		},
		{
			name:  "yield threshold is inclusive and skips missing yields",
			state: State{YieldFilter: true, YieldThreshold: 5.0},
			want:  []string{"2317", "0056", "2884"},
		},
		{
			name:  "yield flag off ignores threshold",
			state: State{YieldThreshold: 50},
			want:  []string{"2330", "2317", "0056", "00878", "2884"},
		},
		{
			name:  "free text matches name",
			state: State{FreeText: "高股息"},
			want:  []string{"0056", "00878"},
		},
		{
			name:  "free text matches code substring",
			state: State{FreeText: " 87 "},
			want:  []string{"00878"},
		},
		{
			name: "stages intersect",
			state: State{
				WatchlistOnly:  true,
				Watchlist:      watchlist.NewSet("0056", "00878", "2330"),
				YieldFilter:    true,
				YieldThreshold: 5,
				FreeText:       "高",
			},
			want: []string{"0056"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, codes(Apply(sample, tt.state)))
		})
	}
}

func TestApply_WatchlistScenario(t *testing.T) {
	events := []contracts.DividendEvent{{StockCode: "2330"}, {StockCode: "2317"}}
	state := State{WatchlistOnly: true, Watchlist: watchlist.NewSet("2330")}

	assert.Equal(t, []string{"2330"}, codes(Apply(events, state)))
}

func TestApply_Idempotent(t *testing.T) {
	state := State{
		WatchlistOnly:  true,
		Watchlist:      watchlist.NewSet("2317", "0056", "2884"),
		YieldFilter:    true,
		YieldThreshold: 5,
		FreeText:       "0",
	}

	once := Apply(sample, state)
	twice := Apply(once, state)
	assert.Equal(t, once, twice)
}

func TestApply_Intersective(t *testing.T) {
	set := watchlist.NewSet("2330", "2317", "0056")

	staged := Apply(
		Apply(sample, State{WatchlistOnly: true, Watchlist: set}),
		State{YieldFilter: true, YieldThreshold: 5},
	)
	combined := Apply(sample, State{
		WatchlistOnly:  true,
		Watchlist:      set,
		YieldFilter:    true,
		YieldThreshold: 5,
	})

	assert.Equal(t, combined, staged)
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	input := make([]contracts.DividendEvent, len(sample))
	copy(input, sample)

	out := Apply(input, State{YieldFilter: true, YieldThreshold: 5})
	out[0].StockCode = "XXXX"

	assert.Equal(t, sample, input)
	assert.Empty(t, Apply(nil, State{FreeText: "2330"}))
	assert.NotNil(t, Apply(nil, NewState()))
}

func TestSuggest(t *testing.T) {
	stocks := []contracts.StockListItem{
		{StockCode: "2330", StockName: "台積電"},
		{StockCode: "2303", StockName: "聯電"},
		{StockCode: "0056", StockName: "元大高股息"},
		{StockCode: "00878", StockName: "國泰永續高股息"},
		{StockCode: "00919", StockName: "群益台灣精選高息"},
		{StockCode: "2881", StockName: "富邦金"},
		{StockCode: "2882", StockName: "國泰金"},
		{StockCode: "2886", StockName: "兆豐金"},
		{StockCode: "1230", StockName: "聯成食"},
	}

	tests := []struct {
		name  string
		text  string
		limit int
		want  []string
	}{
		{"code prefix only", "23", 0, []string{"2303", "2330"}},
		{"code is prefix not substring", "30", 0, []string{}},
		{"name substring sorted by code", "國泰", 0, []string{"00878", "2882"}},
		{"name match across codes", "高", 0, []string{"0056", "00878", "00919"}},
		{"capped at default limit", "2", 0, []string{"2303", "2330", "2881", "2882"}},
		{"explicit limit", "00", 2, []string{"0056", "00878"}},
		{"empty text", "  ", 0, []string{}},
		{"no match", "zzz", 0, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Suggest(stocks, tt.text, tt.limit)
			out := make([]string, 0, len(got))
			for _, s := range got {
				out = append(out, s.StockCode)
			}
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestRankByYield(t *testing.T) {
	ranked := RankByYield(sample)

	assert.Equal(t, []string{"0056", "2317", "2884", "2330", "00878"}, codes(ranked))
	assert.Equal(t, "2330", sample[0].StockCode)
}

func TestState_Active(t *testing.T) {
	assert.False(t, NewState().Active())
	assert.True(t, State{FreeText: "2330"}.Active())
	assert.True(t, State{YieldFilter: true}.Active())
	assert.False(t, State{FreeText: "   "}.Active())
}
