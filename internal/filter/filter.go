package filter

import (
	"sort"
	"strings"

	"github.com/wonny/divcal/internal/contracts"
	"github.com/wonny/divcal/internal/watchlist"
)

// DefaultYieldThreshold is the high-yield cutoff in percent
const DefaultYieldThreshold = 5.0

// DefaultSuggestLimit caps autocomplete results
const DefaultSuggestLimit = 4

// State is the user's current calendar filter selection
type State struct {
	FreeText       string        `json:"free_text"`
	WatchlistOnly  bool          `json:"watchlist_only"`
	YieldFilter    bool          `json:"yield_filter"`
	YieldThreshold float64       `json:"yield_threshold"`
	Watchlist      watchlist.Set `json:"-"`
}

// NewState returns a State with the default threshold and no filters on.
func NewState() State {
	return State{YieldThreshold: DefaultYieldThreshold}
}

// Active reports whether any stage would drop events.
func (s State) Active() bool {
	return s.WatchlistOnly || s.YieldFilter || strings.TrimSpace(s.FreeText) != ""
}

// Apply narrows events through the watchlist, yield and free-text stages,
// in that order, each running on the previous stage's output.
// ⭐ SSOT: 달력 필터 파이프라인
//
// The input slice is never modified and the result is always a new slice.
// Yield uses the upstream-supplied yield_rate; events without one never
// pass the yield stage.
func Apply(events []contracts.DividendEvent, s State) []contracts.DividendEvent {
	out := make([]contracts.DividendEvent, 0, len(events))
	needle := strings.ToLower(strings.TrimSpace(s.FreeText))

	for _, e := range events {
		if s.WatchlistOnly && !s.Watchlist.Has(e.StockCode) {
			continue
		}
		if s.YieldFilter && (e.YieldRate == nil || *e.YieldRate < s.YieldThreshold) {
			continue
		}
		if needle != "" && !matchesText(e.StockCode, e.StockName, needle) {
			continue
		}
		out = append(out, e)
	}

	return out
}

func matchesText(code, name, needle string) bool {
	return strings.Contains(strings.ToLower(code), needle) ||
		strings.Contains(strings.ToLower(name), needle)
}

// Suggest returns up to limit stocks whose code starts with text or whose
// name contains it, ordered by code. Empty text yields nothing.
func Suggest(stocks []contracts.StockListItem, text string, limit int) []contracts.StockListItem {
	needle := strings.ToLower(strings.TrimSpace(text))
	if needle == "" {
		return []contracts.StockListItem{}
	}
	if limit <= 0 {
		limit = DefaultSuggestLimit
	}

	matches := make([]contracts.StockListItem, 0, limit)
	for _, s := range stocks {
		if strings.HasPrefix(strings.ToLower(s.StockCode), needle) ||
			strings.Contains(strings.ToLower(s.StockName), needle) {
			matches = append(matches, s)
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].StockCode < matches[j].StockCode
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// RankByYield returns a copy of events ordered by yield_rate descending.
// Missing yields rank as zero; ties keep input order.
func RankByYield(events []contracts.DividendEvent) []contracts.DividendEvent {
	out := make([]contracts.DividendEvent, len(events))
	copy(out, events)

	sort.SliceStable(out, func(i, j int) bool {
		return yieldOf(out[i]) > yieldOf(out[j])
	})
	return out
}

func yieldOf(e contracts.DividendEvent) float64 {
	if e.YieldRate == nil {
		return 0
	}
	return *e.YieldRate
}
