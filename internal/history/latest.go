package history

import (
	"math"
	"sort"

	"github.com/wonny/divcal/internal/contracts"
)

// LatestEvent picks the event a stock page should feature.
// ⭐ SSOT: 대표 배당 이벤트 선택 규칙
//
// Among records that distribute cash or stock (all records when none
// do), the nearest upcoming ex date on or after today wins; otherwise the
// most recent past ex date. Records without an ex date are only used
// when nothing else qualifies, taking the first one.
func LatestEvent(records []contracts.DividendRecord, today contracts.Date) *contracts.DividendRecord {
	if len(records) == 0 {
		return nil
	}

	pool := make([]contracts.DividendRecord, 0, len(records))
	for _, r := range records {
		if r.HasDistribution() {
			pool = append(pool, r)
		}
	}
	if len(pool) == 0 {
		pool = records
	}

	var upcoming, past []contracts.DividendRecord
	for _, r := range pool {
		switch {
		case r.ExDate == nil:
		case r.ExDate.Before(today):
			past = append(past, r)
		default:
			upcoming = append(upcoming, r)
		}
	}

	if len(upcoming) > 0 {
		sort.SliceStable(upcoming, func(i, j int) bool {
			return upcoming[i].ExDate.Before(*upcoming[j].ExDate)
		})
		return &upcoming[0]
	}

	if len(past) > 0 {
		sort.SliceStable(past, func(i, j int) bool {
			return past[i].ExDate.After(*past[j].ExDate)
		})
		return &past[0]
	}

	first := pool[0]
	return &first
}

// Historical returns records whose pay date (else ex date) is before today.
func Historical(records []contracts.DividendRecord, today contracts.Date) []contracts.DividendRecord {
	out := make([]contracts.DividendRecord, 0, len(records))
	for _, r := range records {
		if d := r.KeyDate(); d != nil && d.Before(today) {
			out = append(out, r)
		}
	}
	return out
}

// AverageCashDividend is the mean cash dividend, rounded to 2 decimals.
// Nil when records is empty.
func AverageCashDividend(records []contracts.DividendRecord) *float64 {
	if len(records) == 0 {
		return nil
	}
	var total float64
	for _, r := range records {
		total += r.CashDividend
	}
	avg := round2(total / float64(len(records)))
	return &avg
}

// AverageFillDays is the mean of known, non-negative fill days, rounded to
// one decimal. Nil when none are known.
func AverageFillDays(records []contracts.DividendRecord) *float64 {
	var total, n int
	for _, r := range records {
		if r.DaysToFill != nil && *r.DaysToFill >= 0 {
			total += *r.DaysToFill
			n++
		}
	}
	if n == 0 {
		return nil
	}
	avg := round1(float64(total) / float64(n))
	return &avg
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
