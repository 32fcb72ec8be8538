package calendar

import (
	"github.com/wonny/divcal/internal/contracts"
)

// Bucket groups events by pay date over the given days.
// ⭐ SSOT: 지급일 기준 이벤트 분배
//
// Every day in days is a key (with an empty, non-nil slice when nothing
// pays that day). Events without a pay date, or paying outside days, are
// dropped. Relative input order is preserved within a bucket.
func Bucket(days []contracts.Date, events []contracts.DividendEvent) map[contracts.Date][]contracts.DividendEvent {
	buckets := make(map[contracts.Date][]contracts.DividendEvent, len(days))
	for _, d := range days {
		buckets[d] = []contracts.DividendEvent{}
	}

	for _, e := range events {
		if e.PayDate == nil {
			continue
		}
		bucket, ok := buckets[*e.PayDate]
		if !ok {
			continue
		}
		buckets[*e.PayDate] = append(bucket, e)
	}

	return buckets
}
