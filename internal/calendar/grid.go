package calendar

import (
	"time"

	"github.com/wonny/divcal/internal/contracts"
)

// WeekdayLabels is the column header order of the grid (Sunday first)
var WeekdayLabels = [7]string{"日", "一", "二", "三", "四", "五", "六"}

// BuildGrid returns every day from the Sunday on or before the 1st of
// ref's month through the Saturday on or after its last day.
// ⭐ SSOT: 달력 격자 생성 (28, 35, 42일)
//
// The length is always a multiple of 7 and days ascend by exactly one.
func BuildGrid(ref contracts.Date) []contracts.Date {
	start := startOfWeek(ref.FirstOfMonth())
	end := endOfWeek(ref.LastOfMonth())

	days := make([]contracts.Date, 0, 42)
	for d := start; !d.After(end); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}

func startOfWeek(d contracts.Date) contracts.Date {
	return d.AddDays(-int(d.Weekday() - time.Sunday))
}

func endOfWeek(d contracts.Date) contracts.Date {
	return d.AddDays(int(time.Saturday - d.Weekday()))
}
