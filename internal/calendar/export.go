package calendar

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/divcal/internal/contracts"
)

// ErrNoPayDate is returned when an event cannot be placed on a calendar
var ErrNoPayDate = errors.New("event has no pay date")

const icsDate = "20060102"

func payoutTitle(e contracts.DividendEvent) string {
	return fmt.Sprintf("💰 領股利: %s (%s)", e.StockName, e.StockCode)
}

func payoutDetails(e contracts.DividendEvent) string {
	ex := "尚未公告"
	if e.ExDate != nil {
		ex = e.ExDate.String()
	}
	return fmt.Sprintf("預計發放現金股利: %s 元\n除息日: %s", formatAmount(e.CashDividend), ex)
}

// GoogleCalendarURL builds an all-day "add event" link for the pay date.
func GoogleCalendarURL(e contracts.DividendEvent) (string, error) {
	if e.PayDate == nil {
		return "", ErrNoPayDate
	}

	start := e.PayDate.Time()
	q := url.Values{}
	q.Set("action", "TEMPLATE")
	q.Set("text", payoutTitle(e))
	q.Set("dates", start.Format(icsDate)+"/"+start.AddDate(0, 0, 1).Format(icsDate))
	q.Set("details", payoutDetails(e))

	return "https://calendar.google.com/calendar/render?" + q.Encode(), nil
}

// ICS renders the pay date as a single-event iCalendar document.
// now stamps DTSTAMP so output is reproducible in tests.
func ICS(e contracts.DividendEvent, now time.Time) ([]byte, error) {
	if e.PayDate == nil {
		return nil, ErrNoPayDate
	}

	start := e.PayDate.Time()
	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//divcal//dividend calendar//ZH-TW",
		"CALSCALE:GREGORIAN",
		"BEGIN:VEVENT",
		fmt.Sprintf("UID:dividend-%s-%s@divcal", e.StockCode, start.Format(icsDate)),
		"DTSTAMP:" + now.UTC().Format("20060102T150405Z"),
		"DTSTART;VALUE=DATE:" + start.Format(icsDate),
		"DTEND;VALUE=DATE:" + start.AddDate(0, 0, 1).Format(icsDate),
		"SUMMARY:" + escapeICS(payoutTitle(e)),
		"DESCRIPTION:" + escapeICS(payoutDetails(e)),
		"END:VEVENT",
		"END:VCALENDAR",
	}

	return []byte(strings.Join(lines, "\r\n") + "\r\n"), nil
}

// ICSFilename is the download name of an event's .ics file.
func ICSFilename(e contracts.DividendEvent) string {
	if e.PayDate == nil {
		return fmt.Sprintf("dividend_%s.ics", e.StockCode)
	}
	return fmt.Sprintf("dividend_%s_%s.ics", e.StockCode, e.PayDate.Time().Format(icsDate))
}

var icsEscaper = strings.NewReplacer(`\`, `\\`, ";", `\;`, ",", `\,`, "\n", `\n`)

func escapeICS(s string) string {
	return icsEscaper.Replace(s)
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
