package seo

import (
	"fmt"
	"html/template"
	"io"

	"github.com/wonny/divcal/internal/calculator"
	"github.com/wonny/divcal/internal/calendar"
	"github.com/wonny/divcal/internal/contracts"
	"github.com/wonny/divcal/internal/dividends"
	"github.com/wonny/divcal/pkg/config"
)

// homeCellLimit caps the events listed per day; the rest collapse into "+N"
const homeCellLimit = 3

type homeCell struct {
	calendar.Cell
	Shown []contracts.DividendEvent
	More  int
}

type homePage struct {
	Meta     Metadata
	Month    *calendar.Month
	Weekdays [7]string
	Weeks    [][]homeCell
	Degraded bool
}

var homeFuncs = template.FuncMap{
	"percent": calculator.FormatPercent,
	"name":    CleanText,
}

var homeTmpl = template.Must(template.New("home").Funcs(homeFuncs).Parse(`<!DOCTYPE html>
<html lang="zh-TW">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Meta.Title}}</title>
<meta name="description" content="{{.Meta.Description}}">
<link rel="canonical" href="{{.Meta.Canonical}}">
<meta property="og:title" content="{{.Meta.OpenGraph.Title}}">
<meta property="og:description" content="{{.Meta.OpenGraph.Description}}">
<meta property="og:url" content="{{.Meta.OpenGraph.URL}}">
<meta property="og:site_name" content="{{.Meta.OpenGraph.SiteName}}">
<meta property="og:locale" content="{{.Meta.OpenGraph.Locale}}">
<meta property="og:type" content="{{.Meta.OpenGraph.Type}}">
<meta property="og:image" content="{{.Meta.OpenGraph.Image}}">
</head>
<body>
<main>
<h1>{{.Month.Year}} 年 {{.Month.Month}} 月</h1>
<nav><a class="prev" href="/?year={{.Month.Prev.Year}}&month={{.Month.Prev.Month}}">‹</a> <a class="next" href="/?year={{.Month.Next.Year}}&month={{.Month.Next.Month}}">›</a></nav>
{{if .Degraded}}<p class="degraded">資料暫時無法取得</p>{{end}}
<table class="calendar">
<thead><tr>{{range .Weekdays}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{range .Weeks}}<tr>{{range .}}<td data-date="{{.Date}}"{{if not .InTargetMonth}} class="outside"{{end}}{{if .IsToday}} aria-current="date"{{end}}>
<span class="day">{{.Date.Day}}</span>{{if .HasTracked}} <span class="tracked">♥</span>{{end}}
{{range .Shown}}<a class="event" href="/stock/{{.StockCode}}">{{name .StockName}} {{percent .YieldRate}}</a>{{end}}{{if gt .More 0}}<span class="more">+{{.More}}</span>{{end}}
</td>{{end}}</tr>
{{end}}</tbody>
</table>
</main>
</body>
</html>
`))

// RenderHomePage writes the server-rendered month calendar.
func RenderHomePage(w io.Writer, site config.SiteConfig, view *dividends.CalendarView) error {
	m := view.Month
	weeks := make([][]homeCell, len(m.Weeks))
	for i, week := range m.Weeks {
		row := make([]homeCell, len(week))
		for j, cell := range week {
			shown := cell.Events
			more := 0
			if len(shown) > homeCellLimit {
				more = len(shown) - homeCellLimit
				shown = shown[:homeCellLimit]
			}
			row[j] = homeCell{Cell: cell, Shown: shown, More: more}
		}
		weeks[i] = row
	}

	page := homePage{
		Meta:     HomeMetadata(site),
		Month:    m,
		Weekdays: m.Weekdays,
		Weeks:    weeks,
		Degraded: view.Degraded,
	}

	if err := homeTmpl.Execute(w, page); err != nil {
		return fmt.Errorf("render home page: %w", err)
	}
	return nil
}
