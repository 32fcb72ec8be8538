package seo

import (
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/wonny/divcal/internal/calculator"
	"github.com/wonny/divcal/internal/dividends"
	"github.com/wonny/divcal/pkg/config"
)

// socialSummaryLen caps og/twitter descriptions taken from the article
const socialSummaryLen = 120

type stockPage struct {
	Meta     Metadata
	JSONLD   []template.JS
	Keywords string
	View     *dividends.StockView
	Summary  calculator.Display
	Presets  []float64
	Article  template.HTML
	ChartURL string
	ICSURL   string
}

var pageFuncs = template.FuncMap{
	"percent": calculator.FormatPercent,
	"cash": func(v float64) string {
		return fmt.Sprintf("%.2f", v)
	},
}

var pageTmpl = template.Must(template.New("stock").Funcs(pageFuncs).Parse(`<!DOCTYPE html>
<html lang="zh-TW">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Meta.Title}}</title>
<meta name="description" content="{{.Meta.Description}}">
<meta name="keywords" content="{{.Keywords}}">
<link rel="canonical" href="{{.Meta.Canonical}}">
<meta property="og:title" content="{{.Meta.OpenGraph.Title}}">
<meta property="og:description" content="{{.Meta.OpenGraph.Description}}">
<meta property="og:url" content="{{.Meta.OpenGraph.URL}}">
<meta property="og:site_name" content="{{.Meta.OpenGraph.SiteName}}">
<meta property="og:locale" content="{{.Meta.OpenGraph.Locale}}">
<meta property="og:type" content="{{.Meta.OpenGraph.Type}}">
<meta property="og:image" content="{{.Meta.OpenGraph.Image}}">
<meta property="og:image:width" content="{{.Meta.OpenGraph.ImageWidth}}">
<meta property="og:image:height" content="{{.Meta.OpenGraph.ImageHeight}}">
<meta name="twitter:card" content="{{.Meta.Twitter.Card}}">
<meta name="twitter:title" content="{{.Meta.Twitter.Title}}">
<meta name="twitter:description" content="{{.Meta.Twitter.Description}}">
<meta name="twitter:image" content="{{.Meta.Twitter.Image}}">
{{range .JSONLD}}<script type="application/ld+json">{{.}}</script>
{{end}}</head>
<body>
<main>
<h1>{{.View.Info.StockName}} ({{.View.Info.StockCode}})</h1>
<section id="calculator">
<p>現金股利 <strong>{{.View.Calculator.CashDividend | cash}}</strong> 元・殖利率 <strong>{{percent .View.RealtimeYield}}</strong></p>
<p>持有 <strong>{{.View.Calculator.Shares}}</strong> 股・預估股利 <strong class="payout">{{.Summary.DividendPayout}}</strong> 元・市值 <strong>{{.Summary.MarketValue}}</strong> 元</p>
<p class="presets">{{range .Presets}}<button data-shares="{{.}}">{{.}} 股</button>{{end}}</p>
{{if .View.GoogleCalendar}}<p><a class="gcal" href="{{.View.GoogleCalendar}}" rel="nofollow">加入 Google 日曆</a> <a class="ics" href="{{.ICSURL}}" rel="nofollow">下載 .ics</a></p>{{end}}
</section>
<section id="chart"><img src="{{.ChartURL}}" alt="{{.View.Info.StockName}} 現金股利"></section>
<section id="history">
<table>
<thead><tr><th>年度</th><th>除息日</th><th>發放日</th><th>現金股利</th><th>殖利率</th></tr></thead>
<tbody>
{{range .View.Table}}<tr>{{if gt .RowSpan 0}}<td rowspan="{{.RowSpan}}">{{.Year}}</td>{{end}}<td>{{.ExLabel}}</td><td>{{.PayLabel}}</td><td>{{.Record.CashDividend | cash}}</td><td>{{percent .Record.YieldRate}}</td></tr>
{{end}}</tbody>
</table>
</section>
<section id="about">{{.Article}}</section>
</main>
</body>
</html>
`))

// RenderStockPage writes the server-rendered stock page.
// presets are the quick-select share counts; nil uses calculator.Presets.
func RenderStockPage(w io.Writer, site config.SiteConfig, view *dividends.StockView, year int, presets []float64) error {
	meta := StockMetadata(site, view.Info, year)

	article, err := RenderArticle(NewArticle(view))
	if err != nil {
		return err
	}
	if summary, err := Summary(string(article), socialSummaryLen); err == nil && summary != "" {
		meta.OpenGraph.Description = summary
		meta.Twitter.Description = summary
	}

	jsonld := make([]template.JS, len(meta.JSONLD))
	for i, doc := range meta.JSONLD {
		jsonld[i] = template.JS(doc)
	}

	if len(presets) == 0 {
		presets = calculator.Presets
	}

	page := stockPage{
		Meta:     meta,
		JSONLD:   jsonld,
		Keywords: strings.Join(meta.Keywords, ","),
		View:     view,
		Summary:  view.CalculatorSum.Display(),
		Presets:  presets,
		Article:  article,
		ChartURL: fmt.Sprintf("/api/stocks/%s/chart.png", view.Info.StockCode),
		ICSURL:   fmt.Sprintf("/api/stocks/%s/calendar.ics", view.Info.StockCode),
	}

	if err := pageTmpl.Execute(w, page); err != nil {
		return fmt.Errorf("render stock page: %w", err)
	}
	return nil
}
