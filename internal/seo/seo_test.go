package seo

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/divcal/internal/calculator"
	"github.com/wonny/divcal/internal/calendar"
	"github.com/wonny/divcal/internal/contracts"
	"github.com/wonny/divcal/internal/dividends"
	"github.com/wonny/divcal/internal/history"
	"github.com/wonny/divcal/pkg/config"
)

var testSite = config.SiteConfig{BaseURL: "https://example.com/", Name: "uGoodly 股利日曆"}

func tsmcInfo() contracts.StockInfo {
	return contracts.StockInfo{
		StockCode:  "2330",
		StockName:  "台積電",
		MarketType: contracts.MarketListed,
		DailyPrice: contracts.Float64Ptr(1085),
	}
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "台積電", CleanText("<b>台積電</b>"))
	assert.Equal(t, "A&B", CleanText("A&B"))
	assert.Equal(t, "", CleanText("<script>alert(1)</script>"))
}

func TestStockMetadata(t *testing.T) {
	meta := StockMetadata(testSite, tsmcInfo(), 2024)

	assert.Equal(t, "台積電 (2330) 2024 股利配息日、殖利率與股利計算 - uGoodly", meta.Title)
	assert.Contains(t, meta.Description, "目前股價 1085 元")
	assert.Equal(t, "https://example.com/stock/2330", meta.Canonical)
	assert.Equal(t, []string{"台積電", "2330"}, meta.Keywords[:2])
	assert.Equal(t, "台積電 (2330) 股利發放日與試算", meta.OpenGraph.Title)
	assert.Equal(t, "zh_TW", meta.OpenGraph.Locale)
	assert.Equal(t, "https://example.com/ugoodly_1200x630.png", meta.OpenGraph.Image)
	assert.Equal(t, "summary_large_image", meta.Twitter.Card)
	assert.Equal(t, "台積電 (2330) 股利日曆", meta.Twitter.Title)

	info := tsmcInfo()
	info.DailyPrice = nil
	assert.Contains(t, StockMetadata(testSite, info, 2024).Description, "目前股價 - 元")
}

func TestStockJSONLD(t *testing.T) {
	meta := StockMetadata(testSite, tsmcInfo(), 2024)
	require.Len(t, meta.JSONLD, 2)

	var app map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(meta.JSONLD[0]), &app))
	assert.Equal(t, "SoftwareApplication", app["@type"])
	assert.Equal(t, "台積電 股利計算機", app["name"])
	assert.Equal(t, "TWD", app["offers"].(map[string]interface{})["priceCurrency"])

	var crumbs struct {
		Items []struct {
			Position int    `json:"position"`
			Name     string `json:"name"`
			Item     string `json:"item"`
		} `json:"itemListElement"`
	}
	require.NoError(t, json.Unmarshal([]byte(meta.JSONLD[1]), &crumbs))
	require.Len(t, crumbs.Items, 2)
	assert.Equal(t, "首頁", crumbs.Items[0].Name)
	assert.Equal(t, "https://example.com/stock/2330", crumbs.Items[1].Item)
}

func sampleView() *dividends.StockView {
	records := []contracts.DividendRecord{
		{
			DividendEvent: contracts.DividendEvent{
				StockCode:    "2330",
				ExDate:       contracts.DatePtr(contracts.MustParseDate("2024-06-13")),
				PayDate:      contracts.DatePtr(contracts.MustParseDate("2024-07-11")),
				CashDividend: 4,
				YieldRate:    contracts.Float64Ptr(0.42),
			},
			DaysToFill: contracts.IntPtr(3),
		},
		{
			DividendEvent: contracts.DividendEvent{
				StockCode:    "2330",
				ExDate:       contracts.DatePtr(contracts.MustParseDate("2024-03-14")),
				PayDate:      contracts.DatePtr(contracts.MustParseDate("2024-04-11")),
				CashDividend: 3.5,
			},
			DaysToFill: contracts.IntPtr(6),
		},
	}
	today := contracts.MustParseDate("2024-09-01")
	latest := history.LatestEvent(records, today)
	past := history.Historical(records, today)
	state := calculator.NewState(1085, latest.CashDividend)

	return &dividends.StockView{
		Info:           tsmcInfo(),
		Latest:         latest,
		RealtimeYield:  calculator.YieldPercent(latest.CashDividend, 1085),
		Table:          history.TableRows(records),
		HistoricalN:    len(past),
		AverageCash:    history.AverageCashDividend(past),
		AverageFill:    history.AverageFillDays(past),
		Calculator:     state,
		CalculatorSum:  state.Summarize(),
		GoogleCalendar: "https://calendar.google.com/calendar/render?action=TEMPLATE",
		History:        records,
	}
}

func TestNewArticle(t *testing.T) {
	a := NewArticle(sampleView())
	assert.Equal(t, "4.00", a.Cash)
	assert.Equal(t, "1085", a.Price)
	assert.Equal(t, "0.37", a.RealtimeYield)
	assert.Equal(t, "2024-06-13", a.ExDate)
	assert.True(t, a.ShowAverages)
	assert.Equal(t, "3.75", a.AverageCash)
	assert.Equal(t, "4.5", a.AverageFill)
}

func TestArticleWithoutLatest(t *testing.T) {
	view := &dividends.StockView{Info: contracts.StockInfo{StockCode: "9999", StockName: "新公司"}}
	a := NewArticle(view)
	assert.Equal(t, unannounced, a.ExDate)
	assert.Equal(t, unannounced, a.PayDate)
	assert.Equal(t, "--", a.TipExDate())
	assert.Equal(t, "--", a.Price)
	assert.False(t, a.ShowAverages)

	fragment, err := RenderArticle(a)
	require.NoError(t, err)
	text := articleText(t, string(fragment))
	assert.Contains(t, text, "除息交易日為 尚未公告")
	assert.NotContains(t, text, "回顧過去紀錄")
}

func articleText(t *testing.T, fragment string) string {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	require.NoError(t, err)
	return strings.Join(strings.Fields(doc.Text()), " ")
}

func TestRenderArticle(t *testing.T) {
	fragment, err := RenderArticle(NewArticle(sampleView()))
	require.NoError(t, err)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(fragment)))
	require.NoError(t, err)
	assert.Equal(t, "關於 台積電 (2330) 配息概況", doc.Find("h3").First().Text())
	assert.Equal(t, "0.37%", doc.Find(".yield").Text())

	text := articleText(t, string(fragment))
	assert.Contains(t, text, "歷史平均配息金額約為 3.75 元")
	assert.Contains(t, text, "平均填息天數約為 4.5 天")
	assert.Contains(t, text, "除息日 (2024-06-13)")

	summary, err := Summary(string(fragment), 20)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(summary, "台積電 (2330)"))
	assert.Len(t, []rune(summary), 21)
}

func TestRenderArticleEscapesName(t *testing.T) {
	view := sampleView()
	view.Info.StockName = `<img src=x onerror=alert(1)>壞名`
	fragment, err := RenderArticle(NewArticle(view))
	require.NoError(t, err)
	assert.NotContains(t, string(fragment), "<img")
	assert.Contains(t, string(fragment), "壞名")
}

func TestRenderStockPage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderStockPage(&buf, testSite, sampleView(), 2024, nil))

	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)

	assert.Equal(t, "台積電 (2330) 2024 股利配息日、殖利率與股利計算 - uGoodly", doc.Find("title").Text())
	canonical, _ := doc.Find(`link[rel="canonical"]`).Attr("href")
	assert.Equal(t, "https://example.com/stock/2330", canonical)
	ogTitle, _ := doc.Find(`meta[property="og:title"]`).Attr("content")
	assert.Equal(t, "台積電 (2330) 股利發放日與試算", ogTitle)
	ogDesc, _ := doc.Find(`meta[property="og:description"]`).Attr("content")
	assert.True(t, strings.HasPrefix(ogDesc, "台積電 (2330) 根據最新資料"), ogDesc)
	assert.Contains(t, ogDesc, "4.00 元")
	twDesc, _ := doc.Find(`meta[name="twitter:description"]`).Attr("content")
	assert.Equal(t, ogDesc, twDesc)
	desc, _ := doc.Find(`meta[name="description"]`).Attr("content")
	assert.Contains(t, desc, "免費使用股利計算機")

	scripts := doc.Find(`script[type="application/ld+json"]`)
	require.Equal(t, 2, scripts.Length())
	var app map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(scripts.First().Text()), &app))
	assert.Equal(t, "FinanceApplication", app["applicationCategory"])

	assert.Equal(t, "4,000", doc.Find(".payout").Text())
	assert.Equal(t, 3, doc.Find(".presets button").Length())
	ics, _ := doc.Find("a.ics").Attr("href")
	assert.Equal(t, "/api/stocks/2330/calendar.ics", ics)

	rows := doc.Find("#history tbody tr")
	require.Equal(t, 2, rows.Length())
	yearCell := rows.First().Find("td[rowspan]")
	span, _ := yearCell.Attr("rowspan")
	assert.Equal(t, "2", span)
	assert.Equal(t, "2024", yearCell.Text())
	assert.Equal(t, 4, rows.Eq(1).Find("td").Length())
}

func TestRenderStockPageCustomPresets(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderStockPage(&buf, testSite, sampleView(), 2024, []float64{2000, 20000}))

	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)

	buttons := doc.Find(".presets button")
	require.Equal(t, 2, buttons.Length())
	shares, _ := buttons.Last().Attr("data-shares")
	assert.Equal(t, "20000", shares)
}

func TestRenderHomePage(t *testing.T) {
	ref := contracts.MustParseDate("2024-06-01")
	today := contracts.MustParseDate("2024-06-15")
	events := []contracts.DividendEvent{
		{StockCode: "2330", StockName: "台積電", PayDate: contracts.DatePtr(contracts.MustParseDate("2024-06-20")), YieldRate: contracts.Float64Ptr(1.8)},
		{StockCode: "0056", StockName: "元大高股息", PayDate: contracts.DatePtr(contracts.MustParseDate("2024-06-20"))},
		{StockCode: "2884", StockName: "玉山金", PayDate: contracts.DatePtr(contracts.MustParseDate("2024-06-20"))},
		{StockCode: "2303", StockName: "<b>聯電</b>", PayDate: contracts.DatePtr(contracts.MustParseDate("2024-06-20"))},
	}
	view := &dividends.CalendarView{Month: calendar.Build(ref, events, today, nil)}

	var buf bytes.Buffer
	require.NoError(t, RenderHomePage(&buf, testSite, view))

	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	assert.Equal(t, "台股股利日曆", doc.Find("title").Text())
	canonical, _ := doc.Find(`link[rel="canonical"]`).Attr("href")
	assert.Equal(t, "https://example.com", canonical)
	assert.Equal(t, 6, doc.Find("table.calendar tbody tr").Length())
	assert.Equal(t, 7, doc.Find("table.calendar thead th").Length())

	day := doc.Find(`td[data-date="2024-06-20"]`)
	require.Equal(t, 1, day.Length())
	assert.Equal(t, 3, day.Find("a.event").Length())
	assert.Equal(t, "+1", day.Find(".more").Text())
	assert.Contains(t, day.Find("a.event").First().Text(), "1.80%")

	assert.Equal(t, 1, doc.Find(`td[aria-current="date"]`).Length())
	prev, _ := doc.Find("a.prev").Attr("href")
	assert.Equal(t, "/?year=2024&month=5", prev)
	assert.Equal(t, 0, doc.Find(".degraded").Length())

	buf.Reset()
	view.Degraded = true
	require.NoError(t, RenderHomePage(&buf, testSite, view))
	assert.Contains(t, buf.String(), `class="degraded"`)
}

func TestSitemap(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	stocks := []contracts.StockListItem{
		{StockCode: "2330", YieldRate: contracts.Float64Ptr(1.8), HasDividendThisYear: true},
		{StockCode: "1101", YieldRate: contracts.Float64Ptr(4), HasDividendThisYear: false},
		{StockCode: "2002", YieldRate: contracts.Float64Ptr(0), HasDividendThisYear: true},
		{StockCode: "9999", YieldRate: nil, HasDividendThisYear: true},
	}

	urls := SitemapURLs(testSite, stocks, now)
	require.Len(t, urls, 4)
	assert.Equal(t, "https://example.com", urls[0].Loc)
	assert.Equal(t, "https://example.com/privacy", urls[1].Loc)
	assert.Equal(t, "daily", urls[0].ChangeFreq)
	assert.Equal(t, "1.0", urls[2].Priority)
	assert.Equal(t, "https://example.com/stock/2330", urls[3].Loc)
	assert.Equal(t, "weekly", urls[3].ChangeFreq)
	assert.Equal(t, "0.8", urls[3].Priority)
	assert.Equal(t, "2024-06-01T12:00:00Z", urls[3].LastMod)

	body, err := Sitemap(testSite, stocks, now)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(body, []byte("<?xml")))

	var parsed urlSet
	require.NoError(t, xml.Unmarshal(body, &parsed))
	assert.Equal(t, sitemapNS, parsed.XMLNS)
	assert.Len(t, parsed.URLs, 4)
}

func TestRobots(t *testing.T) {
	robots := Robots(testSite)
	assert.Contains(t, robots, "Allow: /\n")
	assert.Contains(t, robots, "Disallow: /private/\n")
	assert.Contains(t, robots, "Sitemap: https://example.com/sitemap.xml")
}
