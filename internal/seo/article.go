package seo

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/divcal/internal/dividends"
)

const unannounced = "尚未公告"

// Article is the data behind the crawlable summary of a stock page
type Article struct {
	Name          string
	Code          string
	Cash          string
	Price         string
	RealtimeYield string
	ExDate        string
	PayDate       string
	ShowAverages  bool
	AverageCash   string
	AverageFill   string
}

// NewArticle derives the article fields from a stock view.
func NewArticle(view *dividends.StockView) Article {
	a := Article{
		Name:          CleanText(view.Info.StockName),
		Code:          view.Info.StockCode,
		Cash:          "0.00",
		Price:         "--",
		RealtimeYield: "0",
		ExDate:        unannounced,
		PayDate:       unannounced,
		ShowAverages:  view.HistoricalN > 1,
		AverageCash:   "0",
	}

	if view.Info.DailyPrice != nil && *view.Info.DailyPrice > 0 {
		a.Price = formatNumber(*view.Info.DailyPrice)
	}
	if view.RealtimeYield != nil {
		a.RealtimeYield = fmt.Sprintf("%.2f", *view.RealtimeYield)
	}
	if l := view.Latest; l != nil {
		a.Cash = fmt.Sprintf("%.2f", l.CashDividend)
		if l.ExDate != nil {
			a.ExDate = l.ExDate.String()
		}
		if l.PayDate != nil {
			a.PayDate = l.PayDate.String()
		}
	}
	if view.AverageCash != nil {
		a.AverageCash = fmt.Sprintf("%.2f", *view.AverageCash)
	}
	if view.AverageFill != nil {
		a.AverageFill = fmt.Sprintf("%.1f", *view.AverageFill)
	}
	return a
}

// TipExDate is the ex date shown in the closing tip, "--" when unannounced.
func (a Article) TipExDate() string {
	if a.ExDate == unannounced {
		return "--"
	}
	return a.ExDate
}

var articleTmpl = template.Must(template.New("article").Parse(`<article class="prose">
<h3>關於 {{.Name}} ({{.Code}}) 配息概況</h3>
<p><strong>{{.Name}} ({{.Code}})</strong> 根據最新資料，該公司最新一期的現金股利為 <strong>{{.Cash}} 元</strong>。以目前的最新收盤價 <strong>{{.Price}} 元</strong> 計算，其預估單次殖利率約為 <span class="yield">{{.RealtimeYield}}%</span>。</p>
<p>投資人若有意參與本次除權息，須注意<strong>除息交易日為 {{.ExDate}}</strong>，配息日: <strong>{{.PayDate}}</strong>。{{if .ShowAverages}}<span>回顧過去紀錄，{{.Name}} 的歷史平均配息金額約為 {{.AverageCash}} 元{{if .AverageFill}}，平均填息天數約為 <strong>{{.AverageFill}} 天</strong>。{{else}}。{{end}}</span>{{end}}</p>
<h3>如何使用 {{.Name}} 股利計算機？</h3>
<p>不想手動按計算機嗎？使用上方的<strong>「{{.Name}} 股利計算機」</strong>，您只需輸入預計持有的張數（例如 10 張 = 10,000 股），系統即會根據最新現金股利 <strong>{{.Cash}} 元</strong>，自動計算出您可領取的總股利金額。此外，您也可以輸入預計投入的資金，系統會依據目前股價 <strong>{{.Price}} 元</strong>，反推您可以買進的股數與預估回報。</p>
<div class="tip"><p><strong>💡 投資小撇步：</strong>想要領取 {{.Name}} 的股利，必須在除息日 ({{.TipExDate}}) 的<strong>前一個交易日</strong>持有。</p></div>
</article>`))

// RenderArticle renders the article as an HTML fragment.
func RenderArticle(a Article) (template.HTML, error) {
	var buf bytes.Buffer
	if err := articleTmpl.Execute(&buf, a); err != nil {
		return "", fmt.Errorf("render article: %w", err)
	}
	return template.HTML(buf.String()), nil
}

// Summary returns the first paragraph of a rendered article as plain text,
// truncated to max runes.
func Summary(fragment string, max int) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	text := strings.Join(strings.Fields(doc.Find("p").First().Text()), " ")
	runes := []rune(text)
	if max > 0 && len(runes) > max {
		return string(runes[:max]) + "…", nil
	}
	return text, nil
}

// formatNumber prints a price without trailing zeros ("1085", "61.3").
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
