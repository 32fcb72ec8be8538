package seo

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/wonny/divcal/internal/contracts"
	"github.com/wonny/divcal/pkg/config"
)

var strictPolicy = bluemonday.StrictPolicy()

// CleanText strips markup from upstream-supplied text (stock names)
// and returns it unescaped, ready for templates to escape once.
func CleanText(s string) string {
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(s)))
}

// OpenGraph holds og:* tags
type OpenGraph struct {
	Title       string
	Description string
	URL         string
	SiteName    string
	Locale      string
	Type        string
	Image       string
	ImageWidth  int
	ImageHeight int
}

// Twitter holds twitter:* tags
type Twitter struct {
	Card        string
	Title       string
	Description string
	Image       string
}

// Metadata is the <head> content of one page
type Metadata struct {
	Title       string
	Description string
	Keywords    []string
	Canonical   string
	OpenGraph   OpenGraph
	Twitter     Twitter
	JSONLD      []string
}

// ogImage is the shared 1200x630 social card
func ogImage(site config.SiteConfig) string {
	return strings.TrimRight(site.BaseURL, "/") + "/ugoodly_1200x630.png"
}

// StockURL is the canonical page of a stock.
func StockURL(site config.SiteConfig, code string) string {
	return fmt.Sprintf("%s/stock/%s", strings.TrimRight(site.BaseURL, "/"), code)
}

// StockMetadata builds the head of a stock page for year.
func StockMetadata(site config.SiteConfig, info contracts.StockInfo, year int) Metadata {
	name := CleanText(info.StockName)
	code := info.StockCode
	price := "-"
	if info.DailyPrice != nil {
		price = formatNumber(*info.DailyPrice)
	}
	url := StockURL(site, code)
	image := ogImage(site)

	return Metadata{
		Title: fmt.Sprintf("%s (%s) %d 股利配息日、殖利率與股利計算 - uGoodly", name, code, year),
		Description: fmt.Sprintf("免費使用股利計算機，查詢 %s (%s) 最新現金股利發放日、除權息日期。目前股價 %s 元，即時殖利率試算。",
			name, code, price),
		Keywords: []string{name, code, "股利計算", "存股試算", "殖利率計算機", "股息試算",
			"股利", "發放日", "除息日", "殖利率", "存股", "配息日"},
		Canonical: url,
		OpenGraph: OpenGraph{
			Title:       fmt.Sprintf("%s (%s) 股利發放日與試算", name, code),
			Description: fmt.Sprintf("查詢 %s 最新現金股利與殖利率，使用免費股利計算機試算存股回報。", name),
			URL:         url,
			SiteName:    site.Name,
			Locale:      "zh_TW",
			Type:        "website",
			Image:       image,
			ImageWidth:  1200,
			ImageHeight: 630,
		},
		Twitter: Twitter{
			Card:        "summary_large_image",
			Title:       fmt.Sprintf("%s (%s) 股利日曆", name, code),
			Description: fmt.Sprintf("查詢 %s 殖利率與除息日", name),
			Image:       image,
		},
		JSONLD: stockJSONLD(site, name, code),
	}
}

// HomeMetadata builds the head of the calendar page.
func HomeMetadata(site config.SiteConfig) Metadata {
	base := strings.TrimRight(site.BaseURL, "/")
	return Metadata{
		Title:       "台股股利日曆",
		Description: "追蹤台股現金股利發放日",
		Canonical:   base,
		OpenGraph: OpenGraph{
			Title:       "台股股利日曆",
			Description: "追蹤台股現金股利發放日",
			URL:         base,
			SiteName:    site.Name,
			Locale:      "zh_TW",
			Type:        "website",
			Image:       ogImage(site),
		},
	}
}

func stockJSONLD(site config.SiteConfig, name, code string) []string {
	app := map[string]interface{}{
		"@context":            "https://schema.org",
		"@type":               "SoftwareApplication",
		"name":                name + " 股利計算機",
		"applicationCategory": "FinanceApplication",
		"operatingSystem":     "Web",
		"offers": map[string]interface{}{
			"@type":         "Offer",
			"price":         "0",
			"priceCurrency": "TWD",
		},
		"featureList": "股票股利試算, 殖利率換算, 投入成本計算",
		"description": fmt.Sprintf("線上免費試算 %s (%s) 現金股利與殖利率投報率。", name, code),
	}

	breadcrumb := map[string]interface{}{
		"@context": "https://schema.org",
		"@type":    "BreadcrumbList",
		"itemListElement": []map[string]interface{}{
			{"@type": "ListItem", "position": 1, "name": "首頁", "item": strings.TrimRight(site.BaseURL, "/")},
			{"@type": "ListItem", "position": 2, "name": fmt.Sprintf("%s (%s)", name, code), "item": StockURL(site, code)},
		},
	}

	out := make([]string, 0, 2)
	for _, doc := range []interface{}{app, breadcrumb} {
		b, err := json.Marshal(doc)
		if err != nil {
			continue
		}
		out = append(out, string(b))
	}
	return out
}
