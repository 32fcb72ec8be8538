package seo

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/wonny/divcal/internal/contracts"
	"github.com/wonny/divcal/pkg/config"
)

const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

var staticRoutes = []string{"", "/privacy", "/disclaimer"}

// URL is one <url> entry of a sitemap
type URL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

type urlSet struct {
	XMLName xml.Name `xml:"urlset"`
	XMLNS   string   `xml:"xmlns,attr"`
	URLs    []URL    `xml:"url"`
}

// SitemapURLs lists static routes (daily, 1.0) followed by stock pages
// (weekly, 0.8) for stocks paying this year with a positive yield.
func SitemapURLs(site config.SiteConfig, stocks []contracts.StockListItem, now time.Time) []URL {
	base := strings.TrimRight(site.BaseURL, "/")
	lastMod := now.UTC().Format(time.RFC3339)

	urls := make([]URL, 0, len(staticRoutes)+len(stocks))
	for _, route := range staticRoutes {
		urls = append(urls, URL{
			Loc:        base + route,
			LastMod:    lastMod,
			ChangeFreq: "daily",
			Priority:   "1.0",
		})
	}

	for _, s := range stocks {
		if !s.HasDividendThisYear || s.YieldRate == nil || *s.YieldRate <= 0 {
			continue
		}
		urls = append(urls, URL{
			Loc:        StockURL(site, s.StockCode),
			LastMod:    lastMod,
			ChangeFreq: "weekly",
			Priority:   "0.8",
		})
	}
	return urls
}

// Sitemap renders sitemap.xml.
func Sitemap(site config.SiteConfig, stocks []contracts.StockListItem, now time.Time) ([]byte, error) {
	body, err := xml.MarshalIndent(urlSet{
		XMLNS: sitemapNS,
		URLs:  SitemapURLs(site, stocks, now),
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal sitemap: %w", err)
	}
	return append([]byte(xml.Header), body...), nil
}

// Robots renders robots.txt.
func Robots(site config.SiteConfig) string {
	return fmt.Sprintf("User-agent: *\nAllow: /\nDisallow: /private/\n\nSitemap: %s/sitemap.xml\n",
		strings.TrimRight(site.BaseURL, "/"))
}
