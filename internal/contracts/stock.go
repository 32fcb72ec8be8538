package contracts

import (
	"context"
	"regexp"
	"strings"
)

// StockInfo is the static profile of a stock
type StockInfo struct {
	StockCode  string     `json:"stock_code"`
	StockName  string     `json:"stock_name"`
	MarketType MarketType `json:"market_type"`
	DailyPrice *float64   `json:"daily_price"`
}

// StockDetail is a stock profile with its dividend history
type StockDetail struct {
	Info    StockInfo        `json:"info"`
	History []DividendRecord `json:"history"`
}

// StockListItem is one entry of the searchable stock list
type StockListItem struct {
	StockCode           string   `json:"stock_code"`
	StockName           string   `json:"stock_name"`
	YieldRate           *float64 `json:"yield_rate"`
	HasDividendThisYear bool     `json:"has_dividend_this_year"`
}

var stockCodePattern = regexp.MustCompile(`^[0-9A-Z]{4,6}$`)

// NormalizeStockCode trims and upper-cases a code.
// ok is false when the result is not a plausible TWSE/TPEx code.
func NormalizeStockCode(code string) (string, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	return code, stockCodePattern.MatchString(code)
}

// DividendSource is the read side of the upstream dividend data API
// ⭐ SSOT: 외부 배당 데이터 조회 인터페이스
type DividendSource interface {
	FetchMonth(ctx context.Context, year, month int) ([]DividendEvent, error)
	FetchYieldAbove(ctx context.Context, year int, minYield float64) ([]DividendEvent, error)
	FetchStockList(ctx context.Context) ([]StockListItem, error)
	FetchStock(ctx context.Context, code string) (*StockDetail, error)
	FetchLatest(ctx context.Context, code string) (*DividendEvent, error)
}
