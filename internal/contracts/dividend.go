package contracts

import (
	"encoding/json"
	"fmt"
	"strings"
)

// MarketType distinguishes the two Taiwanese exchanges
type MarketType string

const (
	MarketListed MarketType = "listed" // 上市 (TWSE)
	MarketOTC    MarketType = "otc"    // 上櫃 (TPEx)
)

// ParseMarketType normalizes upstream spellings.
func ParseMarketType(s string) (MarketType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "listed", "twse", "tse", "上市":
		return MarketListed, nil
	case "otc", "tpex", "上櫃":
		return MarketOTC, nil
	default:
		return "", fmt.Errorf("unknown market type %q", s)
	}
}

// Label returns the display name used on the calendar.
func (m MarketType) Label() string {
	switch m {
	case MarketListed:
		return "上市"
	case MarketOTC:
		return "上櫃"
	default:
		return ""
	}
}

// UnmarshalJSON accepts any ParseMarketType spelling.
func (m *MarketType) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*m = ""
		return nil
	}
	parsed, err := ParseMarketType(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// DividendEvent is one dividend distribution of one stock
// ⭐ SSOT: 달력 엔진이 다루는 배당 이벤트 (upstream 경계에서 정규화 완료)
type DividendEvent struct {
	ID             string     `json:"id"`
	StockCode      string     `json:"stock_code"`
	StockName      string     `json:"stock_name"`
	MarketType     MarketType `json:"market_type"`
	ExDate         *Date      `json:"ex_date"`
	PayDate        *Date      `json:"pay_date"`
	CashDividend   float64    `json:"cash_dividend"`
	StockDividend  float64    `json:"stock_dividend"`
	ReferencePrice *float64   `json:"reference_price"`
	YieldRate      *float64   `json:"yield_rate"`
}

// HasDistribution reports whether the event pays anything.
func (e DividendEvent) HasDistribution() bool {
	return e.CashDividend > 0 || e.StockDividend > 0
}

// KeyDate is pay_date, else ex_date, else nil.
func (e DividendEvent) KeyDate() *Date {
	if e.PayDate != nil {
		return e.PayDate
	}
	return e.ExDate
}

// DividendRecord is a historical event enriched with price context
type DividendRecord struct {
	DividendEvent
	StockPrice *float64 `json:"stock_price"`
	DaysToFill *int     `json:"days_to_fill"`
}

// Float64Ptr is a helper for optional amounts.
func Float64Ptr(v float64) *float64 {
	return &v
}

// IntPtr is a helper for optional counts.
func IntPtr(v int) *int {
	return &v
}
