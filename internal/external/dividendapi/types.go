package dividendapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/wonny/divcal/internal/contracts"
)

// looseFloat accepts a JSON number, a numeric string or null.
// Blank strings, "-" and anything unparseable decode as missing.
type looseFloat struct {
	v *float64
}

func (f *looseFloat) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		f.v = nil
		return nil
	}

	raw := string(b)
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			f.v = nil
			return nil
		}
		raw = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
		if raw == "" || raw == "-" || raw == "--" {
			f.v = nil
			return nil
		}
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		f.v = nil
		return nil
	}
	f.v = &v
	return nil
}

func (f looseFloat) ptr() *float64 {
	return f.v
}

// orZero returns the value, treating missing and negative as 0.
func (f looseFloat) orZero() float64 {
	if f.v == nil || *f.v < 0 {
		return 0
	}
	return *f.v
}

// looseDate accepts any contracts.ParseDate format; null, blank and
// unparseable values decode as missing rather than failing the payload.
type looseDate struct {
	v *contracts.Date
}

func (d *looseDate) UnmarshalJSON(b []byte) error {
	var s *string
	if err := json.Unmarshal(b, &s); err != nil || s == nil {
		d.v = nil
		return nil
	}
	parsed, err := contracts.ParseDate(*s)
	if err != nil {
		d.v = nil
		return nil
	}
	d.v = &parsed
	return nil
}

// looseString accepts a string or a number (codes like 2330 sometimes
// arrive unquoted).
type looseString string

func (s *looseString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = looseString(strings.TrimSpace(v))
		return nil
	}
	*s = looseString(string(b))
	return nil
}

type rawEvent struct {
	ID             looseString `json:"id"`
	StockCode      looseString `json:"stock_code"`
	StockName      looseString `json:"stock_name"`
	MarketType     looseString `json:"market_type"`
	ExDate         looseDate   `json:"ex_date"`
	PayDate        looseDate   `json:"pay_date"`
	CashDividend   looseFloat  `json:"cash_dividend"`
	StockDividend  looseFloat  `json:"stock_dividend"`
	ReferencePrice looseFloat  `json:"reference_price"`
	YieldRate      looseFloat  `json:"yield_rate"`
	StockPrice     looseFloat  `json:"stock_price"`
	DaysToFill     looseFloat  `json:"days_to_fill"`
}

func (r rawEvent) toEvent() contracts.DividendEvent {
	market, err := contracts.ParseMarketType(string(r.MarketType))
	if err != nil {
		market = ""
	}

	id := string(r.ID)
	if id == "" {
		key := "na"
		if kd := r.PayDate.v; kd != nil {
			key = kd.String()
		} else if r.ExDate.v != nil {
			key = r.ExDate.v.String()
		}
		id = fmt.Sprintf("%s-%s", r.StockCode, key)
	}

	return contracts.DividendEvent{
		ID:             id,
		StockCode:      string(r.StockCode),
		StockName:      string(r.StockName),
		MarketType:     market,
		ExDate:         r.ExDate.v,
		PayDate:        r.PayDate.v,
		CashDividend:   r.CashDividend.orZero(),
		StockDividend:  r.StockDividend.orZero(),
		ReferencePrice: r.ReferencePrice.ptr(),
		YieldRate:      r.YieldRate.ptr(),
	}
}

func (r rawEvent) toRecord() contracts.DividendRecord {
	rec := contracts.DividendRecord{
		DividendEvent: r.toEvent(),
		StockPrice:    r.StockPrice.ptr(),
	}
	if days := r.DaysToFill.ptr(); days != nil {
		rec.DaysToFill = contracts.IntPtr(int(*days))
	}
	return rec
}

type rawStockListItem struct {
	StockCode           looseString `json:"stock_code"`
	StockName           looseString `json:"stock_name"`
	YieldRate           looseFloat  `json:"yield_rate"`
	HasDividendThisYear bool        `json:"has_dividend_this_year"`
}

type rawStockInfo struct {
	StockCode  looseString `json:"stock_code"`
	StockName  looseString `json:"stock_name"`
	MarketType looseString `json:"market_type"`
	DailyPrice looseFloat  `json:"daily_price"`
}

type rawStockDetail struct {
	Info    *rawStockInfo `json:"info"`
	History []rawEvent    `json:"history"`
}

func (r rawStockDetail) toDetail() *contracts.StockDetail {
	detail := &contracts.StockDetail{
		History: make([]contracts.DividendRecord, 0, len(r.History)),
	}
	if r.Info != nil {
		market, _ := contracts.ParseMarketType(string(r.Info.MarketType))
		detail.Info = contracts.StockInfo{
			StockCode:  string(r.Info.StockCode),
			StockName:  string(r.Info.StockName),
			MarketType: market,
			DailyPrice: r.Info.DailyPrice.ptr(),
		}
	}
	for _, h := range r.History {
		detail.History = append(detail.History, h.toRecord())
	}
	return detail
}
