package calculator

import (
	"errors"
	"fmt"
	"math"
)

// LotSize is the number of shares in one board lot (張)
const LotSize = 1000

// Presets are the quick-select share counts (1, 5 and 10 lots)
var Presets = []float64{1 * LotSize, 5 * LotSize, 10 * LotSize}

// Placeholder is shown where a derived value is unavailable
const Placeholder = "--"

var (
	// ErrNegativeValue rejects negative price, shares or investment
	ErrNegativeValue = errors.New("value must not be negative")
	// ErrUnknownAction rejects actions Reduce does not handle
	ErrUnknownAction = errors.New("unknown calculator action")
)

// State is the linked price/shares/investment trio plus the stock's
// read-only reference figures.
type State struct {
	Price          float64 `json:"price"`
	Shares         float64 `json:"shares"`
	Investment     float64 `json:"investment"`
	ReferencePrice float64 `json:"reference_price"`
	CashDividend   float64 `json:"cash_dividend"`
}

// NewState starts at the reference price holding one lot.
func NewState(referencePrice, cashDividend float64) State {
	if referencePrice < 0 {
		referencePrice = 0
	}
	return State{
		Price:          referencePrice,
		Shares:         LotSize,
		Investment:     math.Floor(LotSize * referencePrice),
		ReferencePrice: referencePrice,
		CashDividend:   cashDividend,
	}
}

// ActionType names a state transition
type ActionType string

const (
	SetPrice      ActionType = "set_price"
	SetShares     ActionType = "set_shares"
	SetInvestment ActionType = "set_investment"
	Reset         ActionType = "reset"
)

// Action is one user edit; Value is ignored by Reset
type Action struct {
	Type  ActionType `json:"type"`
	Value float64    `json:"value"`
}

// Reduce applies a to s and returns the new state.
// ⭐ SSOT: 가격/주식수/투자금 연동 계산
//
// On error the original state is returned unchanged.
func Reduce(s State, a Action) (State, error) {
	if a.Type != Reset && (a.Value < 0 || math.IsNaN(a.Value) || math.IsInf(a.Value, 0)) {
		return s, fmt.Errorf("%s(%v): %w", a.Type, a.Value, ErrNegativeValue)
	}

	next := s
	switch a.Type {
	case SetPrice:
		next.Price = a.Value
		next.Investment = math.Floor(next.Shares * next.Price)
	case SetShares:
		next.Shares = a.Value
		next.Investment = math.Floor(next.Shares * next.Price)
	case SetInvestment:
		next.Investment = a.Value
		if next.Price > 0 {
			next.Shares = math.Floor(next.Investment / next.Price)
		}
	case Reset:
		next.Price = next.ReferencePrice
		next.Investment = math.Floor(next.Shares * next.Price)
	default:
		return s, fmt.Errorf("%w: %q", ErrUnknownAction, a.Type)
	}

	return next, nil
}

// Summary holds the figures derived from a State
type Summary struct {
	DividendPayout float64  `json:"dividend_payout"`
	MarketValue    float64  `json:"market_value"`
	YieldPercent   *float64 `json:"yield_percent"`
}

// Summarize derives payout, market value and yield.
// YieldPercent is nil when the price is not positive.
func (s State) Summarize() Summary {
	return Summary{
		DividendPayout: s.Shares * s.CashDividend,
		MarketValue:    s.Shares * s.Price,
		YieldPercent:   YieldPercent(s.CashDividend, s.Price),
	}
}

// YieldPercent is cash/price*100 rounded to two decimals, or nil when
// price <= 0.
func YieldPercent(cash, price float64) *float64 {
	if price <= 0 || math.IsNaN(price) {
		return nil
	}
	v := Round2(cash / price * 100)
	return &v
}

// Round2 rounds half away from zero to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
