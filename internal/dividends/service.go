package dividends

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wonny/divcal/internal/calendar"
	"github.com/wonny/divcal/internal/contracts"
	"github.com/wonny/divcal/internal/external/dividendapi"
	"github.com/wonny/divcal/internal/filter"
	"github.com/wonny/divcal/pkg/logger"
	"github.com/wonny/divcal/pkg/redis"
)

var (
	// ErrNotFound is returned for unknown stock codes
	ErrNotFound = dividendapi.ErrNotFound
	// ErrNoRecentDividend is returned when a stock has no dated event to jump to
	ErrNoRecentDividend = errors.New("no recent dividend")
)

// Service serves dividend data to the API and CLI, caching upstream reads
// ⭐ SSOT: 배당 데이터 조회는 이 서비스를 통해서만 (캐시 포함)
type Service struct {
	source contracts.DividendSource
	cache  *redis.Cache
	logger *logger.Logger
}

// NewService creates a new dividend service
func NewService(source contracts.DividendSource, cache *redis.Cache, log *logger.Logger) *Service {
	return &Service{
		source: source,
		cache:  cache,
		logger: log,
	}
}

// MonthEvents returns one month of events, cached for TTLMedium
func (s *Service) MonthEvents(ctx context.Context, year, month int) ([]contracts.DividendEvent, error) {
	var events []contracts.DividendEvent
	err := s.cache.GetOrSet(ctx, redis.MonthKey(year, month), &events, redis.TTLMedium, func() (interface{}, error) {
		return s.source.FetchMonth(ctx, year, month)
	})
	if err != nil {
		return nil, fmt.Errorf("month %04d-%02d: %w", year, month, err)
	}
	return events, nil
}

// YieldEvents returns a year's events at or above threshold, cached for TTLMedium
func (s *Service) YieldEvents(ctx context.Context, year int, threshold float64) ([]contracts.DividendEvent, error) {
	var events []contracts.DividendEvent
	err := s.cache.GetOrSet(ctx, redis.YieldKey(year, threshold), &events, redis.TTLMedium, func() (interface{}, error) {
		return s.source.FetchYieldAbove(ctx, year, threshold)
	})
	if err != nil {
		return nil, fmt.Errorf("yield list %d: %w", year, err)
	}
	return events, nil
}

// StockList returns the searchable stock list, cached for TTLDaily
func (s *Service) StockList(ctx context.Context) ([]contracts.StockListItem, error) {
	var items []contracts.StockListItem
	err := s.cache.GetOrSet(ctx, redis.StockListKey(), &items, redis.TTLDaily, func() (interface{}, error) {
		return s.source.FetchStockList(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("stock list: %w", err)
	}
	return items, nil
}

// Suggest returns autocomplete matches from the stock list
func (s *Service) Suggest(ctx context.Context, text string, limit int) ([]contracts.StockListItem, error) {
	if strings.TrimSpace(text) == "" {
		return []contracts.StockListItem{}, nil
	}
	items, err := s.StockList(ctx)
	if err != nil {
		return nil, err
	}
	return filter.Suggest(items, text, limit), nil
}

// Stock returns a stock's profile and history, cached for TTLLong
func (s *Service) Stock(ctx context.Context, code string) (*contracts.StockDetail, error) {
	var detail contracts.StockDetail
	err := s.cache.GetOrSet(ctx, redis.StockKey(code), &detail, redis.TTLLong, func() (interface{}, error) {
		return s.source.FetchStock(ctx, code)
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("stock %s: %w", code, err)
	}
	return &detail, nil
}

// Latest returns the upstream's latest event of a stock, cached for TTLMedium
func (s *Service) Latest(ctx context.Context, code string) (*contracts.DividendEvent, error) {
	var event contracts.DividendEvent
	err := s.cache.GetOrSet(ctx, redis.LatestKey(code), &event, redis.TTLMedium, func() (interface{}, error) {
		return s.source.FetchLatest(ctx, code)
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("latest %s: %w", code, err)
	}
	return &event, nil
}

// JumpTarget is the month the calendar should open when a stock is picked
// from search: the latest event's pay date, else its ex date.
func (s *Service) JumpTarget(ctx context.Context, code string) (calendar.YearMonth, contracts.Date, error) {
	event, err := s.Latest(ctx, code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return calendar.YearMonth{}, contracts.Date{}, ErrNoRecentDividend
		}
		return calendar.YearMonth{}, contracts.Date{}, err
	}

	d := event.KeyDate()
	if d == nil {
		return calendar.YearMonth{}, contracts.Date{}, ErrNoRecentDividend
	}
	return calendar.YearMonth{Year: d.Year, Month: int(d.Month)}, *d, nil
}

// Refresh drops and refetches one month and the stock list.
// Used by the scheduler's warm-up jobs.
func (s *Service) Refresh(ctx context.Context, year, month int) (int, error) {
	if err := s.cache.Delete(ctx, redis.MonthKey(year, month)); err != nil {
		return 0, fmt.Errorf("invalidate month: %w", err)
	}
	events, err := s.MonthEvents(ctx, year, month)
	if err != nil {
		return 0, err
	}
	return len(events), nil
}

// RefreshStockList drops and refetches the stock list.
func (s *Service) RefreshStockList(ctx context.Context) (int, error) {
	if err := s.cache.Delete(ctx, redis.StockListKey()); err != nil {
		return 0, fmt.Errorf("invalidate stock list: %w", err)
	}
	items, err := s.StockList(ctx)
	if err != nil {
		return 0, err
	}
	return len(items), nil
}
