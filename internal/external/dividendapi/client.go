package dividendapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/wonny/divcal/internal/contracts"
	"github.com/wonny/divcal/pkg/config"
	"github.com/wonny/divcal/pkg/httputil"
	"github.com/wonny/divcal/pkg/logger"
)

// ErrNotFound is returned when the upstream has no such stock
var ErrNotFound = errors.New("stock not found")

// ServiceTokenHeader authenticates this service to the upstream
const ServiceTokenHeader = "X-Service-Token"

// Client handles communication with the upstream dividend data API
// ⭐ SSOT: 외부 배당 API 호출과 응답 정규화는 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a new upstream client. The service token, when
// configured, is attached to every request.
func NewClient(httpClient *httputil.Client, cfg config.UpstreamConfig, log *logger.Logger) *Client {
	httpClient.WithHeader(ServiceTokenHeader, cfg.ServiceToken)
	return &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
	}
}

var _ contracts.DividendSource = (*Client)(nil)

func (c *Client) endpoint(path string, params url.Values) string {
	full := c.baseURL + path
	if len(params) > 0 {
		full += "?" + params.Encode()
	}
	return full
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, dest interface{}) error {
	err := c.httpClient.GetJSON(ctx, c.endpoint(path, params), dest)

	var statusErr *httputil.StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("upstream %s: %w", path, err)
	}
	return nil
}

// FetchMonth returns all events of one month
func (c *Client) FetchMonth(ctx context.Context, year, month int) ([]contracts.DividendEvent, error) {
	params := url.Values{}
	params.Set("year", strconv.Itoa(year))
	params.Set("month", strconv.Itoa(month))

	var raw []rawEvent
	if err := c.getJSON(ctx, "/api/dividends", params, &raw); err != nil {
		return nil, err
	}

	events := make([]contracts.DividendEvent, 0, len(raw))
	for _, r := range raw {
		events = append(events, r.toEvent())
	}

	c.logger.WithFields(map[string]interface{}{
		"year":   year,
		"month":  month,
		"events": len(events),
	}).Debug("Fetched monthly dividends")

	return events, nil
}

// FetchYieldAbove returns a whole year's events at or above minYield,
// filtered by the upstream
func (c *Client) FetchYieldAbove(ctx context.Context, year int, minYield float64) ([]contracts.DividendEvent, error) {
	params := url.Values{}
	params.Set("year", strconv.Itoa(year))
	params.Set("min_yield", strconv.FormatFloat(minYield, 'f', -1, 64))

	var raw []rawEvent
	if err := c.getJSON(ctx, "/api/dividends", params, &raw); err != nil {
		return nil, err
	}

	events := make([]contracts.DividendEvent, 0, len(raw))
	for _, r := range raw {
		events = append(events, r.toEvent())
	}
	return events, nil
}

// FetchStockList returns the searchable stock list
func (c *Client) FetchStockList(ctx context.Context) ([]contracts.StockListItem, error) {
	var raw []rawStockListItem
	if err := c.getJSON(ctx, "/api/stocks/list", nil, &raw); err != nil {
		return nil, err
	}

	items := make([]contracts.StockListItem, 0, len(raw))
	for _, r := range raw {
		if r.StockCode == "" {
			continue
		}
		items = append(items, contracts.StockListItem{
			StockCode:           string(r.StockCode),
			StockName:           string(r.StockName),
			YieldRate:           r.YieldRate.ptr(),
			HasDividendThisYear: r.HasDividendThisYear,
		})
	}
	return items, nil
}

// FetchStock returns the profile and dividend history of one stock
func (c *Client) FetchStock(ctx context.Context, code string) (*contracts.StockDetail, error) {
	var raw rawStockDetail
	if err := c.getJSON(ctx, "/api/stock/"+url.PathEscape(code), nil, &raw); err != nil {
		return nil, err
	}
	if raw.Info == nil {
		return nil, ErrNotFound
	}
	return raw.toDetail(), nil
}

// FetchLatest returns the upstream's latest event for one stock
func (c *Client) FetchLatest(ctx context.Context, code string) (*contracts.DividendEvent, error) {
	var raw *rawEvent
	if err := c.getJSON(ctx, "/api/stock/"+url.PathEscape(code)+"/latest", nil, &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, ErrNotFound
	}
	event := raw.toEvent()
	return &event, nil
}
