package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/go-resty/resty/v2"

	"tcgindex/internal/config"
	"tcgindex/internal/store"
)

const fxSource = "frankfurter"

// FXClient fetches EUR conversion rates from the Frankfurter API.
// The API is free and unauthenticated.
type FXClient struct {
	http   *resty.Client
	logger *slog.Logger
}

// NewFXClient builds a client from configuration.
func NewFXClient(cfg config.FXConfig, logger *slog.Logger) *FXClient {
	if logger == nil {
		logger = slog.Default()
	}
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(3).
		SetRetryWaitTime(2 * time.Second)
	return &FXClient{http: client, logger: logger}
}

type latestRateResponse struct {
	Date  string             `json:"date"`
	Rates map[string]float64 `json:"rates"`
}

type rangeRateResponse struct {
	Rates map[string]map[string]float64 `json:"rates"`
}

// Latest fetches the most recent EUR/USD rate.
func (c *FXClient) Latest(ctx context.Context) (store.FXRateDaily, error) {
	var body latestRateResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{"from": "EUR", "to": "USD"}).
		SetResult(&body).
		Get("/latest")
	if err != nil {
		return store.FXRateDaily{}, fmt.Errorf("fetch latest fx rate: %w", err)
	}
	if resp.IsError() {
		return store.FXRateDaily{}, fmt.Errorf("fetch latest fx rate: status %d", resp.StatusCode())
	}

	rate, ok := body.Rates["USD"]
	if !ok {
		return store.FXRateDaily{}, fmt.Errorf("fetch latest fx rate: no USD rate in response")
	}
	date, err := time.Parse("2006-01-02", body.Date)
	if err != nil {
		return store.FXRateDaily{}, fmt.Errorf("fetch latest fx rate: bad date %q", body.Date)
	}
	return store.FXRateDaily{
		RateDate: date,
		Currency: "USD",
		Rate:     rate,
		Source:   fxSource,
	}, nil
}

// Range fetches EUR/USD rates for an inclusive date range, oldest
// first. Weekends and holidays have no rate and are simply absent.
func (c *FXClient) Range(ctx context.Context, start, end time.Time) ([]store.FXRateDaily, error) {
	var body rangeRateResponse
	endpoint := fmt.Sprintf("/%s..%s", start.Format("2006-01-02"), end.Format("2006-01-02"))
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{"from": "EUR", "to": "USD"}).
		SetResult(&body).
		Get(endpoint)
	if err != nil {
		return nil, fmt.Errorf("fetch fx range: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch fx range: status %d", resp.StatusCode())
	}

	rates := make([]store.FXRateDaily, 0, len(body.Rates))
	for dateStr, currencies := range body.Rates {
		usd, ok := currencies["USD"]
		if !ok {
			continue
		}
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			c.logger.WarnContext(ctx, "skipping fx rate with bad date", "date", dateStr)
			continue
		}
		rates = append(rates, store.FXRateDaily{
			RateDate: date,
			Currency: "USD",
			Rate:     usd,
			Source:   fxSource,
		})
	}
	sort.Slice(rates, func(i, j int) bool { return rates[i].RateDate.Before(rates[j].RateDate) })
	return rates, nil
}
