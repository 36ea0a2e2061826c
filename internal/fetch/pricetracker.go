package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"tcgindex/internal/config"
	"tcgindex/internal/liquidity"
	"tcgindex/internal/store"
)

// PriceTrackerClient talks to the upstream card price API. Requests
// are rate limited client-side; 429 responses are retried with
// backoff on top of that.
type PriceTrackerClient struct {
	http    *resty.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewPriceTrackerClient builds a client from configuration.
func NewPriceTrackerClient(cfg config.PriceTrackerConfig, logger *slog.Logger) *PriceTrackerClient {
	if logger == nil {
		logger = slog.Default()
	}
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetAuthToken(cfg.APIKey).
		SetRetryCount(5).
		SetRetryWaitTime(10 * time.Second).
		SetRetryMaxWaitTime(50 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() == 429 || r.StatusCode() >= 500
		})

	perMinute := cfg.RequestsPerMinute
	if perMinute <= 0 {
		perMinute = 60
	}
	burst := cfg.RequestBurst
	if burst <= 0 {
		burst = 1
	}
	return &PriceTrackerClient{
		http:    client,
		limiter: rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), burst),
		logger:  logger,
	}
}

// Upstream response shapes. Only the fields the pipeline consumes
// are decoded.
type cardsResponse struct {
	Data []Card `json:"data"`
}

type Card struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Number       string           `json:"number"`
	Rarity       string           `json:"rarity"`
	SetID        string           `json:"setId"`
	SetName      string           `json:"setName"`
	ReleaseDate  string           `json:"releaseDate"`
	ImageURL     string           `json:"imageUrl"`
	Prices       *CardPrices       `json:"prices"`
	PriceHistory *PriceHistory `json:"priceHistory"`
}

type CardPrices struct {
	Market     *float64                `json:"market"`
	Low        *float64                `json:"low"`
	Listings   float64                 `json:"listings"`
	Conditions map[string]ConditionQuote `json:"conditions"`
}

type ConditionQuote struct {
	Price    *float64 `json:"price"`
	Listings float64  `json:"listings"`
}

type PriceHistory struct {
	Conditions map[string]ConditionHistory `json:"conditions"`
}

type ConditionHistory struct {
	History []HistoryPoint `json:"history"`
}

type HistoryPoint struct {
	Date   string   `json:"date"`
	Volume *float64 `json:"volume"`
}

type setsResponse struct {
	Data []apiSet `json:"data"`
}

type apiSet struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Series      string `json:"series"`
	ReleaseDate string `json:"releaseDate"`
	CardCount   int    `json:"cardCount"`
}

// Sets fetches the set catalog.
func (c *PriceTrackerClient) Sets(ctx context.Context) ([]store.Set, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	var body setsResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&body).
		Get("/sets")
	if err != nil {
		return nil, fmt.Errorf("fetch sets: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch sets: status %d", resp.StatusCode())
	}

	sets := make([]store.Set, 0, len(body.Data))
	for _, s := range body.Data {
		sets = append(sets, store.Set{
			SetID:       s.ID,
			Name:        s.Name,
			Series:      s.Series,
			ReleaseDate: parseDate(s.ReleaseDate),
			CardCount:   s.CardCount,
		})
	}
	return sets, nil
}

// CardsInSet fetches every card of one set with current prices and
// one day of history, which carries the consolidated sales volume.
func (c *PriceTrackerClient) CardsInSet(ctx context.Context, setName string) ([]Card, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	var body cardsResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"set":            setName,
			"fetchAllInSet":  "true",
			"includeHistory": "true",
			"days":           "1",
		}).
		SetResult(&body).
		Get("/cards")
	if err != nil {
		return nil, fmt.Errorf("fetch cards for set %q: %w", setName, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch cards for set %q: status %d", setName, resp.StatusCode())
	}
	return body.Data, nil
}

// SetResult is the outcome of fetching one set's prices.
type SetResult struct {
	Cards  []store.Card
	Prices []store.CardPriceDaily

	Skipped    int
	WithVolume int
}

// ExtractSet converts one set's upstream payload into catalog and
// price rows for priceDate. Cards without any market price are
// skipped, not zero-filled.
func ExtractSet(cards []Card, priceDate time.Time, allowRarity func(string) bool) SetResult {
	var out SetResult
	for _, card := range cards {
		if allowRarity != nil && !allowRarity(card.Rarity) {
			out.Skipped++
			continue
		}
		price, ok := extractPriceRow(card, priceDate)
		if !ok {
			out.Skipped++
			continue
		}
		out.Cards = append(out.Cards, store.Card{
			CardID:      card.ID,
			Name:        card.Name,
			SetID:       card.SetID,
			Number:      card.Number,
			Rarity:      card.Rarity,
			ImageURL:    card.ImageURL,
			ReleaseDate: parseDate(card.ReleaseDate),
			IsEligible:  true,
		})
		out.Prices = append(out.Prices, price)
		if price.DailyVolume != nil {
			out.WithVolume++
		}
	}
	return out
}

// ExtractCatalog converts upstream cards into catalog rows without
// requiring a price, for metadata refreshes.
func ExtractCatalog(cards []Card, allowRarity func(string) bool) []store.Card {
	out := make([]store.Card, 0, len(cards))
	for _, card := range cards {
		if card.ID == "" {
			continue
		}
		eligible := allowRarity == nil || allowRarity(card.Rarity)
		out = append(out, store.Card{
			CardID:      card.ID,
			Name:        card.Name,
			SetID:       card.SetID,
			Number:      card.Number,
			Rarity:      card.Rarity,
			ImageURL:    card.ImageURL,
			ReleaseDate: parseDate(card.ReleaseDate),
			IsEligible:  eligible,
		})
	}
	return out
}

func extractPriceRow(card Card, priceDate time.Time) (store.CardPriceDaily, bool) {
	if card.ID == "" || card.Prices == nil || card.Prices.Market == nil {
		return store.CardPriceDaily{}, false
	}
	p := card.Prices

	row := store.CardPriceDaily{
		CardID:      card.ID,
		PriceDate:   priceDate,
		MarketPrice: p.Market,
	}

	var totalListings float64
	for _, cond := range p.Conditions {
		totalListings += cond.Listings
	}
	if totalListings == 0 {
		totalListings = p.Listings
	}
	row.TotalListings = totalListings

	if nm, ok := p.Conditions[liquidity.NearMint.String()]; ok {
		row.NMPrice = nm.Price
		row.NMListings = nm.Listings
	}
	if lp, ok := p.Conditions[liquidity.LightlyPlayed.String()]; ok {
		row.LPListings = lp.Listings
	}
	if mp, ok := p.Conditions[liquidity.ModeratelyPlayed.String()]; ok {
		row.MPListings = mp.Listings
	}
	if hp, ok := p.Conditions[liquidity.HeavilyPlayed.String()]; ok {
		row.HPListings = hp.Listings
	}
	if dmg, ok := p.Conditions[liquidity.Damaged.String()]; ok {
		row.DMGListings = dmg.Listings
	}

	if card.PriceHistory != nil {
		for name, hist := range card.PriceHistory.Conditions {
			vol := consolidatedVolume(hist.History)
			if vol == nil {
				continue
			}
			switch name {
			case liquidity.NearMint.String():
				row.NMVolume = vol
			case liquidity.LightlyPlayed.String():
				row.LPVolume = vol
			case liquidity.ModeratelyPlayed.String():
				row.MPVolume = vol
			case liquidity.HeavilyPlayed.String():
				row.HPVolume = vol
			case liquidity.Damaged.String():
				row.DMGVolume = vol
			}
		}
	}

	weighted, observed := liquidity.ConditionVolumes{
		NearMint:         row.NMVolume,
		LightlyPlayed:    row.LPVolume,
		ModeratelyPlayed: row.MPVolume,
		HeavilyPlayed:    row.HPVolume,
		Damaged:          row.DMGVolume,
	}.Weighted()
	if observed && weighted > 0 {
		row.DailyVolume = &weighted
	}
	return row, true
}

// consolidatedVolume takes the day-before-last history point: the
// most recent day's volume is still being consolidated upstream.
func consolidatedVolume(history []HistoryPoint) *float64 {
	if len(history) < 2 {
		return nil
	}
	return history[len(history)-2].Volume
}

func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range []string{"2006-01-02", "2006/01/02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &t
		}
	}
	return nil
}
