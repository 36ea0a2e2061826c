package store

import "time"

// Card is one tracked single card.
type Card struct {
	CardID      string     `gorm:"column:card_id;primaryKey"`
	Name        string     `gorm:"column:name"`
	SetID       string     `gorm:"column:set_id"`
	Number      string     `gorm:"column:number"`
	Rarity      string     `gorm:"column:rarity"`
	ImageURL    string     `gorm:"column:image_url"`
	ReleaseDate *time.Time `gorm:"column:release_date"`
	IsEligible  bool       `gorm:"column:is_eligible"`
	UpdatedAt   time.Time  `gorm:"column:updated_at"`
}

func (Card) TableName() string { return "cards" }

// Set is one card set or sealed product line.
type Set struct {
	SetID       string     `gorm:"column:set_id;primaryKey"`
	Name        string     `gorm:"column:name"`
	Series      string     `gorm:"column:series"`
	ReleaseDate *time.Time `gorm:"column:release_date"`
	CardCount   int        `gorm:"column:card_count"`
	UpdatedAt   time.Time  `gorm:"column:updated_at"`
}

func (Set) TableName() string { return "sets" }

// CardPriceDaily is one item's price and market-depth snapshot for
// one day. Volume columns are nullable: the feed reporting nothing
// is not the same as a confirmed zero-sale day.
type CardPriceDaily struct {
	CardID    string    `gorm:"column:card_id;primaryKey"`
	PriceDate time.Time `gorm:"column:price_date;primaryKey"`

	NMPrice     *float64 `gorm:"column:nm_price"`
	MarketPrice *float64 `gorm:"column:market_price"`

	NMListings    float64 `gorm:"column:nm_listings"`
	LPListings    float64 `gorm:"column:lp_listings"`
	MPListings    float64 `gorm:"column:mp_listings"`
	HPListings    float64 `gorm:"column:hp_listings"`
	DMGListings   float64 `gorm:"column:dmg_listings"`
	TotalListings float64 `gorm:"column:total_listings"`

	NMVolume  *float64 `gorm:"column:nm_volume"`
	LPVolume  *float64 `gorm:"column:lp_volume"`
	MPVolume  *float64 `gorm:"column:mp_volume"`
	HPVolume  *float64 `gorm:"column:hp_volume"`
	DMGVolume *float64 `gorm:"column:dmg_volume"`

	DailyVolume    *float64 `gorm:"column:daily_volume"`
	LiquidityScore *float64 `gorm:"column:liquidity_score"`

	CreatedAt time.Time `gorm:"column:created_at"`
}

func (CardPriceDaily) TableName() string { return "card_prices_daily" }

// FXRateDaily is one day's EUR conversion rate for a currency.
type FXRateDaily struct {
	RateDate time.Time `gorm:"column:rate_date;primaryKey"`
	Currency string    `gorm:"column:currency;primaryKey"`
	Rate     float64   `gorm:"column:rate"`
	Source   string    `gorm:"column:source"`
}

func (FXRateDaily) TableName() string { return "fx_rates_daily" }

// ConstituentMonthly is one basket member for one index and month.
type ConstituentMonthly struct {
	IndexCode string    `gorm:"column:index_code;primaryKey"`
	Month     time.Time `gorm:"column:month;primaryKey"`
	ItemID    string    `gorm:"column:item_id;primaryKey"`
	ItemType  string    `gorm:"column:item_type"`

	CompositePrice  float64 `gorm:"column:composite_price"`
	LiquidityScore  float64 `gorm:"column:liquidity_score"`
	LiquidityMethod string  `gorm:"column:liquidity_method"`
	RankingScore    float64 `gorm:"column:ranking_score"`
	Rank            int     `gorm:"column:rank"`
	Weight          float64 `gorm:"column:weight"`
	IsNew           bool    `gorm:"column:is_new"`

	CreatedAt time.Time `gorm:"column:created_at"`
}

func (ConstituentMonthly) TableName() string { return "constituents_monthly" }

// IndexValueDaily is one published index value.
type IndexValueDaily struct {
	IndexCode string    `gorm:"column:index_code;primaryKey"`
	ValueDate time.Time `gorm:"column:value_date;primaryKey"`

	IndexValue     float64  `gorm:"column:index_value"`
	NConstituents  int      `gorm:"column:n_constituents"`
	TotalMarketCap float64  `gorm:"column:total_market_cap"`
	Change1D       *float64 `gorm:"column:change_1d"`
	Change1W       *float64 `gorm:"column:change_1w"`
	Change1M       *float64 `gorm:"column:change_1m"`

	CreatedAt time.Time `gorm:"column:created_at"`
}

func (IndexValueDaily) TableName() string { return "index_values_daily" }

// RunLog is the audit record of one batch run.
type RunLog struct {
	ID               int64      `gorm:"column:id;primaryKey;autoIncrement"`
	RunID            string     `gorm:"column:run_id"`
	RunType          string     `gorm:"column:run_type"`
	Status           string     `gorm:"column:status"`
	RecordsProcessed int        `gorm:"column:records_processed"`
	RecordsFailed    int        `gorm:"column:records_failed"`
	ErrorMessage     *string    `gorm:"column:error_message"`
	Details          *string    `gorm:"column:details"`
	StartedAt        time.Time  `gorm:"column:started_at"`
	FinishedAt       *time.Time `gorm:"column:finished_at"`
}

func (RunLog) TableName() string { return "run_logs" }

// Run log statuses.
const (
	RunStatusRunning = "running"
	RunStatusSuccess = "success"
	RunStatusPartial = "partial"
	RunStatusFailed  = "failed"
)
