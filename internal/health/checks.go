package health

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"tcgindex/internal/config"
	"tcgindex/internal/index"
)

// Freshness allowance on top of the two-day consolidation lag the
// price feed carries.
const defaultMaxAgeDays = 3

// CheckResult is the outcome of one probe.
type CheckResult struct {
	Name    string
	OK      bool
	Message string
}

// DataSource is the slice of the store the data probes read.
type DataSource interface {
	LatestPriceDate(ctx context.Context) (time.Time, error)
	LatestIndexValue(ctx context.Context, indexCode string) (*index.Value, error)
	Constituents(ctx context.Context, indexCode string, period time.Time) ([]index.Constituent, error)
}

// Pinger verifies raw connectivity.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Checker runs the operational health probes.
type Checker struct {
	ping   Pinger
	data   DataSource
	defs   []config.IndexDefinition
	logger *slog.Logger
	now    func() time.Time
	maxAge int
}

// NewChecker creates a checker over the given index definitions.
func NewChecker(ping Pinger, data DataSource, defs []config.IndexDefinition, logger *slog.Logger) *Checker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Checker{
		ping:   ping,
		data:   data,
		defs:   defs,
		logger: logger,
		now:    time.Now,
		maxAge: defaultMaxAgeDays,
	}
}

// RunAll executes every probe and returns the results in order.
func (c *Checker) RunAll(ctx context.Context) []CheckResult {
	return []CheckResult{
		c.CheckDatabase(ctx),
		c.CheckPriceFreshness(ctx),
		c.CheckIndexFreshness(ctx),
		c.CheckConstituents(ctx),
	}
}

// Healthy reports whether every result passed.
func Healthy(results []CheckResult) bool {
	for _, r := range results {
		if !r.OK {
			return false
		}
	}
	return true
}

// CheckDatabase verifies connectivity with a ping.
func (c *Checker) CheckDatabase(ctx context.Context) CheckResult {
	if err := c.ping.PingContext(ctx); err != nil {
		return CheckResult{Name: "database", Message: fmt.Sprintf("connection failed: %v", err)}
	}
	return CheckResult{Name: "database", OK: true, Message: "connection OK"}
}

// CheckPriceFreshness verifies the price table has recent rows. The
// feed consolidates two days behind, so the effective age subtracts
// that lag before comparing against the allowance.
func (c *Checker) CheckPriceFreshness(ctx context.Context) CheckResult {
	latest, err := c.data.LatestPriceDate(ctx)
	if err != nil {
		return CheckResult{Name: "prices", Message: fmt.Sprintf("check failed: %v", err)}
	}
	if latest.IsZero() {
		return CheckResult{Name: "prices", Message: "no price data found"}
	}
	age := int(c.now().UTC().Sub(latest).Hours() / 24)
	effective := age - 2
	if effective > c.maxAge {
		return CheckResult{Name: "prices", Message: fmt.Sprintf("stale: latest %s (%dd ago)", latest.Format("2006-01-02"), age)}
	}
	return CheckResult{Name: "prices", OK: true, Message: fmt.Sprintf("latest %s (%dd ago)", latest.Format("2006-01-02"), age)}
}

// CheckIndexFreshness verifies every index published recently.
func (c *Checker) CheckIndexFreshness(ctx context.Context) CheckResult {
	var stale []string
	var parts []string
	for _, def := range c.defs {
		v, err := c.data.LatestIndexValue(ctx, def.Code)
		if err != nil {
			return CheckResult{Name: "indexes", Message: fmt.Sprintf("check failed: %v", err)}
		}
		if v == nil {
			stale = append(stale, def.Code+": never calculated")
			continue
		}
		age := int(c.now().UTC().Sub(v.Date).Hours() / 24)
		if age-2 > c.maxAge {
			stale = append(stale, fmt.Sprintf("%s: %dd old", def.Code, age))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %.2f", def.Code, v.Value))
	}
	if len(stale) > 0 {
		return CheckResult{Name: "indexes", Message: strings.Join(stale, "; ")}
	}
	return CheckResult{Name: "indexes", OK: true, Message: strings.Join(parts, ", ")}
}

// CheckConstituents verifies the current month's snapshots: expected
// basket sizes and weights summing to 1 within tolerance.
func (c *Checker) CheckConstituents(ctx context.Context) CheckResult {
	period := index.MonthStart(c.now().UTC())
	var issues []string
	var counts []string
	for _, def := range c.defs {
		constituents, err := c.data.Constituents(ctx, def.Code, period)
		if err != nil {
			return CheckResult{Name: "constituents", Message: fmt.Sprintf("check failed: %v", err)}
		}
		count := len(constituents)
		if count == 0 {
			issues = append(issues, def.Code+": no constituents")
			continue
		}
		if !def.Unbounded() && count != def.BasketSize {
			issues = append(issues, fmt.Sprintf("%s: %d/%d constituents", def.Code, count, def.BasketSize))
		}
		var weightSum float64
		for _, cc := range constituents {
			weightSum += cc.Weight
		}
		if math.Abs(weightSum-1.0) > 0.001 {
			issues = append(issues, fmt.Sprintf("%s: weights sum to %.4f", def.Code, weightSum))
		}
		counts = append(counts, fmt.Sprintf("%s: %d", def.Code, count))
	}
	if len(issues) > 0 {
		return CheckResult{Name: "constituents", Message: strings.Join(issues, "; ")}
	}
	return CheckResult{Name: "constituents", OK: true, Message: strings.Join(counts, ", ")}
}

// Summary renders the results for notification bodies.
func Summary(results []CheckResult) string {
	var b strings.Builder
	for _, r := range results {
		mark := "✅"
		if !r.OK {
			mark = "❌"
		}
		fmt.Fprintf(&b, "%s %s: %s\n", mark, r.Name, r.Message)
	}
	return strings.TrimRight(b.String(), "\n")
}
