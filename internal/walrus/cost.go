package walrus

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// costCacheTTL bounds how long a quote is reused. On-chain price parameters
// change slowly, so a few minutes is safe.
const costCacheTTL = 5 * time.Minute

// CostBreakdown is a storage price quote in FROST. Known is false for the
// unknown sentinel: the cost of an empty or non-existent upload is undefined
// rather than erroneous.
type CostBreakdown struct {
	StorageCost decimal.Decimal `json:"storage_cost"`
	WriteCost   decimal.Decimal `json:"write_cost"`
	TotalCost   decimal.Decimal `json:"total_cost"`
	Known       bool            `json:"known"`
}

// UnknownCost is the sentinel returned for non-positive sizes or epochs.
func UnknownCost() CostBreakdown {
	return CostBreakdown{}
}

// PriceQuoter is the pricing slice of the storage collaborator.
type PriceQuoter interface {
	PriceQuote(ctx context.Context, size int64, epochs int) (*CostBreakdown, error)
}

type costKey struct {
	size   int64
	epochs int
}

type costEntry struct {
	breakdown CostBreakdown
	fetchedAt time.Time
}

// Estimator caches price quotes by (size, epochs).
type Estimator struct {
	quoter PriceQuoter
	ttl    time.Duration

	mu    sync.Mutex
	cache map[costKey]costEntry
}

func NewEstimator(quoter PriceQuoter) *Estimator {
	return &Estimator{
		quoter: quoter,
		ttl:    costCacheTTL,
		cache:  make(map[costKey]costEntry),
	}
}

// Estimate returns the cost of storing size bytes for the given epochs.
// Non-positive inputs return the unknown sentinel, never an error.
func (e *Estimator) Estimate(ctx context.Context, size int64, epochs int) (CostBreakdown, error) {
	if size <= 0 || epochs <= 0 {
		return UnknownCost(), nil
	}

	key := costKey{size: size, epochs: epochs}

	e.mu.Lock()
	entry, ok := e.cache[key]
	e.mu.Unlock()
	if ok && time.Since(entry.fetchedAt) < e.ttl {
		return entry.breakdown, nil
	}

	quote, err := e.quoter.PriceQuote(ctx, size, epochs)
	if err != nil {
		return UnknownCost(), err
	}

	e.mu.Lock()
	e.cache[key] = costEntry{breakdown: *quote, fetchedAt: time.Now()}
	e.mu.Unlock()

	return *quote, nil
}
