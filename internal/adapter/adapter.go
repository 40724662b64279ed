package adapter

import (
	"context"
	"errors"

	"ignitionAdapters/internal/bins"
	"ignitionAdapters/internal/decimal"
)

var (
	// ErrNoActiveTick is returned for a bin pool that has no liquidity.
	ErrNoActiveTick = errors.New("pool has no active tick")
	// ErrPriceUnavailable is returned when a price cannot be represented.
	ErrPriceUnavailable = errors.New("price unavailable")
	// ErrUnknownBlueprint is returned by Registry.Lookup.
	ErrUnknownBlueprint = errors.New("unknown blueprint")
)

// PoolAdapter is the uniform view Ignition takes of a DEX pool.
type PoolAdapter interface {
	// Price returns the current pool price.
	Price(ctx context.Context, pool string) (Price, error)
	// ResourceAddresses returns the pair of resources the pool trades.
	ResourceAddresses(ctx context.Context, pool string) (string, string, error)
	// LiquidityWindow selects up to desired bins around the active one.
	LiquidityWindow(ctx context.Context, pool string, desired uint32) (bins.Window, error)
}

// Price is the amount of Quote one unit of Base buys.
type Price struct {
	Base  string          `json:"base"`
	Quote string          `json:"quote"`
	Price decimal.Decimal `json:"price"`
}

// Reciprocal swaps base and quote.
func (p Price) Reciprocal() (Price, bool) {
	inverse, ok := decimal.One.CheckedDiv(p.Price)
	if !ok {
		return Price{}, false
	}
	return Price{Base: p.Quote, Quote: p.Base, Price: inverse}, true
}

// Exchange converts amount of resource into the other side of the pair and
// returns the resulting resource with its amount.
func (p Price) Exchange(resource string, amount decimal.Decimal) (string, decimal.Decimal, bool) {
	switch resource {
	case p.Base:
		out, ok := amount.CheckedMul(p.Price)
		if !ok {
			return "", decimal.Zero, false
		}
		return p.Quote, out, true
	case p.Quote:
		out, ok := amount.CheckedDiv(p.Price)
		if !ok {
			return "", decimal.Zero, false
		}
		return p.Base, out, true
	default:
		return "", decimal.Zero, false
	}
}
