package adapter

import (
	"context"
	"fmt"
	"math/big"

	"go.uber.org/zap"

	"ignitionAdapters/internal/bins"
	"ignitionAdapters/internal/model"
	"ignitionAdapters/internal/tickmath"
)

// SqrtPricePoolReader loads Ociswap v2 style pool state.
type SqrtPricePoolReader interface {
	ReadSqrtPricePool(ctx context.Context, pool string) (model.SqrtPricePoolState, error)
}

// Ociswap adapts concentrated-liquidity pools priced by a Q64.96 sqrt price.
type Ociswap struct {
	reader SqrtPricePoolReader
	logger *zap.Logger
}

// NewOciswap builds an Ociswap adapter.
func NewOciswap(reader SqrtPricePoolReader, logger *zap.Logger) *Ociswap {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ociswap{reader: reader, logger: logger}
}

// Price implements PoolAdapter.
func (a *Ociswap) Price(ctx context.Context, pool string) (Price, error) {
	state, err := a.read(ctx, pool)
	if err != nil {
		return Price{}, err
	}
	return SqrtPrice(state)
}

// ResourceAddresses implements PoolAdapter.
func (a *Ociswap) ResourceAddresses(ctx context.Context, pool string) (string, string, error) {
	state, err := a.read(ctx, pool)
	if err != nil {
		return "", "", err
	}
	return state.Token0, state.Token1, nil
}

// LiquidityWindow implements PoolAdapter. Bins are ticks on the spacing grid.
func (a *Ociswap) LiquidityWindow(ctx context.Context, pool string, desired uint32) (bins.Window, error) {
	state, err := a.read(ctx, pool)
	if err != nil {
		return bins.Window{}, err
	}
	window, err := SqrtPriceWindow(state, desired)
	if err != nil {
		return bins.Window{}, err
	}
	a.logger.Debug("selected ticks",
		zap.String("pool", pool),
		zap.Int64("active", window.Active),
		zap.Int("selected", window.Len()),
	)
	return window, nil
}

func (a *Ociswap) read(ctx context.Context, pool string) (model.SqrtPricePoolState, error) {
	if a.reader == nil {
		return model.SqrtPricePoolState{}, fmt.Errorf("sqrt price pool reader is nil")
	}
	state, err := a.reader.ReadSqrtPricePool(ctx, pool)
	if err != nil {
		return model.SqrtPricePoolState{}, fmt.Errorf("read sqrt price pool %s: %w", pool, err)
	}
	return state, nil
}

// SqrtPrice prices token0 in token1 from the pool sqrt price.
func SqrtPrice(state model.SqrtPricePoolState) (Price, error) {
	sqrtPrice, ok := new(big.Int).SetString(state.SqrtPriceX96, 10)
	if !ok {
		return Price{}, fmt.Errorf("pool %s: invalid sqrt price %q", state.Pool, state.SqrtPriceX96)
	}
	spot, ok := tickmath.SqrtRatioToSpot(sqrtPrice)
	if !ok {
		return Price{}, fmt.Errorf("pool %s sqrt price %s: %w", state.Pool, state.SqrtPriceX96, ErrPriceUnavailable)
	}
	return Price{Base: state.Token0, Quote: state.Token1, Price: spot}, nil
}

// SqrtPriceWindow selects up to desired initializable ticks around the
// current tick, floored onto the spacing grid.
func SqrtPriceWindow(state model.SqrtPricePoolState, desired uint32) (bins.Window, error) {
	active, err := tickmath.AlignTick(state.Tick, state.TickSpacing)
	if err != nil {
		return bins.Window{}, fmt.Errorf("align tick for pool %s: %w", state.Pool, err)
	}
	low, high, err := tickmath.SpacedTickBounds(state.TickSpacing)
	if err != nil {
		return bins.Window{}, fmt.Errorf("tick bounds for pool %s: %w", state.Pool, err)
	}
	bounds := bins.Bounds{Min: int64(low), Max: int64(high)}
	return bins.SelectWithin(bounds, int64(active), uint32(state.TickSpacing), desired), nil
}
