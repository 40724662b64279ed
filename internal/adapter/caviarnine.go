package adapter

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"ignitionAdapters/internal/bins"
	"ignitionAdapters/internal/model"
	"ignitionAdapters/internal/tickmath"
)

// BinPoolReader loads CaviarNine pool state.
type BinPoolReader interface {
	ReadBinPool(ctx context.Context, pool string) (model.BinPoolState, error)
}

// CaviarNine adapts CaviarNine bin pools.
type CaviarNine struct {
	reader BinPoolReader
	logger *zap.Logger
}

// NewCaviarNine builds a CaviarNine adapter.
func NewCaviarNine(reader BinPoolReader, logger *zap.Logger) *CaviarNine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CaviarNine{reader: reader, logger: logger}
}

// Price implements PoolAdapter.
func (a *CaviarNine) Price(ctx context.Context, pool string) (Price, error) {
	state, err := a.read(ctx, pool)
	if err != nil {
		return Price{}, err
	}
	return BinPrice(state)
}

// ResourceAddresses implements PoolAdapter.
func (a *CaviarNine) ResourceAddresses(ctx context.Context, pool string) (string, string, error) {
	state, err := a.read(ctx, pool)
	if err != nil {
		return "", "", err
	}
	return state.ResourceX, state.ResourceY, nil
}

// LiquidityWindow implements PoolAdapter.
func (a *CaviarNine) LiquidityWindow(ctx context.Context, pool string, desired uint32) (bins.Window, error) {
	state, err := a.read(ctx, pool)
	if err != nil {
		return bins.Window{}, err
	}
	selected, err := BinWindow(state, desired)
	if err != nil {
		return bins.Window{}, err
	}
	a.logger.Debug("selected bins",
		zap.String("pool", pool),
		zap.Uint32("active_bin", selected.ActiveBin),
		zap.Int("lower", len(selected.LowerBins)),
		zap.Int("higher", len(selected.HigherBins)),
	)
	return selected.Window(state.BinSpan), nil
}

func (a *CaviarNine) read(ctx context.Context, pool string) (model.BinPoolState, error) {
	if a.reader == nil {
		return model.BinPoolState{}, fmt.Errorf("bin pool reader is nil")
	}
	state, err := a.reader.ReadBinPool(ctx, pool)
	if err != nil {
		return model.BinPoolState{}, fmt.Errorf("read bin pool %s: %w", pool, err)
	}
	return state, nil
}

// BinPrice prices resource x in resource y at the active tick.
func BinPrice(state model.BinPoolState) (Price, error) {
	if state.ActiveTick == nil {
		return Price{}, fmt.Errorf("pool %s: %w", state.Pool, ErrNoActiveTick)
	}
	spot, ok := tickmath.TickToSpot(*state.ActiveTick)
	if !ok {
		return Price{}, fmt.Errorf("pool %s tick %d: %w", state.Pool, *state.ActiveTick, ErrPriceUnavailable)
	}
	return Price{Base: state.ResourceX, Quote: state.ResourceY, Price: spot}, nil
}

// BinWindow selects up to desired bins around the active tick of state.
func BinWindow(state model.BinPoolState, desired uint32) (bins.SelectedBins, error) {
	if state.ActiveTick == nil {
		return bins.SelectedBins{}, fmt.Errorf("pool %s: %w", state.Pool, ErrNoActiveTick)
	}
	return bins.Select(*state.ActiveTick, state.BinSpan, desired), nil
}
