package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"ignitionAdapters/internal/adapter"
	"ignitionAdapters/internal/decimal"
	"ignitionAdapters/internal/dex"
	"ignitionAdapters/internal/model"
	"ignitionAdapters/internal/storage"
)

// RunConfig holds runtime settings for the snapshot runner.
type RunConfig struct {
	FromBlock    uint64
	ToBlock      uint64
	Pools        []common.Address
	Blueprint    string
	DesiredBins  uint32
	BatchSize    uint64
	MaxRetries   int
	RetryBackoff time.Duration
}

// LogSource is the chain access the runner needs. *chain.Client satisfies it.
type LogSource interface {
	ChainID(ctx context.Context) (uint64, error)
	LatestBlockNumber(ctx context.Context) (uint64, error)
	BlockTimestamp(ctx context.Context, number uint64) (uint64, error)
	FilterLogs(ctx context.Context, fromBlock, toBlock uint64, addresses []common.Address, topic0 []common.Hash) ([]types.Log, error)
}

// PoolSource resolves pool and token metadata. *dex.PoolReader satisfies it.
type PoolSource interface {
	PoolMeta(ctx context.Context, pool common.Address) (model.PoolMeta, error)
	TokenDecimals(ctx context.Context, token common.Address) (uint8, error)
}

// PoolRecorder persists pool metadata the first time a pool is seen.
type PoolRecorder interface {
	UpsertPools(ctx context.Context, pools []model.Pool) error
}

// Runner follows Swap logs and stores the price and selected tick window
// observed after each swap.
type Runner struct {
	cfg        RunConfig
	chain      LogSource
	pools      PoolSource
	decoder    *dex.SwapDecoder
	storage    storage.Storage
	checkpoint CheckpointStore
	recorder   PoolRecorder
	logger     *zap.Logger

	seen      map[string]struct{}
	seenPools map[common.Address]struct{}
}

// NewRunner builds a Runner with its dependencies. checkpoint may be nil.
func NewRunner(cfg RunConfig, chainSource LogSource, pools PoolSource, sink storage.Storage, checkpoint CheckpointStore, logger *zap.Logger) (*Runner, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	decoder, err := dex.NewSwapDecoder()
	if err != nil {
		return nil, err
	}
	return &Runner{
		cfg:        cfg,
		chain:      chainSource,
		pools:      pools,
		decoder:    decoder,
		storage:    sink,
		checkpoint: checkpoint,
		logger:     logger,
		seen:       make(map[string]struct{}),
		seenPools:  make(map[common.Address]struct{}),
	}, nil
}

// SetPoolRecorder registers a sink for pool metadata.
func (r *Runner) SetPoolRecorder(recorder PoolRecorder) {
	r.recorder = recorder
}

// Run executes the snapshot loop over the configured block range.
func (r *Runner) Run(ctx context.Context) error {
	if r.chain == nil {
		return fmt.Errorf("chain client is nil")
	}
	if r.pools == nil {
		return fmt.Errorf("pool source is nil")
	}
	if r.storage == nil {
		return fmt.Errorf("storage is nil")
	}
	if r.cfg.BatchSize == 0 {
		return fmt.Errorf("batch size must be greater than zero")
	}
	if len(r.cfg.Pools) == 0 {
		return fmt.Errorf("at least one pool is required")
	}

	chainID, err := r.chain.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("get chain id: %w", err)
	}

	from := r.cfg.FromBlock
	to := r.cfg.ToBlock
	if to == 0 {
		latest, err := r.chain.LatestBlockNumber(ctx)
		if err != nil {
			return fmt.Errorf("get latest block: %w", err)
		}
		to = latest
	}

	fingerprint := Fingerprint(r.cfg.Pools)
	if r.checkpoint != nil {
		cp, ok, err := r.checkpoint.Load(ctx)
		if err != nil {
			return err
		}
		switch {
		case !ok:
		case cp.Fingerprint != fingerprint:
			r.logger.Warn("checkpoint belongs to another pool set, ignoring", zap.String("checkpoint", cp.Fingerprint), zap.String("current", fingerprint))
		case cp.LastProcessedBlock >= from:
			from = cp.LastProcessedBlock + 1
			r.logger.Info("resume from checkpoint", zap.Uint64("last_processed", cp.LastProcessedBlock), zap.Uint64("from", from))
		}
	}

	if from > to {
		r.logger.Info("nothing to sync", zap.Uint64("from", from), zap.Uint64("to", to))
		return nil
	}

	ranges, err := SplitRange(from, to, r.cfg.BatchSize)
	if err != nil {
		return err
	}

	topics := []common.Hash{r.decoder.Topic()}
	for _, blockRange := range ranges {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		r.logger.Info("fetch swaps", zap.Uint64("from", blockRange.From), zap.Uint64("to", blockRange.To))

		logs, err := withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) ([]types.Log, error) {
			logs, err := r.chain.FilterLogs(ctx, blockRange.From, blockRange.To, r.cfg.Pools, topics)
			if err != nil {
				r.logger.Warn("filter logs failed", zap.Error(err), zap.Uint64("from", blockRange.From), zap.Uint64("to", blockRange.To))
			}
			return logs, err
		})
		if err != nil {
			return fmt.Errorf("filter logs: %w", err)
		}

		snapshots := make([]model.BinSnapshot, 0, len(logs))
		var newPools []model.Pool
		for _, log := range logs {
			if log.Removed || !r.decoder.CanDecode(log) || r.isDuplicate(log) {
				continue
			}

			snap, meta, err := r.buildSnapshot(ctx, chainID, log)
			if err != nil {
				if errors.Is(err, adapter.ErrPriceUnavailable) {
					r.logger.Warn("skip swap without price", zap.String("tx", log.TxHash.Hex()), zap.Uint("log_index", log.Index), zap.Error(err))
					continue
				}
				return err
			}
			snapshots = append(snapshots, snap)

			if _, ok := r.seenPools[log.Address]; !ok {
				r.seenPools[log.Address] = struct{}{}
				newPools = append(newPools, model.Pool{
					ChainID:        chainID,
					Address:        log.Address.Hex(),
					Blueprint:      r.cfg.Blueprint,
					Token0:         meta.Token0,
					Token1:         meta.Token1,
					Fee:            meta.Fee,
					TickSpacing:    meta.TickSpacing,
					FirstSeenBlock: log.BlockNumber,
				})
			}
		}

		if r.recorder != nil && len(newPools) > 0 {
			if err := r.recorder.UpsertPools(ctx, newPools); err != nil {
				return fmt.Errorf("store pools: %w", err)
			}
		}

		if err := r.storage.PutSnapshotBatch(ctx, snapshots); err != nil {
			return fmt.Errorf("store snapshots: %w", err)
		}

		if r.checkpoint != nil {
			cp := Checkpoint{LastProcessedBlock: blockRange.To, Fingerprint: fingerprint}
			if err := r.checkpoint.Save(ctx, cp); err != nil {
				return err
			}
		}

		r.logger.Info("batch complete", zap.Int("snapshots", len(snapshots)), zap.Uint64("from", blockRange.From), zap.Uint64("to", blockRange.To))
	}

	return nil
}

func (r *Runner) buildSnapshot(ctx context.Context, chainID uint64, log types.Log) (model.BinSnapshot, model.PoolMeta, error) {
	swap, err := r.decoder.Decode(log)
	if err != nil {
		return model.BinSnapshot{}, model.PoolMeta{}, fmt.Errorf("decode swap %s:%d: %w", log.TxHash.Hex(), log.Index, err)
	}

	meta, err := withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) (model.PoolMeta, error) {
		return r.pools.PoolMeta(ctx, log.Address)
	})
	if err != nil {
		return model.BinSnapshot{}, model.PoolMeta{}, fmt.Errorf("pool meta %s: %w", log.Address.Hex(), err)
	}

	ts, err := withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) (uint64, error) {
		ts, err := r.chain.BlockTimestamp(ctx, log.BlockNumber)
		if err != nil {
			r.logger.Warn("block timestamp fetch failed", zap.Error(err), zap.Uint64("block_number", log.BlockNumber))
		}
		return ts, err
	})
	if err != nil {
		return model.BinSnapshot{}, model.PoolMeta{}, fmt.Errorf("block timestamp %d: %w", log.BlockNumber, err)
	}

	state := model.SqrtPricePoolState{
		Pool:         log.Address.Hex(),
		Token0:       meta.Token0,
		Token1:       meta.Token1,
		SqrtPriceX96: swap.SqrtPriceX96,
		Tick:         swap.Tick,
		TickSpacing:  meta.TickSpacing,
	}
	price, err := adapter.SqrtPrice(state)
	if err != nil {
		return model.BinSnapshot{}, model.PoolMeta{}, err
	}
	window, err := adapter.SqrtPriceWindow(state, r.cfg.DesiredBins)
	if err != nil {
		return model.BinSnapshot{}, model.PoolMeta{}, err
	}

	snap := model.BinSnapshot{
		ChainID:      chainID,
		Pool:         state.Pool,
		BlockNumber:  log.BlockNumber,
		TxHash:       log.TxHash.Hex(),
		LogIndex:     uint64(log.Index),
		Timestamp:    ts,
		Tick:         swap.Tick,
		SqrtPriceX96: swap.SqrtPriceX96,
		Spot:         price.Price.String(),
		TickSpacing:  meta.TickSpacing,
		ActiveBin:    int32(window.Active),
		LowerBins:    toInt32(window.Lower),
		HigherBins:   toInt32(window.Higher),
	}
	if adjusted, ok := r.adjustedSpot(ctx, price, meta); ok {
		snap.AdjustedSpot = adjusted.String()
	}
	return snap, meta, nil
}

// adjustedSpot scales the raw token1/token0 price into whole-token units.
func (r *Runner) adjustedSpot(ctx context.Context, price adapter.Price, meta model.PoolMeta) (decimal.Decimal, bool) {
	if !common.IsHexAddress(meta.Token0) || !common.IsHexAddress(meta.Token1) {
		return decimal.Zero, false
	}
	dec0, err := r.pools.TokenDecimals(ctx, common.HexToAddress(meta.Token0))
	if err != nil {
		r.logger.Debug("token0 decimals unavailable", zap.String("token", meta.Token0), zap.Error(err))
		return decimal.Zero, false
	}
	dec1, err := r.pools.TokenDecimals(ctx, common.HexToAddress(meta.Token1))
	if err != nil {
		r.logger.Debug("token1 decimals unavailable", zap.String("token", meta.Token1), zap.Error(err))
		return decimal.Zero, false
	}
	return AdjustSpot(price.Price, dec0, dec1)
}

// AdjustSpot converts a raw price into whole-token units: spot * 10^(dec0-dec1).
func AdjustSpot(spot decimal.Decimal, decimals0, decimals1 uint8) (decimal.Decimal, bool) {
	factor, ok := decimal.New(10).CheckedPowi(int64(decimals0) - int64(decimals1))
	if !ok {
		return decimal.Zero, false
	}
	return spot.CheckedMul(factor)
}

func (r *Runner) isDuplicate(log types.Log) bool {
	id := fmt.Sprintf("%d:%s:%d", log.BlockNumber, log.TxHash.Hex(), log.Index)
	if _, ok := r.seen[id]; ok {
		return true
	}
	r.seen[id] = struct{}{}
	return false
}

func toInt32(values []int64) []int32 {
	out := make([]int32, 0, len(values))
	for _, v := range values {
		out = append(out, int32(v))
	}
	return out
}
