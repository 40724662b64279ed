package dex

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"ignitionAdapters/internal/model"
)

// PoolReader reads sqrt-price pool state and token decimals over eth_call.
// Immutable fields are cached; slot0 is read on every call.
type PoolReader struct {
	caller     ContractCaller
	metaCache  *PoolMetaCache
	tokenCache *TokenMetaCache
	logger     *zap.Logger
}

// NewPoolReader builds a PoolReader. Nil caches are replaced with fresh ones.
func NewPoolReader(caller ContractCaller, metaCache *PoolMetaCache, tokenCache *TokenMetaCache, logger *zap.Logger) *PoolReader {
	if metaCache == nil {
		metaCache = NewPoolMetaCache()
	}
	if tokenCache == nil {
		tokenCache = NewTokenMetaCache()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PoolReader{
		caller:     caller,
		metaCache:  metaCache,
		tokenCache: tokenCache,
		logger:     logger,
	}
}

// PoolMeta returns the immutable metadata of pool, fetching it once.
func (r *PoolReader) PoolMeta(ctx context.Context, pool common.Address) (model.PoolMeta, error) {
	if meta, ok := r.metaCache.Get(pool); ok {
		return meta, nil
	}
	meta, err := FetchPoolMeta(ctx, r.caller, pool)
	if err != nil {
		return model.PoolMeta{}, fmt.Errorf("fetch pool meta %s: %w", pool.Hex(), err)
	}
	r.metaCache.Set(pool, meta)
	r.logger.Debug("pool meta cached",
		zap.String("pool", pool.Hex()),
		zap.String("token0", meta.Token0),
		zap.String("token1", meta.Token1),
		zap.Int32("tick_spacing", meta.TickSpacing),
	)
	return meta, nil
}

// TokenDecimals returns the ERC20 decimals of token. Failures are not cached.
func (r *PoolReader) TokenDecimals(ctx context.Context, token common.Address) (uint8, error) {
	if meta, ok := r.tokenCache.Get(token); ok {
		return meta.Decimals, nil
	}
	meta, err := FetchTokenMeta(ctx, r.caller, token)
	if err != nil {
		return 0, fmt.Errorf("fetch token meta %s: %w", token.Hex(), err)
	}
	r.tokenCache.Set(token, meta)
	return meta.Decimals, nil
}

// ReadSqrtPricePool reads the latest state of pool.
func (r *PoolReader) ReadSqrtPricePool(ctx context.Context, pool string) (model.SqrtPricePoolState, error) {
	if !common.IsHexAddress(pool) {
		return model.SqrtPricePoolState{}, fmt.Errorf("invalid pool address: %s", pool)
	}
	address := common.HexToAddress(pool)

	meta, err := r.PoolMeta(ctx, address)
	if err != nil {
		return model.SqrtPricePoolState{}, err
	}
	slot0, err := FetchSlot0(ctx, r.caller, address)
	if err != nil {
		return model.SqrtPricePoolState{}, fmt.Errorf("read pool %s: %w", address.Hex(), err)
	}
	return meta.SqrtPriceState(address.Hex(), slot0), nil
}
