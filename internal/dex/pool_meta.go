package dex

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"ignitionAdapters/internal/model"
)

// ErrSlot0Unavailable is returned when a pool does not answer slot0.
var ErrSlot0Unavailable = errors.New("slot0 unavailable")

const maxFee = 1<<24 - 1

// ContractCaller performs read-only contract calls against the latest block.
// *chain.Client satisfies it.
type ContractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// PoolMetaCache caches pool metadata by address.
type PoolMetaCache struct {
	mu   sync.RWMutex
	data map[common.Address]model.PoolMeta
}

func NewPoolMetaCache() *PoolMetaCache {
	return &PoolMetaCache{data: make(map[common.Address]model.PoolMeta)}
}

func (c *PoolMetaCache) Get(address common.Address) (model.PoolMeta, bool) {
	c.mu.RLock()
	meta, ok := c.data[address]
	c.mu.RUnlock()
	return meta, ok
}

func (c *PoolMetaCache) Set(address common.Address, meta model.PoolMeta) {
	c.mu.Lock()
	c.data[address] = meta
	c.mu.Unlock()
}

// FetchPoolMeta reads the tokens, fee and tick spacing of pool.
func FetchPoolMeta(ctx context.Context, caller ContractCaller, pool common.Address) (model.PoolMeta, error) {
	if caller == nil {
		return model.PoolMeta{}, fmt.Errorf("contract caller is nil")
	}
	poolABI, err := V3PoolABI()
	if err != nil {
		return model.PoolMeta{}, fmt.Errorf("parse pool abi: %w", err)
	}

	token0, err := callAddress(ctx, caller, pool, poolABI, "token0")
	if err != nil {
		return model.PoolMeta{}, err
	}
	token1, err := callAddress(ctx, caller, pool, poolABI, "token1")
	if err != nil {
		return model.PoolMeta{}, err
	}

	fee, err := callInt(ctx, caller, pool, poolABI, "fee")
	if err != nil {
		return model.PoolMeta{}, err
	}
	if fee.Sign() < 0 || fee.Cmp(big.NewInt(maxFee)) > 0 {
		return model.PoolMeta{}, fmt.Errorf("fee out of range: %s", fee)
	}

	spacingInt, err := callInt(ctx, caller, pool, poolABI, "tickSpacing")
	if err != nil {
		return model.PoolMeta{}, err
	}
	spacing, err := int24FromBig(spacingInt)
	if err != nil {
		return model.PoolMeta{}, fmt.Errorf("tick spacing: %w", err)
	}
	if spacing <= 0 {
		return model.PoolMeta{}, fmt.Errorf("tick spacing must be positive, got %d", spacing)
	}

	return model.PoolMeta{
		Token0:      token0.Hex(),
		Token1:      token1.Hex(),
		Fee:         uint32(fee.Uint64()),
		TickSpacing: spacing,
	}, nil
}

// FetchSlot0 reads the current sqrt price and tick of pool. Every failure
// wraps ErrSlot0Unavailable.
func FetchSlot0(ctx context.Context, caller ContractCaller, pool common.Address) (model.PoolSlot0, error) {
	if caller == nil {
		return model.PoolSlot0{}, fmt.Errorf("contract caller is nil")
	}
	poolABI, err := V3PoolABI()
	if err != nil {
		return model.PoolSlot0{}, fmt.Errorf("parse pool abi: %w", err)
	}

	values, err := callMethod(ctx, caller, pool, poolABI, "slot0")
	if err != nil {
		return model.PoolSlot0{}, fmt.Errorf("%w: %w", ErrSlot0Unavailable, err)
	}
	if len(values) < 2 {
		return model.PoolSlot0{}, fmt.Errorf("%w: %d return values", ErrSlot0Unavailable, len(values))
	}
	sqrtPrice, err := asBigInt(values[0])
	if err != nil {
		return model.PoolSlot0{}, fmt.Errorf("%w: sqrt price: %w", ErrSlot0Unavailable, err)
	}
	tickInt, err := asBigInt(values[1])
	if err != nil {
		return model.PoolSlot0{}, fmt.Errorf("%w: tick: %w", ErrSlot0Unavailable, err)
	}
	tick, err := int24FromBig(tickInt)
	if err != nil {
		return model.PoolSlot0{}, fmt.Errorf("%w: tick: %w", ErrSlot0Unavailable, err)
	}
	return model.PoolSlot0{SqrtPriceX96: sqrtPrice.String(), Tick: tick}, nil
}

func callMethod(ctx context.Context, caller ContractCaller, contract common.Address, parsed abi.ABI, method string) ([]interface{}, error) {
	data, err := parsed.Pack(method)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	resp, err := caller.CallContract(ctx, ethereum.CallMsg{To: &contract, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	values, err := parsed.Unpack(method, resp)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("unpack %s: empty result", method)
	}
	return values, nil
}

func callAddress(ctx context.Context, caller ContractCaller, contract common.Address, parsed abi.ABI, method string) (common.Address, error) {
	values, err := callMethod(ctx, caller, contract, parsed, method)
	if err != nil {
		return common.Address{}, err
	}
	address, ok := values[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("%s: unexpected type %T", method, values[0])
	}
	return address, nil
}

func callInt(ctx context.Context, caller ContractCaller, contract common.Address, parsed abi.ABI, method string) (*big.Int, error) {
	values, err := callMethod(ctx, caller, contract, parsed, method)
	if err != nil {
		return nil, err
	}
	value, err := asBigInt(values[0])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	return value, nil
}

// asBigInt accepts the integer shapes go-ethereum unpacks for non-native
// widths (uint24, int24, uint128, uint160, int256).
func asBigInt(value interface{}) (*big.Int, error) {
	switch v := value.(type) {
	case *big.Int:
		if v == nil {
			return nil, fmt.Errorf("nil big int")
		}
		return v, nil
	case big.Int:
		return new(big.Int).Set(&v), nil
	default:
		return nil, fmt.Errorf("unsupported int type %T", value)
	}
}

func int24FromBig(value *big.Int) (int32, error) {
	min := big.NewInt(-1 << 23)
	max := big.NewInt((1 << 23) - 1)
	if value.Cmp(min) < 0 || value.Cmp(max) > 0 {
		return 0, fmt.Errorf("int24 overflow: %s", value.String())
	}
	return int32(value.Int64()), nil
}
