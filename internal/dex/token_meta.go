package dex

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"ignitionAdapters/internal/model"
)

// erc20DecimalsABIJSON is the ERC20 subset used to scale prices.
const erc20DecimalsABIJSON = `[
  {"inputs": [], "name": "decimals", "outputs": [{"internalType": "uint8", "name": "", "type": "uint8"}], "stateMutability": "view", "type": "function"}
]`

var (
	erc20DecimalsABI     abi.ABI
	erc20DecimalsABIOnce sync.Once
	erc20DecimalsABIErr  error
)

func erc20ABI() (abi.ABI, error) {
	erc20DecimalsABIOnce.Do(func() {
		erc20DecimalsABI, erc20DecimalsABIErr = abi.JSON(strings.NewReader(erc20DecimalsABIJSON))
	})
	return erc20DecimalsABI, erc20DecimalsABIErr
}

// TokenMetaCache caches token metadata by address.
type TokenMetaCache struct {
	mu   sync.RWMutex
	data map[common.Address]model.TokenMeta
}

func NewTokenMetaCache() *TokenMetaCache {
	return &TokenMetaCache{data: make(map[common.Address]model.TokenMeta)}
}

func (c *TokenMetaCache) Get(address common.Address) (model.TokenMeta, bool) {
	c.mu.RLock()
	meta, ok := c.data[address]
	c.mu.RUnlock()
	return meta, ok
}

func (c *TokenMetaCache) Set(address common.Address, meta model.TokenMeta) {
	c.mu.Lock()
	c.data[address] = meta
	c.mu.Unlock()
}

// FetchTokenMeta reads the ERC20 decimals of token.
func FetchTokenMeta(ctx context.Context, caller ContractCaller, token common.Address) (model.TokenMeta, error) {
	if caller == nil {
		return model.TokenMeta{}, fmt.Errorf("contract caller is nil")
	}
	parsed, err := erc20ABI()
	if err != nil {
		return model.TokenMeta{}, fmt.Errorf("parse erc20 abi: %w", err)
	}
	values, err := callMethod(ctx, caller, token, parsed, "decimals")
	if err != nil {
		return model.TokenMeta{}, err
	}
	decimals, ok := values[0].(uint8)
	if !ok {
		return model.TokenMeta{}, fmt.Errorf("decimals: unexpected type %T", values[0])
	}
	return model.TokenMeta{Address: token.Hex(), Decimals: decimals}, nil
}
