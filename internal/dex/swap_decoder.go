package dex

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"ignitionAdapters/internal/model"
)

// SwapDecoder decodes Swap events of sqrt-price pools (Uniswap V3 layout,
// shared by PancakeSwap V3 forks and mirrored by Ociswap v2).
type SwapDecoder struct {
	poolABI abi.ABI
	event   abi.Event
}

// NewSwapDecoder builds a Swap decoder.
func NewSwapDecoder() (*SwapDecoder, error) {
	poolABI, err := V3PoolABI()
	if err != nil {
		return nil, fmt.Errorf("parse pool abi: %w", err)
	}
	event, ok := poolABI.Events["Swap"]
	if !ok {
		return nil, fmt.Errorf("pool abi has no Swap event")
	}
	return &SwapDecoder{poolABI: poolABI, event: event}, nil
}

// Topic returns the Swap topic0.
func (d *SwapDecoder) Topic() common.Hash {
	return d.event.ID
}

// CanDecode checks if the log carries the Swap topic0.
func (d *SwapDecoder) CanDecode(log types.Log) bool {
	return len(log.Topics) > 0 && log.Topics[0] == d.event.ID
}

// Decode converts a Swap log into its payload.
func (d *SwapDecoder) Decode(log types.Log) (model.SwapEventData, error) {
	if !d.CanDecode(log) {
		return model.SwapEventData{}, fmt.Errorf("unsupported topic0 in log %s:%d", log.TxHash.Hex(), log.Index)
	}

	indexedArgs := indexedArguments(d.event.Inputs)
	if len(log.Topics) != len(indexedArgs)+1 {
		return model.SwapEventData{}, fmt.Errorf("expected %d topics, got %d", len(indexedArgs)+1, len(log.Topics))
	}

	var indexed struct {
		Sender    common.Address
		Recipient common.Address
	}
	if err := abi.ParseTopics(&indexed, indexedArgs, log.Topics[1:]); err != nil {
		return model.SwapEventData{}, fmt.Errorf("parse topics: %w", err)
	}

	values, err := d.event.Inputs.NonIndexed().Unpack(log.Data)
	if err != nil {
		return model.SwapEventData{}, fmt.Errorf("unpack %s: %w", d.event.Name, err)
	}
	if len(values) != 5 {
		return model.SwapEventData{}, fmt.Errorf("unexpected swap values: %d", len(values))
	}

	amount0, err := asBigInt(values[0])
	if err != nil {
		return model.SwapEventData{}, err
	}
	amount1, err := asBigInt(values[1])
	if err != nil {
		return model.SwapEventData{}, err
	}
	sqrtPrice, err := asBigInt(values[2])
	if err != nil {
		return model.SwapEventData{}, err
	}
	liquidity, err := asBigInt(values[3])
	if err != nil {
		return model.SwapEventData{}, err
	}
	tickInt, err := asBigInt(values[4])
	if err != nil {
		return model.SwapEventData{}, err
	}
	tick, err := int24FromBig(tickInt)
	if err != nil {
		return model.SwapEventData{}, err
	}

	return model.SwapEventData{
		Sender:       indexed.Sender.Hex(),
		Recipient:    indexed.Recipient.Hex(),
		Amount0:      amount0.String(),
		Amount1:      amount1.String(),
		SqrtPriceX96: sqrtPrice.String(),
		Liquidity:    liquidity.String(),
		Tick:         tick,
	}, nil
}

func indexedArguments(args abi.Arguments) abi.Arguments {
	indexed := make(abi.Arguments, 0, len(args))
	for _, arg := range args {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	return indexed
}
