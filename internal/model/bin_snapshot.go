package model

import "strconv"

// BinSnapshot records the price and selected liquidity window observed right
// after a swap.
type BinSnapshot struct {
	ChainID      uint64  `json:"chain_id"`
	Pool         string  `json:"pool"`
	BlockNumber  uint64  `json:"block_number"`
	TxHash       string  `json:"tx_hash"`
	LogIndex     uint64  `json:"log_index"`
	Timestamp    uint64  `json:"timestamp"`
	Tick         int32   `json:"tick"`
	SqrtPriceX96 string  `json:"sqrt_price_x96"`
	Spot         string  `json:"spot"`
	AdjustedSpot string  `json:"adjusted_spot,omitempty"`
	TickSpacing  int32   `json:"tick_spacing"`
	ActiveBin    int32   `json:"active_bin"`
	LowerBins    []int32 `json:"lower_bins"`
	HigherBins   []int32 `json:"higher_bins"`
}

// Key identifies the log the snapshot was taken from.
func (s BinSnapshot) Key() string {
	return strconv.FormatUint(s.BlockNumber, 10) + ":" + s.TxHash + ":" + strconv.FormatUint(s.LogIndex, 10)
}
