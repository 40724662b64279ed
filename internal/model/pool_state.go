package model

// BinPoolState is the CaviarNine pool state as exported from the gateway.
// ActiveTick is nil for a pool without liquidity.
type BinPoolState struct {
	Pool       string  `json:"pool"`
	ResourceX  string  `json:"resource_x"`
	ResourceY  string  `json:"resource_y"`
	ActiveTick *uint32 `json:"active_tick"`
	BinSpan    uint32  `json:"bin_span"`
}

// SqrtPricePoolState is the state of a concentrated-liquidity pool priced by a
// Q64.96 square root (Ociswap v2, Uniswap V3).
type SqrtPricePoolState struct {
	Pool         string `json:"pool"`
	Token0       string `json:"token0"`
	Token1       string `json:"token1"`
	SqrtPriceX96 string `json:"sqrt_price_x96"`
	Tick         int32  `json:"tick"`
	TickSpacing  int32  `json:"tick_spacing"`
}
