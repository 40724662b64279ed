package model

// PoolMeta holds the immutable fields of a sqrt-price pool.
type PoolMeta struct {
	Token0      string `json:"token0"`
	Token1      string `json:"token1"`
	Fee         uint32 `json:"fee"`
	TickSpacing int32  `json:"tick_spacing"`
}

// PoolSlot0 is the live price head read from slot0.
type PoolSlot0 struct {
	SqrtPriceX96 string `json:"sqrt_price_x96"`
	Tick         int32  `json:"tick"`
}

// SqrtPriceState joins immutable metadata with a slot0 read.
func (m PoolMeta) SqrtPriceState(pool string, slot0 PoolSlot0) SqrtPricePoolState {
	return SqrtPricePoolState{
		Pool:         pool,
		Token0:       m.Token0,
		Token1:       m.Token1,
		SqrtPriceX96: slot0.SqrtPriceX96,
		Tick:         slot0.Tick,
		TickSpacing:  m.TickSpacing,
	}
}
