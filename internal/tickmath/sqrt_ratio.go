package tickmath

import (
	"errors"
	"math/big"

	"github.com/holiman/uint256"

	"ignitionAdapters/internal/decimal"
)

const (
	// MinSqrtTick is the lowest tick of the 1.0001 sqrt-price grid (Ociswap v2, Uniswap V3).
	MinSqrtTick int32 = -887272
	// MaxSqrtTick is the highest tick of the 1.0001 sqrt-price grid.
	MaxSqrtTick int32 = 887272
)

var (
	ErrTickOutOfBounds      = errors.New("tick out of bounds")
	ErrSqrtPriceOutOfBounds = errors.New("sqrt price out of bounds")
	ErrInvalidTickSpacing   = errors.New("tick spacing must be positive")
)

var (
	// MinSqrtRatio is SqrtRatioAtTick(MinSqrtTick).
	MinSqrtRatio = uint256.NewInt(4295128739)
	// MaxSqrtRatio is SqrtRatioAtTick(MaxSqrtTick).
	MaxSqrtRatio = uint256.MustFromBig(fromHex("fffd8963efd1fc6a506488495d951d5263988d26"))

	maxUint256 = uint256.MustFromBig(new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1)))
	lowMask32  = uint256.NewInt(0xffffffff)

	// q192 is 2^192, the scale of a squared Q64.96 value.
	q192 = new(big.Int).Lsh(big.NewInt(1), 192)

	// ratioSteps[i] is 2^128 / sqrt(1.0001^(2^i)) for i in 1..19; index 0 is unused.
	ratioOdd   = uint256.MustFromBig(fromHex("fffcb933bd6fad37aa2d162d1a594001"))
	ratioEven  = uint256.MustFromBig(fromHex("100000000000000000000000000000000"))
	ratioSteps = [20]*uint256.Int{
		nil,
		uint256.MustFromBig(fromHex("fff97272373d413259a46990580e213a")),
		uint256.MustFromBig(fromHex("fff2e50f5f656932ef12357cf3c7fdcc")),
		uint256.MustFromBig(fromHex("ffe5caca7e10e4e61c3624eaa0941cd0")),
		uint256.MustFromBig(fromHex("ffcb9843d60f6159c9db58835c926644")),
		uint256.MustFromBig(fromHex("ff973b41fa98c081472e6896dfb254c0")),
		uint256.MustFromBig(fromHex("ff2ea16466c96a3843ec78b326b52861")),
		uint256.MustFromBig(fromHex("fe5dee046a99a2a811c461f1969c3053")),
		uint256.MustFromBig(fromHex("fcbe86c7900a88aedcffc83b479aa3a4")),
		uint256.MustFromBig(fromHex("f987a7253ac413176f2b074cf7815e54")),
		uint256.MustFromBig(fromHex("f3392b0822b70005940c7a398e4b70f3")),
		uint256.MustFromBig(fromHex("e7159475a2c29b7443b29c7fa6e889d9")),
		uint256.MustFromBig(fromHex("d097f3bdfd2022b8845ad8f792aa5825")),
		uint256.MustFromBig(fromHex("a9f746462d870fdf8a65dc1f90e061e5")),
		uint256.MustFromBig(fromHex("70d869a156d2a1b890bb3df62baf32f7")),
		uint256.MustFromBig(fromHex("31be135f97d08fd981231505542fcfa6")),
		uint256.MustFromBig(fromHex("9aa508b5b7a84e1c677de54f3e99bc9")),
		uint256.MustFromBig(fromHex("5d6af8dedb81196699c329225ee604")),
		uint256.MustFromBig(fromHex("2216e584f5fa1ea926041bedfe98")),
		uint256.MustFromBig(fromHex("48a170391f7dc42444e8fa2")),
	}
)

// SqrtRatioAtTick returns sqrt(1.0001^tick) as a Q64.96 fixed-point number.
func SqrtRatioAtTick(tick int32) (*uint256.Int, error) {
	if tick < MinSqrtTick || tick > MaxSqrtTick {
		return nil, ErrTickOutOfBounds
	}

	absTick := int64(tick)
	if absTick < 0 {
		absTick = -absTick
	}

	ratio := new(uint256.Int)
	if absTick&0x1 != 0 {
		ratio.Set(ratioOdd)
	} else {
		ratio.Set(ratioEven)
	}
	for i := 1; i < len(ratioSteps); i++ {
		if absTick&(1<<i) != 0 {
			ratio.Mul(ratio, ratioSteps[i])
			ratio.Rsh(ratio, 128)
		}
	}

	if tick > 0 {
		ratio.Div(maxUint256, ratio)
	}

	// Q128.128 -> Q64.96, rounding up.
	remainder := new(uint256.Int).And(ratio, lowMask32)
	ratio.Rsh(ratio, 32)
	if !remainder.IsZero() {
		ratio.AddUint64(ratio, 1)
	}
	return ratio, nil
}

// TickAtSqrtRatio returns the greatest tick whose sqrt ratio is <= sqrtPriceX96.
func TickAtSqrtRatio(sqrtPriceX96 *uint256.Int) (int32, error) {
	if sqrtPriceX96 == nil || sqrtPriceX96.Lt(MinSqrtRatio) || !sqrtPriceX96.Lt(MaxSqrtRatio) {
		return 0, ErrSqrtPriceOutOfBounds
	}

	low, high := int64(MinSqrtTick), int64(MaxSqrtTick)
	tick := low
	for low <= high {
		mid := low + (high-low)/2
		ratio, err := SqrtRatioAtTick(int32(mid))
		if err != nil {
			return 0, err
		}
		if !sqrtPriceX96.Lt(ratio) {
			tick = mid
			low = mid + 1
		} else {
			high = mid - 1
		}
	}
	return int32(tick), nil
}

// SqrtRatioToSpot converts a Q64.96 sqrt price into a spot price (token1 per
// token0), truncated to decimal.Scale digits. Absent for a nil, non-positive
// or unrepresentable input.
func SqrtRatioToSpot(sqrtPriceX96 *big.Int) (decimal.Decimal, bool) {
	if sqrtPriceX96 == nil || sqrtPriceX96.Sign() <= 0 {
		return decimal.Zero, false
	}
	raw := new(big.Int).Mul(sqrtPriceX96, sqrtPriceX96)
	raw.Mul(raw, decimal.One.Raw())
	raw.Quo(raw, q192)
	return decimal.NewFromRaw(raw)
}

// SpotToSqrtRatio converts a spot price back to a Q64.96 sqrt price, rounding down.
func SpotToSqrtRatio(spot decimal.Decimal) (*big.Int, bool) {
	if !spot.IsPositive() {
		return nil, false
	}
	scaled := new(big.Int).Mul(spot.Raw(), q192)
	scaled.Quo(scaled, decimal.One.Raw())
	return scaled.Sqrt(scaled), true
}

// TickToSqrtSpot returns the spot price 1.0001^tick of the sqrt-price grid.
func TickToSqrtSpot(tick int32) (decimal.Decimal, bool) {
	ratio, err := SqrtRatioAtTick(tick)
	if err != nil {
		return decimal.Zero, false
	}
	return SqrtRatioToSpot(ratio.ToBig())
}

// AlignTick floors tick onto a multiple of spacing.
func AlignTick(tick, spacing int32) (int32, error) {
	if spacing <= 0 {
		return 0, ErrInvalidTickSpacing
	}
	aligned := tick / spacing * spacing
	if tick < 0 && tick%spacing != 0 {
		aligned -= spacing
	}
	return aligned, nil
}

// SpacedTickBounds returns the lowest and highest usable ticks for a spacing.
func SpacedTickBounds(spacing int32) (int32, int32, error) {
	if spacing <= 0 {
		return 0, 0, ErrInvalidTickSpacing
	}
	min := MinSqrtTick / spacing * spacing
	max := MaxSqrtTick / spacing * spacing
	return min, max, nil
}

func fromHex(s string) *big.Int {
	n, ok := new(big.Int).SetString(s, 16)
	if !ok {
		panic("tickmath: invalid hex constant " + s)
	}
	return n
}
