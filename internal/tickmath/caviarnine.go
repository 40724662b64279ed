package tickmath

import (
	"math"

	"ignitionAdapters/internal/decimal"
)

const (
	// MaxTick is the highest tick on the CaviarNine grid.
	MaxTick uint32 = 54000
	// CenterTick maps to a spot price of exactly 1.
	CenterTick uint32 = 27000
)

// Base is the geometric step of the CaviarNine grid. Each tick moves the
// spot price by Base^2.
var Base = decimal.MustParse("1.0005")

var (
	two        = decimal.New(2)
	centerTick = decimal.New(int64(CenterTick))

	lnBase, lnBaseOK = Base.CheckedLn()
)

// TickToSpot converts a tick into a spot price Base^(2*(tick-CenterTick)).
// Ticks above MaxTick, and any overflow along the way, are absent.
func TickToSpot(tick uint32) (decimal.Decimal, bool) {
	if tick > MaxTick {
		return decimal.Zero, false
	}
	exponent, ok := checkedSubInt64(int64(tick), int64(CenterTick))
	if !ok {
		return decimal.Zero, false
	}
	exponent, ok = checkedMulInt64(exponent, 2)
	if !ok {
		return decimal.Zero, false
	}
	return Base.CheckedPowi(exponent)
}

// SpotToTick inverts TickToSpot, rounding to the nearest tick.
//
// The result is not checked against MaxTick; a price above the grid still
// yields a tick as long as it fits in a uint32. Use SpotToTickInRange when the
// tick feeds back into pool operations.
func SpotToTick(price decimal.Decimal) (uint32, bool) {
	lnPrice, ok := price.CheckedLn()
	if !ok {
		return 0, false
	}
	if !lnBaseOK {
		return 0, false
	}
	value, ok := lnPrice.CheckedDiv(lnBase)
	if !ok {
		return 0, false
	}
	value, ok = value.CheckedDiv(two)
	if !ok {
		return 0, false
	}
	value, ok = value.CheckedAdd(centerTick)
	if !ok {
		return 0, false
	}
	value, ok = value.CheckedRound(0, decimal.ToNearestMidpointAwayFromZero)
	if !ok {
		return 0, false
	}
	return value.Uint32()
}

// SpotToTickInRange is SpotToTick restricted to [0, MaxTick].
func SpotToTickInRange(price decimal.Decimal) (uint32, bool) {
	tick, ok := SpotToTick(price)
	if !ok || tick > MaxTick {
		return 0, false
	}
	return tick, true
}

// BinSpotRange returns the spot prices at the lower and upper edge of the bin
// starting at bin and spanning span ticks.
func BinSpotRange(bin, span uint32) (decimal.Decimal, decimal.Decimal, bool) {
	upperTick := uint64(bin) + uint64(span)
	if upperTick > uint64(MaxTick) {
		return decimal.Zero, decimal.Zero, false
	}
	lower, ok := TickToSpot(bin)
	if !ok {
		return decimal.Zero, decimal.Zero, false
	}
	upper, ok := TickToSpot(uint32(upperTick))
	if !ok {
		return decimal.Zero, decimal.Zero, false
	}
	return lower, upper, true
}

func checkedSubInt64(a, b int64) (int64, bool) {
	diff := a - b
	if (b > 0 && diff > a) || (b < 0 && diff < a) {
		return 0, false
	}
	return diff, true
}

func checkedMulInt64(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	product := a * b
	if product/b != a || (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, false
	}
	return product, true
}
