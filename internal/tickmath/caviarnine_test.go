package tickmath

import (
	"testing"

	"github.com/stretchr/testify/require"

	"ignitionAdapters/internal/decimal"
)

func TestTickToSpotCenterIsOne(t *testing.T) {
	spot, ok := TickToSpot(CenterTick)
	require.True(t, ok)
	require.True(t, spot.Equal(decimal.One), "spot at center = %s", spot)
}

func TestTickToSpotOneStep(t *testing.T) {
	spot, ok := TickToSpot(CenterTick + 1)
	require.True(t, ok)
	require.Equal(t, "1.00100025", spot.String())
}

func TestTickToSpotRangeRejection(t *testing.T) {
	_, ok := TickToSpot(MaxTick + 1)
	require.False(t, ok)

	spot, ok := TickToSpot(MaxTick)
	require.True(t, ok)
	require.True(t, spot.IsPositive())

	spot, ok = TickToSpot(0)
	require.True(t, ok)
	require.True(t, spot.IsPositive())
}

func TestTickToSpotMonotonic(t *testing.T) {
	previous, ok := TickToSpot(0)
	require.True(t, ok)
	for tick := uint32(1); tick <= MaxTick; tick += 37 {
		spot, ok := TickToSpot(tick)
		require.True(t, ok, "tick %d", tick)
		require.True(t, previous.LessThan(spot), "tick %d: %s !< %s", tick, previous, spot)
		previous = spot
	}
}

func TestTickToSpotAdjacentAtEdges(t *testing.T) {
	for _, pair := range [][2]uint32{{0, 1}, {MaxTick - 1, MaxTick}} {
		low, ok := TickToSpot(pair[0])
		require.True(t, ok)
		high, ok := TickToSpot(pair[1])
		require.True(t, ok)
		require.True(t, low.LessThan(high), "ticks %v", pair)
	}
}

func TestSpotToTickRoundTrip(t *testing.T) {
	ticks := []uint32{0, 1, 2, 26999, CenterTick, 27001, MaxTick - 1, MaxTick}
	for tick := uint32(0); tick <= MaxTick; tick += 53 {
		ticks = append(ticks, tick)
	}

	for _, tick := range ticks {
		spot, ok := TickToSpot(tick)
		require.True(t, ok, "tick %d", tick)

		got, ok := SpotToTick(spot)
		require.True(t, ok, "tick %d spot %s", tick, spot)
		require.Equal(t, tick, got, "spot %s", spot)
	}
}

func TestSpotToTickInvalidPrice(t *testing.T) {
	_, ok := SpotToTick(decimal.Zero)
	require.False(t, ok)

	_, ok = SpotToTick(decimal.New(-5))
	require.False(t, ok)
}

func TestSpotToTickBelowGrid(t *testing.T) {
	// 1e-18 sits roughly 14000 ticks below tick 0.
	_, ok := SpotToTick(decimal.MustParse("0.000000000000000001"))
	require.False(t, ok)
}

func TestSpotToTickDoesNotEnforceMaxTick(t *testing.T) {
	aboveGrid := decimal.MustParse("1000000000000")

	tick, ok := SpotToTick(aboveGrid)
	require.True(t, ok)
	require.Greater(t, tick, MaxTick)

	_, ok = SpotToTickInRange(aboveGrid)
	require.False(t, ok)

	tick, ok = SpotToTickInRange(decimal.One)
	require.True(t, ok)
	require.Equal(t, CenterTick, tick)
}

func TestBinSpotRange(t *testing.T) {
	lower, upper, ok := BinSpotRange(CenterTick, 10)
	require.True(t, ok)
	require.True(t, lower.Equal(decimal.One))

	expected, _ := TickToSpot(CenterTick + 10)
	require.True(t, upper.Equal(expected))

	_, _, ok = BinSpotRange(MaxTick, 10)
	require.False(t, ok)

	_, _, ok = BinSpotRange(MaxTick-10, 10)
	require.True(t, ok)
}

func TestCheckedInt64Helpers(t *testing.T) {
	_, ok := checkedSubInt64(-9223372036854775808, 1)
	require.False(t, ok)

	v, ok := checkedSubInt64(0, 27000)
	require.True(t, ok)
	require.Equal(t, int64(-27000), v)

	_, ok = checkedMulInt64(9223372036854775807, 2)
	require.False(t, ok)

	v, ok = checkedMulInt64(-27000, 2)
	require.True(t, ok)
	require.Equal(t, int64(-54000), v)
}
