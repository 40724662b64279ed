package tickmath

import (
	"errors"
	"math/big"
	"testing"

	"github.com/holiman/uint256"

	"ignitionAdapters/internal/decimal"
)

func TestSqrtRatioAtTickBounds(t *testing.T) {
	min, err := SqrtRatioAtTick(MinSqrtTick)
	if err != nil {
		t.Fatalf("min tick: %v", err)
	}
	if !min.Eq(MinSqrtRatio) {
		t.Fatalf("min ratio mismatch: %s", min.ToBig())
	}

	max, err := SqrtRatioAtTick(MaxSqrtTick)
	if err != nil {
		t.Fatalf("max tick: %v", err)
	}
	if !max.Eq(MaxSqrtRatio) {
		t.Fatalf("max ratio mismatch: %s", max.ToBig())
	}

	zero, err := SqrtRatioAtTick(0)
	if err != nil {
		t.Fatalf("zero tick: %v", err)
	}
	q96 := new(uint256.Int).Lsh(uint256.NewInt(1), 96)
	if !zero.Eq(q96) {
		t.Fatalf("zero tick ratio mismatch: %s", zero.ToBig())
	}

	if _, err := SqrtRatioAtTick(MaxSqrtTick + 1); !errors.Is(err, ErrTickOutOfBounds) {
		t.Fatalf("expected out of bounds, got %v", err)
	}
	if _, err := SqrtRatioAtTick(MinSqrtTick - 1); !errors.Is(err, ErrTickOutOfBounds) {
		t.Fatalf("expected out of bounds, got %v", err)
	}
}

func TestTickAtSqrtRatioInverse(t *testing.T) {
	for _, tick := range []int32{MinSqrtTick, -887000, -60, -1, 0, 1, 60, 200311, MaxSqrtTick - 1} {
		ratio, err := SqrtRatioAtTick(tick)
		if err != nil {
			t.Fatalf("ratio %d: %v", tick, err)
		}
		got, err := TickAtSqrtRatio(ratio)
		if err != nil {
			t.Fatalf("tick at ratio %d: %v", tick, err)
		}
		if got != tick {
			t.Fatalf("tick mismatch: got %d want %d", got, tick)
		}

		// One unit above the ratio still belongs to the same tick.
		bumped := new(uint256.Int).AddUint64(ratio, 1)
		got, err = TickAtSqrtRatio(bumped)
		if err != nil {
			t.Fatalf("tick at bumped ratio %d: %v", tick, err)
		}
		if got != tick {
			t.Fatalf("bumped tick mismatch: got %d want %d", got, tick)
		}
	}
}

func TestTickAtSqrtRatioOutOfBounds(t *testing.T) {
	if _, err := TickAtSqrtRatio(MaxSqrtRatio); !errors.Is(err, ErrSqrtPriceOutOfBounds) {
		t.Fatalf("expected out of bounds for max ratio, got %v", err)
	}
	below := new(uint256.Int).SubUint64(MinSqrtRatio, 1)
	if _, err := TickAtSqrtRatio(below); !errors.Is(err, ErrSqrtPriceOutOfBounds) {
		t.Fatalf("expected out of bounds below min, got %v", err)
	}
	if _, err := TickAtSqrtRatio(nil); !errors.Is(err, ErrSqrtPriceOutOfBounds) {
		t.Fatalf("expected out of bounds for nil, got %v", err)
	}
}

func TestSqrtRatioToSpot(t *testing.T) {
	q96 := new(big.Int).Lsh(big.NewInt(1), 96)
	spot, ok := SqrtRatioToSpot(q96)
	if !ok || !spot.Equal(decimal.One) {
		t.Fatalf("spot at q96: %s ok=%v", spot, ok)
	}

	doubled := new(big.Int).Lsh(q96, 1)
	spot, ok = SqrtRatioToSpot(doubled)
	if !ok || !spot.Equal(decimal.New(4)) {
		t.Fatalf("spot at 2*q96: %s ok=%v", spot, ok)
	}

	if _, ok := SqrtRatioToSpot(big.NewInt(0)); ok {
		t.Fatalf("expected zero sqrt price to be absent")
	}
	if _, ok := SqrtRatioToSpot(nil); ok {
		t.Fatalf("expected nil sqrt price to be absent")
	}
}

func TestSpotToSqrtRatio(t *testing.T) {
	sqrt, ok := SpotToSqrtRatio(decimal.New(4))
	if !ok {
		t.Fatalf("expected sqrt ratio")
	}
	want := new(big.Int).Lsh(big.NewInt(1), 97)
	if sqrt.Cmp(want) != 0 {
		t.Fatalf("sqrt mismatch: %s != %s", sqrt, want)
	}
	if _, ok := SpotToSqrtRatio(decimal.Zero); ok {
		t.Fatalf("expected zero spot to be absent")
	}
}

func TestTickToSqrtSpot(t *testing.T) {
	spot, ok := TickToSqrtSpot(0)
	if !ok || !spot.Equal(decimal.One) {
		t.Fatalf("spot at tick 0: %s", spot)
	}

	// 1.0001^10000 ~= 2.71814
	spot, ok = TickToSqrtSpot(10000)
	if !ok {
		t.Fatalf("spot at tick 10000 absent")
	}
	if spot.String()[:6] != "2.7181" {
		t.Fatalf("spot at tick 10000: %s", spot)
	}

	if _, ok := TickToSqrtSpot(MaxSqrtTick + 1); ok {
		t.Fatalf("expected out of range tick to be absent")
	}
}

func TestAlignTick(t *testing.T) {
	cases := []struct {
		tick, spacing, want int32
	}{
		{125, 60, 120},
		{120, 60, 120},
		{-1, 60, -60},
		{-60, 60, -60},
		{-61, 60, -120},
		{0, 10, 0},
	}
	for _, tc := range cases {
		got, err := AlignTick(tc.tick, tc.spacing)
		if err != nil {
			t.Fatalf("align %d/%d: %v", tc.tick, tc.spacing, err)
		}
		if got != tc.want {
			t.Fatalf("align %d/%d: got %d want %d", tc.tick, tc.spacing, got, tc.want)
		}
	}
	if _, err := AlignTick(1, 0); !errors.Is(err, ErrInvalidTickSpacing) {
		t.Fatalf("expected invalid spacing, got %v", err)
	}
}

func TestSpacedTickBounds(t *testing.T) {
	min, max, err := SpacedTickBounds(60)
	if err != nil {
		t.Fatalf("bounds: %v", err)
	}
	if min != -887220 || max != 887220 {
		t.Fatalf("bounds mismatch: %d %d", min, max)
	}
}
