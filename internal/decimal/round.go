package decimal

import "math/big"

// RoundingMode selects how CheckedRound treats a discarded remainder.
type RoundingMode int

const (
	ToZero RoundingMode = iota
	AwayFromZero
	ToNegativeInfinity
	ToPositiveInfinity
	ToNearestMidpointTowardZero
	ToNearestMidpointAwayFromZero
)

// CheckedRound rounds d to the given number of fractional digits (0..Scale).
func (d Decimal) CheckedRound(places int32, mode RoundingMode) (Decimal, bool) {
	if places < 0 || places > Scale {
		return Zero, false
	}
	if places == Scale {
		return d, true
	}

	divisor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(Scale-places)), nil)
	quotient, remainder := new(big.Int).QuoRem(d.value(), divisor, new(big.Int))
	if remainder.Sign() != 0 {
		step := big.NewInt(int64(d.Sign()))
		doubled := new(big.Int).Abs(remainder)
		doubled.Lsh(doubled, 1)
		half := doubled.Cmp(divisor)

		var bump bool
		switch mode {
		case ToZero:
		case AwayFromZero:
			bump = true
		case ToNegativeInfinity:
			bump = d.Sign() < 0
		case ToPositiveInfinity:
			bump = d.Sign() > 0
		case ToNearestMidpointTowardZero:
			bump = half > 0
		case ToNearestMidpointAwayFromZero:
			bump = half >= 0
		default:
			return Zero, false
		}
		if bump {
			quotient.Add(quotient, step)
		}
	}
	return bounded(quotient.Mul(quotient, divisor))
}
