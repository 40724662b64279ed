package decimal

import (
	"fmt"
	"math"
	"math/big"
	"strings"

	shopspring "github.com/shopspring/decimal"
)

// Scale is the number of fractional digits carried by a Decimal.
const Scale = 18

// rawBits bounds the scaled integer to a signed 192-bit range.
const rawBits = 191

var (
	scaleFactor = new(big.Int).Exp(big.NewInt(10), big.NewInt(Scale), nil)
	maxRaw      = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), rawBits), big.NewInt(1))
	minRaw      = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), rawBits))

	// Zero is the additive identity.
	Zero = Decimal{}
	// One is 1.0.
	One = New(1)
)

// Decimal is a signed fixed-point number with Scale fractional digits.
//
// The zero value is 0. Values are immutable: every operation returns a new
// Decimal and never mutates its receiver or arguments. Checked operations
// report false instead of wrapping or panicking when the result leaves the
// representable range.
type Decimal struct {
	raw *big.Int
}

// New returns v as a Decimal.
func New(v int64) Decimal {
	return Decimal{raw: new(big.Int).Mul(big.NewInt(v), scaleFactor)}
}

// NewFromRaw builds a Decimal from its scaled integer representation.
func NewFromRaw(raw *big.Int) (Decimal, bool) {
	if raw == nil {
		return Zero, true
	}
	return bounded(new(big.Int).Set(raw))
}

// Parse reads a base-10 string such as "1.0005" or "-42".
func Parse(input string) (Decimal, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Zero, fmt.Errorf("empty decimal")
	}
	parsed, err := shopspring.NewFromString(input)
	if err != nil {
		return Zero, fmt.Errorf("parse decimal %q: %w", input, err)
	}
	shifted := parsed.Shift(Scale)
	if !shifted.IsInteger() {
		return Zero, fmt.Errorf("parse decimal %q: more than %d fractional digits", input, Scale)
	}
	d, ok := bounded(shifted.BigInt())
	if !ok {
		return Zero, fmt.Errorf("parse decimal %q: out of range", input)
	}
	return d, nil
}

// MustParse is Parse for package-level constants.
func MustParse(input string) Decimal {
	d, err := Parse(input)
	if err != nil {
		panic(err)
	}
	return d
}

func bounded(raw *big.Int) (Decimal, bool) {
	if raw.Cmp(maxRaw) > 0 || raw.Cmp(minRaw) < 0 {
		return Zero, false
	}
	return Decimal{raw: raw}, true
}

func (d Decimal) value() *big.Int {
	if d.raw == nil {
		return new(big.Int)
	}
	return d.raw
}

// Raw returns a copy of the scaled integer representation.
func (d Decimal) Raw() *big.Int {
	return new(big.Int).Set(d.value())
}

// Sign returns -1, 0 or 1.
func (d Decimal) Sign() int {
	return d.value().Sign()
}

// IsZero reports whether d == 0.
func (d Decimal) IsZero() bool {
	return d.Sign() == 0
}

// IsPositive reports whether d > 0.
func (d Decimal) IsPositive() bool {
	return d.Sign() > 0
}

// Cmp compares d and other.
func (d Decimal) Cmp(other Decimal) int {
	return d.value().Cmp(other.value())
}

// Equal reports whether d and other hold the same value.
func (d Decimal) Equal(other Decimal) bool {
	return d.Cmp(other) == 0
}

// LessThan reports whether d < other.
func (d Decimal) LessThan(other Decimal) bool {
	return d.Cmp(other) < 0
}

// Neg returns -d. Negating the minimum value overflows.
func (d Decimal) Neg() (Decimal, bool) {
	return bounded(new(big.Int).Neg(d.value()))
}

// CheckedAdd returns d + other.
func (d Decimal) CheckedAdd(other Decimal) (Decimal, bool) {
	return bounded(new(big.Int).Add(d.value(), other.value()))
}

// CheckedSub returns d - other.
func (d Decimal) CheckedSub(other Decimal) (Decimal, bool) {
	return bounded(new(big.Int).Sub(d.value(), other.value()))
}

// CheckedMul returns d * other truncated toward zero.
func (d Decimal) CheckedMul(other Decimal) (Decimal, bool) {
	product := new(big.Int).Mul(d.value(), other.value())
	return bounded(product.Quo(product, scaleFactor))
}

// CheckedDiv returns d / other truncated toward zero. Division by zero is absent.
func (d Decimal) CheckedDiv(other Decimal) (Decimal, bool) {
	if other.IsZero() {
		return Zero, false
	}
	numerator := new(big.Int).Mul(d.value(), scaleFactor)
	return bounded(numerator.Quo(numerator, other.value()))
}

// CheckedPowi raises d to an integer power by square-and-multiply, every
// step checked. A negative exponent inverts d first.
func (d Decimal) CheckedPowi(exp int64) (Decimal, bool) {
	if exp == math.MinInt64 {
		return Zero, false
	}

	base := d
	if exp < 0 {
		inverted, ok := One.CheckedDiv(d)
		if !ok {
			return Zero, false
		}
		base = inverted
		exp = -exp
	}

	result := One
	for remaining := uint64(exp); remaining > 0; remaining >>= 1 {
		var ok bool
		if remaining&1 == 1 {
			if result, ok = result.CheckedMul(base); !ok {
				return Zero, false
			}
		}
		if remaining > 1 {
			if base, ok = base.CheckedMul(base); !ok {
				return Zero, false
			}
		}
	}
	return result, true
}

// lnPrecision is the number of digits requested from the series expansion
// before truncating back to Scale.
const lnPrecision = Scale + 6

// CheckedLn returns the natural logarithm of d, truncated to Scale digits.
// It is absent for d <= 0.
func (d Decimal) CheckedLn() (Decimal, bool) {
	if !d.IsPositive() {
		return Zero, false
	}
	ln, err := d.shopspring().Ln(lnPrecision)
	if err != nil {
		return Zero, false
	}
	return bounded(ln.Shift(Scale).BigInt())
}

// Uint32 returns the integer part of d if it fits in a uint32.
func (d Decimal) Uint32() (uint32, bool) {
	whole := d.integerPart()
	if whole.Sign() < 0 || !whole.IsUint64() || whole.Uint64() > math.MaxUint32 {
		return 0, false
	}
	return uint32(whole.Uint64()), true
}

// Int64 returns the integer part of d if it fits in an int64.
func (d Decimal) Int64() (int64, bool) {
	whole := d.integerPart()
	if !whole.IsInt64() {
		return 0, false
	}
	return whole.Int64(), true
}

func (d Decimal) integerPart() *big.Int {
	return new(big.Int).Quo(d.value(), scaleFactor)
}

func (d Decimal) shopspring() shopspring.Decimal {
	return shopspring.NewFromBigInt(d.value(), -Scale)
}

// String renders d without trailing fractional zeros.
func (d Decimal) String() string {
	return d.shopspring().String()
}

// StringFixed renders d with exactly places fractional digits.
func (d Decimal) StringFixed(places int32) string {
	return d.shopspring().StringFixed(places)
}

// MarshalJSON encodes d as a JSON string to keep full precision.
func (d Decimal) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON accepts a JSON string or number. null decodes to Zero.
func (d *Decimal) UnmarshalJSON(data []byte) error {
	text := strings.TrimSpace(string(data))
	if text == "null" {
		*d = Zero
		return nil
	}
	unquoted := text
	if len(text) >= 2 && text[0] == '"' && text[len(text)-1] == '"' {
		unquoted = text[1 : len(text)-1]
	}
	if strings.Contains(unquoted, `"`) {
		return fmt.Errorf("invalid decimal json %s", text)
	}
	text = unquoted
	parsed, err := Parse(text)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
