package decimal

import (
	"encoding/json"
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseAndString(t *testing.T) {
	d, err := Parse("1.0005")
	require.NoError(t, err)
	require.Equal(t, "1.0005", d.String())
	require.Equal(t, "1000500000000000000", d.Raw().String())

	neg := MustParse("-42")
	require.Equal(t, "-42", neg.String())
	require.Equal(t, "-42.000", neg.StringFixed(3))
}

func TestParseRejectsExcessPrecision(t *testing.T) {
	_, err := Parse("0.0000000000000000001")
	require.Error(t, err)

	_, err = Parse("")
	require.Error(t, err)

	_, err = Parse("abc")
	require.Error(t, err)
}

func TestParseRejectsOutOfRange(t *testing.T) {
	_, err := Parse("1e60")
	require.Error(t, err)
}

func TestCheckedArithmetic(t *testing.T) {
	a := MustParse("1.5")
	b := MustParse("0.25")

	sum, ok := a.CheckedAdd(b)
	require.True(t, ok)
	require.Equal(t, "1.75", sum.String())

	diff, ok := b.CheckedSub(a)
	require.True(t, ok)
	require.Equal(t, "-1.25", diff.String())

	product, ok := a.CheckedMul(b)
	require.True(t, ok)
	require.Equal(t, "0.375", product.String())

	quotient, ok := One.CheckedDiv(New(3))
	require.True(t, ok)
	require.Equal(t, "0.333333333333333333", quotient.String())

	_, ok = a.CheckedDiv(Zero)
	require.False(t, ok)
}

func TestCheckedMulOverflow(t *testing.T) {
	huge := MustParse("1000000000000000000000000000000")
	_, ok := huge.CheckedMul(huge)
	require.False(t, ok)
}

func TestNewFromRawBounds(t *testing.T) {
	limit := new(big.Int).Lsh(big.NewInt(1), 191)
	_, ok := NewFromRaw(limit)
	require.False(t, ok)

	d, ok := NewFromRaw(new(big.Int).Sub(limit, big.NewInt(1)))
	require.True(t, ok)

	_, ok = d.CheckedAdd(New(1))
	require.False(t, ok)

	min, ok := NewFromRaw(new(big.Int).Neg(limit))
	require.True(t, ok)
	_, ok = min.Neg()
	require.False(t, ok)
}

func TestCheckedPowi(t *testing.T) {
	two := New(2)

	p, ok := two.CheckedPowi(10)
	require.True(t, ok)
	require.True(t, p.Equal(New(1024)))

	p, ok = two.CheckedPowi(0)
	require.True(t, ok)
	require.True(t, p.Equal(One))

	p, ok = two.CheckedPowi(-2)
	require.True(t, ok)
	require.Equal(t, "0.25", p.String())

	_, ok = Zero.CheckedPowi(-1)
	require.False(t, ok)

	_, ok = two.CheckedPowi(1000)
	require.False(t, ok)

	_, ok = two.CheckedPowi(math.MinInt64)
	require.False(t, ok)
}

func TestCheckedLn(t *testing.T) {
	ln, ok := One.CheckedLn()
	require.True(t, ok)
	require.True(t, ln.IsZero())

	ln, ok = MustParse("2.718281828459045235").CheckedLn()
	require.True(t, ok)
	diff, _ := ln.CheckedSub(One)
	require.True(t, diff.Raw().CmpAbs(big.NewInt(1000)) < 0, "ln(e) = %s", ln)

	ln, ok = MustParse("0.5").CheckedLn()
	require.True(t, ok)
	require.Equal(t, -1, ln.Sign())

	_, ok = Zero.CheckedLn()
	require.False(t, ok)
	_, ok = New(-1).CheckedLn()
	require.False(t, ok)
}

func TestCheckedRound(t *testing.T) {
	cases := []struct {
		in   string
		mode RoundingMode
		want string
	}{
		{"2.5", ToNearestMidpointAwayFromZero, "3"},
		{"-2.5", ToNearestMidpointAwayFromZero, "-3"},
		{"2.5", ToNearestMidpointTowardZero, "2"},
		{"2.4", ToNearestMidpointAwayFromZero, "2"},
		{"2.1", AwayFromZero, "3"},
		{"-2.1", ToNegativeInfinity, "-3"},
		{"-2.9", ToPositiveInfinity, "-2"},
		{"2.9", ToZero, "2"},
		{"7", ToNearestMidpointAwayFromZero, "7"},
	}
	for _, tc := range cases {
		got, ok := MustParse(tc.in).CheckedRound(0, tc.mode)
		require.True(t, ok, tc.in)
		require.Equal(t, tc.want, got.String(), "round %s mode %d", tc.in, tc.mode)
	}

	got, ok := MustParse("1.23456").CheckedRound(2, ToNearestMidpointAwayFromZero)
	require.True(t, ok)
	require.Equal(t, "1.23", got.String())

	_, ok = One.CheckedRound(19, ToZero)
	require.False(t, ok)
}

func TestIntegerConversions(t *testing.T) {
	v, ok := MustParse("27000.9").Uint32()
	require.True(t, ok)
	require.Equal(t, uint32(27000), v)

	_, ok = MustParse("-1").Uint32()
	require.False(t, ok)

	_, ok = MustParse("4294967296").Uint32()
	require.False(t, ok)

	i, ok := MustParse("-12.7").Int64()
	require.True(t, ok)
	require.Equal(t, int64(-12), i)
}

func TestJSON(t *testing.T) {
	payload := struct {
		Price Decimal `json:"price"`
	}{Price: MustParse("0.000000000001234")}

	data, err := json.Marshal(payload)
	require.NoError(t, err)
	require.JSONEq(t, `{"price":"0.000000000001234"}`, string(data))

	var decoded struct {
		Price Decimal `json:"price"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"price":1.25}`), &decoded))
	require.Equal(t, "1.25", decoded.Price.String())
}

func TestUnmarshalJSONQuotes(t *testing.T) {
	var d Decimal
	require.NoError(t, d.UnmarshalJSON([]byte(`"1.5"`)))
	require.Equal(t, "1.5", d.String())

	require.NoError(t, d.UnmarshalJSON([]byte(`null`)))
	require.True(t, d.IsZero())

	for _, raw := range []string{`"1.5`, `1.5"`, `"`, `""1.5"`} {
		require.Error(t, d.UnmarshalJSON([]byte(raw)), raw)
	}
}

func TestZeroValue(t *testing.T) {
	var d Decimal
	require.True(t, d.IsZero())
	require.Equal(t, "0", d.String())

	sum, ok := d.CheckedAdd(One)
	require.True(t, ok)
	require.True(t, sum.Equal(One))
}
