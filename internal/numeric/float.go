// Package numeric provides Float, a binary floating point number whose
// arithmetic is carried out on integers only.
//
// Every physics formula in the engine is written against Float instead of
// float64 so that two machines fed identical inputs produce bit-identical
// results. Hardware floats do not guarantee that in Go: the compiler may fuse
// x*y+z into a single FMA instruction on some architectures and not on others.
//
// A Float holds a 32-bit mantissa normalised so that bit 31 is set, a signed
// binary exponent and a sign flag. Every operation truncates toward zero.
package numeric

import (
	"math"
	"math/bits"
	"strconv"
)

// Float is an immutable value; the zero value is 0.
type Float struct {
	m   uint32 // bit 31 set, or 0 for the number zero
	e   int32  // value = m * 2^e
	neg bool
}

var (
	Zero  = Float{}
	One   = FromInt(1)
	Two   = FromInt(2)
	Three = FromInt(3)
	Ten   = FromInt(10)
	Half  = Ratio(1, 2)
)

func normalize(m uint64, e int32, neg bool) Float {
	if m == 0 {
		return Float{}
	}
	if n := bits.Len64(m); n > 32 {
		m >>= uint(n - 32)
		e += int32(n - 32)
	} else if n < 32 {
		m <<= uint(32 - n)
		e -= int32(32 - n)
	}
	return Float{m: uint32(m), e: e, neg: neg}
}

// FromInt returns i as a Float. Integers up to 2^32 are represented exactly.
func FromInt(i int64) Float {
	u := uint64(i)
	if i < 0 {
		u = -u
	}
	return normalize(u, 0, i < 0)
}

// Ratio returns num/den.
func Ratio(num, den int64) Float {
	return FromInt(num).Div(FromInt(den))
}

// IsZero reports whether f is zero.
func (f Float) IsZero() bool { return f.m == 0 }

// Sign returns -1, 0 or +1.
func (f Float) Sign() int {
	switch {
	case f.m == 0:
		return 0
	case f.neg:
		return -1
	default:
		return 1
	}
}

// Neg returns -f.
func (f Float) Neg() Float {
	if f.m == 0 {
		return f
	}
	f.neg = !f.neg
	return f
}

// Abs returns |f|.
func (f Float) Abs() Float {
	f.neg = false
	return f
}

// Add returns f+g.
func (f Float) Add(g Float) Float {
	if f.m == 0 {
		return g
	}
	if g.m == 0 {
		return f
	}
	// 31 guard bits keep the aligned sum below 2^64.
	am, ae, an := uint64(f.m)<<31, f.e-31, f.neg
	bm, be, bn := uint64(g.m)<<31, g.e-31, g.neg
	if ae < be {
		am, ae, an, bm, be, bn = bm, be, bn, am, ae, an
	}
	if d := ae - be; d >= 64 {
		bm = 0
	} else {
		bm >>= uint(d)
	}
	if an == bn {
		return normalize(am+bm, ae, an)
	}
	if am >= bm {
		return normalize(am-bm, ae, an)
	}
	return normalize(bm-am, ae, bn)
}

// Sub returns f-g.
func (f Float) Sub(g Float) Float { return f.Add(g.Neg()) }

// Mul returns f*g.
func (f Float) Mul(g Float) Float {
	if f.m == 0 || g.m == 0 {
		return Float{}
	}
	return normalize(uint64(f.m)*uint64(g.m), f.e+g.e, f.neg != g.neg)
}

// Div returns f/g. Like integer division it panics when g is zero; callers
// guard their denominators.
func (f Float) Div(g Float) Float {
	if g.m == 0 {
		panic("numeric: division by zero")
	}
	if f.m == 0 {
		return Float{}
	}
	q := (uint64(f.m) << 32) / uint64(g.m)
	return normalize(q, f.e-32-g.e, f.neg != g.neg)
}

// Cmp returns -1, 0 or +1 depending on whether f is less than, equal to or
// greater than g.
func (f Float) Cmp(g Float) int {
	fs, gs := f.Sign(), g.Sign()
	if fs != gs {
		if fs < gs {
			return -1
		}
		return 1
	}
	if fs == 0 {
		return 0
	}
	c := 0
	switch {
	case f.e != g.e:
		c = 1
		if f.e < g.e {
			c = -1
		}
	case f.m < g.m:
		c = -1
	case f.m > g.m:
		c = 1
	}
	return c * fs
}

// Equal reports f == g. Values are normalised, so this is bitwise equality.
func (f Float) Equal(g Float) bool { return f == g }

// Less reports f < g.
func (f Float) Less(g Float) bool { return f.Cmp(g) < 0 }

// LessEq reports f <= g.
func (f Float) LessEq(g Float) bool { return f.Cmp(g) <= 0 }

// Greater reports f > g.
func (f Float) Greater(g Float) bool { return f.Cmp(g) > 0 }

// GreaterEq reports f >= g.
func (f Float) GreaterEq(g Float) bool { return f.Cmp(g) >= 0 }

// Min returns the smaller of a and b.
func Min(a, b Float) Float {
	if b.Less(a) {
		return b
	}
	return a
}

// Max returns the larger of a and b.
func Max(a, b Float) Float {
	if b.Greater(a) {
		return b
	}
	return a
}

// Sqrt returns the square root of f, or zero when f is not positive.
func (f Float) Sqrt() Float {
	if f.m == 0 || f.neg {
		return Float{}
	}
	x := uint64(f.m) << 32
	e := f.e - 32
	if e&1 != 0 {
		x >>= 1
		e++
	}
	return normalize(isqrt(x), e/2, false)
}

// Cbrt returns the cube root of f, keeping its sign.
func (f Float) Cbrt() Float {
	if f.m == 0 {
		return Float{}
	}
	// Shift the mantissa by 62..64 bits so the remaining exponent is a
	// multiple of three; the 96-bit radicand yields a 32-bit root.
	s := 64 - mod3(64-f.e)
	hi := uint64(f.m) >> uint(64-s)
	lo := uint64(f.m) << uint(s)
	return normalize(icbrt(hi, lo), (f.e-s)/3, f.neg)
}

// Pow returns f raised to the integer power n.
func (f Float) Pow(n int) Float {
	if n < 0 {
		return One.Div(f.Pow(-n))
	}
	r, b := One, f
	for n > 0 {
		if n&1 != 0 {
			r = r.Mul(b)
		}
		b = b.Mul(b)
		n >>= 1
	}
	return r
}

// Int64 truncates f toward zero, saturating at the int64 range.
func (f Float) Int64() int64 {
	var u uint64
	switch {
	case f.m == 0:
		return 0
	case f.e >= 32:
		if f.neg {
			return math.MinInt64
		}
		return math.MaxInt64
	case f.e >= 0:
		u = uint64(f.m) << uint(f.e)
	case f.e > -64:
		u = uint64(f.m) >> uint(-f.e)
	}
	if f.neg {
		return -int64(u)
	}
	return int64(u)
}

// Int32 truncates f toward zero, saturating at the int32 range.
func (f Float) Int32() int32 {
	i := f.Int64()
	switch {
	case i > math.MaxInt32:
		return math.MaxInt32
	case i < math.MinInt32:
		return math.MinInt32
	}
	return int32(i)
}

// Float64 converts f for display. It must never feed back into a
// simulation result.
func (f Float) Float64() float64 {
	v := math.Ldexp(float64(f.m), int(f.e))
	if f.neg {
		return -v
	}
	return v
}

// String formats f with nine significant digits.
func (f Float) String() string {
	return strconv.FormatFloat(f.Float64(), 'g', 9, 64)
}

// MarshalJSON writes f as a JSON number.
func (f Float) MarshalJSON() ([]byte, error) {
	return strconv.AppendFloat(nil, f.Float64(), 'g', 9, 64), nil
}

func mod3(x int32) int32 {
	r := x % 3
	if r < 0 {
		r += 3
	}
	return r
}

// isqrt returns floor(sqrt(x)).
func isqrt(x uint64) uint64 {
	var r uint64
	bit := uint64(1) << 62
	for bit > x {
		bit >>= 2
	}
	for bit != 0 {
		if x >= r+bit {
			x -= r + bit
			r = r>>1 + bit
		} else {
			r >>= 1
		}
		bit >>= 2
	}
	return r
}

// icbrt returns floor(cbrt(hi<<64 | lo)) for radicands below 2^96.
func icbrt(hi, lo uint64) uint64 {
	var y uint64
	for b := 31; b >= 0; b-- {
		c := y | 1<<uint(b)
		ch, cl := bits.Mul64(c*c, c)
		if ch < hi || (ch == hi && cl <= lo) {
			y = c
		}
	}
	return y
}
