// Package rational implements exact fractions over arbitrary-precision
// integers. Every probability in the solver is a Rational; nothing in this
// project is ever computed in floating point except display approximations.
package rational

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

var (
	// ErrZeroDenominator is returned when a fraction is constructed with a
	// zero denominator.
	ErrZeroDenominator = errors.New("rational: zero denominator")
	// ErrDivisionByZero is returned by Div when the divisor is zero.
	ErrDivisionByZero = errors.New("rational: division by zero")
)

// Rational is an immutable exact fraction. The zero value is 0/1. Values are
// always normalized: denominator positive, numerator and denominator coprime,
// zero canonicalized to 0/1. Arithmetic never mutates its operands; each
// operation returns a freshly normalized value.
type Rational struct{ v big.Rat }

// New builds num/den. It fails with ErrZeroDenominator when den is 0.
func New(num, den int64) (Rational, error) {
	if den == 0 {
		return Rational{}, ErrZeroDenominator
	}
	var r big.Rat
	r.SetFrac64(num, den)
	return Rational{r}, nil
}

// MustNew is New for constants known to be well formed; it panics on a zero
// denominator.
func MustNew(num, den int64) Rational {
	r, err := New(num, den)
	if err != nil {
		panic(err)
	}
	return r
}

// FromInt builds the whole number n/1.
func FromInt(n int64) Rational {
	var r big.Rat
	r.SetInt64(n)
	return Rational{r}
}

// Zero returns the canonical zero 0/1.
func Zero() Rational { return Rational{} }

// One returns 1/1.
func One() Rational { return FromInt(1) }

// Parse reads the textual forms produced by String: a bare integer "n" or a
// fraction "n/d".
func Parse(s string) (Rational, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Rational{}, errors.New("rational: empty input")
	}
	num, den := s, "1"
	if i := strings.IndexByte(s, '/'); i >= 0 {
		num, den = s[:i], s[i+1:]
	}
	n, ok := new(big.Int).SetString(num, 10)
	if !ok {
		return Rational{}, fmt.Errorf("rational: bad numerator %q", num)
	}
	d, ok := new(big.Int).SetString(den, 10)
	if !ok {
		return Rational{}, fmt.Errorf("rational: bad denominator %q", den)
	}
	if d.Sign() == 0 {
		return Rational{}, ErrZeroDenominator
	}
	var r big.Rat
	r.SetFrac(n, d)
	return Rational{r}, nil
}

// Add returns x + y.
func (x Rational) Add(y Rational) Rational {
	var z big.Rat
	z.Add(&x.v, &y.v)
	return Rational{z}
}

// Sub returns x − y.
func (x Rational) Sub(y Rational) Rational {
	var z big.Rat
	z.Sub(&x.v, &y.v)
	return Rational{z}
}

// Mul returns x · y.
func (x Rational) Mul(y Rational) Rational {
	var z big.Rat
	z.Mul(&x.v, &y.v)
	return Rational{z}
}

// Div returns x / y, or ErrDivisionByZero when y is the canonical zero.
func (x Rational) Div(y Rational) (Rational, error) {
	if y.v.Sign() == 0 {
		return Rational{}, ErrDivisionByZero
	}
	var z big.Rat
	z.Quo(&x.v, &y.v)
	return Rational{z}, nil
}

// Neg returns −x.
func (x Rational) Neg() Rational {
	var z big.Rat
	z.Neg(&x.v)
	return Rational{z}
}

// Cmp compares by value: -1 if x < y, 0 if equal, +1 if x > y. Denominators
// are always positive, so the comparison reduces to cross-multiplication.
func (x Rational) Cmp(y Rational) int { return x.v.Cmp(&y.v) }

// Equal reports value equality, which coincides with structural equality
// because values are kept in lowest terms.
func (x Rational) Equal(y Rational) bool { return x.Cmp(y) == 0 }

// Less reports x < y.
func (x Rational) Less(y Rational) bool { return x.Cmp(y) < 0 }

// LessEq reports x ≤ y.
func (x Rational) LessEq(y Rational) bool { return x.Cmp(y) <= 0 }

// Sign returns -1, 0, or +1 by the sign of x.
func (x Rational) Sign() int { return x.v.Sign() }

// IsZero reports whether x is the canonical zero.
func (x Rational) IsZero() bool { return x.v.Sign() == 0 }

// IsOne reports whether x equals one.
func (x Rational) IsOne() bool { return x.v.IsInt() && x.v.Num().BitLen() == 1 && x.v.Sign() > 0 }

// Num returns a copy of the normalized numerator.
func (x Rational) Num() *big.Int { return new(big.Int).Set(x.v.Num()) }

// Denom returns a copy of the normalized (positive) denominator.
func (x Rational) Denom() *big.Int { return new(big.Int).Set(x.v.Denom()) }

// Float64 returns the nearest float64, for display only.
func (x Rational) Float64() float64 {
	f, _ := x.v.Float64()
	return f
}

// String renders a whole value as "n" and anything else as "n/d".
func (x Rational) String() string { return x.v.RatString() }
