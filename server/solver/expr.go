package solver

import "github.com/asubramanian08/PriceIsRight/server/rational"

// expr is a probability kept in affine form: a constant base plus one
// coefficient per tie parameter. Backward induction only ever adds and
// rescales probabilities, so affine form is closed under everything the
// solver does and tie outcomes can flow through the tables symbolically.
type expr struct {
	base rational.Rational
	coef [numParameters]rational.Rational
}

func constExpr(v rational.Rational) expr { return expr{base: v} }

func oneExpr() expr { return constExpr(rational.One()) }

// paramExpr is the bare unknown: 0 + 1·p.
func paramExpr(p Parameter) expr {
	var e expr
	e.coef[p] = rational.One()
	return e
}

func (e expr) add(o expr) expr {
	r := expr{base: e.base.Add(o.base)}
	for i := range r.coef {
		r.coef[i] = e.coef[i].Add(o.coef[i])
	}
	return r
}

func (e expr) sub(o expr) expr {
	r := expr{base: e.base.Sub(o.base)}
	for i := range r.coef {
		r.coef[i] = e.coef[i].Sub(o.coef[i])
	}
	return r
}

func (e expr) scale(k rational.Rational) expr {
	r := expr{base: e.base.Mul(k)}
	for i := range r.coef {
		r.coef[i] = e.coef[i].Mul(k)
	}
	return r
}

// oneMinus returns 1 − e, the complementary probability.
func (e expr) oneMinus() expr {
	r := expr{base: rational.One().Sub(e.base)}
	for i := range r.coef {
		r.coef[i] = e.coef[i].Neg()
	}
	return r
}

func (e expr) isConst() bool {
	for i := range e.coef {
		if !e.coef[i].IsZero() {
			return false
		}
	}
	return true
}

// eval substitutes concrete parameter values.
func (e expr) eval(vals [numParameters]rational.Rational) rational.Rational {
	v := e.base
	for i := range e.coef {
		if !e.coef[i].IsZero() {
			v = v.Add(e.coef[i].Mul(vals[i]))
		}
	}
	return v
}
