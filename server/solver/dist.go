package solver

import (
	"fmt"

	"github.com/asubramanian08/PriceIsRight/server/rational"
)

// Distribution is the win probability of each seat, in seat order. A valid
// distribution sums to exactly one.
type Distribution [3]rational.Rational

func (d Distribution) Sum() rational.Rational {
	return d[0].Add(d[1]).Add(d[2])
}

func (d Distribution) Validate() error {
	if s := d.Sum(); !s.IsOne() {
		return fmt.Errorf("solver: win probabilities sum to %s, want 1", s)
	}
	return nil
}

// outcome is a distribution in symbolic form, one expr per seat. Sub-game
// passes use only the first two slots and leave the third at zero.
type outcome [3]expr

func (o outcome) add(x outcome) outcome {
	return outcome{o[0].add(x[0]), o[1].add(x[1]), o[2].add(x[2])}
}

func (o outcome) scale(k rational.Rational) outcome {
	return outcome{o[0].scale(k), o[1].scale(k), o[2].scale(k)}
}

// mix blends two outcomes with weight w on a and 1−w on b.
func mix(a, b outcome, w rational.Rational) outcome {
	return a.scale(w).add(b.scale(rational.One().Sub(w)))
}

func (o outcome) eval(vals [numParameters]rational.Rational) Distribution {
	return Distribution{o[0].eval(vals), o[1].eval(vals), o[2].eval(vals)}
}

// InvariantError is fatal: an intermediate outcome table lost probability
// mass. Priors are the earlier seats' final totals and Spin is the acting
// player's running total at the offending entry.
type InvariantError struct {
	Stage  string
	Priors []int
	Spin   int
	Sum    string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("solver: %s outcome at priors %v, total %d sums to %s, want 1",
		e.Stage, e.Priors, e.Spin, e.Sum)
}
