package solver

import (
	"fmt"

	"github.com/asubramanian08/PriceIsRight/server/rational"
)

// Parameter names one of the unknown tie payoffs a solve may be asked to
// assume instead of computing recursively.
type Parameter int

const (
	// TwoPlayerSecond is the win probability of the later tied player in a
	// two-way spin-off.
	TwoPlayerSecond Parameter = iota
	// ThreePlayerThird is the win probability of the third seat in a
	// three-way spin-off.
	ThreePlayerThird
	// ThreePlayerSecond is the win probability of the second seat in a
	// three-way spin-off.
	ThreePlayerSecond

	numParameters = 3
)

func (p Parameter) String() string {
	switch p {
	case TwoPlayerSecond:
		return "two_player_second"
	case ThreePlayerThird:
		return "three_player_third"
	case ThreePlayerSecond:
		return "three_player_second"
	}
	return fmt.Sprintf("parameter(%d)", int(p))
}

// Parameters lists every tie parameter in declaration order.
func Parameters() []Parameter {
	return []Parameter{TwoPlayerSecond, ThreePlayerThird, ThreePlayerSecond}
}

// Assumptions supplies one assumed value per tie parameter for an
// assumption-mode solve.
type Assumptions struct {
	TwoPlayerSecond   rational.Rational
	ThreePlayerThird  rational.Rational
	ThreePlayerSecond rational.Rational
}

func (a Assumptions) values() [numParameters]rational.Rational {
	var v [numParameters]rational.Rational
	v[TwoPlayerSecond] = a.TwoPlayerSecond
	v[ThreePlayerThird] = a.ThreePlayerThird
	v[ThreePlayerSecond] = a.ThreePlayerSecond
	return v
}

// Interval is a closed range of parameter values. Both endpoints belong to
// the interval.
type Interval struct {
	Min rational.Rational
	Max rational.Rational
}

// Contains reports whether v lies in the closed interval.
func (iv Interval) Contains(v rational.Rational) bool {
	return iv.Min.LessEq(v) && v.LessEq(iv.Max)
}

// Empty reports whether the interval has crossed, meaning the recorded
// comparisons contradict each other.
func (iv Interval) Empty() bool { return iv.Max.Less(iv.Min) }

func (iv Interval) String() string {
	return fmt.Sprintf("[%s, %s]", iv.Min, iv.Max)
}

// Tracker holds the assumed parameter values for a solve and narrows, per
// parameter, the interval of values consistent with every decision the
// assumption forced. A fresh tracker starts at [0, 1] for each parameter.
type Tracker struct {
	assumed [numParameters]rational.Rational
	bounds  [numParameters]Interval
}

func NewTracker(a Assumptions) *Tracker {
	t := &Tracker{assumed: a.values()}
	for i := range t.bounds {
		t.bounds[i] = Interval{Min: rational.Zero(), Max: rational.One()}
	}
	return t
}

// RecordComparison narrows the interval for p. A comparison whose outcome
// required the true value to sit at or above the threshold raises the lower
// bound; one that required it at or below lowers the upper bound. Recording
// never widens and the order of recordings does not matter.
func (t *Tracker) RecordComparison(p Parameter, threshold rational.Rational, above bool) {
	b := &t.bounds[p]
	if above {
		if b.Min.Less(threshold) {
			b.Min = threshold
		}
	} else {
		if threshold.Less(b.Max) {
			b.Max = threshold
		}
	}
}

// Assumed returns the value the solve assumed for p.
func (t *Tracker) Assumed(p Parameter) rational.Rational { return t.assumed[p] }

// Bounds returns the interval of values consistent with the decisions made
// so far for p.
func (t *Tracker) Bounds(p Parameter) Interval { return t.bounds[p] }

// Feasible reports whether some value for p remains consistent with every
// recorded comparison.
func (t *Tracker) Feasible(p Parameter) bool { return !t.bounds[p].Empty() }

func (t *Tracker) assumedValues() [numParameters]rational.Rational { return t.assumed }

// Check is the post-solve verdict on one assumed parameter.
type Check struct {
	Parameter Parameter
	Assumed   rational.Rational
	Bounds    Interval
	// Feasible is false when the recorded comparisons contradict each
	// other, meaning no value of the parameter could have produced the
	// decisions the assumption forced.
	Feasible  bool
	TrueValue rational.Rational
	// Valid means the interval is feasible and the true value lies inside
	// it, so the assumed policy coincides with the policy the true value
	// would have produced.
	Valid bool
}

// Validate scores p against its independently computed true value.
func (t *Tracker) Validate(p Parameter, trueValue rational.Rational) Check {
	b := t.bounds[p]
	feasible := !b.Empty()
	return Check{
		Parameter: p,
		Assumed:   t.assumed[p],
		Bounds:    b,
		Feasible:  feasible,
		TrueValue: trueValue,
		Valid:     feasible && b.Contains(trueValue),
	}
}
