package solver

import "github.com/asubramanian08/PriceIsRight/server/rational"

// State is a decision point for one player. Priors are the final totals of
// the seats that already played, in seat order. Spin is the player's own
// running total; 0 means the opening spin has not happened yet, which is the
// only way a total of 0 reaches a decision (busting ends the turn).
type State struct {
	Priors []int
	Spin   int
}

// Policy overrides the derived optimal play for a seat. SpinAgain returns
// the probability of taking the second spin at the given state; intermediate
// values mix the two branches and anything outside [0, 1] fails the solve.
// A state with Spin 0 is only consulted when the rules allow declining the
// opening spin.
type Policy interface {
	SpinAgain(State) rational.Rational
}

// PolicyFunc adapts a plain function to a Policy.
type PolicyFunc func(State) rational.Rational

func (f PolicyFunc) SpinAgain(s State) rational.Rational { return f(s) }
