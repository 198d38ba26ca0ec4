package solver

import (
	"errors"
	"fmt"
	"sync"

	"github.com/asubramanian08/PriceIsRight/server/engine"
	"github.com/asubramanian08/PriceIsRight/server/rational"
)

// ErrNoFixedPoint is returned when the two-player spin-off value fails to
// settle within the iteration cap.
var ErrNoFixedPoint = errors.New("solver: two-player spin-off value did not converge")

const maxFixedPointIterations = 100

// SubResult is the solved two-player spin-off game. FirstWin and SecondWin
// are the entry win probabilities of the two movers; they sum to one. The
// decision tables drive replay playouts in simulation.
type SubResult struct {
	FirstWin   rational.Rational
	SecondWin  rational.Rational
	Iterations int

	dec2 [][]bool
	dec1 []bool
}

// SecondSpinsAgain reports the second mover's optimal decision holding spin
// against a first-mover final total of lead.
func (r *SubResult) SecondSpinsAgain(lead, spin int) bool { return r.dec2[lead][spin] }

// FirstSpinsAgain reports the first mover's optimal decision holding spin.
func (r *SubResult) FirstSpinsAgain(spin int) bool { return r.dec1[spin] }

// solveTwoPlayer resolves the self-reference in the two-player game: a tie
// replays the same game, so the second mover's value appears inside its own
// tables. Each iteration assumes a tie value v, sweeps both movers with the
// tie outcome kept symbolic, and reads off the second mover's entry value as
// the affine form A + B·v. The sweep's decisions only depend on v through
// the threshold comparisons the tracker recorded, so the exact value
// w = A/(1−B) closes the loop as long as w still lies inside the recorded
// interval; otherwise w seeds the next iteration.
func solveTwoPlayer(rules engine.Rules) (*SubResult, error) {
	n := rules.WheelSize
	inv := rational.MustNew(1, int64(n))
	v := rational.MustNew(1, 2)
	for it := 1; it <= maxFixedPointIterations; it++ {
		tr := NewTracker(Assumptions{TwoPlayerSecond: v})
		p := &pass{
			rules:       rules,
			tracker:     tr,
			inv:         inv,
			twoWayLater: paramExpr(TwoPlayerSecond),
		}
		value2 := make([]outcome, n+1)
		dec2 := make([][]bool, n+1)
		for p1 := 0; p1 <= n; p1++ {
			out, dec, err := p.collapseSeat("spin-off second mover", []int{p1}, 1,
				func(s int) outcome { return p.stopSecond(p1, s) }, nil)
			if err != nil {
				return nil, err
			}
			value2[p1], dec2[p1] = out, dec
		}
		final, dec1, err := p.collapseSeat("spin-off first mover", nil, 0,
			func(s int) outcome { return value2[s] }, nil)
		if err != nil {
			return nil, err
		}
		b := final[1].coef[TwoPlayerSecond]
		if b.IsOne() {
			return nil, fmt.Errorf("solver: spin-off second mover value is degenerate, coefficient %s", b)
		}
		w, err := final[1].base.Div(rational.One().Sub(b))
		if err != nil {
			return nil, err
		}
		if tr.Feasible(TwoPlayerSecond) && tr.Bounds(TwoPlayerSecond).Contains(w) {
			var vals [numParameters]rational.Rational
			vals[TwoPlayerSecond] = w
			first := final[0].eval(vals)
			if !first.Add(w).IsOne() {
				return nil, &InvariantError{
					Stage: "spin-off",
					Spin:  0,
					Sum:   first.Add(w).String(),
				}
			}
			return &SubResult{
				FirstWin:   first,
				SecondWin:  w,
				Iterations: it,
				dec2:       dec2,
				dec1:       dec1,
			}, nil
		}
		v = w
	}
	return nil, ErrNoFixedPoint
}

var (
	subMu    sync.Mutex
	subCache = map[engine.Rules]*SubResult{}
)

// twoPlayerValue memoizes solveTwoPlayer per rule set. The spin-off value is
// reused by every three-player solve under the same rules.
func twoPlayerValue(rules engine.Rules) (*SubResult, error) {
	subMu.Lock()
	defer subMu.Unlock()
	if r, ok := subCache[rules]; ok {
		return r, nil
	}
	r, err := solveTwoPlayer(rules)
	if err != nil {
		return nil, err
	}
	subCache[rules] = r
	return r, nil
}
