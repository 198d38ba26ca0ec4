package solver

import (
	"fmt"

	"github.com/asubramanian08/PriceIsRight/server/engine"
	"github.com/asubramanian08/PriceIsRight/server/rational"
)

// pass is one backward-induction sweep over the game tree. The tie outcomes
// it plugs in decide what kind of sweep it is: constant exprs give the
// recursive mode, bare parameter exprs give the assumption mode, and the
// two-player fixed-point iteration reuses the same machinery with only the
// first two outcome slots populated.
type pass struct {
	rules   engine.Rules
	tracker *Tracker
	// inv is 1/N, the weight of each wheel face.
	inv         rational.Rational
	twoWayLater expr
	threeWay    outcome
}

// tables3 holds the collapsed result of a full three-player sweep: the final
// symbolic distribution and the spin-again decision per reachable state.
type tables3 struct {
	final outcome
	dec3  [][][]bool
	dec2  [][]bool
	dec1  []bool
}

// stopThird classifies the game once all three seats hold final totals p1,
// p2 and s. Zero totals are busts; a bust never beats a positive total and
// three zeros tie the same way three equal positive totals do.
func (p *pass) stopThird(p1, p2, s int) outcome {
	m := p1
	if p2 > m {
		m = p2
	}
	var zero expr
	switch {
	case s > m:
		return outcome{zero, zero, oneExpr()}
	case s == p1 && s == p2:
		return p.threeWay
	case s == m:
		// The acting seat ties the unique leader; the later of the two
		// takes the second mover's share of the spin-off.
		w := p.twoWayLater
		if p1 > p2 {
			return outcome{w.oneMinus(), zero, w}
		}
		return outcome{zero, w.oneMinus(), w}
	case p1 == p2:
		// Both earlier seats beat s and tie each other.
		w := p.twoWayLater
		return outcome{w.oneMinus(), w, zero}
	case p1 > p2:
		return outcome{oneExpr(), zero, zero}
	default:
		return outcome{zero, oneExpr(), zero}
	}
}

// stopSecond classifies a two-player game once both totals are final. The
// acting seat is the second mover; a tie hands it the second mover's
// spin-off share.
func (p *pass) stopSecond(p1, s int) outcome {
	var zero expr
	switch {
	case s > p1:
		return outcome{zero, oneExpr(), zero}
	case s < p1:
		return outcome{oneExpr(), zero, zero}
	default:
		w := p.twoWayLater
		return outcome{w.oneMinus(), w, zero}
	}
}

// spinBeatsStop decides one spin-or-stop comparison on the acting player's
// own win probability. Equal values stop. When the difference depends on a
// single tie parameter the decision is a threshold test on that parameter,
// and the threshold is recorded with the tracker; differences touching
// several parameters are settled numerically at the assumed values and
// leave no usable single-parameter bound.
func (p *pass) spinBeatsStop(spin, stop expr) (bool, error) {
	d := spin.sub(stop)
	idx, count := -1, 0
	for i := range d.coef {
		if !d.coef[i].IsZero() {
			idx, count = i, count+1
		}
	}
	switch count {
	case 0:
		return d.base.Sign() > 0, nil
	case 1:
		c := d.coef[idx]
		thr, err := d.base.Neg().Div(c)
		if err != nil {
			return false, err
		}
		v := p.tracker.Assumed(Parameter(idx))
		if c.Sign() > 0 {
			// d > 0 exactly when the parameter exceeds the threshold.
			better := thr.Less(v)
			p.tracker.RecordComparison(Parameter(idx), thr, better)
			return better, nil
		}
		better := v.Less(thr)
		p.tracker.RecordComparison(Parameter(idx), thr, !better)
		return better, nil
	default:
		return d.eval(p.tracker.assumedValues()).Sign() > 0, nil
	}
}

// checkUnit verifies that an outcome carries exactly unit mass, coefficient
// by coefficient, and reports the state that broke it.
func (p *pass) checkUnit(stage string, priors []int, spin int, o outcome) error {
	sum := o[0].add(o[1]).add(o[2])
	if sum.base.IsOne() && sum.isConst() {
		return nil
	}
	return &InvariantError{
		Stage:  stage,
		Priors: append([]int(nil), priors...),
		Spin:   spin,
		Sum:    sum.eval(p.tracker.assumedValues()).String(),
	}
}

// decide resolves one spin-or-stop state, through the policy override when
// one is installed and by maximizing the acting seat's own probability
// otherwise.
func (p *pass) decide(priors []int, seat, s int, spin, stop outcome, pol Policy) (outcome, bool, error) {
	if pol != nil {
		w := pol.SpinAgain(State{Priors: priors, Spin: s})
		if w.Sign() < 0 || rational.One().Less(w) {
			return outcome{}, false, fmt.Errorf("solver: policy weight %s outside [0, 1] at priors %v, total %d", w, priors, s)
		}
		return mix(spin, stop, w), w.Sign() > 0, nil
	}
	better, err := p.spinBeatsStop(spin[seat], stop[seat])
	if err != nil {
		return outcome{}, false, err
	}
	if better {
		return spin, true, nil
	}
	return stop, false, nil
}

// collapseSeat resolves one seat's turn: a mandatory opening spin, then a
// single optional spin whose result is banked wherever it lands. stopAt
// gives the outcome of banking each possible total under the priors; seat is
// the acting player's slot in the outcome. It returns the seat's entry
// value, evaluated before its opening spin, along with the spin-again
// decision per opening total.
func (p *pass) collapseSeat(stage string, priors []int, seat int, stopAt func(s int) outcome, pol Policy) (outcome, []bool, error) {
	n := p.rules.WheelSize
	stops := make([]outcome, n+1)
	for s := 0; s <= n; s++ {
		stops[s] = stopAt(s)
		if err := p.checkUnit(stage, priors, s, stops[s]); err != nil {
			return outcome{}, nil, err
		}
	}
	collapsed := make([]outcome, n+1)
	dec := make([]bool, n+1)
	for s := 1; s <= n; s++ {
		// The second spin banks whatever total it lands on; a face that
		// busts ends the turn at a final total of 0.
		var spin outcome
		for f := 1; f <= n; f++ {
			spin = spin.add(stops[p.rules.AddSpin(s, f)])
		}
		spin = spin.scale(p.inv)
		if err := p.checkUnit(stage, priors, s, spin); err != nil {
			return outcome{}, nil, err
		}
		out, d, err := p.decide(priors, seat, s, spin, stops[s], pol)
		if err != nil {
			return outcome{}, nil, err
		}
		collapsed[s], dec[s] = out, d
		if err := p.checkUnit(stage, priors, s, collapsed[s]); err != nil {
			return outcome{}, nil, err
		}
	}
	// The opening spin cannot bust and lands on a decided cell. It is
	// mandatory unless the rules allow banking a zero.
	var entry outcome
	for f := 1; f <= n; f++ {
		entry = entry.add(collapsed[f])
	}
	entry = entry.scale(p.inv)
	dec[0] = true
	if p.rules.AllowDecline {
		out, d, err := p.decide(priors, seat, 0, entry, stops[0], pol)
		if err != nil {
			return outcome{}, nil, err
		}
		entry, dec[0] = out, d
	}
	if err := p.checkUnit(stage, priors, 0, entry); err != nil {
		return outcome{}, nil, err
	}
	return entry, dec, nil
}

// run sweeps all three stages from the last seat outward. pols entries may
// be nil for optimal play.
func (p *pass) run(pols [3]Policy) (*tables3, error) {
	n := p.rules.WheelSize
	value3 := make([][]outcome, n+1)
	dec3 := make([][][]bool, n+1)
	for p1 := 0; p1 <= n; p1++ {
		value3[p1] = make([]outcome, n+1)
		dec3[p1] = make([][]bool, n+1)
		for p2 := 0; p2 <= n; p2++ {
			out, dec, err := p.collapseSeat("third seat", []int{p1, p2}, 2,
				func(s int) outcome { return p.stopThird(p1, p2, s) }, pols[engine.SeatThird])
			if err != nil {
				return nil, err
			}
			value3[p1][p2], dec3[p1][p2] = out, dec
		}
	}
	value2 := make([]outcome, n+1)
	dec2 := make([][]bool, n+1)
	for p1 := 0; p1 <= n; p1++ {
		out, dec, err := p.collapseSeat("second seat", []int{p1}, 1,
			func(s int) outcome { return value3[p1][s] }, pols[engine.SeatSecond])
		if err != nil {
			return nil, err
		}
		value2[p1], dec2[p1] = out, dec
	}
	final, dec1, err := p.collapseSeat("first seat", nil, 0,
		func(s int) outcome { return value2[s] }, pols[engine.SeatFirst])
	if err != nil {
		return nil, err
	}
	return &tables3{final: final, dec3: dec3, dec2: dec2, dec1: dec1}, nil
}
