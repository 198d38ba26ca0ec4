// Package solver computes exact win probabilities for the three-player
// spin-and-stop wheel game by backward induction over all reachable totals.
// Every quantity is an exact rational; ties between players are settled
// either by recursively solving the spin-off sub-game or by plugging in
// caller-supplied assumed values and auditing them afterwards.
package solver

import (
	"fmt"

	"github.com/asubramanian08/PriceIsRight/server/engine"
	"github.com/asubramanian08/PriceIsRight/server/rational"
)

// Mode selects how tie outcomes enter the induction.
type Mode string

const (
	// ModeRecursive resolves two-way ties by solving the spin-off game
	// exactly and splits three-way ties evenly.
	ModeRecursive Mode = "recursive"
	// ModeAssumption carries the tie payoffs as symbolic parameters fixed
	// at assumed values, and reports per-parameter verdicts comparing the
	// assumptions against the recursively computed truth.
	ModeAssumption Mode = "assumption"
)

// Config describes one solve. The zero Mode means ModeRecursive. Assumed is
// only read in ModeAssumption. A nil entry in Policies leaves that seat on
// optimal play.
type Config struct {
	Rules    engine.Rules
	Mode     Mode
	Assumed  Assumptions
	Policies [3]Policy
}

// Result is a finished solve. Final is the seat-ordered win distribution,
// Replay the solved two-player spin-off, and Checks the assumption verdicts
// (empty in ModeRecursive). The decision accessors read the collapsed
// policy tables; totals index by running score and priors by the earlier
// seats' final totals.
type Result struct {
	Rules  engine.Rules
	Mode   Mode
	Final  Distribution
	Replay *SubResult
	Checks []Check

	t *tables3
}

// FirstSpinsAgain reports whether the first seat spins again holding spin.
func (r *Result) FirstSpinsAgain(spin int) bool { return r.t.dec1[spin] }

// SecondSpinsAgain reports whether the second seat spins again holding spin
// against a first-seat final total of p1.
func (r *Result) SecondSpinsAgain(p1, spin int) bool { return r.t.dec2[p1][spin] }

// ThirdSpinsAgain reports whether the third seat spins again holding spin
// against final totals p1 and p2.
func (r *Result) ThirdSpinsAgain(p1, p2, spin int) bool { return r.t.dec3[p1][p2][spin] }

// Solve runs the full backward induction for cfg.
func Solve(cfg Config) (*Result, error) {
	if err := cfg.Rules.Validate(); err != nil {
		return nil, err
	}
	mode := cfg.Mode
	if mode == "" {
		mode = ModeRecursive
	}
	if mode != ModeRecursive && mode != ModeAssumption {
		return nil, fmt.Errorf("solver: unknown mode %q", mode)
	}
	sub, err := twoPlayerValue(cfg.Rules)
	if err != nil {
		return nil, err
	}
	inv := rational.MustNew(1, int64(cfg.Rules.WheelSize))

	// The recursive sweep always runs: it is the result in ModeRecursive
	// and the source of truth for the verdicts in ModeAssumption.
	third := rational.MustNew(1, 3)
	rec := &pass{
		rules:       cfg.Rules,
		tracker:     NewTracker(Assumptions{}),
		inv:         inv,
		twoWayLater: constExpr(sub.SecondWin),
		threeWay:    outcome{constExpr(third), constExpr(third), constExpr(third)},
	}
	recT, err := rec.run(cfg.Policies)
	if err != nil {
		return nil, err
	}
	recFinal := recT.final.eval([numParameters]rational.Rational{})
	if err := recFinal.Validate(); err != nil {
		return nil, err
	}

	res := &Result{
		Rules:  cfg.Rules,
		Mode:   mode,
		Final:  recFinal,
		Replay: sub,
		t:      recT,
	}
	if mode == ModeRecursive {
		return res, nil
	}

	tr := NewTracker(cfg.Assumed)
	s3w3 := paramExpr(ThreePlayerThird)
	s3w2 := paramExpr(ThreePlayerSecond)
	ap := &pass{
		rules:       cfg.Rules,
		tracker:     tr,
		inv:         inv,
		twoWayLater: paramExpr(TwoPlayerSecond),
		threeWay:    outcome{s3w3.add(s3w2).oneMinus(), s3w2, s3w3},
	}
	apT, err := ap.run(cfg.Policies)
	if err != nil {
		return nil, err
	}
	res.Final = apT.final.eval(tr.assumedValues())
	if err := res.Final.Validate(); err != nil {
		return nil, err
	}
	res.t = apT

	truth := [numParameters]rational.Rational{}
	truth[TwoPlayerSecond] = sub.SecondWin
	truth[ThreePlayerThird] = recFinal[engine.SeatThird]
	truth[ThreePlayerSecond] = recFinal[engine.SeatSecond]
	for _, p := range Parameters() {
		res.Checks = append(res.Checks, tr.Validate(p, truth[p]))
	}
	return res, nil
}
