package solver

import (
	"testing"

	"github.com/asubramanian08/PriceIsRight/server/rational"
)

func TestTrackerStartsFull(t *testing.T) {
	tr := NewTracker(Assumptions{})
	for _, p := range Parameters() {
		b := tr.Bounds(p)
		if b.String() != "[0, 1]" {
			t.Fatalf("%s starts at %s, want [0, 1]", p, b)
		}
		if !tr.Feasible(p) {
			t.Fatalf("%s should start feasible", p)
		}
	}
}

func TestTrackerNarrowing(t *testing.T) {
	tr := NewTracker(Assumptions{})
	tr.RecordComparison(TwoPlayerSecond, rational.MustNew(1, 4), true)
	tr.RecordComparison(TwoPlayerSecond, rational.MustNew(3, 4), false)
	tr.RecordComparison(TwoPlayerSecond, rational.MustNew(1, 3), true)
	if b := tr.Bounds(TwoPlayerSecond); b.String() != "[1/3, 3/4]" {
		t.Fatalf("bounds = %s, want [1/3, 3/4]", b)
	}
	// A looser comparison never widens.
	tr.RecordComparison(TwoPlayerSecond, rational.MustNew(1, 10), true)
	tr.RecordComparison(TwoPlayerSecond, rational.MustNew(9, 10), false)
	if b := tr.Bounds(TwoPlayerSecond); b.String() != "[1/3, 3/4]" {
		t.Fatalf("bounds widened to %s", b)
	}
	// Other parameters are untouched.
	if b := tr.Bounds(ThreePlayerThird); b.String() != "[0, 1]" {
		t.Fatalf("unrelated parameter narrowed to %s", b)
	}
}

func TestTrackerOrderIndependent(t *testing.T) {
	a := NewTracker(Assumptions{})
	b := NewTracker(Assumptions{})
	recs := []struct {
		thr   rational.Rational
		above bool
	}{
		{rational.MustNew(1, 5), true},
		{rational.MustNew(4, 5), false},
		{rational.MustNew(2, 5), true},
		{rational.MustNew(3, 5), false},
	}
	for _, r := range recs {
		a.RecordComparison(ThreePlayerSecond, r.thr, r.above)
	}
	for i := len(recs) - 1; i >= 0; i-- {
		b.RecordComparison(ThreePlayerSecond, recs[i].thr, recs[i].above)
	}
	ab, bb := a.Bounds(ThreePlayerSecond), b.Bounds(ThreePlayerSecond)
	if !ab.Min.Equal(bb.Min) || !ab.Max.Equal(bb.Max) {
		t.Fatalf("order dependent: %s vs %s", ab, bb)
	}
}

func TestTrackerInfeasible(t *testing.T) {
	tr := NewTracker(Assumptions{})
	tr.RecordComparison(ThreePlayerThird, rational.MustNew(2, 3), true)
	tr.RecordComparison(ThreePlayerThird, rational.MustNew(1, 3), false)
	if tr.Feasible(ThreePlayerThird) {
		t.Fatalf("expected infeasible bounds, got %s", tr.Bounds(ThreePlayerThird))
	}
	c := tr.Validate(ThreePlayerThird, rational.MustNew(1, 2))
	if c.Feasible || c.Valid {
		t.Fatalf("infeasible check scored feasible=%v valid=%v", c.Feasible, c.Valid)
	}
}

func TestValidateInclusiveEndpoints(t *testing.T) {
	tr := NewTracker(Assumptions{})
	lo, hi := rational.MustNew(1, 4), rational.MustNew(1, 2)
	tr.RecordComparison(TwoPlayerSecond, lo, true)
	tr.RecordComparison(TwoPlayerSecond, hi, false)
	for _, v := range []rational.Rational{lo, hi, rational.MustNew(3, 8)} {
		if c := tr.Validate(TwoPlayerSecond, v); !c.Valid {
			t.Fatalf("true value %s in %s scored invalid", v, c.Bounds)
		}
	}
	if c := tr.Validate(TwoPlayerSecond, rational.MustNew(3, 5)); c.Valid {
		t.Fatalf("true value outside bounds scored valid")
	}
	// A single point is still a valid closed interval.
	tr.RecordComparison(TwoPlayerSecond, hi, true)
	if !tr.Feasible(TwoPlayerSecond) {
		t.Fatalf("degenerate interval [%s, %s] should be feasible", hi, hi)
	}
	if c := tr.Validate(TwoPlayerSecond, hi); !c.Valid {
		t.Fatalf("true value at the single point scored invalid")
	}
}

func TestParameterNames(t *testing.T) {
	want := []string{"two_player_second", "three_player_third", "three_player_second"}
	for i, p := range Parameters() {
		if p.String() != want[i] {
			t.Fatalf("parameter %d = %s, want %s", i, p, want[i])
		}
	}
}
