package solver

import (
	"testing"

	"github.com/asubramanian08/PriceIsRight/server/engine"
	"github.com/asubramanian08/PriceIsRight/server/rational"
)

func TestTwoPlayerValueTwentyFaces(t *testing.T) {
	sub, err := solveTwoPlayer(engine.DefaultRules())
	if err != nil {
		t.Fatalf("solveTwoPlayer: %v", err)
	}
	if got := sub.SecondWin.String(); got != "16274/29837" {
		t.Fatalf("second mover wins %s, want 16274/29837", got)
	}
	if got := sub.FirstWin.String(); got != "13563/29837" {
		t.Fatalf("first mover wins %s, want 13563/29837", got)
	}
	if !sub.FirstWin.Add(sub.SecondWin).IsOne() {
		t.Fatalf("spin-off shares do not sum to 1")
	}
	// Acting second is an advantage.
	if !sub.FirstWin.Less(sub.SecondWin) {
		t.Fatalf("expected second mover advantage, got %s vs %s", sub.FirstWin, sub.SecondWin)
	}
}

func TestTwoPlayerValueTwoFaces(t *testing.T) {
	sub, err := solveTwoPlayer(engine.Rules{WheelSize: 2})
	if err != nil {
		t.Fatalf("solveTwoPlayer: %v", err)
	}
	if got := sub.SecondWin.String(); got != "4/7" {
		t.Fatalf("second mover wins %s, want 4/7", got)
	}
}

func TestTwoPlayerValueFiveFaces(t *testing.T) {
	sub, err := solveTwoPlayer(engine.Rules{WheelSize: 5})
	if err != nil {
		t.Fatalf("solveTwoPlayer: %v", err)
	}
	if got := sub.SecondWin.String(); got != "125/228" {
		t.Fatalf("second mover wins %s, want 125/228", got)
	}
}

func TestTwoPlayerDecisionTables(t *testing.T) {
	sub, err := solveTwoPlayer(engine.DefaultRules())
	if err != nil {
		t.Fatalf("solveTwoPlayer: %v", err)
	}
	// Holding the tie against an equal first-mover total, the second mover
	// spins through 9 and sits on 10 and up.
	for s := 1; s <= 20; s++ {
		want := s <= 9
		if got := sub.SecondSpinsAgain(s, s); got != want {
			t.Fatalf("second mover at tie total %d: spin=%v, want %v", s, got, want)
		}
	}
	// Any lead beats standing pat; trailing the lead forces a spin.
	if sub.SecondSpinsAgain(5, 6) {
		t.Fatalf("second mover should bank a winning 6 over 5")
	}
	if !sub.SecondSpinsAgain(15, 3) {
		t.Fatalf("second mover must chase a 15 from 3")
	}
	// The first mover spins through 10 and banks 11 and up.
	for s := 1; s <= 20; s++ {
		want := s <= 10
		if got := sub.FirstSpinsAgain(s); got != want {
			t.Fatalf("first mover at %d: spin=%v, want %v", s, got, want)
		}
	}
}

func TestSecondSpinBanksWhereItLands(t *testing.T) {
	// A turn is the opening spin plus at most one more; the second spin's
	// landing total is final. An always-spin second mover facing a busted
	// leader on a five-face wheel therefore wins with probability
	// (9/10 + 4/5 + 7/10 + 3/5 + 1/2) / 5 = 7/10, each term being one
	// opening total re-spun exactly once, bust counting 1/2 via the
	// zero-zero tie.
	p := &pass{
		rules:       engine.Rules{WheelSize: 5},
		tracker:     NewTracker(Assumptions{}),
		inv:         rational.MustNew(1, 5),
		twoWayLater: constExpr(rational.MustNew(1, 2)),
	}
	alwaysSpin := PolicyFunc(func(State) rational.Rational { return rational.One() })
	entry, dec, err := p.collapseSeat("spin-off second mover", []int{0}, 1,
		func(s int) outcome { return p.stopSecond(0, s) }, alwaysSpin)
	if err != nil {
		t.Fatalf("collapseSeat: %v", err)
	}
	var vals [numParameters]rational.Rational
	if got := entry[1].eval(vals).String(); got != "7/10" {
		t.Fatalf("always-spin second mover wins %s, want 7/10", got)
	}
	for s := 1; s <= 5; s++ {
		if !dec[s] {
			t.Fatalf("policy forces a spin at %d", s)
		}
	}
}

func TestTwoPlayerValueMemoized(t *testing.T) {
	a, err := twoPlayerValue(engine.Rules{WheelSize: 7})
	if err != nil {
		t.Fatalf("twoPlayerValue: %v", err)
	}
	b, err := twoPlayerValue(engine.Rules{WheelSize: 7})
	if err != nil {
		t.Fatalf("twoPlayerValue: %v", err)
	}
	if a != b {
		t.Fatalf("expected memoized result to be reused")
	}
}
