// Package sim plays out wheel game rounds with a seeded wheel, following the
// decision tables of a finished solve. It exists to cross-check the exact
// probabilities against observed frequencies and to drive the simulate
// endpoint.
package sim

import (
	"github.com/asubramanian08/PriceIsRight/server/engine"
	"github.com/asubramanian08/PriceIsRight/server/solver"
)

// Tally counts simulated rounds. Wins are indexed by seat.
type Tally struct {
	Rounds           int
	Wins             [3]int
	TwoWaySpinoffs   int
	ThreeWaySpinoffs int
}

// Rate returns the observed win frequency of a seat.
func (t Tally) Rate(seat engine.Seat) float64 {
	if t.Rounds == 0 {
		return 0
	}
	return float64(t.Wins[seat]) / float64(t.Rounds)
}

// Simulator replays the solved game. Every decision comes from the solve's
// collapsed policy tables; ties are played out rather than scored, so the
// tally converges on the exact distribution only when the solve's tie
// values are the true ones.
type Simulator struct {
	rules engine.Rules
	res   *solver.Result
	wheel *engine.Wheel
}

// New builds a simulator over a finished solve. Seed 0 seeds from the clock.
func New(res *solver.Result, seed int64) *Simulator {
	return &Simulator{
		rules: res.Rules,
		res:   res,
		wheel: engine.NewWheel(res.Rules, seed),
	}
}

// playTurn runs one player's turn: the mandatory opening spin, then one
// optional spin banked wherever it lands. spins is the player's policy by
// running total; a total of 0 is the opening decision and is only consulted
// when declining is legal.
func (s *Simulator) playTurn(spins func(total int) bool) int {
	if s.rules.AllowDecline && !spins(0) {
		return 0
	}
	total := s.wheel.Spin()
	if spins(total) {
		total = s.rules.AddSpin(total, s.wheel.Spin())
	}
	return total
}

// replayPair plays full two-player rematches between seats a and b, in seat
// order, until one wins. The rematch policies come from the solved spin-off
// game.
func (s *Simulator) replayPair(a, b engine.Seat) engine.Seat {
	for {
		p1 := s.playTurn(s.res.Replay.FirstSpinsAgain)
		p2 := s.playTurn(func(t int) bool { return s.res.Replay.SecondSpinsAgain(p1, t) })
		if p1 > p2 {
			return a
		}
		if p2 > p1 {
			return b
		}
	}
}

// spinoffAll resolves a tie among all three seats with simultaneous single
// spins, respinning among whoever stays tied for the highest face.
func (s *Simulator) spinoffAll() engine.Seat {
	seats := []engine.Seat{engine.SeatFirst, engine.SeatSecond, engine.SeatThird}
	for {
		best, leaders := 0, seats[:0:0]
		for _, seat := range seats {
			f := s.wheel.Spin()
			switch {
			case f > best:
				best, leaders = f, []engine.Seat{seat}
			case f == best:
				leaders = append(leaders, seat)
			}
		}
		if len(leaders) == 1 {
			return leaders[0]
		}
		seats = leaders
	}
}

func (s *Simulator) playRound(t *Tally) engine.Seat {
	p1 := s.playTurn(s.res.FirstSpinsAgain)
	p2 := s.playTurn(func(total int) bool { return s.res.SecondSpinsAgain(p1, total) })
	p3 := s.playTurn(func(total int) bool { return s.res.ThirdSpinsAgain(p1, p2, total) })

	if p1 == p2 && p2 == p3 {
		t.ThreeWaySpinoffs++
		return s.spinoffAll()
	}
	m := p1
	if p2 > m {
		m = p2
	}
	if p3 > m {
		m = p3
	}
	var tied []engine.Seat
	for seat, total := range [3]int{p1, p2, p3} {
		if total == m {
			tied = append(tied, engine.Seat(seat))
		}
	}
	if len(tied) == 1 {
		return tied[0]
	}
	t.TwoWaySpinoffs++
	return s.replayPair(tied[0], tied[1])
}

// Run plays the given number of rounds and tallies the winners.
func (s *Simulator) Run(rounds int) Tally {
	t := Tally{Rounds: rounds}
	for i := 0; i < rounds; i++ {
		t.Wins[s.playRound(&t)]++
	}
	return t
}
