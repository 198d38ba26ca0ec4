// Package engine holds the physical rules of the spin-and-stop wheel game:
// seat order, wheel faces, running totals, the bust rule, and a seeded wheel
// for simulation.
package engine

import (
	"errors"
	"fmt"
	"math/rand"
	"time"
)

// Seat identifies a player by turn order. Seats act strictly in order; later
// seats observe every earlier final total before their own first spin.
type Seat int

const (
	SeatFirst Seat = iota
	SeatSecond
	SeatThird
)

func (s Seat) String() string {
	switch s {
	case SeatFirst:
		return "first"
	case SeatSecond:
		return "second"
	case SeatThird:
		return "third"
	}
	return fmt.Sprintf("seat(%d)", int(s))
}

// ErrWheelSize rejects rule sets with no faces on the wheel.
var ErrWheelSize = errors.New("engine: wheel size must be at least 1")

// Rules fixes the parameters of a game. WheelSize N means the wheel shows
// faces 1..N, each equally likely, and N is also the bust ceiling: a running
// total above N scores 0. AllowDecline lets a player skip the opening spin
// and bank a total of 0, which the televised game does not permit.
type Rules struct {
	WheelSize    int
	AllowDecline bool
}

// DefaultRules is the televised configuration: a 20-face wheel and a
// mandatory opening spin.
func DefaultRules() Rules { return Rules{WheelSize: 20} }

func (r Rules) Validate() error {
	if r.WheelSize < 1 {
		return ErrWheelSize
	}
	return nil
}

// AddSpin applies one face to a running total. A total above the wheel size
// busts and scores 0. Landing exactly on the ceiling is an ordinary score;
// the televised bonus spin for hitting the ceiling exactly is not modeled.
func (r Rules) AddSpin(total, face int) int {
	t := total + face
	if t > r.WheelSize {
		return 0
	}
	return t
}

// Wheel is a seeded physical wheel for simulation playouts.
type Wheel struct {
	rng  *rand.Rand
	size int
}

// NewWheel builds a wheel under the given rules. Seed 0 seeds from the clock.
func NewWheel(rules Rules, seed int64) *Wheel {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Wheel{rng: rand.New(rand.NewSource(seed)), size: rules.WheelSize}
}

// Spin returns a uniformly random face in 1..N.
func (w *Wheel) Spin() int { return w.rng.Intn(w.size) + 1 }
