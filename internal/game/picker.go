package game

import (
	"math/rand/v2"

	"rps_webapp/internal/domain"
)

// Picker chooses the computer's hand for a round.
type Picker interface {
	Pick() domain.Choice
}

// RandomPicker draws uniformly from the three hands.
type RandomPicker struct {
	intn func(n int) int
}

func NewRandomPicker() *RandomPicker {
	return &RandomPicker{intn: rand.IntN}
}

// NewSeededPicker returns a reproducible picker, used by tools and tests.
func NewSeededPicker(seed uint64) *RandomPicker {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	return &RandomPicker{intn: r.IntN}
}

func (p *RandomPicker) Pick() domain.Choice {
	return domain.Choices[p.intn(len(domain.Choices))]
}

// FixedPicker always throws the same hand.
type FixedPicker domain.Choice

func (p FixedPicker) Pick() domain.Choice {
	return domain.Choice(p)
}
