package agent

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Decider picks the action for one symbol.
type Decider interface {
	Choose(symbol string) Choice
}

// DeciderFunc adapts a function to Decider.
type DeciderFunc func(symbol string) Choice

func (f DeciderFunc) Choose(symbol string) Choice { return f(symbol) }

// RandomDecider picks uniformly among increase, decrease and close.
type RandomDecider struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomDecider seeds the generator; seed 0 seeds from the clock.
func NewRandomDecider(seed uint64) *RandomDecider {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &RandomDecider{rng: rand.New(rand.NewPCG(seed, seed>>1|1))}
}

func (d *RandomDecider) Choose(string) Choice {
	d.mu.Lock()
	defer d.mu.Unlock()
	return Choice(d.rng.IntN(3))
}

// FixedDecider replays a sequence of choices and then repeats the last one.
type FixedDecider struct {
	mu      sync.Mutex
	choices []Choice
	next    int
}

func NewFixedDecider(choices ...Choice) *FixedDecider {
	return &FixedDecider{choices: choices}
}

func (d *FixedDecider) Choose(string) Choice {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.choices) == 0 {
		return ChoiceClose
	}
	c := d.choices[min(d.next, len(d.choices)-1)]
	d.next++
	return c
}
