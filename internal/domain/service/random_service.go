package service

import (
	"math/rand"
	"sync"
	"time"
)

// Randomizer is the source of randomness for assignment and level rewards.
type Randomizer interface {
	Intn(n int) int
	Float64() float64
	Shuffle(n int, swap func(i, j int))
}

type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewRandomizer returns a goroutine-safe Randomizer seeded from the clock.
func NewRandomizer() Randomizer {
	return NewSeededRandomizer(time.Now().UnixNano())
}

func NewSeededRandomizer(seed int64) Randomizer {
	return &lockedRand{r: rand.New(rand.NewSource(seed))}
}

func (l *lockedRand) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Intn(n)
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

func (l *lockedRand) Shuffle(n int, swap func(i, j int)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.r.Shuffle(n, swap)
}
