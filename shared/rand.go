package shared

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// IRand is the randomness source behind action choice and pacing delays.
// Injected everywhere so tests can fix the seed and assert exact outcomes.
type IRand interface {
	Intn(n int) int
	Float64() float64
	// Between returns a uniformly random duration in [min, max).
	Between(min, max time.Duration) time.Duration
}

type lockedRand struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewRand(seed int64) IRand {
	return &lockedRand{rnd: rand.New(rand.NewSource(seed))}
}

func NewTimeSeededRand() IRand {
	return NewRand(time.Now().UnixNano())
}

func (r *lockedRand) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.Intn(n)
}

func (r *lockedRand) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.Float64()
}

func (r *lockedRand) Between(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return min + time.Duration(r.rnd.Int63n(int64(max-min)))
}

// ISleeper abstracts the deliberate pacing sleeps between outbound actions, so
// batch jobs stay testable without wall-clock waits.
type ISleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

type sleeper struct{}

func NewSleeper() ISleeper {
	return &sleeper{}
}

func (s *sleeper) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
