package logic

import (
	"context"
	"sync"
	"time"

	"growth_engine/shared"
)

const rateLimitWindow = time.Minute
const rateLimitPollInterval = time.Second

// IRateLimiter tracks recent reddit API calls per account over a sliding
// window, so every account stays under the per-minute ceiling independently.
type IRateLimiter interface {
	CanCall(accountId string) bool
	RecordCall(accountId string)
	WaitIfNeeded(ctx context.Context, accountId string) error
	Remaining(accountId string) int
	ResetTime(accountId string) time.Time
}

type rateLimiter struct {
	cfg     *shared.Config
	logger  shared.ILogger
	sleeper shared.ISleeper
	mu      sync.Mutex
	calls   map[string][]time.Time
	now     func() time.Time
}

func NewRateLimiter(cfg *shared.Config, logger shared.ILogger, sleeper shared.ISleeper) IRateLimiter {
	return &rateLimiter{
		cfg:     cfg,
		logger:  logger,
		sleeper: sleeper,
		calls:   map[string][]time.Time{},
		now:     time.Now,
	}
}

// dropOldCalls removes window-expired timestamps; caller must hold mu.
func (rl *rateLimiter) dropOldCalls(accountId string, now time.Time) {
	cutoff := now.Add(-rateLimitWindow)
	recent := rl.calls[accountId][:0]
	for _, t := range rl.calls[accountId] {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}
	rl.calls[accountId] = recent
}

func (rl *rateLimiter) CanCall(accountId string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.dropOldCalls(accountId, rl.now())
	return len(rl.calls[accountId]) < rl.cfg.Reddit.CallsPerMinute
}

func (rl *rateLimiter) RecordCall(accountId string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.calls[accountId] = append(rl.calls[accountId], rl.now())
}

func (rl *rateLimiter) Remaining(accountId string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.dropOldCalls(accountId, rl.now())
	res := rl.cfg.Reddit.CallsPerMinute - len(rl.calls[accountId])
	if res < 0 {
		res = 0
	}
	return res
}

// ResetTime tells when the oldest in-window call expires, i.e. the earliest
// moment a saturated account gets a slot back. For an idle account it is now.
func (rl *rateLimiter) ResetTime(accountId string) time.Time {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := rl.now()
	rl.dropOldCalls(accountId, now)
	if len(rl.calls[accountId]) == 0 {
		return now
	}
	return rl.calls[accountId][0].Add(rateLimitWindow)
}

func (rl *rateLimiter) WaitIfNeeded(ctx context.Context, accountId string) error {
	waited := false
	for {
		if rl.CanCall(accountId) {
			if waited {
				rl.logger.Debugf("Rate limit slot freed up for account %s", accountId)
			}
			return nil
		}
		if !waited {
			rl.logger.Debugf("Account %s at rate limit; waiting", accountId)
			waited = true
		}
		if err := rl.sleeper.Sleep(ctx, rateLimitPollInterval); err != nil {
			return err
		}
	}
}
