// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package throttle paces outbound page fetches: a random pause before each
// request, capped by an aggregate request rate.
package throttle

import (
	"context"
	"math/rand/v2"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/seo-engine/pkg/types"
)

// Throttle blocks until the next request may be issued.
type Throttle interface {
	Wait(ctx context.Context) error
}

// Jitter waits a uniformly random delay in [Min, Max] and then takes a
// token from an optional rate limiter.
type Jitter struct {
	Min, Max time.Duration

	limiter *rate.Limiter

	// int64n and sleep are swapped in tests.
	int64n func(n int64) int64
	sleep  func(ctx context.Context, d time.Duration) error
}

// New builds a Jitter from the scrape settings. A non-positive
// RatePerSecond disables the rate cap.
func New(cfg types.ScrapeConfig) *Jitter {
	j := &Jitter{
		Min:    cfg.MinDelay,
		Max:    cfg.MaxDelay,
		int64n: rand.Int64N,
		sleep:  sleepContext,
	}
	if j.Max < j.Min {
		j.Max = j.Min
	}
	if cfg.RatePerSecond > 0 {
		j.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), 1)
	}
	return j
}

// Delay draws the next pause.
func (j *Jitter) Delay() time.Duration {
	if j.Max <= j.Min {
		return max(j.Min, 0)
	}
	return j.Min + time.Duration(j.int64n(int64(j.Max-j.Min)+1))
}

// Wait sleeps for Delay, then waits on the rate limiter. It returns the
// context's error if ctx ends first.
func (j *Jitter) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := j.sleep(ctx, j.Delay()); err != nil {
		return err
	}
	if j.limiter != nil {
		return j.limiter.Wait(ctx)
	}
	return nil
}

// None never waits. It still honours cancellation.
type None struct{}

// Wait returns ctx.Err().
func (None) Wait(ctx context.Context) error { return ctx.Err() }

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
