package provider

import (
	"math/rand/v2"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// exponentialJitter yields base*2^n plus a uniform random component in [0, jitter).
type exponentialJitter struct {
	base    time.Duration
	jitter  time.Duration
	attempt int
}

func (b *exponentialJitter) NextBackOff() time.Duration {
	d := b.base << b.attempt
	if b.jitter > 0 {
		d += time.Duration(rand.Int64N(int64(b.jitter)))
	}
	b.attempt++
	return d
}

func (b *exponentialJitter) Reset() {
	b.attempt = 0
}

func newRetryPolicy(base, jitter time.Duration, maxRetries int) backoff.BackOff {
	return backoff.WithMaxRetries(&exponentialJitter{base: base, jitter: jitter}, uint64(maxRetries))
}
