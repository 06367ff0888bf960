// internal/workers/runner/policy.go
package runner

import (
	"time"

	"reclamations/internal/common/config"

	"github.com/cenkalti/backoff/v4"
)

// Policy is the retry budget applied to one message. MaxRetries counts
// retries after the first delivery.
type Policy struct {
	InitialInterval time.Duration
	Multiplier      float64
	MaxInterval     time.Duration
	MaxRetries      int
}

func PolicyFromConfig(cfg config.RetryConfig) Policy {
	return Policy{
		InitialInterval: config.GetDuration(cfg.InitialInterval),
		Multiplier:      cfg.Multiplier,
		MaxInterval:     config.GetDuration(cfg.MaxInterval),
		MaxRetries:      cfg.MaxRetries,
	}
}

// RetryState is the explicit retry bookkeeping for one in-flight message.
type RetryState struct {
	Attempt       int
	NextAttemptAt time.Time
	LastErr       error
}

// BackOff returns a fresh, jitter-free schedule bounded by MaxRetries.
func (p Policy) BackOff() backoff.BackOff {
	return backoff.WithMaxRetries(p.exponential(), uint64(p.MaxRetries))
}

func (p Policy) exponential() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	b.Multiplier = p.Multiplier
	b.MaxInterval = p.MaxInterval
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// Schedule lists when each retry happens, measured from the first failure.
// The default policy yields 1s, 3s, 7s.
func (p Policy) Schedule() []time.Duration {
	b := p.BackOff()
	var out []time.Duration
	var total time.Duration
	for {
		d := b.NextBackOff()
		if d == backoff.Stop {
			return out
		}
		total += d
		out = append(out, total)
	}
}
