package retry

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/sandevgo/tuskheart/pkg/log"
)

type Operation = func() error

type Config struct {
	MaxRetries    int
	BackoffFactor float64
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	Jitter        time.Duration
}

func NewDefaultConfig() *Config {
	return &Config{
		MaxRetries:    3,
		BackoffFactor: 2,
		InitialDelay:  100 * time.Millisecond,
		MaxDelay:      2 * time.Second,
		Jitter:        20 * time.Millisecond,
	}
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying. Do returns the wrapped error.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

type Retrier struct {
	config *Config
}

func NewRetrier(config *Config) *Retrier {
	if config == nil {
		config = NewDefaultConfig()
	}
	return &Retrier{config: config}
}

func NewDefaultRetrier() *Retrier {
	return NewRetrier(NewDefaultConfig())
}

// Do runs op until it succeeds, returns a permanent error, the retries run
// out or ctx is done.
func (r *Retrier) Do(ctx context.Context, op Operation) error {
	var err error
	delay := r.config.InitialDelay
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))

	for attempt := 0; attempt <= r.config.MaxRetries; attempt++ {
		err = op()
		if err == nil {
			return nil
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}
		if attempt == r.config.MaxRetries {
			return err
		}

		var jitter time.Duration
		if r.config.Jitter > 0 {
			jitter = time.Duration(rnd.Float64() * float64(r.config.Jitter))
		}
		nextDelay := min(delay, r.config.MaxDelay) + jitter

		log.FromCtx(ctx).Debug().
			Err(err).
			Int("attempt", attempt+1).
			Dur("delay", nextDelay).
			Msg("operation failed, retrying")

		timer := time.NewTimer(nextDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay = min(time.Duration(float64(delay)*r.config.BackoffFactor), r.config.MaxDelay)
	}
	return err
}
