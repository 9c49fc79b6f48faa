// Package backoff provides the waiting strategies used between retry attempts.
package backoff

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrMaxAttempts is returned by a Strategy once its attempt budget is used up.
var ErrMaxAttempts = errors.New("maximum retries exceeded")

// Strategy inserts a delay between retry attempts. A strategy is stateful and
// good for a single operation; create a fresh one per retried call.
type Strategy interface {
	Wait() error
}

// linearBackoff waits base * attempt-number between attempts, so delays grow
// as 1x, 2x, 3x the base.
type linearBackoff struct {
	base           time.Duration
	currentAttempt uint
	maxAttempts    uint
	sleep          func(time.Duration)
}

// NewLinear creates a Strategy that sleeps base * n before retry attempt n
// and fails with ErrMaxAttempts after maxAttempts waits.
func NewLinear(base time.Duration, maxAttempts uint) Strategy {
	return NewLinearWithSleep(base, maxAttempts, time.Sleep)
}

// NewLinearWithSleep is NewLinear with an injectable sleep function.
// Tests use it to observe delays instead of spending wall-clock time.
func NewLinearWithSleep(base time.Duration, maxAttempts uint, sleep func(time.Duration)) Strategy {
	return &linearBackoff{
		base:        base,
		maxAttempts: maxAttempts,
		sleep:       sleep,
	}
}

func (l *linearBackoff) Wait() error {
	if l.currentAttempt >= l.maxAttempts {
		return ErrMaxAttempts
	}
	l.currentAttempt++
	delay := l.base * time.Duration(l.currentAttempt)
	logrus.Debugf("waiting %v before retry (attempt %d/%d)", delay, l.currentAttempt, l.maxAttempts)
	l.sleep(delay)
	return nil
}

// Retry runs op until it succeeds or the strategy's attempt budget is spent.
// Transient failures are logged at warn level, not surfaced individually; the
// returned error is the one from the final attempt, with ErrMaxAttempts
// joined in so callers can detect exhaustion with errors.Is.
func Retry(op func() error, s Strategy) error {
	for {
		err := op()
		if err == nil {
			return nil
		}
		logrus.WithError(err).Warn("attempt failed, backing off")
		if waitErr := s.Wait(); waitErr != nil {
			return errors.Join(waitErr, err)
		}
	}
}
