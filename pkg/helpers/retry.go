package helpers

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/sirupsen/logrus"
)

// Retry calls fn with exponential backoff until it succeeds, attempts are
// exhausted, or ctx is done. Used for dialing dependencies at startup.
func Retry(ctx context.Context, logger *logrus.Logger, what string, attempts uint64, base time.Duration, fn func(ctx context.Context) error) error {
	b := retry.WithMaxRetries(attempts, retry.NewExponential(base))
	try := 0
	return retry.Do(ctx, b, func(ctx context.Context) error {
		try++
		if err := fn(ctx); err != nil {
			logger.WithError(err).WithFields(logrus.Fields{"dependency": what, "attempt": try}).Warn("dependency not ready")
			return retry.RetryableError(err)
		}
		return nil
	})
}
