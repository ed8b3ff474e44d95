package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/sinaulab/sinau/internal/db"
	"github.com/sinaulab/sinau/internal/domain"
	"go.uber.org/zap"
)

// RetryPolicy bounds how often an aborted transaction is re-run.
type RetryPolicy struct {
	MaxAttempts     uint
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:     5,
		InitialInterval: 20 * time.Millisecond,
		MaxInterval:     time.Second,
	}
}

// isPermanent reports errors that a retry cannot fix.
func isPermanent(err error) bool {
	return errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrValidation) ||
		errors.Is(err, domain.ErrDuplicate) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// runInTx runs fn in one transaction. Domain errors come back unchanged on
// the first attempt; anything else is wrapped in domain.ErrTransaction and
// the whole transaction is retried with exponential backoff.
func (s *settings) runInTx(ctx context.Context, uow db.UnitOfWork, name string, fn func(ctx context.Context, tx db.DBTX) error) error {
	b := backoff.NewExponentialBackOff()
	if s.retry.InitialInterval > 0 {
		b.InitialInterval = s.retry.InitialInterval
	}
	if s.retry.MaxInterval > 0 {
		b.MaxInterval = s.retry.MaxInterval
	}
	maxAttempts := s.retry.MaxAttempts
	if maxAttempts == 0 {
		maxAttempts = 1
	}

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		err := uow.WithinTx(ctx, fn)
		switch {
		case err == nil:
			return struct{}{}, nil
		case isPermanent(err):
			return struct{}{}, backoff.Permanent(err)
		default:
			return struct{}{}, fmt.Errorf("%s: %w: %w", name, domain.ErrTransaction, err)
		}
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(maxAttempts),
		backoff.WithNotify(func(err error, next time.Duration) {
			s.logger.Warn("retrying transaction",
				zap.String("use_case", name),
				zap.Duration("next_in", next),
				zap.Error(err))
		}),
	)

	var perm *backoff.PermanentError
	if errors.As(err, &perm) {
		return perm.Err
	}
	return err
}
