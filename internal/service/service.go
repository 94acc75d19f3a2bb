package service

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/duetapp/duet/internal/apperr"
	"github.com/duetapp/duet/internal/model"
)

//go:generate mockgen -destination=mocks_test.go -package=service_test github.com/duetapp/duet/internal/service PairingDirectory
//go:generate mockgen -destination=notifier_mocks_test.go -package=service_test github.com/duetapp/duet/internal/notify Notifier

// PairingDirectory resolves which two users are linked. A nil pairing
// without error means the user has no active pairing.
type PairingDirectory interface {
	FindActivePairing(ctx context.Context, userID string) (*model.Pairing, error)
}

// RetryPolicy bounds how often a write that lost an optimistic race is retried.
type RetryPolicy struct {
	MaxRetries      uint64
	InitialInterval time.Duration
}

var DefaultRetryPolicy = RetryPolicy{
	MaxRetries:      5,
	InitialInterval: 10 * time.Millisecond,
}

// retryOnConflict runs op until it succeeds, fails with a non-conflict error
// or the policy is exhausted. The last conflict is returned in that case.
func (p RetryPolicy) retryOnConflict(ctx context.Context, op func() error, onRetry func()) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	b.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(b, p.MaxRetries), ctx)

	return backoff.RetryNotify(func() error {
		err := op()
		if err != nil && !apperr.Retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}, policy, func(error, time.Duration) {
		if onRetry != nil {
			onRetry()
		}
	})
}

func utcNow() time.Time {
	return time.Now().UTC()
}
