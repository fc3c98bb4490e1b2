package ai

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
)

// RetryPolicy bounds how a model call is retried
type RetryPolicy struct {
	MaxRetries      int
	InitialInterval time.Duration
	// Timeout applies to each attempt; zero means the caller's context only
	Timeout time.Duration
}

// Retry wraps model so calls failing with ErrUnavailable are retried with exponential
// backoff. Credential failures, schema problems and cancelled contexts are never retried.
func Retry(model Model, policy RetryPolicy) Model {
	if policy.InitialInterval <= 0 {
		policy.InitialInterval = 500 * time.Millisecond
	}

	return ModelFunc(func(ctx context.Context, req *Request) (*Response, error) {
		var resp *Response
		attempt := func() error {
			callCtx := ctx
			if policy.Timeout > 0 {
				var cancel context.CancelFunc
				callCtx, cancel = context.WithTimeout(ctx, policy.Timeout)
				defer cancel()
			}

			r, err := model.Generate(callCtx, req)
			if err == nil {
				resp = r
				return nil
			}
			if errors.Is(err, ErrUnavailable) && ctx.Err() == nil {
				return err
			}
			return backoff.Permanent(err)
		}

		if policy.MaxRetries <= 0 {
			if err := attempt(); err != nil {
				return nil, unwrapPermanent(err)
			}
			return resp, nil
		}

		b := backoff.NewExponentialBackOff()
		b.InitialInterval = policy.InitialInterval
		b.MaxElapsedTime = 0
		schedule := backoff.WithContext(backoff.WithMaxRetries(b, uint64(policy.MaxRetries)), ctx)

		notify := func(err error, wait time.Duration) {
			log.Ctx(ctx).Warn().
				Err(err).
				Str("flow", req.Flow).
				Dur("wait", wait).
				Msg("Model call failed, retrying")
		}

		if err := backoff.RetryNotify(attempt, schedule, notify); err != nil {
			return nil, err
		}
		return resp, nil
	})
}

func unwrapPermanent(err error) error {
	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		return permanent.Err
	}
	return err
}
