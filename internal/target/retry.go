package target

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/hashicorp/terraform-plugin-log/tflog"

	"github.com/dimbot/lexctl/internal/fault"
)

// Backoff strategies for RetryTarget.
const (
	BackoffExponential = "exponential"
	BackoffLinear      = "linear"
)

const (
	baseDelay = 100 * time.Millisecond
	maxDelay  = 30 * time.Second
)

// RetryTarget retries transient failures of another Target. It only
// applies to receipt storage; provisioning calls are never retried.
type RetryTarget struct {
	inner      Target
	maxRetries int
	backoff    string
	sleep      func(ctx context.Context, d time.Duration) error
}

// NewRetryTarget wraps inner with up to maxRetries extra attempts. An
// unknown backoff falls back to exponential.
func NewRetryTarget(inner Target, maxRetries int, backoff string) *RetryTarget {
	if backoff != BackoffLinear {
		backoff = BackoffExponential
	}
	return &RetryTarget{
		inner:      inner,
		maxRetries: maxRetries,
		backoff:    backoff,
		sleep:      sleepCtx,
	}
}

func (r *RetryTarget) Name() string { return r.inner.Name() }

func (r *RetryTarget) Put(ctx context.Context, key string, body []byte, contentType string) error {
	return r.do(ctx, "put", key, func() error {
		return r.inner.Put(ctx, key, body, contentType)
	})
}

func (r *RetryTarget) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := r.do(ctx, "get", key, func() error {
		var err error
		data, err = r.inner.Get(ctx, key)
		return err
	})
	return data, err
}

func (r *RetryTarget) List(ctx context.Context, prefix string) ([]Object, error) {
	var objects []Object
	err := r.do(ctx, "list", prefix, func() error {
		var err error
		objects, err = r.inner.List(ctx, prefix)
		return err
	})
	return objects, err
}

func (r *RetryTarget) do(ctx context.Context, op, key string, fn func() error) error {
	var err error
	for attempt := 0; ; attempt++ {
		if err = fn(); err == nil || !retryable(err) || attempt == r.maxRetries {
			return err
		}

		delay := r.delay(attempt)
		tflog.Warn(ctx, "receipt store call failed, retrying", map[string]interface{}{
			"target":  r.inner.Name(),
			"op":      op,
			"key":     key,
			"attempt": attempt + 1,
			"delay":   delay.String(),
			"error":   err.Error(),
		})
		if serr := r.sleep(ctx, delay); serr != nil {
			return serr
		}
	}
}

// retryable excludes outcomes a second attempt cannot change.
func retryable(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrExists):
		return false
	case errors.Is(err, context.Canceled):
		return false
	}
	switch fault.Classify(err) {
	case fault.Unauthorized, fault.Validation, fault.NotFound, fault.AlreadyExists:
		return false
	}
	return true
}

// delay returns the wait before retry attempt+1, with +/-25% jitter.
func (r *RetryTarget) delay(attempt int) time.Duration {
	d := maxDelay
	switch {
	case r.backoff == BackoffLinear:
		d = min(baseDelay*time.Duration(attempt+1), maxDelay)
	case attempt < 16:
		d = min(baseDelay<<attempt, maxDelay)
	}
	return d - d/4 + rand.N(d/2+1)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
