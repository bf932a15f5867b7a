package retry_test

import (
	"testing"
	"time"

	"github.com/rohmanhakim/coverart-fetcher/pkg/failure"
	"github.com/rohmanhakim/coverart-fetcher/pkg/retry"
	"github.com/rohmanhakim/coverart-fetcher/pkg/timeutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubError struct {
	retryable bool
}

func (e *stubError) Error() string { return "stub error" }

func (e *stubError) Severity() failure.Severity {
	if e.retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *stubError) IsRetryable() bool { return e.retryable }

func fastParam(maxAttempts int) retry.RetryParam {
	return retry.NewRetryParam(
		0,
		1,
		maxAttempts,
		timeutil.NewBackoffParam(time.Millisecond, 1.0, time.Millisecond),
	)
}

func TestRetrySucceedsFirstAttempt(t *testing.T) {
	calls := 0
	result, err := retry.Retry(fastParam(3), func() (string, failure.ClassifiedError) {
		calls++
		return "ok", nil
	})
	require.Nil(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 1, calls)
}

func TestRetryRecoversAfterRetryableFailure(t *testing.T) {
	calls := 0
	result, err := retry.Retry(fastParam(3), func() (int, failure.ClassifiedError) {
		calls++
		if calls < 3 {
			return 0, &stubError{retryable: true}
		}
		return 42, nil
	})
	require.Nil(t, err)
	assert.Equal(t, 42, result)
	assert.Equal(t, 3, calls)
}

func TestRetryStopsOnNonRetryableError(t *testing.T) {
	calls := 0
	_, err := retry.Retry(fastParam(5), func() (int, failure.ClassifiedError) {
		calls++
		return 0, &stubError{retryable: false}
	})
	require.NotNil(t, err)
	assert.Equal(t, 1, calls)
	assert.IsType(t, &stubError{}, err)
}

func TestRetryExhaustsAttempts(t *testing.T) {
	calls := 0
	_, err := retry.Retry(fastParam(3), func() (int, failure.ClassifiedError) {
		calls++
		return 0, &stubError{retryable: true}
	})
	require.NotNil(t, err)
	assert.Equal(t, 3, calls)

	var retryErr *retry.RetryError
	require.ErrorAs(t, err, &retryErr)
	assert.Equal(t, retry.RetryErrorCause(retry.ErrExhaustedAttempts), retryErr.Cause)
}

func TestRetryRejectsZeroAttempts(t *testing.T) {
	_, err := retry.Retry(fastParam(0), func() (int, failure.ClassifiedError) {
		t.Fatal("task must not run with zero attempts")
		return 0, nil
	})
	var retryErr *retry.RetryError
	require.ErrorAs(t, err, &retryErr)
	assert.Equal(t, retry.RetryErrorCause(retry.ErrZeroAttempt), retryErr.Cause)
}
