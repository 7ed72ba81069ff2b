package llm

import (
	"context"
	"errors"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/xun404/dify-agent-skill-plugin/pkg/logger"
	"github.com/xun404/dify-agent-skill-plugin/pkg/tools"
)

// RetryConfig controls transient-failure retries on model calls.
type RetryConfig struct {
	Attempts     int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// DefaultRetryConfig is a small exponential backoff suitable for rate limits
// and transient API failures.
var DefaultRetryConfig = RetryConfig{
	Attempts:     3,
	InitialDelay: 500 * time.Millisecond,
	MaxDelay:     5 * time.Second,
}

type retryProvider struct {
	Provider
	config RetryConfig
}

// WithRetry wraps a provider so SendMessage retries with exponential backoff.
// Context cancellation is never retried.
func WithRetry(p Provider, config RetryConfig) Provider {
	if config.Attempts <= 0 {
		config = DefaultRetryConfig
	}
	return &retryProvider{Provider: p, config: config}
}

func (r *retryProvider) SendMessage(ctx context.Context, messages []Message, systemPrompt string, toolset []tools.Tool) (MessageResponse, error) {
	var response MessageResponse

	err := retry.Do(
		func() error {
			var apiErr error
			response, apiErr = r.Provider.SendMessage(ctx, messages, systemPrompt, toolset)
			return apiErr
		},
		retry.RetryIf(isRetryableError),
		retry.Attempts(uint(r.config.Attempts)),
		retry.Delay(r.config.InitialDelay),
		retry.MaxDelay(r.config.MaxDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			logger.G(ctx).WithError(err).
				WithField("attempt", n+1).
				WithField("max_attempts", r.config.Attempts).
				Warn("Retrying model call")
		}),
	)

	return response, err
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true
}
