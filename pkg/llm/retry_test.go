package llm

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xun404/dify-agent-skill-plugin/pkg/tools"
)

type flakyProvider struct {
	failures int
	calls    int
}

func (f *flakyProvider) Name() string { return "flaky" }

func (f *flakyProvider) SendMessage(_ context.Context, _ []Message, _ string, _ []tools.Tool) (MessageResponse, error) {
	f.calls++
	if f.calls <= f.failures {
		return MessageResponse{}, errors.New("transient failure")
	}
	return MessageResponse{Content: "recovered"}, nil
}

func fastRetryConfig() RetryConfig {
	return RetryConfig{
		Attempts:     3,
		InitialDelay: time.Millisecond,
		MaxDelay:     2 * time.Millisecond,
	}
}

func TestWithRetry(t *testing.T) {
	t.Run("recovers after transient failures", func(t *testing.T) {
		flaky := &flakyProvider{failures: 2}
		p := WithRetry(flaky, fastRetryConfig())

		resp, err := p.SendMessage(context.Background(), nil, "", nil)
		require.NoError(t, err)
		assert.Equal(t, "recovered", resp.Content)
		assert.Equal(t, 3, flaky.calls)
	})

	t.Run("gives up after attempts are exhausted", func(t *testing.T) {
		flaky := &flakyProvider{failures: 10}
		p := WithRetry(flaky, fastRetryConfig())

		_, err := p.SendMessage(context.Background(), nil, "", nil)
		require.Error(t, err)
		assert.Equal(t, 3, flaky.calls)
	})

	t.Run("does not retry on context cancellation", func(t *testing.T) {
		// The context is cancelled during the first attempt, so the retry
		// loop sees a cancellation error after one call and must not retry.
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		canceled := &cancellationProvider{cancel: cancel}
		p := WithRetry(canceled, fastRetryConfig())

		_, err := p.SendMessage(ctx, nil, "", nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, canceled.calls)
	})

	t.Run("short-circuits a context cancelled before the first attempt", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		canceled := &cancellationProvider{cancel: func() {}}
		p := WithRetry(canceled, fastRetryConfig())

		_, err := p.SendMessage(ctx, nil, "", nil)
		require.Error(t, err)
		assert.Equal(t, 0, canceled.calls)
	})
}

type cancellationProvider struct {
	cancel context.CancelFunc
	calls  int
}

func (c *cancellationProvider) Name() string { return "canceled" }

func (c *cancellationProvider) SendMessage(ctx context.Context, _ []Message, _ string, _ []tools.Tool) (MessageResponse, error) {
	c.calls++
	c.cancel()
	return MessageResponse{}, ctx.Err()
}
