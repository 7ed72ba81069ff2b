package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringCollectorHandler(t *testing.T) {
	h := &StringCollectorHandler{Silent: true}

	h.HandleText("first")
	h.HandleText("second")
	h.HandleToolUse("echo", `{"text":"x"}`)
	h.HandleToolResult("echo", "x")
	h.HandleDone()

	assert.Equal(t, "first\nsecond\n", h.CollectedText())
}

func TestChannelMessageHandler(t *testing.T) {
	ch := make(chan MessageEvent, 8)
	h := &ChannelMessageHandler{MessageCh: ch}

	h.HandleText("hello")
	h.HandleToolUse("echo", "{}")
	h.HandleToolResult("echo", "out")
	h.HandleDone()
	close(ch)

	var events []MessageEvent
	for e := range ch {
		events = append(events, e)
	}

	require.Len(t, events, 4)
	assert.Equal(t, MessageEvent{Type: EventTypeText, Content: "hello"}, events[0])
	assert.Equal(t, EventTypeToolUse, events[1].Type)
	assert.Equal(t, "echo: {}", events[1].Content)
	assert.Equal(t, EventTypeToolResult, events[2].Type)
	assert.True(t, events[3].Done)
}

func TestNewProvider(t *testing.T) {
	t.Run("unsupported provider", func(t *testing.T) {
		_, err := NewProvider("nope", ProviderOptions{APIKey: "key"})
		require.Error(t, err)
	})

	t.Run("missing api key", func(t *testing.T) {
		_, err := NewProvider("openai", ProviderOptions{})
		require.Error(t, err)

		_, err = NewProvider("anthropic", ProviderOptions{})
		require.Error(t, err)
	})

	t.Run("openai defaults", func(t *testing.T) {
		p, err := NewProvider("openai", ProviderOptions{APIKey: "key"})
		require.NoError(t, err)
		assert.Equal(t, "openai", p.Name())
	})

	t.Run("anthropic defaults", func(t *testing.T) {
		p, err := NewProvider("anthropic", ProviderOptions{APIKey: "key"})
		require.NoError(t, err)
		assert.Equal(t, "anthropic", p.Name())
	})
}
