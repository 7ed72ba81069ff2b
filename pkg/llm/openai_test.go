package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wireChatRequest mirrors the fields of the Chat Completions request we need
// to inspect on the wire.
type wireChatRequest struct {
	Messages []struct {
		Role       string `json:"role"`
		Content    string `json:"content"`
		ToolCallID string `json:"tool_call_id"`
		ToolCalls  []struct {
			ID       string `json:"id"`
			Type     string `json:"type"`
			Function struct {
				Name      string `json:"name"`
				Arguments string `json:"arguments"`
			} `json:"function"`
		} `json:"tool_calls"`
	} `json:"messages"`
}

func newOpenAIStub(t *testing.T, captured *wireChatRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, captured))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 0,
			"model": "gpt-4o",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "ok"}, "finish_reason": "stop"}]
		}`))
	}))
}

func TestOpenAIReplaysToolCallHistory(t *testing.T) {
	var captured wireChatRequest
	server := newOpenAIStub(t, &captured)
	defer server.Close()

	p, err := NewOpenAIProvider(ProviderOptions{
		APIKey:  "test-key",
		BaseURL: server.URL + "/v1",
	})
	require.NoError(t, err)

	history := []Message{
		{Role: RoleUser, Content: "what time is it"},
		{Role: RoleAssistant, ToolCalls: []ToolCall{
			{ID: "call_1", Name: "current_time", Parameters: map[string]interface{}{"format": "RFC3339"}},
		}},
		{Role: RoleTool, ToolCallID: "call_1", Content: "2026-01-01T00:00:00Z"},
	}

	resp, err := p.SendMessage(context.Background(), history, "be helpful", nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Content)

	require.Len(t, captured.Messages, 4) // system, user, assistant, tool

	assistant := captured.Messages[2]
	assert.Equal(t, "assistant", assistant.Role)
	require.Len(t, assistant.ToolCalls, 1)
	assert.Equal(t, "call_1", assistant.ToolCalls[0].ID)
	assert.Equal(t, "function", assistant.ToolCalls[0].Type)
	assert.Equal(t, "current_time", assistant.ToolCalls[0].Function.Name)
	assert.JSONEq(t, `{"format":"RFC3339"}`, assistant.ToolCalls[0].Function.Arguments)

	// The tool result references the call the assistant turn declared.
	tool := captured.Messages[3]
	assert.Equal(t, "tool", tool.Role)
	assert.Equal(t, "call_1", tool.ToolCallID)
	assert.Equal(t, "2026-01-01T00:00:00Z", tool.Content)
}

func TestOpenAIToolCallWithoutParameters(t *testing.T) {
	var captured wireChatRequest
	server := newOpenAIStub(t, &captured)
	defer server.Close()

	p, err := NewOpenAIProvider(ProviderOptions{
		APIKey:  "test-key",
		BaseURL: server.URL + "/v1",
	})
	require.NoError(t, err)

	_, err = p.SendMessage(context.Background(), []Message{
		{Role: RoleUser, Content: "hi"},
		{Role: RoleAssistant, ToolCalls: []ToolCall{{ID: "call_2", Name: "echo"}}},
		{Role: RoleTool, ToolCallID: "call_2", Content: "done"},
	}, "", nil)
	require.NoError(t, err)

	require.Len(t, captured.Messages, 3)
	require.Len(t, captured.Messages[1].ToolCalls, 1)
	assert.JSONEq(t, `{}`, captured.Messages[1].ToolCalls[0].Function.Arguments)
}
