// Package llm provides a provider-agnostic interface for the model calls
// made by the agent loop, with OpenAI and Anthropic implementations.
package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/xun404/dify-agent-skill-plugin/pkg/tools"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
	RoleTool      = "tool"
)

// Message is a generic message in a conversation. Assistant messages that
// requested tool invocations must carry them in ToolCalls so that the
// follow-up request replays a valid history: both OpenAI and Anthropic reject
// a tool result whose call ID no prior assistant turn declared.
type Message struct {
	Role       string // RoleUser, RoleAssistant, RoleSystem or RoleTool
	Content    string
	ToolCalls  []ToolCall // tool invocations issued by this assistant turn
	ToolCallID string     // set on RoleTool messages responding to a tool call
	IsError    bool       // set on RoleTool messages carrying a failed execution
}

// MessageResponse is a single model response.
type MessageResponse struct {
	Content    string
	ToolCalls  []ToolCall
	StopReason string
}

// ToolCall is a tool invocation requested by the model.
type ToolCall struct {
	ID         string
	Name       string
	Parameters map[string]interface{}
}

// ParametersJSON renders the call parameters as a JSON object string, the
// form both wire protocols and the tool interface expect.
func (c ToolCall) ParametersJSON() string {
	if c.Parameters == nil {
		return "{}"
	}
	raw, err := json.Marshal(c.Parameters)
	if err != nil {
		return "{}"
	}
	return string(raw)
}

// ToolResult carries a tool execution outcome back into the conversation.
type ToolResult struct {
	CallID  string
	Content string
	Error   bool
}

// ProviderOptions configures a provider instance. Credentials come from the
// hosting environment; no credential storage happens here.
type ProviderOptions struct {
	Model     string
	MaxTokens int
	APIKey    string
	BaseURL   string // optional API endpoint override
}

// Provider is a model backend able to answer one request/response step of
// the agent loop.
type Provider interface {
	// SendMessage sends the conversation to the model and returns its response.
	SendMessage(ctx context.Context, messages []Message, systemPrompt string, tools []tools.Tool) (MessageResponse, error)

	// Name returns the provider identifier ("openai", "anthropic").
	Name() string
}

// NewProvider creates a provider by name.
func NewProvider(providerName string, options ProviderOptions) (Provider, error) {
	switch providerName {
	case "openai":
		return NewOpenAIProvider(options)
	case "anthropic":
		return NewAnthropicProvider(options)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", providerName)
	}
}
