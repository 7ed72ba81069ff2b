package llm

import (
	"context"
	"encoding/json"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/pkg/errors"

	"github.com/xun404/dify-agent-skill-plugin/pkg/tools"
)

// AnthropicProvider implements Provider for Anthropic Claude.
type AnthropicProvider struct {
	client    anthropic.Client
	model     string
	maxTokens int
}

// NewAnthropicProvider creates an Anthropic provider.
func NewAnthropicProvider(options ProviderOptions) (Provider, error) {
	if options.APIKey == "" {
		return nil, errors.New("anthropic API key is required")
	}

	clientOptions := []option.RequestOption{option.WithAPIKey(options.APIKey)}
	if options.BaseURL != "" {
		clientOptions = append(clientOptions, option.WithBaseURL(options.BaseURL))
	}
	client := anthropic.NewClient(clientOptions...)

	model := options.Model
	if model == "" {
		model = string(anthropic.ModelClaude3_7SonnetLatest)
	}

	maxTokens := options.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	return &AnthropicProvider{
		client:    client,
		model:     model,
		maxTokens: maxTokens,
	}, nil
}

func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

// SendMessage sends the conversation to Anthropic and returns the response.
func (p *AnthropicProvider) SendMessage(ctx context.Context, messages []Message, systemPrompt string, toolset []tools.Tool) (MessageResponse, error) {
	var anthropicMessages []anthropic.MessageParam

	for _, msg := range messages {
		switch msg.Role {
		case RoleUser:
			anthropicMessages = append(anthropicMessages, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		case RoleAssistant:
			// An assistant turn that only issued tool calls has no text; the
			// API rejects empty text blocks, so emit tool_use blocks alone.
			var blocks []anthropic.ContentBlockParamUnion
			if msg.Content != "" {
				blocks = append(blocks, anthropic.NewTextBlock(msg.Content))
			}
			for _, call := range msg.ToolCalls {
				input := call.Parameters
				if input == nil {
					input = map[string]interface{}{}
				}
				blocks = append(blocks, anthropic.ContentBlockParamUnion{
					OfToolUse: &anthropic.ToolUseBlockParam{
						ID:    call.ID,
						Name:  call.Name,
						Input: input,
					},
				})
			}
			if len(blocks) > 0 {
				anthropicMessages = append(anthropicMessages, anthropic.NewAssistantMessage(blocks...))
			}
		case RoleTool:
			if msg.ToolCallID != "" {
				anthropicMessages = append(anthropicMessages, anthropic.NewUserMessage(
					anthropic.NewToolResultBlock(msg.ToolCallID, msg.Content, msg.IsError),
				))
			}
		}
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: int64(p.maxTokens),
		Messages:  anthropicMessages,
	}

	if systemPrompt != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: systemPrompt},
		}
	}

	if len(toolset) > 0 {
		params.Tools = convertToolsToAnthropic(toolset)
	}

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return MessageResponse{}, err
	}

	messageResp := MessageResponse{
		StopReason: string(resp.StopReason),
	}

	for _, block := range resp.Content {
		switch variant := block.AsAny().(type) {
		case anthropic.TextBlock:
			messageResp.Content += variant.Text
		case anthropic.ToolUseBlock:
			toolCall := ToolCall{
				ID:         variant.ID,
				Name:       variant.Name,
				Parameters: make(map[string]interface{}),
			}

			if err := json.Unmarshal(variant.Input, &toolCall.Parameters); err != nil {
				toolCall.Parameters["raw"] = string(variant.Input)
			}

			messageResp.ToolCalls = append(messageResp.ToolCalls, toolCall)
		}
	}

	return messageResp, nil
}

func convertToolsToAnthropic(toolset []tools.Tool) []anthropic.ToolUnionParam {
	anthropicTools := make([]anthropic.ToolUnionParam, 0, len(toolset))
	for _, t := range toolset {
		anthropicTools = append(anthropicTools, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        t.Name(),
				Description: anthropic.String(t.Description()),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: t.GenerateSchema().Properties,
				},
			},
		})
	}
	return anthropicTools
}
