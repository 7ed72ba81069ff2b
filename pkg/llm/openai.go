package llm

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"

	"github.com/xun404/dify-agent-skill-plugin/pkg/tools"
)

// OpenAIProvider implements Provider for OpenAI and OpenAI-compatible APIs.
type OpenAIProvider struct {
	client    *openai.Client
	model     string
	maxTokens int
}

// NewOpenAIProvider creates an OpenAI provider.
func NewOpenAIProvider(options ProviderOptions) (Provider, error) {
	if options.APIKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}

	config := openai.DefaultConfig(options.APIKey)
	if options.BaseURL != "" {
		config.BaseURL = options.BaseURL
	}

	model := options.Model
	if model == "" {
		model = openai.GPT4o
	}

	maxTokens := options.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	return &OpenAIProvider{
		client:    openai.NewClientWithConfig(config),
		model:     model,
		maxTokens: maxTokens,
	}, nil
}

func (p *OpenAIProvider) Name() string {
	return "openai"
}

// SendMessage sends the conversation to OpenAI and returns the response.
func (p *OpenAIProvider) SendMessage(ctx context.Context, messages []Message, systemPrompt string, toolset []tools.Tool) (MessageResponse, error) {
	openaiMessages := make([]openai.ChatCompletionMessage, 0, len(messages)+1)

	if systemPrompt != "" {
		openaiMessages = append(openaiMessages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}

	for _, msg := range messages {
		openaiMsg := openai.ChatCompletionMessage{
			Content: msg.Content,
		}

		switch msg.Role {
		case RoleUser:
			openaiMsg.Role = openai.ChatMessageRoleUser
		case RoleAssistant:
			openaiMsg.Role = openai.ChatMessageRoleAssistant
			for _, call := range msg.ToolCalls {
				openaiMsg.ToolCalls = append(openaiMsg.ToolCalls, openai.ToolCall{
					ID:   call.ID,
					Type: openai.ToolTypeFunction,
					Function: openai.FunctionCall{
						Name:      call.Name,
						Arguments: call.ParametersJSON(),
					},
				})
			}
		case RoleSystem:
			openaiMsg.Role = openai.ChatMessageRoleSystem
		case RoleTool:
			openaiMsg.Role = openai.ChatMessageRoleTool
			openaiMsg.ToolCallID = msg.ToolCallID
		}

		openaiMessages = append(openaiMessages, openaiMsg)
	}

	req := openai.ChatCompletionRequest{
		Model:     p.model,
		Messages:  openaiMessages,
		MaxTokens: p.maxTokens,
	}

	if len(toolset) > 0 {
		req.Tools = convertToolsToOpenAI(toolset)
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return MessageResponse{}, err
	}

	messageResp := MessageResponse{}

	if len(resp.Choices) > 0 {
		choice := resp.Choices[0]
		messageResp.Content = choice.Message.Content
		messageResp.StopReason = string(choice.FinishReason)

		for _, tc := range choice.Message.ToolCalls {
			toolCall := ToolCall{
				ID:         tc.ID,
				Name:       tc.Function.Name,
				Parameters: make(map[string]interface{}),
			}

			if err := json.Unmarshal([]byte(tc.Function.Arguments), &toolCall.Parameters); err != nil {
				toolCall.Parameters["raw"] = tc.Function.Arguments
			}

			messageResp.ToolCalls = append(messageResp.ToolCalls, toolCall)
		}
	}

	return messageResp, nil
}

func convertToolsToOpenAI(toolset []tools.Tool) []openai.Tool {
	openaiTools := make([]openai.Tool, 0, len(toolset))
	for _, t := range toolset {
		openaiTools = append(openaiTools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.GenerateSchema(),
			},
		})
	}
	return openaiTools
}
