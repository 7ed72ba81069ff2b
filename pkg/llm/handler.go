package llm

import (
	"fmt"
	"strings"
)

// MessageHandler receives streaming events from the agent loop. The host
// transport (or the CLI) decides how to surface them.
type MessageHandler interface {
	HandleText(text string)
	HandleToolUse(toolName string, input string)
	HandleToolResult(toolName string, result string)
	HandleDone()
}

// MessageEvent is one event delivered through a ChannelMessageHandler.
type MessageEvent struct {
	Type    string
	Content string
	Done    bool
}

// Event types
const (
	EventTypeText       = "text"
	EventTypeToolUse    = "tool_use"
	EventTypeToolResult = "tool_result"
)

// ConsoleMessageHandler prints events to stdout.
type ConsoleMessageHandler struct {
	Silent bool
}

func (h *ConsoleMessageHandler) HandleText(text string) {
	if !h.Silent {
		fmt.Println(text)
		fmt.Println()
	}
}

func (h *ConsoleMessageHandler) HandleToolUse(toolName string, input string) {
	if !h.Silent {
		fmt.Printf("🔧 Using tool: %s: %s\n\n", toolName, input)
	}
}

func (h *ConsoleMessageHandler) HandleToolResult(toolName string, result string) {
	if !h.Silent {
		fmt.Printf("🔄 Tool result: %s\n\n", result)
	}
}

func (h *ConsoleMessageHandler) HandleDone() {}

// ChannelMessageHandler forwards events through a channel, for transports
// that stream to the host asynchronously.
type ChannelMessageHandler struct {
	MessageCh chan MessageEvent
}

func (h *ChannelMessageHandler) HandleText(text string) {
	h.MessageCh <- MessageEvent{Type: EventTypeText, Content: text}
}

func (h *ChannelMessageHandler) HandleToolUse(toolName string, input string) {
	h.MessageCh <- MessageEvent{Type: EventTypeToolUse, Content: fmt.Sprintf("%s: %s", toolName, input)}
}

func (h *ChannelMessageHandler) HandleToolResult(toolName string, result string) {
	h.MessageCh <- MessageEvent{Type: EventTypeToolResult, Content: result}
}

func (h *ChannelMessageHandler) HandleDone() {
	h.MessageCh <- MessageEvent{Type: EventTypeText, Done: true}
}

// StringCollectorHandler collects text events into a string, for tests and
// one-shot invocations.
type StringCollectorHandler struct {
	Silent bool
	text   strings.Builder
}

func (h *StringCollectorHandler) HandleText(text string) {
	h.text.WriteString(text)
	h.text.WriteString("\n")

	if !h.Silent {
		fmt.Println(text)
	}
}

func (h *StringCollectorHandler) HandleToolUse(toolName string, input string) {
	if !h.Silent {
		fmt.Printf("🔧 Using tool: %s: %s\n", toolName, input)
	}
}

func (h *StringCollectorHandler) HandleToolResult(toolName string, result string) {
	if !h.Silent {
		fmt.Printf("🔄 Tool result: %s\n", result)
	}
}

func (h *StringCollectorHandler) HandleDone() {}

// CollectedText returns the concatenated text events seen so far.
func (h *StringCollectorHandler) CollectedText() string {
	return h.text.String()
}
