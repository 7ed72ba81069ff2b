package tools

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/invopop/jsonschema"
	"go.opentelemetry.io/otel/attribute"
)

// EchoTool returns its input verbatim. Kept registered mainly so the loop
// and the allowed-tools restriction can be exercised without host tools.
type EchoTool struct{}

func NewEchoTool() *EchoTool {
	return &EchoTool{}
}

type EchoInput struct {
	Text string `json:"text" jsonschema:"description=The text to echo back"`
}

func (e *EchoTool) Name() string {
	return "echo"
}

func (e *EchoTool) Description() string {
	return "Echoes the supplied text back unchanged."
}

func (e *EchoTool) GenerateSchema() *jsonschema.Schema {
	return GenerateSchema[EchoInput]()
}

func (e *EchoTool) ValidateInput(parameters string) error {
	input := &EchoInput{}
	if err := json.Unmarshal([]byte(parameters), input); err != nil {
		return err
	}
	if input.Text == "" {
		return errors.New("text is required")
	}
	return nil
}

func (e *EchoTool) Execute(_ context.Context, parameters string) ToolResult {
	input := &EchoInput{}
	if err := json.Unmarshal([]byte(parameters), input); err != nil {
		return ToolResult{Error: err.Error()}
	}
	if input.Text == "" {
		return ToolResult{Error: "text is required"}
	}
	return ToolResult{Result: input.Text}
}

func (e *EchoTool) TracingKVs(parameters string) ([]attribute.KeyValue, error) {
	input := &EchoInput{}
	if err := json.Unmarshal([]byte(parameters), input); err != nil {
		return nil, err
	}

	return []attribute.KeyValue{
		attribute.String("text", input.Text),
	}, nil
}
