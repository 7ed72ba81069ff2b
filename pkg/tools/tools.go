// Package tools defines the tool surface exposed to the model during the
// agent loop. Tool execution itself is owned by whichever runtime supplies
// the tools; this package only describes them (JSON schema), validates
// inputs, and applies the allowed-tools restriction computed from activated
// skills.
package tools

import (
	"context"
	"fmt"

	"github.com/invopop/jsonschema"
	"go.opentelemetry.io/otel/attribute"
)

// Tool is a capability the model may invoke during the agent loop.
// Parameters arrive as a JSON document matching the tool's generated schema.
type Tool interface {
	Name() string
	Description() string
	GenerateSchema() *jsonschema.Schema
	ValidateInput(parameters string) error
	Execute(ctx context.Context, parameters string) ToolResult
	TracingKVs(parameters string) ([]attribute.KeyValue, error)
}

// ToolResult is the outcome of a tool execution, rendered back to the model
// as tagged text.
type ToolResult struct {
	Result string `json:"result"`
	Error  string `json:"error"`
}

func (t *ToolResult) IsError() bool {
	return t.Error != ""
}

func (t *ToolResult) String() string {
	out := ""
	if t.Error != "" {
		out = fmt.Sprintf("<error>\n%s\n</error>\n", t.Error)
	}
	if t.Result != "" {
		out += fmt.Sprintf("<result>\n%s\n</result>\n", t.Result)
	}
	return out
}

// GenerateSchema reflects a JSON schema from an input struct type.
func GenerateSchema[T any]() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T

	return reflector.Reflect(v)
}
