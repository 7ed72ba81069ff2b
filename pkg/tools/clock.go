package tools

import (
	"context"
	"encoding/json"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
)

// ClockTool reports the current time. It needs nothing from the host, which
// makes it useful for exercising the tool loop end to end.
type ClockTool struct {
	now func() time.Time
}

func NewClockTool() *ClockTool {
	return &ClockTool{now: time.Now}
}

type ClockInput struct {
	Format   string `json:"format,omitempty" jsonschema:"description=Go reference layout for the timestamp,default=2006-01-02T15:04:05Z07:00"`
	Timezone string `json:"timezone,omitempty" jsonschema:"description=IANA timezone name such as Europe/London,default=UTC"`
}

func (c *ClockTool) Name() string {
	return "current_time"
}

func (c *ClockTool) Description() string {
	return "Returns the current date and time, optionally in a specific timezone and format."
}

func (c *ClockTool) GenerateSchema() *jsonschema.Schema {
	return GenerateSchema[ClockInput]()
}

func (c *ClockTool) ValidateInput(parameters string) error {
	input := &ClockInput{}
	if err := json.Unmarshal([]byte(parameters), input); err != nil {
		return err
	}

	if input.Timezone != "" {
		if _, err := time.LoadLocation(input.Timezone); err != nil {
			return errors.Wrapf(err, "unknown timezone %q", input.Timezone)
		}
	}
	return nil
}

func (c *ClockTool) Execute(_ context.Context, parameters string) ToolResult {
	input := &ClockInput{}
	if err := json.Unmarshal([]byte(parameters), input); err != nil {
		return ToolResult{Error: err.Error()}
	}

	loc := time.UTC
	if input.Timezone != "" {
		var err error
		loc, err = time.LoadLocation(input.Timezone)
		if err != nil {
			return ToolResult{Error: errors.Wrapf(err, "unknown timezone %q", input.Timezone).Error()}
		}
	}

	format := input.Format
	if format == "" {
		format = time.RFC3339
	}

	return ToolResult{Result: c.now().In(loc).Format(format)}
}

func (c *ClockTool) TracingKVs(parameters string) ([]attribute.KeyValue, error) {
	input := &ClockInput{}
	if err := json.Unmarshal([]byte(parameters), input); err != nil {
		return nil, err
	}

	return []attribute.KeyValue{
		attribute.String("format", input.Format),
		attribute.String("timezone", input.Timezone),
	}, nil
}
