// Package agent implements the skill-based agent strategy: it builds the
// skill registry for the invocation, matches the query, composes the system
// prompt, and drives the bounded model/tool iteration loop, streaming output
// through a MessageHandler.
package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/xun404/dify-agent-skill-plugin/pkg/llm"
	"github.com/xun404/dify-agent-skill-plugin/pkg/logger"
	"github.com/xun404/dify-agent-skill-plugin/pkg/skills"
	"github.com/xun404/dify-agent-skill-plugin/pkg/tools"
)

// DefaultMaximumIterations caps the model/tool round trips when the caller
// does not specify a limit.
const DefaultMaximumIterations = 10

// baseSystemPrompt precedes the composed skill instructions in every
// invocation.
const baseSystemPrompt = `You are an intelligent assistant with specialized skills.

Based on the user's query, relevant skills have been activated to help you provide the best response.
Follow the instructions from the active skills while maintaining a helpful and professional tone.

When using tools:
1. Analyze the task and determine which tools are needed
2. Call tools with appropriate parameters
3. Process tool results and incorporate them into your response
4. If a tool fails, explain the issue and try alternatives

Always explain your reasoning and provide clear, actionable responses.`

// State is the phase of the iteration loop.
type State int

const (
	StateAwaitingModel State = iota
	StateAwaitingTool
	StateDone
)

func (s State) String() string {
	switch s {
	case StateAwaitingModel:
		return "awaiting_model"
	case StateAwaitingTool:
		return "awaiting_tool"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// Params are the per-invocation parameters supplied by the host.
type Params struct {
	Query             string
	EnabledSkills     string // "all" or comma-separated skill names
	CustomSkills      string // raw YAML document of additional skill records
	MaximumIterations int    // model/tool round trip cap, default 10
	MaxActiveSkills   int    // cap on activations, 0 = unlimited
	Debug             bool   // stream the skill match trace
}

// Result summarizes a completed invocation.
type Result struct {
	Response        string
	ActivatedSkills []string
	Iterations      int
	ReachedLimit    bool
}

// Strategy drives one query through skill matching and the model/tool loop.
// A Strategy holds no per-query state; the registry is rebuilt from inputs
// on every Invoke, so concurrent invocations are independent.
type Strategy struct {
	provider llm.Provider
	tools    *tools.Registry
	handler  llm.MessageHandler
	builtins func() ([]*skills.Skill, error)
	extra    []*skills.Skill
}

// StrategyOption configures a Strategy.
type StrategyOption func(*Strategy)

// WithBuiltinSource overrides where builtin skills come from. Used in tests.
func WithBuiltinSource(source func() ([]*skills.Skill, error)) StrategyOption {
	return func(s *Strategy) {
		s.builtins = source
	}
}

// WithExtraSkills appends pre-parsed skills (e.g. discovered from local skill
// directories) after the builtins in merge order.
func WithExtraSkills(extra ...*skills.Skill) StrategyOption {
	return func(s *Strategy) {
		s.extra = append(s.extra, extra...)
	}
}

// NewStrategy creates a Strategy around a model provider, a tool registry
// and a streaming handler.
func NewStrategy(provider llm.Provider, toolRegistry *tools.Registry, handler llm.MessageHandler, opts ...StrategyOption) *Strategy {
	s := &Strategy{
		provider: provider,
		tools:    toolRegistry,
		handler:  handler,
		builtins: skills.BuiltinSkills,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Invoke runs one query end to end. Skill loading problems never abort the
// invocation: an unparseable custom YAML document degrades to builtin skills
// only, and a query matching no skill proceeds unassisted.
func (s *Strategy) Invoke(ctx context.Context, params Params) (*Result, error) {
	log := logger.G(ctx)

	if params.MaximumIterations <= 0 {
		params.MaximumIterations = DefaultMaximumIterations
	}

	registry, activations, trace := s.prepareSkills(ctx, params)

	if params.Debug {
		s.handler.HandleText(trace.String())
		if warnings := registry.Warnings(); warnings != nil {
			s.handler.HandleText(fmt.Sprintf("skill warnings: %v", warnings))
		}
	}

	result := &Result{}
	for _, a := range activations {
		result.ActivatedSkills = append(result.ActivatedSkills, a.Skill.Name)
	}
	if len(result.ActivatedSkills) > 0 {
		s.handler.HandleText(fmt.Sprintf("🎯 Activated skills: %s", strings.Join(result.ActivatedSkills, ", ")))
	}

	systemPrompt := baseSystemPrompt
	if skillContext := skills.ComposeSystemContext(activations); skillContext != "" {
		systemPrompt += "\n\n" + skillContext
	}

	toolset := s.tools
	if allowed, restricted := skills.AllowedToolUnion(activations); restricted {
		toolset = toolset.Restrict(allowed)
		log.WithField("allowed_tools", allowed).Debug("Restricted tool set from activated skills")
	}

	messages := []llm.Message{
		{Role: llm.RoleUser, Content: params.Query},
	}

	var finalText strings.Builder
	var pending []llm.ToolCall
	state := StateAwaitingModel

	for state != StateDone {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		switch state {
		case StateAwaitingModel:
			if result.Iterations >= params.MaximumIterations {
				s.handler.HandleText(fmt.Sprintf("⚠️ Reached maximum iterations (%d)", params.MaximumIterations))
				result.ReachedLimit = true
				state = StateDone
				continue
			}
			result.Iterations++

			log.WithField("iteration", result.Iterations).WithField("state", state.String()).Debug("Invoking model")

			resp, err := s.provider.SendMessage(ctx, messages, systemPrompt, toolset.Tools())
			if err != nil {
				s.handler.HandleText(fmt.Sprintf("Error: %v", err))
				result.Response = finalText.String()
				return result, errors.Wrap(err, "model call failed")
			}

			if resp.Content != "" {
				s.handler.HandleText(resp.Content)
				finalText.WriteString(resp.Content)
			}

			// The assistant turn must echo the tool calls it issued, under
			// IDs the later tool results will reference. A call arriving
			// without an ID gets one here so both sides stay linked.
			calls := resp.ToolCalls
			for i := range calls {
				if calls[i].ID == "" {
					calls[i].ID = "call_" + uuid.NewString()
				}
			}
			messages = append(messages, llm.Message{Role: llm.RoleAssistant, Content: resp.Content, ToolCalls: calls})

			if len(calls) == 0 {
				state = StateDone
				continue
			}
			pending = calls
			state = StateAwaitingTool

		case StateAwaitingTool:
			for _, call := range pending {
				messages = append(messages, s.executeToolCall(ctx, toolset, call))
			}
			pending = nil
			state = StateAwaitingModel
		}
	}

	s.handler.HandleDone()
	result.Response = finalText.String()
	return result, nil
}

// prepareSkills builds the per-invocation registry and matches the query.
// It never fails: configuration errors are logged and degrade gracefully.
func (s *Strategy) prepareSkills(ctx context.Context, params Params) (*skills.Registry, []skills.Activation, *skills.Trace) {
	log := logger.G(ctx)

	builtins, err := s.builtins()
	if err != nil {
		log.WithError(err).Error("Failed to load builtin skills, proceeding without them")
		builtins = nil
	}
	builtins = append(builtins, s.extra...)

	registry, err := skills.BuildRegistry(ctx, builtins, params.CustomSkills, params.EnabledSkills)
	if err != nil {
		// Custom YAML was unparseable; the registry still holds builtins.
		log.WithError(err).Warn("Custom skills ignored")
	}

	activations, trace := registry.MatchWithTrace(params.Query, params.MaxActiveSkills)
	return registry, activations, trace
}

// executeToolCall runs one requested tool call and renders the outcome as a
// tool message. Unknown tools and validation failures become error results
// in the conversation rather than aborting the loop.
func (s *Strategy) executeToolCall(ctx context.Context, toolset *tools.Registry, call llm.ToolCall) llm.Message {
	parameters := call.ParametersJSON()

	s.handler.HandleToolUse(call.Name, parameters)

	result := s.runTool(ctx, toolset, call.Name, parameters)
	rendered := result.String()
	if rendered == "" {
		rendered = "Tool executed successfully"
	}

	s.handler.HandleToolResult(call.Name, rendered)

	return llm.Message{
		Role:       llm.RoleTool,
		Content:    rendered,
		ToolCallID: call.ID,
		IsError:    result.IsError(),
	}
}

func (s *Strategy) runTool(ctx context.Context, toolset *tools.Registry, name, parameters string) tools.ToolResult {
	tool, ok := toolset.Get(name)
	if !ok {
		return tools.ToolResult{Error: fmt.Sprintf("unknown tool: %s", name)}
	}

	if err := tool.ValidateInput(parameters); err != nil {
		return tools.ToolResult{Error: fmt.Sprintf("invalid input for tool %s: %v", name, err)}
	}

	if kvs, err := tool.TracingKVs(parameters); err == nil {
		logger.G(ctx).WithField("tool", name).WithField("attributes", kvs).Debug("Executing tool")
	}

	return tool.Execute(ctx, parameters)
}
