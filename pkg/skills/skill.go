// Package skills implements the skill registry and matcher for the agent
// strategy. Skills are packaged as SKILL.md files with YAML frontmatter
// (name, description, triggers, priority, category, allowed_tools) followed
// by markdown instructions that are injected into the model's system prompt
// when a user query matches one of the skill's triggers. Additional skills
// can be supplied at invocation time as a YAML document.
package skills

import (
	"strings"

	"github.com/gobwas/glob"
	"github.com/pkg/errors"
)

// Skill sources recorded on each record so the debug trace can say where a
// skill came from.
const (
	SourceBuiltin = "builtin"
	SourceCustom  = "custom"
)

// Skill is a single parsed skill definition. Skills are immutable after
// construction; triggers are normalized to lowercase and compiled once.
type Skill struct {
	Name         string
	Description  string
	Triggers     []string
	Priority     int
	Category     string
	AllowedTools []string // nil means no tool restriction
	Instructions string
	Source       string // SourceBuiltin, SourceCustom, or the directory it was loaded from

	patterns []glob.Glob
}

// Metadata is the frontmatter/record schema shared by SKILL.md files and
// custom YAML skill definitions. Instructions is only used by custom YAML
// records; for SKILL.md files the markdown body is the instructions.
type Metadata struct {
	Name         string   `mapstructure:"name" yaml:"name"`
	Description  string   `mapstructure:"description" yaml:"description"`
	Triggers     []string `mapstructure:"triggers" yaml:"triggers"`
	Priority     int      `mapstructure:"priority" yaml:"priority"`
	Category     string   `mapstructure:"category" yaml:"category"`
	AllowedTools []string `mapstructure:"allowed_tools" yaml:"allowed_tools"`
	Instructions string   `mapstructure:"instructions" yaml:"instructions"`
}

// New constructs a Skill from metadata, an instructions body and a source
// tag. It validates the required fields and compiles the trigger patterns.
func New(meta Metadata, instructions, source string) (*Skill, error) {
	if meta.Name == "" {
		return nil, &ValidationError{Field: "name", Reason: "required"}
	}
	if meta.Description == "" {
		return nil, &ValidationError{Skill: meta.Name, Field: "description", Reason: "required"}
	}
	if instructions == "" {
		return nil, &ValidationError{Skill: meta.Name, Field: "instructions", Reason: "required"}
	}

	triggers := normalizeTriggers(meta.Triggers)
	if len(triggers) == 0 {
		return nil, &ValidationError{Skill: meta.Name, Field: "triggers", Reason: "at least one trigger is required"}
	}

	patterns, err := compileTriggers(triggers)
	if err != nil {
		return nil, &ValidationError{Skill: meta.Name, Field: "triggers", Reason: err.Error()}
	}

	return &Skill{
		Name:         meta.Name,
		Description:  meta.Description,
		Triggers:     triggers,
		Priority:     meta.Priority,
		Category:     meta.Category,
		AllowedTools: meta.AllowedTools,
		Instructions: instructions,
		Source:       source,
		patterns:     patterns,
	}, nil
}

func normalizeTriggers(triggers []string) []string {
	normalized := make([]string, 0, len(triggers))
	for _, t := range triggers {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			normalized = append(normalized, t)
		}
	}
	return normalized
}

// compileTriggers turns trigger keywords into substring matchers. A literal
// `*` in a trigger acts as a wildcard; every other character matches
// verbatim. Matching is performed against a lowercased query.
func compileTriggers(triggers []string) ([]glob.Glob, error) {
	patterns := make([]glob.Glob, 0, len(triggers))
	for _, t := range triggers {
		quoted := strings.ReplaceAll(glob.QuoteMeta(t), `\*`, "*")
		g, err := glob.Compile("*" + quoted + "*")
		if err != nil {
			return nil, errors.Wrapf(err, "invalid trigger %q", t)
		}
		patterns = append(patterns, g)
	}
	return patterns, nil
}

// MatchedTriggers returns the triggers that fire for the given normalized
// query, in trigger definition order. The query must already be lowercased.
func (s *Skill) MatchedTriggers(normalizedQuery string) []string {
	if normalizedQuery == "" {
		return nil
	}
	var matched []string
	for i, g := range s.patterns {
		if g.Match(normalizedQuery) {
			matched = append(matched, s.Triggers[i])
		}
	}
	return matched
}
