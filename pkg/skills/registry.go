package skills

import (
	"context"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/xun404/dify-agent-skill-plugin/pkg/logger"
)

// FilterAll is the sentinel value for the enabled-skill filter meaning every
// merged skill is eligible.
const FilterAll = "all"

// Registry is an immutable, ordered collection of eligible skills built once
// per invocation. The slice order is the merge order (builtins in definition
// order, then custom skills in document order) and serves as the tie-break
// order for equal-priority activations.
type Registry struct {
	skills   []*Skill
	index    map[string]*Skill
	warnings []error
}

// BuildRegistry merges builtin skills with custom YAML-defined skills and
// applies the enabled-skill filter.
//
// An unparseable custom YAML document is reported as a *ConfigurationError;
// the returned registry is still valid and contains the builtins, so the
// caller can log the error and proceed. Individually malformed custom
// records are dropped and recorded as warnings (partial success); they never
// fail the build.
func BuildRegistry(ctx context.Context, builtins []*Skill, customYAML, enabledFilter string) (*Registry, error) {
	log := logger.G(ctx)

	merged := make([]*Skill, 0, len(builtins))
	index := make(map[string]*Skill, len(builtins))
	for _, s := range builtins {
		if _, exists := index[s.Name]; exists {
			// Later builtin with a duplicate name wins, keeping the
			// original merge position.
			index[s.Name] = s
			merged = replaceByName(merged, s)
			continue
		}
		index[s.Name] = s
		merged = append(merged, s)
	}

	var warnings []error
	var buildErr error

	custom, dropped, err := ParseCustomSkills(customYAML)
	if err != nil {
		// The whole custom document is unreadable. Degrade to builtins only.
		buildErr = err
		log.WithError(err).Warn("Custom skill YAML could not be parsed, continuing with builtin skills only")
	}
	warnings = append(warnings, dropped...)
	for _, w := range dropped {
		log.WithError(w).Warn("Dropping invalid custom skill record")
	}

	for _, s := range custom {
		if _, exists := index[s.Name]; exists {
			// Last-write-wins: the custom definition fully replaces the
			// earlier one, keeping the original merge position.
			index[s.Name] = s
			merged = replaceByName(merged, s)
			continue
		}
		index[s.Name] = s
		merged = append(merged, s)
	}

	eligible := applyFilter(ctx, merged, index, enabledFilter)

	reg := &Registry{
		skills:   eligible,
		index:    make(map[string]*Skill, len(eligible)),
		warnings: warnings,
	}
	for _, s := range eligible {
		reg.index[s.Name] = s
	}

	log.WithField("eligible", len(eligible)).Debug("Built skill registry")
	return reg, buildErr
}

func replaceByName(skills []*Skill, replacement *Skill) []*Skill {
	for i, s := range skills {
		if s.Name == replacement.Name {
			skills[i] = replacement
			return skills
		}
	}
	return append(skills, replacement)
}

// ParseCustomSkills parses a YAML document describing additional skills. The
// document is either a sequence of skill records or a single record. Invalid
// records are dropped and returned as validation errors alongside the
// successfully parsed skills.
func ParseCustomSkills(yamlText string) ([]*Skill, []error, error) {
	if strings.TrimSpace(yamlText) == "" {
		return nil, nil, nil
	}

	var node interface{}
	if err := yaml.Unmarshal([]byte(yamlText), &node); err != nil {
		return nil, nil, &ConfigurationError{Err: err}
	}

	var records []interface{}
	switch v := node.(type) {
	case nil:
		return nil, nil, nil
	case []interface{}:
		records = v
	case map[string]interface{}:
		records = []interface{}{v}
	default:
		return nil, nil, &ConfigurationError{Err: errors.Errorf("expected a sequence of skill records, got %T", node)}
	}

	var skills []*Skill
	var dropped []error
	for i, record := range records {
		fields, ok := record.(map[string]interface{})
		if !ok {
			dropped = append(dropped, &ValidationError{
				Field:  "record",
				Reason: errors.Errorf("record %d is not a mapping", i).Error(),
			})
			continue
		}

		m, err := decodeMetadata(fields)
		if err != nil {
			name, _ := fields["name"].(string)
			dropped = append(dropped, &ValidationError{Skill: name, Field: "record", Reason: err.Error()})
			continue
		}

		skill, err := New(m, m.Instructions, SourceCustom)
		if err != nil {
			dropped = append(dropped, err)
			continue
		}
		skills = append(skills, skill)
	}

	return skills, dropped, nil
}

// ParseEnabledFilter parses the enabled-skill filter string. It returns nil
// when every skill is eligible ("all", empty, or whitespace), otherwise the
// set of requested names.
func ParseEnabledFilter(filter string) map[string]bool {
	filter = strings.TrimSpace(filter)
	if filter == "" || strings.EqualFold(filter, FilterAll) {
		return nil
	}

	enabled := make(map[string]bool)
	for _, name := range strings.Split(filter, ",") {
		name = strings.TrimSpace(name)
		if name != "" {
			enabled[name] = true
		}
	}
	return enabled
}

func applyFilter(ctx context.Context, merged []*Skill, index map[string]*Skill, filter string) []*Skill {
	enabled := ParseEnabledFilter(filter)
	if enabled == nil {
		return merged
	}

	// Names in the filter that match no skill are ignored, not errors.
	for name := range enabled {
		if _, exists := index[name]; !exists {
			logger.G(ctx).WithField("skill", name).Debug("Enabled-skill filter names an unknown skill, ignoring")
		}
	}

	eligible := make([]*Skill, 0, len(enabled))
	for _, s := range merged {
		if enabled[s.Name] {
			eligible = append(eligible, s)
		}
	}
	return eligible
}

// Len returns the number of eligible skills.
func (r *Registry) Len() int {
	return len(r.skills)
}

// Get returns the eligible skill with the given name.
func (r *Registry) Get(name string) (*Skill, bool) {
	s, ok := r.index[name]
	return s, ok
}

// Skills returns the eligible skills in merge order.
func (r *Registry) Skills() []*Skill {
	out := make([]*Skill, len(r.skills))
	copy(out, r.skills)
	return out
}

// Names returns the eligible skill names in merge order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.skills))
	for _, s := range r.skills {
		names = append(names, s.Name)
	}
	return names
}

// Warnings returns the validation errors for custom skill records that were
// dropped during the build, aggregated into a single error. It returns nil
// when every record loaded.
func (r *Registry) Warnings() error {
	if len(r.warnings) == 0 {
		return nil
	}
	var result *multierror.Error
	for _, w := range r.warnings {
		result = multierror.Append(result, w)
	}
	return result.ErrorOrNil()
}
