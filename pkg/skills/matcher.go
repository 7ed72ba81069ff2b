package skills

import (
	"fmt"
	"sort"
	"strings"
)

// Activation is a skill selected for a query, together with the triggers
// that fired.
type Activation struct {
	Skill           *Skill
	MatchedTriggers []string

	mergeOrder int
}

// Trace records which skills were considered for a query, which matched and
// why, and the final activation order. It is purely informational output for
// debug mode.
type Trace struct {
	Query     string
	Entries   []TraceEntry
	Activated []string
}

// TraceEntry is the per-skill line of a Trace.
type TraceEntry struct {
	Skill    string
	Source   string
	Priority int
	Matched  bool
	Triggers []string // the triggers that fired, empty when Matched is false
}

// Match returns the skills activated by the query, ordered by priority
// descending with registry merge order breaking ties. An empty query, or a
// query matching no trigger, yields an empty result; fallback behavior is
// the caller's concern. maxSkills caps the number of activations; zero or
// negative means unlimited.
//
// Match is a pure function of the registry and the query: it performs no
// I/O, mutates nothing, and is safe to call concurrently.
func (r *Registry) Match(query string, maxSkills int) []Activation {
	activations, _ := r.MatchWithTrace(query, maxSkills)
	return activations
}

// MatchWithTrace is Match plus the debug trace of the decision.
func (r *Registry) MatchWithTrace(query string, maxSkills int) ([]Activation, *Trace) {
	normalized := NormalizeQuery(query)

	trace := &Trace{Query: query}
	var activations []Activation

	for i, s := range r.skills {
		matched := s.MatchedTriggers(normalized)
		trace.Entries = append(trace.Entries, TraceEntry{
			Skill:    s.Name,
			Source:   s.Source,
			Priority: s.Priority,
			Matched:  len(matched) > 0,
			Triggers: matched,
		})
		if len(matched) > 0 {
			activations = append(activations, Activation{
				Skill:           s,
				MatchedTriggers: matched,
				mergeOrder:      i,
			})
		}
	}

	sort.SliceStable(activations, func(i, j int) bool {
		if activations[i].Skill.Priority != activations[j].Skill.Priority {
			return activations[i].Skill.Priority > activations[j].Skill.Priority
		}
		return activations[i].mergeOrder < activations[j].mergeOrder
	})

	if maxSkills > 0 && len(activations) > maxSkills {
		activations = activations[:maxSkills]
	}

	for _, a := range activations {
		trace.Activated = append(trace.Activated, a.Skill.Name)
	}

	return activations, trace
}

// NormalizeQuery lowercases the query and collapses runs of whitespace into
// single spaces so trigger phrases match across line breaks.
func NormalizeQuery(query string) string {
	return strings.ToLower(strings.Join(strings.Fields(query), " "))
}

// String renders the trace as human-readable text.
func (t *Trace) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "skill match trace for query %q\n", t.Query)
	for _, e := range t.Entries {
		if e.Matched {
			fmt.Fprintf(&b, "  [match] %s (priority %d, %s): triggered by %s\n",
				e.Skill, e.Priority, e.Source, strings.Join(e.Triggers, ", "))
		} else {
			fmt.Fprintf(&b, "  [skip]  %s (priority %d, %s): no trigger matched\n",
				e.Skill, e.Priority, e.Source)
		}
	}
	if len(t.Activated) == 0 {
		b.WriteString("  activation order: (none)\n")
	} else {
		fmt.Fprintf(&b, "  activation order: %s\n", strings.Join(t.Activated, " > "))
	}
	return b.String()
}
