package skills

import (
	"fmt"
	"strings"
)

const skillSeparator = "\n\n---\n\n"

// ComposeSystemContext renders the activated skills into the instruction
// block injected into the model's system prompt. Each skill is clearly
// delimited so the model can attribute each capability to its skill. Returns
// the empty string when nothing is activated.
func ComposeSystemContext(activations []Activation) string {
	if len(activations) == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Active Skills (%d)\n\n", len(activations))
	b.WriteString("The following skills are relevant to this query:\n")
	for _, a := range activations {
		fmt.Fprintf(&b, "- %s\n", a.Skill.Name)
	}

	blocks := make([]string, 0, len(activations))
	for _, a := range activations {
		blocks = append(blocks, formatSkillBlock(a))
	}
	b.WriteString(skillSeparator)
	b.WriteString(strings.Join(blocks, skillSeparator))

	return b.String()
}

func formatSkillBlock(a Activation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Skill: %s\n", a.Skill.Name)
	fmt.Fprintf(&b, "**Description**: %s\n", a.Skill.Description)
	if len(a.MatchedTriggers) > 0 {
		fmt.Fprintf(&b, "**Activated by**: %s\n", strings.Join(a.MatchedTriggers, ", "))
	}
	b.WriteString("\n")
	b.WriteString(a.Skill.Instructions)
	return b.String()
}

// AllowedToolUnion returns the union of the activated skills' allowed_tools
// sets in first-appearance order. restricted is false when no activated
// skill restricts tools, in which case the full tool set stays exposed.
func AllowedToolUnion(activations []Activation) (allowed []string, restricted bool) {
	seen := make(map[string]bool)
	for _, a := range activations {
		if a.Skill.AllowedTools == nil {
			continue
		}
		restricted = true
		for _, name := range a.Skill.AllowedTools {
			if !seen[name] {
				seen[name] = true
				allowed = append(allowed, name)
			}
		}
	}
	return allowed, restricted
}
