package skills

import (
	"embed"
	"io/fs"
	"path"
	"sort"

	"github.com/pkg/errors"
)

//go:embed builtin/*/SKILL.md
var builtinFS embed.FS

const builtinRoot = "builtin"

// BuiltinSkills parses the embedded default skill set. The returned slice is
// ordered by skill directory name; that order is the registry merge order for
// builtins. Freshly constructed values are returned on every call so callers
// can never observe shared mutable state.
func BuiltinSkills() ([]*Skill, error) {
	entries, err := fs.ReadDir(builtinFS, builtinRoot)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read embedded skills")
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	result := make([]*Skill, 0, len(names))
	for _, name := range names {
		content, err := fs.ReadFile(builtinFS, path.Join(builtinRoot, name, skillFileName))
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read builtin skill %q", name)
		}

		skill, err := ParseSkillFile(content, SourceBuiltin)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse builtin skill %q", name)
		}
		result = append(result, skill)
	}

	return result, nil
}
