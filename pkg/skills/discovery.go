package skills

import (
	"context"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/xun404/dify-agent-skill-plugin/pkg/logger"
)

const (
	skillFileName  = "SKILL.md"
	configFileName = "config.yaml"
)

// Discovery loads additional skills from directories on disk. Each skill
// lives in its own subdirectory containing a SKILL.md file and, optionally,
// a config.yaml whose fields override the frontmatter.
type Discovery struct {
	skillDirs []string
}

// Option configures a Discovery.
type Option func(*Discovery) error

// WithSkillDirs sets custom skill directories.
func WithSkillDirs(dirs ...string) Option {
	return func(d *Discovery) error {
		d.skillDirs = dirs
		return nil
	}
}

// WithDefaultDirs initializes the default skill directories.
func WithDefaultDirs() Option {
	return func(d *Discovery) error {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return errors.Wrap(err, "failed to get user home directory")
		}
		d.skillDirs = []string{
			"./.skillagent/skills",                          // Repo-local (highest precedence)
			filepath.Join(homeDir, ".skillagent", "skills"), // User-global
		}
		return nil
	}
}

// NewDiscovery creates a skill discovery instance.
func NewDiscovery(opts ...Option) (*Discovery, error) {
	d := &Discovery{}

	if len(opts) == 0 {
		opts = []Option{WithDefaultDirs()}
	}
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}

	return d, nil
}

// DiscoverSkills loads every well-formed skill from the configured
// directories in directory order, subdirectories sorted by name. The first
// skill seen for a name wins across directories. Malformed skill files are
// skipped with a debug log; they never fail discovery.
func (d *Discovery) DiscoverSkills(ctx context.Context) []*Skill {
	var discovered []*Skill
	seen := make(map[string]bool)

	for _, dir := range d.skillDirs {
		for _, skill := range d.discoverFromDir(ctx, dir) {
			if seen[skill.Name] {
				continue
			}
			seen[skill.Name] = true
			discovered = append(discovered, skill)
		}
	}

	return discovered
}

func (d *Discovery) discoverFromDir(ctx context.Context, dir string) []*Skill {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	var skills []*Skill
	for _, name := range names {
		entryPath := filepath.Join(dir, name)
		skill, err := d.loadSkill(entryPath)
		if err != nil {
			logger.G(ctx).WithError(err).WithField("dir", entryPath).Debug("Skipping malformed skill")
			continue
		}
		skills = append(skills, skill)
	}

	return skills
}

// loadSkill loads one skill directory: SKILL.md frontmatter plus body, with
// config.yaml fields (if present) overriding the frontmatter.
func (d *Discovery) loadSkill(dir string) (*Skill, error) {
	content, err := os.ReadFile(filepath.Join(dir, skillFileName))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read skill file")
	}

	fields, body, err := parseFrontmatter(content)
	if err != nil {
		return nil, err
	}

	if overlay, err := os.ReadFile(filepath.Join(dir, configFileName)); err == nil {
		var extra map[string]interface{}
		if err := yaml.Unmarshal(overlay, &extra); err != nil {
			return nil, errors.Wrap(err, "failed to parse config.yaml overlay")
		}
		for k, v := range extra {
			fields[k] = v
		}
	}

	m, err := decodeMetadata(fields)
	if err != nil {
		return nil, &ValidationError{Field: "frontmatter", Reason: err.Error()}
	}

	return New(m, body, dir)
}
