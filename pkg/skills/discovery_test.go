package skills

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSkillDir(t *testing.T, root, dir, content string) {
	t.Helper()
	skillDir := filepath.Join(root, dir)
	require.NoError(t, os.MkdirAll(skillDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(skillDir, "SKILL.md"), []byte(content), 0o644))
}

func TestNewDiscovery(t *testing.T) {
	t.Run("with default dirs", func(t *testing.T) {
		discovery, err := NewDiscovery()
		require.NoError(t, err)
		assert.Len(t, discovery.skillDirs, 2)
	})

	t.Run("with custom dirs", func(t *testing.T) {
		customDirs := []string{"/tmp/skills1", "/tmp/skills2"}
		discovery, err := NewDiscovery(WithSkillDirs(customDirs...))
		require.NoError(t, err)
		assert.Equal(t, customDirs, discovery.skillDirs)
	})
}

func TestDiscoverSkills(t *testing.T) {
	ctx := context.Background()
	tmpDir := t.TempDir()

	writeSkillDir(t, tmpDir, "review-skill", `---
name: review-skill
description: Reviews pull requests
triggers:
  - review
priority: 3
---

# Review Skill

Look at the diff.
`)
	writeSkillDir(t, tmpDir, "another-skill", `---
name: another-skill
description: Another skill
triggers:
  - another
---

Some content here.
`)

	discovery, err := NewDiscovery(WithSkillDirs(tmpDir))
	require.NoError(t, err)

	discovered := discovery.DiscoverSkills(ctx)
	require.Len(t, discovered, 2)

	// Subdirectories are scanned in sorted order.
	assert.Equal(t, "another-skill", discovered[0].Name)
	assert.Equal(t, "review-skill", discovered[1].Name)
	assert.Equal(t, 3, discovered[1].Priority)
	assert.Equal(t, filepath.Join(tmpDir, "review-skill"), discovered[1].Source)
}

func TestDiscoverSkillsSkipsMalformed(t *testing.T) {
	ctx := context.Background()
	tmpDir := t.TempDir()

	writeSkillDir(t, tmpDir, "good", `---
name: good
description: Well formed
triggers:
  - good
---

Body.
`)
	writeSkillDir(t, tmpDir, "bad", "No frontmatter at all.\n")

	// A directory without SKILL.md is ignored too.
	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, "empty"), 0o755))

	discovery, err := NewDiscovery(WithSkillDirs(tmpDir))
	require.NoError(t, err)

	discovered := discovery.DiscoverSkills(ctx)
	require.Len(t, discovered, 1)
	assert.Equal(t, "good", discovered[0].Name)
}

func TestDiscoverSkillsFirstSeenWins(t *testing.T) {
	ctx := context.Background()
	dirA := t.TempDir()
	dirB := t.TempDir()

	writeSkillDir(t, dirA, "shared", `---
name: shared
description: From the first directory
triggers:
  - shared
---

First.
`)
	writeSkillDir(t, dirB, "shared", `---
name: shared
description: From the second directory
triggers:
  - shared
---

Second.
`)

	discovery, err := NewDiscovery(WithSkillDirs(dirA, dirB))
	require.NoError(t, err)

	discovered := discovery.DiscoverSkills(ctx)
	require.Len(t, discovered, 1)
	assert.Equal(t, "From the first directory", discovered[0].Description)
}

func TestDiscoverSkillsConfigOverlay(t *testing.T) {
	ctx := context.Background()
	tmpDir := t.TempDir()

	writeSkillDir(t, tmpDir, "tuned", `---
name: tuned
description: Overlay target
triggers:
  - tuned
priority: 1
---

Body.
`)
	overlay := "priority: 42\ncategory: adjusted\n"
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "tuned", "config.yaml"), []byte(overlay), 0o644))

	discovery, err := NewDiscovery(WithSkillDirs(tmpDir))
	require.NoError(t, err)

	discovered := discovery.DiscoverSkills(ctx)
	require.Len(t, discovered, 1)
	assert.Equal(t, 42, discovered[0].Priority)
	assert.Equal(t, "adjusted", discovered[0].Category)
}

func TestDiscoverSkillsMissingDir(t *testing.T) {
	discovery, err := NewDiscovery(WithSkillDirs("/nonexistent/skills"))
	require.NoError(t, err)
	assert.Empty(t, discovery.DiscoverSkills(context.Background()))
}
