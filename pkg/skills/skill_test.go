package skills

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validMeta() Metadata {
	return Metadata{
		Name:        "code-review",
		Description: "Reviews code changes",
		Triggers:    []string{"review", "Code Review"},
		Priority:    5,
	}
}

func TestNew(t *testing.T) {
	t.Run("valid skill", func(t *testing.T) {
		skill, err := New(validMeta(), "Review the diff carefully.", SourceBuiltin)
		require.NoError(t, err)
		assert.Equal(t, "code-review", skill.Name)
		assert.Equal(t, 5, skill.Priority)
		assert.Equal(t, SourceBuiltin, skill.Source)
		// Triggers are normalized to lowercase.
		assert.Equal(t, []string{"review", "code review"}, skill.Triggers)
	})

	t.Run("missing name", func(t *testing.T) {
		meta := validMeta()
		meta.Name = ""
		_, err := New(meta, "body", SourceBuiltin)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "name", verr.Field)
	})

	t.Run("missing description", func(t *testing.T) {
		meta := validMeta()
		meta.Description = ""
		_, err := New(meta, "body", SourceBuiltin)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "description", verr.Field)
	})

	t.Run("missing instructions", func(t *testing.T) {
		_, err := New(validMeta(), "", SourceBuiltin)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "instructions", verr.Field)
	})

	t.Run("no triggers", func(t *testing.T) {
		meta := validMeta()
		meta.Triggers = nil
		_, err := New(meta, "body", SourceBuiltin)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "triggers", verr.Field)
	})

	t.Run("whitespace-only triggers are discarded", func(t *testing.T) {
		meta := validMeta()
		meta.Triggers = []string{"  ", "\t"}
		_, err := New(meta, "body", SourceBuiltin)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
	})
}

func TestMatchedTriggers(t *testing.T) {
	meta := Metadata{
		Name:        "test-skill",
		Description: "A skill",
		Triggers:    []string{"unit test", "Refactor", "pytest*fixture"},
	}
	skill, err := New(meta, "body", SourceBuiltin)
	require.NoError(t, err)

	t.Run("substring match", func(t *testing.T) {
		matched := skill.MatchedTriggers(NormalizeQuery("please write a unit test for this"))
		assert.Equal(t, []string{"unit test"}, matched)
	})

	t.Run("case insensitive", func(t *testing.T) {
		matched := skill.MatchedTriggers(NormalizeQuery("REFACTOR this module"))
		assert.Equal(t, []string{"refactor"}, matched)
	})

	t.Run("matches inside larger words", func(t *testing.T) {
		// Substring scan, not word matching: "refactor" occurs in
		// "refactoring".
		matched := skill.MatchedTriggers(NormalizeQuery("help with refactoring"))
		assert.Equal(t, []string{"refactor"}, matched)
	})

	t.Run("wildcard trigger", func(t *testing.T) {
		matched := skill.MatchedTriggers(NormalizeQuery("set up a pytest database fixture"))
		assert.Contains(t, matched, "pytest*fixture")
	})

	t.Run("no match", func(t *testing.T) {
		assert.Empty(t, skill.MatchedTriggers(NormalizeQuery("summarize this article")))
	})

	t.Run("empty query never matches", func(t *testing.T) {
		assert.Empty(t, skill.MatchedTriggers(""))
	})
}
