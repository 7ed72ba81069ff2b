package skills

import (
	"bytes"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/parser"
)

// parseFrontmatter splits a SKILL.md document into its YAML frontmatter
// fields and the markdown body.
func parseFrontmatter(content []byte) (map[string]interface{}, string, error) {
	md := goldmark.New(
		goldmark.WithExtensions(meta.Meta),
	)

	var buf bytes.Buffer
	pctx := parser.NewContext()

	if err := md.Convert(content, &buf, parser.WithContext(pctx)); err != nil {
		return nil, "", errors.Wrap(err, "failed to parse markdown")
	}

	fields := meta.Get(pctx)
	if fields == nil {
		return nil, "", errors.New("missing frontmatter")
	}

	return fields, extractBodyContent(string(content)), nil
}

// decodeMetadata decodes a raw field map into a typed Metadata. Fields of
// the wrong shape (e.g. a scalar where a list is expected) surface as a
// decode error rather than being coerced.
func decodeMetadata(fields map[string]interface{}) (Metadata, error) {
	var m Metadata
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  &m,
		TagName: "mapstructure",
	})
	if err != nil {
		return Metadata{}, errors.Wrap(err, "failed to create metadata decoder")
	}
	if err := dec.Decode(fields); err != nil {
		return Metadata{}, err
	}
	return m, nil
}

// ParseSkillFile parses a full SKILL.md document (frontmatter + body) into a
// Skill. The markdown body becomes the skill's instructions.
func ParseSkillFile(content []byte, source string) (*Skill, error) {
	fields, body, err := parseFrontmatter(content)
	if err != nil {
		return nil, err
	}

	m, err := decodeMetadata(fields)
	if err != nil {
		return nil, &ValidationError{Field: "frontmatter", Reason: err.Error()}
	}

	return New(m, body, source)
}

// extractBodyContent removes the YAML frontmatter block and returns the body.
func extractBodyContent(content string) string {
	if !strings.HasPrefix(content, "---") {
		return strings.TrimSpace(content)
	}

	lines := strings.Split(content, "\n")
	frontmatterEnd := -1

	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			frontmatterEnd = i
			break
		}
	}

	if frontmatterEnd == -1 {
		return strings.TrimSpace(content)
	}

	return strings.TrimSpace(strings.Join(lines[frontmatterEnd+1:], "\n"))
}
