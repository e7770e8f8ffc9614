package prompt

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsIncludesSimplify(t *testing.T) {
	reg, err := NewRegistry("")
	require.NoError(t, err)

	p, err := reg.Get(SlugSimplify)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(p.Config.SystemTemplate, "You are a plain language editor for Unpack."))
	assert.Contains(t, p.Config.SystemTemplate, "Preserve paragraph breaks from the original")
	assert.Equal(t, []string{"text"}, p.Config.Variables)
}

func TestRenderSimplifyPrompt(t *testing.T) {
	reg, err := NewRegistry("")
	require.NoError(t, err)
	p, err := reg.Get(SlugSimplify)
	require.NoError(t, err)

	rendered, err := p.Render(map[string]string{"text": "The cat sat {{text}}."})
	require.NoError(t, err)
	assert.Equal(t, "Simplify this text:\n\nThe cat sat {{text}}.", rendered.User)
	assert.Equal(t, p.Config.SystemTemplate, rendered.System)

	_, err = p.Render(nil)
	require.Error(t, err)
}

func TestLoadRejectsIncompletePrompts(t *testing.T) {
	cases := map[string]string{
		"empty":           "",
		"no slug":         "---\nuser_template: hi\n---\nbody",
		"no user":         "---\nslug: x\n---\nbody",
		"no system":       "---\nslug: x\nuser_template: hi\n---\n",
		"unterminated":    "---\nslug: x\n",
		"unused var":      "---\nslug: x\nvariables: [text]\nuser_template: hi\n---\nbody",
		"bad frontmatter": "---\nslug: [\n---\nbody",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(name, []byte(doc))
			require.Error(t, err)
		})
	}
}

func TestLoadPlainYAML(t *testing.T) {
	p, err := Load("plain.yaml", []byte("slug: plain\nsystem_template: sys\nuser_template: \"{{text}}\"\nvariables: [text]\n"))
	require.NoError(t, err)
	assert.Equal(t, "sys", p.Config.SystemTemplate)
}

func TestPromptsDirOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	doc := "---\nslug: simplify\nvariables: [text]\nuser_template: \"Rewrite: {{text}}\"\n---\nBe brief.\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "simplify.md"), []byte(doc), 0o600))

	reg, err := NewRegistry(dir)
	require.NoError(t, err)
	p, err := reg.Get(SlugSimplify)
	require.NoError(t, err)
	assert.Equal(t, "Be brief.", p.Config.SystemTemplate)
	assert.Len(t, reg.List(), 1)
}

func TestNewSetRejectsDuplicatesWithinLayer(t *testing.T) {
	a := &Prompt{Config: Config{Slug: "a"}, Source: "one"}
	b := &Prompt{Config: Config{Slug: "a"}, Source: "two"}
	_, err := NewSet([]*Prompt{a, b})
	require.Error(t, err)

	set, err := NewSet([]*Prompt{a}, []*Prompt{b})
	require.NoError(t, err)
	got, err := set.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "two", got.Source)
}
