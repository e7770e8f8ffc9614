package prompt

import (
	"fmt"
	"strings"
)

// SlugSimplify is the prompt every provider uses for plain-language rewrites.
const SlugSimplify = "simplify"

// Config describes a prompt definition loaded from YAML frontmatter.
type Config struct {
	Slug           string   `yaml:"slug"`
	Name           string   `yaml:"name,omitempty"`
	Description    string   `yaml:"description,omitempty"`
	Version        string   `yaml:"version,omitempty"`
	Variables      []string `yaml:"variables,omitempty"`
	SystemTemplate string   `yaml:"system_template,omitempty"`
	UserTemplate   string   `yaml:"user_template,omitempty"`
}

// Prompt wraps a parsed prompt configuration with its source.
type Prompt struct {
	Config Config
	Source string
}

// Rendered is a prompt with its variables substituted.
type Rendered struct {
	System string
	User   string
}

// Render substitutes {{name}} placeholders in both templates.
//
// Every declared variable must be supplied. Values are inserted verbatim and
// never re-scanned for placeholders.
func (p *Prompt) Render(vars map[string]string) (Rendered, error) {
	if p == nil {
		return Rendered{}, fmt.Errorf("prompt is nil")
	}
	for _, name := range p.Config.Variables {
		if _, ok := vars[name]; !ok {
			return Rendered{}, fmt.Errorf("prompt %s: missing variable %q", p.Config.Slug, name)
		}
	}
	return Rendered{
		System: applyVars(p.Config.SystemTemplate, vars),
		User:   applyVars(p.Config.UserTemplate, vars),
	}, nil
}

func applyVars(template string, vars map[string]string) string {
	if template == "" || len(vars) == 0 {
		return template
	}
	pairs := make([]string, 0, len(vars)*2)
	for key, value := range vars {
		pairs = append(pairs, "{{"+key+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
