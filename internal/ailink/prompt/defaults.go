package prompt

import (
	"embed"
	"fmt"
	"strings"
)

//go:embed prompts/*.md
var embedded embed.FS

// LoadDefaults parses the prompts compiled into the binary.
func LoadDefaults() ([]*Prompt, error) {
	entries, err := embedded.ReadDir("prompts")
	if err != nil {
		return nil, fmt.Errorf("read embedded prompts: %w", err)
	}
	out := make([]*Prompt, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		data, err := embedded.ReadFile("prompts/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read embedded prompt %s: %w", entry.Name(), err)
		}
		p, err := Load("embedded:"+entry.Name(), data)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// NewRegistry returns the embedded prompts, overridden by any prompts found in
// dir when dir is non-empty.
func NewRegistry(dir string) (*Set, error) {
	defaults, err := LoadDefaults()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(dir) == "" {
		return NewSet(defaults)
	}
	overrides, err := LoadFromDir(dir)
	if err != nil {
		return nil, err
	}
	return NewSet(defaults, overrides)
}
