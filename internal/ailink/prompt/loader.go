package prompt

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load parses a prompt definition.
//
// The document is either plain YAML or Markdown with YAML frontmatter. When
// system_template is absent, the Markdown body becomes the system template.
func Load(source string, data []byte) (*Prompt, error) {
	config, body, err := parseFrontmatter(data)
	if err != nil {
		return nil, fmt.Errorf("parse prompt %s: %w", source, err)
	}

	if strings.TrimSpace(config.SystemTemplate) == "" {
		config.SystemTemplate = strings.TrimSpace(body)
	}
	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("validate prompt %s: %w", source, err)
	}

	return &Prompt{Config: config, Source: source}, nil
}

// LoadFromDir reads every *.md prompt in dir.
func LoadFromDir(dir string) ([]*Prompt, error) {
	entries, err := filepath.Glob(filepath.Join(dir, "*.md"))
	if err != nil {
		return nil, fmt.Errorf("scan prompts: %w", err)
	}
	results := make([]*Prompt, 0, len(entries))
	for _, path := range entries {
		data, err := os.ReadFile(path) // #nosec G304 -- prompts_dir is operator configured
		if err != nil {
			return nil, fmt.Errorf("read prompt %s: %w", path, err)
		}
		p, err := Load(path, data)
		if err != nil {
			return nil, err
		}
		results = append(results, p)
	}
	return results, nil
}

func parseFrontmatter(data []byte) (Config, string, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Config{}, "", fmt.Errorf("empty prompt")
	}

	scanner := bufio.NewScanner(bytes.NewReader(trimmed))
	var (
		front      []string
		body       []string
		headerSeen bool
		inFront    bool
	)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case !headerSeen && strings.TrimSpace(line) == "---":
			headerSeen, inFront = true, true
		case inFront && strings.TrimSpace(line) == "---":
			inFront = false
		case inFront:
			front = append(front, line)
		default:
			body = append(body, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return Config{}, "", err
	}
	if inFront {
		return Config{}, "", fmt.Errorf("unterminated frontmatter")
	}

	var cfg Config
	source := trimmed
	if headerSeen {
		source = []byte(strings.Join(front, "\n"))
	}
	if err := yaml.Unmarshal(source, &cfg); err != nil {
		return Config{}, "", fmt.Errorf("invalid frontmatter: %w", err)
	}
	if !headerSeen {
		return cfg, "", nil
	}
	return cfg, strings.Join(body, "\n"), nil
}

func validateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.Slug) == "" {
		return fmt.Errorf("slug is required")
	}
	if strings.TrimSpace(cfg.SystemTemplate) == "" {
		return fmt.Errorf("system_template is required")
	}
	if strings.TrimSpace(cfg.UserTemplate) == "" {
		return fmt.Errorf("user_template is required")
	}
	for _, name := range cfg.Variables {
		placeholder := "{{" + name + "}}"
		if !strings.Contains(cfg.SystemTemplate, placeholder) && !strings.Contains(cfg.UserTemplate, placeholder) {
			return fmt.Errorf("variable %q not referenced by any template", name)
		}
	}
	return nil
}
