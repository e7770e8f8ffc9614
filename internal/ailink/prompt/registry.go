package prompt

import (
	"fmt"
	"sort"
	"strings"
)

// Registry resolves prompts by slug.
type Registry interface {
	Get(slug string) (*Prompt, error)
	List() []*Prompt
}

// Set is an in-memory Registry. Later layers replace earlier ones by slug,
// which lets a prompts directory override the embedded defaults.
type Set struct {
	prompts map[string]*Prompt
}

// NewSet builds a Set from one or more prompt layers.
func NewSet(layers ...[]*Prompt) (*Set, error) {
	set := &Set{prompts: make(map[string]*Prompt)}
	for _, layer := range layers {
		seen := make(map[string]struct{}, len(layer))
		for _, p := range layer {
			if p == nil {
				continue
			}
			slug := strings.TrimSpace(p.Config.Slug)
			if slug == "" {
				return nil, fmt.Errorf("prompt %s missing slug", p.Source)
			}
			if _, dup := seen[slug]; dup {
				return nil, fmt.Errorf("duplicate prompt slug %q in %s", slug, p.Source)
			}
			seen[slug] = struct{}{}
			set.prompts[slug] = p
		}
	}
	return set, nil
}

// Get returns the prompt for slug.
func (s *Set) Get(slug string) (*Prompt, error) {
	if s == nil {
		return nil, fmt.Errorf("prompt registry not configured")
	}
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, fmt.Errorf("prompt slug is required")
	}
	p, ok := s.prompts[slug]
	if !ok {
		return nil, fmt.Errorf("prompt %q not found", slug)
	}
	return p, nil
}

// List returns prompts ordered by slug.
func (s *Set) List() []*Prompt {
	if s == nil {
		return nil
	}
	slugs := make([]string, 0, len(s.prompts))
	for slug := range s.prompts {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	out := make([]*Prompt, 0, len(slugs))
	for _, slug := range slugs {
		out = append(out, s.prompts[slug])
	}
	return out
}
