package ailink

import "strings"

// ProviderID names one of the supported LLM backends.
type ProviderID string

const (
	ProviderAnthropic ProviderID = "anthropic"
	ProviderGemini    ProviderID = "gemini"
)

// Providers lists the closed provider set in a stable order.
func Providers() []ProviderID {
	return []ProviderID{ProviderAnthropic, ProviderGemini}
}

// ParseProvider matches s case-insensitively against the provider set.
func ParseProvider(s string) (ProviderID, bool) {
	switch ProviderID(strings.ToLower(strings.TrimSpace(s))) {
	case ProviderAnthropic:
		return ProviderAnthropic, true
	case ProviderGemini:
		return ProviderGemini, true
	default:
		return "", false
	}
}

func (p ProviderID) String() string {
	return string(p)
}
