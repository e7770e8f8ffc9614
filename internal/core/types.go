package core

import "time"

// SimplifyRequest is the POST /simplify body.
type SimplifyRequest struct {
	Text     string `json:"text"`
	Provider string `json:"provider,omitempty"`
}

// SimplifyResponse is the success body of POST /simplify.
type SimplifyResponse struct {
	Simplified       string `json:"simplified"`
	OriginalLength   int    `json:"originalLength"`
	SimplifiedLength int    `json:"simplifiedLength"`
	Provider         string `json:"provider,omitempty"`
}

// Simplification is the pipeline result before it is shaped for the wire.
type Simplification struct {
	Original   string
	Simplified string
	Provider   string
	Model      string
	FromCache  bool
	CachedAt   *time.Time
}

// Response shapes a Simplification for the HTTP contract.
func (s *Simplification) Response() SimplifyResponse {
	return SimplifyResponse{
		Simplified:       s.Simplified,
		OriginalLength:   TextLength(s.Original),
		SimplifiedLength: TextLength(s.Simplified),
		Provider:         s.Provider,
	}
}

// CachedSimplification is one stored rewrite.
type CachedSimplification struct {
	Key        string    `json:"key"`
	Provider   string    `json:"provider"`
	Model      string    `json:"model"`
	Simplified string    `json:"simplified"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}
