package ailink

import (
	"context"
	"errors"

	"github.com/unpackhq/unpack/internal/ailink/driver"
)

// FailureKind classifies a dispatch error for the HTTP layer.
type FailureKind int

const (
	// Failure covers network errors, non-2xx answers, decode errors and
	// missing credentials.
	Failure FailureKind = iota
	// Busy means the provider answered 429.
	Busy
	// Timeout means the dispatch deadline expired.
	Timeout
)

func (k FailureKind) String() string {
	switch k {
	case Busy:
		return "busy"
	case Timeout:
		return "timeout"
	default:
		return "failure"
	}
}

// ClassifyError maps a dispatch error onto a FailureKind.
func ClassifyError(err error) FailureKind {
	if err == nil {
		return Failure
	}
	if driver.IsRateLimited(err) {
		return Busy
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Timeout
	}
	return Failure
}
