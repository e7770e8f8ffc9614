package core

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// MinTextLength and MaxTextLength bound the trimmed input in code points.
	MinTextLength = 10
	MaxTextLength = 10000
)

// InputErrorKind names a validation failure.
type InputErrorKind string

const (
	MissingField InputErrorKind = "missing_field"
	TooShort     InputErrorKind = "too_short"
	TooLong      InputErrorKind = "too_long"
)

const (
	MsgMissingField = `Missing or invalid "text" field`
	MsgTooShort     = "Text too short to simplify"
	MsgTooLong      = "Text too long. Please select less than 10,000 characters."
)

// InputError is a client-side validation failure.
type InputError struct {
	Kind    InputErrorKind
	Message string
}

func (e *InputError) Error() string {
	return e.Message
}

// NewMissingFieldError reports an absent or non-string text field.
func NewMissingFieldError() *InputError {
	return &InputError{Kind: MissingField, Message: MsgMissingField}
}

// TextLength counts code points.
func TextLength(s string) int {
	return utf8.RuneCountInString(s)
}

// TrimText strips leading and trailing white space, including the
// U+FEFF byte order mark.
func TrimText(s string) string {
	return strings.TrimFunc(s, isTrimmable)
}

func isTrimmable(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}

// ValidateText checks the length bounds and returns the trimmed text.
func ValidateText(text string) (string, error) {
	if text == "" {
		return "", NewMissingFieldError()
	}
	trimmed := TrimText(text)
	n := TextLength(trimmed)
	switch {
	case n < MinTextLength:
		return "", &InputError{Kind: TooShort, Message: MsgTooShort}
	case n > MaxTextLength:
		return "", &InputError{Kind: TooLong, Message: MsgTooLong}
	}
	return trimmed, nil
}
