package core

import "time"

// RateRecord is the fixed-window counter for one client key.
type RateRecord struct {
	Count   int
	ResetAt time.Time
}

// Expired reports whether the window has closed at now.
func (r RateRecord) Expired(now time.Time) bool {
	return now.After(r.ResetAt)
}
