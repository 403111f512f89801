package model

import "time"

// SessionSummary describes one browsing session of product events.
type SessionSummary struct {
	Start          time.Time
	End            time.Time
	SessionID      string
	Platforms      []string // first-seen order
	Events         int
	ProductsViewed int // distinct product URLs, titles when the URL is blank
	Total          float64
}

// Duration is the time between the first and last event of the session.
func (s SessionSummary) Duration() time.Duration {
	return s.End.Sub(s.Start)
}
