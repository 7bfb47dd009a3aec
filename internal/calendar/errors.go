package calendar

import (
	"fmt"
)

// NetworkError is a transient fetch failure; the orchestrator retries these
// with backoff.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("calendar fetch failed (%s): %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ParseError means the source markup no longer looks like a calendar table.
// Not retried within a run; the snippet is logged for diagnosis.
type ParseError struct {
	Msg     string
	Snippet string
}

func (e *ParseError) Error() string {
	if e.Snippet == "" {
		return "calendar parse failed: " + e.Msg
	}
	return fmt.Sprintf("calendar parse failed: %s (near %q)", e.Msg, e.Snippet)
}
