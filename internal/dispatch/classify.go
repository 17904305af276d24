package dispatch

import "strings"

// Class is the outcome of error classification: either worth retrying with
// the same call, or a hard stop.
type Class int

const (
	Retryable Class = iota
	Fatal
)

// Rate-limit signals recognised in provider error strings. The backend does
// not expose a structured error code, so classification is by substring; the
// predicate lives here once so call sites cannot drift.
var rateLimitSignals = []string{
	"429",
	"rate limit",
	"resource_exhausted",
	"quota",
}

// Classify reports whether an error looks like rate limiting (Retryable) or
// anything else (Fatal). A nil error is never passed by callers.
func Classify(err error) Class {
	if err == nil {
		return Fatal
	}
	msg := strings.ToLower(err.Error())
	for _, signal := range rateLimitSignals {
		if strings.Contains(msg, signal) {
			return Retryable
		}
	}
	return Fatal
}

// IsRateLimited is a convenience wrapper over Classify.
func IsRateLimited(err error) bool {
	return Classify(err) == Retryable
}
