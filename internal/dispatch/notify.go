package dispatch

import "github.com/rs/zerolog"

// Severity mirrors the toast levels the console UI understands.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Notifier is the one-way progress channel out of the core. Implementations
// must not block; there is no acknowledgment path.
type Notifier interface {
	Notify(severity Severity, message string)
}

// NopNotifier drops all notices.
type NopNotifier struct{}

func (NopNotifier) Notify(Severity, string) {}

// LogNotifier projects notices into a zerolog logger, for the worker and CLI
// surfaces where no UI is attached.
type LogNotifier struct {
	Logger zerolog.Logger
}

func (n LogNotifier) Notify(severity Severity, message string) {
	switch severity {
	case SeverityError:
		n.Logger.Error().Msg(message)
	default:
		n.Logger.Info().Str("severity", string(severity)).Msg(message)
	}
}
