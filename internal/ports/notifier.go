package ports

import "context"

// Severity classifies a notification.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeveritySuccess Severity = "success"
)

// Notifier delivers alerts to the user. The engine only emits structured
// (title, body, severity) events; the implementation owns formatting and
// destination (console, email, Slack, ...).
type Notifier interface {
	Send(ctx context.Context, title, body string, level Severity) error
}
