// Package notify carries short user-facing failure notifications out of the
// update workflow. On the TV client these surface as toasts; the default
// implementation here writes them to the log.
package notify

import (
	log "github.com/sirupsen/logrus"
)

// Notifier shows a short notification with a title and a descriptive body.
type Notifier interface {
	Notify(title, body string)
}

// Func adapts a plain function to the Notifier interface.
type Func func(title, body string)

func (f Func) Notify(title, body string) {
	f(title, body)
}

type logNotifier struct{}

// NewLogNotifier returns a Notifier that emits notifications as warn-level
// log entries.
func NewLogNotifier() Notifier {
	return logNotifier{}
}

func (logNotifier) Notify(title, body string) {
	log.WithField("title", title).Warn(body)
}
