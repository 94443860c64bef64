// Package notify carries user-facing notices out of the store layer. Store
// operations never let a backend failure escape as a panic or a crash; they
// convert it into a notice and hand it to the configured Notifier, the way
// the UI surfaces a toast.
package notify

import (
	"sync"

	"github.com/clovermart/storefront/pkg/logger"
)

// Severity classifies a notice for presentation.
type Severity string

const (
	SeverityInfo  Severity = "info"
	SeverityError Severity = "error"
)

// Notice is one user-visible message.
type Notice struct {
	Severity Severity
	Title    string
	Message  string
}

// Notifier receives user-visible notices.
type Notifier interface {
	Notify(n Notice)
}

// LogNotifier writes notices to the structured log. It is the default sink
// when no UI is attached.
type LogNotifier struct {
	log *logger.Logger
}

var _ Notifier = (*LogNotifier)(nil)

// NewLogNotifier creates a notifier backed by log.
func NewLogNotifier(log *logger.Logger) *LogNotifier {
	if log == nil {
		log = logger.NewDefault("notify")
	}
	return &LogNotifier{log: log}
}

func (l *LogNotifier) Notify(n Notice) {
	entry := l.log.WithField("title", n.Title)
	if n.Severity == SeverityError {
		entry.Warn(n.Message)
		return
	}
	entry.Info(n.Message)
}

// Recorder collects notices for inspection. Intended for tests.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

var _ Notifier = (*Recorder)(nil)

func (r *Recorder) Notify(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

// Notices returns a copy of everything recorded so far.
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notice, len(r.notices))
	copy(out, r.notices)
	return out
}

// Reset discards recorded notices.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = nil
}
