package notify

import (
	"context"

	"github.com/pratik-mahalle/vigil/internal/domain/alert"
	"github.com/pratik-mahalle/vigil/internal/pkg/logger"
)

// Poster renders a desktop toast popup. The concrete renderer is
// platform-specific and injected at wiring time; the default logs.
type Poster func(title, body string) error

// ToastNotifier shows desktop popups for alerts.
type ToastNotifier struct {
	post   Poster
	logger *logger.Logger
}

// NewToastNotifier creates a toast notifier. A nil poster falls back to
// logging, which keeps headless hosts working.
func NewToastNotifier(post Poster, log *logger.Logger) *ToastNotifier {
	n := &ToastNotifier{post: post, logger: log}
	if n.post == nil {
		n.post = func(title, body string) error {
			log.Infof("Toast: %s - %s", title, body)
			return nil
		}
	}
	return n
}

// Name implements dispatch.Notifier.
func (n *ToastNotifier) Name() string { return "toast" }

// Notify implements dispatch.Notifier.
func (n *ToastNotifier) Notify(ctx context.Context, a *alert.Alert) error {
	return n.post("Vigil: "+string(a.Severity)+" alert", a.Message)
}
