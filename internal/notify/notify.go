// Package notify implements the system-notification boundary for the
// terminal client. Notifications are best effort: a disabled channel is
// skipped silently and failures never block the sync engine.
package notify

import (
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/Heyniki07/Wild-Watch-YOLO-based-object-detection/internal/alert"
)

// TerminalNotifier writes alert banners to a terminal stream.
type TerminalNotifier struct {
	out     io.Writer
	log     *logrus.Logger
	enabled bool
}

// New creates a terminal notifier. When enabled is false (the user's push
// preference is off), Notify becomes a silent no-op.
func New(out io.Writer, enabled bool, log *logrus.Logger) *TerminalNotifier {
	return &TerminalNotifier{
		out:     out,
		log:     log,
		enabled: enabled,
	}
}

// Notify prints a single alert banner. Returns an error only when the
// output stream rejects the write; callers treat that as non-fatal.
func (n *TerminalNotifier) Notify(vm alert.ViewModel) error {
	if !n.enabled {
		return nil
	}

	line := fmt.Sprintf("[%s] %s detected %.1fkm away (%s)",
		strings.ToUpper(string(vm.Severity)),
		strings.ToUpper(vm.Species),
		vm.DistanceKM,
		vm.AgeLabel,
	)
	if vm.Confidence != nil {
		line += fmt.Sprintf(", confidence %.0f%%", *vm.Confidence)
	}

	if _, err := fmt.Fprintln(n.out, "WILDLIFE ALERT: "+line); err != nil {
		return errors.Wrap(err, "failed to write notification")
	}

	n.log.WithFields(logrus.Fields{
		"alertId":  vm.ID,
		"species":  vm.Species,
		"severity": vm.Severity,
	}).Info("alert notification delivered")
	return nil
}
