package sync

import (
	stdsync "sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Heyniki07/Wild-Watch-YOLO-based-object-detection/internal/alert"
)

// Notifier is the system-notification boundary. Implementations are
// best-effort: a failed or unavailable channel must not block state
// updates.
type Notifier interface {
	Notify(vm alert.ViewModel) error
}

// Presenter consumes the full, filtered view-model list after each
// refresh. The CLI's renderer implements it.
type Presenter interface {
	Present(vms []alert.ViewModel)
}

// Dispatcher receives each refreshed alert set, works out which alerts
// are newly surfaced (IDs absent from the previous refresh), pushes those
// to the notification channel, and hands the projected list to the
// presentation layer.
type Dispatcher struct {
	notifier  Notifier
	presenter Presenter
	log       *logrus.Logger
	now       func() time.Time

	mu       stdsync.Mutex
	seen     map[int64]struct{}
	primed   bool
	criteria alert.FilterCriteria
}

// NewDispatcher creates a dispatcher with an unfiltered view.
func NewDispatcher(notifier Notifier, presenter Presenter, log *logrus.Logger) *Dispatcher {
	return &Dispatcher{
		notifier:  notifier,
		presenter: presenter,
		log:       log,
		now:       time.Now,
		seen:      map[int64]struct{}{},
		criteria:  alert.FilterCriteria{TimeRange: alert.RangeAll},
	}
}

// SetCriteria updates the filter criteria applied to the presented list.
// Criteria persist across refreshes until changed again. Notifications are
// unaffected: a new alert is worth surfacing regardless of the view filter.
func (d *Dispatcher) SetCriteria(criteria alert.FilterCriteria) {
	d.mu.Lock()
	d.criteria = criteria
	d.mu.Unlock()
}

// Reset forgets the seen-ID set, so the next refresh is treated as the
// first of a session. Called on session teardown.
func (d *Dispatcher) Reset() {
	d.mu.Lock()
	d.seen = map[int64]struct{}{}
	d.primed = false
	d.mu.Unlock()
}

// HandleUpdate implements UpdateHandler. The first update of a session
// only primes the seen set; notifying about every historical alert on
// login would be noise.
func (d *Dispatcher) HandleUpdate(alerts []alert.RawAlert) {
	now := d.now()

	d.mu.Lock()
	criteria := d.criteria
	wasPrimed := d.primed
	var fresh []alert.RawAlert
	for _, a := range alerts {
		if _, ok := d.seen[a.ID]; !ok {
			d.seen[a.ID] = struct{}{}
			fresh = append(fresh, a)
		}
	}
	d.primed = true
	d.mu.Unlock()

	if wasPrimed && len(fresh) > 0 {
		for _, vm := range alert.Project(fresh, alert.FilterCriteria{TimeRange: alert.RangeAll}, now) {
			if err := d.notifier.Notify(vm); err != nil {
				// Non-fatal: permission denied or channel absent.
				d.log.WithError(err).WithField("alertId", vm.ID).Debug("notification skipped")
			}
		}
	}

	if d.presenter != nil {
		d.presenter.Present(alert.Project(alerts, criteria, now))
	}
}
