package sync

import (
	"context"
	"io"
	stdsync "sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Heyniki07/Wild-Watch-YOLO-based-object-detection/internal/alert"
)

// testLogger returns a logger that discards output.
func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// funcFetcher adapts a function to the Fetcher interface.
type funcFetcher struct {
	fn func(ctx context.Context) ([]alert.RawAlert, error)
}

func (f *funcFetcher) FetchAlerts(ctx context.Context) ([]alert.RawAlert, error) {
	return f.fn(ctx)
}

// recordingNotifier records every notified view model.
type recordingNotifier struct {
	mu       stdsync.Mutex
	notified []alert.ViewModel
	err      error
}

func (n *recordingNotifier) Notify(vm alert.ViewModel) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notified = append(n.notified, vm)
	return n.err
}

func (n *recordingNotifier) all() []alert.ViewModel {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]alert.ViewModel, len(n.notified))
	copy(out, n.notified)
	return out
}

// recordingPresenter records the last presented list.
type recordingPresenter struct {
	mu   stdsync.Mutex
	last []alert.ViewModel
}

func (p *recordingPresenter) Present(vms []alert.ViewModel) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.last = vms
}

func (p *recordingPresenter) lastPresented() []alert.ViewModel {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

// manualTimer is a Timer driven by the test instead of a clock.
type manualTimer struct {
	tick    func()
	stopped bool
}

func (t *manualTimer) Stop() { t.stopped = true }

func (t *manualTimer) fire() { t.tick() }

// manualTimerFactory hands out manualTimers and remembers them in order.
type manualTimerFactory struct {
	mu     stdsync.Mutex
	timers []*manualTimer
}

func (f *manualTimerFactory) new(_ time.Duration, tick func()) Timer {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &manualTimer{tick: tick}
	f.timers = append(f.timers, t)
	return t
}

func (f *manualTimerFactory) latest() *manualTimer {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.timers) == 0 {
		return nil
	}
	return f.timers[len(f.timers)-1]
}
