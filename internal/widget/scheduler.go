package widget

import "time"

// Scheduler defers callbacks tied to the widget instance's lifetime.
// Every scheduled callback is cancellable so teardown can
// deterministically prevent late firing.
type Scheduler interface {
	After(d time.Duration, fn func()) (cancel func())
}

// TimerScheduler is the production Scheduler, backed by time.AfterFunc.
type TimerScheduler struct{}

func (TimerScheduler) After(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}
