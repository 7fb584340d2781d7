package timers

//go:generate mockgen -source=$GOFILE -destination=observer_mocks_test.go -package=timers_test

import "context"

// AutoSaver persists a workout for a timer stopped away from its owning form.
type AutoSaver interface {
	AutoSave(ctx context.Context, timer ActiveTimer) error
}

// TimerStoppedObserver learns about timers stopped from the dashboard.
// The registry holds at most one, registering a new one replaces the old.
type TimerStoppedObserver interface {
	TimerStopped(timer ActiveTimer)
}

type TimerStoppedFunc func(timer ActiveTimer)

func (f TimerStoppedFunc) TimerStopped(timer ActiveTimer) {
	f(timer)
}
