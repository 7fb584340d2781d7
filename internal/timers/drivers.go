package timers

import (
	"context"
	"slices"

	"github.com/2beens/gymtimers/internal/telemetry/metrics"
)

// driver is the recurring tick of one timer. A tick only acts while its
// driver is still the one registered for the timer id, so a tick that raced
// with a disarm is dropped.
type driver struct {
	cancel func()
}

func (r *Registry) armActiveLocked(id string) {
	if _, ok := r.activeDrivers[id]; ok {
		return
	}
	d := &driver{}
	d.cancel = r.scheduler.Every(TickInterval, func() { r.tickActive(id, d) })
	r.activeDrivers[id] = d
}

func (r *Registry) armRestLocked(id string) {
	if _, ok := r.restDrivers[id]; ok {
		return
	}
	d := &driver{}
	d.cancel = r.scheduler.Every(TickInterval, func() { r.tickRest(id, d) })
	r.restDrivers[id] = d
}

// disarm is a no-op for an unknown or already disarmed id.
func (r *Registry) disarmActiveLocked(id string) {
	if d, ok := r.activeDrivers[id]; ok {
		d.cancel()
		delete(r.activeDrivers, id)
	}
}

func (r *Registry) disarmRestLocked(id string) {
	if d, ok := r.restDrivers[id]; ok {
		d.cancel()
		delete(r.restDrivers, id)
	}
}

func (r *Registry) disarmAllLocked() {
	for id := range r.activeDrivers {
		r.disarmActiveLocked(id)
	}
	for id := range r.restDrivers {
		r.disarmRestLocked(id)
	}
}

func (r *Registry) tickActive(id string, d *driver) {
	ctx, cancel := context.WithTimeout(context.Background(), tickPersistTimeout)
	defer cancel()

	r.mu.Lock()
	if r.activeDrivers[id] != d {
		r.mu.Unlock()
		return
	}
	idx := r.activeIndexLocked(id)
	if idx < 0 || !r.active[idx].IsRunning {
		r.disarmActiveLocked(id)
		r.mu.Unlock()
		return
	}

	r.active[idx].Elapsed = elapsedSince(r.clock.Now(), r.active[idx].StartTime)
	r.persistLocked(ctx)
	r.mu.Unlock()

	r.changed()
}

func (r *Registry) tickRest(id string, d *driver) {
	ctx, cancel := context.WithTimeout(context.Background(), tickPersistTimeout)
	defer cancel()

	r.mu.Lock()
	if r.restDrivers[id] != d {
		r.mu.Unlock()
		return
	}
	idx := r.restIndexLocked(id)
	if idx < 0 {
		r.disarmRestLocked(id)
		r.mu.Unlock()
		return
	}

	timeLeft := restTimeLeft(r.clock.Now(), r.rest[idx].StartTime)
	if timeLeft > 0 {
		r.rest[idx].TimeLeft = timeLeft
		r.persistLocked(ctx)
		r.mu.Unlock()
		r.changed()
		return
	}

	finished := r.rest[idx]
	finished.TimeLeft = 0
	r.disarmRestLocked(id)
	r.rest = slices.Delete(r.rest, idx, idx+1)
	r.persistLocked(ctx)
	r.mu.Unlock()

	r.metricsManager.TimerEvent(metrics.TimerEventRestFinished)
	r.changed()
	r.bus.Publish(Event{Type: EventRestFinished, RestTimer: &finished})
}
