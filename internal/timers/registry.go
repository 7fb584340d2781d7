// Package timers keeps the active exercise timers, the rest countdowns and the
// daily total in one registry, drives them once per second, persists them and
// tells subscribers about every change.
package timers

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/2beens/gymtimers/internal/kvstore"
	"github.com/2beens/gymtimers/internal/telemetry/metrics"
	"github.com/2beens/gymtimers/internal/telemetry/tracing"
	"github.com/2beens/gymtimers/pkg"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const (
	DefaultAutoSaveTimeout = 30 * time.Second
	tickPersistTimeout     = 2 * time.Second
)

type RegistryParams struct {
	Persistence     StateStore
	Clock           Clock
	Scheduler       Scheduler
	Bus             *Bus
	MetricsManager  *metrics.Manager
	NewID           func(now time.Time) string
	AutoSaveTimeout time.Duration
}

// Registry is the single source of truth for timer state. All mutations run
// under one mutex, including the persistence write. Subscribers are notified
// after the mutex is released.
//
// At most one running ActiveTimer is a caller precondition, the registry itself
// accepts any number of them.
type Registry struct {
	mu              sync.Mutex
	active          []ActiveTimer
	rest            []RestTimer
	totalActiveTime int
	totalDay        string
	activeDrivers   map[string]*driver
	restDrivers     map[string]*driver
	restored        bool

	persistence     StateStore
	clock           Clock
	scheduler       Scheduler
	bus             *Bus
	metricsManager  *metrics.Manager
	newID           func(now time.Time) string
	autoSaveTimeout time.Duration

	// single-consumer slots, guarded apart from mu so callbacks never run under it
	slotsMu   sync.RWMutex
	autoSaver AutoSaver
	observer  TimerStoppedObserver
	closed    bool
	autoSaves sync.WaitGroup
}

func NewRegistry(params RegistryParams) *Registry {
	r := &Registry{
		active:          []ActiveTimer{},
		rest:            []RestTimer{},
		activeDrivers:   make(map[string]*driver),
		restDrivers:     make(map[string]*driver),
		persistence:     params.Persistence,
		clock:           params.Clock,
		scheduler:       params.Scheduler,
		bus:             params.Bus,
		metricsManager:  params.MetricsManager,
		newID:           params.NewID,
		autoSaveTimeout: params.AutoSaveTimeout,
	}
	if r.clock == nil {
		r.clock = SystemClock{}
	}
	if r.scheduler == nil {
		r.scheduler = TickerScheduler{}
	}
	if r.bus == nil {
		r.bus = NewBus()
	}
	if r.persistence == nil {
		log.Warnln("timers: no persistence given, state will not survive a restart")
		r.persistence = NewPersistence(kvstore.NewMemory(0), r.clock)
	}
	if r.newID == nil {
		r.newID = newTimerID
	}
	if r.autoSaveTimeout <= 0 {
		r.autoSaveTimeout = DefaultAutoSaveTimeout
	}
	r.totalDay = r.clock.Now().Format(dayStampLayout)
	return r
}

var timerIDSeq atomic.Uint64

// newTimerID returns "<epoch millis>-<random suffix>". Collisions are not checked.
func newTimerID(now time.Time) string {
	suffix, err := pkg.GenerateRandomString(9)
	if err != nil {
		log.Warnf("timers: random id suffix: %s", err)
		suffix = strconv.FormatUint(timerIDSeq.Add(1), 36)
	}
	return fmt.Sprintf("%d-%s", now.UnixMilli(), suffix)
}

// Restore loads the persisted state and re-arms the drivers of running active
// timers and of all rest timers. Only the first call has an effect, and it
// must happen before the registry is used.
func (r *Registry) Restore(ctx context.Context) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "timers.registry.restore")
	defer span.End()

	snapshot, err := r.persistence.Load(ctx)
	if err != nil {
		r.metricsManager.PersistenceError()
		log.Warnf("timers: restore skipped some persisted keys: %s", err)
	}

	r.mu.Lock()
	if r.restored {
		r.mu.Unlock()
		log.Warnln("timers: registry already restored")
		return
	}
	r.restored = true

	now := r.clock.Now()
	r.active = snapshot.ActiveTimers
	r.rest = snapshot.RestTimers
	r.totalActiveTime = snapshot.TotalActiveTime
	r.totalDay = now.Format(dayStampLayout)

	for i := range r.active {
		t := &r.active[i]
		if t.ID == "" {
			t.ID = r.newID(now)
		}
		if t.IsRunning {
			// anchored to StartTime, the persisted elapsed may be stale
			t.Elapsed = elapsedSince(now, t.StartTime)
			r.armActiveLocked(t.ID)
		}
	}
	for i := range r.rest {
		t := &r.rest[i]
		if t.ID == "" {
			t.ID = r.newID(now)
		}
		t.TimeLeft = restTimeLeft(now, t.StartTime)
		r.armRestLocked(t.ID)
	}
	r.metricsManager.TimersState(len(r.active), len(r.rest), r.totalActiveTime)
	activeCount, restCount, total := len(r.active), len(r.rest), r.totalActiveTime
	r.mu.Unlock()

	span.SetAttributes(
		attribute.Int("timers.active", activeCount),
		attribute.Int("timers.rest", restCount),
	)
	log.Infof("timers: restored %d active, %d rest timers, daily total %ds", activeCount, restCount, total)
	r.changed()
}

// Close disarms every driver and waits for in-flight auto-saves.
func (r *Registry) Close() {
	r.mu.Lock()
	r.disarmAllLocked()
	r.mu.Unlock()

	r.slotsMu.Lock()
	r.closed = true
	r.slotsMu.Unlock()

	r.autoSaves.Wait()
}

func (r *Registry) Subscribe(callback func(Event)) func() {
	unsubscribe := r.bus.Subscribe(callback)
	r.refreshSubscribersGauge()
	return func() {
		unsubscribe()
		r.refreshSubscribersGauge()
	}
}

func (r *Registry) refreshSubscribersGauge() {
	if r.metricsManager != nil {
		r.metricsManager.GaugeSubscribers.Set(float64(r.bus.Len()))
	}
}

// Notify publishes a one-shot user notification.
func (r *Registry) Notify(n Notification) {
	r.bus.Publish(Event{Type: EventNotification, Notification: &n})
}

// Publish sends e to every subscriber.
func (r *Registry) Publish(e Event) {
	r.bus.Publish(e)
}

func (r *Registry) SetAutoSaver(saver AutoSaver) {
	r.slotsMu.Lock()
	defer r.slotsMu.Unlock()
	r.autoSaver = saver
}

// SetTimerStoppedObserver registers the one observer of dashboard stops,
// silently replacing a previous one.
func (r *Registry) SetTimerStoppedObserver(observer TimerStoppedObserver) {
	r.slotsMu.Lock()
	defer r.slotsMu.Unlock()
	r.observer = observer
}

func (r *Registry) ClearTimerStoppedObserver() {
	r.slotsMu.Lock()
	defer r.slotsMu.Unlock()
	r.observer = nil
}

func (r *Registry) AddActiveTimer(ctx context.Context, nt NewActiveTimer) string {
	ctx, span := tracing.GlobalTracer.Start(ctx, "timers.registry.add_active")
	defer span.End()

	r.mu.Lock()
	now := r.clock.Now()
	nt.Elapsed = max(0, nt.Elapsed)
	if nt.StartTime == 0 {
		nt.StartTime = now.UnixMilli() - int64(nt.Elapsed)*1000
	}

	id := ""
	for i := range r.active {
		t := &r.active[i]
		if !t.sameExercise(nt) {
			continue
		}
		t.WorkoutName = nt.WorkoutName
		t.ExerciseName = nt.ExerciseName
		if nt.CorrelationID != "" {
			t.CorrelationID = nt.CorrelationID
		}
		t.Elapsed = nt.Elapsed
		t.IsRunning = nt.IsRunning
		t.StartTime = nt.StartTime
		id = t.ID
		break
	}

	if id == "" {
		id = r.newID(now)
		r.active = append(r.active, ActiveTimer{
			ID:            id,
			CorrelationID: nt.CorrelationID,
			WorkoutName:   nt.WorkoutName,
			ExerciseName:  nt.ExerciseName,
			Elapsed:       nt.Elapsed,
			IsRunning:     nt.IsRunning,
			StartTime:     nt.StartTime,
		})
	}

	if nt.IsRunning {
		r.armActiveLocked(id)
	} else {
		r.disarmActiveLocked(id)
	}
	r.persistLocked(ctx)
	r.mu.Unlock()

	span.SetAttributes(attribute.String("timer.id", id))
	r.metricsManager.TimerEvent(metrics.TimerEventStarted)
	r.changed()
	return id
}

// UpdateActiveTimer merges the patch into the timer. Stopping a timer without
// an explicit elapsed freezes it at the clock value, starting one without an
// explicit start time rebases it on the current elapsed.
func (r *Registry) UpdateActiveTimer(ctx context.Context, id string, patch ActiveTimerPatch) bool {
	ctx, span := tracing.GlobalTracer.Start(ctx, "timers.registry.update_active")
	span.SetAttributes(attribute.String("timer.id", id))
	defer span.End()

	r.mu.Lock()
	idx := r.activeIndexLocked(id)
	if idx < 0 {
		r.mu.Unlock()
		log.Debugf("timers: update of unknown active timer [%s]", id)
		r.changed()
		return false
	}

	now := r.clock.Now()
	t := &r.active[idx]
	wasRunning := t.IsRunning
	frozen := elapsedSince(now, t.StartTime)
	patch.apply(t)

	switch {
	case wasRunning && !t.IsRunning:
		if patch.Elapsed == nil {
			t.Elapsed = frozen
		}
		if patch.LastPauseTime == nil {
			pausedAt := now.UnixMilli()
			t.LastPauseTime = &pausedAt
		}
		r.disarmActiveLocked(id)
	case !wasRunning && t.IsRunning:
		if patch.StartTime == nil {
			t.StartTime = now.UnixMilli() - int64(t.Elapsed)*1000
		}
		r.armActiveLocked(id)
	case t.IsRunning && patch.Elapsed != nil && patch.StartTime == nil:
		// keep the anchor in line with the explicit elapsed, or the next tick reverts it
		t.StartTime = now.UnixMilli() - int64(t.Elapsed)*1000
	}
	r.persistLocked(ctx)
	r.mu.Unlock()

	r.changed()
	return true
}

func (r *Registry) PauseActiveTimer(ctx context.Context, id string) bool {
	ctx, span := tracing.GlobalTracer.Start(ctx, "timers.registry.pause_active")
	span.SetAttributes(attribute.String("timer.id", id))
	defer span.End()

	r.mu.Lock()
	idx := r.activeIndexLocked(id)
	if idx < 0 {
		r.mu.Unlock()
		r.changed()
		return false
	}
	t := &r.active[idx]
	if !t.IsRunning {
		r.mu.Unlock()
		return true
	}

	now := r.clock.Now()
	pausedAt := now.UnixMilli()
	t.Elapsed = elapsedSince(now, t.StartTime)
	t.IsRunning = false
	t.LastPauseTime = &pausedAt
	r.disarmActiveLocked(id)
	r.persistLocked(ctx)
	r.mu.Unlock()

	r.metricsManager.TimerEvent(metrics.TimerEventPaused)
	r.changed()
	return true
}

func (r *Registry) ResumeActiveTimer(ctx context.Context, id string) bool {
	ctx, span := tracing.GlobalTracer.Start(ctx, "timers.registry.resume_active")
	span.SetAttributes(attribute.String("timer.id", id))
	defer span.End()

	r.mu.Lock()
	idx := r.activeIndexLocked(id)
	if idx < 0 {
		r.mu.Unlock()
		r.changed()
		return false
	}
	t := &r.active[idx]
	if t.IsRunning {
		r.mu.Unlock()
		return true
	}

	t.StartTime = r.clock.Now().UnixMilli() - int64(t.Elapsed)*1000
	t.IsRunning = true
	r.armActiveLocked(id)
	r.persistLocked(ctx)
	r.mu.Unlock()

	r.metricsManager.TimerEvent(metrics.TimerEventResumed)
	r.changed()
	return true
}

// RemoveActiveTimer stops and removes the timer. A running timer adds its
// elapsed time to the daily total first. With fromDashboard the removed timer
// goes to the auto-saver, in the background, and to the timer-stopped observer.
func (r *Registry) RemoveActiveTimer(ctx context.Context, id string, fromDashboard bool) bool {
	ctx, span := tracing.GlobalTracer.Start(ctx, "timers.registry.remove_active")
	span.SetAttributes(
		attribute.String("timer.id", id),
		attribute.Bool("from_dashboard", fromDashboard),
	)
	defer span.End()

	r.mu.Lock()
	idx := r.activeIndexLocked(id)
	if idx < 0 {
		r.mu.Unlock()
		log.Debugf("timers: remove of unknown active timer [%s]", id)
		r.changed()
		return false
	}

	now := r.clock.Now()
	removed := r.active[idx].clone()
	r.disarmActiveLocked(id)
	if removed.IsRunning {
		removed.Elapsed = elapsedSince(now, removed.StartTime)
		removed.IsRunning = false
		r.addToTotalLocked(now, removed.Elapsed)
	}
	r.active = slices.Delete(r.active, idx, idx+1)
	r.persistLocked(ctx)
	r.mu.Unlock()

	if fromDashboard {
		r.metricsManager.TimerEvent(metrics.TimerEventStopped)
	} else {
		r.metricsManager.TimerEvent(metrics.TimerEventCompleted)
	}
	r.changed()

	if fromDashboard {
		r.dashboardStopped(ctx, removed)
	}
	return true
}

func (r *Registry) dashboardStopped(ctx context.Context, timer ActiveTimer) {
	r.slotsMu.RLock()
	observer := r.observer
	saver := r.autoSaver
	closed := r.closed
	if saver != nil && !closed {
		r.autoSaves.Add(1)
	}
	r.slotsMu.RUnlock()

	if observer != nil {
		observer.TimerStopped(timer.clone())
	}

	switch {
	case closed:
		log.Warnf("timers: registry closed, timer [%s] not auto-saved", timer.ID)
		return
	case saver == nil:
		log.Warnf("timers: no auto-saver set, timer [%s] not auto-saved", timer.ID)
		return
	}

	// the request may end before the save does, keep its trace but not its cancellation
	saveCtx := context.WithoutCancel(ctx)
	go func() {
		defer r.autoSaves.Done()
		ctx, cancel := context.WithTimeout(saveCtx, r.autoSaveTimeout)
		defer cancel()
		if err := saver.AutoSave(ctx, timer); err != nil {
			log.Warnf("timers: auto-save of timer [%s] (%s / %s): %s",
				timer.ID, timer.WorkoutName, timer.ExerciseName, err)
		}
	}()
}

func (r *Registry) AddRestTimer(ctx context.Context, nt NewRestTimer) string {
	ctx, span := tracing.GlobalTracer.Start(ctx, "timers.registry.add_rest")
	defer span.End()

	r.mu.Lock()
	now := r.clock.Now()
	if nt.StartTime == 0 {
		nt.StartTime = now.UnixMilli()
	}
	id := r.newID(now)
	r.rest = append(r.rest, RestTimer{
		ID:            id,
		CorrelationID: nt.CorrelationID,
		WorkoutName:   nt.WorkoutName,
		ExerciseName:  nt.ExerciseName,
		TimeLeft:      restTimeLeft(now, nt.StartTime),
		StartTime:     nt.StartTime,
	})
	r.armRestLocked(id)
	r.persistLocked(ctx)
	r.mu.Unlock()

	span.SetAttributes(attribute.String("timer.id", id))
	r.metricsManager.TimerEvent(metrics.TimerEventRestStarted)
	r.changed()
	return id
}

func (r *Registry) UpdateRestTimer(ctx context.Context, id string, patch RestTimerPatch) bool {
	ctx, span := tracing.GlobalTracer.Start(ctx, "timers.registry.update_rest")
	span.SetAttributes(attribute.String("timer.id", id))
	defer span.End()

	r.mu.Lock()
	idx := r.restIndexLocked(id)
	if idx < 0 {
		r.mu.Unlock()
		r.changed()
		return false
	}

	now := r.clock.Now()
	t := &r.rest[idx]
	patch.apply(t)
	switch {
	case patch.StartTime != nil:
		t.TimeLeft = restTimeLeft(now, t.StartTime)
	case patch.TimeLeft != nil:
		// move the anchor so the driver keeps counting from the new value
		t.StartTime = now.UnixMilli() - (int64(RestWindow/time.Second)-int64(t.TimeLeft))*1000
	}
	r.armRestLocked(id)
	r.persistLocked(ctx)
	r.mu.Unlock()

	r.changed()
	return true
}

func (r *Registry) RemoveRestTimer(ctx context.Context, id string) bool {
	ctx, span := tracing.GlobalTracer.Start(ctx, "timers.registry.remove_rest")
	span.SetAttributes(attribute.String("timer.id", id))
	defer span.End()

	r.mu.Lock()
	idx := r.restIndexLocked(id)
	if idx < 0 {
		r.mu.Unlock()
		r.changed()
		return false
	}
	r.disarmRestLocked(id)
	r.rest = slices.Delete(r.rest, idx, idx+1)
	r.persistLocked(ctx)
	r.mu.Unlock()

	r.metricsManager.TimerEvent(metrics.TimerEventRestStopped)
	r.changed()
	return true
}

func (r *Registry) ResetDailyTotal(ctx context.Context) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "timers.registry.reset_total")
	defer span.End()

	r.mu.Lock()
	r.totalActiveTime = 0
	r.totalDay = r.clock.Now().Format(dayStampLayout)
	if err := r.persistence.SaveTotal(ctx, 0); err != nil {
		r.metricsManager.PersistenceError()
		log.Errorf("timers: persist daily total: %s", err)
	}
	r.metricsManager.TimersState(len(r.active), len(r.rest), r.totalActiveTime)
	r.mu.Unlock()

	r.changed()
}

// ClearAllTimers disarms every driver and drops both timer lists, in memory
// and in storage. The daily total and any other persisted key stay.
func (r *Registry) ClearAllTimers(ctx context.Context) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "timers.registry.clear_all")
	defer span.End()

	r.mu.Lock()
	r.disarmAllLocked()
	r.active = []ActiveTimer{}
	r.rest = []RestTimer{}
	if err := r.persistence.ClearTimers(ctx); err != nil {
		r.metricsManager.PersistenceError()
		log.Errorf("timers: clear persisted timers: %s", err)
	}
	r.metricsManager.TimersState(0, 0, r.totalActiveTime)
	r.mu.Unlock()

	r.metricsManager.TimerEvent(metrics.TimerEventCleared)
	r.changed()
}

func (r *Registry) ActiveTimers() []ActiveTimer {
	r.mu.Lock()
	defer r.mu.Unlock()
	return copyActive(r.active)
}

func (r *Registry) RestTimers() []RestTimer {
	r.mu.Lock()
	defer r.mu.Unlock()
	return copyRest(r.rest)
}

func (r *Registry) TotalActiveTime() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.totalActiveTime
}

func (r *Registry) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

func (r *Registry) snapshotLocked() Snapshot {
	return Snapshot{
		ActiveTimers:    copyActive(r.active),
		RestTimers:      copyRest(r.rest),
		TotalActiveTime: r.totalActiveTime,
	}
}

func (r *Registry) activeIndexLocked(id string) int {
	return slices.IndexFunc(r.active, func(t ActiveTimer) bool { return t.ID == id })
}

func (r *Registry) restIndexLocked(id string) int {
	return slices.IndexFunc(r.rest, func(t RestTimer) bool { return t.ID == id })
}

// addToTotalLocked folds seconds into the daily total.
func (r *Registry) addToTotalLocked(now time.Time, seconds int) {
	r.rollDayLocked(now)
	r.totalActiveTime += seconds
}

// rollDayLocked starts the daily total over once the calendar day changes.
func (r *Registry) rollDayLocked(now time.Time) {
	if day := now.Format(dayStampLayout); day != r.totalDay {
		log.Debugf("timers: day changed [%s] -> [%s], daily total reset", r.totalDay, day)
		r.totalActiveTime = 0
		r.totalDay = day
	}
}

// persistLocked writes the state through. Failures are logged and the
// registry carries on from memory.
func (r *Registry) persistLocked(ctx context.Context) {
	r.rollDayLocked(r.clock.Now())
	if err := r.persistence.Save(ctx, r.snapshotLocked()); err != nil {
		r.metricsManager.PersistenceError()
		log.Errorf("timers: persist state: %s", err)
	}
	r.metricsManager.TimersState(len(r.active), len(r.rest), r.totalActiveTime)
}

func (r *Registry) changed() {
	r.bus.Publish(Event{Type: EventTimersChanged})
}
