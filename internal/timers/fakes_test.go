package timers_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/2beens/gymtimers/internal/kvstore"
	"github.com/2beens/gymtimers/internal/telemetry/metrics"
	"github.com/2beens/gymtimers/internal/timers"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Add(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeJob struct {
	interval  time.Duration
	next      time.Time
	fn        func()
	cancelled bool
}

// fakeScheduler fires jobs only when Advance moves its clock.
type fakeScheduler struct {
	mu    sync.Mutex
	clock *fakeClock
	jobs  []*fakeJob
}

func newFakeScheduler(clock *fakeClock) *fakeScheduler {
	return &fakeScheduler{clock: clock}
}

func (s *fakeScheduler) Every(interval time.Duration, fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	job := &fakeJob{
		interval: interval,
		next:     s.clock.Now().Add(interval),
		fn:       fn,
	}
	s.jobs = append(s.jobs, job)
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		job.cancelled = true
	}
}

// Advance moves the clock one second at a time, firing due jobs after each step.
func (s *fakeScheduler) Advance(d time.Duration) {
	for elapsed := time.Duration(0); elapsed < d; elapsed += time.Second {
		s.clock.Add(time.Second)
		now := s.clock.Now()

		s.mu.Lock()
		var due []*fakeJob
		live := s.jobs[:0]
		for _, j := range s.jobs {
			if j.cancelled {
				continue
			}
			live = append(live, j)
			if !j.next.After(now) {
				due = append(due, j)
				j.next = j.next.Add(j.interval)
			}
		}
		s.jobs = live
		s.mu.Unlock()

		for _, j := range due {
			s.mu.Lock()
			cancelled := j.cancelled
			s.mu.Unlock()
			if !cancelled {
				j.fn()
			}
		}
	}
}

func (s *fakeScheduler) Armed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, j := range s.jobs {
		if !j.cancelled {
			n++
		}
	}
	return n
}

type eventRecorder struct {
	mu     sync.Mutex
	events []timers.Event
}

func (r *eventRecorder) record(e timers.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *eventRecorder) count(t timers.EventType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Type == t {
			n++
		}
	}
	return n
}

func (r *eventRecorder) last(t timers.EventType) (timers.Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].Type == t {
			return r.events[i], true
		}
	}
	return timers.Event{}, false
}

// failingStore fails every operation on the keys listed in failKeys, or on all keys when empty.
type failingStore struct {
	kvstore.Store
	failKeys map[string]bool
}

var errStoreDown = errors.New("store down")

func (s *failingStore) fails(key string) bool {
	return len(s.failKeys) == 0 || s.failKeys[key]
}

func (s *failingStore) Get(ctx context.Context, key string) ([]byte, error) {
	if s.fails(key) {
		return nil, errStoreDown
	}
	return s.Store.Get(ctx, key)
}

func (s *failingStore) Set(ctx context.Context, key string, value []byte) error {
	if s.fails(key) {
		return errStoreDown
	}
	return s.Store.Set(ctx, key, value)
}

func (s *failingStore) Del(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		if s.fails(k) {
			return errStoreDown
		}
	}
	return s.Store.Del(ctx, keys...)
}

// 2024-03-11 10:00:00 local time
var testStart = time.Date(2024, time.March, 11, 10, 0, 0, 0, time.Local)

type testEnv struct {
	clock     *fakeClock
	scheduler *fakeScheduler
	store     kvstore.Store
	metrics   *metrics.Manager
	events    *eventRecorder
	registry  *timers.Registry
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	clock := newFakeClock(testStart)
	return newTestEnvWith(t, clock, kvstore.NewMemory(0))
}

func newTestEnvWith(t *testing.T, clock *fakeClock, store kvstore.Store) *testEnv {
	t.Helper()
	env := &testEnv{
		clock:     clock,
		scheduler: newFakeScheduler(clock),
		store:     store,
		metrics:   metrics.NewTestManager(),
		events:    &eventRecorder{},
	}
	env.registry = timers.NewRegistry(timers.RegistryParams{
		Persistence:    timers.NewPersistence(store, clock),
		Clock:          clock,
		Scheduler:      env.scheduler,
		MetricsManager: env.metrics,
	})
	unsubscribe := env.registry.Subscribe(env.events.record)
	t.Cleanup(func() {
		unsubscribe()
		env.registry.Close()
	})
	return env
}

func (env *testEnv) activeByID(id string) (timers.ActiveTimer, bool) {
	for _, at := range env.registry.ActiveTimers() {
		if at.ID == id {
			return at, true
		}
	}
	return timers.ActiveTimer{}, false
}

func ptr[T any](v T) *T {
	return &v
}
