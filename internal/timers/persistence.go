package timers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/2beens/gymtimers/internal/kvstore"
	"github.com/2beens/gymtimers/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

// persisted keys, relative to the store namespace
const (
	KeyActiveTimers    = "active-timers"
	KeyRestTimers      = "rest-timers"
	KeyTotalActiveTime = "total-active-time"
	KeyDailyTotalDate  = "daily-total-date"
	KeyDailyTotal      = "daily-total"
)

const dayStampLayout = "2006-01-02"

// StateStore is the durable side of the registry.
type StateStore interface {
	// Load never fails as a whole: a missing or malformed key falls back to its
	// empty default, and the returned error lists what was skipped.
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snapshot Snapshot) error
	SaveTotal(ctx context.Context, total int) error
	// ClearTimers removes the active and rest timer keys only.
	ClearTimers(ctx context.Context) error
}

var _ StateStore = (*Persistence)(nil)

type Persistence struct {
	store kvstore.Store
	clock Clock
}

func NewPersistence(store kvstore.Store, clock Clock) *Persistence {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Persistence{
		store: store,
		clock: clock,
	}
}

func (p *Persistence) today() string {
	return p.clock.Now().Format(dayStampLayout)
}

func (p *Persistence) Load(ctx context.Context) (_ Snapshot, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "timers.persistence.load")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	snapshot := Snapshot{
		ActiveTimers: []ActiveTimer{},
		RestTimers:   []RestTimer{},
	}

	var loadErr error
	if raw, ok, getErr := p.get(ctx, KeyActiveTimers); getErr != nil {
		loadErr = multierr.Append(loadErr, getErr)
	} else if ok {
		var active []ActiveTimer
		if err := json.Unmarshal(raw, &active); err != nil {
			loadErr = multierr.Append(loadErr, fmt.Errorf("parse %s: %w", KeyActiveTimers, err))
		} else if active != nil {
			snapshot.ActiveTimers = active
		}
	}

	if raw, ok, getErr := p.get(ctx, KeyRestTimers); getErr != nil {
		loadErr = multierr.Append(loadErr, getErr)
	} else if ok {
		var rest []RestTimer
		if err := json.Unmarshal(raw, &rest); err != nil {
			loadErr = multierr.Append(loadErr, fmt.Errorf("parse %s: %w", KeyRestTimers, err))
		} else if rest != nil {
			snapshot.RestTimers = rest
		}
	}

	total, totalErr := p.loadTotal(ctx)
	loadErr = multierr.Append(loadErr, totalErr)
	snapshot.TotalActiveTime = total

	return snapshot, loadErr
}

// loadTotal restores the daily total, or resets it to zero on the first load of a new day.
func (p *Persistence) loadTotal(ctx context.Context) (int, error) {
	today := p.today()

	stamp, ok, err := p.get(ctx, KeyDailyTotalDate)
	if err != nil {
		return 0, err
	}
	if !ok || string(stamp) != today {
		log.Debugf("timers: new day [%s] (last stamp [%s]), daily total reset", today, stamp)
		if err := p.SaveTotal(ctx, 0); err != nil {
			return 0, fmt.Errorf("reset daily total: %w", err)
		}
		return 0, nil
	}

	var loadErr error
	for _, key := range []string{KeyTotalActiveTime, KeyDailyTotal} {
		raw, ok, err := p.get(ctx, key)
		if err != nil {
			loadErr = multierr.Append(loadErr, err)
			continue
		}
		if !ok {
			continue
		}
		total, err := strconv.Atoi(string(raw))
		if err != nil || total < 0 {
			loadErr = multierr.Append(loadErr, fmt.Errorf("parse %s: invalid total [%s]", key, raw))
			continue
		}
		return total, loadErr
	}

	return 0, loadErr
}

func (p *Persistence) get(ctx context.Context, key string) ([]byte, bool, error) {
	raw, err := p.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}
	return raw, true, nil
}

// Save writes each timer key on its own, one failing write does not stop the others.
func (p *Persistence) Save(ctx context.Context, snapshot Snapshot) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "timers.persistence.save")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	active := snapshot.ActiveTimers
	if active == nil {
		active = []ActiveTimer{}
	}
	rest := snapshot.RestTimers
	if rest == nil {
		rest = []RestTimer{}
	}

	err = multierr.Append(err, p.setJSON(ctx, KeyActiveTimers, active))
	err = multierr.Append(err, p.setJSON(ctx, KeyRestTimers, rest))
	err = multierr.Append(err, p.SaveTotal(ctx, snapshot.TotalActiveTime))
	return err
}

// SaveTotal writes the total together with the day stamp/day total pair.
func (p *Persistence) SaveTotal(ctx context.Context, total int) error {
	val := []byte(strconv.Itoa(total))

	var err error
	if setErr := p.store.Set(ctx, KeyTotalActiveTime, val); setErr != nil {
		err = multierr.Append(err, fmt.Errorf("set %s: %w", KeyTotalActiveTime, setErr))
	}
	if setErr := p.store.Set(ctx, KeyDailyTotalDate, []byte(p.today())); setErr != nil {
		err = multierr.Append(err, fmt.Errorf("set %s: %w", KeyDailyTotalDate, setErr))
	}
	if setErr := p.store.Set(ctx, KeyDailyTotal, val); setErr != nil {
		err = multierr.Append(err, fmt.Errorf("set %s: %w", KeyDailyTotal, setErr))
	}
	return err
}

func (p *Persistence) ClearTimers(ctx context.Context) error {
	if err := p.store.Del(ctx, KeyActiveTimers, KeyRestTimers); err != nil {
		return fmt.Errorf("clear timer keys: %w", err)
	}
	return nil
}

func (p *Persistence) setJSON(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := p.store.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}
