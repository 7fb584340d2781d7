package timers

import "time"

const (
	// RestWindow is the fixed length of a rest countdown.
	RestWindow = 90 * time.Second
	// TickInterval is how often a driver recomputes its timer.
	TickInterval = time.Second
)

// ActiveTimer is a stopwatch for one exercise. While running,
// Elapsed = floor((now - StartTime) / 1000).
type ActiveTimer struct {
	ID            string `json:"id"`
	CorrelationID string `json:"correlationId,omitempty"`
	WorkoutName   string `json:"workoutName"`
	ExerciseName  string `json:"exerciseName"`
	Elapsed       int    `json:"elapsed"`
	IsRunning     bool   `json:"isRunning"`
	StartTime     int64  `json:"startTime"`
	LastPauseTime *int64 `json:"lastPauseTime,omitempty"`
}

// NewActiveTimer is an ActiveTimer before an id is assigned.
type NewActiveTimer struct {
	CorrelationID string `json:"correlationId,omitempty"`
	WorkoutName   string `json:"workoutName"`
	ExerciseName  string `json:"exerciseName"`
	Elapsed       int    `json:"elapsed"`
	IsRunning     bool   `json:"isRunning"`
	StartTime     int64  `json:"startTime"`
}

// ActiveTimerPatch holds the fields to merge into an ActiveTimer, nil fields are left as they are.
type ActiveTimerPatch struct {
	CorrelationID *string `json:"correlationId,omitempty"`
	WorkoutName   *string `json:"workoutName,omitempty"`
	ExerciseName  *string `json:"exerciseName,omitempty"`
	Elapsed       *int    `json:"elapsed,omitempty"`
	IsRunning     *bool   `json:"isRunning,omitempty"`
	StartTime     *int64  `json:"startTime,omitempty"`
	LastPauseTime *int64  `json:"lastPauseTime,omitempty"`
}

// RestTimer counts down RestWindow from StartTime.
type RestTimer struct {
	ID            string `json:"id"`
	CorrelationID string `json:"correlationId,omitempty"`
	WorkoutName   string `json:"workoutName"`
	ExerciseName  string `json:"exerciseName"`
	TimeLeft      int    `json:"timeLeft"`
	StartTime     int64  `json:"startTime"`
}

type NewRestTimer struct {
	CorrelationID string `json:"correlationId,omitempty"`
	WorkoutName   string `json:"workoutName"`
	ExerciseName  string `json:"exerciseName"`
	StartTime     int64  `json:"startTime"`
}

type RestTimerPatch struct {
	WorkoutName  *string `json:"workoutName,omitempty"`
	ExerciseName *string `json:"exerciseName,omitempty"`
	TimeLeft     *int    `json:"timeLeft,omitempty"`
	StartTime    *int64  `json:"startTime,omitempty"`
}

// Snapshot is a read-only copy of the registry state.
type Snapshot struct {
	ActiveTimers    []ActiveTimer `json:"activeTimers"`
	RestTimers      []RestTimer   `json:"restTimers"`
	TotalActiveTime int           `json:"totalActiveTime"`
}

func (t ActiveTimer) clone() ActiveTimer {
	c := t
	if t.LastPauseTime != nil {
		v := *t.LastPauseTime
		c.LastPauseTime = &v
	}
	return c
}

// sameExercise reports whether t and n refer to the same exercise. The
// correlation id wins when both sides carry one, labels are the fallback.
func (t ActiveTimer) sameExercise(n NewActiveTimer) bool {
	if t.CorrelationID != "" && n.CorrelationID != "" {
		return t.CorrelationID == n.CorrelationID
	}
	return t.WorkoutName == n.WorkoutName && t.ExerciseName == n.ExerciseName
}

func (p ActiveTimerPatch) apply(t *ActiveTimer) {
	if p.CorrelationID != nil {
		t.CorrelationID = *p.CorrelationID
	}
	if p.WorkoutName != nil {
		t.WorkoutName = *p.WorkoutName
	}
	if p.ExerciseName != nil {
		t.ExerciseName = *p.ExerciseName
	}
	if p.Elapsed != nil {
		t.Elapsed = max(0, *p.Elapsed)
	}
	if p.IsRunning != nil {
		t.IsRunning = *p.IsRunning
	}
	if p.StartTime != nil {
		t.StartTime = *p.StartTime
	}
	if p.LastPauseTime != nil {
		v := *p.LastPauseTime
		t.LastPauseTime = &v
	}
}

func (p RestTimerPatch) apply(t *RestTimer) {
	if p.WorkoutName != nil {
		t.WorkoutName = *p.WorkoutName
	}
	if p.ExerciseName != nil {
		t.ExerciseName = *p.ExerciseName
	}
	if p.TimeLeft != nil {
		t.TimeLeft = max(0, min(*p.TimeLeft, int(RestWindow/time.Second)))
	}
	if p.StartTime != nil {
		t.StartTime = *p.StartTime
	}
}

func copyActive(src []ActiveTimer) []ActiveTimer {
	out := make([]ActiveTimer, 0, len(src))
	for _, t := range src {
		out = append(out, t.clone())
	}
	return out
}

func copyRest(src []RestTimer) []RestTimer {
	out := make([]RestTimer, len(src))
	copy(out, src)
	return out
}

// elapsedSince returns whole seconds between startMillis and now, never negative.
func elapsedSince(now time.Time, startMillis int64) int {
	d := now.UnixMilli() - startMillis
	if d <= 0 {
		return 0
	}
	return int(d / 1000)
}

func restTimeLeft(now time.Time, startMillis int64) int {
	return max(0, int(RestWindow/time.Second)-elapsedSince(now, startMillis))
}
