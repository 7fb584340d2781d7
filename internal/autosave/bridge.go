// Package autosave turns a timer stopped from the dashboard into a stored
// workout, using the in-progress draft when there is one.
package autosave

//go:generate mockgen -source=$GOFILE -destination=bridge_mocks_test.go -package=autosave_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/2beens/gymtimers/internal/drafts"
	"github.com/2beens/gymtimers/internal/querycache"
	"github.com/2beens/gymtimers/internal/telemetry/metrics"
	"github.com/2beens/gymtimers/internal/telemetry/tracing"
	"github.com/2beens/gymtimers/internal/timers"
	"github.com/2beens/gymtimers/internal/workouts"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const (
	DefaultWorkoutName = "Quick Workout"
	// several exercises adding up to more than this are classified as cardio
	cardioThresholdSec = 1200
)

var (
	ErrExerciseNotResolved = errors.New("exercise not resolved")
	ErrInvalidWorkout      = errors.New("invalid workout")
	ErrSubmitFailed        = errors.New("workout submission failed")
)

// InvalidationKeys are dropped from the query cache after a successful save.
var InvalidationKeys = append(append([]string{}, querycache.WorkoutKeys...), querycache.KeyCommunityPresence)

type workoutsAPI interface {
	ListExercises(ctx context.Context) ([]workouts.Exercise, error)
	CreateWorkout(ctx context.Context, workout workouts.NewWorkout) (int, error)
	UpdatePresence(ctx context.Context, presence workouts.Presence) error
}

type draftStore interface {
	Get(ctx context.Context) (*drafts.Draft, error)
	Clear(ctx context.Context) error
}

type cacheInvalidator interface {
	Invalidate(ctx context.Context, keys ...string) error
}

type notifier interface {
	Notify(n timers.Notification)
}

type BridgeParams struct {
	API            workoutsAPI
	Drafts         draftStore
	Cache          cacheInvalidator
	Notifier       notifier
	MetricsManager *metrics.Manager
}

type Bridge struct {
	api            workoutsAPI
	drafts         draftStore
	cache          cacheInvalidator
	notifier       notifier
	metricsManager *metrics.Manager
	now            func() time.Time
}

func NewBridge(params BridgeParams) *Bridge {
	return &Bridge{
		api:            params.API,
		drafts:         params.Drafts,
		cache:          params.Cache,
		notifier:       params.Notifier,
		metricsManager: params.MetricsManager,
		now:            time.Now,
	}
}

// AutoSave stores a workout for the stopped timer. Only a missing exercise
// reference or a rejected submission stop it; every later step is best effort.
func (b *Bridge) AutoSave(ctx context.Context, timer timers.ActiveTimer) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "autosave.bridge.auto_save")
	span.SetAttributes(
		attribute.String("timer.id", timer.ID),
		attribute.String("timer.workout", timer.WorkoutName),
		attribute.String("timer.exercise", timer.ExerciseName),
		attribute.Int("timer.elapsed", timer.Elapsed),
	)
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	started := b.now()
	result := metrics.AutoSaveFailed
	defer func() {
		b.metricsManager.AutoSave(result, b.now().Sub(started).Seconds())
	}()

	draft := b.loadDraft(ctx)

	var workout workouts.NewWorkout
	if draft != nil {
		workout, err = b.fromDraft(ctx, *draft, timer)
	} else {
		workout, err = b.fromTimer(ctx, timer)
	}
	if err != nil {
		result = resultFor(err)
		log.Warnf("autosave: timer [%s] (%s / %s) not saved: %s", timer.ID, timer.WorkoutName, timer.ExerciseName, err)
		return err
	}

	id, err := b.submit(ctx, workout)
	if err != nil {
		b.notify(timers.Notification{
			Kind:    timers.NotificationFailure,
			Title:   "Auto-save failed",
			Message: fmt.Sprintf("Could not save %s, your draft was kept.", workout.Name),
			TimerID: timer.ID,
		})
		return fmt.Errorf("%w: %w", ErrSubmitFailed, err)
	}
	result = metrics.AutoSaveSaved
	span.SetAttributes(attribute.Int("workout.id", id))
	log.Infof("autosave: timer [%s] saved as workout [%d] %s", timer.ID, id, workout.Name)

	if draft != nil {
		b.clearDraft(ctx)
	}
	b.updatePresence(ctx, workout)
	b.invalidateCaches(ctx)

	b.notify(timers.Notification{
		Kind:    timers.NotificationSuccess,
		Title:   "Workout saved",
		Message: fmt.Sprintf("%s saved (%s).", workout.Name, formatDuration(workout.Duration)),
		TimerID: timer.ID,
	})
	return nil
}

// loadDraft treats an unreadable draft the same as a missing one.
func (b *Bridge) loadDraft(ctx context.Context) *drafts.Draft {
	ctx, span := tracing.GlobalTracer.Start(ctx, "autosave.bridge.load_draft")
	defer span.End()

	draft, err := b.drafts.Get(ctx)
	if err != nil {
		if !errors.Is(err, drafts.ErrNoDraft) {
			log.Warnf("autosave: load draft: %s", err)
		}
		span.SetAttributes(attribute.Bool("draft.found", false))
		return nil
	}
	span.SetAttributes(attribute.Bool("draft.found", true))
	return draft
}

func (b *Bridge) fromTimer(ctx context.Context, timer timers.ActiveTimer) (workouts.NewWorkout, error) {
	catalogue, err := b.listExercises(ctx)
	if err != nil {
		return workouts.NewWorkout{}, fmt.Errorf("%w: exercise lookup: %w", ErrExerciseNotResolved, err)
	}

	exercise, ok := findExercise(catalogue, timer.ExerciseName)
	if !ok {
		return workouts.NewWorkout{}, fmt.Errorf("%w: no exercise named [%s]", ErrExerciseNotResolved, timer.ExerciseName)
	}

	return finalize(workouts.NewWorkout{
		Name: workoutName("", timer),
		Exercises: []workouts.WorkoutExercise{{
			ExerciseID: exercise.ID,
			Name:       exercise.Name,
			Duration:   timer.Elapsed,
		}},
	})
}

func (b *Bridge) fromDraft(ctx context.Context, draft drafts.Draft, timer timers.ActiveTimer) (workouts.NewWorkout, error) {
	exercises := make([]drafts.DraftExercise, len(draft.Exercises))
	copy(exercises, draft.Exercises)

	if i := matchDraftExercise(exercises, timer); i >= 0 {
		exercises[i].Duration = timer.Elapsed
	} else {
		log.Debugf("autosave: timer [%s] has no matching draft exercise", timer.ID)
	}

	// the catalogue is only fetched if some draft entry lacks a reference
	var catalogue []workouts.Exercise
	catalogueLoaded := false

	workout := workouts.NewWorkout{
		Name:     workoutName(draft.Name, timer),
		Notes:    draft.Notes,
		ImageURL: draft.ImageURL,
	}
	for _, e := range exercises {
		if !usable(e) {
			continue
		}

		exerciseID := e.ExerciseID
		name := e.Name
		if exerciseID <= 0 {
			if !catalogueLoaded {
				var err error
				catalogue, err = b.listExercises(ctx)
				if err != nil {
					log.Warnf("autosave: exercise lookup: %s", err)
				}
				catalogueLoaded = true
			}
			resolved, ok := findExercise(catalogue, e.Name)
			if !ok {
				log.Warnf("autosave: draft exercise [%s] has no exercise reference, skipped", e.Name)
				continue
			}
			exerciseID = resolved.ID
			name = resolved.Name
		}

		workout.Exercises = append(workout.Exercises, workouts.WorkoutExercise{
			ExerciseID: exerciseID,
			Name:       name,
			Sets:       e.Sets,
			Reps:       e.Reps,
			Weight:     e.Weight,
			Duration:   max(e.Duration, 0),
		})
	}

	if len(workout.Exercises) == 0 {
		return workouts.NewWorkout{}, fmt.Errorf("%w: no draft exercise could be resolved", ErrExerciseNotResolved)
	}
	return finalize(workout)
}

func (b *Bridge) listExercises(ctx context.Context) (_ []workouts.Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "autosave.bridge.list_exercises")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()
	return b.api.ListExercises(ctx)
}

func (b *Bridge) submit(ctx context.Context, workout workouts.NewWorkout) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "autosave.bridge.submit")
	span.SetAttributes(
		attribute.String("workout.name", workout.Name),
		attribute.String("workout.category", workout.Category),
		attribute.Int("workout.duration", workout.Duration),
	)
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()
	return b.api.CreateWorkout(ctx, workout)
}

func (b *Bridge) clearDraft(ctx context.Context) {
	var err error
	ctx, span := tracing.GlobalTracer.Start(ctx, "autosave.bridge.clear_draft")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	if err = b.drafts.Clear(ctx); err != nil {
		log.Warnf("autosave: clear draft: %s", err)
	}
}

func (b *Bridge) updatePresence(ctx context.Context, workout workouts.NewWorkout) {
	var err error
	ctx, span := tracing.GlobalTracer.Start(ctx, "autosave.bridge.update_presence")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	names := make([]string, 0, len(workout.Exercises))
	for _, e := range workout.Exercises {
		if e.Name != "" {
			names = append(names, e.Name)
		}
	}
	if err = b.api.UpdatePresence(ctx, workouts.Presence{
		WorkoutName:   workout.Name,
		ExerciseNames: names,
	}); err != nil {
		log.Warnf("autosave: update community presence: %s", err)
	}
}

func (b *Bridge) invalidateCaches(ctx context.Context) {
	var err error
	ctx, span := tracing.GlobalTracer.Start(ctx, "autosave.bridge.invalidate_caches")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	if err = b.cache.Invalidate(ctx, InvalidationKeys...); err != nil {
		log.Warnf("autosave: invalidate caches: %s", err)
	}
}

func (b *Bridge) notify(n timers.Notification) {
	if b.notifier == nil {
		return
	}
	b.notifier.Notify(n)
}

// finalize fills in the total duration and category, then validates.
func finalize(workout workouts.NewWorkout) (workouts.NewWorkout, error) {
	workout.Duration = 0
	for _, e := range workout.Exercises {
		workout.Duration += e.Duration
	}
	workout.Category = Categorize(workout.Exercises)

	if err := workout.Validate(); err != nil {
		return workouts.NewWorkout{}, fmt.Errorf("%w: %w", ErrInvalidWorkout, err)
	}
	return workout, nil
}

// Categorize guesses the category: a lone exercise or a short session is
// strength, a long multi-exercise session is cardio.
func Categorize(exercises []workouts.WorkoutExercise) string {
	if len(exercises) <= 1 {
		return workouts.CategoryStrength
	}
	total := 0
	for _, e := range exercises {
		total += e.Duration
	}
	if total > cardioThresholdSec {
		return workouts.CategoryCardio
	}
	return workouts.CategoryStrength
}

func workoutName(draftName string, timer timers.ActiveTimer) string {
	if name := strings.TrimSpace(draftName); name != "" {
		return name
	}
	if name := strings.TrimSpace(timer.WorkoutName); name != "" {
		return name
	}
	return DefaultWorkoutName
}

func usable(e drafts.DraftExercise) bool {
	return e.ExerciseID > 0 || e.Duration > 0 || strings.TrimSpace(e.Name) != ""
}

func findExercise(catalogue []workouts.Exercise, name string) (workouts.Exercise, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return workouts.Exercise{}, false
	}
	for _, e := range catalogue {
		if strings.EqualFold(strings.TrimSpace(e.Name), name) {
			return e, true
		}
	}
	return workouts.Exercise{}, false
}

// matchDraftExercise prefers the correlation id and falls back to the exercise name.
func matchDraftExercise(exercises []drafts.DraftExercise, timer timers.ActiveTimer) int {
	if timer.CorrelationID != "" {
		for i, e := range exercises {
			if e.CorrelationID == timer.CorrelationID {
				return i
			}
		}
	}
	name := strings.TrimSpace(timer.ExerciseName)
	if name == "" {
		return -1
	}
	for i, e := range exercises {
		if strings.EqualFold(strings.TrimSpace(e.Name), name) {
			return i
		}
	}
	return -1
}

func resultFor(err error) string {
	switch {
	case errors.Is(err, ErrExerciseNotResolved):
		return metrics.AutoSaveUnresolved
	case errors.Is(err, ErrInvalidWorkout):
		return metrics.AutoSaveInvalid
	default:
		return metrics.AutoSaveFailed
	}
}

func formatDuration(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
