package workouts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/gymtimers/internal/telemetry/tracing"
	"github.com/2beens/gymtimers/pkg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) ListExercises(ctx context.Context) (_ []Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.list_exercises")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`
			SELECT id, name, muscle_group
			FROM exercises
			ORDER BY name
		`,
	)
	if err != nil {
		return nil, fmt.Errorf("exercises [query]: %w", err)
	}
	defer rows.Close()

	exercises := []Exercise{}
	for rows.Next() {
		var e Exercise
		if err := rows.Scan(&e.ID, &e.Name, &e.MuscleGroup); err != nil {
			return nil, fmt.Errorf("exercises [rows scan]: %w", err)
		}
		exercises = append(exercises, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("exercises [rows error]: %w", err)
	}

	return exercises, nil
}

// AddWorkout stores the workout and its exercises in one transaction.
func (r *Repo) AddWorkout(ctx context.Context, workout NewWorkout) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.String("workout.name", workout.Name),
		attribute.Int("workout.exercises", len(workout.Exercises)),
	)

	var workoutID int
	err = pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if err := tx.QueryRow(
			ctx,
			`
				INSERT INTO workouts
				    (name, notes, duration, category, image_url, created_at)
				VALUES ($1, $2, $3, $4, $5, $6)
				RETURNING id
			`,
			workout.Name,
			workout.Notes,
			workout.Duration,
			workout.Category,
			workout.ImageURL,
			time.Now(),
		).Scan(&workoutID); err != nil {
			if pkg.IsCheckViolationError(err) {
				return fmt.Errorf("%w: %s", ErrInvalidWorkout, err)
			}
			return fmt.Errorf("insert workout: %w", err)
		}

		for i, e := range workout.Exercises {
			if _, err := tx.Exec(
				ctx,
				`
					INSERT INTO workout_exercises
					    (workout_id, exercise_id, position, sets, reps, weight, duration)
					VALUES ($1, $2, $3, $4, $5, $6, $7)
				`,
				workoutID, e.ExerciseID, i, e.Sets, e.Reps, e.Weight, e.Duration,
			); err != nil {
				if pkg.IsForeignKeyViolationError(err) {
					return fmt.Errorf("%w: %d", ErrExerciseNotFound, e.ExerciseID)
				}
				if pkg.IsCheckViolationError(err) {
					return fmt.Errorf("%w: %s", ErrInvalidWorkout, err)
				}
				return fmt.Errorf("insert workout exercise %d: %w", e.ExerciseID, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return workoutID, nil
}

func (r *Repo) ListWorkouts(ctx context.Context, limit int, withExercises bool) (_ []Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.Int("limit", limit),
		attribute.Bool("with_exercises", withExercises),
	)

	rows, err := r.db.Query(
		ctx,
		`
			SELECT id, name, notes, duration, category, image_url, created_at
			FROM workouts
			ORDER BY created_at DESC
			LIMIT $1
		`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("workouts [query]: %w", err)
	}
	defer rows.Close()

	workouts := []Workout{}
	index := map[int]int{}
	var ids []int
	for rows.Next() {
		var w Workout
		if err := rows.Scan(&w.ID, &w.Name, &w.Notes, &w.Duration, &w.Category, &w.ImageURL, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("workouts [rows scan]: %w", err)
		}
		index[w.ID] = len(workouts)
		ids = append(ids, w.ID)
		workouts = append(workouts, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("workouts [rows error]: %w", err)
	}

	if !withExercises || len(ids) == 0 {
		return workouts, nil
	}

	exRows, err := r.db.Query(
		ctx,
		`
			SELECT we.workout_id, we.exercise_id, e.name, we.sets, we.reps, we.weight, we.duration
			FROM workout_exercises we
			JOIN exercises e ON e.id = we.exercise_id
			WHERE we.workout_id = ANY($1)
			ORDER BY we.workout_id, we.position
		`,
		ids,
	)
	if err != nil {
		return nil, fmt.Errorf("workout exercises [query]: %w", err)
	}
	defer exRows.Close()

	for exRows.Next() {
		var workoutID int
		var e WorkoutExercise
		if err := exRows.Scan(&workoutID, &e.ExerciseID, &e.Name, &e.Sets, &e.Reps, &e.Weight, &e.Duration); err != nil {
			return nil, fmt.Errorf("workout exercises [rows scan]: %w", err)
		}
		i, ok := index[workoutID]
		if !ok {
			continue
		}
		workouts[i].Exercises = append(workouts[i].Exercises, e)
	}
	if err := exRows.Err(); err != nil {
		return nil, fmt.Errorf("workout exercises [rows error]: %w", err)
	}

	return workouts, nil
}

func (r *Repo) Stats(ctx context.Context, from time.Time) (_ Stats, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.stats")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("from", from.Format(time.RFC3339)))

	stats := Stats{From: from}
	if err := r.db.QueryRow(
		ctx,
		`
			SELECT COUNT(*), COALESCE(SUM(duration), 0)
			FROM workouts
			WHERE created_at >= $1
		`,
		from,
	).Scan(&stats.Count, &stats.TotalDuration); err != nil {
		return Stats{}, fmt.Errorf("workout stats [query row]: %w", err)
	}

	return stats, nil
}

func (r *Repo) UpsertPresence(ctx context.Context, presence Presence) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.upsert_presence")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if presence.UpdatedAt.IsZero() {
		presence.UpdatedAt = time.Now()
	}
	if presence.ExerciseNames == nil {
		presence.ExerciseNames = []string{}
	}

	tag, err := r.db.Exec(
		ctx,
		`
			INSERT INTO community_presence
			    (workout_name, exercise_names, updated_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (workout_name)
			DO UPDATE SET exercise_names = EXCLUDED.exercise_names, updated_at = EXCLUDED.updated_at
		`,
		presence.WorkoutName,
		presence.ExerciseNames,
		presence.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert presence: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errors.New("upsert presence: no rows affected")
	}

	return nil
}

func (r *Repo) ListPresence(ctx context.Context, since time.Time) (_ []Presence, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.list_presence")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`
			SELECT workout_name, exercise_names, updated_at
			FROM community_presence
			WHERE updated_at >= $1
			ORDER BY updated_at DESC
		`,
		since,
	)
	if err != nil {
		return nil, fmt.Errorf("presence [query]: %w", err)
	}
	defer rows.Close()

	presence := []Presence{}
	for rows.Next() {
		var p Presence
		if err := rows.Scan(&p.WorkoutName, &p.ExerciseNames, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("presence [rows scan]: %w", err)
		}
		presence = append(presence, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("presence [rows error]: %w", err)
	}

	return presence, nil
}
