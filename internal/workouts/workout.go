package workouts

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrExerciseNotFound = errors.New("exercise not found")
	ErrInvalidWorkout   = errors.New("invalid workout")
)

const (
	CategoryStrength    = "Strength"
	CategoryCardio      = "Cardio"
	CategoryFlexibility = "Flexibility"
	CategoryHIIT        = "HIIT"
	CategoryOther       = "Other"
)

var knownCategories = map[string]bool{
	CategoryStrength:    true,
	CategoryCardio:      true,
	CategoryFlexibility: true,
	CategoryHIIT:        true,
	CategoryOther:       true,
}

func IsKnownCategory(category string) bool {
	return knownCategories[category]
}

type Exercise struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	MuscleGroup string `json:"muscleGroup"`
}

type WorkoutExercise struct {
	ExerciseID int     `json:"exerciseId"`
	Name       string  `json:"name,omitempty"`
	Sets       int     `json:"sets,omitempty"`
	Reps       int     `json:"reps,omitempty"`
	Weight     float64 `json:"weight,omitempty"`
	// Duration in seconds.
	Duration int `json:"duration,omitempty"`
}

type NewWorkout struct {
	Name      string            `json:"name"`
	Notes     string            `json:"notes,omitempty"`
	Exercises []WorkoutExercise `json:"exercises"`
	// Duration in seconds.
	Duration int    `json:"duration"`
	Category string `json:"category"`
	ImageURL string `json:"imageUrl,omitempty"`
}

func (w NewWorkout) Validate() error {
	if strings.TrimSpace(w.Name) == "" {
		return fmt.Errorf("%w: name empty", ErrInvalidWorkout)
	}
	if len(w.Exercises) == 0 {
		return fmt.Errorf("%w: no exercises", ErrInvalidWorkout)
	}
	for i, e := range w.Exercises {
		if e.ExerciseID <= 0 {
			return fmt.Errorf("%w: exercise %d has no exercise id", ErrInvalidWorkout, i)
		}
		if e.Duration < 0 {
			return fmt.Errorf("%w: exercise %d has negative duration", ErrInvalidWorkout, i)
		}
	}
	if !IsKnownCategory(w.Category) {
		return fmt.Errorf("%w: unknown category [%s]", ErrInvalidWorkout, w.Category)
	}
	if w.Duration < 0 {
		return fmt.Errorf("%w: negative duration", ErrInvalidWorkout)
	}
	return nil
}

type Workout struct {
	ID        int               `json:"id"`
	Name      string            `json:"name"`
	Notes     string            `json:"notes,omitempty"`
	Duration  int               `json:"duration"`
	Category  string            `json:"category"`
	ImageURL  string            `json:"imageUrl,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
	Exercises []WorkoutExercise `json:"exercises,omitempty"`
}

// Presence is the "currently training" record shown to other users.
type Presence struct {
	WorkoutName   string    `json:"workoutName"`
	ExerciseNames []string  `json:"exerciseNames"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type Stats struct {
	Count         int       `json:"count"`
	TotalDuration int       `json:"totalDuration"`
	From          time.Time `json:"from"`
}

type AddWorkoutResponse struct {
	ID int `json:"id"`
}
