package drafts

// Draft is the in-progress workout form. It lives next to the timer state but
// has its own lifecycle: clearing timers never touches it.
type Draft struct {
	Name      string          `json:"name"`
	Notes     string          `json:"notes"`
	ImageURL  string          `json:"imageUrl,omitempty"`
	Exercises []DraftExercise `json:"exercises"`
}

type DraftExercise struct {
	// CorrelationID ties the entry to the timers started for it.
	CorrelationID string  `json:"correlationId"`
	ExerciseID    int     `json:"exerciseId,omitempty"`
	Name          string  `json:"name"`
	Sets          int     `json:"sets,omitempty"`
	Reps          int     `json:"reps,omitempty"`
	Weight        float64 `json:"weight,omitempty"`
	// Duration in seconds.
	Duration int `json:"duration,omitempty"`
}
