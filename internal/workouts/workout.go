package workouts

import "time"

// Exercise is a global catalog entry describing a movement (e.g. "Squat").
// Reference data: never mutated, and cannot be deleted while any workout
// still references it.
type Exercise struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	MuscleGroup string    `json:"muscleGroup,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Workout is one user's session on a date. Owned exclusively by one user.
type Workout struct {
	ID              int       `json:"id"`
	UserID          string    `json:"userId"`
	Name            string    `json:"name"`
	Date            time.Time `json:"date"`
	DurationMinutes *int      `json:"durationMinutes,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// WorkoutExercise orders an Exercise within a Workout. Order indexes are
// advisory: produced on insertion, never renumbered on deletion.
type WorkoutExercise struct {
	ID         int       `json:"id"`
	WorkoutID  int       `json:"workoutId"`
	ExerciseID int       `json:"exerciseId"`
	OrderIndex int       `json:"orderIndex"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Set is one performed set. Weight is in pounds, the canonical storage unit.
type Set struct {
	ID                int       `json:"id"`
	WorkoutExerciseID int       `json:"workoutExerciseId"`
	SetNumber         int       `json:"setNumber"`
	Reps              int       `json:"reps"`
	Weight            float64   `json:"weight"`
	CreatedAt         time.Time `json:"createdAt"`
}

// ExerciseDetails is a WorkoutExercise together with its catalog entry's
// descriptive fields and its sets, ordered by set number.
type ExerciseDetails struct {
	WorkoutExercise
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	MuscleGroup string `json:"muscleGroup,omitempty"`
	Sets        []Set  `json:"sets"`
}

// WorkoutWithDetails is the fully assembled nested shape:
// workout -> exercises (by order index) -> sets (by set number).
type WorkoutWithDetails struct {
	Workout
	Exercises []ExerciseDetails `json:"exercises"`
}

// WorkoutInput carries the validated fields of a create/update request.
// A nil DurationMinutes means "not provided" and is stored as NULL, not zero.
type WorkoutInput struct {
	Name            string
	Date            time.Time
	DurationMinutes *int
}
