package workouts

import (
	"sort"
	"time"
)

// SetView is a set rendered for display: the weight converted to the
// requested unit and formatted with one fractional digit.
type SetView struct {
	SetNumber int    `json:"setNumber"`
	Reps      int    `json:"reps"`
	Weight    string `json:"weight"`
}

// ExerciseView is one workout exercise rendered for display, sets in
// logged order.
type ExerciseView struct {
	WorkoutExerciseID int       `json:"workoutExerciseId"`
	ExerciseID        int       `json:"exerciseId"`
	Name              string    `json:"name"`
	MuscleGroup       string    `json:"muscleGroup,omitempty"`
	OrderIndex        int       `json:"orderIndex"`
	Sets              []SetView `json:"sets"`
}

// WorkoutView is one workout rendered for display. TotalVolume is the sum
// of reps x weight over all sets, in the display unit.
type WorkoutView struct {
	ID              int            `json:"id"`
	Name            string         `json:"name"`
	Date            string         `json:"date"`
	DurationMinutes *int           `json:"durationMinutes,omitempty"`
	Exercises       []ExerciseView `json:"exercises"`
	TotalVolume     string         `json:"totalVolume"`
}

// DayView is everything shown for one calendar day.
type DayView struct {
	Date     string        `json:"date"`
	Heading  string        `json:"heading"`
	Unit     Unit          `json:"unit"`
	Workouts []WorkoutView `json:"workouts"`
}

// BuildDayView renders the assembled workouts of one day into the display
// unit. Exercises come out sorted by order index (ties broken by insertion
// order, which the repo already guarantees), sets by set number.
func BuildDayView(day time.Time, workouts []WorkoutWithDetails, unit Unit) DayView {
	view := DayView{
		Date:     FormatDate(day),
		Heading:  FormatDayHeading(day),
		Unit:     unit,
		Workouts: make([]WorkoutView, 0, len(workouts)),
	}

	for _, workout := range workouts {
		view.Workouts = append(view.Workouts, BuildWorkoutView(workout, unit))
	}

	return view
}

// BuildWorkoutView renders one assembled workout into the display unit.
func BuildWorkoutView(workout WorkoutWithDetails, unit Unit) WorkoutView {
	view := WorkoutView{
		ID:              workout.ID,
		Name:            workout.Name,
		Date:            FormatDate(workout.Date),
		DurationMinutes: workout.DurationMinutes,
		Exercises:       make([]ExerciseView, 0, len(workout.Exercises)),
	}

	exercises := make([]ExerciseDetails, len(workout.Exercises))
	copy(exercises, workout.Exercises)
	sort.SliceStable(exercises, func(i, j int) bool {
		return exercises[i].OrderIndex < exercises[j].OrderIndex
	})

	var totalVolume float64
	for _, details := range exercises {
		exerciseView := ExerciseView{
			WorkoutExerciseID: details.WorkoutExercise.ID,
			ExerciseID:        details.ExerciseID,
			Name:              details.Name,
			MuscleGroup:       details.MuscleGroup,
			OrderIndex:        details.OrderIndex,
			Sets:              make([]SetView, 0, len(details.Sets)),
		}

		for _, set := range details.Sets {
			converted := Convert(set.Weight, UnitPounds, unit)
			totalVolume += float64(set.Reps) * converted
			exerciseView.Sets = append(exerciseView.Sets, SetView{
				SetNumber: set.SetNumber,
				Reps:      set.Reps,
				Weight:    FormatWeight(converted),
			})
		}

		view.Exercises = append(view.Exercises, exerciseView)
	}

	view.TotalVolume = FormatWeight(totalVolume)
	return view
}
