package workouts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testWorkoutWithDetails() WorkoutWithDetails {
	date := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	return WorkoutWithDetails{
		Workout: Workout{
			ID:   1,
			Name: "Push Day",
			Date: date,
		},
		Exercises: []ExerciseDetails{
			{
				WorkoutExercise: WorkoutExercise{ID: 10, ExerciseID: 100, OrderIndex: 0},
				Name:            "Bench Press",
				MuscleGroup:     "chest",
				Sets: []Set{
					{SetNumber: 1, Reps: 8, Weight: 135},
					{SetNumber: 2, Reps: 6, Weight: 155},
				},
			},
			{
				WorkoutExercise: WorkoutExercise{ID: 12, ExerciseID: 102, OrderIndex: 2},
				Name:            "Overhead Press",
				MuscleGroup:     "shoulders",
				Sets: []Set{
					{SetNumber: 1, Reps: 10, Weight: 95},
				},
			},
			{
				WorkoutExercise: WorkoutExercise{ID: 11, ExerciseID: 101, OrderIndex: 1},
				Name:            "Incline Dumbbell Press",
				MuscleGroup:     "chest",
				Sets:            []Set{},
			},
		},
	}
}

func TestBuildWorkoutView_OrdersByOrderIndex(t *testing.T) {
	view := BuildWorkoutView(testWorkoutWithDetails(), UnitPounds)

	require.Len(t, view.Exercises, 3)
	// input arrived as [0, 2, 1], display order is by order index
	assert.Equal(t, "Bench Press", view.Exercises[0].Name)
	assert.Equal(t, "Incline Dumbbell Press", view.Exercises[1].Name)
	assert.Equal(t, "Overhead Press", view.Exercises[2].Name)
}

func TestBuildWorkoutView_PoundsPassThrough(t *testing.T) {
	view := BuildWorkoutView(testWorkoutWithDetails(), UnitPounds)

	benchSets := view.Exercises[0].Sets
	require.Len(t, benchSets, 2)
	assert.Equal(t, "135.0", benchSets[0].Weight)
	assert.Equal(t, "155.0", benchSets[1].Weight)

	// 8*135 + 6*155 + 10*95 = 2960
	assert.Equal(t, "2960.0", view.TotalVolume)
}

func TestBuildWorkoutView_ConvertsToKilos(t *testing.T) {
	view := BuildWorkoutView(testWorkoutWithDetails(), UnitKilos)

	benchSets := view.Exercises[0].Sets
	require.Len(t, benchSets, 2)
	// 135 lbs * 0.453592
	assert.Equal(t, "61.2", benchSets[0].Weight)
	assert.Equal(t, "70.3", benchSets[1].Weight)
}

func TestBuildWorkoutView_DoesNotMutateInput(t *testing.T) {
	workout := testWorkoutWithDetails()
	BuildWorkoutView(workout, UnitKilos)

	// the view sorts a copy, the assembled slice keeps insertion order
	assert.Equal(t, 0, workout.Exercises[0].OrderIndex)
	assert.Equal(t, 2, workout.Exercises[1].OrderIndex)
	assert.Equal(t, 1, workout.Exercises[2].OrderIndex)
	// and stored weights stay in pounds
	assert.Equal(t, 135.0, workout.Exercises[0].Sets[0].Weight)
}

func TestBuildDayView(t *testing.T) {
	day := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	view := BuildDayView(day, []WorkoutWithDetails{testWorkoutWithDetails()}, UnitPounds)

	assert.Equal(t, "2025-03-14", view.Date)
	assert.Equal(t, "Friday, Mar 14, 2025", view.Heading)
	assert.Equal(t, UnitPounds, view.Unit)
	require.Len(t, view.Workouts, 1)
	assert.Equal(t, "Push Day", view.Workouts[0].Name)
}

func TestBuildDayView_EmptyDay(t *testing.T) {
	day := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	view := BuildDayView(day, nil, UnitKilos)

	assert.NotNil(t, view.Workouts)
	assert.Empty(t, view.Workouts)
	assert.Equal(t, UnitKilos, view.Unit)
}
