package workouts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/liftlog/internal/telemetry/tracing"
	"github.com/2beens/liftlog/pkg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

// ErrWorkoutNotFound covers both a nonexistent workout and one owned by a
// different user. Callers cannot (and must not) tell the two apart.
var ErrWorkoutNotFound = errors.New("workout not found")

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// ListForUserOnDate returns the user's workouts whose date falls within the
// half-open local-day window around day, most recent first, each fully
// assembled with its exercises and sets.
func (r *Repo) ListForUserOnDate(ctx context.Context, userID string, day time.Time) (_ []WorkoutWithDetails, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.listForDay")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("day", FormatDate(day)))

	dayStart, dayEnd := DayBounds(day, day.Location())

	rows, err := r.db.Query(
		ctx,
		`
			SELECT id, user_id, name, date, duration_minutes, created_at, updated_at
			FROM workouts
			WHERE user_id = $1 AND date >= $2 AND date < $3
			ORDER BY date DESC, id ASC;`,
		userID, dayStart, dayEnd,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	workouts, err := rows2workouts(rows)
	if err != nil {
		return nil, fmt.Errorf("rows2workouts: %w", err)
	}

	if err := r.attachDetails(ctx, workouts); err != nil {
		return nil, fmt.Errorf("attach details: %w", err)
	}

	span.SetAttributes(attribute.Int("count", len(workouts)))
	return workouts, nil
}

// GetWorkout fetches one workout with details. The workout id and the user
// id are ANDed in a single query: ownership is part of the data predicate,
// never a separate check.
func (r *Repo) GetWorkout(ctx context.Context, workoutID int, userID string) (_ *WorkoutWithDetails, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("workout.id", workoutID))

	var workout Workout
	err = r.db.QueryRow(
		ctx,
		`
			SELECT id, user_id, name, date, duration_minutes, created_at, updated_at
			FROM workouts
			WHERE id = $1 AND user_id = $2;`,
		workoutID, userID,
	).Scan(
		&workout.ID, &workout.UserID, &workout.Name, &workout.Date,
		&workout.DurationMinutes, &workout.CreatedAt, &workout.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrWorkoutNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query row: %w", err)
	}

	withDetails := []WorkoutWithDetails{{Workout: workout}}
	if err := r.attachDetails(ctx, withDetails); err != nil {
		return nil, fmt.Errorf("attach details: %w", err)
	}

	return &withDetails[0], nil
}

// CreateWorkout inserts a workout for the given user. The user id always
// comes from the authenticated principal, never from client input.
func (r *Repo) CreateWorkout(ctx context.Context, userID string, input WorkoutInput) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	now := time.Now()
	workout := &Workout{
		UserID:          userID,
		Name:            input.Name,
		Date:            input.Date,
		DurationMinutes: input.DurationMinutes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err = r.db.QueryRow(
		ctx,
		`
			INSERT INTO workouts (user_id, name, date, duration_minutes, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id;`,
		workout.UserID, workout.Name, workout.Date, workout.DurationMinutes,
		workout.CreatedAt, workout.UpdatedAt,
	).Scan(&workout.ID)
	if err != nil {
		return nil, fmt.Errorf("insert: %w", err)
	}

	span.SetAttributes(attribute.Int("workout.id", workout.ID))
	return workout, nil
}

// UpdateWorkout applies name/date/duration to an owned workout and
// refreshes the updated timestamp. The UPDATE statement itself carries the
// user id filter; zero affected rows means not found or not owned.
func (r *Repo) UpdateWorkout(ctx context.Context, workoutID int, userID string, input WorkoutInput) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("workout.id", workoutID))

	workout := &Workout{
		ID:              workoutID,
		UserID:          userID,
		Name:            input.Name,
		Date:            input.Date,
		DurationMinutes: input.DurationMinutes,
		UpdatedAt:       time.Now(),
	}

	err = r.db.QueryRow(
		ctx,
		`
			UPDATE workouts
			SET name = $1, date = $2, duration_minutes = $3, updated_at = $4
			WHERE id = $5 AND user_id = $6
			RETURNING created_at;`,
		workout.Name, workout.Date, workout.DurationMinutes, workout.UpdatedAt,
		workoutID, userID,
	).Scan(&workout.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrWorkoutNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update: %w", err)
	}

	return workout, nil
}

// DeleteWorkout removes an owned workout; the delete cascades through
// workout_exercises down to sets.
func (r *Repo) DeleteWorkout(ctx context.Context, workoutID int, userID string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("workout.id", workoutID))

	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM workouts WHERE id = $1 AND user_id = $2;`,
		workoutID, userID,
	)
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrWorkoutNotFound
	}
	return nil
}

// AddExerciseToWorkout appends a catalog exercise to an owned workout. The
// order index is the current exercise count, so insertion order determines
// display order; indexes are not renumbered on deletion.
func (r *Repo) AddExerciseToWorkout(ctx context.Context, workoutID int, userID string, exerciseID int) (_ *WorkoutExercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.addExercise")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("workout.id", workoutID))
	span.SetAttributes(attribute.Int("exercise.id", exerciseID))

	workoutExercise := &WorkoutExercise{
		WorkoutID:  workoutID,
		ExerciseID: exerciseID,
		CreatedAt:  time.Now(),
	}

	err = r.db.QueryRow(
		ctx,
		`
			INSERT INTO workout_exercises (workout_id, exercise_id, order_index, created_at)
			SELECT w.id, $2,
				(SELECT COUNT(*) FROM workout_exercises WHERE workout_id = w.id),
				$4
			FROM workouts w
			WHERE w.id = $1 AND w.user_id = $3
			RETURNING id, order_index;`,
		workoutID, exerciseID, userID, workoutExercise.CreatedAt,
	).Scan(&workoutExercise.ID, &workoutExercise.OrderIndex)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrWorkoutNotFound
	}
	if pkg.IsForeignKeyViolationError(err) {
		return nil, ErrExerciseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("insert: %w", err)
	}

	return workoutExercise, nil
}

// AddSet appends a set to a workout exercise. Ownership is enforced by
// joining up to the workout's user id within the same statement. Weight is
// expected in pounds, the canonical unit.
func (r *Repo) AddSet(ctx context.Context, workoutExerciseID int, userID string, reps int, weightLbs float64) (_ *Set, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.addSet")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("workoutExercise.id", workoutExerciseID))

	set := &Set{
		WorkoutExerciseID: workoutExerciseID,
		Reps:              reps,
		Weight:            weightLbs,
		CreatedAt:         time.Now(),
	}

	err = r.db.QueryRow(
		ctx,
		`
			INSERT INTO sets (workout_exercise_id, set_number, reps, weight, created_at)
			SELECT we.id,
				(SELECT COUNT(*) FROM sets WHERE workout_exercise_id = we.id) + 1,
				$2, $3, $4
			FROM workout_exercises we
			JOIN workouts w ON we.workout_id = w.id
			WHERE we.id = $1 AND w.user_id = $5
			RETURNING id, set_number;`,
		workoutExerciseID, reps, weightLbs, set.CreatedAt, userID,
	).Scan(&set.ID, &set.SetNumber)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrWorkoutNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("insert: %w", err)
	}

	return set, nil
}

// attachDetails loads the workout exercises (with catalog fields) and sets
// for the given workouts, in display order, and wires them in place.
func (r *Repo) attachDetails(ctx context.Context, workouts []WorkoutWithDetails) error {
	if len(workouts) == 0 {
		return nil
	}

	workoutIDs := make([]int, 0, len(workouts))
	workoutByID := make(map[int]*WorkoutWithDetails, len(workouts))
	for i := range workouts {
		workouts[i].Exercises = []ExerciseDetails{}
		workoutIDs = append(workoutIDs, workouts[i].ID)
		workoutByID[workouts[i].ID] = &workouts[i]
	}

	exerciseRows, err := r.db.Query(
		ctx,
		`
			SELECT we.id, we.workout_id, we.exercise_id, we.order_index, we.created_at,
				e.name, e.description, e.muscle_group
			FROM workout_exercises we
			JOIN exercises e ON we.exercise_id = e.id
			WHERE we.workout_id = ANY($1)
			ORDER BY we.order_index ASC, we.id ASC;`,
		workoutIDs,
	)
	if err != nil {
		return fmt.Errorf("query workout exercises: %w", err)
	}
	defer exerciseRows.Close()

	for exerciseRows.Next() {
		var details ExerciseDetails
		var description, muscleGroup *string
		if err := exerciseRows.Scan(
			&details.WorkoutExercise.ID, &details.WorkoutID, &details.ExerciseID,
			&details.OrderIndex, &details.WorkoutExercise.CreatedAt,
			&details.Name, &description, &muscleGroup,
		); err != nil {
			return fmt.Errorf("scan workout exercise: %w", err)
		}
		if description != nil {
			details.Description = *description
		}
		if muscleGroup != nil {
			details.MuscleGroup = *muscleGroup
		}
		details.Sets = []Set{}

		if workout, ok := workoutByID[details.WorkoutID]; ok {
			workout.Exercises = append(workout.Exercises, details)
		}
	}
	if err := exerciseRows.Err(); err != nil {
		return fmt.Errorf("workout exercise rows: %w", err)
	}

	// index only after all appends are done, the slices will not move anymore
	workoutExerciseIDs := make([]int, 0)
	detailsByID := make(map[int]*ExerciseDetails)
	for i := range workouts {
		for j := range workouts[i].Exercises {
			details := &workouts[i].Exercises[j]
			detailsByID[details.WorkoutExercise.ID] = details
			workoutExerciseIDs = append(workoutExerciseIDs, details.WorkoutExercise.ID)
		}
	}

	if len(workoutExerciseIDs) == 0 {
		return nil
	}

	setRows, err := r.db.Query(
		ctx,
		`
			SELECT id, workout_exercise_id, set_number, reps, weight, created_at
			FROM sets
			WHERE workout_exercise_id = ANY($1)
			ORDER BY set_number ASC, id ASC;`,
		workoutExerciseIDs,
	)
	if err != nil {
		return fmt.Errorf("query sets: %w", err)
	}
	defer setRows.Close()

	for setRows.Next() {
		var set Set
		if err := setRows.Scan(
			&set.ID, &set.WorkoutExerciseID, &set.SetNumber,
			&set.Reps, &set.Weight, &set.CreatedAt,
		); err != nil {
			return fmt.Errorf("scan set: %w", err)
		}
		if details, ok := detailsByID[set.WorkoutExerciseID]; ok {
			details.Sets = append(details.Sets, set)
		}
	}
	if err := setRows.Err(); err != nil {
		return fmt.Errorf("set rows: %w", err)
	}

	return nil
}

func rows2workouts(rows pgx.Rows) ([]WorkoutWithDetails, error) {
	workouts := make([]WorkoutWithDetails, 0)
	for rows.Next() {
		var workout Workout
		if err := rows.Scan(
			&workout.ID, &workout.UserID, &workout.Name, &workout.Date,
			&workout.DurationMinutes, &workout.CreatedAt, &workout.UpdatedAt,
		); err != nil {
			return nil, err
		}
		workouts = append(workouts, WorkoutWithDetails{Workout: workout})
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return workouts, nil
}
