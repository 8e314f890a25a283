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

var (
	ErrExerciseNotFound = errors.New("exercise not found")
	ErrExerciseExists   = errors.New("exercise already exists")
	// ErrExerciseInUse: catalog entries referenced by any workout cannot be
	// deleted, that would orphan historical logs.
	ErrExerciseInUse = errors.New("exercise is in use")
)

// CatalogRepo manages the global exercise catalog. Catalog entries are
// shared reference data, not scoped to a user.
type CatalogRepo struct {
	db *pgxpool.Pool
}

func NewCatalogRepo(db *pgxpool.Pool) *CatalogRepo {
	return &CatalogRepo{
		db: db,
	}
}

// ListExercises returns the whole catalog, alphabetically.
func (r *CatalogRepo) ListExercises(ctx context.Context) (_ []Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.catalog.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`
			SELECT id, name, description, muscle_group, created_at
			FROM exercises
			ORDER BY name ASC;`,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	exercises := make([]Exercise, 0)
	for rows.Next() {
		exercise, err := scanExercise(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		exercises = append(exercises, exercise)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	span.SetAttributes(attribute.Int("count", len(exercises)))
	return exercises, nil
}

// GetExercise fetches one catalog entry by id.
func (r *CatalogRepo) GetExercise(ctx context.Context, id int) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.catalog.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("exercise.id", id))

	row := r.db.QueryRow(
		ctx,
		`
			SELECT id, name, description, muscle_group, created_at
			FROM exercises
			WHERE id = $1;`,
		id,
	)
	exercise, err := scanExercise(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrExerciseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query row: %w", err)
	}

	return &exercise, nil
}

// AddExercise creates a catalog entry. Names are unique across the catalog.
func (r *CatalogRepo) AddExercise(ctx context.Context, name, description, muscleGroup string) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.catalog.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	exercise := &Exercise{
		Name:        name,
		Description: description,
		MuscleGroup: muscleGroup,
		CreatedAt:   time.Now(),
	}

	err = r.db.QueryRow(
		ctx,
		`
			INSERT INTO exercises (name, description, muscle_group, created_at)
			VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), $4)
			RETURNING id;`,
		exercise.Name, exercise.Description, exercise.MuscleGroup, exercise.CreatedAt,
	).Scan(&exercise.ID)
	if pkg.IsUniqueViolationError(err) {
		return nil, ErrExerciseExists
	}
	if err != nil {
		return nil, fmt.Errorf("insert: %w", err)
	}

	span.SetAttributes(attribute.Int("exercise.id", exercise.ID))
	return exercise, nil
}

// DeleteExercise removes a catalog entry. The FK from workout_exercises is
// RESTRICT, so the database itself rejects deleting an entry still
// referenced by any workout.
func (r *CatalogRepo) DeleteExercise(ctx context.Context, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.catalog.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("exercise.id", id))

	tag, err := r.db.Exec(ctx, `DELETE FROM exercises WHERE id = $1;`, id)
	if pkg.IsForeignKeyViolationError(err) {
		return ErrExerciseInUse
	}
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrExerciseNotFound
	}
	return nil
}

func scanExercise(row pgx.Row) (Exercise, error) {
	var exercise Exercise
	var description, muscleGroup *string
	if err := row.Scan(
		&exercise.ID, &exercise.Name, &description, &muscleGroup, &exercise.CreatedAt,
	); err != nil {
		return Exercise{}, err
	}
	if description != nil {
		exercise.Description = *description
	}
	if muscleGroup != nil {
		exercise.MuscleGroup = *muscleGroup
	}
	return exercise, nil
}
