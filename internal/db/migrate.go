package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// weights are stored canonically in pounds, regardless of the display unit
const schema = `
CREATE TABLE IF NOT EXISTS exercises (
	id           BIGSERIAL PRIMARY KEY,
	name         TEXT NOT NULL UNIQUE,
	description  TEXT,
	muscle_group TEXT,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS workouts (
	id               BIGSERIAL PRIMARY KEY,
	user_id          TEXT NOT NULL,
	name             TEXT NOT NULL,
	date             TIMESTAMPTZ NOT NULL,
	duration_minutes INT,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS workout_exercises (
	id          BIGSERIAL PRIMARY KEY,
	workout_id  BIGINT NOT NULL REFERENCES workouts(id) ON DELETE CASCADE,
	exercise_id BIGINT NOT NULL REFERENCES exercises(id) ON DELETE RESTRICT,
	order_index INT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS sets (
	id                  BIGSERIAL PRIMARY KEY,
	workout_exercise_id BIGINT NOT NULL REFERENCES workout_exercises(id) ON DELETE CASCADE,
	set_number          INT NOT NULL,
	reps                INT NOT NULL,
	weight              NUMERIC(6,2) NOT NULL,
	created_at          TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_exercises_name ON exercises(name);
CREATE INDEX IF NOT EXISTS idx_workout_exercises_workout_id ON workout_exercises(workout_id);
CREATE INDEX IF NOT EXISTS idx_sets_workout_exercise_id ON sets(workout_exercise_id);
CREATE INDEX IF NOT EXISTS idx_workouts_user_id ON workouts(user_id);
-- the dominant read pattern is "this user's workouts on/around a date"
CREATE INDEX IF NOT EXISTS idx_workouts_user_id_date ON workouts(user_id, date DESC);
`

// Migrate ensures tables and indexes exist. Call once at startup.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schema)
	return err
}
