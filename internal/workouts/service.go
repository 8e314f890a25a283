package workouts

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/2beens/liftlog/internal/telemetry/metrics"
	"github.com/2beens/liftlog/internal/telemetry/tracing"

	"github.com/coocood/freecache"
	"go.opentelemetry.io/otel/attribute"
)

const (
	// each cache entry holds a single rendered day view, so a small
	// arena is plenty
	dayViewCacheSizeBytes = 10 * 1024 * 1024
	dayViewCacheTTL       = int(10 * time.Minute / time.Second)
	// cache entries are prefixed with the day they render, in the
	// fixed-width YYYY-MM-DD form
	dayViewCacheDayLen = len("2006-01-02")
)

//go:generate mockgen -source=$GOFILE -destination=service_mocks_test.go -package=workouts_test

type workoutsRepo interface {
	ListForUserOnDate(ctx context.Context, userID string, day time.Time) ([]WorkoutWithDetails, error)
	GetWorkout(ctx context.Context, workoutID int, userID string) (*WorkoutWithDetails, error)
	CreateWorkout(ctx context.Context, userID string, input WorkoutInput) (*Workout, error)
	UpdateWorkout(ctx context.Context, workoutID int, userID string, input WorkoutInput) (*Workout, error)
	DeleteWorkout(ctx context.Context, workoutID int, userID string) error
	AddExerciseToWorkout(ctx context.Context, workoutID int, userID string, exerciseID int) (*WorkoutExercise, error)
	AddSet(ctx context.Context, workoutExerciseID int, userID string, reps int, weightLbs float64) (*Set, error)
}

type catalogRepo interface {
	ListExercises(ctx context.Context) ([]Exercise, error)
	GetExercise(ctx context.Context, id int) (*Exercise, error)
	AddExercise(ctx context.Context, name, description, muscleGroup string) (*Exercise, error)
	DeleteExercise(ctx context.Context, id int) error
}

// Service ties the repos together with the day view cache and conversion
// to/from the display unit. All weights cross the repo boundary in pounds.
type Service struct {
	repo    workoutsRepo
	catalog catalogRepo
	cache   *freecache.Cache
	metrics *metrics.Manager
}

func NewService(repo workoutsRepo, catalog catalogRepo, metricsManager *metrics.Manager) *Service {
	return &Service{
		repo:    repo,
		catalog: catalog,
		cache:   freecache.NewCache(dayViewCacheSizeBytes),
		metrics: metricsManager,
	}
}

// DayViewJSON returns the rendered day view JSON for one user, day and
// display unit. The most recently rendered day per user+unit is cached;
// any mutation by that user drops the cached entries for both units.
func (s *Service) DayViewJSON(ctx context.Context, userID string, day time.Time, unit Unit) (_ []byte, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "workouts.service.dayView")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	dayKey := FormatDate(day)
	cacheKey := dayViewCacheKey(userID, unit)
	if cached, err := s.cache.Get(cacheKey); err == nil && len(cached) > dayViewCacheDayLen {
		if string(cached[:dayViewCacheDayLen]) == dayKey {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return cached[dayViewCacheDayLen:], nil
		}
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	workouts, err := s.repo.ListForUserOnDate(ctx, userID, day)
	if err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}

	viewJSON, err := json.Marshal(BuildDayView(day, workouts, unit))
	if err != nil {
		return nil, fmt.Errorf("marshal day view: %w", err)
	}

	entry := make([]byte, 0, dayViewCacheDayLen+len(viewJSON))
	entry = append(entry, dayKey...)
	entry = append(entry, viewJSON...)
	// best effort, an oversized entry just stays uncached
	_ = s.cache.Set(cacheKey, entry, dayViewCacheTTL)

	return viewJSON, nil
}

// Workout returns one owned workout rendered in the display unit.
func (s *Service) Workout(ctx context.Context, workoutID int, userID string, unit Unit) (WorkoutView, error) {
	workout, err := s.repo.GetWorkout(ctx, workoutID, userID)
	if err != nil {
		return WorkoutView{}, err
	}
	return BuildWorkoutView(*workout, unit), nil
}

func (s *Service) CreateWorkout(ctx context.Context, userID string, input WorkoutInput) (*Workout, error) {
	workout, err := s.repo.CreateWorkout(ctx, userID, input)
	if err != nil {
		return nil, err
	}
	s.metrics.CounterWorkoutsCreated.Inc()
	s.invalidateDayViews(userID)
	return workout, nil
}

func (s *Service) UpdateWorkout(ctx context.Context, workoutID int, userID string, input WorkoutInput) (*Workout, error) {
	workout, err := s.repo.UpdateWorkout(ctx, workoutID, userID, input)
	if err != nil {
		return nil, err
	}
	s.invalidateDayViews(userID)
	return workout, nil
}

func (s *Service) DeleteWorkout(ctx context.Context, workoutID int, userID string) error {
	if err := s.repo.DeleteWorkout(ctx, workoutID, userID); err != nil {
		return err
	}
	s.invalidateDayViews(userID)
	return nil
}

func (s *Service) AddExerciseToWorkout(ctx context.Context, workoutID int, userID string, exerciseID int) (*WorkoutExercise, error) {
	workoutExercise, err := s.repo.AddExerciseToWorkout(ctx, workoutID, userID, exerciseID)
	if err != nil {
		return nil, err
	}
	s.invalidateDayViews(userID)
	return workoutExercise, nil
}

// AddSet logs a set. The weight arrives in the user's display unit and is
// converted to pounds before it touches storage.
func (s *Service) AddSet(ctx context.Context, workoutExerciseID int, userID string, input SetInput, unit Unit) (*Set, error) {
	weightLbs := Convert(input.Weight, unit, UnitPounds)
	set, err := s.repo.AddSet(ctx, workoutExerciseID, userID, input.Reps, weightLbs)
	if err != nil {
		return nil, err
	}
	s.metrics.CounterSetsLogged.Inc()
	s.invalidateDayViews(userID)
	return set, nil
}

func (s *Service) Exercises(ctx context.Context) ([]Exercise, error) {
	return s.catalog.ListExercises(ctx)
}

func (s *Service) Exercise(ctx context.Context, id int) (*Exercise, error) {
	return s.catalog.GetExercise(ctx, id)
}

func (s *Service) CreateExercise(ctx context.Context, input ExerciseInput) (*Exercise, error) {
	return s.catalog.AddExercise(ctx, input.Name, input.Description, input.MuscleGroup)
}

func (s *Service) DeleteExercise(ctx context.Context, id int) error {
	return s.catalog.DeleteExercise(ctx, id)
}

// invalidateDayViews drops the cached day views for both display units of
// one user. Freecache cannot delete by prefix, so each unit is keyed
// separately and both are removed on any mutation.
func (s *Service) invalidateDayViews(userID string) {
	s.cache.Del(dayViewCacheKey(userID, UnitPounds))
	s.cache.Del(dayViewCacheKey(userID, UnitKilos))
}

func dayViewCacheKey(userID string, unit Unit) []byte {
	return []byte(userID + "|" + string(unit))
}
